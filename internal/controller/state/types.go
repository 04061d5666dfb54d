package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Freeeeeet/driver_availability/internal/selection"
)

// UserState is the step of the dialog a user is in.
type UserState string

const (
	StateNone UserState = ""

	// Template authoring
	StateTemplateName UserState = "template_name"
	StateEditing      UserState = "editing"

	// Template application
	StateApplyRange   UserState = "apply_range"
	StateApplyConfirm UserState = "apply_confirm"
)

// ApplyDraft collects the inputs of a template application across messages.
type ApplyDraft struct {
	TemplateID int64  `json:"templateId"`
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
	Overwrite  bool   `json:"overwrite"`
}

// Session is everything the bot remembers about one user's dialog.
type Session struct {
	State     UserState         `json:"state"`
	Editor    *selection.Editor `json:"editor,omitempty"`
	Apply     *ApplyDraft       `json:"apply,omitempty"`
	MessageID int               `json:"messageId,omitempty"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Store keeps sessions by Telegram user id. Get returns (nil, nil) when there is none.
//
// Take removes and returns the session in one step, but only when it is in one
// of the wanted states. Of two concurrent Takes at most one gets the session;
// the other sees (nil, nil).
type Store interface {
	Get(ctx context.Context, telegramID int64) (*Session, error)
	Save(ctx context.Context, telegramID int64, s *Session) error
	Clear(ctx context.Context, telegramID int64) error
	Take(ctx context.Context, telegramID int64, want ...UserState) (*Session, error)
}

func inStates(s *Session, want []UserState) bool {
	for _, w := range want {
		if s.State == w {
			return true
		}
	}
	return false
}

func encodeSession(s *Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return data, nil
}

func decodeSession(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}
