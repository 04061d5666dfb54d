package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/driver_availability/internal/model"
	"go.uber.org/zap"
)

// TemplateApplier expands a weekly template onto a date range.
type TemplateApplier struct {
	templates TemplateStore
	days      DayStore
	recorder  ApplyRecorder
	logger    *zap.Logger
}

func NewTemplateApplier(templates TemplateStore, days DayStore, recorder ApplyRecorder, logger *zap.Logger) *TemplateApplier {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &TemplateApplier{
		templates: templates,
		days:      days,
		recorder:  recorder,
		logger:    logger,
	}
}

// ApplyRequest is the caller-facing input of Apply.
type ApplyRequest struct {
	UserID     int64
	TemplateID int64
	StartDate  string
	EndDate    string
	Overwrite  bool
}

// Apply walks [StartDate, EndDate] in ascending order and merges the template
// into each date whose weekday pattern is non-empty.
//
// Dates are independent: on failure the counters accumulated so far are
// returned together with a *model.DateError naming the failing date.
// Validation and range errors are returned before any storage access.
func (a *TemplateApplier) Apply(ctx context.Context, req ApplyRequest) (model.ApplyResult, error) {
	var result model.ApplyResult

	from, to, err := model.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return result, err
	}

	tmpl, err := a.templates.Get(ctx, req.UserID, req.TemplateID)
	if err != nil {
		return result, storageError(ctx, "get template", err)
	}
	if tmpl == nil {
		return result, fmt.Errorf("%w: template %d", model.ErrNotFound, req.TemplateID)
	}
	pattern := model.NormalizeWeekPattern(tmpl.WeekPattern)

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		date := model.FormatDate(d)

		if err := ctx.Err(); err != nil {
			a.logger.Warn("Template apply cancelled",
				zap.Int64("user_id", req.UserID),
				zap.Int64("template_id", req.TemplateID),
				zap.String("date", date),
			)
			return result, &model.DateError{Date: date, Err: err}
		}

		patternSlots := pattern[model.WeekdayOf(d)]
		if len(patternSlots) == 0 {
			continue
		}

		_, outcome, err := a.days.Modify(ctx, req.UserID, date, mergeInto(patternSlots, req.Overwrite))
		if err != nil {
			a.recorder.ObserveApplyFailure()
			log := a.logger.Error
			if ctx.Err() != nil {
				log = a.logger.Warn
			}
			log("Template apply failed",
				zap.Int64("user_id", req.UserID),
				zap.Int64("template_id", req.TemplateID),
				zap.String("date", date),
				zap.Error(err),
			)
			return result, &model.DateError{Date: date, Err: storageError(ctx, "modify availability", err)}
		}

		switch outcome {
		case model.OutcomeCreated:
			result.Created++
		case model.OutcomeUpdated:
			result.Updated++
		default:
			result.Skipped++
		}
		a.recorder.ObserveApply(outcome)
	}

	a.logger.Info("Template applied",
		zap.Int64("user_id", req.UserID),
		zap.Int64("template_id", req.TemplateID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.Bool("overwrite", req.Overwrite),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// mergeInto builds the per-date decision. Without a record the pattern is
// copied; overwrite replaces the whole map; otherwise existing slots win and
// an unchanged union is not written.
func mergeInto(patternSlots model.SlotStatuses, overwrite bool) DayMutation {
	return func(existing *model.DayAvailability) (model.SlotStatuses, bool) {
		if existing == nil || overwrite {
			return patternSlots.Clone(), true
		}

		merged := existing.SlotStatuses.Clone()
		for t, status := range patternSlots {
			if _, ok := merged[t]; !ok {
				merged[t] = status
			}
		}
		if merged.Equal(existing.SlotStatuses) {
			return nil, false
		}
		return merged, true
	}
}
