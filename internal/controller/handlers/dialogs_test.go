package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/driver_availability/internal/model"
)

func TestParseRangeText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantStart string
		wantEnd   string
		wantErr   error
	}{
		{name: "space separated", text: "2025-01-06 2025-01-19", wantStart: "2025-01-06", wantEnd: "2025-01-19"},
		{name: "with to", text: "2025-01-06 to 2025-01-19", wantStart: "2025-01-06", wantEnd: "2025-01-19"},
		{name: "comma", text: "2025-01-06,2025-01-06", wantStart: "2025-01-06", wantEnd: "2025-01-06"},
		{name: "single date", text: "2025-01-06", wantErr: model.ErrValidation},
		{name: "bad date", text: "2025-13-01 2025-01-19", wantErr: model.ErrValidation},
		{name: "reversed", text: "2025-01-19 2025-01-06", wantErr: model.ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := parseRangeText(tt.text)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}
