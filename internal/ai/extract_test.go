package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantCarbon   float64
		wantOffset   float64
		wantErr      error
		wantRejected bool
	}{
		{
			name:       "both markers present",
			text:       "Your purchase was analyzed.\nTotal Carbon Emissions: 12.4 kg CO2\nOffset Cost: $3.10\nThanks!",
			wantCarbon: 12.4,
			wantOffset: 3.10,
		},
		{
			name:       "integers without fraction",
			text:       "Total Carbon Emissions: 30 kg CO2 and Offset Cost: $9",
			wantCarbon: 30,
			wantOffset: 9,
		},
		{
			name:       "markers embedded in prose",
			text:       "Based on the items, the Total Carbon Emissions: 5.25 kg CO2 estimate holds; the Offset Cost: $0.55 today.",
			wantCarbon: 5.25,
			wantOffset: 0.55,
		},
		{
			name:         "model rejected the image",
			text:         "Error: The uploaded image is not a valid receipt.",
			wantRejected: true,
		},
		{
			name:    "only one marker present",
			text:    "Total Carbon Emissions: 12.4 kg CO2, offset unknown",
			wantErr: ErrExtractionFailed,
		},
		{
			name:    "free-form chatter",
			text:    "I see a cat in this photo, not a receipt. Let me describe it anyway.",
			wantErr: ErrExtractionFailed,
		},
		{
			name:    "empty reply",
			text:    "",
			wantErr: ErrExtractionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.text)

			if tt.wantRejected {
				var rejected *RejectedError
				require.ErrorAs(t, err, &rejected)
				assert.Contains(t, rejected.Message, "Error:")
				return
			}
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCarbon, got.CarbonScore)
			assert.Equal(t, tt.wantOffset, got.OffsetCost)
		})
	}
}

func TestExtractErrorMarkerDoesNotMaskSuccess(t *testing.T) {
	// A reply containing both valid markers and the word "Error:" later
	// in the text still counts as a successful extraction.
	text := "Total Carbon Emissions: 2.5 kg CO2\nOffset Cost: $0.75\nError: margin of uncertainty applies."
	got, err := Extract(text)
	require.NoError(t, err)
	assert.Equal(t, 2.5, got.CarbonScore)
}

func TestRejectedErrorIsNotExtractionFailed(t *testing.T) {
	_, err := Extract("Error: The uploaded image is not a valid receipt.")
	assert.False(t, errors.Is(err, ErrExtractionFailed))
}
