package ai

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Extraction markers. The model is instructed (ReceiptPrompt) to emit
// these literal phrases; a decimal number must immediately follow each.
var (
	carbonPattern = regexp.MustCompile(`Total Carbon Emissions:\s*([0-9]+(?:\.[0-9]+)?)`)
	offsetPattern = regexp.MustCompile(`Offset Cost:\s*\$([0-9]+(?:\.[0-9]+)?)`)
)

const errorMarker = "Error:"

// ErrExtractionFailed is returned when the reply matches neither the
// success markers nor the error marker. Recoverable: the user retries
// with a clearer image, nothing is persisted.
var ErrExtractionFailed = errors.New("could not extract values from model reply")

// RejectedError is returned when the model explicitly flagged the
// input as invalid (the reply contains the error marker). Message is
// the full reply text, suitable for showing to the user.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("input rejected by model: %s", e.Message)
}

// Analysis is a successfully extracted result.
type Analysis struct {
	// CarbonScore is kilograms of CO2-equivalent. Never negative.
	CarbonScore float64

	// OffsetCost is the offset price in currency units. Never negative.
	OffsetCost float64
}

// Extract scans the model's free-text reply for both markers.
//
// Both numbers found: the Analysis is returned. Neither found but the
// reply contains the error marker: a *RejectedError with the full text.
// Anything else: ErrExtractionFailed.
func Extract(text string) (Analysis, error) {
	carbon := carbonPattern.FindStringSubmatch(text)
	offset := offsetPattern.FindStringSubmatch(text)

	if carbon != nil && offset != nil {
		carbonScore, err := strconv.ParseFloat(carbon[1], 64)
		if err != nil {
			return Analysis{}, ErrExtractionFailed
		}
		offsetCost, err := strconv.ParseFloat(offset[1], 64)
		if err != nil {
			return Analysis{}, ErrExtractionFailed
		}
		return Analysis{CarbonScore: carbonScore, OffsetCost: offsetCost}, nil
	}

	if strings.Contains(text, errorMarker) {
		return Analysis{}, &RejectedError{Message: strings.TrimSpace(text)}
	}

	return Analysis{}, ErrExtractionFailed
}
