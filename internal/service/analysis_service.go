package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ecospend/greentracker/internal/ai"
	"github.com/ecospend/greentracker/internal/domain"
)

// ImageDescriber is the boundary to the external generative model:
// instruction plus image in, free-form text out. The reply carries no
// structured contract and is parsed only by ai.Extract.
type ImageDescriber interface {
	DescribeImage(ctx context.Context, instruction string, image []byte, mimeType string) (string, error)
}

// AnalysisService runs the analyze flow: call the model, extract the
// two numbers from its reply, append the outcome to the user's ledger.
type AnalysisService struct {
	model  ImageDescriber
	ledger *LedgerService
	logger zerolog.Logger
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(model ImageDescriber, ledger *LedgerService, logger zerolog.Logger) *AnalysisService {
	return &AnalysisService{
		model:  model,
		ledger: ledger,
		logger: logger.With().Str("service", "analysis").Logger(),
	}
}

// Analyze estimates the carbon footprint of the receipt image and
// records the result for username. On any failure, from the external
// call through extraction, nothing is appended to the ledger.
//
// Failure modes, all recoverable at the caller:
//   - ai.ErrCallFailed: the external call itself failed.
//   - *ai.RejectedError: the model flagged the image as invalid.
//   - ai.ErrExtractionFailed: the reply matched no expected marker.
func (s *AnalysisService) Analyze(ctx context.Context, username string, image []byte, mimeType string) (domain.UsageEntry, error) {
	reply, err := s.model.DescribeImage(ctx, ai.ReceiptPrompt, image, mimeType)
	if err != nil {
		return domain.UsageEntry{}, err
	}

	result, err := ai.Extract(reply)
	if err != nil {
		s.logger.Debug().Str("username", username).Err(err).Msg("extraction failed")
		return domain.UsageEntry{}, err
	}

	entry, err := s.ledger.Append(ctx, username, result.CarbonScore, result.OffsetCost)
	if err != nil {
		return domain.UsageEntry{}, err
	}

	s.logger.Info().
		Str("username", username).
		Float64("carbon_score", result.CarbonScore).
		Float64("offset_cost", result.OffsetCost).
		Msg("analysis completed")

	return entry, nil
}
