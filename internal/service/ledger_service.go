package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecospend/greentracker/internal/domain"
	"github.com/ecospend/greentracker/internal/store"
)

// LedgerService appends analysis outcomes to a user's usage history
// and reads it back. The history is append-only; entries are never
// modified or removed.
type LedgerService struct {
	store  *store.FileStore
	now    func() time.Time
	logger zerolog.Logger
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(st *store.FileStore, logger zerolog.Logger) *LedgerService {
	return &LedgerService{
		store:  st,
		now:    time.Now,
		logger: logger.With().Str("service", "ledger").Logger(),
	}
}

// Append records an analysis outcome for username. The timestamp is
// taken from the ledger's own clock at the moment of the call, since
// the source of truth is when the analysis completed. Either the entry
// is durably appended or the durable state is unchanged.
func (s *LedgerService) Append(ctx context.Context, username string, carbonScore, offsetCost float64) (domain.UsageEntry, error) {
	entry := domain.NewUsageEntry(s.now(), carbonScore, offsetCost)
	if err := s.store.AppendEntry(username, entry); err != nil {
		return domain.UsageEntry{}, err
	}

	s.logger.Info().
		Str("username", username).
		Float64("carbon_score", carbonScore).
		Float64("offset_cost", offsetCost).
		Msg("usage entry appended")

	return entry, nil
}

// History returns username's entries in append order.
func (s *LedgerService) History(ctx context.Context, username string) ([]domain.UsageEntry, error) {
	return s.store.HistoryFor(username)
}
