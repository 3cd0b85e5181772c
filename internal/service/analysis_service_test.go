package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecospend/greentracker/internal/ai"
	"github.com/ecospend/greentracker/internal/store"
)

// fakeModel returns a canned reply or error.
type fakeModel struct {
	reply string
	err   error

	gotInstruction string
	gotImage       []byte
	gotMimeType    string
}

func (f *fakeModel) DescribeImage(ctx context.Context, instruction string, image []byte, mimeType string) (string, error) {
	f.gotInstruction = instruction
	f.gotImage = image
	f.gotMimeType = mimeType
	return f.reply, f.err
}

func newAnalysisService(t *testing.T, model ImageDescriber) (*AnalysisService, *store.FileStore) {
	t.Helper()
	st := store.Open(filepath.Join(t.TempDir(), "users.json"), zerolog.Nop())
	require.NoError(t, st.Register("alice", "somehash"))
	ledger := NewLedgerService(st, zerolog.Nop())
	return NewAnalysisService(model, ledger, zerolog.Nop()), st
}

func TestAnalyzeSuccess(t *testing.T) {
	model := &fakeModel{reply: "Total Carbon Emissions: 12.4 kg CO2\nOffset Cost: $3.10"}
	svc, st := newAnalysisService(t, model)

	entry, err := svc.Analyze(context.Background(), "alice", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, 12.4, entry.CarbonScore)
	assert.Equal(t, 3.10, entry.OffsetCost)
	assert.NotEmpty(t, entry.Timestamp)

	// The prompt must pin the marker phrases the extractor scans for.
	assert.Contains(t, model.gotInstruction, "Total Carbon Emissions")
	assert.Contains(t, model.gotInstruction, "Offset Cost")
	assert.Equal(t, "image/png", model.gotMimeType)

	history, err := st.HistoryFor("alice")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entry, history[0])
}

func TestAnalyzeModelRejectsImage(t *testing.T) {
	model := &fakeModel{reply: "Error: The uploaded image is not a valid receipt."}
	svc, st := newAnalysisService(t, model)

	_, err := svc.Analyze(context.Background(), "alice", []byte("cat-photo"), "image/jpeg")
	var rejected *ai.RejectedError
	require.ErrorAs(t, err, &rejected)

	history, herr := st.HistoryFor("alice")
	require.NoError(t, herr)
	assert.Empty(t, history, "no entry persisted on rejection")
}

func TestAnalyzeExtractionFailed(t *testing.T) {
	model := &fakeModel{reply: "I couldn't make out much from this picture, sorry."}
	svc, st := newAnalysisService(t, model)

	_, err := svc.Analyze(context.Background(), "alice", []byte("blurry"), "image/png")
	require.ErrorIs(t, err, ai.ErrExtractionFailed)

	history, herr := st.HistoryFor("alice")
	require.NoError(t, herr)
	assert.Empty(t, history, "no entry persisted on extraction failure")
}

func TestAnalyzeExternalCallFailed(t *testing.T) {
	model := &fakeModel{err: ai.ErrCallFailed}
	svc, st := newAnalysisService(t, model)

	_, err := svc.Analyze(context.Background(), "alice", []byte("img"), "image/png")
	require.ErrorIs(t, err, ai.ErrCallFailed)

	history, herr := st.HistoryFor("alice")
	require.NoError(t, herr)
	assert.Empty(t, history)
}

func TestAnalyzeUnknownUser(t *testing.T) {
	model := &fakeModel{reply: "Total Carbon Emissions: 1 kg CO2 Offset Cost: $1"}
	svc, _ := newAnalysisService(t, model)

	_, err := svc.Analyze(context.Background(), "ghost", []byte("img"), "image/png")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ai.ErrExtractionFailed))
}
