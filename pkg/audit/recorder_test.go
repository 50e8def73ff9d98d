package audit

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyckoffd/risk-engine/pkg/wyckoff"
)

func overrideEntry() Entry {
	return Entry{
		ID:            NewEntryID(),
		Kind:          KindOverride,
		SignalID:      "sig-42",
		Symbol:        "BTCUSDT",
		Pattern:       wyckoff.PatternSpring,
		Stage:         "correlated_risk",
		Reason:        "correlated sector exposure 6.50% exceeds 6.00% limit (layer1)",
		Approver:      "risk-desk",
		Justification: "sector limit temporarily lifted for rotation",
		RecordedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// TestEntryValidation exercises the per-kind required fields
func TestEntryValidation(t *testing.T) {
	valid := overrideEntry()
	require.NoError(t, valid.Validate())

	missingID := overrideEntry()
	missingID.ID = ""
	assert.Error(t, missingID.Validate())

	missingApprover := overrideEntry()
	missingApprover.Approver = ""
	assert.Error(t, missingApprover.Validate())

	missingJustification := overrideEntry()
	missingJustification.Justification = ""
	assert.Error(t, missingJustification.Validate())

	missingSymbol := overrideEntry()
	missingSymbol.Symbol = ""
	assert.Error(t, missingSymbol.Validate())

	unknownKind := overrideEntry()
	unknownKind.Kind = "escalation"
	assert.Error(t, unknownKind.Validate())

	rejection := Entry{
		ID:         NewEntryID(),
		Kind:       KindRejection,
		Symbol:     "ETHUSDT",
		Stage:      "portfolio_heat",
		RecordedAt: time.Now(),
	}
	assert.NoError(t, rejection.Validate())
}

// TestMemoryRecorderKeepsOrder records entries and reads them back in order
func TestMemoryRecorderKeepsOrder(t *testing.T) {
	recorder := NewMemoryRecorder()

	first := overrideEntry()
	second := overrideEntry()
	require.NoError(t, recorder.Record(first))
	require.NoError(t, recorder.Record(second))

	entries := recorder.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)
	assert.Equal(t, 2, recorder.Len())
}

// TestMemoryRecorderRejectsInvalid refuses entries that fail validation
func TestMemoryRecorderRejectsInvalid(t *testing.T) {
	recorder := NewMemoryRecorder()

	bad := overrideEntry()
	bad.Approver = ""
	require.Error(t, recorder.Record(bad))
	assert.Zero(t, recorder.Len())
}

// TestMemoryRecorderConcurrentUse hammers Record from several goroutines
func TestMemoryRecorderConcurrentUse(t *testing.T) {
	recorder := NewMemoryRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				assert.NoError(t, recorder.Record(overrideEntry()))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, recorder.Len())
}

// TestFileRecorderRoundTrip writes entries to disk and reads them back
func TestFileRecorderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "trail.jsonl")

	recorder, err := NewFileRecorder(path)
	require.NoError(t, err)

	first := overrideEntry()
	second := overrideEntry()
	require.NoError(t, recorder.Record(first))
	require.NoError(t, recorder.Record(second))
	require.NoError(t, recorder.Close())

	entries, err := ReadEntries(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, KindOverride, entries[0].Kind)
	assert.Equal(t, "risk-desk", entries[0].Approver)
	assert.True(t, entries[0].RecordedAt.Equal(first.RecordedAt))
	assert.Equal(t, second.ID, entries[1].ID)
}

// TestFileRecorderAppends reopens an existing trail and appends to it
func TestFileRecorderAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trail.jsonl")

	recorder, err := NewFileRecorder(path)
	require.NoError(t, err)
	require.NoError(t, recorder.Record(overrideEntry()))
	require.NoError(t, recorder.Close())

	reopened, err := NewFileRecorder(path)
	require.NoError(t, err)
	require.NoError(t, reopened.Record(overrideEntry()))
	require.NoError(t, reopened.Close())

	entries, err := ReadEntries(path)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

// TestReadEntriesMissingFile surfaces a wrapped open error
func TestReadEntriesMissingFile(t *testing.T) {
	_, err := ReadEntries(filepath.Join(t.TempDir(), "absent.jsonl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open audit file")
}
