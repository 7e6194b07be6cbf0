package bayesx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExperimentLedgerPrependSuggested(t *testing.T) {
	l := NewExperimentLedger()

	first := l.PrependSuggested(map[string]string{"temp": "50"})
	assert.Equal(t, 1, first.ID)

	second := l.PrependSuggested(map[string]string{"temp": "73.2"})
	assert.Equal(t, 2, second.ID)

	records := l.Records()
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[0].ID)
	assert.Equal(t, "73.2", records[0].Values["temp"])
	assert.Equal(t, 1, records[1].ID)

	_, ok := records[0].Values["yield"]
	assert.False(t, ok)
}

func TestExperimentLedgerPrependCopiesValues(t *testing.T) {
	l := NewExperimentLedger()

	values := map[string]string{"temp": "50"}
	l.PrependSuggested(values)
	values["temp"] = "changed"

	assert.Equal(t, "50", l.Records()[0].Values["temp"])
}

func TestExperimentLedgerEditField(t *testing.T) {
	l := NewExperimentLedger()

	l.PrependSuggested(map[string]string{"temp": "50"})
	blank := l.AddBlank()

	records := l.EditField(1, "yield", "0.8")

	require.Len(t, records, 2)
	assert.Equal(t, blank.ID, records[0].ID)
	assert.Empty(t, records[0].Values)
	assert.Equal(t, map[string]string{"temp": "50", "yield": "0.8"}, records[1].Values)
}

func TestExperimentLedgerEditUnknownID(t *testing.T) {
	l := NewExperimentLedger()
	l.PrependSuggested(map[string]string{"temp": "50"})

	before := l.Records()
	after := l.EditField(99, "yield", "1")

	assert.Equal(t, before, after)
	assert.Equal(t, 1, l.Len())
}

func TestExperimentLedgerSubmittable(t *testing.T) {
	l := NewExperimentLedger()

	l.AddBlank()
	l.PrependSuggested(map[string]string{"temp": "", "yield": ""})
	l.PrependSuggested(map[string]string{"temp": "20"})
	l.AddBlank()

	assert.Empty(t, NewExperimentLedger().Submittable())

	got := l.Submittable()
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ID)

	l.EditField(1, "yield", "0.3")

	got = l.Submittable()
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].ID)
	assert.Equal(t, 1, got[1].ID)

	// Blank records stay in the ledger.
	assert.Equal(t, 4, l.Len())
}
