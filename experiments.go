package bayesx

// ExperimentLedger holds the session's experiments in render order, newest
// first. Records are added and edited, never removed.
//
// Ids are assigned as current length + 1. That matches the service's cadence
// as long as nothing is ever deleted.
//
// An ExperimentLedger is not safe for concurrent use; the Session serialises
// access to it.
type ExperimentLedger struct {
	records []ExperimentRecord
}

// EditField sets values[key] of the record with the given id, leaving every
// other field and record untouched. An unknown id is a no-op: renderers can
// race with ledger updates and that is not an error.
func (l *ExperimentLedger) EditField(id int, key, raw string) []ExperimentRecord {
	for i := range l.records {
		if l.records[i].ID != id {
			continue
		}

		if l.records[i].Values == nil {
			l.records[i].Values = map[string]string{}
		}

		l.records[i].Values[key] = raw

		break
	}

	return l.Records()
}

// PrependSuggested adds a record pre-filled with values at the head of the
// ledger and returns it. The metric field is left for the user to measure.
func (l *ExperimentLedger) PrependSuggested(values map[string]string) ExperimentRecord {
	record := ExperimentRecord{
		ID:     len(l.records) + 1,
		Values: copyValues(values),
	}

	l.records = append([]ExperimentRecord{record}, l.records...)

	return cloneRecord(record)
}

// AddBlank adds an empty record at the head of the ledger for manual entry.
func (l *ExperimentLedger) AddBlank() ExperimentRecord {
	return l.PrependSuggested(nil)
}

// Submittable returns the records with at least one non-empty value, in
// ledger order. All-blank records stay in the ledger but are never sent.
func (l *ExperimentLedger) Submittable() []ExperimentRecord {
	return filterSubmittable(l.records)
}

// Records returns a deep copy of every record in render order.
func (l *ExperimentLedger) Records() []ExperimentRecord {
	out := make([]ExperimentRecord, len(l.records))
	for i, record := range l.records {
		out[i] = cloneRecord(record)
	}

	return out
}

// Len returns the number of records.
func (l *ExperimentLedger) Len() int {
	return len(l.records)
}

// NewExperimentLedger returns an empty ledger.
func NewExperimentLedger() *ExperimentLedger {
	return &ExperimentLedger{}
}

func filterSubmittable(records []ExperimentRecord) []ExperimentRecord {
	out := make([]ExperimentRecord, 0, len(records))

	for _, record := range records {
		if !hasValue(record) {
			continue
		}

		out = append(out, cloneRecord(record))
	}

	return out
}

func hasValue(record ExperimentRecord) bool {
	for _, v := range record.Values {
		if v != "" {
			return true
		}
	}

	return false
}

func cloneRecord(record ExperimentRecord) ExperimentRecord {
	return ExperimentRecord{ID: record.ID, Values: copyValues(record.Values)}
}
