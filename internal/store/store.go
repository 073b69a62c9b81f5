// Package store persists the session's durable state: the decoded
// tracking and events datasets, the match metadata and the
// synced-results map, each as one logical record. Every save replaces
// the whole record atomically; partial writes are never observable.
package store

import (
	"errors"
	"fmt"

	"github.com/kickoff-data/pitchsync/internal/align"
)

// Record identifies one of the four logical persisted records.
type Record string

const (
	RecordTracking      Record = "tracking"
	RecordEvents        Record = "events"
	RecordMetadata      Record = "metadata"
	RecordSyncedResults Record = "synced_results"
)

// ErrUnknownRecord rejects record names outside the fixed set.
var ErrUnknownRecord = errors.New("unknown record")

func validRecord(r Record) error {
	switch r {
	case RecordTracking, RecordEvents, RecordMetadata, RecordSyncedResults:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownRecord, r)
}

// ResultsStore is the durable key-value persistence contract. Each
// Save is all-or-nothing: a Load after a failed Save observes the
// previous value, never a torn one.
type ResultsStore interface {
	// Save replaces the record's value.
	Save(record Record, value []byte) error

	// Load returns the record's value. The boolean reports presence;
	// an absent record is not an error.
	Load(record Record) ([]byte, bool, error)

	// Clear removes the record. Clearing an absent record is a no-op.
	Clear(record Record) error

	// Exists reports whether the record is present.
	Exists(record Record) (bool, error)
}

// SyncedResultsWriter adapts a ResultsStore to the engine's
// ResultsWriter, serializing the map with the exchange codec.
type SyncedResultsWriter struct {
	Store ResultsStore
}

// SaveSyncedResults writes the complete map as one record.
func (w SyncedResultsWriter) SaveSyncedResults(results map[string]int64) error {
	data, err := align.MarshalResults(results)
	if err != nil {
		return fmt.Errorf("encoding synced results: %w", err)
	}
	return w.Store.Save(RecordSyncedResults, data)
}

// LoadSyncedResults reads and decodes the persisted synced-results
// record. An absent record yields an empty map.
func LoadSyncedResults(s ResultsStore) (map[string]int64, error) {
	data, ok, err := s.Load(RecordSyncedResults)
	if err != nil {
		return nil, fmt.Errorf("loading synced results: %w", err)
	}
	if !ok {
		return map[string]int64{}, nil
	}
	results, err := align.ParseResults(data)
	if err != nil {
		return nil, fmt.Errorf("decoding persisted synced results: %w", err)
	}
	return results, nil
}
