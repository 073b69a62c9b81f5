package store

import (
	"errors"
	"testing"
	"time"

	"github.com/kickoff-data/pitchsync/internal/timeutil"
)

// setupTestStore opens a store over an in-memory sqlite database with a
// fixed clock.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	clock := timeutil.NewMockClock(time.Date(2025, 8, 30, 15, 4, 5, 0, time.UTC))
	s, err := Open(":memory:", clock)
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := setupTestStore(t)

	value := []byte(`{"E1": 1100}`)
	if err := s.Save(RecordSyncedResults, value); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := s.Load(RecordSyncedResults)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("record absent after Save")
	}
	if string(got) != string(value) {
		t.Errorf("Load = %s, want %s", got, value)
	}
}

func TestSaveReplacesWholeRecord(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Save(RecordMetadata, []byte(`{"match_id":"m1"}`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(RecordMetadata, []byte(`{"match_id":"m2"}`)); err != nil {
		t.Fatal(err)
	}
	got, _, err := s.Load(RecordMetadata)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"match_id":"m2"}` {
		t.Errorf("Load after overwrite = %s", got)
	}
}

func TestLoadAbsent(t *testing.T) {
	s := setupTestStore(t)
	value, ok, err := s.Load(RecordTracking)
	if err != nil {
		t.Fatalf("Load absent: %v", err)
	}
	if ok || value != nil {
		t.Errorf("absent record = (%v, %v), want (nil, false)", value, ok)
	}
}

func TestExistsAndClear(t *testing.T) {
	s := setupTestStore(t)

	ok, err := s.Exists(RecordEvents)
	if err != nil || ok {
		t.Fatalf("Exists before save = (%v, %v)", ok, err)
	}
	if err := s.Save(RecordEvents, []byte("x")); err != nil {
		t.Fatal(err)
	}
	ok, err = s.Exists(RecordEvents)
	if err != nil || !ok {
		t.Fatalf("Exists after save = (%v, %v)", ok, err)
	}

	if err := s.Clear(RecordEvents); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	ok, _ = s.Exists(RecordEvents)
	if ok {
		t.Error("record still present after Clear")
	}
	// Clearing again is a no-op.
	if err := s.Clear(RecordEvents); err != nil {
		t.Errorf("Clear on absent record: %v", err)
	}
}

func TestUnknownRecordRejected(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Save("bogus", []byte("x")); !errors.Is(err, ErrUnknownRecord) {
		t.Errorf("Save(bogus) err = %v, want ErrUnknownRecord", err)
	}
	if _, _, err := s.Load("bogus"); !errors.Is(err, ErrUnknownRecord) {
		t.Errorf("Load(bogus) err = %v", err)
	}
	if err := s.Clear("bogus"); !errors.Is(err, ErrUnknownRecord) {
		t.Errorf("Clear(bogus) err = %v", err)
	}
	if _, err := s.Exists("bogus"); !errors.Is(err, ErrUnknownRecord) {
		t.Errorf("Exists(bogus) err = %v", err)
	}
}

func TestListRecords(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Save(RecordMetadata, []byte("meta")); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(RecordSyncedResults, []byte(`{}`)); err != nil {
		t.Fatal(err)
	}

	infos, err := s.ListRecords()
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("ListRecords returned %d rows, want 2", len(infos))
	}
	for _, info := range infos {
		if info.SessionID != s.SessionID() {
			t.Errorf("record %s session = %q, want %q", info.Name, info.SessionID, s.SessionID())
		}
		if info.UpdatedAt != "2025-08-30T15:04:05Z" {
			t.Errorf("record %s updated_at = %q", info.Name, info.UpdatedAt)
		}
	}
}

func TestSyncedResultsHelpers(t *testing.T) {
	s := setupTestStore(t)

	// Absent record decodes to an empty map.
	results, err := LoadSyncedResults(s)
	if err != nil {
		t.Fatalf("LoadSyncedResults absent: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("absent results = %v, want empty", results)
	}

	w := SyncedResultsWriter{Store: s}
	if err := w.SaveSyncedResults(map[string]int64{"10234": 915200, "10235": 915640}); err != nil {
		t.Fatalf("SaveSyncedResults: %v", err)
	}
	results, err = LoadSyncedResults(s)
	if err != nil {
		t.Fatalf("LoadSyncedResults: %v", err)
	}
	if results["10234"] != 915200 || results["10235"] != 915640 || len(results) != 2 {
		t.Errorf("round-tripped results = %v", results)
	}
}

func TestMemStoreContract(t *testing.T) {
	m := NewMemStore()

	if err := m.Save(RecordTracking, []byte("abc")); err != nil {
		t.Fatal(err)
	}
	got, ok, err := m.Load(RecordTracking)
	if err != nil || !ok || string(got) != "abc" {
		t.Fatalf("Load = (%s, %v, %v)", got, ok, err)
	}

	// Returned slices are detached copies.
	got[0] = 'z'
	again, _, _ := m.Load(RecordTracking)
	if string(again) != "abc" {
		t.Error("MemStore leaked its internal buffer")
	}

	if err := m.Save("bogus", nil); !errors.Is(err, ErrUnknownRecord) {
		t.Errorf("Save(bogus) err = %v", err)
	}

	m.FailSaves = errors.New("boom")
	if err := m.Save(RecordTracking, []byte("new")); err == nil {
		t.Fatal("expected injected save failure")
	}
	cur, _, _ := m.Load(RecordTracking)
	if string(cur) != "abc" {
		t.Error("failed save modified stored value")
	}
}
