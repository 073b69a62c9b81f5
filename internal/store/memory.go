package store

import "sync"

// MemStore is an in-memory ResultsStore for tests and dry runs. It
// honors the same record-name validation as the sqlite store.
type MemStore struct {
	mu      sync.Mutex
	records map[Record][]byte

	// FailSaves, when set, makes every Save return this error without
	// touching the stored value. Lets tests exercise the
	// persistence-failure path.
	FailSaves error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[Record][]byte)}
}

// Save replaces the record's value.
func (m *MemStore) Save(record Record, value []byte) error {
	if err := validRecord(record); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves != nil {
		return m.FailSaves
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	m.records[record] = cp
	return nil
}

// Load returns the record's value, reporting absence without error.
func (m *MemStore) Load(record Record) ([]byte, bool, error) {
	if err := validRecord(record); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.records[record]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, true, nil
}

// Clear removes the record.
func (m *MemStore) Clear(record Record) error {
	if err := validRecord(record); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, record)
	return nil
}

// Exists reports whether the record is present.
func (m *MemStore) Exists(record Record) (bool, error) {
	if err := validRecord(record); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[record]
	return ok, nil
}
