package state

import (
	"errors"

	"cinechain/storage"
)

// staging is a copy-on-write overlay over a backend store. Reads fall through
// to the base for untouched keys; writes and deletes are buffered until
// Commit. Abandoning the overlay is the rollback path, which is how every
// public operation gets all-or-nothing semantics without a VM revert.
type staging struct {
	base    KVStore
	writes  map[string][]byte
	deletes map[string]struct{}
	order   []string
}

func newStaging(base KVStore) *staging {
	return &staging{
		base:    base,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

func (s *staging) touch(key string) {
	if _, written := s.writes[key]; written {
		return
	}
	if _, deleted := s.deletes[key]; deleted {
		return
	}
	s.order = append(s.order, key)
}

func (s *staging) Put(key []byte, value []byte) error {
	k := string(key)
	s.touch(k)
	delete(s.deletes, k)
	buf := make([]byte, len(value))
	copy(buf, value)
	s.writes[k] = buf
	return nil
}

func (s *staging) Get(key []byte) ([]byte, error) {
	k := string(key)
	if value, ok := s.writes[k]; ok {
		return value, nil
	}
	if _, ok := s.deletes[k]; ok {
		return nil, storage.ErrKeyNotFound
	}
	return s.base.Get(key)
}

func (s *staging) Has(key []byte) (bool, error) {
	k := string(key)
	if _, ok := s.writes[k]; ok {
		return true, nil
	}
	if _, ok := s.deletes[k]; ok {
		return false, nil
	}
	return s.base.Has(key)
}

func (s *staging) Delete(key []byte) error {
	k := string(key)
	s.touch(k)
	delete(s.writes, k)
	s.deletes[k] = struct{}{}
	return nil
}

func (s *staging) commit() error {
	for _, k := range s.order {
		key := []byte(k)
		if value, ok := s.writes[k]; ok {
			if err := s.base.Put(key, value); err != nil {
				return err
			}
			continue
		}
		if _, ok := s.deletes[k]; ok {
			if err := s.base.Delete(key); err != nil {
				if errors.Is(err, storage.ErrKeyNotFound) {
					continue
				}
				return err
			}
		}
	}
	return nil
}

// StagedManager is a manager whose mutations are buffered until Commit.
type StagedManager struct {
	*Manager
	overlay *staging
}

// Stage returns a staged view of the manager. Discarding it without calling
// Commit leaves the base state untouched.
func (m *Manager) Stage() *StagedManager {
	overlay := newStaging(m.kv)
	return &StagedManager{
		Manager: NewManager(overlay),
		overlay: overlay,
	}
}

// Commit flushes the buffered writes to the base store in first-touch order.
func (sm *StagedManager) Commit() error {
	return sm.overlay.commit()
}
