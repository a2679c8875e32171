package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"cinechain/storage"
)

// KVStore is the minimal backend surface the manager needs. storage.Database
// satisfies it.
type KVStore interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Delete(key []byte) error
}

// Manager persists the funding core's records as RLP-encoded values in a
// key-value store. All numeric fields round-trip as exact integers; stored
// record types use unsigned timestamps because RLP has no signed encoding.
type Manager struct {
	kv KVStore
}

// NewManager constructs a manager over the supplied backend.
func NewManager(kv KVStore) *Manager {
	return &Manager{kv: kv}
}

// KVPut encodes the value with RLP and stores it under the supplied key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.kv.Put(key, encoded)
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the
// key existed in state.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := m.kv.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVDelete removes the value stored under the supplied key.
func (m *Manager) KVDelete(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	return m.kv.Delete(key)
}

// nextSequence advances the counter stored under key and returns the new
// value. Sequences start at 1.
func (m *Manager) nextSequence(key []byte) (uint64, error) {
	var current uint64
	if _, err := m.KVGet(key, &current); err != nil {
		return 0, err
	}
	current++
	if err := m.KVPut(key, current); err != nil {
		return 0, err
	}
	return current, nil
}
