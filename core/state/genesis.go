package state

var genesisAppliedKeyBytes = []byte("chain/genesis")

// GenesisApplied reports whether the genesis allocation marker is set.
func (m *Manager) GenesisApplied() (bool, error) {
	var applied bool
	ok, err := m.KVGet(genesisAppliedKeyBytes, &applied)
	if err != nil || !ok {
		return false, err
	}
	return applied, nil
}

// SetGenesisApplied records that the genesis allocation has been minted.
func (m *Manager) SetGenesisApplied() error {
	return m.KVPut(genesisAppliedKeyBytes, true)
}
