package state

import (
	"math/big"

	"cinechain/core/types"
)

type storedAccount struct {
	Nonce   uint64
	Balance *big.Int
}

func accountKey(addr types.Address) []byte {
	return prefixed(accountPrefix, addr[:])
}

// GetAccount loads the account for the supplied address, returning a zeroed
// account when none is stored yet.
func (m *Manager) GetAccount(addr types.Address) (*types.Account, error) {
	var stored storedAccount
	ok, err := m.KVGet(accountKey(addr), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return types.NewAccount(), nil
	}
	account := &types.Account{Nonce: stored.Nonce, Balance: stored.Balance}
	return account.EnsureDefaults(), nil
}

// PutAccount persists the account for the supplied address.
func (m *Manager) PutAccount(addr types.Address, account *types.Account) error {
	account = account.EnsureDefaults()
	return m.KVPut(accountKey(addr), &storedAccount{
		Nonce:   account.Nonce,
		Balance: account.Balance,
	})
}
