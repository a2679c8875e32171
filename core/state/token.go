package state

import (
	"math/big"

	"cinechain/core/types"
)

type storedAmount struct {
	Amount *big.Int
}

func allowanceKey(owner, spender types.Address) []byte {
	return prefixed(allowancePrefix, owner[:], spender[:])
}

// AllowanceGet returns the allowance spender may move on behalf of owner, or
// nil when none is set.
func (m *Manager) AllowanceGet(owner, spender types.Address) (*big.Int, error) {
	var stored storedAmount
	ok, err := m.KVGet(allowanceKey(owner, spender), &stored)
	if err != nil || !ok {
		return nil, err
	}
	if stored.Amount == nil {
		return big.NewInt(0), nil
	}
	return stored.Amount, nil
}

// AllowancePut persists an allowance; a zero amount clears the record.
func (m *Manager) AllowancePut(owner, spender types.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return m.KVDelete(allowanceKey(owner, spender))
	}
	return m.KVPut(allowanceKey(owner, spender), &storedAmount{Amount: amount})
}

// TokenSupplyGet returns the cumulative minted amount.
func (m *Manager) TokenSupplyGet() (*big.Int, error) {
	var stored storedAmount
	ok, err := m.KVGet(tokenSupplyKeyBytes, &stored)
	if err != nil || !ok {
		return nil, err
	}
	return stored.Amount, nil
}

// TokenSupplyPut persists the cumulative minted amount.
func (m *Manager) TokenSupplyPut(supply *big.Int) error {
	if supply == nil {
		supply = big.NewInt(0)
	}
	return m.KVPut(tokenSupplyKeyBytes, &storedAmount{Amount: supply})
}
