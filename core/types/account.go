package types

import "math/big"

// Account holds the token position for a single address. Balances are exact
// integers in the token's base unit (six decimal places).
type Account struct {
	Nonce   uint64   `json:"nonce"`
	Balance *big.Int `json:"balance"`
}

// NewAccount returns an account with a zeroed balance.
func NewAccount() *Account {
	return &Account{Balance: big.NewInt(0)}
}

// EnsureDefaults backfills nil balance pointers so callers can mutate the
// account without nil checks.
func (a *Account) EnsureDefaults() *Account {
	if a == nil {
		return NewAccount()
	}
	if a.Balance == nil {
		a.Balance = big.NewInt(0)
	}
	return a
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return NewAccount()
	}
	clone := *a
	if a.Balance != nil {
		clone.Balance = new(big.Int).Set(a.Balance)
	} else {
		clone.Balance = big.NewInt(0)
	}
	return &clone
}
