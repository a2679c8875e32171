package token

import (
	"math/big"

	"cinechain/core/types"
)

// Symbol and Decimals describe CineUSD, the stable-value settlement token all
// contributions and payouts are denominated in. Amounts are integers in the
// base unit (1 CineUSD = 10^6 units).
const (
	Symbol   = "CINEUSD"
	Decimals = 6
)

type ledgerState interface {
	GetAccount(addr types.Address) (*types.Account, error)
	PutAccount(addr types.Address, account *types.Account) error
	AllowanceGet(owner, spender types.Address) (*big.Int, error)
	AllowancePut(owner, spender types.Address, amount *big.Int) error
	TokenSupplyGet() (*big.Int, error)
	TokenSupplyPut(supply *big.Int) error
}

// Ledger implements the fungible token every engine settles through. It is a
// plain balance ledger over the account state: no hooks, no callbacks, so a
// transfer can never re-enter an engine operation.
type Ledger struct {
	state ledgerState
}

// NewLedger constructs a token ledger. The state backend must be configured
// via SetState before use.
func NewLedger() *Ledger { return &Ledger{} }

// SetState configures the state backend used by the ledger.
func (l *Ledger) SetState(state ledgerState) { l.state = state }

func (l *Ledger) ready() error {
	if l == nil || l.state == nil {
		return ErrNilState
	}
	return nil
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// BalanceOf returns the current balance for the supplied address.
func (l *Ledger) BalanceOf(addr types.Address) (*big.Int, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	account, err := l.state.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(account.EnsureDefaults().Balance), nil
}

// TotalSupply returns the cumulative minted amount.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	supply, err := l.state.TokenSupplyGet()
	if err != nil {
		return nil, err
	}
	if supply == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(supply), nil
}

// Allowance returns the amount spender may still move on behalf of owner.
func (l *Ledger) Allowance(owner, spender types.Address) (*big.Int, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	allowance, err := l.state.AllowanceGet(owner, spender)
	if err != nil {
		return nil, err
	}
	if allowance == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(allowance), nil
}

// Mint credits newly issued tokens to the recipient and grows the supply.
func (l *Ledger) Mint(to types.Address, amount *big.Int) error {
	if err := l.ready(); err != nil {
		return err
	}
	if to.IsZero() {
		return ErrZeroAddress
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	account, err := l.state.GetAccount(to)
	if err != nil {
		return err
	}
	account = account.EnsureDefaults()
	account.Balance = new(big.Int).Add(account.Balance, amount)
	if err := l.state.PutAccount(to, account); err != nil {
		return err
	}
	supply, err := l.state.TokenSupplyGet()
	if err != nil {
		return err
	}
	if supply == nil {
		supply = big.NewInt(0)
	}
	return l.state.TokenSupplyPut(new(big.Int).Add(supply, amount))
}

// Approve sets the allowance spender may move on behalf of owner. Unlike the
// balance ops a zero amount is valid: it revokes the allowance.
func (l *Ledger) Approve(owner, spender types.Address, amount *big.Int) error {
	if err := l.ready(); err != nil {
		return err
	}
	if owner.IsZero() || spender.IsZero() {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return l.state.AllowancePut(owner, spender, new(big.Int).Set(amount))
}

// Transfer moves amount from one balance to another.
func (l *Ledger) Transfer(from, to types.Address, amount *big.Int) error {
	if err := l.ready(); err != nil {
		return err
	}
	if from.IsZero() || to.IsZero() {
		return ErrZeroAddress
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	return l.move(from, to, amount)
}

// TransferFrom moves amount from owner to recipient, consuming spender's
// allowance.
func (l *Ledger) TransferFrom(spender, from, to types.Address, amount *big.Int) error {
	if err := l.ready(); err != nil {
		return err
	}
	if spender.IsZero() || from.IsZero() || to.IsZero() {
		return ErrZeroAddress
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	allowance, err := l.state.AllowanceGet(from, spender)
	if err != nil {
		return err
	}
	if allowance == nil || allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := l.move(from, to, amount); err != nil {
		return err
	}
	return l.state.AllowancePut(from, spender, new(big.Int).Sub(allowance, amount))
}

func (l *Ledger) move(from, to types.Address, amount *big.Int) error {
	fromAcc, err := l.state.GetAccount(from)
	if err != nil {
		return err
	}
	fromAcc = fromAcc.EnsureDefaults()
	if fromAcc.Balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if from == to {
		return nil
	}
	toAcc, err := l.state.GetAccount(to)
	if err != nil {
		return err
	}
	toAcc = toAcc.EnsureDefaults()
	fromAcc.Balance = new(big.Int).Sub(fromAcc.Balance, amount)
	toAcc.Balance = new(big.Int).Add(toAcc.Balance, amount)
	if err := l.state.PutAccount(from, fromAcc); err != nil {
		return err
	}
	return l.state.PutAccount(to, toAcc)
}
