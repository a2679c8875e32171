package fundraising

import (
	"math/big"

	"cinechain/core/types"
)

// CampaignStatus tracks the funding lifecycle. A campaign starts Active and
// moves exactly once to either Funded or Failed; neither transition is
// reversible.
type CampaignStatus uint8

const (
	StatusActive CampaignStatus = iota
	StatusFunded
	StatusFailed
)

// Valid reports whether the status value is within the supported range.
func (s CampaignStatus) Valid() bool {
	switch s {
	case StatusActive, StatusFunded, StatusFailed:
		return true
	default:
		return false
	}
}

func (s CampaignStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusFunded:
		return "funded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// VaultAddress is the module escrow account. Contributions sit here until the
// campaign resolves; payouts and refunds draw from it.
var VaultAddress = types.BytesToAddress([]byte("funding_escrow_vault"))

// MaxPlatformFeeBps is the hard ceiling on the platform fee (10%).
const MaxPlatformFeeBps = 1_000

// Campaign captures the funding state for a single production. Title,
// description, goal and schedule are immutable after creation; only
// CurrentFunding, BackerCount and Status move while the campaign is active.
type Campaign struct {
	ID             uint64
	Creator        types.Address
	Title          string
	Description    string
	FundingGoal    *big.Int
	CurrentFunding *big.Int
	StartTime      int64
	EndTime        int64
	Status         CampaignStatus
	BackerCount    uint64
}

// IsActive reports whether contributions are still accepted (subject to the
// deadline check performed per call).
func (c *Campaign) IsActive() bool { return c != nil && c.Status == StatusActive }

// IsFunded reports whether the goal was reached and the payout executed.
func (c *Campaign) IsFunded() bool { return c != nil && c.Status == StatusFunded }

// IsFailed reports whether the campaign was marked failed after its deadline.
func (c *Campaign) IsFailed() bool { return c != nil && c.Status == StatusFailed }

// Clone returns a deep copy so callers can mutate the result without
// affecting the stored instance.
func (c *Campaign) Clone() *Campaign {
	if c == nil {
		return nil
	}
	clone := *c
	if c.FundingGoal != nil {
		clone.FundingGoal = new(big.Int).Set(c.FundingGoal)
	} else {
		clone.FundingGoal = big.NewInt(0)
	}
	if c.CurrentFunding != nil {
		clone.CurrentFunding = new(big.Int).Set(c.CurrentFunding)
	} else {
		clone.CurrentFunding = big.NewInt(0)
	}
	return &clone
}

// Params holds the mutable platform settings applied at payout time.
type Params struct {
	PlatformFeeBps uint32
	PlatformWallet types.Address
}

// Clone returns a copy of the params.
func (p *Params) Clone() *Params {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
