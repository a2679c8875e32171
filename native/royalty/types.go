package royalty

import (
	"math/big"

	"cinechain/core/types"
)

// VaultAddress holds received revenue until the respective parties claim
// their distributed balances.
var VaultAddress = types.BytesToAddress([]byte("royalty_revenue_pool"))

// CampaignAccount is the per-campaign revenue ledger. Creator, shares and
// TotalRaised are fixed at creation; TotalRevenue only grows and
// TotalDistributed trails it as the distribution watermark, so re-running a
// distribution without new revenue can never double-credit.
type CampaignAccount struct {
	CampaignID       uint64
	Creator          types.Address
	TotalRaised      *big.Int
	CreatorShareBps  uint32
	PlatformShareBps uint32
	TotalRevenue     *big.Int
	TotalDistributed *big.Int
	CreatorBalance   *big.Int
	PlatformBalance  *big.Int
	NextInvestorRef  uint64
	CreatedAt        int64
}

func ensureInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// Clone returns a deep copy of the account.
func (a *CampaignAccount) Clone() *CampaignAccount {
	if a == nil {
		return nil
	}
	clone := *a
	clone.TotalRaised = ensureInt(a.TotalRaised)
	clone.TotalRevenue = ensureInt(a.TotalRevenue)
	clone.TotalDistributed = ensureInt(a.TotalDistributed)
	clone.CreatorBalance = ensureInt(a.CreatorBalance)
	clone.PlatformBalance = ensureInt(a.PlatformBalance)
	return &clone
}

// Undistributed returns the revenue received above the watermark.
func (a *CampaignAccount) Undistributed() *big.Int {
	if a == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Sub(ensureInt(a.TotalRevenue), ensureInt(a.TotalDistributed))
}

// InvestorShare is one registered investor entry. Ref is a small sequential
// index per campaign, distinct from any certificate token id. ShareBps is
// fixed at registration: floor(contribution * 10000 / totalRaised).
type InvestorShare struct {
	CampaignID   uint64
	Ref          uint64
	Investor     types.Address
	Contribution *big.Int
	ShareBps     uint32
	Balance      *big.Int
}

// Clone returns a deep copy of the share.
func (s *InvestorShare) Clone() *InvestorShare {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Contribution = ensureInt(s.Contribution)
	clone.Balance = ensureInt(s.Balance)
	return &clone
}

// ShareKey locates an investor share within the ledger.
type ShareKey struct {
	CampaignID uint64
	Ref        uint64
}
