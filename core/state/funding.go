package state

import (
	"math/big"

	"cinechain/core/types"
	"cinechain/native/fundraising"
)

type storedCampaign struct {
	ID             uint64
	Creator        types.Address
	Title          string
	Description    string
	FundingGoal    *big.Int
	CurrentFunding *big.Int
	StartTime      uint64
	EndTime        uint64
	Status         uint8
	BackerCount    uint64
}

type storedFundingParams struct {
	PlatformFeeBps uint32
	PlatformWallet types.Address
}

func campaignKey(id uint64) []byte {
	return appendUint64(prefixed(campaignPrefix), id)
}

func contributionKey(campaignID uint64, contributor types.Address) []byte {
	return prefixed(appendUint64(prefixed(contributionPrefix), campaignID), contributor[:])
}

// FundingNextCampaignID assigns the next sequential campaign id, starting
// at 1.
func (m *Manager) FundingNextCampaignID() (uint64, error) {
	return m.nextSequence(campaignSeqKeyBytes)
}

// FundingCampaignGet loads a campaign by id.
func (m *Manager) FundingCampaignGet(id uint64) (*fundraising.Campaign, bool, error) {
	var stored storedCampaign
	ok, err := m.KVGet(campaignKey(id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	campaign := &fundraising.Campaign{
		ID:             stored.ID,
		Creator:        stored.Creator,
		Title:          stored.Title,
		Description:    stored.Description,
		FundingGoal:    stored.FundingGoal,
		CurrentFunding: stored.CurrentFunding,
		StartTime:      int64(stored.StartTime),
		EndTime:        int64(stored.EndTime),
		Status:         fundraising.CampaignStatus(stored.Status),
		BackerCount:    stored.BackerCount,
	}
	return campaign.Clone(), true, nil
}

// FundingCampaignPut persists a campaign.
func (m *Manager) FundingCampaignPut(c *fundraising.Campaign) error {
	c = c.Clone()
	return m.KVPut(campaignKey(c.ID), &storedCampaign{
		ID:             c.ID,
		Creator:        c.Creator,
		Title:          c.Title,
		Description:    c.Description,
		FundingGoal:    c.FundingGoal,
		CurrentFunding: c.CurrentFunding,
		StartTime:      uint64(c.StartTime),
		EndTime:        uint64(c.EndTime),
		Status:         uint8(c.Status),
		BackerCount:    c.BackerCount,
	})
}

// FundingContributionGet returns the cumulative contribution a contributor
// has escrowed in a campaign. The boolean reports whether the contributor
// has ever contributed; it stays true after a refund zeroes the amount.
func (m *Manager) FundingContributionGet(campaignID uint64, contributor types.Address) (*big.Int, bool, error) {
	var stored storedAmount
	ok, err := m.KVGet(contributionKey(campaignID, contributor), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	if stored.Amount == nil {
		return big.NewInt(0), true, nil
	}
	return stored.Amount, true, nil
}

// FundingContributionPut persists a contributor's cumulative contribution.
func (m *Manager) FundingContributionPut(campaignID uint64, contributor types.Address, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return m.KVPut(contributionKey(campaignID, contributor), &storedAmount{Amount: amount})
}

// FundingParamsGet loads the platform fee settings.
func (m *Manager) FundingParamsGet() (*fundraising.Params, bool, error) {
	var stored storedFundingParams
	ok, err := m.KVGet(fundingParamsKeyBytes, &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &fundraising.Params{
		PlatformFeeBps: stored.PlatformFeeBps,
		PlatformWallet: stored.PlatformWallet,
	}, true, nil
}

// FundingParamsPut persists the platform fee settings.
func (m *Manager) FundingParamsPut(p *fundraising.Params) error {
	if p == nil {
		return nil
	}
	return m.KVPut(fundingParamsKeyBytes, &storedFundingParams{
		PlatformFeeBps: p.PlatformFeeBps,
		PlatformWallet: p.PlatformWallet,
	})
}
