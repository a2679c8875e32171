package state

import (
	"math/big"

	"cinechain/core/types"
	"cinechain/native/royalty"
)

type storedRevenueAccount struct {
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
	CreatedAt        uint64
}

type storedInvestorShare struct {
	CampaignID   uint64
	Ref          uint64
	Investor     types.Address
	Contribution *big.Int
	ShareBps     uint32
	Balance      *big.Int
}

type storedShareKey struct {
	CampaignID uint64
	Ref        uint64
}

type storedShareKeyList struct {
	Keys []storedShareKey
}

func revenueAccountKey(campaignID uint64) []byte {
	return appendUint64(prefixed(revenueAccountPrefix), campaignID)
}

func revenueCreatorKey(creator types.Address) []byte {
	return prefixed(revenueCreatorPrefix, creator[:])
}

func investorShareKey(campaignID, ref uint64) []byte {
	return appendUint64(appendUint64(prefixed(investorSharePrefix), campaignID), ref)
}

func investorShareKeysKey(investor types.Address) []byte {
	return prefixed(investorShareKeyPrefix, investor[:])
}

// RevenueAccountGet loads the revenue ledger account for a campaign.
func (m *Manager) RevenueAccountGet(campaignID uint64) (*royalty.CampaignAccount, bool, error) {
	var stored storedRevenueAccount
	ok, err := m.KVGet(revenueAccountKey(campaignID), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	account := &royalty.CampaignAccount{
		CampaignID:       stored.CampaignID,
		Creator:          stored.Creator,
		TotalRaised:      stored.TotalRaised,
		CreatorShareBps:  stored.CreatorShareBps,
		PlatformShareBps: stored.PlatformShareBps,
		TotalRevenue:     stored.TotalRevenue,
		TotalDistributed: stored.TotalDistributed,
		CreatorBalance:   stored.CreatorBalance,
		PlatformBalance:  stored.PlatformBalance,
		NextInvestorRef:  stored.NextInvestorRef,
		CreatedAt:        int64(stored.CreatedAt),
	}
	return account.Clone(), true, nil
}

// RevenueAccountPut persists a revenue ledger account.
func (m *Manager) RevenueAccountPut(a *royalty.CampaignAccount) error {
	a = a.Clone()
	return m.KVPut(revenueAccountKey(a.CampaignID), &storedRevenueAccount{
		CampaignID:       a.CampaignID,
		Creator:          a.Creator,
		TotalRaised:      a.TotalRaised,
		CreatorShareBps:  a.CreatorShareBps,
		PlatformShareBps: a.PlatformShareBps,
		TotalRevenue:     a.TotalRevenue,
		TotalDistributed: a.TotalDistributed,
		CreatorBalance:   a.CreatorBalance,
		PlatformBalance:  a.PlatformBalance,
		NextInvestorRef:  a.NextInvestorRef,
		CreatedAt:        uint64(a.CreatedAt),
	})
}

// RevenueCampaignIDs returns every campaign id with a revenue account.
func (m *Manager) RevenueCampaignIDs() ([]uint64, error) {
	var list storedIDList
	if _, err := m.KVGet(revenueIDsKeyBytes, &list); err != nil {
		return nil, err
	}
	out := make([]uint64, len(list.IDs))
	copy(out, list.IDs)
	return out, nil
}

// RevenueCampaignAppend records a campaign id in the global revenue index.
func (m *Manager) RevenueCampaignAppend(campaignID uint64) error {
	var list storedIDList
	if _, err := m.KVGet(revenueIDsKeyBytes, &list); err != nil {
		return err
	}
	list.IDs = append(list.IDs, campaignID)
	return m.KVPut(revenueIDsKeyBytes, &list)
}

// RevenueCreatorCampaigns returns every campaign id whose revenue account
// names the creator.
func (m *Manager) RevenueCreatorCampaigns(creator types.Address) ([]uint64, error) {
	var list storedIDList
	if _, err := m.KVGet(revenueCreatorKey(creator), &list); err != nil {
		return nil, err
	}
	out := make([]uint64, len(list.IDs))
	copy(out, list.IDs)
	return out, nil
}

// RevenueCreatorCampaignAppend records a campaign id in the creator's index.
func (m *Manager) RevenueCreatorCampaignAppend(creator types.Address, campaignID uint64) error {
	var list storedIDList
	if _, err := m.KVGet(revenueCreatorKey(creator), &list); err != nil {
		return err
	}
	list.IDs = append(list.IDs, campaignID)
	return m.KVPut(revenueCreatorKey(creator), &list)
}

// InvestorShareGet loads one investor share by campaign and ref.
func (m *Manager) InvestorShareGet(campaignID, ref uint64) (*royalty.InvestorShare, bool, error) {
	var stored storedInvestorShare
	ok, err := m.KVGet(investorShareKey(campaignID, ref), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	share := &royalty.InvestorShare{
		CampaignID:   stored.CampaignID,
		Ref:          stored.Ref,
		Investor:     stored.Investor,
		Contribution: stored.Contribution,
		ShareBps:     stored.ShareBps,
		Balance:      stored.Balance,
	}
	return share.Clone(), true, nil
}

// InvestorSharePut persists one investor share.
func (m *Manager) InvestorSharePut(s *royalty.InvestorShare) error {
	s = s.Clone()
	return m.KVPut(investorShareKey(s.CampaignID, s.Ref), &storedInvestorShare{
		CampaignID:   s.CampaignID,
		Ref:          s.Ref,
		Investor:     s.Investor,
		Contribution: s.Contribution,
		ShareBps:     s.ShareBps,
		Balance:      s.Balance,
	})
}

// InvestorShareList returns every share registered for a campaign, in ref
// order. Refs are dense from 1 to the account's NextInvestorRef.
func (m *Manager) InvestorShareList(campaignID uint64) ([]*royalty.InvestorShare, error) {
	account, ok, err := m.RevenueAccountGet(campaignID)
	if err != nil || !ok {
		return nil, err
	}
	shares := make([]*royalty.InvestorShare, 0, account.NextInvestorRef)
	for ref := uint64(1); ref <= account.NextInvestorRef; ref++ {
		share, ok, err := m.InvestorShareGet(campaignID, ref)
		if err != nil {
			return nil, err
		}
		if ok {
			shares = append(shares, share)
		}
	}
	return shares, nil
}

// InvestorShareKeys returns the (campaign, ref) pairs registered to an
// investor address.
func (m *Manager) InvestorShareKeys(investor types.Address) ([]royalty.ShareKey, error) {
	var list storedShareKeyList
	if _, err := m.KVGet(investorShareKeysKey(investor), &list); err != nil {
		return nil, err
	}
	keys := make([]royalty.ShareKey, len(list.Keys))
	for i, key := range list.Keys {
		keys[i] = royalty.ShareKey{CampaignID: key.CampaignID, Ref: key.Ref}
	}
	return keys, nil
}

// InvestorShareKeyAppend records a share key in the investor's index.
func (m *Manager) InvestorShareKeyAppend(investor types.Address, key royalty.ShareKey) error {
	var list storedShareKeyList
	if _, err := m.KVGet(investorShareKeysKey(investor), &list); err != nil {
		return err
	}
	list.Keys = append(list.Keys, storedShareKey{CampaignID: key.CampaignID, Ref: key.Ref})
	return m.KVPut(investorShareKeysKey(investor), &list)
}
