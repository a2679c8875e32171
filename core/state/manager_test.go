package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"cinechain/core/types"
	"cinechain/native/certificate"
	"cinechain/native/fundraising"
	"cinechain/native/royalty"
	"cinechain/storage"
)

func testAddr(last byte) types.Address {
	var out types.Address
	out[19] = last
	return out
}

func TestKVRoundTrip(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	var missing uint64
	ok, err := manager.KVGet([]byte("absent"), &missing)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, manager.KVPut([]byte("counter"), uint64(42)))
	var got uint64
	ok, err = manager.KVGet([]byte("counter"), &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(42), got)

	require.NoError(t, manager.KVDelete([]byte("counter")))
	ok, err = manager.KVGet([]byte("counter"), &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCampaignSequenceStartsAtOne(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	first, err := manager.FundingNextCampaignID()
	require.NoError(t, err)
	require.Equal(t, uint64(1), first)

	second, err := manager.FundingNextCampaignID()
	require.NoError(t, err)
	require.Equal(t, uint64(2), second)
}

func TestCampaignRoundTripPreservesFields(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	campaign := &fundraising.Campaign{
		ID:             1,
		Creator:        testAddr(0x01),
		Title:          "Midnight Reel",
		Description:    "Feature film",
		FundingGoal:    big.NewInt(1_000_000),
		CurrentFunding: big.NewInt(250_000),
		StartTime:      1_700_000_000,
		EndTime:        1_702_600_000,
		Status:         fundraising.StatusActive,
		BackerCount:    7,
	}
	require.NoError(t, manager.FundingCampaignPut(campaign))

	got, ok, err := manager.FundingCampaignGet(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, campaign, got)

	_, ok, err = manager.FundingCampaignGet(99)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestContributionSeenFlagSurvivesRefund(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	backer := testAddr(0x02)

	_, seen, err := manager.FundingContributionGet(1, backer)
	require.NoError(t, err)
	require.False(t, seen)

	require.NoError(t, manager.FundingContributionPut(1, backer, big.NewInt(500)))
	amount, seen, err := manager.FundingContributionGet(1, backer)
	require.NoError(t, err)
	require.True(t, seen)
	require.Zero(t, amount.Cmp(big.NewInt(500)))

	// Zeroing models a refund: the record remains so the backer is not
	// re-counted on a later contribution.
	require.NoError(t, manager.FundingContributionPut(1, backer, big.NewInt(0)))
	amount, seen, err = manager.FundingContributionGet(1, backer)
	require.NoError(t, err)
	require.True(t, seen)
	require.Zero(t, amount.Sign())
}

func TestHolderIndexSwapAndPop(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	holder := testAddr(0x03)

	for id := uint64(1); id <= 4; id++ {
		require.NoError(t, manager.CertificateHolderAppend(holder, id))
	}

	// Removing a middle element swaps the last into its slot.
	require.NoError(t, manager.CertificateHolderRemove(holder, 2))
	ids, err := manager.CertificateHolderList(holder)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{1, 3, 4}, ids)

	// The moved element's position record must stay consistent.
	require.NoError(t, manager.CertificateHolderRemove(holder, 4))
	ids, err = manager.CertificateHolderList(holder)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{1, 3}, ids)

	require.NoError(t, manager.CertificateHolderRemove(holder, 1))
	require.NoError(t, manager.CertificateHolderRemove(holder, 3))
	ids, err = manager.CertificateHolderList(holder)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestCertificateRoundTrip(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	cert := &certificate.Certificate{
		TokenID:          1,
		CampaignID:       7,
		Holder:           testAddr(0x04),
		OriginalAmount:   big.NewInt(2_500),
		RoyaltyBps:       250,
		RoyaltyRecipient: testAddr(0x04),
		Transferable:     true,
		MetadataURI:      "ipfs://certificate",
		MintedAt:         1_700_000_000,
	}
	require.NoError(t, manager.CertificatePut(cert))

	got, ok, err := manager.CertificateGet(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, cert, got)
}

func TestInvestorShareListFollowsRefs(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	account := &royalty.CampaignAccount{
		CampaignID:       1,
		Creator:          testAddr(0x01),
		TotalRaised:      big.NewInt(1_000),
		CreatorShareBps:  2_000,
		PlatformShareBps: 500,
		TotalRevenue:     big.NewInt(0),
		TotalDistributed: big.NewInt(0),
		CreatorBalance:   big.NewInt(0),
		PlatformBalance:  big.NewInt(0),
		NextInvestorRef:  2,
		CreatedAt:        1_700_000_000,
	}
	require.NoError(t, manager.RevenueAccountPut(account))

	for ref := uint64(1); ref <= 2; ref++ {
		require.NoError(t, manager.InvestorSharePut(&royalty.InvestorShare{
			CampaignID:   1,
			Ref:          ref,
			Investor:     testAddr(byte(ref)),
			Contribution: big.NewInt(int64(ref) * 100),
			ShareBps:     uint32(ref) * 1_000,
			Balance:      big.NewInt(0),
		}))
	}

	shares, err := manager.InvestorShareList(1)
	require.NoError(t, err)
	require.Len(t, shares, 2)
	require.Equal(t, uint64(1), shares[0].Ref)
	require.Equal(t, uint64(2), shares[1].Ref)
}

func TestAllowanceZeroDeletesRecord(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	owner := testAddr(0x01)
	spender := testAddr(0x02)

	require.NoError(t, manager.AllowancePut(owner, spender, big.NewInt(100)))
	allowance, err := manager.AllowanceGet(owner, spender)
	require.NoError(t, err)
	require.Zero(t, allowance.Cmp(big.NewInt(100)))

	require.NoError(t, manager.AllowancePut(owner, spender, big.NewInt(0)))
	allowance, err = manager.AllowanceGet(owner, spender)
	require.NoError(t, err)
	require.Nil(t, allowance)
}

func TestGenesisMarker(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	applied, err := manager.GenesisApplied()
	require.NoError(t, err)
	require.False(t, applied)

	require.NoError(t, manager.SetGenesisApplied())
	applied, err = manager.GenesisApplied()
	require.NoError(t, err)
	require.True(t, applied)
}
