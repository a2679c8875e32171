package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"cinechain/core/types"
	"cinechain/native/fundraising"
	"cinechain/storage"
)

func TestStagedWritesInvisibleUntilCommit(t *testing.T) {
	db := storage.NewMemDB()
	base := NewManager(db)
	staged := base.Stage()

	campaign := &fundraising.Campaign{
		ID:             1,
		Creator:        testAddr(0x01),
		Title:          "Staged",
		Description:    "Not yet visible",
		FundingGoal:    big.NewInt(100),
		CurrentFunding: big.NewInt(0),
		Status:         fundraising.StatusActive,
	}
	require.NoError(t, staged.FundingCampaignPut(campaign))

	// Staged data reads back through the overlay...
	got, ok, err := staged.FundingCampaignGet(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Staged", got.Title)

	// ...but the base remains untouched until Commit.
	_, ok, err = base.FundingCampaignGet(1)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, staged.Commit())
	got, ok, err = base.FundingCampaignGet(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Staged", got.Title)
}

func TestAbandonedOverlayRollsBack(t *testing.T) {
	base := NewManager(storage.NewMemDB())
	require.NoError(t, base.KVPut([]byte("key"), uint64(1)))

	staged := base.Stage()
	require.NoError(t, staged.KVPut([]byte("key"), uint64(2)))
	require.NoError(t, staged.KVPut([]byte("other"), uint64(3)))
	// Overlay dropped without Commit.

	var got uint64
	ok, err := base.KVGet([]byte("key"), &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(1), got)

	ok, err = base.KVGet([]byte("other"), nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStagedDeleteShadowsBase(t *testing.T) {
	base := NewManager(storage.NewMemDB())
	require.NoError(t, base.KVPut([]byte("key"), uint64(1)))

	staged := base.Stage()
	require.NoError(t, staged.KVDelete([]byte("key")))

	ok, err := staged.KVGet([]byte("key"), nil)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, staged.Commit())
	ok, err = base.KVGet([]byte("key"), nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStagedAccountsIsolation(t *testing.T) {
	base := NewManager(storage.NewMemDB())
	addr := testAddr(0x05)

	account := types.NewAccount()
	account.Balance = big.NewInt(500)
	require.NoError(t, base.PutAccount(addr, account))

	staged := base.Stage()
	mutated, err := staged.GetAccount(addr)
	require.NoError(t, err)
	mutated.Balance = big.NewInt(200)
	require.NoError(t, staged.PutAccount(addr, mutated))

	// The base still sees the original balance.
	current, err := base.GetAccount(addr)
	require.NoError(t, err)
	require.Zero(t, current.Balance.Cmp(big.NewInt(500)))

	require.NoError(t, staged.Commit())
	current, err = base.GetAccount(addr)
	require.NoError(t, err)
	require.Zero(t, current.Balance.Cmp(big.NewInt(200)))
}
