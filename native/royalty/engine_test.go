package royalty_test

import (
	"errors"
	"math/big"
	"testing"

	"cinechain/core/state"
	"cinechain/core/types"
	. "cinechain/native/royalty"
	"cinechain/storage"
)

type mockLedger struct {
	balances map[types.Address]*big.Int
}

func newMockLedger() *mockLedger {
	return &mockLedger{balances: make(map[types.Address]*big.Int)}
}

func (m *mockLedger) balance(addr types.Address) *big.Int {
	if b, ok := m.balances[addr]; ok {
		return b
	}
	return big.NewInt(0)
}

func (m *mockLedger) credit(addr types.Address, amount int64) {
	m.balances[addr] = new(big.Int).Add(m.balance(addr), big.NewInt(amount))
}

func (m *mockLedger) Transfer(from, to types.Address, amount *big.Int) error {
	if m.balance(from).Cmp(amount) < 0 {
		return errors.New("insufficient balance")
	}
	m.balances[from] = new(big.Int).Sub(m.balance(from), amount)
	m.balances[to] = new(big.Int).Add(m.balance(to), amount)
	return nil
}

func (m *mockLedger) TransferFrom(_, from, to types.Address, amount *big.Int) error {
	return m.Transfer(from, to, amount)
}

func addr(last byte) types.Address {
	var out types.Address
	out[19] = last
	return out
}

var (
	admin     = addr(0xAD)
	wallet    = addr(0xFE)
	creator   = addr(0x01)
	investorA = addr(0x02)
	investorB = addr(0x03)
	studio    = addr(0x04)
)

func newTestEngine(ledger *mockLedger) *Engine {
	engine := NewEngine()
	engine.SetState(state.NewManager(storage.NewMemDB()))
	engine.SetToken(ledger)
	engine.SetAdmin(admin)
	engine.SetPlatformWallet(wallet)
	engine.SetNowFunc(func() int64 { return 900 })
	return engine
}

// seedLedger opens a campaign account with 20% creator and 5% platform
// shares over 1000 raised, split 600/400 between two investors.
func seedLedger(t *testing.T, engine *Engine) {
	t.Helper()
	if _, err := engine.CreateCampaignAccount(admin, 1, creator, big.NewInt(1_000), 2_000, 500); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := engine.AddInvestorShare(admin, 1, investorA, big.NewInt(600)); err != nil {
		t.Fatalf("add investor A: %v", err)
	}
	if _, err := engine.AddInvestorShare(admin, 1, investorB, big.NewInt(400)); err != nil {
		t.Fatalf("add investor B: %v", err)
	}
}

func TestCreateCampaignAccountValidation(t *testing.T) {
	engine := newTestEngine(newMockLedger())

	if _, err := engine.CreateCampaignAccount(creator, 1, creator, big.NewInt(1_000), 2_000, 500); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if _, err := engine.CreateCampaignAccount(admin, 1, types.ZeroAddress, big.NewInt(1_000), 2_000, 500); !errors.Is(err, ErrInvalidCreator) {
		t.Fatalf("expected ErrInvalidCreator, got %v", err)
	}
	if _, err := engine.CreateCampaignAccount(admin, 1, creator, big.NewInt(0), 2_000, 500); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := engine.CreateCampaignAccount(admin, 1, creator, big.NewInt(1_000), 6_000, 4_001); !errors.Is(err, ErrShareTooHigh) {
		t.Fatalf("expected ErrShareTooHigh, got %v", err)
	}

	if _, err := engine.CreateCampaignAccount(admin, 1, creator, big.NewInt(1_000), 2_000, 500); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := engine.CreateCampaignAccount(admin, 1, creator, big.NewInt(1_000), 2_000, 500); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestAddInvestorShareComputesBps(t *testing.T) {
	engine := newTestEngine(newMockLedger())

	if _, err := engine.AddInvestorShare(admin, 1, investorA, big.NewInt(100)); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	if _, err := engine.CreateCampaignAccount(admin, 1, creator, big.NewInt(1_000), 2_000, 500); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := engine.AddInvestorShare(admin, 1, investorA, big.NewInt(1_001)); !errors.Is(err, ErrContributionTooBig) {
		t.Fatalf("expected ErrContributionTooBig, got %v", err)
	}

	share, err := engine.AddInvestorShare(admin, 1, investorA, big.NewInt(600))
	if err != nil {
		t.Fatalf("add share: %v", err)
	}
	if share.Ref != 1 || share.ShareBps != 6_000 {
		t.Fatalf("unexpected share %+v", share)
	}

	second, err := engine.AddInvestorShare(admin, 1, investorB, big.NewInt(400))
	if err != nil {
		t.Fatalf("add second share: %v", err)
	}
	if second.Ref != 2 || second.ShareBps != 4_000 {
		t.Fatalf("unexpected second share %+v", second)
	}

	shares, err := engine.SharesOf(1)
	if err != nil {
		t.Fatalf("shares: %v", err)
	}
	if len(shares) != 2 {
		t.Fatalf("unexpected share count %d", len(shares))
	}
}

func TestReceiveRevenuePullsIntoVault(t *testing.T) {
	ledger := newMockLedger()
	ledger.credit(studio, 500)
	engine := newTestEngine(ledger)
	seedLedger(t, engine)

	account, err := engine.ReceiveRevenue(1, studio, big.NewInt(50))
	if err != nil {
		t.Fatalf("receive revenue: %v", err)
	}
	if account.TotalRevenue.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("unexpected total revenue %s", account.TotalRevenue)
	}
	if got := ledger.balance(VaultAddress); got.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("vault holds %s, want 50", got)
	}
	if got := ledger.balance(studio); got.Cmp(big.NewInt(450)) != 0 {
		t.Fatalf("studio holds %s, want 450", got)
	}

	if _, err := engine.ReceiveRevenue(1, studio, big.NewInt(1_000)); !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed for overdraft, got %v", err)
	}
}

func TestDistributeRoyaltiesProportionally(t *testing.T) {
	ledger := newMockLedger()
	ledger.credit(studio, 500)
	engine := newTestEngine(ledger)
	seedLedger(t, engine)

	if _, err := engine.DistributeRoyalties(1); !errors.Is(err, ErrNothingToDistribute) {
		t.Fatalf("expected ErrNothingToDistribute before revenue, got %v", err)
	}

	if _, err := engine.ReceiveRevenue(1, studio, big.NewInt(50)); err != nil {
		t.Fatalf("receive revenue: %v", err)
	}
	account, err := engine.DistributeRoyalties(1)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}

	// 50 revenue: creator 20% = 10, platform 5% = 2, pool 38.
	// Investor A (60%) = 22, investor B (40%) = 15, 1 dust in vault.
	if account.CreatorBalance.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("creator balance %s, want 10", account.CreatorBalance)
	}
	if account.PlatformBalance.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("platform balance %s, want 2", account.PlatformBalance)
	}
	if account.TotalDistributed.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("watermark %s, want 50", account.TotalDistributed)
	}

	shares, err := engine.SharesOf(1)
	if err != nil {
		t.Fatalf("shares: %v", err)
	}
	want := map[uint64]int64{1: 22, 2: 15}
	for _, share := range shares {
		if share.Balance.Cmp(big.NewInt(want[share.Ref])) != 0 {
			t.Fatalf("share %d balance %s, want %d", share.Ref, share.Balance, want[share.Ref])
		}
	}
}

func TestDistributeTwiceWithoutNewRevenue(t *testing.T) {
	ledger := newMockLedger()
	ledger.credit(studio, 500)
	engine := newTestEngine(ledger)
	seedLedger(t, engine)

	if _, err := engine.ReceiveRevenue(1, studio, big.NewInt(50)); err != nil {
		t.Fatalf("receive revenue: %v", err)
	}
	if _, err := engine.DistributeRoyalties(1); err != nil {
		t.Fatalf("first distribute: %v", err)
	}
	if _, err := engine.DistributeRoyalties(1); !errors.Is(err, ErrNothingToDistribute) {
		t.Fatalf("expected ErrNothingToDistribute on repeat, got %v", err)
	}

	// New revenue reopens the window for exactly the delta.
	if _, err := engine.ReceiveRevenue(1, studio, big.NewInt(100)); err != nil {
		t.Fatalf("more revenue: %v", err)
	}
	account, err := engine.DistributeRoyalties(1)
	if err != nil {
		t.Fatalf("second distribute: %v", err)
	}
	// 100 delta: creator 20, platform 5, cumulative 10+20 and 2+5.
	if account.CreatorBalance.Cmp(big.NewInt(30)) != 0 {
		t.Fatalf("creator balance %s, want 30", account.CreatorBalance)
	}
	if account.PlatformBalance.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("platform balance %s, want 7", account.PlatformBalance)
	}
	if account.TotalDistributed.Cmp(big.NewInt(150)) != 0 {
		t.Fatalf("watermark %s, want 150", account.TotalDistributed)
	}
}

func TestClaimsArePullBasedAndIdempotent(t *testing.T) {
	ledger := newMockLedger()
	ledger.credit(studio, 500)
	engine := newTestEngine(ledger)
	seedLedger(t, engine)

	if _, err := engine.ReceiveRevenue(1, studio, big.NewInt(50)); err != nil {
		t.Fatalf("receive revenue: %v", err)
	}
	if _, err := engine.DistributeRoyalties(1); err != nil {
		t.Fatalf("distribute: %v", err)
	}

	claimed, err := engine.ClaimCreatorRoyalties(creator)
	if err != nil {
		t.Fatalf("creator claim: %v", err)
	}
	if claimed.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("creator claimed %s, want 10", claimed)
	}
	if got := ledger.balance(creator); got.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("creator balance %s, want 10", got)
	}
	if _, err := engine.ClaimCreatorRoyalties(creator); !errors.Is(err, ErrNothingToClaim) {
		t.Fatalf("expected ErrNothingToClaim on repeat, got %v", err)
	}

	claimed, err = engine.ClaimInvestorRoyalties(investorA)
	if err != nil {
		t.Fatalf("investor claim: %v", err)
	}
	if claimed.Cmp(big.NewInt(22)) != 0 {
		t.Fatalf("investor A claimed %s, want 22", claimed)
	}
	if _, err := engine.ClaimInvestorRoyalties(investorA); !errors.Is(err, ErrNothingToClaim) {
		t.Fatalf("expected ErrNothingToClaim for investor repeat, got %v", err)
	}

	if _, err := engine.ClaimPlatformFees(studio); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for stranger, got %v", err)
	}
	claimed, err = engine.ClaimPlatformFees(wallet)
	if err != nil {
		t.Fatalf("platform claim: %v", err)
	}
	if claimed.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("platform claimed %s, want 2", claimed)
	}
	if got := ledger.balance(wallet); got.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("wallet balance %s, want 2", got)
	}

	// Investor B's unclaimed 15 plus the rounding dust stay escrowed.
	if got := ledger.balance(VaultAddress); got.Cmp(big.NewInt(16)) != 0 {
		t.Fatalf("vault remainder %s, want 16", got)
	}
	if got := ledger.balance(investorB); got.Sign() != 0 {
		t.Fatalf("investor B paid without claiming: %s", got)
	}
}

func TestAdminMayClaimPlatformFees(t *testing.T) {
	ledger := newMockLedger()
	ledger.credit(studio, 500)
	engine := newTestEngine(ledger)
	seedLedger(t, engine)

	if _, err := engine.ReceiveRevenue(1, studio, big.NewInt(100)); err != nil {
		t.Fatalf("receive revenue: %v", err)
	}
	if _, err := engine.DistributeRoyalties(1); err != nil {
		t.Fatalf("distribute: %v", err)
	}

	claimed, err := engine.ClaimPlatformFees(admin)
	if err != nil {
		t.Fatalf("admin platform claim: %v", err)
	}
	if claimed.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("claimed %s, want 5", claimed)
	}
	// Funds land at the wallet even when the administrator triggers it.
	if got := ledger.balance(wallet); got.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("wallet balance %s, want 5", got)
	}
}
