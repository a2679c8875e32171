package fundraising

import (
	"errors"
	"math/big"
	"testing"

	"cinechain/core/events"
	"cinechain/core/types"
)

type mockState struct {
	nextID        uint64
	campaigns     map[uint64]*Campaign
	contributions map[uint64]map[types.Address]*big.Int
	params        *Params
}

func newMockState() *mockState {
	return &mockState{
		campaigns:     make(map[uint64]*Campaign),
		contributions: make(map[uint64]map[types.Address]*big.Int),
	}
}

func (m *mockState) FundingNextCampaignID() (uint64, error) {
	m.nextID++
	return m.nextID, nil
}

func (m *mockState) FundingCampaignGet(id uint64) (*Campaign, bool, error) {
	campaign, ok := m.campaigns[id]
	if !ok {
		return nil, false, nil
	}
	return campaign.Clone(), true, nil
}

func (m *mockState) FundingCampaignPut(c *Campaign) error {
	m.campaigns[c.ID] = c.Clone()
	return nil
}

func (m *mockState) FundingContributionGet(campaignID uint64, contributor types.Address) (*big.Int, bool, error) {
	byAddr, ok := m.contributions[campaignID]
	if !ok {
		return nil, false, nil
	}
	amount, ok := byAddr[contributor]
	if !ok {
		return nil, false, nil
	}
	return new(big.Int).Set(amount), true, nil
}

func (m *mockState) FundingContributionPut(campaignID uint64, contributor types.Address, amount *big.Int) error {
	byAddr, ok := m.contributions[campaignID]
	if !ok {
		byAddr = make(map[types.Address]*big.Int)
		m.contributions[campaignID] = byAddr
	}
	byAddr[contributor] = new(big.Int).Set(amount)
	return nil
}

func (m *mockState) FundingParamsGet() (*Params, bool, error) {
	if m.params == nil {
		return nil, false, nil
	}
	return m.params.Clone(), true, nil
}

func (m *mockState) FundingParamsPut(p *Params) error {
	m.params = p.Clone()
	return nil
}

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

func (m *mockLedger) BalanceOf(addr types.Address) (*big.Int, error) {
	return new(big.Int).Set(m.balance(addr)), nil
}

type captureEmitter struct {
	types []string
}

func (c *captureEmitter) Emit(evt events.Event) {
	c.types = append(c.types, evt.EventType())
}

type pauseAll struct{ paused bool }

func (p pauseAll) IsPaused(string) bool { return p.paused }

func addr(last byte) types.Address {
	var out types.Address
	out[19] = last
	return out
}

var (
	admin   = addr(0xAD)
	wallet  = addr(0xFE)
	creator = addr(0x01)
	backerA = addr(0x02)
	backerB = addr(0x03)
)

func newTestEngine(state *mockState, ledger *mockLedger, now int64) *Engine {
	engine := NewEngine()
	engine.SetState(state)
	engine.SetToken(ledger)
	engine.SetAdmin(admin)
	engine.SetDefaultParams(300, wallet)
	engine.SetNowFunc(func() int64 { return now })
	return engine
}

func TestCreateCampaignValidation(t *testing.T) {
	engine := newTestEngine(newMockState(), newMockLedger(), 100)

	if _, err := engine.CreateCampaign(types.ZeroAddress, "Title", "Desc", big.NewInt(1000), 3600); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
	if _, err := engine.CreateCampaign(creator, "  ", "Desc", big.NewInt(1000), 3600); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank title, got %v", err)
	}
	if _, err := engine.CreateCampaign(creator, "Title", "Desc", big.NewInt(0), 3600); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero goal, got %v", err)
	}
	if _, err := engine.CreateCampaign(creator, "Title", "Desc", big.NewInt(1000), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero duration, got %v", err)
	}

	campaign, err := engine.CreateCampaign(creator, "Title", "Desc", big.NewInt(1000), 3600)
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if campaign.ID != 1 || campaign.Status != StatusActive {
		t.Fatalf("unexpected campaign %+v", campaign)
	}
	if campaign.StartTime != 100 || campaign.EndTime != 3700 {
		t.Fatalf("unexpected window [%d, %d]", campaign.StartTime, campaign.EndTime)
	}
}

func TestContributeAccumulatesAndCountsBackersOnce(t *testing.T) {
	state := newMockState()
	ledger := newMockLedger()
	ledger.credit(backerA, 10_000)
	engine := newTestEngine(state, ledger, 100)

	if _, err := engine.CreateCampaign(creator, "Title", "Desc", big.NewInt(10_000), 3600); err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	if _, err := engine.Contribute(1, backerA, big.NewInt(0)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := engine.Contribute(99, backerA, big.NewInt(100)); !errors.Is(err, ErrCampaignNotFound) {
		t.Fatalf("expected ErrCampaignNotFound, got %v", err)
	}

	campaign, err := engine.Contribute(1, backerA, big.NewInt(400))
	if err != nil {
		t.Fatalf("first contribution: %v", err)
	}
	if campaign.BackerCount != 1 {
		t.Fatalf("unexpected backer count %d", campaign.BackerCount)
	}

	campaign, err = engine.Contribute(1, backerA, big.NewInt(200))
	if err != nil {
		t.Fatalf("second contribution: %v", err)
	}
	if campaign.BackerCount != 1 {
		t.Fatalf("repeat contributor double counted: %d", campaign.BackerCount)
	}
	if campaign.CurrentFunding.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("unexpected funding %s", campaign.CurrentFunding)
	}

	owed, err := engine.ContributionOf(1, backerA)
	if err != nil {
		t.Fatalf("contribution lookup: %v", err)
	}
	if owed.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("unexpected contribution %s", owed)
	}
	if ledger.balance(VaultAddress).Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("vault holds %s, want 600", ledger.balance(VaultAddress))
	}
}

func TestGoalReachedPaysOutAtomically(t *testing.T) {
	state := newMockState()
	ledger := newMockLedger()
	ledger.credit(backerA, 5_000)
	ledger.credit(backerB, 5_000)
	emitter := &captureEmitter{}
	engine := newTestEngine(state, ledger, 100)
	engine.SetEmitter(emitter)

	if _, err := engine.CreateCampaign(creator, "Title", "Desc", big.NewInt(1_000), 3600); err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if _, err := engine.Contribute(1, backerA, big.NewInt(970)); err != nil {
		t.Fatalf("partial contribution: %v", err)
	}

	campaign, err := engine.Contribute(1, backerB, big.NewInt(30))
	if err != nil {
		t.Fatalf("goal-reaching contribution: %v", err)
	}
	if campaign.Status != StatusFunded {
		t.Fatalf("expected funded campaign, got %s", campaign.Status)
	}
	if campaign.BackerCount != 2 {
		t.Fatalf("unexpected backer count %d", campaign.BackerCount)
	}

	// 3% platform fee on 1000: creator 970, platform 30, vault drained.
	if got := ledger.balance(creator); got.Cmp(big.NewInt(970)) != 0 {
		t.Fatalf("creator payout %s, want 970", got)
	}
	if got := ledger.balance(wallet); got.Cmp(big.NewInt(30)) != 0 {
		t.Fatalf("platform fee %s, want 30", got)
	}
	if got := ledger.balance(VaultAddress); got.Sign() != 0 {
		t.Fatalf("vault not drained: %s", got)
	}

	if _, err := engine.Contribute(1, backerA, big.NewInt(10)); !errors.Is(err, ErrNotActive) {
		t.Fatalf("expected ErrNotActive after funding, got %v", err)
	}

	want := []string{
		EventTypeCampaignCreated,
		EventTypeContributionMade,
		EventTypeContributionMade,
		EventTypeCampaignFunded,
		EventTypeFundsWithdrawn,
	}
	if len(emitter.types) != len(want) {
		t.Fatalf("unexpected event stream %v", emitter.types)
	}
	for i, typ := range want {
		if emitter.types[i] != typ {
			t.Fatalf("event %d: got %s, want %s", i, emitter.types[i], typ)
		}
	}
}

func TestExactGoalContributionFunds(t *testing.T) {
	ledger := newMockLedger()
	ledger.credit(backerA, 1_000)
	engine := newTestEngine(newMockState(), ledger, 100)

	if _, err := engine.CreateCampaign(creator, "Title", "Desc", big.NewInt(1_000), 3600); err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	campaign, err := engine.Contribute(1, backerA, big.NewInt(1_000))
	if err != nil {
		t.Fatalf("exact-goal contribution: %v", err)
	}
	if campaign.Status != StatusFunded {
		t.Fatalf("expected funded, got %s", campaign.Status)
	}
}

func TestContributeAfterDeadlineRejected(t *testing.T) {
	ledger := newMockLedger()
	ledger.credit(backerA, 1_000)
	state := newMockState()
	engine := newTestEngine(state, ledger, 100)

	if _, err := engine.CreateCampaign(creator, "Title", "Desc", big.NewInt(1_000), 3600); err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	engine.SetNowFunc(func() int64 { return 4_000 })
	if _, err := engine.Contribute(1, backerA, big.NewInt(100)); !errors.Is(err, ErrNotActive) {
		t.Fatalf("expected ErrNotActive after deadline, got %v", err)
	}
}

func TestContributeFailedTransferLeavesStateUntouched(t *testing.T) {
	state := newMockState()
	ledger := newMockLedger() // backer has no balance
	engine := newTestEngine(state, ledger, 100)

	if _, err := engine.CreateCampaign(creator, "Title", "Desc", big.NewInt(1_000), 3600); err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if _, err := engine.Contribute(1, backerA, big.NewInt(100)); !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}

	campaign, err := engine.GetCampaign(1)
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if campaign.CurrentFunding.Sign() != 0 || campaign.BackerCount != 0 {
		t.Fatalf("state mutated after failed transfer: %+v", campaign)
	}
}

func TestMarkCampaignFailedEnforcesDeadlineAndAdmin(t *testing.T) {
	ledger := newMockLedger()
	engine := newTestEngine(newMockState(), ledger, 100)

	if _, err := engine.CreateCampaign(creator, "Title", "Desc", big.NewInt(1_000), 3600); err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	if _, err := engine.MarkCampaignFailed(backerA, 1); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if _, err := engine.MarkCampaignFailed(admin, 1); !errors.Is(err, ErrDeadlineNotReached) {
		t.Fatalf("expected ErrDeadlineNotReached, got %v", err)
	}

	engine.SetNowFunc(func() int64 { return 4_000 })
	campaign, err := engine.MarkCampaignFailed(admin, 1)
	if err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if campaign.Status != StatusFailed {
		t.Fatalf("expected failed status, got %s", campaign.Status)
	}
	if _, err := engine.MarkCampaignFailed(admin, 1); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
}

func TestRefundRoundTrip(t *testing.T) {
	state := newMockState()
	ledger := newMockLedger()
	ledger.credit(backerA, 1_000)
	engine := newTestEngine(state, ledger, 100)

	if _, err := engine.CreateCampaign(creator, "Title", "Desc", big.NewInt(5_000), 3600); err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if _, err := engine.Contribute(1, backerA, big.NewInt(800)); err != nil {
		t.Fatalf("contribute: %v", err)
	}

	if _, err := engine.ProcessRefund(1, backerA); !errors.Is(err, ErrNotFailed) {
		t.Fatalf("expected ErrNotFailed for active campaign, got %v", err)
	}

	engine.SetNowFunc(func() int64 { return 4_000 })
	if _, err := engine.MarkCampaignFailed(admin, 1); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	refunded, err := engine.ProcessRefund(1, backerA)
	if err != nil {
		t.Fatalf("process refund: %v", err)
	}
	if refunded.Cmp(big.NewInt(800)) != 0 {
		t.Fatalf("unexpected refund %s", refunded)
	}
	if got := ledger.balance(backerA); got.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("backer balance %s after refund, want 1000", got)
	}

	campaign, err := engine.GetCampaign(1)
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if campaign.CurrentFunding.Sign() != 0 {
		t.Fatalf("funding not decremented: %s", campaign.CurrentFunding)
	}

	if _, err := engine.ProcessRefund(1, backerA); !errors.Is(err, ErrNothingToRefund) {
		t.Fatalf("expected ErrNothingToRefund on repeat, got %v", err)
	}
}

func TestBulkRefundsSkipEmptyEntries(t *testing.T) {
	state := newMockState()
	ledger := newMockLedger()
	ledger.credit(backerA, 500)
	ledger.credit(backerB, 300)
	engine := newTestEngine(state, ledger, 100)

	if _, err := engine.CreateCampaign(creator, "Title", "Desc", big.NewInt(5_000), 3600); err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if _, err := engine.Contribute(1, backerA, big.NewInt(500)); err != nil {
		t.Fatalf("contribute A: %v", err)
	}
	if _, err := engine.Contribute(1, backerB, big.NewInt(300)); err != nil {
		t.Fatalf("contribute B: %v", err)
	}

	engine.SetNowFunc(func() int64 { return 4_000 })
	if _, err := engine.MarkCampaignFailed(admin, 1); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	never := addr(0x44)
	if _, _, err := engine.ProcessBulkRefunds(backerA, 1, nil); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	count, total, err := engine.ProcessBulkRefunds(admin, 1, []types.Address{backerA, never, backerB})
	if err != nil {
		t.Fatalf("bulk refunds: %v", err)
	}
	if count != 2 {
		t.Fatalf("unexpected refund count %d", count)
	}
	if total.Cmp(big.NewInt(800)) != 0 {
		t.Fatalf("unexpected refund total %s", total)
	}
}

func TestPlatformParamUpdates(t *testing.T) {
	engine := newTestEngine(newMockState(), newMockLedger(), 100)

	if err := engine.UpdatePlatformFee(backerA, 100); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if err := engine.UpdatePlatformFee(admin, MaxPlatformFeeBps+1); !errors.Is(err, ErrFeeTooHigh) {
		t.Fatalf("expected ErrFeeTooHigh, got %v", err)
	}
	if err := engine.UpdatePlatformFee(admin, 500); err != nil {
		t.Fatalf("update fee: %v", err)
	}
	if err := engine.UpdatePlatformWallet(admin, types.ZeroAddress); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress for zero wallet, got %v", err)
	}

	params, err := engine.PlatformParams()
	if err != nil {
		t.Fatalf("platform params: %v", err)
	}
	if params.PlatformFeeBps != 500 {
		t.Fatalf("unexpected fee bps %d", params.PlatformFeeBps)
	}
}

func TestPausedModuleRejectsMutations(t *testing.T) {
	engine := newTestEngine(newMockState(), newMockLedger(), 100)
	engine.SetPauses(pauseAll{paused: true})

	if _, err := engine.CreateCampaign(creator, "Title", "Desc", big.NewInt(1_000), 3600); err == nil {
		t.Fatal("expected pause rejection")
	}
}
