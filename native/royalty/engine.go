package royalty

import (
	"fmt"
	"math/big"
	"time"

	"cinechain/core/events"
	"cinechain/core/types"
	"cinechain/native/common"
)

// PauseModule is the switchboard name consulted before mutating operations.
const PauseModule = "royalty"

type engineState interface {
	RevenueAccountGet(campaignID uint64) (*CampaignAccount, bool, error)
	RevenueAccountPut(a *CampaignAccount) error
	RevenueCampaignIDs() ([]uint64, error)
	RevenueCampaignAppend(campaignID uint64) error
	RevenueCreatorCampaigns(creator types.Address) ([]uint64, error)
	RevenueCreatorCampaignAppend(creator types.Address, campaignID uint64) error
	InvestorShareGet(campaignID, ref uint64) (*InvestorShare, bool, error)
	InvestorSharePut(s *InvestorShare) error
	InvestorShareList(campaignID uint64) ([]*InvestorShare, error)
	InvestorShareKeys(investor types.Address) ([]ShareKey, error)
	InvestorShareKeyAppend(investor types.Address, key ShareKey) error
}

type tokenLedger interface {
	Transfer(from, to types.Address, amount *big.Int) error
	TransferFrom(spender, from, to types.Address, amount *big.Int) error
}

// Engine is the revenue share ledger. It is deliberately independent of the
// funding engine: once shares are registered, distribution follows the fixed
// percentages regardless of the original contribution flow. All payouts are
// pull-based claims against balances credited by DistributeRoyalties.
type Engine struct {
	state   engineState
	token   tokenLedger
	emitter events.Emitter
	pauses  common.PauseView
	nowFn   func() int64

	admin          types.Address
	platformWallet types.Address
}

// NewEngine constructs a revenue ledger with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the ledger.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetToken configures the token ledger revenue settles through.
func (e *Engine) SetToken(ledger tokenLedger) { e.token = ledger }

// SetAdmin configures the administrator identity.
func (e *Engine) SetAdmin(addr types.Address) { e.admin = addr }

// SetPlatformWallet configures the identity allowed to claim platform fees.
func (e *Engine) SetPlatformWallet(addr types.Address) { e.platformWallet = addr }

// SetPauses configures the pause switchboard.
func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if e.token == nil {
		return fmt.Errorf("royalty: token ledger not configured")
	}
	return nil
}

func (e *Engine) requireAdmin(caller types.Address) error {
	if e.admin.IsZero() || caller != e.admin {
		return ErrNotAuthorized
	}
	return nil
}

func (e *Engine) loadAccount(campaignID uint64) (*CampaignAccount, error) {
	account, ok, err := e.state.RevenueAccountGet(campaignID)
	if err != nil {
		return nil, err
	}
	if !ok || account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// CreateCampaignAccount opens the revenue ledger for a campaign.
// Administrator only. The combined creator and platform share may not exceed
// 100%: past that point the investor pool would go negative under integer
// arithmetic.
func (e *Engine) CreateCampaignAccount(caller types.Address, campaignID uint64, creator types.Address, totalRaised *big.Int, creatorShareBps, platformShareBps uint32) (*CampaignAccount, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := common.Guard(e.pauses, PauseModule); err != nil {
		return nil, err
	}
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	if creator.IsZero() {
		return nil, ErrInvalidCreator
	}
	if totalRaised == nil || totalRaised.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if uint64(creatorShareBps)+uint64(platformShareBps) > common.BpsDenominator {
		return nil, ErrShareTooHigh
	}
	if _, ok, err := e.state.RevenueAccountGet(campaignID); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAccountExists
	}
	account := &CampaignAccount{
		CampaignID:       campaignID,
		Creator:          creator,
		TotalRaised:      new(big.Int).Set(totalRaised),
		CreatorShareBps:  creatorShareBps,
		PlatformShareBps: platformShareBps,
		TotalRevenue:     big.NewInt(0),
		TotalDistributed: big.NewInt(0),
		CreatorBalance:   big.NewInt(0),
		PlatformBalance:  big.NewInt(0),
		CreatedAt:        e.now(),
	}
	if err := e.state.RevenueAccountPut(account); err != nil {
		return nil, err
	}
	if err := e.state.RevenueCampaignAppend(campaignID); err != nil {
		return nil, err
	}
	if err := e.state.RevenueCreatorCampaignAppend(creator, campaignID); err != nil {
		return nil, err
	}
	e.emit(AccountCreatedEvent(account))
	return account.Clone(), nil
}

// AddInvestorShare registers an investor entry with a fixed basis-point
// weight computed from their contribution against the campaign's total
// raised. Administrator only; shares must be registered before revenue is
// distributed for them to participate.
func (e *Engine) AddInvestorShare(caller types.Address, campaignID uint64, investor types.Address, contribution *big.Int) (*InvestorShare, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := common.Guard(e.pauses, PauseModule); err != nil {
		return nil, err
	}
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	if investor.IsZero() {
		return nil, ErrInvalidInvestor
	}
	if contribution == nil || contribution.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	account, err := e.loadAccount(campaignID)
	if err != nil {
		return nil, err
	}
	if contribution.Cmp(account.TotalRaised) > 0 {
		return nil, ErrContributionTooBig
	}
	shareBps, err := common.BpsOf(contribution, account.TotalRaised)
	if err != nil {
		return nil, err
	}
	account.NextInvestorRef++
	share := &InvestorShare{
		CampaignID:   campaignID,
		Ref:          account.NextInvestorRef,
		Investor:     investor,
		Contribution: new(big.Int).Set(contribution),
		ShareBps:     shareBps,
		Balance:      big.NewInt(0),
	}
	if err := e.state.InvestorSharePut(share); err != nil {
		return nil, err
	}
	if err := e.state.InvestorShareKeyAppend(investor, ShareKey{CampaignID: campaignID, Ref: share.Ref}); err != nil {
		return nil, err
	}
	if err := e.state.RevenueAccountPut(account); err != nil {
		return nil, err
	}
	e.emit(InvestorShareAddedEvent(share))
	return share.Clone(), nil
}

// ReceiveRevenue pulls a revenue deposit from the payer into the royalty
// vault and raises the campaign's cumulative received total. Distribution is
// a separate step.
func (e *Engine) ReceiveRevenue(campaignID uint64, payer types.Address, amount *big.Int) (*CampaignAccount, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := common.Guard(e.pauses, PauseModule); err != nil {
		return nil, err
	}
	if payer.IsZero() {
		return nil, ErrInvalidInvestor
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	account, err := e.loadAccount(campaignID)
	if err != nil {
		return nil, err
	}
	if err := e.token.TransferFrom(VaultAddress, payer, VaultAddress, amount); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransferFailed, err)
	}
	account.TotalRevenue = new(big.Int).Add(account.TotalRevenue, amount)
	if err := e.state.RevenueAccountPut(account); err != nil {
		return nil, err
	}
	e.emit(RevenueReceivedEvent(campaignID, payer, amount, account.TotalRevenue))
	return account.Clone(), nil
}

// DistributeRoyalties credits creator, platform and investor balances from
// the revenue received since the last distribution, then advances the
// watermark. Calling again before new revenue arrives fails rather than
// double-crediting. Rounding dust (the floor-division remainders) stays in
// the vault.
func (e *Engine) DistributeRoyalties(campaignID uint64) (*CampaignAccount, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := common.Guard(e.pauses, PauseModule); err != nil {
		return nil, err
	}
	account, err := e.loadAccount(campaignID)
	if err != nil {
		return nil, err
	}
	revenue := account.Undistributed()
	if revenue.Sign() <= 0 {
		return nil, ErrNothingToDistribute
	}
	creatorCut := common.BpsShare(revenue, account.CreatorShareBps)
	platformCut := common.BpsShare(revenue, account.PlatformShareBps)
	investorPool := new(big.Int).Sub(revenue, creatorCut)
	investorPool.Sub(investorPool, platformCut)
	shares, err := e.state.InvestorShareList(campaignID)
	if err != nil {
		return nil, err
	}
	for _, share := range shares {
		credit := common.BpsShare(investorPool, share.ShareBps)
		if credit.Sign() == 0 {
			continue
		}
		share.Balance = new(big.Int).Add(ensureInt(share.Balance), credit)
		if err := e.state.InvestorSharePut(share); err != nil {
			return nil, err
		}
	}
	account.CreatorBalance = new(big.Int).Add(account.CreatorBalance, creatorCut)
	account.PlatformBalance = new(big.Int).Add(account.PlatformBalance, platformCut)
	account.TotalDistributed = new(big.Int).Set(account.TotalRevenue)
	if err := e.state.RevenueAccountPut(account); err != nil {
		return nil, err
	}
	e.emit(RoyaltiesDistributedEvent(campaignID, revenue, creatorCut, platformCut, investorPool))
	return account.Clone(), nil
}

// ClaimCreatorRoyalties pays out the caller's accumulated creator balance
// across every campaign account they created.
func (e *Engine) ClaimCreatorRoyalties(caller types.Address) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := common.Guard(e.pauses, PauseModule); err != nil {
		return nil, err
	}
	campaignIDs, err := e.state.RevenueCreatorCampaigns(caller)
	if err != nil {
		return nil, err
	}
	total := big.NewInt(0)
	touched := make([]*CampaignAccount, 0, len(campaignIDs))
	for _, id := range campaignIDs {
		account, err := e.loadAccount(id)
		if err != nil {
			return nil, err
		}
		if account.Creator != caller || ensureInt(account.CreatorBalance).Sign() == 0 {
			continue
		}
		total.Add(total, account.CreatorBalance)
		account.CreatorBalance = big.NewInt(0)
		touched = append(touched, account)
	}
	if total.Sign() == 0 {
		return nil, ErrNothingToClaim
	}
	if err := e.token.Transfer(VaultAddress, caller, total); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransferFailed, err)
	}
	for _, account := range touched {
		if err := e.state.RevenueAccountPut(account); err != nil {
			return nil, err
		}
	}
	e.emit(RoyaltiesClaimedEvent(caller, "creator", total))
	return total, nil
}

// ClaimInvestorRoyalties pays out the caller's accumulated investor balance
// across every share they hold.
func (e *Engine) ClaimInvestorRoyalties(caller types.Address) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := common.Guard(e.pauses, PauseModule); err != nil {
		return nil, err
	}
	keys, err := e.state.InvestorShareKeys(caller)
	if err != nil {
		return nil, err
	}
	total := big.NewInt(0)
	touched := make([]*InvestorShare, 0, len(keys))
	for _, key := range keys {
		share, ok, err := e.state.InvestorShareGet(key.CampaignID, key.Ref)
		if err != nil {
			return nil, err
		}
		if !ok || share == nil || share.Investor != caller || ensureInt(share.Balance).Sign() == 0 {
			continue
		}
		total.Add(total, share.Balance)
		share.Balance = big.NewInt(0)
		touched = append(touched, share)
	}
	if total.Sign() == 0 {
		return nil, ErrNothingToClaim
	}
	if err := e.token.Transfer(VaultAddress, caller, total); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransferFailed, err)
	}
	for _, share := range touched {
		if err := e.state.InvestorSharePut(share); err != nil {
			return nil, err
		}
	}
	e.emit(RoyaltiesClaimedEvent(caller, "investor", total))
	return total, nil
}

// ClaimPlatformFees pays out every campaign's accumulated platform balance
// to the platform wallet. Callable by the administrator or the wallet
// itself.
func (e *Engine) ClaimPlatformFees(caller types.Address) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := common.Guard(e.pauses, PauseModule); err != nil {
		return nil, err
	}
	if caller != e.platformWallet && (e.admin.IsZero() || caller != e.admin) {
		return nil, ErrNotAuthorized
	}
	if e.platformWallet.IsZero() {
		return nil, ErrNotAuthorized
	}
	campaignIDs, err := e.state.RevenueCampaignIDs()
	if err != nil {
		return nil, err
	}
	total := big.NewInt(0)
	touched := make([]*CampaignAccount, 0, len(campaignIDs))
	for _, id := range campaignIDs {
		account, err := e.loadAccount(id)
		if err != nil {
			return nil, err
		}
		if ensureInt(account.PlatformBalance).Sign() == 0 {
			continue
		}
		total.Add(total, account.PlatformBalance)
		account.PlatformBalance = big.NewInt(0)
		touched = append(touched, account)
	}
	if total.Sign() == 0 {
		return nil, ErrNothingToClaim
	}
	if err := e.token.Transfer(VaultAddress, e.platformWallet, total); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransferFailed, err)
	}
	for _, account := range touched {
		if err := e.state.RevenueAccountPut(account); err != nil {
			return nil, err
		}
	}
	e.emit(RoyaltiesClaimedEvent(e.platformWallet, "platform", total))
	return total, nil
}

// GetAccount returns the revenue account for a campaign.
func (e *Engine) GetAccount(campaignID uint64) (*CampaignAccount, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	account, err := e.loadAccount(campaignID)
	if err != nil {
		return nil, err
	}
	return account.Clone(), nil
}

// SharesOf returns every registered investor share for a campaign.
func (e *Engine) SharesOf(campaignID uint64) ([]*InvestorShare, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if _, err := e.loadAccount(campaignID); err != nil {
		return nil, err
	}
	shares, err := e.state.InvestorShareList(campaignID)
	if err != nil {
		return nil, err
	}
	out := make([]*InvestorShare, len(shares))
	for i, share := range shares {
		out[i] = share.Clone()
	}
	return out, nil
}
