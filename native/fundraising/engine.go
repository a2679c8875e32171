package fundraising

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"cinechain/core/events"
	"cinechain/core/types"
	"cinechain/native/common"
)

// PauseModule is the switchboard name consulted before mutating operations.
const PauseModule = "fundraising"

type engineState interface {
	FundingNextCampaignID() (uint64, error)
	FundingCampaignGet(id uint64) (*Campaign, bool, error)
	FundingCampaignPut(c *Campaign) error
	FundingContributionGet(campaignID uint64, contributor types.Address) (*big.Int, bool, error)
	FundingContributionPut(campaignID uint64, contributor types.Address, amount *big.Int) error
	FundingParamsGet() (*Params, bool, error)
	FundingParamsPut(p *Params) error
}

type tokenLedger interface {
	Transfer(from, to types.Address, amount *big.Int) error
	TransferFrom(spender, from, to types.Address, amount *big.Int) error
	BalanceOf(addr types.Address) (*big.Int, error)
}

// Engine owns the per-campaign funding state machine: it accepts escrowed
// contributions, decides success or failure, and pays out or refunds. All
// token movement happens through the configured ledger; state mutations are
// ordered so a rejected transfer leaves nothing changed.
type Engine struct {
	state   engineState
	token   tokenLedger
	emitter events.Emitter
	pauses  common.PauseView
	nowFn   func() int64

	admin         types.Address
	defaultFeeBps uint32
	defaultWallet types.Address
}

// NewEngine constructs a funding engine with a no-op emitter. Callers must
// configure state, token ledger and administrator before use.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetToken configures the token ledger funds settle through.
func (e *Engine) SetToken(ledger tokenLedger) { e.token = ledger }

// SetAdmin configures the administrator identity compared against the caller
// on every gated operation.
func (e *Engine) SetAdmin(addr types.Address) { e.admin = addr }

// SetPauses configures the pause switchboard.
func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

// SetDefaultParams seeds the platform fee and wallet applied before any
// administrator update is persisted.
func (e *Engine) SetDefaultParams(feeBps uint32, wallet types.Address) {
	e.defaultFeeBps = feeBps
	e.defaultWallet = wallet
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
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
		return fmt.Errorf("fundraising: token ledger not configured")
	}
	return nil
}

func (e *Engine) requireAdmin(caller types.Address) error {
	if e.admin.IsZero() || caller != e.admin {
		return ErrNotAuthorized
	}
	return nil
}

func (e *Engine) params() (*Params, error) {
	params, ok, err := e.state.FundingParamsGet()
	if err != nil {
		return nil, err
	}
	if !ok || params == nil {
		return &Params{PlatformFeeBps: e.defaultFeeBps, PlatformWallet: e.defaultWallet}, nil
	}
	return params, nil
}

func (e *Engine) loadCampaign(id uint64) (*Campaign, error) {
	campaign, ok, err := e.state.FundingCampaignGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || campaign == nil {
		return nil, ErrCampaignNotFound
	}
	return campaign, nil
}

// CreateCampaign registers a new campaign. The caller becomes the creator;
// the next sequential id is assigned and the campaign opens immediately.
func (e *Engine) CreateCampaign(creator types.Address, title, description string, goal *big.Int, duration int64) (*Campaign, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := common.Guard(e.pauses, PauseModule); err != nil {
		return nil, err
	}
	if creator.IsZero() {
		return nil, ErrInvalidAddress
	}
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, ErrInvalidInput
	}
	if goal == nil || goal.Sign() <= 0 {
		return nil, ErrInvalidInput
	}
	if duration <= 0 {
		return nil, ErrInvalidInput
	}
	id, err := e.state.FundingNextCampaignID()
	if err != nil {
		return nil, err
	}
	now := e.now()
	campaign := &Campaign{
		ID:             id,
		Creator:        creator,
		Title:          title,
		Description:    description,
		FundingGoal:    new(big.Int).Set(goal),
		CurrentFunding: big.NewInt(0),
		StartTime:      now,
		EndTime:        now + duration,
		Status:         StatusActive,
	}
	if err := e.state.FundingCampaignPut(campaign); err != nil {
		return nil, err
	}
	e.emit(CampaignCreatedEvent(campaign))
	return campaign.Clone(), nil
}

// Contribute escrows amount from the contributor into the module vault. If
// the goal is reached the payout to creator and platform executes within the
// same call, so no goal-met-but-unpaid state is ever observable.
func (e *Engine) Contribute(campaignID uint64, contributor types.Address, amount *big.Int) (*Campaign, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := common.Guard(e.pauses, PauseModule); err != nil {
		return nil, err
	}
	if contributor.IsZero() {
		return nil, ErrInvalidAddress
	}
	campaign, err := e.loadCampaign(campaignID)
	if err != nil {
		return nil, err
	}
	now := e.now()
	if campaign.Status != StatusActive || now < campaign.StartTime || now > campaign.EndTime {
		return nil, ErrNotActive
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	prior, seen, err := e.state.FundingContributionGet(campaignID, contributor)
	if err != nil {
		return nil, err
	}
	if prior == nil {
		prior = big.NewInt(0)
	}
	// The external transfer runs before any ledger mutation: a rejected
	// allowance or balance aborts with no state change, and the token
	// ledger has no hooks through which a transfer could re-enter here.
	if err := e.token.TransferFrom(VaultAddress, contributor, VaultAddress, amount); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransferFailed, err)
	}
	total := new(big.Int).Add(prior, amount)
	if err := e.state.FundingContributionPut(campaignID, contributor, total); err != nil {
		return nil, err
	}
	campaign.CurrentFunding = new(big.Int).Add(campaign.CurrentFunding, amount)
	if !seen {
		campaign.BackerCount++
	}
	funded := campaign.CurrentFunding.Cmp(campaign.FundingGoal) >= 0
	var platformFee, creatorPayout *big.Int
	var params *Params
	if funded {
		params, err = e.params()
		if err != nil {
			return nil, err
		}
		if params.PlatformWallet.IsZero() {
			return nil, ErrInvalidAddress
		}
		campaign.Status = StatusFunded
		platformFee = common.BpsShare(campaign.CurrentFunding, params.PlatformFeeBps)
		creatorPayout = new(big.Int).Sub(campaign.CurrentFunding, platformFee)
		if creatorPayout.Sign() > 0 {
			if err := e.token.Transfer(VaultAddress, campaign.Creator, creatorPayout); err != nil {
				return nil, fmt.Errorf("%w: %s", ErrTransferFailed, err)
			}
		}
		if platformFee.Sign() > 0 {
			if err := e.token.Transfer(VaultAddress, params.PlatformWallet, platformFee); err != nil {
				return nil, fmt.Errorf("%w: %s", ErrTransferFailed, err)
			}
		}
	}
	if err := e.state.FundingCampaignPut(campaign); err != nil {
		return nil, err
	}
	e.emit(ContributionMadeEvent(campaignID, contributor, amount, campaign.CurrentFunding, campaign.BackerCount))
	if funded {
		e.emit(CampaignFundedEvent(campaign, now))
		e.emit(FundsWithdrawnEvent(campaignID, campaign.Creator, params.PlatformWallet, creatorPayout, platformFee))
	}
	return campaign.Clone(), nil
}

// MarkCampaignFailed resolves a campaign whose deadline passed without the
// goal being reached. Administrator only; the deadline is enforced here
// rather than trusted.
func (e *Engine) MarkCampaignFailed(caller types.Address, campaignID uint64) (*Campaign, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := common.Guard(e.pauses, PauseModule); err != nil {
		return nil, err
	}
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	campaign, err := e.loadCampaign(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != StatusActive {
		return nil, ErrAlreadyResolved
	}
	now := e.now()
	if now <= campaign.EndTime {
		return nil, ErrDeadlineNotReached
	}
	campaign.Status = StatusFailed
	if err := e.state.FundingCampaignPut(campaign); err != nil {
		return nil, err
	}
	e.emit(CampaignFailedEvent(campaign, now))
	return campaign.Clone(), nil
}

// ProcessRefund returns a contributor's escrowed funds for a failed
// campaign. A second call for the same contributor fails with
// ErrNothingToRefund rather than silently succeeding.
func (e *Engine) ProcessRefund(campaignID uint64, contributor types.Address) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := common.Guard(e.pauses, PauseModule); err != nil {
		return nil, err
	}
	campaign, err := e.loadCampaign(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != StatusFailed {
		return nil, ErrNotFailed
	}
	owed, _, err := e.state.FundingContributionGet(campaignID, contributor)
	if err != nil {
		return nil, err
	}
	if owed == nil || owed.Sign() == 0 {
		return nil, ErrNothingToRefund
	}
	if err := e.token.Transfer(VaultAddress, contributor, owed); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransferFailed, err)
	}
	if err := e.state.FundingContributionPut(campaignID, contributor, big.NewInt(0)); err != nil {
		return nil, err
	}
	campaign.CurrentFunding = new(big.Int).Sub(campaign.CurrentFunding, owed)
	if err := e.state.FundingCampaignPut(campaign); err != nil {
		return nil, err
	}
	e.emit(RefundProcessedEvent(campaignID, contributor, owed, campaign.CurrentFunding))
	return new(big.Int).Set(owed), nil
}

// ProcessBulkRefunds applies ProcessRefund to each listed contributor,
// skipping entries with nothing owed so one empty entry cannot block the
// rest of the batch. Administrator only. Returns the number of refunds
// issued and their total amount.
func (e *Engine) ProcessBulkRefunds(caller types.Address, campaignID uint64, contributors []types.Address) (int, *big.Int, error) {
	if err := e.ready(); err != nil {
		return 0, nil, err
	}
	if err := e.requireAdmin(caller); err != nil {
		return 0, nil, err
	}
	refunded := 0
	total := big.NewInt(0)
	for _, contributor := range contributors {
		amount, err := e.ProcessRefund(campaignID, contributor)
		if err != nil {
			if err == ErrNothingToRefund {
				continue
			}
			return refunded, total, err
		}
		refunded++
		total.Add(total, amount)
	}
	return refunded, total, nil
}

// UpdatePlatformFee changes the fee applied to future payouts.
// Administrator only; capped at MaxPlatformFeeBps.
func (e *Engine) UpdatePlatformFee(caller types.Address, newBps uint32) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if newBps > MaxPlatformFeeBps {
		return ErrFeeTooHigh
	}
	params, err := e.params()
	if err != nil {
		return err
	}
	oldBps := params.PlatformFeeBps
	params.PlatformFeeBps = newBps
	if err := e.state.FundingParamsPut(params); err != nil {
		return err
	}
	e.emit(FeeUpdatedEvent(oldBps, newBps))
	return nil
}

// UpdatePlatformWallet changes the fee recipient. Administrator only; the
// zero address is rejected.
func (e *Engine) UpdatePlatformWallet(caller types.Address, wallet types.Address) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if wallet.IsZero() {
		return ErrInvalidAddress
	}
	params, err := e.params()
	if err != nil {
		return err
	}
	oldWallet := params.PlatformWallet
	params.PlatformWallet = wallet
	if err := e.state.FundingParamsPut(params); err != nil {
		return err
	}
	e.emit(WalletUpdatedEvent(oldWallet, wallet))
	return nil
}

// GetCampaign returns the current campaign state without mutating it.
func (e *Engine) GetCampaign(campaignID uint64) (*Campaign, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	campaign, err := e.loadCampaign(campaignID)
	if err != nil {
		return nil, err
	}
	return campaign.Clone(), nil
}

// ContributionOf returns the cumulative amount the contributor has escrowed
// in the campaign (zero after a refund).
func (e *Engine) ContributionOf(campaignID uint64, contributor types.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if _, err := e.loadCampaign(campaignID); err != nil {
		return nil, err
	}
	amount, _, err := e.state.FundingContributionGet(campaignID, contributor)
	if err != nil {
		return nil, err
	}
	if amount == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(amount), nil
}

// PlatformParams returns the fee settings applied to the next payout.
func (e *Engine) PlatformParams() (*Params, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	params, err := e.params()
	if err != nil {
		return nil, err
	}
	return params.Clone(), nil
}
