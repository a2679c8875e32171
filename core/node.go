package core

import (
	"math/big"
	"sync"

	"cinechain/core/events"
	"cinechain/core/state"
	"cinechain/core/types"
	"cinechain/native/certificate"
	"cinechain/native/fundraising"
	"cinechain/native/royalty"
	"cinechain/native/token"
	"cinechain/observability/metrics"
	"cinechain/storage"
)

// Config carries the identities and defaults the node enforces on every
// gated operation.
type Config struct {
	Admin                types.Address
	PlatformWallet       types.Address
	PlatformFeeBps       uint32
	CertificateMaxSupply uint64
	PausedModules        []string
	EventReplay          int
}

// Node is the single dispatcher fronting the funding core. One mutex
// serializes every public operation, and each mutating operation runs
// against a staged state overlay committed only after the whole operation
// succeeds, so no caller can ever observe a partially-applied transition.
type Node struct {
	mu      sync.Mutex
	db      storage.Database
	manager *state.Manager
	bus     *events.Bus
	cfg     Config
	paused  map[string]bool
}

// NewNode wires the storage backend, state manager, event bus and engine
// configuration together.
func NewNode(db storage.Database, cfg Config) *Node {
	paused := make(map[string]bool, len(cfg.PausedModules))
	for _, module := range cfg.PausedModules {
		paused[module] = true
	}
	replay := cfg.EventReplay
	if replay == 0 {
		replay = 1024
	}
	return &Node{
		db:      db,
		manager: state.NewManager(db),
		bus:     events.NewBus(replay),
		cfg:     cfg,
		paused:  paused,
	}
}

// Bus exposes the event-subscription mechanism for indexers.
func (n *Node) Bus() *events.Bus { return n.bus }

// IsPaused implements the pause switchboard consulted by the engines.
func (n *Node) IsPaused(module string) bool { return n.paused[module] }

// engines binds a fresh engine set to the supplied manager view. Engines are
// plain structs, so rebinding per call is cheap and lets mutating calls run
// on a staged overlay while reads use the base state.
type engineSet struct {
	mgr     *state.Manager
	token   *token.Ledger
	funding *fundraising.Engine
	certs   *certificate.Engine
	revenue *royalty.Engine
}

func (n *Node) engines(m *state.Manager, emitter events.Emitter) *engineSet {
	ledger := token.NewLedger()
	ledger.SetState(m)

	funding := fundraising.NewEngine()
	funding.SetState(m)
	funding.SetToken(ledger)
	funding.SetAdmin(n.cfg.Admin)
	funding.SetPauses(n)
	funding.SetDefaultParams(n.cfg.PlatformFeeBps, n.cfg.PlatformWallet)
	funding.SetEmitter(emitter)

	certs := certificate.NewEngine()
	certs.SetState(m)
	certs.SetAdmin(n.cfg.Admin)
	certs.SetPauses(n)
	certs.SetDefaultMaxSupply(n.cfg.CertificateMaxSupply)
	certs.SetEmitter(emitter)

	revenue := royalty.NewEngine()
	revenue.SetState(m)
	revenue.SetToken(ledger)
	revenue.SetAdmin(n.cfg.Admin)
	revenue.SetPlatformWallet(n.cfg.PlatformWallet)
	revenue.SetPauses(n)
	revenue.SetEmitter(emitter)

	return &engineSet{mgr: m, token: ledger, funding: funding, certs: certs, revenue: revenue}
}

// recorder buffers events during a staged operation; they reach the bus only
// after the overlay commits, so rolled-back operations emit nothing.
type recorder struct {
	pending []events.Event
}

func (r *recorder) Emit(evt events.Event) { r.pending = append(r.pending, evt) }

// withStaged runs fn against a staged engine set and commits on success.
func (n *Node) withStaged(fn func(*engineSet) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	staged := n.manager.Stage()
	rec := &recorder{}
	set := n.engines(staged.Manager, rec)
	if err := fn(set); err != nil {
		return err
	}
	if err := staged.Commit(); err != nil {
		return err
	}
	for _, evt := range rec.pending {
		n.bus.Emit(evt)
	}
	return nil
}

// withRead runs fn against the base state under the dispatcher lock.
func (n *Node) withRead(fn func(*engineSet) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return fn(n.engines(n.manager, events.NoopEmitter{}))
}

func (n *Node) publishEscrowBalance(set *engineSet) {
	balance, err := set.token.BalanceOf(fundraising.VaultAddress)
	if err != nil {
		return
	}
	f, _ := new(big.Float).SetInt(balance).Float64()
	metrics.Funding().SetEscrowBalance(f)
}

// --- funding operations ---

// CreateCampaign opens a new campaign with the caller as creator.
func (n *Node) CreateCampaign(creator types.Address, title, description string, goal *big.Int, duration int64) (*fundraising.Campaign, error) {
	var campaign *fundraising.Campaign
	err := n.withStaged(func(set *engineSet) error {
		var err error
		campaign, err = set.funding.CreateCampaign(creator, title, description, goal, duration)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.Funding().CampaignCreated()
	return campaign, nil
}

// Contribute escrows tokens from the contributor; a goal-reaching
// contribution also executes the payout before returning.
func (n *Node) Contribute(campaignID uint64, contributor types.Address, amount *big.Int) (*fundraising.Campaign, error) {
	var campaign *fundraising.Campaign
	err := n.withStaged(func(set *engineSet) error {
		var err error
		campaign, err = set.funding.Contribute(campaignID, contributor, amount)
		if err != nil {
			return err
		}
		n.publishEscrowBalance(set)
		return nil
	})
	if err != nil {
		return nil, err
	}
	f, _ := new(big.Float).SetInt(amount).Float64()
	metrics.Funding().ContributionAccepted(f)
	if campaign.IsFunded() {
		metrics.Funding().CampaignFunded()
	}
	return campaign, nil
}

// MarkCampaignFailed resolves an expired campaign as failed. Administrator
// only.
func (n *Node) MarkCampaignFailed(caller types.Address, campaignID uint64) (*fundraising.Campaign, error) {
	var campaign *fundraising.Campaign
	err := n.withStaged(func(set *engineSet) error {
		var err error
		campaign, err = set.funding.MarkCampaignFailed(caller, campaignID)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.Funding().CampaignFailed()
	return campaign, nil
}

// ProcessRefund returns a contributor's escrowed funds after failure.
func (n *Node) ProcessRefund(campaignID uint64, contributor types.Address) (*big.Int, error) {
	var refunded *big.Int
	err := n.withStaged(func(set *engineSet) error {
		var err error
		refunded, err = set.funding.ProcessRefund(campaignID, contributor)
		if err != nil {
			return err
		}
		n.publishEscrowBalance(set)
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.Funding().RefundProcessed()
	return refunded, nil
}

// ProcessBulkRefunds refunds each listed contributor, skipping empty
// entries. Administrator only.
func (n *Node) ProcessBulkRefunds(caller types.Address, campaignID uint64, contributors []types.Address) (int, *big.Int, error) {
	var count int
	total := big.NewInt(0)
	err := n.withStaged(func(set *engineSet) error {
		var err error
		count, total, err = set.funding.ProcessBulkRefunds(caller, campaignID, contributors)
		if err != nil {
			return err
		}
		n.publishEscrowBalance(set)
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	for i := 0; i < count; i++ {
		metrics.Funding().RefundProcessed()
	}
	return count, total, nil
}

// UpdatePlatformFee changes the platform fee. Administrator only.
func (n *Node) UpdatePlatformFee(caller types.Address, newBps uint32) error {
	return n.withStaged(func(set *engineSet) error {
		return set.funding.UpdatePlatformFee(caller, newBps)
	})
}

// UpdatePlatformWallet changes the fee recipient. Administrator only.
func (n *Node) UpdatePlatformWallet(caller types.Address, wallet types.Address) error {
	return n.withStaged(func(set *engineSet) error {
		return set.funding.UpdatePlatformWallet(caller, wallet)
	})
}

// GetCampaign returns the current state of a campaign.
func (n *Node) GetCampaign(campaignID uint64) (*fundraising.Campaign, error) {
	var campaign *fundraising.Campaign
	err := n.withRead(func(set *engineSet) error {
		var err error
		campaign, err = set.funding.GetCampaign(campaignID)
		return err
	})
	return campaign, err
}

// ContributionOf returns a contributor's escrowed amount for a campaign.
func (n *Node) ContributionOf(campaignID uint64, contributor types.Address) (*big.Int, error) {
	var amount *big.Int
	err := n.withRead(func(set *engineSet) error {
		var err error
		amount, err = set.funding.ContributionOf(campaignID, contributor)
		return err
	})
	return amount, err
}

// PlatformParams returns the current fee settings.
func (n *Node) PlatformParams() (*fundraising.Params, error) {
	var params *fundraising.Params
	err := n.withRead(func(set *engineSet) error {
		var err error
		params, err = set.funding.PlatformParams()
		return err
	})
	return params, err
}

// --- certificate operations ---

// MintCertificate issues one contribution certificate. Administrator only.
func (n *Node) MintCertificate(caller, to types.Address, campaignID uint64, amount *big.Int, metadataURI string, royaltyBps uint32) (*certificate.Certificate, error) {
	var cert *certificate.Certificate
	err := n.withStaged(func(set *engineSet) error {
		var err error
		cert, err = set.certs.Mint(caller, to, campaignID, amount, metadataURI, royaltyBps)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.Funding().CertificatesMinted(1)
	return cert, nil
}

// BatchMintCertificates issues one certificate per entry. Administrator
// only.
func (n *Node) BatchMintCertificates(caller, to types.Address, campaignID uint64, amounts []*big.Int, metadataURIs []string, royaltyBpsList []uint32) ([]*certificate.Certificate, error) {
	var minted []*certificate.Certificate
	err := n.withStaged(func(set *engineSet) error {
		var err error
		minted, err = set.certs.BatchMint(caller, to, campaignID, amounts, metadataURIs, royaltyBpsList)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.Funding().CertificatesMinted(len(minted))
	return minted, nil
}

// TransferCertificate moves a certificate between holders.
func (n *Node) TransferCertificate(caller, from, to types.Address, tokenID uint64) (*certificate.Certificate, error) {
	var cert *certificate.Certificate
	err := n.withStaged(func(set *engineSet) error {
		var err error
		cert, err = set.certs.Transfer(caller, from, to, tokenID)
		return err
	})
	return cert, err
}

// UpdateCertificateRoyalty changes a certificate's royalty bps.
func (n *Node) UpdateCertificateRoyalty(caller types.Address, tokenID uint64, newBps uint32) (*certificate.Certificate, error) {
	var cert *certificate.Certificate
	err := n.withStaged(func(set *engineSet) error {
		var err error
		cert, err = set.certs.UpdateRoyalty(caller, tokenID, newBps)
		return err
	})
	return cert, err
}

// UpdateCertificateTransferability flips a certificate's transfer lock.
func (n *Node) UpdateCertificateTransferability(caller types.Address, tokenID uint64, transferable bool) (*certificate.Certificate, error) {
	var cert *certificate.Certificate
	err := n.withStaged(func(set *engineSet) error {
		var err error
		cert, err = set.certs.UpdateTransferability(caller, tokenID, transferable)
		return err
	})
	return cert, err
}

// UpdateCertificateMaxSupply changes the registry supply ceiling.
// Administrator only.
func (n *Node) UpdateCertificateMaxSupply(caller types.Address, newMax uint64) error {
	return n.withStaged(func(set *engineSet) error {
		return set.certs.UpdateMaxSupply(caller, newMax)
	})
}

// Certificate returns a certificate by token id.
func (n *Node) Certificate(tokenID uint64) (*certificate.Certificate, error) {
	var cert *certificate.Certificate
	err := n.withRead(func(set *engineSet) error {
		var err error
		cert, err = set.certs.Get(tokenID)
		return err
	})
	return cert, err
}

// CertificatesByHolder returns the unordered token id set held by an
// address.
func (n *Node) CertificatesByHolder(holder types.Address) ([]uint64, error) {
	var ids []uint64
	err := n.withRead(func(set *engineSet) error {
		var err error
		ids, err = set.certs.GetByHolder(holder)
		return err
	})
	return ids, err
}

// CertificatesByCampaign returns the token ids minted against a campaign.
func (n *Node) CertificatesByCampaign(campaignID uint64) ([]uint64, error) {
	var ids []uint64
	err := n.withRead(func(set *engineSet) error {
		var err error
		ids, err = set.certs.GetByCampaign(campaignID)
		return err
	})
	return ids, err
}

// CertificateSupply returns the minted count and ceiling.
func (n *Node) CertificateSupply() (*certificate.Params, error) {
	var params *certificate.Params
	err := n.withRead(func(set *engineSet) error {
		var err error
		params, err = set.certs.Supply()
		return err
	})
	return params, err
}

// --- revenue ledger operations ---

// CreateRevenueAccount opens the revenue ledger for a campaign.
// Administrator only.
func (n *Node) CreateRevenueAccount(caller types.Address, campaignID uint64, creator types.Address, totalRaised *big.Int, creatorShareBps, platformShareBps uint32) (*royalty.CampaignAccount, error) {
	var account *royalty.CampaignAccount
	err := n.withStaged(func(set *engineSet) error {
		var err error
		account, err = set.revenue.CreateCampaignAccount(caller, campaignID, creator, totalRaised, creatorShareBps, platformShareBps)
		return err
	})
	return account, err
}

// AddInvestorShare registers an investor entry. Administrator only.
func (n *Node) AddInvestorShare(caller types.Address, campaignID uint64, investor types.Address, contribution *big.Int) (*royalty.InvestorShare, error) {
	var share *royalty.InvestorShare
	err := n.withStaged(func(set *engineSet) error {
		var err error
		share, err = set.revenue.AddInvestorShare(caller, campaignID, investor, contribution)
		return err
	})
	return share, err
}

// ReceiveRevenue deposits revenue into the royalty vault.
func (n *Node) ReceiveRevenue(campaignID uint64, payer types.Address, amount *big.Int) (*royalty.CampaignAccount, error) {
	var account *royalty.CampaignAccount
	err := n.withStaged(func(set *engineSet) error {
		var err error
		account, err = set.revenue.ReceiveRevenue(campaignID, payer, amount)
		return err
	})
	return account, err
}

// DistributeRoyalties credits balances from the undistributed revenue.
func (n *Node) DistributeRoyalties(campaignID uint64) (*royalty.CampaignAccount, error) {
	var account *royalty.CampaignAccount
	err := n.withStaged(func(set *engineSet) error {
		var err error
		account, err = set.revenue.DistributeRoyalties(campaignID)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.Funding().RevenueDistributed()
	return account, nil
}

// ClaimCreatorRoyalties pays out the caller's creator balances.
func (n *Node) ClaimCreatorRoyalties(caller types.Address) (*big.Int, error) {
	var claimed *big.Int
	err := n.withStaged(func(set *engineSet) error {
		var err error
		claimed, err = set.revenue.ClaimCreatorRoyalties(caller)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.Funding().RoyaltyClaimed("creator")
	return claimed, nil
}

// ClaimInvestorRoyalties pays out the caller's investor balances.
func (n *Node) ClaimInvestorRoyalties(caller types.Address) (*big.Int, error) {
	var claimed *big.Int
	err := n.withStaged(func(set *engineSet) error {
		var err error
		claimed, err = set.revenue.ClaimInvestorRoyalties(caller)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.Funding().RoyaltyClaimed("investor")
	return claimed, nil
}

// ClaimPlatformFees pays out every campaign's platform balance to the
// platform wallet.
func (n *Node) ClaimPlatformFees(caller types.Address) (*big.Int, error) {
	var claimed *big.Int
	err := n.withStaged(func(set *engineSet) error {
		var err error
		claimed, err = set.revenue.ClaimPlatformFees(caller)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.Funding().RoyaltyClaimed("platform")
	return claimed, nil
}

// RevenueAccount returns the ledger account for a campaign.
func (n *Node) RevenueAccount(campaignID uint64) (*royalty.CampaignAccount, error) {
	var account *royalty.CampaignAccount
	err := n.withRead(func(set *engineSet) error {
		var err error
		account, err = set.revenue.GetAccount(campaignID)
		return err
	})
	return account, err
}

// InvestorShares returns the registered shares for a campaign.
func (n *Node) InvestorShares(campaignID uint64) ([]*royalty.InvestorShare, error) {
	var shares []*royalty.InvestorShare
	err := n.withRead(func(set *engineSet) error {
		var err error
		shares, err = set.revenue.SharesOf(campaignID)
		return err
	})
	return shares, err
}

// --- token operations ---

// TokenBalanceOf returns an address's CineUSD balance.
func (n *Node) TokenBalanceOf(addr types.Address) (*big.Int, error) {
	var balance *big.Int
	err := n.withRead(func(set *engineSet) error {
		var err error
		balance, err = set.token.BalanceOf(addr)
		return err
	})
	return balance, err
}

// TokenTotalSupply returns the cumulative minted amount.
func (n *Node) TokenTotalSupply() (*big.Int, error) {
	var supply *big.Int
	err := n.withRead(func(set *engineSet) error {
		var err error
		supply, err = set.token.TotalSupply()
		return err
	})
	return supply, err
}

// TokenTransfer moves tokens between accounts.
func (n *Node) TokenTransfer(from, to types.Address, amount *big.Int) error {
	return n.withStaged(func(set *engineSet) error {
		return set.token.Transfer(from, to, amount)
	})
}

// TokenApprove sets an allowance. Contributions and revenue deposits
// require an allowance for the respective module vault.
func (n *Node) TokenApprove(owner, spender types.Address, amount *big.Int) error {
	return n.withStaged(func(set *engineSet) error {
		return set.token.Approve(owner, spender, amount)
	})
}

// TokenMint issues new tokens. Administrator only.
func (n *Node) TokenMint(caller, to types.Address, amount *big.Int) error {
	return n.withStaged(func(set *engineSet) error {
		if n.cfg.Admin.IsZero() || caller != n.cfg.Admin {
			return fundraising.ErrNotAuthorized
		}
		return set.token.Mint(to, amount)
	})
}

// ApplyGenesisAlloc mints the configured genesis balances exactly once,
// keyed by a state marker.
func (n *Node) ApplyGenesisAlloc(alloc map[types.Address]*big.Int) error {
	return n.withStaged(func(set *engineSet) error {
		applied, err := set.mgr.GenesisApplied()
		if err != nil || applied {
			return err
		}
		for addr, amount := range alloc {
			if amount == nil || amount.Sign() <= 0 {
				continue
			}
			if err := set.token.Mint(addr, amount); err != nil {
				return err
			}
		}
		return set.mgr.SetGenesisApplied()
	})
}
