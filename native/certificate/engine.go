package certificate

import (
	"math/big"
	"strings"
	"time"

	"cinechain/core/events"
	"cinechain/core/types"
	"cinechain/native/common"
)

// PauseModule is the switchboard name consulted before mutating operations.
const PauseModule = "certificate"

type engineState interface {
	CertificateGet(id uint64) (*Certificate, bool, error)
	CertificatePut(c *Certificate) error
	CertificateParamsGet() (*Params, bool, error)
	CertificateParamsPut(p *Params) error
	CertificateHolderAppend(holder types.Address, id uint64) error
	CertificateHolderRemove(holder types.Address, id uint64) error
	CertificateHolderList(holder types.Address) ([]uint64, error)
	CertificateCampaignAppend(campaignID, id uint64) error
	CertificateCampaignList(campaignID uint64) ([]uint64, error)
}

// Engine is the registry of contribution certificates. It is the sole source
// of truth for ownership: every mint and transfer keeps the per-holder and
// per-campaign reverse indexes consistent. Index order is NOT stable across
// transfers (removal swaps with the last element); callers must treat the
// returned id lists as sets.
type Engine struct {
	state   engineState
	emitter events.Emitter
	pauses  common.PauseView
	nowFn   func() int64

	admin            types.Address
	defaultMaxSupply uint64
}

// NewEngine constructs a certificate registry with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the registry.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetAdmin configures the administrator identity.
func (e *Engine) SetAdmin(addr types.Address) { e.admin = addr }

// SetPauses configures the pause switchboard.
func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

// SetDefaultMaxSupply seeds the supply ceiling applied before any
// administrator update is persisted.
func (e *Engine) SetDefaultMaxSupply(max uint64) { e.defaultMaxSupply = max }

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

func (e *Engine) isAdmin(caller types.Address) bool {
	return !e.admin.IsZero() && caller == e.admin
}

func (e *Engine) requireAdmin(caller types.Address) error {
	if !e.isAdmin(caller) {
		return ErrNotAuthorized
	}
	return nil
}

func (e *Engine) params() (*Params, error) {
	params, ok, err := e.state.CertificateParamsGet()
	if err != nil {
		return nil, err
	}
	if !ok || params == nil {
		return &Params{MaxSupply: e.defaultMaxSupply}, nil
	}
	return params, nil
}

func (e *Engine) loadCertificate(id uint64) (*Certificate, error) {
	cert, ok, err := e.state.CertificateGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || cert == nil {
		return nil, ErrNotFound
	}
	return cert, nil
}

type mintRequest struct {
	amount     *big.Int
	metadata   string
	royaltyBps uint32
}

func validateMint(to types.Address, req mintRequest) error {
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	if req.amount == nil || req.amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(req.metadata) == "" {
		return ErrEmptyMetadata
	}
	if req.royaltyBps > MaxRoyaltyBps {
		return ErrRoyaltyTooHigh
	}
	return nil
}

func (e *Engine) mintOne(to types.Address, campaignID uint64, req mintRequest, params *Params) (*Certificate, error) {
	if params.MaxSupply > 0 && params.Minted+1 > params.MaxSupply {
		return nil, ErrSupplyExceeded
	}
	params.Minted++
	cert := &Certificate{
		TokenID:          params.Minted,
		CampaignID:       campaignID,
		Holder:           to,
		OriginalAmount:   new(big.Int).Set(req.amount),
		RoyaltyBps:       req.royaltyBps,
		RoyaltyRecipient: to,
		Transferable:     true,
		MetadataURI:      strings.TrimSpace(req.metadata),
		MintedAt:         e.now(),
	}
	if err := e.state.CertificatePut(cert); err != nil {
		return nil, err
	}
	if err := e.state.CertificateHolderAppend(to, cert.TokenID); err != nil {
		return nil, err
	}
	if err := e.state.CertificateCampaignAppend(campaignID, cert.TokenID); err != nil {
		return nil, err
	}
	return cert, nil
}

// Mint issues a single certificate to the recipient. Administrator only.
func (e *Engine) Mint(caller, to types.Address, campaignID uint64, amount *big.Int, metadataURI string, royaltyBps uint32) (*Certificate, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if err := common.Guard(e.pauses, PauseModule); err != nil {
		return nil, err
	}
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	req := mintRequest{amount: amount, metadata: metadataURI, royaltyBps: royaltyBps}
	if err := validateMint(to, req); err != nil {
		return nil, err
	}
	params, err := e.params()
	if err != nil {
		return nil, err
	}
	cert, err := e.mintOne(to, campaignID, req, params)
	if err != nil {
		return nil, err
	}
	if err := e.state.CertificateParamsPut(params); err != nil {
		return nil, err
	}
	e.emit(MintedEvent(cert))
	return cert.Clone(), nil
}

// BatchMint issues one certificate per entry. The three slices must have
// equal positive length; every entry is validated before any is minted.
// Administrator only.
func (e *Engine) BatchMint(caller, to types.Address, campaignID uint64, amounts []*big.Int, metadataURIs []string, royaltyBpsList []uint32) ([]*Certificate, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if err := common.Guard(e.pauses, PauseModule); err != nil {
		return nil, err
	}
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	if len(amounts) == 0 || len(amounts) != len(metadataURIs) || len(amounts) != len(royaltyBpsList) {
		return nil, ErrLengthMismatch
	}
	requests := make([]mintRequest, len(amounts))
	for i := range amounts {
		requests[i] = mintRequest{amount: amounts[i], metadata: metadataURIs[i], royaltyBps: royaltyBpsList[i]}
		if err := validateMint(to, requests[i]); err != nil {
			return nil, err
		}
	}
	params, err := e.params()
	if err != nil {
		return nil, err
	}
	if params.MaxSupply > 0 && params.Minted+uint64(len(requests)) > params.MaxSupply {
		return nil, ErrSupplyExceeded
	}
	minted := make([]*Certificate, 0, len(requests))
	ids := make([]uint64, 0, len(requests))
	for _, req := range requests {
		cert, err := e.mintOne(to, campaignID, req, params)
		if err != nil {
			return nil, err
		}
		minted = append(minted, cert.Clone())
		ids = append(ids, cert.TokenID)
	}
	if err := e.state.CertificateParamsPut(params); err != nil {
		return nil, err
	}
	for _, cert := range minted {
		e.emit(MintedEvent(cert))
	}
	e.emit(BatchMintedEvent(to, campaignID, ids))
	return minted, nil
}

// Transfer moves a certificate between holders, keeping both reverse
// indexes consistent. The holder may transfer only while the token is
// transferable; the administrator may always move a token, e.g. to resolve
// a dispute.
func (e *Engine) Transfer(caller, from, to types.Address, tokenID uint64) (*Certificate, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if err := common.Guard(e.pauses, PauseModule); err != nil {
		return nil, err
	}
	if to.IsZero() {
		return nil, ErrInvalidRecipient
	}
	cert, err := e.loadCertificate(tokenID)
	if err != nil {
		return nil, err
	}
	if cert.Holder != from {
		return nil, ErrNotAuthorized
	}
	override := e.isAdmin(caller)
	if !override {
		if caller != cert.Holder {
			return nil, ErrNotAuthorized
		}
		if !cert.Transferable {
			return nil, ErrNotTransferable
		}
	}
	if err := e.state.CertificateHolderRemove(from, tokenID); err != nil {
		return nil, err
	}
	if err := e.state.CertificateHolderAppend(to, tokenID); err != nil {
		return nil, err
	}
	cert.Holder = to
	if err := e.state.CertificatePut(cert); err != nil {
		return nil, err
	}
	e.emit(TransferredEvent(tokenID, from, to, override))
	return cert.Clone(), nil
}

// UpdateRoyalty changes the royalty bps on a certificate. Current holder or
// administrator only; capped at MaxRoyaltyBps.
func (e *Engine) UpdateRoyalty(caller types.Address, tokenID uint64, newBps uint32) (*Certificate, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	cert, err := e.loadCertificate(tokenID)
	if err != nil {
		return nil, err
	}
	if caller != cert.Holder && !e.isAdmin(caller) {
		return nil, ErrNotAuthorized
	}
	if newBps > MaxRoyaltyBps {
		return nil, ErrRoyaltyTooHigh
	}
	oldBps := cert.RoyaltyBps
	cert.RoyaltyBps = newBps
	if err := e.state.CertificatePut(cert); err != nil {
		return nil, err
	}
	e.emit(RoyaltyUpdatedEvent(tokenID, oldBps, newBps))
	return cert.Clone(), nil
}

// UpdateTransferability flips the transfer lock. Current holder or
// administrator only.
func (e *Engine) UpdateTransferability(caller types.Address, tokenID uint64, transferable bool) (*Certificate, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	cert, err := e.loadCertificate(tokenID)
	if err != nil {
		return nil, err
	}
	if caller != cert.Holder && !e.isAdmin(caller) {
		return nil, ErrNotAuthorized
	}
	cert.Transferable = transferable
	if err := e.state.CertificatePut(cert); err != nil {
		return nil, err
	}
	e.emit(TransferabilityUpdatedEvent(tokenID, transferable))
	return cert.Clone(), nil
}

// UpdateMaxSupply raises or lowers the supply ceiling. Administrator only;
// the ceiling can never drop to or below the minted count.
func (e *Engine) UpdateMaxSupply(caller types.Address, newMax uint64) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	params, err := e.params()
	if err != nil {
		return err
	}
	if newMax <= params.Minted {
		return ErrBelowCurrentSupply
	}
	oldMax := params.MaxSupply
	params.MaxSupply = newMax
	if err := e.state.CertificateParamsPut(params); err != nil {
		return err
	}
	e.emit(MaxSupplyUpdatedEvent(oldMax, newMax))
	return nil
}

// Get returns the certificate by token id.
func (e *Engine) Get(tokenID uint64) (*Certificate, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	cert, err := e.loadCertificate(tokenID)
	if err != nil {
		return nil, err
	}
	return cert.Clone(), nil
}

// GetByHolder returns every token id currently held by the address, in no
// particular order.
func (e *Engine) GetByHolder(holder types.Address) ([]uint64, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.CertificateHolderList(holder)
}

// GetByCampaign returns every token id minted against the campaign, in no
// particular order.
func (e *Engine) GetByCampaign(campaignID uint64) ([]uint64, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.CertificateCampaignList(campaignID)
}

// Supply returns the registry's minted count and ceiling.
func (e *Engine) Supply() (*Params, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	params, err := e.params()
	if err != nil {
		return nil, err
	}
	return params.Clone(), nil
}
