package certificate

import (
	"math/big"
	"strconv"

	"cinechain/core/events"
	"cinechain/core/types"
)

const (
	EventTypeCertificateMinted      = "certificate.minted"
	EventTypeBatchMinted            = "certificate.batch_minted"
	EventTypeCertificateTransferred = "certificate.transferred"
	EventTypeRoyaltyUpdated         = "certificate.royalty_updated"
	EventTypeTransferabilityUpdated = "certificate.transferability_updated"
	EventTypeMaxSupplyUpdated       = "certificate.max_supply_updated"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent adapts a typed payload to the emitter interface.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// MintedEvent carries the full certificate so an indexer never needs to
// re-query state.
func MintedEvent(c *Certificate) *types.Event {
	if c == nil {
		return &types.Event{Type: EventTypeCertificateMinted, Attributes: map[string]string{}}
	}
	return &types.Event{
		Type: EventTypeCertificateMinted,
		Attributes: map[string]string{
			"tokenId":      strconv.FormatUint(c.TokenID, 10),
			"campaignId":   strconv.FormatUint(c.CampaignID, 10),
			"holder":       c.Holder.Hex(),
			"amount":       amountString(c.OriginalAmount),
			"royaltyBps":   strconv.FormatUint(uint64(c.RoyaltyBps), 10),
			"transferable": strconv.FormatBool(c.Transferable),
			"metadataURI":  c.MetadataURI,
			"mintedAt":     strconv.FormatInt(c.MintedAt, 10),
		},
	}
}

// BatchMintedEvent aggregates the ids assigned by one batch mint.
func BatchMintedEvent(to types.Address, campaignID uint64, tokenIDs []uint64) *types.Event {
	ids := make([]byte, 0, len(tokenIDs)*4)
	for i, id := range tokenIDs {
		if i > 0 {
			ids = append(ids, ',')
		}
		ids = strconv.AppendUint(ids, id, 10)
	}
	return &types.Event{
		Type: EventTypeBatchMinted,
		Attributes: map[string]string{
			"holder":     to.Hex(),
			"campaignId": strconv.FormatUint(campaignID, 10),
			"count":      strconv.Itoa(len(tokenIDs)),
			"tokenIds":   string(ids),
		},
	}
}

// TransferredEvent records a holder change.
func TransferredEvent(tokenID uint64, from, to types.Address, adminOverride bool) *types.Event {
	return &types.Event{
		Type: EventTypeCertificateTransferred,
		Attributes: map[string]string{
			"tokenId":       strconv.FormatUint(tokenID, 10),
			"from":          from.Hex(),
			"to":            to.Hex(),
			"adminOverride": strconv.FormatBool(adminOverride),
		},
	}
}

// RoyaltyUpdatedEvent records a royalty change.
func RoyaltyUpdatedEvent(tokenID uint64, oldBps, newBps uint32) *types.Event {
	return &types.Event{
		Type: EventTypeRoyaltyUpdated,
		Attributes: map[string]string{
			"tokenId": strconv.FormatUint(tokenID, 10),
			"oldBps":  strconv.FormatUint(uint64(oldBps), 10),
			"newBps":  strconv.FormatUint(uint64(newBps), 10),
		},
	}
}

// TransferabilityUpdatedEvent records a transferability flag change.
func TransferabilityUpdatedEvent(tokenID uint64, transferable bool) *types.Event {
	return &types.Event{
		Type: EventTypeTransferabilityUpdated,
		Attributes: map[string]string{
			"tokenId":      strconv.FormatUint(tokenID, 10),
			"transferable": strconv.FormatBool(transferable),
		},
	}
}

// MaxSupplyUpdatedEvent records a supply-ceiling change.
func MaxSupplyUpdatedEvent(oldMax, newMax uint64) *types.Event {
	return &types.Event{
		Type: EventTypeMaxSupplyUpdated,
		Attributes: map[string]string{
			"oldMax": strconv.FormatUint(oldMax, 10),
			"newMax": strconv.FormatUint(newMax, 10),
		},
	}
}
