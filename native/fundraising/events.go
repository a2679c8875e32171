package fundraising

import (
	"math/big"
	"strconv"

	"cinechain/core/events"
	"cinechain/core/types"
)

const (
	EventTypeCampaignCreated  = "fundraising.campaign.created"
	EventTypeContributionMade = "fundraising.contribution.made"
	EventTypeCampaignFunded   = "fundraising.campaign.funded"
	EventTypeFundsWithdrawn   = "fundraising.funds.withdrawn"
	EventTypeCampaignFailed   = "fundraising.campaign.failed"
	EventTypeRefundProcessed  = "fundraising.refund.processed"
	EventTypeFeeUpdated       = "fundraising.fee.updated"
	EventTypeWalletUpdated    = "fundraising.wallet.updated"
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

// CampaignCreatedEvent carries every field needed to reconstruct the new
// campaign without re-querying state.
func CampaignCreatedEvent(c *Campaign) *types.Event {
	if c == nil {
		return &types.Event{Type: EventTypeCampaignCreated, Attributes: map[string]string{}}
	}
	return &types.Event{
		Type: EventTypeCampaignCreated,
		Attributes: map[string]string{
			"campaignId": strconv.FormatUint(c.ID, 10),
			"creator":    c.Creator.Hex(),
			"title":      c.Title,
			"goal":       amountString(c.FundingGoal),
			"startTime":  strconv.FormatInt(c.StartTime, 10),
			"endTime":    strconv.FormatInt(c.EndTime, 10),
		},
	}
}

// ContributionMadeEvent records a single accepted contribution.
func ContributionMadeEvent(campaignID uint64, contributor types.Address, amount, total *big.Int, backerCount uint64) *types.Event {
	return &types.Event{
		Type: EventTypeContributionMade,
		Attributes: map[string]string{
			"campaignId":     strconv.FormatUint(campaignID, 10),
			"contributor":    contributor.Hex(),
			"amount":         amountString(amount),
			"currentFunding": amountString(total),
			"backerCount":    strconv.FormatUint(backerCount, 10),
		},
	}
}

// CampaignFundedEvent marks the goal-reached transition.
func CampaignFundedEvent(c *Campaign, fundedAt int64) *types.Event {
	attrs := map[string]string{"fundedAt": strconv.FormatInt(fundedAt, 10)}
	if c != nil {
		attrs["campaignId"] = strconv.FormatUint(c.ID, 10)
		attrs["creator"] = c.Creator.Hex()
		attrs["totalRaised"] = amountString(c.CurrentFunding)
	}
	return &types.Event{Type: EventTypeCampaignFunded, Attributes: attrs}
}

// FundsWithdrawnEvent records the atomic payout split executed when the goal
// is reached.
func FundsWithdrawnEvent(campaignID uint64, creator, platform types.Address, creatorPayout, platformFee *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeFundsWithdrawn,
		Attributes: map[string]string{
			"campaignId":    strconv.FormatUint(campaignID, 10),
			"creator":       creator.Hex(),
			"platform":      platform.Hex(),
			"creatorPayout": amountString(creatorPayout),
			"platformFee":   amountString(platformFee),
		},
	}
}

// CampaignFailedEvent carries the amount owed back to contributors.
func CampaignFailedEvent(c *Campaign, failedAt int64) *types.Event {
	attrs := map[string]string{"failedAt": strconv.FormatInt(failedAt, 10)}
	if c != nil {
		attrs["campaignId"] = strconv.FormatUint(c.ID, 10)
		attrs["totalOwed"] = amountString(c.CurrentFunding)
	}
	return &types.Event{Type: EventTypeCampaignFailed, Attributes: attrs}
}

// RefundProcessedEvent records a completed refund for one contributor.
func RefundProcessedEvent(campaignID uint64, contributor types.Address, amount, remaining *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeRefundProcessed,
		Attributes: map[string]string{
			"campaignId":  strconv.FormatUint(campaignID, 10),
			"contributor": contributor.Hex(),
			"amount":      amountString(amount),
			"remaining":   amountString(remaining),
		},
	}
}

// FeeUpdatedEvent records an administrator fee change.
func FeeUpdatedEvent(oldBps, newBps uint32) *types.Event {
	return &types.Event{
		Type: EventTypeFeeUpdated,
		Attributes: map[string]string{
			"oldBps": strconv.FormatUint(uint64(oldBps), 10),
			"newBps": strconv.FormatUint(uint64(newBps), 10),
		},
	}
}

// WalletUpdatedEvent records an administrator platform-wallet change.
func WalletUpdatedEvent(oldWallet, newWallet types.Address) *types.Event {
	return &types.Event{
		Type: EventTypeWalletUpdated,
		Attributes: map[string]string{
			"oldWallet": oldWallet.Hex(),
			"newWallet": newWallet.Hex(),
		},
	}
}
