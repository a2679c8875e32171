package royalty

import (
	"math/big"
	"strconv"

	"cinechain/core/events"
	"cinechain/core/types"
)

const (
	EventTypeAccountCreated       = "royalty.account.created"
	EventTypeInvestorShareAdded   = "royalty.investor.added"
	EventTypeRevenueReceived      = "royalty.revenue.received"
	EventTypeRoyaltiesDistributed = "royalty.distributed"
	EventTypeRoyaltiesClaimed     = "royalty.claimed"
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

// AccountCreatedEvent records a new revenue ledger account.
func AccountCreatedEvent(a *CampaignAccount) *types.Event {
	if a == nil {
		return &types.Event{Type: EventTypeAccountCreated, Attributes: map[string]string{}}
	}
	return &types.Event{
		Type: EventTypeAccountCreated,
		Attributes: map[string]string{
			"campaignId":       strconv.FormatUint(a.CampaignID, 10),
			"creator":          a.Creator.Hex(),
			"totalRaised":      amountString(a.TotalRaised),
			"creatorShareBps":  strconv.FormatUint(uint64(a.CreatorShareBps), 10),
			"platformShareBps": strconv.FormatUint(uint64(a.PlatformShareBps), 10),
			"createdAt":        strconv.FormatInt(a.CreatedAt, 10),
		},
	}
}

// InvestorShareAddedEvent records a registered investor share.
func InvestorShareAddedEvent(s *InvestorShare) *types.Event {
	if s == nil {
		return &types.Event{Type: EventTypeInvestorShareAdded, Attributes: map[string]string{}}
	}
	return &types.Event{
		Type: EventTypeInvestorShareAdded,
		Attributes: map[string]string{
			"campaignId":   strconv.FormatUint(s.CampaignID, 10),
			"investorRef":  strconv.FormatUint(s.Ref, 10),
			"investor":     s.Investor.Hex(),
			"contribution": amountString(s.Contribution),
			"shareBps":     strconv.FormatUint(uint64(s.ShareBps), 10),
		},
	}
}

// RevenueReceivedEvent records a revenue deposit.
func RevenueReceivedEvent(campaignID uint64, payer types.Address, amount, totalRevenue *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeRevenueReceived,
		Attributes: map[string]string{
			"campaignId":   strconv.FormatUint(campaignID, 10),
			"payer":        payer.Hex(),
			"amount":       amountString(amount),
			"totalRevenue": amountString(totalRevenue),
		},
	}
}

// RoyaltiesDistributedEvent records one distribution run over the revenue
// above the previous watermark.
func RoyaltiesDistributedEvent(campaignID uint64, revenue, creatorCut, platformCut, investorPool *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeRoyaltiesDistributed,
		Attributes: map[string]string{
			"campaignId":   strconv.FormatUint(campaignID, 10),
			"revenue":      amountString(revenue),
			"creatorCut":   amountString(creatorCut),
			"platformCut":  amountString(platformCut),
			"investorPool": amountString(investorPool),
		},
	}
}

// RoyaltiesClaimedEvent records a completed claim payout.
func RoyaltiesClaimedEvent(claimant types.Address, role string, amount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeRoyaltiesClaimed,
		Attributes: map[string]string{
			"claimant": claimant.Hex(),
			"role":     role,
			"amount":   amountString(amount),
		},
	}
}
