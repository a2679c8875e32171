package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// FundingMetrics tracks the activity of the funding, certificate and royalty
// engines for operational dashboards.
type FundingMetrics struct {
	campaignsCreated    prometheus.Counter
	contributions       prometheus.Counter
	contributedAmount   prometheus.Counter
	campaignsFunded     prometheus.Counter
	campaignsFailed     prometheus.Counter
	refunds             prometheus.Counter
	certificatesMinted  prometheus.Counter
	revenueDistributed  prometheus.Counter
	royaltyClaims       *prometheus.CounterVec
	escrowBalance       prometheus.Gauge
}

var (
	fundingOnce     sync.Once
	fundingRegistry *FundingMetrics
)

// Funding returns the process-wide funding metrics registry, creating and
// registering it on first use.
func Funding() *FundingMetrics {
	fundingOnce.Do(func() {
		fundingRegistry = &FundingMetrics{
			campaignsCreated: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "funding_campaigns_created_total",
				Help: "Count of campaigns created.",
			}),
			contributions: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "funding_contributions_total",
				Help: "Count of accepted contributions.",
			}),
			contributedAmount: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "funding_contributed_amount_total",
				Help: "Total contributed amount in token base units.",
			}),
			campaignsFunded: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "funding_campaigns_funded_total",
				Help: "Count of campaigns that reached their goal.",
			}),
			campaignsFailed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "funding_campaigns_failed_total",
				Help: "Count of campaigns marked failed.",
			}),
			refunds: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "funding_refunds_total",
				Help: "Count of processed refunds.",
			}),
			certificatesMinted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "certificates_minted_total",
				Help: "Count of contribution certificates minted.",
			}),
			revenueDistributed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "royalty_distributions_total",
				Help: "Count of royalty distribution runs.",
			}),
			royaltyClaims: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "royalty_claims_total",
				Help: "Count of royalty claims by role.",
			}, []string{"role"}),
			escrowBalance: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "funding_escrow_balance",
				Help: "Current escrow vault balance in token base units.",
			}),
		}
		prometheus.MustRegister(
			fundingRegistry.campaignsCreated,
			fundingRegistry.contributions,
			fundingRegistry.contributedAmount,
			fundingRegistry.campaignsFunded,
			fundingRegistry.campaignsFailed,
			fundingRegistry.refunds,
			fundingRegistry.certificatesMinted,
			fundingRegistry.revenueDistributed,
			fundingRegistry.royaltyClaims,
			fundingRegistry.escrowBalance,
		)
	})
	return fundingRegistry
}

// CampaignCreated increments the created-campaign counter.
func (m *FundingMetrics) CampaignCreated() { m.campaignsCreated.Inc() }

// ContributionAccepted records one accepted contribution of the given size.
func (m *FundingMetrics) ContributionAccepted(amount float64) {
	m.contributions.Inc()
	m.contributedAmount.Add(amount)
}

// CampaignFunded increments the funded counter.
func (m *FundingMetrics) CampaignFunded() { m.campaignsFunded.Inc() }

// CampaignFailed increments the failed counter.
func (m *FundingMetrics) CampaignFailed() { m.campaignsFailed.Inc() }

// RefundProcessed increments the refund counter.
func (m *FundingMetrics) RefundProcessed() { m.refunds.Inc() }

// CertificatesMinted adds to the minted counter.
func (m *FundingMetrics) CertificatesMinted(n int) { m.certificatesMinted.Add(float64(n)) }

// RevenueDistributed increments the distribution counter.
func (m *FundingMetrics) RevenueDistributed() { m.revenueDistributed.Inc() }

// RoyaltyClaimed records a claim by role (creator, investor, platform).
func (m *FundingMetrics) RoyaltyClaimed(role string) {
	m.royaltyClaims.WithLabelValues(role).Inc()
}

// SetEscrowBalance publishes the current vault balance.
func (m *FundingMetrics) SetEscrowBalance(v float64) { m.escrowBalance.Set(v) }
