package certificate

import (
	"math/big"

	"cinechain/core/types"
)

// MaxRoyaltyBps caps per-certificate royalties at 10%.
const MaxRoyaltyBps = 1_000

// Certificate is the non-fungible record attesting to a single contribution.
// TokenID, CampaignID, OriginalAmount, MetadataURI and MintedAt are fixed at
// mint time; Holder moves via transfer and the royalty/transferability
// settings are mutable by the holder or the administrator.
type Certificate struct {
	TokenID          uint64
	CampaignID       uint64
	Holder           types.Address
	OriginalAmount   *big.Int
	RoyaltyBps       uint32
	RoyaltyRecipient types.Address
	Transferable     bool
	MetadataURI      string
	MintedAt         int64
}

// Clone returns a deep copy of the certificate.
func (c *Certificate) Clone() *Certificate {
	if c == nil {
		return nil
	}
	clone := *c
	if c.OriginalAmount != nil {
		clone.OriginalAmount = new(big.Int).Set(c.OriginalAmount)
	} else {
		clone.OriginalAmount = big.NewInt(0)
	}
	return &clone
}

// Params holds the registry-wide supply settings.
type Params struct {
	MaxSupply uint64
	Minted    uint64
}

// Clone returns a copy of the params.
func (p *Params) Clone() *Params {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
