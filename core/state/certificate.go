package state

import (
	"fmt"
	"math/big"

	"cinechain/core/types"
	"cinechain/native/certificate"
)

type storedCertificate struct {
	TokenID          uint64
	CampaignID       uint64
	Holder           types.Address
	OriginalAmount   *big.Int
	RoyaltyBps       uint32
	RoyaltyRecipient types.Address
	Transferable     bool
	MetadataURI      string
	MintedAt         uint64
}

type storedCertParams struct {
	MaxSupply uint64
	Minted    uint64
}

type storedIDList struct {
	IDs []uint64
}

func certKey(id uint64) []byte {
	return appendUint64(prefixed(certPrefix), id)
}

func certHolderKey(holder types.Address) []byte {
	return prefixed(certHolderPrefix, holder[:])
}

func certHolderPosKey(holder types.Address, id uint64) []byte {
	return appendUint64(prefixed(certHolderPosPrefix, holder[:]), id)
}

func certCampaignKey(campaignID uint64) []byte {
	return appendUint64(prefixed(certCampaignPrefix), campaignID)
}

// CertificateGet loads a certificate by token id.
func (m *Manager) CertificateGet(id uint64) (*certificate.Certificate, bool, error) {
	var stored storedCertificate
	ok, err := m.KVGet(certKey(id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	cert := &certificate.Certificate{
		TokenID:          stored.TokenID,
		CampaignID:       stored.CampaignID,
		Holder:           stored.Holder,
		OriginalAmount:   stored.OriginalAmount,
		RoyaltyBps:       stored.RoyaltyBps,
		RoyaltyRecipient: stored.RoyaltyRecipient,
		Transferable:     stored.Transferable,
		MetadataURI:      stored.MetadataURI,
		MintedAt:         int64(stored.MintedAt),
	}
	return cert.Clone(), true, nil
}

// CertificatePut persists a certificate.
func (m *Manager) CertificatePut(c *certificate.Certificate) error {
	c = c.Clone()
	return m.KVPut(certKey(c.TokenID), &storedCertificate{
		TokenID:          c.TokenID,
		CampaignID:       c.CampaignID,
		Holder:           c.Holder,
		OriginalAmount:   c.OriginalAmount,
		RoyaltyBps:       c.RoyaltyBps,
		RoyaltyRecipient: c.RoyaltyRecipient,
		Transferable:     c.Transferable,
		MetadataURI:      c.MetadataURI,
		MintedAt:         uint64(c.MintedAt),
	})
}

// CertificateParamsGet loads the registry supply settings.
func (m *Manager) CertificateParamsGet() (*certificate.Params, bool, error) {
	var stored storedCertParams
	ok, err := m.KVGet(certParamsKeyBytes, &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &certificate.Params{MaxSupply: stored.MaxSupply, Minted: stored.Minted}, true, nil
}

// CertificateParamsPut persists the registry supply settings.
func (m *Manager) CertificateParamsPut(p *certificate.Params) error {
	if p == nil {
		return nil
	}
	return m.KVPut(certParamsKeyBytes, &storedCertParams{MaxSupply: p.MaxSupply, Minted: p.Minted})
}

// CertificateHolderAppend adds a token id to the holder's index and records
// its position for O(1) removal.
func (m *Manager) CertificateHolderAppend(holder types.Address, id uint64) error {
	var list storedIDList
	if _, err := m.KVGet(certHolderKey(holder), &list); err != nil {
		return err
	}
	list.IDs = append(list.IDs, id)
	if err := m.KVPut(certHolderKey(holder), &list); err != nil {
		return err
	}
	return m.KVPut(certHolderPosKey(holder, id), uint64(len(list.IDs)-1))
}

// CertificateHolderRemove drops a token id from the holder's index by
// swapping it with the last element; the order of remaining ids is not
// preserved.
func (m *Manager) CertificateHolderRemove(holder types.Address, id uint64) error {
	var pos uint64
	ok, err := m.KVGet(certHolderPosKey(holder, id), &pos)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("state: token %d not in holder index %s", id, holder.Hex())
	}
	var list storedIDList
	if _, err := m.KVGet(certHolderKey(holder), &list); err != nil {
		return err
	}
	if pos >= uint64(len(list.IDs)) || list.IDs[pos] != id {
		return fmt.Errorf("state: holder index corrupt for %s", holder.Hex())
	}
	last := uint64(len(list.IDs) - 1)
	if pos != last {
		moved := list.IDs[last]
		list.IDs[pos] = moved
		if err := m.KVPut(certHolderPosKey(holder, moved), pos); err != nil {
			return err
		}
	}
	list.IDs = list.IDs[:last]
	if err := m.KVPut(certHolderKey(holder), &list); err != nil {
		return err
	}
	return m.KVDelete(certHolderPosKey(holder, id))
}

// CertificateHolderList returns the holder's token ids in index order, which
// is not stable across transfers.
func (m *Manager) CertificateHolderList(holder types.Address) ([]uint64, error) {
	var list storedIDList
	if _, err := m.KVGet(certHolderKey(holder), &list); err != nil {
		return nil, err
	}
	out := make([]uint64, len(list.IDs))
	copy(out, list.IDs)
	return out, nil
}

// CertificateCampaignAppend adds a token id to the campaign's index. The
// campaign index is append-only: certificates stay bound to their campaign
// for life.
func (m *Manager) CertificateCampaignAppend(campaignID, id uint64) error {
	var list storedIDList
	if _, err := m.KVGet(certCampaignKey(campaignID), &list); err != nil {
		return err
	}
	list.IDs = append(list.IDs, id)
	return m.KVPut(certCampaignKey(campaignID), &list)
}

// CertificateCampaignList returns every token id minted against a campaign.
func (m *Manager) CertificateCampaignList(campaignID uint64) ([]uint64, error) {
	var list storedIDList
	if _, err := m.KVGet(certCampaignKey(campaignID), &list); err != nil {
		return nil, err
	}
	out := make([]uint64, len(list.IDs))
	copy(out, list.IDs)
	return out, nil
}
