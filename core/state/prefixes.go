package state

import "encoding/binary"

var (
	accountPrefix          = []byte("token/account/")
	allowancePrefix        = []byte("token/allowance/")
	tokenSupplyKeyBytes    = []byte("token/supply")
	campaignSeqKeyBytes    = []byte("fund/seq")
	campaignPrefix         = []byte("fund/campaign/")
	contributionPrefix     = []byte("fund/contribution/")
	fundingParamsKeyBytes  = []byte("fund/params")
	certParamsKeyBytes     = []byte("cert/params")
	certPrefix             = []byte("cert/item/")
	certHolderPrefix       = []byte("cert/holder/")
	certHolderPosPrefix    = []byte("cert/holderpos/")
	certCampaignPrefix     = []byte("cert/campaign/")
	revenueIDsKeyBytes     = []byte("royalty/ids")
	revenueAccountPrefix   = []byte("royalty/account/")
	revenueCreatorPrefix   = []byte("royalty/creator/")
	investorSharePrefix    = []byte("royalty/share/")
	investorShareKeyPrefix = []byte("royalty/investor/")
)

func appendUint64(key []byte, v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return append(key, buf[:]...)
}

func prefixed(prefix []byte, parts ...[]byte) []byte {
	key := append([]byte{}, prefix...)
	for _, part := range parts {
		key = append(key, part...)
	}
	return key
}
