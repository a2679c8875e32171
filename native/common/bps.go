package common

import (
	"errors"
	"math/big"
)

// BpsDenominator is the fixed-point scale shared by every fee and share
// computation in the funding core: 10000 basis points = 100%.
const BpsDenominator = 10_000

var ErrBpsOutOfRange = errors.New("basis points out of range")

// BpsShare returns floor(amount * bps / 10000). Every component routes its
// percentage math through this helper so rounding behaves identically
// everywhere. A nil amount is treated as zero.
func BpsShare(amount *big.Int, bps uint32) *big.Int {
	if amount == nil || amount.Sign() == 0 || bps == 0 {
		return big.NewInt(0)
	}
	share := new(big.Int).Mul(amount, new(big.Int).SetUint64(uint64(bps)))
	return share.Div(share, big.NewInt(BpsDenominator))
}

// BpsOf returns floor(part * 10000 / whole), the basis-point weight of part
// within whole. Whole must be positive.
func BpsOf(part, whole *big.Int) (uint32, error) {
	if whole == nil || whole.Sign() <= 0 {
		return 0, errors.New("whole must be positive")
	}
	if part == nil || part.Sign() < 0 {
		return 0, errors.New("part must be non-negative")
	}
	weight := new(big.Int).Mul(part, big.NewInt(BpsDenominator))
	weight.Div(weight, whole)
	if !weight.IsUint64() || weight.Uint64() > BpsDenominator {
		return 0, ErrBpsOutOfRange
	}
	return uint32(weight.Uint64()), nil
}

// CheckBps validates that the supplied value does not exceed the given
// ceiling.
func CheckBps(bps, max uint32) error {
	if bps > max {
		return ErrBpsOutOfRange
	}
	return nil
}
