package royalty

import "errors"

var (
	ErrNilState            = errors.New("royalty: state not configured")
	ErrAccountNotFound     = errors.New("royalty: campaign account not found")
	ErrAccountExists       = errors.New("royalty: campaign account already exists")
	ErrInvalidCreator      = errors.New("royalty: invalid creator")
	ErrInvalidInvestor     = errors.New("royalty: invalid investor")
	ErrInvalidAmount       = errors.New("royalty: amount must be positive")
	ErrShareTooHigh        = errors.New("royalty: creator and platform shares exceed 100%")
	ErrContributionTooBig  = errors.New("royalty: contribution exceeds total raised")
	ErrNotAuthorized       = errors.New("royalty: not authorized")
	ErrTransferFailed      = errors.New("royalty: token transfer failed")
	ErrNothingToDistribute = errors.New("royalty: no undistributed revenue")
	ErrNothingToClaim      = errors.New("royalty: nothing to claim")
)
