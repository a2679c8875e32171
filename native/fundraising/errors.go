package fundraising

import "errors"

var (
	ErrNilState           = errors.New("fundraising: state not configured")
	ErrCampaignNotFound   = errors.New("fundraising: campaign not found")
	ErrInvalidInput       = errors.New("fundraising: invalid campaign parameters")
	ErrInvalidAmount      = errors.New("fundraising: amount must be positive")
	ErrNotActive          = errors.New("fundraising: campaign not active")
	ErrNotFailed          = errors.New("fundraising: campaign not failed")
	ErrAlreadyResolved    = errors.New("fundraising: campaign already resolved")
	ErrDeadlineNotReached = errors.New("fundraising: deadline not reached")
	ErrNotAuthorized      = errors.New("fundraising: not authorized")
	ErrTransferFailed     = errors.New("fundraising: token transfer failed")
	ErrNothingToRefund    = errors.New("fundraising: nothing to refund")
	ErrFeeTooHigh         = errors.New("fundraising: platform fee too high")
	ErrInvalidAddress     = errors.New("fundraising: invalid address")
)
