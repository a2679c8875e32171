package certificate

import "errors"

var (
	ErrNilState           = errors.New("certificate: state not configured")
	ErrNotFound           = errors.New("certificate: token not found")
	ErrInvalidRecipient   = errors.New("certificate: invalid recipient")
	ErrInvalidAmount      = errors.New("certificate: amount must be positive")
	ErrEmptyMetadata      = errors.New("certificate: metadata URI required")
	ErrRoyaltyTooHigh     = errors.New("certificate: royalty bps too high")
	ErrSupplyExceeded     = errors.New("certificate: max supply exceeded")
	ErrLengthMismatch     = errors.New("certificate: batch arrays length mismatch")
	ErrNotTransferable    = errors.New("certificate: token not transferable")
	ErrNotAuthorized      = errors.New("certificate: not authorized")
	ErrBelowCurrentSupply = errors.New("certificate: max supply below minted count")
)
