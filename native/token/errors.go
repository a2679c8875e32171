package token

import "errors"

var (
	ErrNilState              = errors.New("token: state not configured")
	ErrInvalidAmount         = errors.New("token: amount must be positive")
	ErrZeroAddress           = errors.New("token: zero address")
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
)
