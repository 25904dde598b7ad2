package core

import "github.com/pkg/errors"

var (
	Unauthorized   = errors.New("unauthorized")
	InvalidReplyId = errors.New("invalid reply id")
	ZeroAmount     = errors.New("zero amount is not allowed")
	InvalidAmount  = errors.New("amount must be positive")
)
