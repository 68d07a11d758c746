package constants

import (
	"github.com/go-playground/validator/v10"
)

type ContextKey int

const (
	AppKey ContextKey = iota
	PoolKey
	TxKey
	TenantKey
	UserKey
	LoggerKey
	RequestIDKey
)

// Validate is the shared validator instance used by all DTOs.
var Validate = validator.New(validator.WithRequiredStructEnabled())
