package constants

import "time"

// Authentication
const (
	ContextKeyUserID  = "user_id"
	MinPasswordLength = 6
	TokenLifetime     = time.Hour
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Task priority bounds
const (
	MinPriority = 1
	MaxPriority = 5
)
