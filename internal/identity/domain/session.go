package domain

import "context"

// Keys under which session values are stored.
const (
	KeyToken        = "jwt_token"
	KeyRefreshToken = "refresh_token"
	KeyUserID       = "user_id"
	KeyUserName     = "user_name"
	KeyUserEmail    = "user_email"
)

// SessionKeys lists every key a logout removes.
var SessionKeys = []string{KeyToken, KeyRefreshToken, KeyUserID, KeyUserName, KeyUserEmail}

// SessionStore is a small string key/value store for credentials.
type SessionStore interface {
	// Get reports ok=false for a missing key.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
