package contextkeys

// Context keys (use typed constants to avoid key collisions)
type contextKey string

const (
	UserKey       contextKey = "authUser"
	UserClaimsKey contextKey = "userClaims"
)
