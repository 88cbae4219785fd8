package auth

// Identity represents a normalized external authentication identity
// returned by an OAuth provider. It contains facts only, no decisions.
type Identity struct {
	Provider       string // e.g. "google"
	ProviderUserID string // provider-scoped unique user identifier (sub)
	Email          string // verified email returned by provider
	Name           string // display name returned by provider
}

// ExternalAccount is an account record attached to a support platform
// token. It is transient: decoded from the platform's verification
// response and never persisted as-is.
type ExternalAccount struct {
	ID   string
	Name string
}
