package domain

// AuthMethod defines how the forge client authenticates.
type AuthMethod string

const (
	// AuthMethodNone sends unauthenticated requests.
	AuthMethodNone AuthMethod = "none"
	// AuthMethodPAT uses a Personal Access Token.
	AuthMethodPAT AuthMethod = "pat"
)

// String returns the method name.
func (m AuthMethod) String() string {
	return string(m)
}
