package identity

// SessionState is the position in the session lifecycle:
// anonymous -> authenticating -> authenticated -> anonymous.
type SessionState string

const (
	StateAnonymous      SessionState = "anonymous"
	StateAuthenticating SessionState = "authenticating"
	StateAuthenticated  SessionState = "authenticated"
)

// String returns the string representation of SessionState
func (s SessionState) String() string {
	return string(s)
}

// Session is a bearer token and the user it was issued to
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
