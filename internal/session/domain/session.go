package domain

// User is the profile record delivered by the auth endpoints and
// persisted alongside the token pair.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AuthResult is a successful login or signup response.
type AuthResult struct {
	User   User
	Tokens TokenPair
}

// Session is the authenticated-identity snapshot. AccessToken is
// non-empty exactly when the session is authenticated; User is only
// meaningful then.
type Session struct {
	User         *User
	AccessToken  string
	RefreshToken string
}

func (s Session) Authenticated() bool {
	return s.AccessToken != "" && s.User != nil
}
