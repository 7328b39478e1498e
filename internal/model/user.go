package model

// User represents an account as returned by the backend
type User struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	GoogleID      string `json:"googleId,omitempty"`
	EmailVerified *bool  `json:"emailVerified,omitempty"`
}

// DisplayName returns the name to greet the user with
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// Credentials is the password login payload
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration holds the sign-up form fields. Confirm never leaves the client.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"-"`
}

// GoogleLogin is the Google ID-token exchange payload
type GoogleLogin struct {
	IDToken string `json:"idToken"`
}

// AuthResponse is returned by every /auth endpoint
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}
