package domain

// SessionToken is what the login endpoint returns.
type SessionToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // always "bearer"
}
