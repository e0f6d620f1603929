package models

// TokenPair is the credential pair returned by the auth endpoints: a
// short-lived access token plus the refresh token used to mint its
// successor. Exactly one pair is live at a time.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// User is the authenticated profile returned by the "who am I" endpoint.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	XP    int    `json:"xp"`
	Level int    `json:"level"`
}
