package models

// SessionUser is the sole persisted identity: created on OAuth callback,
// stored encrypted in a cookie, cleared on logout. There is no server-side
// session store; the cookie itself is the durable state.
type SessionUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Avatar        string `json:"avatar"`
	Discriminator string `json:"discriminator"`
}
