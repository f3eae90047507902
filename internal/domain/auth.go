package domain

import "time"

// Principal is the authenticated identity executing an operation. Role is
// the role bound to the session at issuance time, not the live role of the
// account.
type Principal struct {
	UserID   string
	Username string
	Role     Role
}

// Session represents a server-side session record behind a bearer token.
type Session struct {
	ID        string
	UserID    string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
