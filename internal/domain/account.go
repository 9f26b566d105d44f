package domain

import "time"

type AccountID string

// Account identifies one remote-service subject. Token is the long-lived
// account token exchanged during bootstrap; GameRoleID is the in-game
// role/session identifier sent on every signed call.
type Account struct {
	Name       string
	Token      string
	GameRoleID string
}

func (a Account) ID() AccountID {
	return AccountID(a.GameRoleID)
}

// RuntimeCredentials are derived once per account per process run and
// never persisted.
type RuntimeCredentials struct {
	Cred       string
	Salt       string
	UserID     string
	HgID       string
	ObtainedAt time.Time
}
