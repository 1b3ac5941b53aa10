package domain

import "time"

// Session is the locally persisted login state for one Telegram chat:
// who is asking, and with which token. Written at login, cleared at
// logout, read before every authenticated request.
type Session struct {
	ChatID    int64
	Token     string
	UserID    int64
	Name      string
	Email     string
	Role      Role
	LoggedIn  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// Active reports whether the session can back authenticated requests.
func (s *Session) Active() bool {
	return s != nil && s.LoggedIn && s.Token != ""
}
