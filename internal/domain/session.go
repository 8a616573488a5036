package domain

// Session is the identity carried by a signed session token.
type Session struct {
	UserID string
	Role   Role
	Name   string
	Email  string
}

// IsAdmin reports whether the session holds the admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// CanEdit reports whether the session may modify a resource owned by ownerID.
func (s *Session) CanEdit(ownerID string) bool {
	return s != nil && (s.UserID == ownerID || s.Role == RoleAdmin)
}
