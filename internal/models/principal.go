package models

// Principal is the authenticated caller, passed explicitly into service calls.
type Principal struct {
	UserID uint
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccess reports whether p may act on resources owned by userID.
func (p Principal) CanAccess(userID uint) bool {
	return p.IsAdmin() || (p.UserID != 0 && p.UserID == userID)
}
