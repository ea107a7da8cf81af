package domain

// Role distinguishes the two principal kinds the API serves.
type Role string

const (
	RoleDonor    Role = "donor"
	RoleHospital Role = "hospital"
)

// Identity is the authenticated principal, resolved once at the auth
// boundary and threaded through calls. Handlers and usecases never
// re-derive who the caller is.
type Identity struct {
	ID   string
	Role Role
}

func (i Identity) IsDonor() bool    { return i.Role == RoleDonor }
func (i Identity) IsHospital() bool { return i.Role == RoleHospital }

// ChannelKey is the notification channel an identity listens on.
func (i Identity) ChannelKey() string {
	return string(i.Role) + "_" + i.ID
}
