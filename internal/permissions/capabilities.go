package permissions

import "context"

const (
	RoleAdministrator = "Administrator"
	RoleUser          = "User"
)

// IsAuthenticated reports whether anyone is signed in.
func (c *Cache) IsAuthenticated() bool {
	return c.sess.UserID() != ""
}

func (c *Cache) CanViewAllApplications(ctx context.Context) bool { return c.IsAdmin(ctx) }

func (c *Cache) CanExportData(ctx context.Context) bool { return c.IsAdmin(ctx) }

func (c *Cache) CanManageUsers(ctx context.Context) bool { return c.IsAdmin(ctx) }

func (c *Cache) CanToggleUserStatus(ctx context.Context) bool { return c.IsAdmin(ctx) }

func (c *Cache) CanAssignAdminRole(ctx context.Context) bool { return c.IsAdmin(ctx) }

func (c *Cache) CanViewUserManagement(ctx context.Context) bool { return c.IsAdmin(ctx) }

// IsResourceOwner reports whether the signed-in user owns a resource.
func (c *Cache) IsResourceOwner(ownerID string) bool {
	uid := c.sess.UserID()
	return uid != "" && ownerID != "" && uid == ownerID
}

// CanModify is true for the owner or an admin, false when signed out.
func (c *Cache) CanModify(ctx context.Context, ownerID string) bool {
	if !c.IsAuthenticated() {
		return false
	}
	return c.IsResourceOwner(ownerID) || c.IsAdmin(ctx)
}

// CanDelete follows the same rule as CanModify.
func (c *Cache) CanDelete(ctx context.Context, ownerID string) bool {
	return c.CanModify(ctx, ownerID)
}

// Role returns the display name of the user's role.
func (c *Cache) Role(ctx context.Context) string {
	if c.IsAdmin(ctx) {
		return RoleAdministrator
	}
	return RoleUser
}

// Capabilities is the serializable set of answers for the current user.
type Capabilities struct {
	IsAuthenticated        bool   `json:"isAuthenticated"`
	IsAdmin                bool   `json:"isAdmin"`
	Role                   string `json:"role"`
	CanViewAllApplications bool   `json:"canViewAllApplications"`
	CanExportData          bool   `json:"canExportData"`
	CanManageUsers         bool   `json:"canManageUsers"`
	CanToggleUserStatus    bool   `json:"canToggleUserStatus"`
	CanAssignAdminRole     bool   `json:"canAssignAdminRole"`
	CanViewUserManagement  bool   `json:"canViewUserManagement"`
}

// Snapshot resolves every capability with a single admin lookup.
func (c *Cache) Snapshot(ctx context.Context) Capabilities {
	admin := c.IsAdmin(ctx)
	role := RoleUser
	if admin {
		role = RoleAdministrator
	}
	return Capabilities{
		IsAuthenticated:        c.IsAuthenticated(),
		IsAdmin:                admin,
		Role:                   role,
		CanViewAllApplications: admin,
		CanExportData:          admin,
		CanManageUsers:         admin,
		CanToggleUserStatus:    admin,
		CanAssignAdminRole:     admin,
		CanViewUserManagement:  admin,
	}
}
