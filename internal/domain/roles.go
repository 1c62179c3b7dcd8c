package domain

// Role is a staff member's role within a hotel. RoleSuperAdmin is not bound to a hotel.
type Role string

const (
	RoleSuperAdmin   Role = "super_admin"
	RoleAdmin        Role = "admin"
	RoleManager      Role = "manager"
	RoleFrontDesk    Role = "front_desk"
	RoleHousekeeping Role = "housekeeping"
)

// Permission names an action guarded by role.
type Permission string

const (
	PermHotelsManage      Permission = "hotels.manage"
	PermStaffManage       Permission = "staff.manage"
	PermInventoryWrite    Permission = "inventory.write"
	PermHousekeepingWrite Permission = "housekeeping.write"
	PermReservationsWrite Permission = "reservations.write"
	PermBillingWrite      Permission = "billing.write"
	PermGuestsWrite       Permission = "guests.write"
	PermAnalyticsRead     Permission = "analytics.read"
	PermAgentUse          Permission = "agent.use"
	PermRead              Permission = "read"
)

var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermStaffManage, PermInventoryWrite, PermHousekeepingWrite, PermReservationsWrite,
		PermBillingWrite, PermGuestsWrite, PermAnalyticsRead, PermAgentUse, PermRead,
	},
	RoleManager: {
		PermInventoryWrite, PermHousekeepingWrite, PermReservationsWrite, PermBillingWrite,
		PermGuestsWrite, PermAnalyticsRead, PermAgentUse, PermRead,
	},
	RoleFrontDesk: {
		PermReservationsWrite, PermBillingWrite, PermGuestsWrite, PermAgentUse, PermRead,
	},
	RoleHousekeeping: {
		PermHousekeepingWrite, PermRead,
	},
}

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleFrontDesk, RoleHousekeeping:
		return true
	}
	return false
}

// HotelRole reports whether the role is assignable to hotel staff.
func (r Role) HotelRole() bool {
	return r.Valid() && r != RoleSuperAdmin
}

// Can reports whether the role grants perm. Super admins can do everything.
func (r Role) Can(perm Permission) bool {
	if r == RoleSuperAdmin {
		return true
	}
	for _, p := range rolePermissions[r] {
		if p == perm {
			return true
		}
	}
	return false
}

// Permissions lists the permissions granted to the role.
func (r Role) Permissions() []Permission {
	if r == RoleSuperAdmin {
		all := []Permission{PermHotelsManage}
		return append(all, rolePermissions[RoleAdmin]...)
	}
	return append([]Permission(nil), rolePermissions[r]...)
}
