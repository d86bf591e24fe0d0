package domain

import "fmt"

// Role identifies one of the fixed membership tiers on the platform.
type Role string

const (
	RoleSubscriber  Role = "subscriber"
	RoleMentor      Role = "mentor"
	RoleTeamMember  Role = "team_member"
	RoleTeamAdmin   Role = "team_admin"
	RoleSystemAdmin Role = "system_admin"
)

// Roles lists every known role in declaration order.
func Roles() []Role {
	return []Role{RoleSubscriber, RoleMentor, RoleTeamMember, RoleTeamAdmin, RoleSystemAdmin}
}

// Permission names a single capability flag.
type Permission string

const (
	PermBookSessions       Permission = "canBookSessions"
	PermSpendCredits       Permission = "canSpendCredits"
	PermSendMessages       Permission = "canSendMessages"
	PermSetRates           Permission = "canSetRates"
	PermManageAvailability Permission = "canManageAvailability"
	PermHostMasterclasses  Permission = "canHostMasterclasses"
	PermManageTeam         Permission = "canManageTeam"
	PermPurchaseCredits    Permission = "canPurchaseCredits"
	PermViewTeamUsage      Permission = "canViewTeamUsage"
	PermApproveUsers       Permission = "canApproveUsers"
	PermSendGlobalMessages Permission = "canSendGlobalMessages"
	PermViewAnalytics      Permission = "canViewAnalytics"
)

// PermissionSet is the fixed record of capability flags attached to a role.
type PermissionSet struct {
	CanBookSessions       bool `json:"canBookSessions"`
	CanSpendCredits       bool `json:"canSpendCredits"`
	CanSendMessages       bool `json:"canSendMessages"`
	CanSetRates           bool `json:"canSetRates"`
	CanManageAvailability bool `json:"canManageAvailability"`
	CanHostMasterclasses  bool `json:"canHostMasterclasses"`
	CanManageTeam         bool `json:"canManageTeam"`
	CanPurchaseCredits    bool `json:"canPurchaseCredits"`
	CanViewTeamUsage      bool `json:"canViewTeamUsage"`
	CanApproveUsers       bool `json:"canApproveUsers"`
	CanSendGlobalMessages bool `json:"canSendGlobalMessages"`
	CanViewAnalytics      bool `json:"canViewAnalytics"`
}

// Has reports whether the named flag is set.
func (p PermissionSet) Has(perm Permission) bool {
	switch perm {
	case PermBookSessions:
		return p.CanBookSessions
	case PermSpendCredits:
		return p.CanSpendCredits
	case PermSendMessages:
		return p.CanSendMessages
	case PermSetRates:
		return p.CanSetRates
	case PermManageAvailability:
		return p.CanManageAvailability
	case PermHostMasterclasses:
		return p.CanHostMasterclasses
	case PermManageTeam:
		return p.CanManageTeam
	case PermPurchaseCredits:
		return p.CanPurchaseCredits
	case PermViewTeamUsage:
		return p.CanViewTeamUsage
	case PermApproveUsers:
		return p.CanApproveUsers
	case PermSendGlobalMessages:
		return p.CanSendGlobalMessages
	case PermViewAnalytics:
		return p.CanViewAnalytics
	default:
		return false
	}
}

// rolePermissions is the static role capability matrix, defined at build time
// and never mutated.
var rolePermissions = map[Role]PermissionSet{
	RoleSubscriber: {
		CanBookSessions: true,
		CanSpendCredits: true,
		CanSendMessages: true,
	},
	RoleMentor: {
		CanSendMessages:       true,
		CanSetRates:           true,
		CanManageAvailability: true,
		CanHostMasterclasses:  true,
	},
	RoleTeamMember: {
		CanBookSessions: true,
		CanSpendCredits: true,
		CanSendMessages: true,
	},
	RoleTeamAdmin: {
		CanBookSessions:    true,
		CanSpendCredits:    true,
		CanSendMessages:    true,
		CanManageTeam:      true,
		CanPurchaseCredits: true,
		CanViewTeamUsage:   true,
	},
	RoleSystemAdmin: {
		CanBookSessions:       true,
		CanSpendCredits:       true,
		CanSendMessages:       true,
		CanSetRates:           true,
		CanManageAvailability: true,
		CanHostMasterclasses:  true,
		CanManageTeam:         true,
		CanPurchaseCredits:    true,
		CanViewTeamUsage:      true,
		CanApproveUsers:       true,
		CanSendGlobalMessages: true,
		CanViewAnalytics:      true,
	},
}

// PermissionsFor returns the permission set attached to the role. The mapping
// is total over the roles returned by Roles; roles read from external storage
// must be validated with ParseRole first.
func PermissionsFor(role Role) PermissionSet {
	return rolePermissions[role]
}

// ParseRole validates an externally supplied role identifier.
func ParseRole(value string) (Role, error) {
	role := Role(value)
	if _, ok := rolePermissions[role]; !ok {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return role, nil
}

// ValidateRoleRegistry confirms every declared role has an entry in the
// capability matrix. Called once at startup; a failure is a configuration
// error, not a runtime condition.
func ValidateRoleRegistry() error {
	for _, role := range Roles() {
		if _, ok := rolePermissions[role]; !ok {
			return fmt.Errorf("role registry: no permission set for role %q", role)
		}
	}
	if len(rolePermissions) != len(Roles()) {
		return fmt.Errorf("role registry: %d permission sets for %d roles", len(rolePermissions), len(Roles()))
	}
	return nil
}
