package authz

// Role is a fixed category of actor. The set is closed; roles are attached to
// user accounts, never to individual resources.
type Role string

const (
	RoleSuperAdmin            Role = "super_admin"
	RoleFederationAdmin       Role = "federation_admin"
	RoleFederationSecretariat Role = "federation_secretariat"
	RoleCommitteeChair        Role = "committee_chair"
	RoleCommitteeMember       Role = "committee_member"
	RoleClubOwner             Role = "club_owner"
	RoleClubManager           Role = "club_manager"
	RoleClubStaff             Role = "club_staff"
	RoleMediaManager          Role = "media_manager"
	RoleHeadCoach             Role = "head_coach"
	RoleAssistantCoach        Role = "assistant_coach"
	RoleMember                Role = "member"
	RoleParent                Role = "parent"
	RoleVendor                Role = "vendor"
)

// roleHierarchy orders roles by authority, most authoritative first. The index
// is the rank used by IsHigherRole and CanChangeRole.
var roleHierarchy = []Role{
	RoleSuperAdmin,
	RoleFederationAdmin,
	RoleFederationSecretariat,
	RoleCommitteeChair,
	RoleCommitteeMember,
	RoleClubOwner,
	RoleClubManager,
	RoleClubStaff,
	RoleMediaManager,
	RoleHeadCoach,
	RoleAssistantCoach,
	RoleMember,
	RoleParent,
	RoleVendor,
}

func AllRoles() []Role {
	roles := make([]Role, len(roleHierarchy))
	copy(roles, roleHierarchy)
	return roles
}

func (r Role) Valid() bool {
	return roleRank(r) < len(roleHierarchy)
}

func (r Role) String() string {
	return string(r)
}

// roleRank returns the hierarchy index of r; unknown roles rank below every
// known role.
func roleRank(r Role) int {
	for i, role := range roleHierarchy {
		if role == r {
			return i
		}
	}
	return len(roleHierarchy)
}
