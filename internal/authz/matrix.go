package authz

// permissionMatrix is the single source of truth for what a role may do.
// Contextual rules only narrow these grants, never widen them. SUPER_ADMIN
// holds the full permission universe.
var permissionMatrix = map[Role][]Permission{
	RoleSuperAdmin: AllPermissions(),

	RoleFederationAdmin: {
		PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete,
		PermClubCreate, PermClubRead, PermClubUpdate, PermClubDelete,
		PermMemberCreate, PermMemberRead, PermMemberUpdate, PermMemberDelete, PermMemberApprove,
		PermEventCreate, PermEventRead, PermEventUpdate, PermEventDelete,
		PermCompetitionCreate, PermCompetitionRead, PermCompetitionUpdate, PermCompetitionDelete,
		PermFinanceRead,
		PermPassCreate, PermPassRead, PermPassUpdate, PermPassDelete, PermPassApprove,
		PermAttendanceCreate, PermAttendanceRead, PermAttendanceUpdate, PermAttendanceDelete,
		PermCertificateCreate, PermCertificateRead, PermCertificateUpdate, PermCertificateDelete,
		PermMediaCreate, PermMediaRead, PermMediaUpdate, PermMediaDelete,
	},

	RoleFederationSecretariat: {
		PermUserRead,
		PermClubRead,
		PermMemberRead, PermMemberUpdate, PermMemberApprove,
		PermEventCreate, PermEventRead, PermEventUpdate,
		PermCompetitionCreate, PermCompetitionRead, PermCompetitionUpdate,
		PermPassRead, PermPassApprove,
		PermAttendanceRead,
		PermCertificateCreate, PermCertificateRead,
		PermMediaRead,
	},

	RoleCommitteeChair: {
		PermClubRead,
		PermMemberRead,
		PermEventCreate, PermEventRead, PermEventUpdate,
		PermCompetitionCreate, PermCompetitionRead, PermCompetitionUpdate, PermCompetitionDelete,
		PermAttendanceRead,
		PermCertificateCreate, PermCertificateRead,
	},

	RoleCommitteeMember: {
		PermClubRead,
		PermMemberRead,
		PermEventRead,
		PermCompetitionRead, PermCompetitionUpdate,
		PermAttendanceRead,
	},

	RoleClubOwner: {
		PermUserRead, PermUserUpdate,
		PermClubRead, PermClubUpdate,
		PermMemberCreate, PermMemberRead, PermMemberUpdate, PermMemberApprove,
		PermEventCreate, PermEventRead, PermEventUpdate,
		PermCompetitionRead,
		PermFinanceCreate, PermFinanceRead, PermFinanceUpdate, PermFinanceDelete,
		PermPassCreate, PermPassRead, PermPassUpdate, PermPassApprove,
		PermAttendanceCreate, PermAttendanceRead, PermAttendanceUpdate,
		PermCertificateRead,
		PermMediaCreate, PermMediaRead,
	},

	RoleClubManager: {
		PermUserRead, PermUserUpdate,
		PermClubRead, PermClubUpdate,
		PermMemberCreate, PermMemberRead, PermMemberUpdate,
		PermEventCreate, PermEventRead, PermEventUpdate,
		PermCompetitionRead,
		PermFinanceRead,
		PermPassCreate, PermPassRead, PermPassUpdate,
		PermAttendanceCreate, PermAttendanceRead, PermAttendanceUpdate,
		PermCertificateRead,
		PermMediaCreate, PermMediaRead,
	},

	RoleClubStaff: {
		PermClubRead,
		PermMemberRead,
		PermEventRead,
		PermCompetitionRead,
		PermPassRead,
		PermAttendanceCreate, PermAttendanceRead, PermAttendanceUpdate,
	},

	RoleMediaManager: {
		PermClubRead,
		PermEventRead,
		PermCompetitionRead,
		PermMediaCreate, PermMediaRead, PermMediaUpdate, PermMediaDelete,
	},

	RoleHeadCoach: {
		PermClubRead,
		PermMemberRead,
		PermEventRead,
		PermCompetitionRead,
		PermPassRead,
		PermAttendanceCreate, PermAttendanceRead, PermAttendanceUpdate,
	},

	RoleAssistantCoach: {
		PermClubRead,
		PermMemberRead,
		PermEventRead,
		PermAttendanceCreate, PermAttendanceRead,
	},

	RoleMember: {
		PermUserRead, PermUserUpdate,
		PermClubRead,
		PermEventRead,
		PermCompetitionRead,
		PermPassRead,
		PermAttendanceRead,
		PermCertificateRead,
	},

	RoleParent: {
		PermUserRead,
		PermClubRead,
		PermEventRead,
		PermCompetitionRead,
		PermPassRead,
		PermAttendanceRead,
	},

	RoleVendor: {
		PermClubRead,
		PermEventRead,
		PermMediaRead,
	},
}

// permissionSets is the lookup form of permissionMatrix.
var permissionSets = buildPermissionSets()

func buildPermissionSets() map[Role]map[Permission]struct{} {
	sets := make(map[Role]map[Permission]struct{}, len(permissionMatrix))
	for role, perms := range permissionMatrix {
		set := make(map[Permission]struct{}, len(perms))
		for _, perm := range perms {
			set[perm] = struct{}{}
		}
		sets[role] = set
	}
	return sets
}
