package authz

import "strings"

// Permission is a capability token named "{resource}:{action}". Permissions are
// static; there is no runtime creation.
type Permission string

// Resource is the namespace prefix of a permission, and the resource type a
// contextual check is evaluated against.
type Resource string

const (
	ResourceUser        Resource = "user"
	ResourceClub        Resource = "club"
	ResourceMember      Resource = "member"
	ResourceEvent       Resource = "event"
	ResourceCompetition Resource = "competition"
	ResourceFinance     Resource = "finance"
	ResourcePass        Resource = "pass"
	ResourceAttendance  Resource = "attendance"
	ResourceCertificate Resource = "certificate"
	ResourceMedia       Resource = "media"
)

const (
	ActionCreate  = "create"
	ActionRead    = "read"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionApprove = "approve"
)

const (
	PermUserCreate Permission = "user:create"
	PermUserRead   Permission = "user:read"
	PermUserUpdate Permission = "user:update"
	PermUserDelete Permission = "user:delete"

	PermClubCreate Permission = "club:create"
	PermClubRead   Permission = "club:read"
	PermClubUpdate Permission = "club:update"
	PermClubDelete Permission = "club:delete"

	PermMemberCreate  Permission = "member:create"
	PermMemberRead    Permission = "member:read"
	PermMemberUpdate  Permission = "member:update"
	PermMemberDelete  Permission = "member:delete"
	PermMemberApprove Permission = "member:approve"

	PermEventCreate Permission = "event:create"
	PermEventRead   Permission = "event:read"
	PermEventUpdate Permission = "event:update"
	PermEventDelete Permission = "event:delete"

	PermCompetitionCreate Permission = "competition:create"
	PermCompetitionRead   Permission = "competition:read"
	PermCompetitionUpdate Permission = "competition:update"
	PermCompetitionDelete Permission = "competition:delete"

	PermFinanceCreate Permission = "finance:create"
	PermFinanceRead   Permission = "finance:read"
	PermFinanceUpdate Permission = "finance:update"
	PermFinanceDelete Permission = "finance:delete"

	PermPassCreate  Permission = "pass:create"
	PermPassRead    Permission = "pass:read"
	PermPassUpdate  Permission = "pass:update"
	PermPassDelete  Permission = "pass:delete"
	PermPassApprove Permission = "pass:approve"

	PermAttendanceCreate Permission = "attendance:create"
	PermAttendanceRead   Permission = "attendance:read"
	PermAttendanceUpdate Permission = "attendance:update"
	PermAttendanceDelete Permission = "attendance:delete"

	PermCertificateCreate Permission = "certificate:create"
	PermCertificateRead   Permission = "certificate:read"
	PermCertificateUpdate Permission = "certificate:update"
	PermCertificateDelete Permission = "certificate:delete"

	PermMediaCreate Permission = "media:create"
	PermMediaRead   Permission = "media:read"
	PermMediaUpdate Permission = "media:update"
	PermMediaDelete Permission = "media:delete"
)

func AllPermissions() []Permission {
	return []Permission{
		PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete,
		PermClubCreate, PermClubRead, PermClubUpdate, PermClubDelete,
		PermMemberCreate, PermMemberRead, PermMemberUpdate, PermMemberDelete, PermMemberApprove,
		PermEventCreate, PermEventRead, PermEventUpdate, PermEventDelete,
		PermCompetitionCreate, PermCompetitionRead, PermCompetitionUpdate, PermCompetitionDelete,
		PermFinanceCreate, PermFinanceRead, PermFinanceUpdate, PermFinanceDelete,
		PermPassCreate, PermPassRead, PermPassUpdate, PermPassDelete, PermPassApprove,
		PermAttendanceCreate, PermAttendanceRead, PermAttendanceUpdate, PermAttendanceDelete,
		PermCertificateCreate, PermCertificateRead, PermCertificateUpdate, PermCertificateDelete,
		PermMediaCreate, PermMediaRead, PermMediaUpdate, PermMediaDelete,
	}
}

func (p Permission) String() string {
	return string(p)
}

// Resource returns the "{resource}" prefix of the permission.
func (p Permission) Resource() Resource {
	name, _, _ := strings.Cut(string(p), ":")
	return Resource(name)
}

// Action returns the "{action}" suffix of the permission.
func (p Permission) Action() string {
	_, action, _ := strings.Cut(string(p), ":")
	return action
}
