package authz

import "testing"

func TestSuperAdminHoldsFullUniverse(t *testing.T) {
	e := NewEngine()
	for _, perm := range AllPermissions() {
		if !e.HasPermission(RoleSuperAdmin, perm) {
			t.Fatalf("super_admin missing %s", perm)
		}
	}
}

func TestHasPermissionUnknownRole(t *testing.T) {
	e := NewEngine()
	if e.HasPermission(Role("intruder"), PermUserRead) {
		t.Fatalf("unknown role must have empty permission set")
	}
}

func TestHasAnyAndAllPermissions(t *testing.T) {
	e := NewEngine()
	if !e.HasAnyPermission(RoleMember, PermFinanceDelete, PermClubRead) {
		t.Fatalf("expected any-match on club:read")
	}
	if e.HasAnyPermission(RoleVendor, PermFinanceDelete, PermUserDelete) {
		t.Fatalf("vendor should match neither permission")
	}
	if !e.HasAllPermissions(RoleClubOwner, PermFinanceCreate, PermFinanceDelete) {
		t.Fatalf("club owner holds full finance set")
	}
	if e.HasAllPermissions(RoleClubManager, PermFinanceRead, PermFinanceDelete) {
		t.Fatalf("club manager must not hold finance:delete")
	}
}

// The matrix is the ceiling: contextual evaluation never grants a permission
// the base matrix denies, for any role, permission, and resource type.
func TestContextualNeverWidensMatrix(t *testing.T) {
	e := NewEngine()
	contexts := []AccessContext{
		{UserID: "u1", ClubID: "c1", ResourceOwnerID: "u1", ResourceClubID: "c1"},
		{UserID: "u1", ClubID: "c1", ResourceClubID: "c1", PublicResource: true},
		{UserID: "u1", ResourceOwnerID: "u2", ResourceClubID: "c2"},
		{},
	}
	resources := []Resource{ResourceUser, ResourceClub, ResourceEvent, ResourceFinance, ResourceCompetition}
	for _, role := range AllRoles() {
		for _, perm := range AllPermissions() {
			for _, base := range contexts {
				ctx := base
				ctx.Role = role
				for _, resource := range resources {
					if e.HasContextualPermission(ctx, perm, resource) && !e.HasPermission(role, perm) {
						t.Fatalf("contextual grant beyond matrix: role=%s perm=%s resource=%s", role, perm, resource)
					}
				}
			}
		}
	}
}

func TestUserSelfServiceCeiling(t *testing.T) {
	e := NewEngine()
	for _, role := range AllRoles() {
		ctx := AccessContext{UserID: "u1", Role: role, ResourceOwnerID: "u1"}
		if e.HasContextualPermission(ctx, PermUserDelete, ResourceUser) {
			t.Fatalf("role %s may delete own account", role)
		}
	}

	ctx := AccessContext{UserID: "u1", Role: RoleMember, ResourceOwnerID: "u1"}
	if !e.HasContextualPermission(ctx, PermUserRead, ResourceUser) {
		t.Fatalf("member should read own record")
	}
	if !e.HasContextualPermission(ctx, PermUserUpdate, ResourceUser) {
		t.Fatalf("member should update own record")
	}
}

func TestUserRuleClubScoping(t *testing.T) {
	e := NewEngine()
	owner := AccessContext{UserID: "u1", Role: RoleClubOwner, ClubID: "c1", ResourceOwnerID: "u2", ResourceClubID: "c1"}
	if !e.HasContextualPermission(owner, PermUserUpdate, ResourceUser) {
		t.Fatalf("club owner should manage users of own club")
	}
	owner.ResourceClubID = "c2"
	if e.HasContextualPermission(owner, PermUserUpdate, ResourceUser) {
		t.Fatalf("club owner must not manage users of another club")
	}

	admin := AccessContext{UserID: "u1", Role: RoleFederationAdmin, ResourceOwnerID: "u2", ResourceClubID: "c2"}
	if !e.HasContextualPermission(admin, PermUserUpdate, ResourceUser) {
		t.Fatalf("federation admin bypasses club scoping")
	}

	// Guardian lookups are not implemented; parents are denied even with the
	// base user:read grant.
	parent := AccessContext{UserID: "p1", Role: RoleParent, ResourceOwnerID: "child-1", ResourceClubID: "c1", ClubID: "c1"}
	if e.HasContextualPermission(parent, PermUserRead, ResourceUser) {
		t.Fatalf("parent access to child records must deny until guardian checks exist")
	}
}

func TestClubRule(t *testing.T) {
	e := NewEngine()
	member := AccessContext{UserID: "u1", Role: RoleMember, ClubID: "c1", ResourceClubID: "c1"}
	if !e.HasContextualPermission(member, PermClubRead, ResourceClub) {
		t.Fatalf("member should read own club")
	}
	member.ResourceClubID = "c2"
	if e.HasContextualPermission(member, PermClubRead, ResourceClub) {
		t.Fatalf("member must not read another club through the affiliated rule")
	}

	// Non-affiliated roles with a bare read grant see the public directory.
	vendor := AccessContext{UserID: "u2", Role: RoleVendor, ResourceClubID: "c2"}
	if !e.HasContextualPermission(vendor, PermClubRead, ResourceClub) {
		t.Fatalf("vendor read should pass as public directory access")
	}
	committee := AccessContext{UserID: "u3", Role: RoleCommitteeChair, ResourceClubID: "c2"}
	if !e.HasContextualPermission(committee, PermClubRead, ResourceClub) {
		t.Fatalf("committee chair read should pass as public directory access")
	}
}

func TestEventRule(t *testing.T) {
	e := NewEngine()
	public := AccessContext{UserID: "u1", Role: RoleVendor, PublicResource: true}
	if !e.HasContextualPermission(public, PermEventRead, ResourceEvent) {
		t.Fatalf("public event should be readable by anyone with event:read")
	}

	private := AccessContext{UserID: "u1", Role: RoleMember, ClubID: "c1", ResourceClubID: "c1"}
	if !e.HasContextualPermission(private, PermEventRead, ResourceEvent) {
		t.Fatalf("club member should read own club's private event")
	}
	private.ResourceClubID = "c2"
	if e.HasContextualPermission(private, PermEventRead, ResourceEvent) {
		t.Fatalf("private event of another club must be hidden")
	}

	orphan := AccessContext{UserID: "u1", Role: RoleMember, ClubID: "c1"}
	if e.HasContextualPermission(orphan, PermEventRead, ResourceEvent) {
		t.Fatalf("private event without a club must deny")
	}
}

func TestFinanceRule(t *testing.T) {
	e := NewEngine()
	cases := []struct {
		role   Role
		perm   Permission
		club   string
		target string
		want   bool
	}{
		{RoleSuperAdmin, PermFinanceDelete, "", "c1", true},
		{RoleFederationAdmin, PermFinanceRead, "", "c1", true},
		{RoleFederationAdmin, PermFinanceDelete, "", "c1", false},
		{RoleClubOwner, PermFinanceDelete, "c1", "c1", true},
		{RoleClubOwner, PermFinanceDelete, "c1", "c2", false},
		{RoleClubManager, PermFinanceRead, "c1", "c1", true},
		{RoleClubManager, PermFinanceUpdate, "c1", "c1", false},
		{RoleMember, PermFinanceRead, "c1", "c1", false},
	}
	for _, tc := range cases {
		ctx := AccessContext{UserID: "u1", Role: tc.role, ClubID: tc.club, ResourceClubID: tc.target}
		if got := e.HasContextualPermission(ctx, tc.perm, ResourceFinance); got != tc.want {
			t.Fatalf("finance %s %s club=%s target=%s: got %v want %v", tc.role, tc.perm, tc.club, tc.target, got, tc.want)
		}
	}
}

func TestNonContextualResourceFallsBackToMatrix(t *testing.T) {
	e := NewEngine()
	ctx := AccessContext{UserID: "u1", Role: RoleCommitteeMember, ResourceClubID: "c9"}
	if !e.HasContextualPermission(ctx, PermCompetitionUpdate, ResourceCompetition) {
		t.Fatalf("competition has no narrowing rule; matrix result stands")
	}
	if e.HasContextualPermission(ctx, PermCompetitionDelete, ResourceCompetition) {
		t.Fatalf("matrix denial stands for competition:delete")
	}
}

func TestRequirePermission(t *testing.T) {
	e := NewEngine()
	ctx := AccessContext{UserID: "u1", Role: RoleVendor}
	err := e.RequirePermission(ctx, PermFinanceRead, ResourceFinance)
	if err == nil {
		t.Fatalf("expected denial")
	}
	authzErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *authz.Error, got %T", err)
	}
	if authzErr.Code != CodeInsufficientPermissions || authzErr.Status != 403 {
		t.Fatalf("unexpected error payload: %+v", authzErr)
	}

	ctx = AccessContext{UserID: "u1", Role: RoleSuperAdmin}
	if err := e.RequirePermission(ctx, PermFinanceDelete, ResourceFinance); err != nil {
		t.Fatalf("super admin should pass: %v", err)
	}
}

func TestRoleHierarchy(t *testing.T) {
	e := NewEngine()
	roles := AllRoles()
	for i, a := range roles {
		if e.IsHigherRole(a, a) {
			t.Fatalf("role %s must not outrank itself", a)
		}
		for _, b := range roles[i+1:] {
			if !e.IsHigherRole(a, b) {
				t.Fatalf("%s should outrank %s", a, b)
			}
			if e.IsHigherRole(b, a) {
				t.Fatalf("hierarchy must be antisymmetric: %s vs %s", a, b)
			}
		}
	}
	if !e.IsHigherRole(RoleSuperAdmin, Role("intruder")) {
		t.Fatalf("known roles outrank unknown roles")
	}
}

func TestCanChangeRole(t *testing.T) {
	e := NewEngine()
	for _, role := range AllRoles() {
		if e.CanChangeRole(role, role, RoleVendor) {
			t.Fatalf("role %s must not modify a peer", role)
		}
	}
	if !e.CanChangeRole(RoleSuperAdmin, RoleClubManager, RoleClubStaff) {
		t.Fatalf("super admin should demote a club manager to staff")
	}
	if e.CanChangeRole(RoleClubOwner, RoleClubManager, RoleFederationAdmin) {
		t.Fatalf("promotion above the actor must be impossible")
	}
	if e.CanChangeRole(RoleClubManager, RoleClubOwner, RoleClubStaff) {
		t.Fatalf("actors may only modify accounts strictly below them")
	}
}

func TestAccessibleResources(t *testing.T) {
	e := NewEngine()
	perms := e.AccessibleResources(RoleClubManager, ResourceFinance)
	if len(perms) != 1 || perms[0] != PermFinanceRead {
		t.Fatalf("expected finance:read only, got %v", perms)
	}
	if got := e.AccessibleResources(RoleVendor, ResourceFinance); len(got) != 0 {
		t.Fatalf("vendor has no finance grants, got %v", got)
	}
}

func TestMatrixSnapshotIsACopy(t *testing.T) {
	e := NewEngine()
	snapshot := e.Matrix()
	if len(snapshot) != len(AllRoles()) {
		t.Fatalf("expected an entry per role, got %d", len(snapshot))
	}
	snapshot[RoleVendor][0] = PermFinanceDelete
	if e.HasPermission(RoleVendor, PermFinanceDelete) {
		t.Fatalf("mutating the snapshot must not affect the matrix")
	}
}
