package authz

// AccessContext carries the runtime facts a contextual check is evaluated
// against. It is built fresh per check and never persisted. Empty strings mean
// "not applicable".
type AccessContext struct {
	UserID          string
	Role            Role
	ClubID          string
	ResourceOwnerID string
	ResourceClubID  string
	PublicResource  bool
}

// Engine evaluates role permissions. It is stateless and safe for concurrent
// use; construct one and inject it into request handlers.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// HasPermission reports whether the role's base matrix grants the permission.
func (e *Engine) HasPermission(role Role, perm Permission) bool {
	_, ok := permissionSets[role][perm]
	return ok
}

func (e *Engine) HasAnyPermission(role Role, perms ...Permission) bool {
	for _, perm := range perms {
		if e.HasPermission(role, perm) {
			return true
		}
	}
	return false
}

func (e *Engine) HasAllPermissions(role Role, perms ...Permission) bool {
	for _, perm := range perms {
		if !e.HasPermission(role, perm) {
			return false
		}
	}
	return true
}

// HasContextualPermission narrows the base matrix grant by resource-specific
// rules. The matrix is the ceiling: a permission the matrix denies is denied
// no matter the context.
func (e *Engine) HasContextualPermission(ctx AccessContext, perm Permission, resource Resource) bool {
	if !e.HasPermission(ctx.Role, perm) {
		return false
	}
	switch resource {
	case ResourceUser:
		return userRuleAllows(ctx, perm)
	case ResourceClub:
		return clubRuleAllows(ctx, perm)
	case ResourceEvent:
		return eventRuleAllows(ctx, perm)
	case ResourceFinance:
		return financeRuleAllows(ctx)
	default:
		return true
	}
}

// RequirePermission is the enforcing variant of HasContextualPermission. It is
// the engine's only failure path; a denial is returned as *Error with code
// INSUFFICIENT_PERMISSIONS and HTTP status 403.
func (e *Engine) RequirePermission(ctx AccessContext, perm Permission, resource Resource) error {
	if !e.HasContextualPermission(ctx, perm, resource) {
		return newDeniedError()
	}
	return nil
}

// IsHigherRole reports whether a outranks b in the fixed hierarchy. A role
// never outranks itself.
func (e *Engine) IsHigherRole(a, b Role) bool {
	return roleRank(a) < roleRank(b)
}

// CanChangeRole reports whether acting may move a target from current to next.
// Both the target's current and new role must sit strictly below the actor, so
// promotion to the actor's level and self-modification are impossible.
func (e *Engine) CanChangeRole(acting, current, next Role) bool {
	return e.IsHigherRole(acting, current) && e.IsHigherRole(acting, next)
}

// AccessibleResources filters the role's grants down to one resource namespace.
func (e *Engine) AccessibleResources(role Role, resource Resource) []Permission {
	var perms []Permission
	for _, perm := range permissionMatrix[role] {
		if perm.Resource() == resource {
			perms = append(perms, perm)
		}
	}
	return perms
}

// Matrix returns a copy of the full permission matrix for diagnostics and UI.
func (e *Engine) Matrix() map[Role][]Permission {
	snapshot := make(map[Role][]Permission, len(permissionMatrix))
	for role, perms := range permissionMatrix {
		copied := make([]Permission, len(perms))
		copy(copied, perms)
		snapshot[role] = copied
	}
	return snapshot
}

func userRuleAllows(ctx AccessContext, perm Permission) bool {
	// Self-service ceiling: a user may read and update their own record but
	// never delete it, whatever their role grants elsewhere.
	if ctx.ResourceOwnerID != "" && ctx.ResourceOwnerID == ctx.UserID {
		action := perm.Action()
		return action == ActionRead || action == ActionUpdate
	}
	switch ctx.Role {
	case RoleSuperAdmin, RoleFederationAdmin:
		return true
	case RoleClubOwner, RoleClubManager:
		return ctx.ClubID != "" && ctx.ClubID == ctx.ResourceClubID
	case RoleParent:
		// Guardian-to-child access is not supported yet; deny until a
		// guardian relationship check exists.
		return false
	default:
		return false
	}
}

func clubRuleAllows(ctx AccessContext, perm Permission) bool {
	switch ctx.Role {
	case RoleSuperAdmin, RoleFederationAdmin:
		return true
	case RoleClubOwner, RoleClubManager, RoleHeadCoach, RoleAssistantCoach, RoleMember, RoleParent:
		return ctx.ClubID != "" && ctx.ClubID == ctx.ResourceClubID
	default:
		// Public club directory: anyone whose matrix grants a bare read.
		return perm.Action() == ActionRead
	}
}

func eventRuleAllows(ctx AccessContext, perm Permission) bool {
	switch ctx.Role {
	case RoleSuperAdmin, RoleFederationAdmin:
		return true
	}
	if perm.Action() == ActionRead && ctx.PublicResource {
		return true
	}
	if ctx.ResourceClubID != "" {
		return ctx.ClubID == ctx.ResourceClubID
	}
	return false
}

func financeRuleAllows(ctx AccessContext) bool {
	switch ctx.Role {
	case RoleSuperAdmin:
		return true
	case RoleFederationAdmin:
		// Federation admins see the books but never touch them; the matrix
		// already restricts them to finance:read, so the grant stands.
		return true
	case RoleClubOwner, RoleClubManager:
		return ctx.ClubID != "" && ctx.ClubID == ctx.ResourceClubID
	default:
		return false
	}
}
