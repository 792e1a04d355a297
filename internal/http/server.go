package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sportsfed/federation/internal/auth"
	"sportsfed/federation/internal/authz"
	"sportsfed/federation/internal/config"
	"sportsfed/federation/internal/crypto"
	"sportsfed/federation/internal/db"
	"sportsfed/federation/internal/ledger"
	"sportsfed/federation/internal/model"
)

type Server struct {
	cfg    config.Config
	store  *db.Store
	engine *authz.Engine
	ledger *ledger.Ledger
	badges *ledger.BadgeCache
}

func NewServer(cfg config.Config, store *db.Store, engine *authz.Engine, ledgerSvc *ledger.Ledger, badges *ledger.BadgeCache) *Server {
	return &Server{
		cfg:    cfg,
		store:  store,
		engine: engine,
		ledger: ledgerSvc,
		badges: badges,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/login", s.handleLogin)
	r.With(s.authMiddleware).Get("/auth/me", s.handleGetMe)

	r.With(s.authMiddleware).Get("/permissions", s.handleGetPermissionMatrix)
	r.With(s.authMiddleware).Get("/users/{userId}/permissions", s.handleGetUserPermissions)
	r.With(s.authMiddleware).Patch("/users/{userId}/role", s.handleChangeUserRole)

	r.With(s.authMiddleware).Get("/clubs/{clubId}", s.handleGetClub)
	r.With(s.authMiddleware).Get("/clubs/{clubId}/members", s.handleListClubMembers)

	r.Post("/registrations", s.handleCreateRegistration)
	r.With(s.authMiddleware).Post("/registrations/{requestId}/approve", s.handleApproveRegistration)

	r.With(s.authMiddleware).Get("/members/{memberId}", s.handleGetMember)
	r.With(s.authMiddleware).Post("/members/{memberId}/status", s.handleSetMemberStatus)
	r.With(s.authMiddleware).Get("/members/{memberId}/pass/badge", s.handleGetPassBadge)
	r.With(s.authMiddleware).Put("/members/{memberId}/attendance", s.handleSetAttendance)
	r.With(s.authMiddleware).Get("/members/{memberId}/attendance", s.handleListAttendance)

	r.With(s.authMiddleware).Post("/passes/requests", s.handleCreatePassRequest)
	r.With(s.authMiddleware).Post("/passes/requests/{requestId}/approve", s.handleApprovePassRequest)
	r.With(s.authMiddleware, s.requireFederationAdmin).Post("/passes/sweep", s.handleSweepPasses)

	return r
}

// Auth

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func (s *Server) requireFederationAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		if claims.Role != authz.RoleSuperAdmin && claims.Role != authz.RoleFederationAdmin {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessContext builds the contextual-check input from the request claims and
// the target resource facts.
func accessContext(claims *auth.Claims, ownerID, clubID string, public bool) authz.AccessContext {
	return authz.AccessContext{
		UserID:          claims.UserID,
		Role:            claims.Role,
		ClubID:          claims.ClubID,
		ResourceOwnerID: ownerID,
		ResourceClubID:  clubID,
		PublicResource:  public,
	}
}

// clubScoped reports whether the actor may act on records of the given club.
// Federation-level roles see every club; everyone else only their own.
func clubScoped(claims *auth.Claims, clubID string) bool {
	switch claims.Role {
	case authz.RoleSuperAdmin, authz.RoleFederationAdmin, authz.RoleFederationSecretariat:
		return true
	default:
		return claims.ClubID != "" && claims.ClubID == clubID
	}
}

// Models

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userSummary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	ClubID    string `json:"clubId,omitempty"`
}

type loginResponse struct {
	AccessToken string      `json:"accessToken"`
	User        userSummary `json:"user"`
}

type clubResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

type memberResponse struct {
	ID           string `json:"id"`
	ClubID       string `json:"clubId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	DateOfBirth  string `json:"dateOfBirth"`
	Gender       string `json:"gender,omitempty"`
	Status       string `json:"status"`
	ActivePassID string `json:"activePassId,omitempty"`
}

type passResponse struct {
	ID                 string `json:"id"`
	MemberID           string `json:"memberId"`
	ClubID             string `json:"clubId"`
	TemplateName       string `json:"templateName,omitempty"`
	Status             string `json:"status"`
	PaymentStatus      string `json:"paymentStatus"`
	TotalSessions      *int32 `json:"totalSessions,omitempty"`
	AttendableSessions *int32 `json:"attendableSessions,omitempty"`
	AttendanceCount    *int32 `json:"attendanceCount,omitempty"`
	RemainingSessions  *int32 `json:"remainingSessions,omitempty"`
	StartDate          string `json:"startDate,omitempty"`
	EndDate            string `json:"endDate,omitempty"`
}

type attendanceResponse struct {
	ID       string `json:"id"`
	MemberID string `json:"memberId"`
	ClubID   string `json:"clubId"`
	PassID   string `json:"passId"`
	Date     string `json:"date"`
	Status   string `json:"status"`
}

type setAttendanceRequest struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

type setMemberStatusRequest struct {
	Status string `json:"status"`
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

type createRegistrationRequest struct {
	ClubID      string  `json:"clubId"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	DateOfBirth string  `json:"dateOfBirth"`
	Gender      string  `json:"gender"`
	GuardianID  *string `json:"guardianId"`
}

type createPassRequestRequest struct {
	MemberID           string `json:"memberId"`
	TemplateName       string `json:"templateName"`
	TotalSessions      *int32 `json:"totalSessions"`
	AttendableSessions *int32 `json:"attendableSessions"`
	StartDate          string `json:"startDate"`
	EndDate            string `json:"endDate"`
}

// Handlers

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_credentials")
		return
	}

	user, err := s.store.Queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	clubID := ""
	if user.ClubID != nil {
		clubID = *user.ClubID
	}
	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, auth.Claims{
		UserID: user.ID,
		Role:   user.Role,
		ClubID: clubID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		User:        mapUser(user),
	})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	user, err := s.store.Queries.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, mapUser(user))
}

func (s *Server) handleGetPermissionMatrix(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Matrix())
}

func (s *Server) handleGetUserPermissions(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	userID := chi.URLParam(r, "userId")
	resource := authz.Resource(r.URL.Query().Get("resource"))
	if resource == "" {
		writeError(w, http.StatusBadRequest, "missing_resource")
		return
	}

	user, err := s.store.Queries.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	targetClub := ""
	if user.ClubID != nil {
		targetClub = *user.ClubID
	}
	if err := s.engine.RequirePermission(accessContext(claims, user.ID, targetClub, false), authz.PermUserRead, authz.ResourceUser); err != nil {
		writeAuthzError(w, err)
		return
	}

	perms := s.engine.AccessibleResources(user.Role, resource)
	if perms == nil {
		perms = []authz.Permission{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"userId":      user.ID,
		"role":        user.Role,
		"resource":    resource,
		"permissions": perms,
	})
}

func (s *Server) handleChangeUserRole(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	var req changeRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	newRole := authz.Role(req.Role)
	if !newRole.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_role")
		return
	}

	userID := chi.URLParam(r, "userId")
	user, err := s.store.Queries.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	targetClub := ""
	if user.ClubID != nil {
		targetClub = *user.ClubID
	}
	if err := s.engine.RequirePermission(accessContext(claims, user.ID, targetClub, false), authz.PermUserUpdate, authz.ResourceUser); err != nil {
		writeAuthzError(w, err)
		return
	}
	if !s.engine.CanChangeRole(claims.Role, user.Role, newRole) {
		writeError(w, http.StatusForbidden, "role_change_not_allowed")
		return
	}

	if err := s.store.Queries.UpdateUserRole(r.Context(), user.ID, newRole); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	user.Role = newRole
	writeJSON(w, http.StatusOK, mapUser(user))
}

func (s *Server) handleGetClub(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	clubID := chi.URLParam(r, "clubId")
	club, err := s.store.Queries.GetClub(r.Context(), clubID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "club_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if err := s.engine.RequirePermission(accessContext(claims, "", club.ID, false), authz.PermClubRead, authz.ResourceClub); err != nil {
		writeAuthzError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clubResponse{ID: club.ID, Name: club.Name, Region: club.Region})
}

func (s *Server) handleListClubMembers(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	clubID := chi.URLParam(r, "clubId")
	club, err := s.store.Queries.GetClub(r.Context(), clubID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "club_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if err := s.engine.RequirePermission(accessContext(claims, "", club.ID, false), authz.PermMemberRead, authz.ResourceMember); err != nil {
		writeAuthzError(w, err)
		return
	}
	if !clubScoped(claims, club.ID) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	members, err := s.store.Queries.ListMembersByClub(r.Context(), club.ID, parseLimit(r, 100))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp := make([]memberResponse, 0, len(members))
	for _, member := range members {
		resp = append(resp, mapMember(member))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateRegistration(w http.ResponseWriter, r *http.Request) {
	var req createRegistrationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.ClubID == "" || req.FirstName == "" || req.LastName == "" || req.DateOfBirth == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	dateOfBirth, err := parseDay(req.DateOfBirth)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	if _, err := s.store.Queries.GetClub(r.Context(), req.ClubID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "club_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	requestID := uuid.NewString()
	if err := s.store.Queries.CreateRegistrationRequest(r.Context(), db.CreateRegistrationRequestParams{
		ID:          requestID,
		ClubID:      req.ClubID,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		DateOfBirth: dateOfBirth,
		Gender:      req.Gender,
		GuardianID:  req.GuardianID,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":     requestID,
		"status": string(model.RequestStatusPending),
	})
}

func (s *Server) handleApproveRegistration(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	if err := s.engine.RequirePermission(accessContext(claims, "", "", false), authz.PermMemberApprove, authz.ResourceMember); err != nil {
		writeAuthzError(w, err)
		return
	}

	requestID := chi.URLParam(r, "requestId")
	var member model.Member
	err := s.store.WithTx(r.Context(), func(q *db.Queries) error {
		request, err := q.GetRegistrationRequestForUpdate(r.Context(), requestID)
		if err != nil {
			return err
		}
		if !clubScoped(claims, request.ClubID) {
			return errForbidden
		}
		if request.Status != model.RequestStatusPending {
			return errRequestNotPending
		}
		member = model.Member{
			ID:          uuid.NewString(),
			ClubID:      request.ClubID,
			FirstName:   request.FirstName,
			LastName:    request.LastName,
			DateOfBirth: request.DateOfBirth,
			Gender:      request.Gender,
			Status:      model.MemberStatusActive,
			GuardianID:  request.GuardianID,
		}
		if err := q.CreateMember(r.Context(), db.CreateMemberParams{
			ID:          member.ID,
			ClubID:      member.ClubID,
			FirstName:   member.FirstName,
			LastName:    member.LastName,
			DateOfBirth: member.DateOfBirth,
			Gender:      member.Gender,
			Status:      member.Status,
			GuardianID:  member.GuardianID,
		}); err != nil {
			return err
		}
		return q.SetRegistrationRequestStatus(r.Context(), request.ID, model.RequestStatusApproved)
	})
	if err != nil {
		writeTxError(w, err, "registration_not_found")
		return
	}
	writeJSON(w, http.StatusCreated, mapMember(member))
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	member, ok := s.loadMember(w, r, claims, authz.PermMemberRead)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, mapMember(member))
}

func (s *Server) handleSetMemberStatus(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	var req setMemberStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	status := model.MemberStatus(req.Status)
	// pending is only reachable through the registration flow
	if status != model.MemberStatusActive && status != model.MemberStatusInactive {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}

	member, ok := s.loadMember(w, r, claims, authz.PermMemberUpdate)
	if !ok {
		return
	}
	if err := s.store.Queries.UpdateMemberStatus(r.Context(), member.ID, status); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	member.Status = status
	writeJSON(w, http.StatusOK, mapMember(member))
}

func (s *Server) handleCreatePassRequest(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	var req createPassRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.MemberID == "" {
		writeError(w, http.StatusBadRequest, "missing_member")
		return
	}
	startDate, err := parseDayPtr(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	endDate, err := parseDayPtr(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}

	member, err := s.store.Queries.GetMember(r.Context(), req.MemberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "member_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if err := s.engine.RequirePermission(accessContext(claims, "", member.ClubID, false), authz.PermPassCreate, authz.ResourcePass); err != nil {
		writeAuthzError(w, err)
		return
	}
	if !clubScoped(claims, member.ClubID) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	requestID := uuid.NewString()
	if err := s.store.Queries.CreatePassRequest(r.Context(), db.CreatePassRequestParams{
		ID:                 requestID,
		MemberID:           member.ID,
		ClubID:             member.ClubID,
		TemplateName:       req.TemplateName,
		TotalSessions:      req.TotalSessions,
		AttendableSessions: req.AttendableSessions,
		StartDate:          startDate,
		EndDate:            endDate,
		PaymentStatus:      model.PaymentStatusPending,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":     requestID,
		"status": string(model.RequestStatusPending),
	})
}

func (s *Server) handleApprovePassRequest(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	if err := s.engine.RequirePermission(accessContext(claims, "", "", false), authz.PermPassApprove, authz.ResourcePass); err != nil {
		writeAuthzError(w, err)
		return
	}

	requestID := chi.URLParam(r, "requestId")
	var pass model.MemberPass
	err := s.store.WithTx(r.Context(), func(q *db.Queries) error {
		request, err := q.GetPassRequestForUpdate(r.Context(), requestID)
		if err != nil {
			return err
		}
		if !clubScoped(claims, request.ClubID) {
			return errForbidden
		}
		if request.Status != model.RequestStatusPending {
			return errRequestNotPending
		}

		pass = model.MemberPass{
			ID:            uuid.NewString(),
			MemberID:      request.MemberID,
			ClubID:        request.ClubID,
			TemplateName:  request.TemplateName,
			Status:        model.PassStatusActive,
			PaymentStatus: request.PaymentStatus,
			StartDate:     request.StartDate,
			EndDate:       request.EndDate,
		}
		if request.AttendableSessions != nil {
			attendable := *request.AttendableSessions
			total := attendable
			if request.TotalSessions != nil {
				total = *request.TotalSessions
			}
			zero := int32(0)
			remaining := attendable
			pass.TotalSessions = &total
			pass.AttendableSessions = &attendable
			pass.AttendanceCount = &zero
			pass.RemainingSessions = &remaining
		}
		if err := q.CreateMemberPass(r.Context(), db.CreateMemberPassParams{
			ID:                 pass.ID,
			MemberID:           pass.MemberID,
			ClubID:             pass.ClubID,
			TemplateName:       pass.TemplateName,
			Status:             pass.Status,
			PaymentStatus:      pass.PaymentStatus,
			TotalSessions:      pass.TotalSessions,
			AttendableSessions: pass.AttendableSessions,
			AttendanceCount:    pass.AttendanceCount,
			RemainingSessions:  pass.RemainingSessions,
			StartDate:          pass.StartDate,
			EndDate:            pass.EndDate,
		}); err != nil {
			return err
		}
		if err := q.SetMemberActivePass(r.Context(), pass.MemberID, &pass.ID); err != nil {
			return err
		}
		return q.SetPassRequestStatus(r.Context(), request.ID, model.RequestStatusApproved)
	})
	if err != nil {
		writeTxError(w, err, "pass_request_not_found")
		return
	}
	if s.badges != nil {
		_ = s.badges.Invalidate(r.Context(), pass.MemberID)
	}
	writeJSON(w, http.StatusCreated, mapPass(pass))
}

func (s *Server) handleGetPassBadge(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	member, ok := s.loadMember(w, r, claims, authz.PermPassRead)
	if !ok {
		return
	}

	if s.badges != nil {
		if badge, hit, err := s.badges.Get(r.Context(), member.ID); err == nil && hit {
			writeJSON(w, http.StatusOK, map[string]string{"memberId": member.ID, "badge": badge})
			return
		}
	}

	var pass *model.MemberPass
	if member.ActivePassID != nil {
		loaded, err := s.store.Queries.GetMemberPass(r.Context(), *member.ActivePassID)
		if err == nil {
			pass = &loaded
		} else if !errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
	}
	badge := ledger.PassStatusBadge(member, pass, time.Now().UTC())
	if s.badges != nil {
		_ = s.badges.Set(r.Context(), member.ID, badge)
	}
	writeJSON(w, http.StatusOK, map[string]string{"memberId": member.ID, "badge": badge})
}

func (s *Server) handleSetAttendance(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	var req setAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	status, err := normalizeAttendanceStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}
	day, err := parseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}

	member, ok := s.loadMember(w, r, claims, authz.PermAttendanceUpdate)
	if !ok {
		return
	}

	record, pass, err := s.ledger.SetAttendanceStatus(r.Context(), member.ID, day, status)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrMemberNotFound):
			writeError(w, http.StatusNotFound, "member_not_found")
		case errors.Is(err, ledger.ErrNoActivePass):
			writeError(w, http.StatusConflict, "no_active_pass")
		case errors.Is(err, ledger.ErrPassNotFound):
			writeError(w, http.StatusConflict, "pass_not_found")
		case errors.Is(err, ledger.ErrUnsupportedPassType):
			// Not a failure: durational and unlimited passes are simply
			// exempt from session accounting.
			writeJSON(w, http.StatusOK, map[string]string{"warning": "pass_not_session_based"})
		default:
			writeError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"record": mapAttendance(record),
		"pass":   mapPass(pass),
	})
}

func (s *Server) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	member, ok := s.loadMember(w, r, claims, authz.PermAttendanceRead)
	if !ok {
		return
	}

	records, err := s.store.Queries.ListAttendanceByMember(r.Context(), member.ID, parseLimit(r, 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp := make([]attendanceResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, mapAttendance(record))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSweepPasses(w http.ResponseWriter, r *http.Request) {
	count, err := s.ledger.SweepExpiredDurationPasses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"expired": count})
}

// loadMember fetches the routed member, enforces the given permission against
// the member's club, and applies club scoping. Writes the error response
// itself and reports ok=false on any failure.
func (s *Server) loadMember(w http.ResponseWriter, r *http.Request, claims *auth.Claims, perm authz.Permission) (model.Member, bool) {
	memberID := chi.URLParam(r, "memberId")
	member, err := s.store.Queries.GetMember(r.Context(), memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "member_not_found")
			return model.Member{}, false
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return model.Member{}, false
	}
	if err := s.engine.RequirePermission(accessContext(claims, "", member.ClubID, false), perm, perm.Resource()); err != nil {
		writeAuthzError(w, err)
		return model.Member{}, false
	}
	if !clubScoped(claims, member.ClubID) {
		// Members may look at their own records even though they are not
		// club administrators.
		self := member.UserID != nil && *member.UserID == claims.UserID
		if !(self && perm.Action() == authz.ActionRead) {
			writeError(w, http.StatusForbidden, "forbidden")
			return model.Member{}, false
		}
	}
	return member, true
}

// Mapping

func mapUser(user model.User) userSummary {
	resp := userSummary{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
	}
	if user.ClubID != nil {
		resp.ClubID = *user.ClubID
	}
	return resp
}

func mapMember(member model.Member) memberResponse {
	resp := memberResponse{
		ID:          member.ID,
		ClubID:      member.ClubID,
		FirstName:   member.FirstName,
		LastName:    member.LastName,
		DateOfBirth: member.DateOfBirth.Format(dayFormat),
		Gender:      member.Gender,
		Status:      string(member.Status),
	}
	if member.ActivePassID != nil {
		resp.ActivePassID = *member.ActivePassID
	}
	return resp
}

func mapPass(pass model.MemberPass) passResponse {
	resp := passResponse{
		ID:                 pass.ID,
		MemberID:           pass.MemberID,
		ClubID:             pass.ClubID,
		TemplateName:       pass.TemplateName,
		Status:             string(pass.Status),
		PaymentStatus:      string(pass.PaymentStatus),
		TotalSessions:      pass.TotalSessions,
		AttendableSessions: pass.AttendableSessions,
		AttendanceCount:    pass.AttendanceCount,
		RemainingSessions:  pass.RemainingSessions,
	}
	if pass.StartDate != nil {
		resp.StartDate = pass.StartDate.Format(dayFormat)
	}
	if pass.EndDate != nil {
		resp.EndDate = pass.EndDate.Format(dayFormat)
	}
	return resp
}

func mapAttendance(record model.AttendanceRecord) attendanceResponse {
	return attendanceResponse{
		ID:       record.ID,
		MemberID: record.MemberID,
		ClubID:   record.ClubID,
		PassID:   record.PassID,
		Date:     record.Day.Format(dayFormat),
		Status:   string(record.Status),
	}
}

// Utilities

const dayFormat = "2006-01-02"

var (
	errForbidden         = errors.New("forbidden")
	errRequestNotPending = errors.New("request not pending")
)

func writeTxError(w http.ResponseWriter, err error, notFoundCode string) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		writeError(w, http.StatusNotFound, notFoundCode)
	case errors.Is(err, errForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, errRequestNotPending):
		writeError(w, http.StatusConflict, "request_not_pending")
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeError(w, http.StatusConflict, "already_exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}

func writeAuthzError(w http.ResponseWriter, err error) {
	var authzErr *authz.Error
	if errors.As(err, &authzErr) {
		writeJSON(w, authzErr.Status, map[string]string{
			"error":   authzErr.Code,
			"message": authzErr.Message,
		})
		return
	}
	writeError(w, http.StatusForbidden, "forbidden")
}

func normalizeAttendanceStatus(value string) (model.AttendanceStatus, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "present":
		return model.AttendancePresent, nil
	case "absent":
		return model.AttendanceAbsent, nil
	case "excused":
		return model.AttendanceExcused, nil
	default:
		return "", errInvalid
	}
}

func parseDay(value string) (time.Time, error) {
	return time.Parse(dayFormat, strings.TrimSpace(value))
}

func parseDayPtr(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parsed, err := parseDay(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseLimit(r *http.Request, fallback int32) int32 {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return int32(parsed)
		}
	}
	return fallback
}

var errInvalid = errors.New("invalid value")

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
