package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"sportsfed/federation/internal/authz"
	"sportsfed/federation/internal/model"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// Users

const userColumns = `id, email, password_hash, first_name, last_name, role, club_id, created_at, updated_at`

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.ClubID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (q *Queries) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
}

func (q *Queries) UpdateUserRole(ctx context.Context, userID string, role authz.Role) error {
	_, err := q.db.Exec(ctx, `
		UPDATE users SET role = $2, updated_at = now()
		WHERE id = $1
	`, userID, role)
	return err
}

type CreateUserParams struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         authz.Role
	ClubID       *string
}

func (q *Queries) CreateUser(ctx context.Context, params CreateUserParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role, club_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, params.ID, params.Email, params.PasswordHash, params.FirstName, params.LastName, params.Role, params.ClubID)
	return err
}

// Clubs

func (q *Queries) GetClub(ctx context.Context, clubID string) (model.Club, error) {
	var club model.Club
	err := q.db.QueryRow(ctx, `
		SELECT id, name, region, owner_id, created_at, updated_at
		FROM clubs WHERE id = $1
	`, clubID).Scan(
		&club.ID,
		&club.Name,
		&club.Region,
		&club.OwnerID,
		&club.CreatedAt,
		&club.UpdatedAt,
	)
	return club, err
}

type CreateClubParams struct {
	ID      string
	Name    string
	Region  string
	OwnerID string
}

func (q *Queries) CreateClub(ctx context.Context, params CreateClubParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO clubs (id, name, region, owner_id)
		VALUES ($1, $2, $3, $4)
	`, params.ID, params.Name, params.Region, params.OwnerID)
	return err
}

// Members

const memberColumns = `id, user_id, club_id, first_name, last_name, date_of_birth, gender, status, guardian_id, active_pass_id, created_at, updated_at`

func scanMember(row pgx.Row) (model.Member, error) {
	var member model.Member
	err := row.Scan(
		&member.ID,
		&member.UserID,
		&member.ClubID,
		&member.FirstName,
		&member.LastName,
		&member.DateOfBirth,
		&member.Gender,
		&member.Status,
		&member.GuardianID,
		&member.ActivePassID,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	return member, err
}

func (q *Queries) GetMember(ctx context.Context, memberID string) (model.Member, error) {
	return scanMember(q.db.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, memberID))
}

func (q *Queries) ListMembersByClub(ctx context.Context, clubID string, limit int32) ([]model.Member, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+memberColumns+` FROM members
		WHERE club_id = $1
		ORDER BY last_name, first_name
		LIMIT $2
	`, clubID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

type CreateMemberParams struct {
	ID          string
	UserID      *string
	ClubID      string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Gender      string
	Status      model.MemberStatus
	GuardianID  *string
}

func (q *Queries) CreateMember(ctx context.Context, params CreateMemberParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO members (id, user_id, club_id, first_name, last_name, date_of_birth, gender, status, guardian_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, params.ID, params.UserID, params.ClubID, params.FirstName, params.LastName,
		params.DateOfBirth, params.Gender, params.Status, params.GuardianID)
	return err
}

func (q *Queries) UpdateMemberStatus(ctx context.Context, memberID string, status model.MemberStatus) error {
	_, err := q.db.Exec(ctx, `
		UPDATE members SET status = $2, updated_at = now()
		WHERE id = $1
	`, memberID, status)
	return err
}

func (q *Queries) SetMemberActivePass(ctx context.Context, memberID string, passID *string) error {
	_, err := q.db.Exec(ctx, `
		UPDATE members SET active_pass_id = $2, updated_at = now()
		WHERE id = $1
	`, memberID, passID)
	return err
}

// Passes

const passColumns = `id, member_id, club_id, template_name, status, payment_status,
	total_sessions, attendable_sessions, attendance_count, remaining_sessions,
	start_date, end_date, created_at, updated_at`

func scanPass(row pgx.Row) (model.MemberPass, error) {
	var pass model.MemberPass
	err := row.Scan(
		&pass.ID,
		&pass.MemberID,
		&pass.ClubID,
		&pass.TemplateName,
		&pass.Status,
		&pass.PaymentStatus,
		&pass.TotalSessions,
		&pass.AttendableSessions,
		&pass.AttendanceCount,
		&pass.RemainingSessions,
		&pass.StartDate,
		&pass.EndDate,
		&pass.CreatedAt,
		&pass.UpdatedAt,
	)
	return pass, err
}

func (q *Queries) GetMemberPass(ctx context.Context, passID string) (model.MemberPass, error) {
	return scanPass(q.db.QueryRow(ctx, `SELECT `+passColumns+` FROM member_passes WHERE id = $1`, passID))
}

// GetMemberPassForUpdate locks the pass row for the duration of the enclosing
// transaction, serializing concurrent attendance edits against the same pass.
func (q *Queries) GetMemberPassForUpdate(ctx context.Context, passID string) (model.MemberPass, error) {
	return scanPass(q.db.QueryRow(ctx, `SELECT `+passColumns+` FROM member_passes WHERE id = $1 FOR UPDATE`, passID))
}

type CreateMemberPassParams struct {
	ID                 string
	MemberID           string
	ClubID             string
	TemplateName       string
	Status             model.PassStatus
	PaymentStatus      model.PaymentStatus
	TotalSessions      *int32
	AttendableSessions *int32
	AttendanceCount    *int32
	RemainingSessions  *int32
	StartDate          *time.Time
	EndDate            *time.Time
}

func (q *Queries) CreateMemberPass(ctx context.Context, params CreateMemberPassParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO member_passes (id, member_id, club_id, template_name, status, payment_status,
			total_sessions, attendable_sessions, attendance_count, remaining_sessions, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, params.ID, params.MemberID, params.ClubID, params.TemplateName, params.Status, params.PaymentStatus,
		params.TotalSessions, params.AttendableSessions, params.AttendanceCount, params.RemainingSessions,
		params.StartDate, params.EndDate)
	return err
}

type UpdatePassAccountingParams struct {
	ID                string
	AttendanceCount   int32
	RemainingSessions int32
	Status            model.PassStatus
}

func (q *Queries) UpdatePassAccounting(ctx context.Context, params UpdatePassAccountingParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE member_passes
		SET attendance_count = $2, remaining_sessions = $3, status = $4, updated_at = now()
		WHERE id = $1
	`, params.ID, params.AttendanceCount, params.RemainingSessions, params.Status)
	return err
}

// ExpireDurationPasses marks active date-bounded passes whose end date has
// passed. Returns the number of passes transitioned.
func (q *Queries) ExpireDurationPasses(ctx context.Context, now time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE member_passes
		SET status = 'expired', updated_at = now()
		WHERE status = 'active' AND end_date IS NOT NULL AND end_date < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Attendance

const attendanceColumns = `id, member_id, club_id, pass_id, day, status, created_at, updated_at`

func scanAttendance(row pgx.Row) (model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := row.Scan(
		&record.ID,
		&record.MemberID,
		&record.ClubID,
		&record.PassID,
		&record.Day,
		&record.Status,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	return record, err
}

// GetAttendanceForUpdate reads the member's record for one day inside the
// enclosing transaction, locked so the revert/apply decision is never made on
// a stale status.
func (q *Queries) GetAttendanceForUpdate(ctx context.Context, memberID string, day time.Time) (model.AttendanceRecord, error) {
	return scanAttendance(q.db.QueryRow(ctx, `
		SELECT `+attendanceColumns+` FROM attendance_records
		WHERE member_id = $1 AND day = $2
		FOR UPDATE
	`, memberID, day))
}

type CreateAttendanceParams struct {
	ID       string
	MemberID string
	ClubID   string
	PassID   string
	Day      time.Time
	Status   model.AttendanceStatus
}

func (q *Queries) CreateAttendance(ctx context.Context, params CreateAttendanceParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO attendance_records (id, member_id, club_id, pass_id, day, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, params.ID, params.MemberID, params.ClubID, params.PassID, params.Day, params.Status)
	return err
}

func (q *Queries) UpdateAttendanceStatus(ctx context.Context, recordID string, status model.AttendanceStatus) error {
	_, err := q.db.Exec(ctx, `
		UPDATE attendance_records SET status = $2, updated_at = now()
		WHERE id = $1
	`, recordID, status)
	return err
}

func (q *Queries) ListAttendanceByMember(ctx context.Context, memberID string, limit int32) ([]model.AttendanceRecord, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+attendanceColumns+` FROM attendance_records
		WHERE member_id = $1
		ORDER BY day DESC
		LIMIT $2
	`, memberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.AttendanceRecord
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Registration requests

const registrationColumns = `id, club_id, first_name, last_name, date_of_birth, gender, guardian_id, status, created_at, updated_at`

func scanRegistration(row pgx.Row) (model.RegistrationRequest, error) {
	var req model.RegistrationRequest
	err := row.Scan(
		&req.ID,
		&req.ClubID,
		&req.FirstName,
		&req.LastName,
		&req.DateOfBirth,
		&req.Gender,
		&req.GuardianID,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	return req, err
}

type CreateRegistrationRequestParams struct {
	ID          string
	ClubID      string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Gender      string
	GuardianID  *string
}

func (q *Queries) CreateRegistrationRequest(ctx context.Context, params CreateRegistrationRequestParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO registration_requests (id, club_id, first_name, last_name, date_of_birth, gender, guardian_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, params.ID, params.ClubID, params.FirstName, params.LastName, params.DateOfBirth, params.Gender, params.GuardianID)
	return err
}

func (q *Queries) GetRegistrationRequestForUpdate(ctx context.Context, requestID string) (model.RegistrationRequest, error) {
	return scanRegistration(q.db.QueryRow(ctx, `
		SELECT `+registrationColumns+` FROM registration_requests WHERE id = $1 FOR UPDATE
	`, requestID))
}

func (q *Queries) SetRegistrationRequestStatus(ctx context.Context, requestID string, status model.RequestStatus) error {
	_, err := q.db.Exec(ctx, `
		UPDATE registration_requests SET status = $2, updated_at = now()
		WHERE id = $1
	`, requestID, status)
	return err
}

// Pass requests

const passRequestColumns = `id, member_id, club_id, template_name, total_sessions, attendable_sessions,
	start_date, end_date, payment_status, status, created_at, updated_at`

func scanPassRequest(row pgx.Row) (model.PassRequest, error) {
	var req model.PassRequest
	err := row.Scan(
		&req.ID,
		&req.MemberID,
		&req.ClubID,
		&req.TemplateName,
		&req.TotalSessions,
		&req.AttendableSessions,
		&req.StartDate,
		&req.EndDate,
		&req.PaymentStatus,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	return req, err
}

type CreatePassRequestParams struct {
	ID                 string
	MemberID           string
	ClubID             string
	TemplateName       string
	TotalSessions      *int32
	AttendableSessions *int32
	StartDate          *time.Time
	EndDate            *time.Time
	PaymentStatus      model.PaymentStatus
}

func (q *Queries) CreatePassRequest(ctx context.Context, params CreatePassRequestParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO pass_requests (id, member_id, club_id, template_name, total_sessions, attendable_sessions,
			start_date, end_date, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, params.ID, params.MemberID, params.ClubID, params.TemplateName, params.TotalSessions,
		params.AttendableSessions, params.StartDate, params.EndDate, params.PaymentStatus)
	return err
}

func (q *Queries) GetPassRequestForUpdate(ctx context.Context, requestID string) (model.PassRequest, error) {
	return scanPassRequest(q.db.QueryRow(ctx, `
		SELECT `+passRequestColumns+` FROM pass_requests WHERE id = $1 FOR UPDATE
	`, requestID))
}

func (q *Queries) SetPassRequestStatus(ctx context.Context, requestID string, status model.RequestStatus) error {
	_, err := q.db.Exec(ctx, `
		UPDATE pass_requests SET status = $2, updated_at = now()
		WHERE id = $1
	`, requestID, status)
	return err
}
