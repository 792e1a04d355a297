package model

import (
	"time"

	"sportsfed/federation/internal/authz"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         authz.Role
	ClubID       *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Club struct {
	ID        string
	Name      string
	Region    string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type MemberStatus string

const (
	MemberStatusPending  MemberStatus = "pending"
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
)

// Member is a person record. Members are never deleted; lifecycle is expressed
// through Status alone.
type Member struct {
	ID           string
	UserID       *string
	ClubID       string
	FirstName    string
	LastName     string
	DateOfBirth  time.Time
	Gender       string
	Status       MemberStatus
	GuardianID   *string
	ActivePassID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type PassStatus string

const (
	PassStatusActive    PassStatus = "active"
	PassStatusExpired   PassStatus = "expired"
	PassStatusSuspended PassStatus = "suspended"
	PassStatusCancelled PassStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusWaived  PaymentStatus = "waived"
)

// MemberPass is a membership entitlement. Session counters and the date range
// are both optional: a pass with counters is session-metered, a pass with only
// an end date is duration-based, a pass with neither is unlimited.
type MemberPass struct {
	ID                 string
	MemberID           string
	ClubID             string
	TemplateName       string
	Status             PassStatus
	PaymentStatus      PaymentStatus
	TotalSessions      *int32
	AttendableSessions *int32
	AttendanceCount    *int32
	RemainingSessions  *int32
	StartDate          *time.Time
	EndDate            *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SessionBased reports whether attendance accounting applies to the pass.
func (p *MemberPass) SessionBased() bool {
	return p.AttendableSessions != nil && p.AttendanceCount != nil && p.RemainingSessions != nil
}

// DurationBased reports whether the pass expires by date rather than by
// session consumption.
func (p *MemberPass) DurationBased() bool {
	return !p.SessionBased() && p.EndDate != nil
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceExcused AttendanceStatus = "excused"
)

// AttendanceRecord is one row per member per calendar day, mutated in place
// when the day's status changes. Records are never deleted.
type AttendanceRecord struct {
	ID        string
	MemberID  string
	ClubID    string
	PassID    string
	Day       time.Time
	Status    AttendanceStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

type RegistrationRequest struct {
	ID          string
	ClubID      string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Gender      string
	GuardianID  *string
	Status      RequestStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PassRequest struct {
	ID                 string
	MemberID           string
	ClubID             string
	TemplateName       string
	TotalSessions      *int32
	AttendableSessions *int32
	StartDate          *time.Time
	EndDate            *time.Time
	PaymentStatus      PaymentStatus
	Status             RequestStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
