package ledger

import (
	"testing"
	"time"

	"sportsfed/federation/internal/model"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %s: %v", value, err)
	}
	return parsed
}

func sessionPass(attendable, attended, remaining int32) *model.MemberPass {
	return &model.MemberPass{
		Status:             model.PassStatusActive,
		AttendableSessions: &attendable,
		AttendanceCount:    &attended,
		RemainingSessions:  &remaining,
	}
}

func TestBadgePendingMemberOverridesPass(t *testing.T) {
	member := model.Member{Status: model.MemberStatusPending}
	got := PassStatusBadge(member, sessionPass(10, 3, 7), time.Now())
	if got != "approval pending" {
		t.Fatalf("expected approval pending, got %q", got)
	}
}

func TestBadgeNoPass(t *testing.T) {
	member := model.Member{Status: model.MemberStatusActive}
	if got := PassStatusBadge(member, nil, time.Now()); got != "no pass" {
		t.Fatalf("expected no pass, got %q", got)
	}
}

func TestBadgeSessionPass(t *testing.T) {
	member := model.Member{Status: model.MemberStatusActive}
	got := PassStatusBadge(member, sessionPass(10, 3, 7), time.Now())
	if got != "3/10 used, 7 left" {
		t.Fatalf("unexpected badge %q", got)
	}
}

func TestBadgeDurationPass(t *testing.T) {
	member := model.Member{Status: model.MemberStatusActive}
	now := mustParse(t, "2025-01-10T12:00:00Z")

	end := mustParse(t, "2025-01-15T12:00:00Z")
	pass := &model.MemberPass{Status: model.PassStatusActive, EndDate: &end}
	if got := PassStatusBadge(member, pass, now); got != "5 days remaining" {
		t.Fatalf("expected 5 days remaining, got %q", got)
	}

	// Partial days round up.
	end = mustParse(t, "2025-01-11T18:00:00Z")
	if got := PassStatusBadge(member, pass, now); got != "2 days remaining" {
		t.Fatalf("expected 2 days remaining, got %q", got)
	}

	end = mustParse(t, "2025-01-09T12:00:00Z")
	if got := PassStatusBadge(member, pass, now); got != "expired" {
		t.Fatalf("expected expired for past end date, got %q", got)
	}
}

func TestBadgeUnlimitedPass(t *testing.T) {
	member := model.Member{Status: model.MemberStatusActive}
	pass := &model.MemberPass{Status: model.PassStatusActive}
	if got := PassStatusBadge(member, pass, time.Now()); got != "unlimited pass" {
		t.Fatalf("expected unlimited pass, got %q", got)
	}
}

func TestBadgeTerminalStatuses(t *testing.T) {
	member := model.Member{Status: model.MemberStatusActive}
	cases := map[model.PassStatus]string{
		model.PassStatusExpired:   "expired",
		model.PassStatusSuspended: "suspended",
		model.PassStatusCancelled: "cancelled",
	}
	for status, want := range cases {
		pass := &model.MemberPass{Status: status}
		if got := PassStatusBadge(member, pass, time.Now()); got != want {
			t.Fatalf("status %s: expected %q, got %q", status, want, got)
		}
	}
}
