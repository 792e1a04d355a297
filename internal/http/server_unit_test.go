package http

import (
	"net/http/httptest"
	"strings"
	"testing"

	"sportsfed/federation/internal/auth"
	"sportsfed/federation/internal/authz"
	"sportsfed/federation/internal/model"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc.def.ghi", "abc.def.ghi"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
		{"Bearer ", ""},
	}
	for _, tc := range cases {
		if got := bearerToken(tc.header); got != tc.want {
			t.Fatalf("bearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestNormalizeAttendanceStatus(t *testing.T) {
	for raw, want := range map[string]model.AttendanceStatus{
		"present":  model.AttendancePresent,
		"PRESENT":  model.AttendancePresent,
		" absent ": model.AttendanceAbsent,
		"Excused":  model.AttendanceExcused,
	} {
		got, err := normalizeAttendanceStatus(raw)
		if err != nil {
			t.Fatalf("normalizeAttendanceStatus(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("normalizeAttendanceStatus(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := normalizeAttendanceStatus("late"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestParseDay(t *testing.T) {
	day, err := parseDay("2026-03-15")
	if err != nil {
		t.Fatalf("parseDay: %v", err)
	}
	if day.Year() != 2026 || day.Month() != 3 || day.Day() != 15 {
		t.Fatalf("unexpected day: %v", day)
	}
	if _, err := parseDay("15/03/2026"); err == nil {
		t.Fatal("expected error for slash format")
	}

	ptr, err := parseDayPtr("  ")
	if err != nil || ptr != nil {
		t.Fatalf("parseDayPtr blank = (%v, %v), want (nil, nil)", ptr, err)
	}
}

func TestParseLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/members/m1/attendance?limit=7", nil)
	if got := parseLimit(r, 50); got != 7 {
		t.Fatalf("parseLimit = %d, want 7", got)
	}
	r = httptest.NewRequest("GET", "/members/m1/attendance?limit=-2", nil)
	if got := parseLimit(r, 50); got != 50 {
		t.Fatalf("parseLimit negative = %d, want fallback 50", got)
	}
	r = httptest.NewRequest("GET", "/members/m1/attendance", nil)
	if got := parseLimit(r, 50); got != 50 {
		t.Fatalf("parseLimit missing = %d, want fallback 50", got)
	}
}

func TestClubScoped(t *testing.T) {
	admin := &auth.Claims{UserID: "u1", Role: authz.RoleFederationAdmin}
	if !clubScoped(admin, "club-a") {
		t.Fatal("federation admin should see every club")
	}
	owner := &auth.Claims{UserID: "u2", Role: authz.RoleClubOwner, ClubID: "club-a"}
	if !clubScoped(owner, "club-a") {
		t.Fatal("owner should see own club")
	}
	if clubScoped(owner, "club-b") {
		t.Fatal("owner should not see another club")
	}
	noClub := &auth.Claims{UserID: "u3", Role: authz.RoleHeadCoach}
	if clubScoped(noClub, "club-a") {
		t.Fatal("club-less coach should be scoped out")
	}
}

func TestWriteAuthzError(t *testing.T) {
	engine := authz.NewEngine()
	err := engine.RequirePermission(authz.AccessContext{Role: authz.RoleVendor}, authz.PermFinanceDelete, authz.ResourceFinance)
	if err == nil {
		t.Fatal("expected denial")
	}
	rec := httptest.NewRecorder()
	writeAuthzError(rec, err)
	if rec.Code != 403 {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "INSUFFICIENT_PERMISSIONS") {
		t.Fatalf("body %q missing denial code", body)
	}
}
