package ledger

import (
	"testing"

	"sportsfed/federation/internal/model"
)

func TestTransitionFreshPresent(t *testing.T) {
	c := transition(counters{attendable: 10, attended: 3, remaining: 7}, "", model.AttendancePresent)
	if c.attended != 4 || c.remaining != 6 {
		t.Fatalf("expected 4 attended / 6 remaining, got %d/%d", c.attended, c.remaining)
	}
	if c.shouldExpire() {
		t.Fatalf("pass with sessions left must not expire")
	}
}

func TestTransitionAbsentConsumesWithoutCounting(t *testing.T) {
	c := transition(counters{attendable: 10, attended: 0, remaining: 10}, "", model.AttendanceAbsent)
	if c.attended != 0 {
		t.Fatalf("absence must not increment attendance, got %d", c.attended)
	}
	if c.remaining != 9 {
		t.Fatalf("absence must consume a session slot, got %d remaining", c.remaining)
	}
}

func TestTransitionExcusedIsNeutral(t *testing.T) {
	start := counters{attendable: 10, attended: 2, remaining: 8}
	c := transition(start, "", model.AttendanceExcused)
	if c != start {
		t.Fatalf("excused must not touch counters: %+v", c)
	}
	// Changing away from excused reverts nothing either.
	c = transition(start, model.AttendanceExcused, model.AttendancePresent)
	if c.attended != 3 || c.remaining != 7 {
		t.Fatalf("excused to present should apply only the present effect, got %d/%d", c.attended, c.remaining)
	}
}

// Toggling present -> absent -> present for the same day must net out to a
// single present effect.
func TestTransitionConservationUnderToggling(t *testing.T) {
	c := counters{attendable: 10, attended: 0, remaining: 10}
	c = transition(c, "", model.AttendancePresent)
	c = transition(c, model.AttendancePresent, model.AttendanceAbsent)
	c = transition(c, model.AttendanceAbsent, model.AttendancePresent)
	if c.attended != 1 || c.remaining != 9 {
		t.Fatalf("expected 1 attended / 9 remaining, got %d/%d", c.attended, c.remaining)
	}
}

func TestExpiryOnLastSession(t *testing.T) {
	c := transition(counters{attendable: 10, attended: 9, remaining: 1}, "", model.AttendancePresent)
	if !c.shouldExpire() {
		t.Fatalf("exhausted pass must expire")
	}
	c = c.clamped()
	if c.attended != 10 || c.remaining != 0 {
		t.Fatalf("expected 10 attended / 0 remaining, got %d/%d", c.attended, c.remaining)
	}
}

func TestExpiryByAttendanceCount(t *testing.T) {
	// remaining can sit above zero while attended reaches the attendable cap.
	c := counters{attendable: 5, attended: 5, remaining: 2}
	if !c.shouldExpire() {
		t.Fatalf("pass must expire once attendance reaches the attendable cap")
	}
}

func TestClampFloorsRemainingAtZero(t *testing.T) {
	c := transition(counters{attendable: 10, attended: 9, remaining: 0}, "", model.AttendanceAbsent)
	if c.remaining != -1 {
		t.Fatalf("pre-clamp remaining should go negative, got %d", c.remaining)
	}
	c = c.clamped()
	if c.remaining != 0 {
		t.Fatalf("clamp must floor remaining at zero, got %d", c.remaining)
	}
}

func TestCountersOf(t *testing.T) {
	attendable, attended, remaining := int32(12), int32(4), int32(8)
	pass := model.MemberPass{
		AttendableSessions: &attendable,
		AttendanceCount:    &attended,
		RemainingSessions:  &remaining,
	}
	c := countersOf(pass)
	if c.attendable != 12 || c.attended != 4 || c.remaining != 8 {
		t.Fatalf("unexpected counters %+v", c)
	}
}

func TestDayNormalization(t *testing.T) {
	day := Day(mustParse(t, "2025-01-10T18:45:12Z"))
	want := mustParse(t, "2025-01-10T00:00:00Z")
	if !day.Equal(want) {
		t.Fatalf("expected %s, got %s", want, day)
	}
}
