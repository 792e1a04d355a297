package ledger

import "sportsfed/federation/internal/model"

// counters is the session accounting state of a pass. The rules are
// deliberately asymmetric: attended tracks "present" only, while remaining is
// consumed by "present" and "absent" alike (an absence still uses up a session
// slot). "excused" touches nothing. Reverting an old status mirrors whatever
// that status originally did, so excused reverts are no-ops too.
type counters struct {
	attendable int32
	attended   int32
	remaining  int32
}

func countersOf(pass model.MemberPass) counters {
	return counters{
		attendable: *pass.AttendableSessions,
		attended:   *pass.AttendanceCount,
		remaining:  *pass.RemainingSessions,
	}
}

// transition reverts the effect of old (empty string for a fresh day) and
// applies the effect of next.
func transition(c counters, old, next model.AttendanceStatus) counters {
	switch old {
	case model.AttendancePresent:
		c.attended--
		c.remaining++
	case model.AttendanceAbsent:
		c.remaining++
	}
	switch next {
	case model.AttendancePresent:
		c.attended++
		c.remaining--
	case model.AttendanceAbsent:
		c.remaining--
	}
	return c
}

func (c counters) shouldExpire() bool {
	return c.remaining <= 0 || c.attended >= c.attendable
}

// clamped floors remaining at zero for persistence.
func (c counters) clamped() counters {
	if c.remaining < 0 {
		c.remaining = 0
	}
	return c
}
