package ledger

import (
	"fmt"
	"time"

	"sportsfed/federation/internal/model"
)

// PassStatusBadge derives the display label for a member's pass situation.
// A pending member overrides everything else.
func PassStatusBadge(member model.Member, pass *model.MemberPass, now time.Time) string {
	if member.Status == model.MemberStatusPending {
		return "approval pending"
	}
	if pass == nil {
		return "no pass"
	}
	switch pass.Status {
	case model.PassStatusActive:
		if pass.SessionBased() {
			return fmt.Sprintf("%d/%d used, %d left",
				*pass.AttendanceCount, *pass.AttendableSessions, *pass.RemainingSessions)
		}
		if pass.EndDate != nil {
			days := daysRemaining(*pass.EndDate, now)
			if days <= 0 {
				return "expired"
			}
			return fmt.Sprintf("%d days remaining", days)
		}
		return "unlimited pass"
	case model.PassStatusExpired:
		return "expired"
	case model.PassStatusSuspended:
		return "suspended"
	case model.PassStatusCancelled:
		return "cancelled"
	default:
		return string(pass.Status)
	}
}

func daysRemaining(end, now time.Time) int {
	remaining := end.Sub(now)
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) > 0 {
		days++
	}
	return days
}
