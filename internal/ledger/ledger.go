package ledger

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sportsfed/federation/internal/db"
	"sportsfed/federation/internal/model"
)

// Ledger reconciles attendance status changes with pass session counters. It
// does not check permissions; callers are expected to have authorized the
// actor before invoking it.
type Ledger struct {
	store  *db.Store
	badges *BadgeCache
}

func New(store *db.Store, badges *BadgeCache) *Ledger {
	return &Ledger{store: store, badges: badges}
}

// Day normalizes a timestamp to its UTC calendar day, the attendance record
// key granularity.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SetAttendanceStatus records the member's status for one day and atomically
// adjusts the active pass's session counters. All reads happen inside the
// transaction, with the pass row locked, so concurrent edits for the same
// member and day serialize instead of interleaving. Setting the status the day
// already has is a no-op.
func (l *Ledger) SetAttendanceStatus(ctx context.Context, memberID string, day time.Time, status model.AttendanceStatus) (model.AttendanceRecord, model.MemberPass, error) {
	day = Day(day)

	var record model.AttendanceRecord
	var pass model.MemberPass

	err := l.store.WithTx(ctx, func(q *db.Queries) error {
		member, err := q.GetMember(ctx, memberID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMemberNotFound
		}
		if err != nil {
			return err
		}
		if member.ActivePassID == nil {
			return ErrNoActivePass
		}

		pass, err = q.GetMemberPassForUpdate(ctx, *member.ActivePassID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPassNotFound
		}
		if err != nil {
			return err
		}
		if !pass.SessionBased() {
			return ErrUnsupportedPassType
		}

		var oldStatus model.AttendanceStatus
		existing, err := q.GetAttendanceForUpdate(ctx, memberID, day)
		found := err == nil
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if found {
			oldStatus = existing.Status
			if oldStatus == status {
				record = existing
				return nil
			}
		}

		state := transition(countersOf(pass), oldStatus, status)
		passStatus := model.PassStatusActive
		if state.shouldExpire() {
			passStatus = model.PassStatusExpired
		}
		state = state.clamped()

		if err := q.UpdatePassAccounting(ctx, db.UpdatePassAccountingParams{
			ID:                pass.ID,
			AttendanceCount:   state.attended,
			RemainingSessions: state.remaining,
			Status:            passStatus,
		}); err != nil {
			return err
		}
		attended := state.attended
		remaining := state.remaining
		pass.AttendanceCount = &attended
		pass.RemainingSessions = &remaining
		pass.Status = passStatus

		if found {
			if err := q.UpdateAttendanceStatus(ctx, existing.ID, status); err != nil {
				return err
			}
			existing.Status = status
			record = existing
			return nil
		}
		record = model.AttendanceRecord{
			ID:       uuid.NewString(),
			MemberID: memberID,
			ClubID:   member.ClubID,
			PassID:   pass.ID,
			Day:      day,
			Status:   status,
		}
		return q.CreateAttendance(ctx, db.CreateAttendanceParams{
			ID:       record.ID,
			MemberID: record.MemberID,
			ClubID:   record.ClubID,
			PassID:   record.PassID,
			Day:      record.Day,
			Status:   record.Status,
		})
	})
	if err != nil {
		return model.AttendanceRecord{}, model.MemberPass{}, err
	}

	if l.badges != nil {
		if err := l.badges.Invalidate(ctx, memberID); err != nil {
			log.Printf("badge cache invalidation failed for member %s: %v", memberID, err)
		}
	}
	return record, pass, nil
}

// SweepExpiredDurationPasses transitions active date-bounded passes past their
// end date. Best effort and idempotent; no accounting is at stake.
func (l *Ledger) SweepExpiredDurationPasses(ctx context.Context) (int64, error) {
	return l.store.Queries.ExpireDurationPasses(ctx, time.Now().UTC())
}
