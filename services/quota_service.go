package services

import (
	"time"

	"github.com/doctorvirtual/api/utils/session"
)

// QuotaDecision is the outcome of a quota check
type QuotaDecision struct {
	Allowed bool
	Count   int
	Limit   int
}

// QuotaTracker maintains the per-calendar-day message counter held in the
// session blob. The clock is injectable so tests can cross day boundaries.
type QuotaTracker struct {
	now func() time.Time
}

// NewQuotaTracker creates a tracker on the host clock.
func NewQuotaTracker() *QuotaTracker {
	return &QuotaTracker{now: time.Now}
}

// NewQuotaTrackerWithClock creates a tracker with a custom clock.
func NewQuotaTrackerWithClock(now func() time.Time) *QuotaTracker {
	return &QuotaTracker{now: now}
}

// CheckAndIncrement counts this request against today's quota. The counter
// is bumped unconditionally: a denied request, or one aborted later for an
// unrelated reason, has still consumed a unit. A new calendar day starts
// from an implicit zero; old day entries are kept as-is.
func (t *QuotaTracker) CheckAndIncrement(sess *session.Session, tier TierQuota) QuotaDecision {
	day := t.now().Format(session.DayKey)

	if sess.DailyCounters == nil {
		sess.DailyCounters = make(map[string]int)
	}

	count := sess.DailyCounters[day] + 1
	sess.DailyCounters[day] = count

	return QuotaDecision{
		Allowed: count <= tier.DailyLimit,
		Count:   count,
		Limit:   tier.DailyLimit,
	}
}
