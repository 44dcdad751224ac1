package services

import (
	"testing"
	"time"

	"github.com/doctorvirtual/api/utils/session"
	"github.com/stretchr/testify/assert"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCheckAndIncrementAllowsUpToLimit(t *testing.T) {
	tracker := NewQuotaTrackerWithClock(fixedClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)))
	sess := &session.Session{SID: "s1"}
	tier := TierQuota{Tier: TierVisitor, DailyLimit: VisitorDailyLimit}

	for i := 1; i <= VisitorDailyLimit; i++ {
		decision := tracker.CheckAndIncrement(sess, tier)
		assert.True(t, decision.Allowed, "message %d should be allowed", i)
		assert.Equal(t, i, decision.Count)
	}

	decision := tracker.CheckAndIncrement(sess, tier)
	assert.False(t, decision.Allowed)
	assert.Equal(t, VisitorDailyLimit+1, decision.Count)
}

func TestCheckAndIncrementCountsDeniedRequests(t *testing.T) {
	tracker := NewQuotaTrackerWithClock(fixedClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)))
	sess := &session.Session{SID: "s1"}
	tier := TierQuota{Tier: TierVisitor, DailyLimit: 1}

	tracker.CheckAndIncrement(sess, tier)
	tracker.CheckAndIncrement(sess, tier)
	decision := tracker.CheckAndIncrement(sess, tier)

	// Denied requests still consume a unit
	assert.False(t, decision.Allowed)
	assert.Equal(t, 3, decision.Count)
	assert.Equal(t, 3, sess.DailyCounters["2026-03-14"])
}

func TestCheckAndIncrementResetsAcrossDays(t *testing.T) {
	now := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	tracker := NewQuotaTrackerWithClock(func() time.Time { return now })
	sess := &session.Session{SID: "s1"}
	tier := TierQuota{Tier: TierVisitor, DailyLimit: 2}

	tracker.CheckAndIncrement(sess, tier)
	tracker.CheckAndIncrement(sess, tier)
	assert.False(t, tracker.CheckAndIncrement(sess, tier).Allowed)

	// Next calendar day starts from zero; yesterday's entry is untouched
	now = now.Add(2 * time.Minute)
	decision := tracker.CheckAndIncrement(sess, tier)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.Count)
	assert.Equal(t, 3, sess.DailyCounters["2026-03-14"])
	assert.Equal(t, 1, sess.DailyCounters["2026-03-15"])
}

func TestCheckAndIncrementInitializesCounters(t *testing.T) {
	tracker := NewQuotaTrackerWithClock(fixedClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)))
	sess := &session.Session{SID: "s1", DailyCounters: nil}

	decision := tracker.CheckAndIncrement(sess, TierQuota{Tier: TierFree, DailyLimit: FreeDailyLimit})
	assert.True(t, decision.Allowed)
	assert.NotNil(t, sess.DailyCounters)
}
