package services

import (
	"github.com/doctorvirtual/api/model"
)

// AccessTier is the caller's access class
type AccessTier string

const (
	TierVisitor    AccessTier = "visitor"
	TierFree       AccessTier = "free"
	TierSubscriber AccessTier = "subscriber"
)

// Daily message allowances per tier. Signing up alone buys nothing over
// visiting; the subscription is what raises the ceiling.
const (
	VisitorDailyLimit    = 3
	FreeDailyLimit       = 3
	SubscriberDailyLimit = 90
)

// TierQuota pairs an access tier with its daily message allowance
type TierQuota struct {
	Tier       AccessTier
	DailyLimit int
}

// ResolveTier classifies the caller. A nil user is a visitor; there are no
// failure modes.
func ResolveTier(user *model.User) TierQuota {
	if user == nil {
		return TierQuota{Tier: TierVisitor, DailyLimit: VisitorDailyLimit}
	}
	if user.IsSubscriber() {
		return TierQuota{Tier: TierSubscriber, DailyLimit: SubscriberDailyLimit}
	}
	return TierQuota{Tier: TierFree, DailyLimit: FreeDailyLimit}
}
