// Package risk classifies how likely a deliverable is to be missed.
//
// All day arithmetic is done on calendar dates: the due date's date against the
// date of "now" as read in now's location. Callers choose the reference timezone by
// converting now (now.In(loc)) before calling in. The reminder cadence uses the same
// DaysUntilDue so that what the dashboard shows and what triggers a notification
// never disagree.
package risk

import (
	"time"

	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
)

// Tier is a derived urgency level. It is never persisted.
type Tier string

const (
	TierNone     Tier = "none"
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
	TierCritical Tier = "critical"
)

var tierRank = map[Tier]int{
	TierNone:     0,
	TierLow:      1,
	TierMedium:   2,
	TierHigh:     3,
	TierCritical: 4,
}

// Rank orders tiers from none (0) to critical (4).
func (t Tier) Rank() int {
	return tierRank[t]
}

const secondsPerDay = 24 * 60 * 60

// DaysUntilDue returns the number of calendar days from now's date to the due date.
// Negative values mean overdue; 0 means due today.
func DaysUntilDue(dueDate, now time.Time) int {
	due := models.DateOnly(dueDate)
	today := models.DateOnly(now)
	return int((due.Unix() - today.Unix()) / secondsPerDay)
}

// Classify returns the risk tier of a deliverable. First matching rule wins.
func Classify(dueDate time.Time, status models.DeliverableStatus, now time.Time) Tier {
	if status.Terminal() {
		return TierNone
	}

	days := DaysUntilDue(dueDate, now)
	switch {
	case days < 0:
		return TierCritical
	case status == models.StatusBlocked:
		return TierHigh
	case days <= 1:
		return TierHigh
	case days <= 3:
		return TierMedium
	case days <= 7:
		return TierLow
	default:
		return TierNone
	}
}

// ClassifyDeliverable is Classify applied to a loaded deliverable.
func ClassifyDeliverable(d models.Deliverable, now time.Time) Tier {
	return Classify(d.DueDate, d.Status, now)
}
