package reminder

import (
	"time"

	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/risk"
)

// Kind selects the copy of an assignee reminder.
type Kind string

const (
	KindOverdueDaily Kind = "overdue-daily"
	KindDueToday     Kind = "due-today"
	KindDueTomorrow  Kind = "due-tomorrow"
	KindDueIn3Days   Kind = "due-in-3-days"
	KindDueIn7Days   Kind = "due-in-7-days"
)

// Decision is a reminder that must be sent now.
type Decision struct {
	Kind           Kind
	DeliverableID  uint64
	Title          string
	RecipientEmail string
	RecipientName  string
	// SponsorName and EventName are empty when the association is missing.
	SponsorName string
	EventName   string
	DueDate     time.Time
	// DaysUntilDue is clamped at zero; DaysOffset keeps the signed distance.
	DaysUntilDue int
	DaysOffset   int
}

// rule is one row of the cadence table. A zero interval means "once per calendar day".
type rule struct {
	kind     Kind
	interval time.Duration
}

var (
	overdueRule = rule{kind: KindOverdueDaily, interval: 24 * time.Hour}
	cadence     = map[int]rule{
		0: {kind: KindDueToday},
		1: {kind: KindDueTomorrow, interval: 24 * time.Hour},
		3: {kind: KindDueIn3Days, interval: 72 * time.Hour},
		7: {kind: KindDueIn7Days, interval: 168 * time.Hour},
	}
)

// Eligible reports whether a deliverable can receive assignee reminders at all.
// Blocked deliverables are left to the admin digest.
func Eligible(d models.Deliverable) bool {
	if d.Status != models.StatusPending && d.Status != models.StatusInProgress {
		return false
	}
	return d.Assignee != nil && d.Assignee.Email != ""
}

// Decide returns the reminder to send for d at now, if any. now must already be in
// the reference timezone; the same location is used for the due-today comparison.
func Decide(d models.Deliverable, now time.Time) (Decision, bool) {
	if !Eligible(d) {
		return Decision{}, false
	}

	days := risk.DaysUntilDue(d.DueDate, now)

	r, ok := cadence[days]
	if days < 0 {
		r, ok = overdueRule, true
	}
	if !ok || !r.fires(d.LastNotifiedAt, now) {
		return Decision{}, false
	}

	return Decision{
		Kind:           r.kind,
		DeliverableID:  d.ID,
		Title:          d.Title,
		RecipientEmail: d.Assignee.Email,
		RecipientName:  d.Assignee.DisplayName(),
		SponsorName:    d.SponsorName(),
		EventName:      d.EventName(),
		DueDate:        models.DateOnly(d.DueDate),
		DaysUntilDue:   max(days, 0),
		DaysOffset:     days,
	}, true
}

func (r rule) fires(lastNotified *time.Time, now time.Time) bool {
	if lastNotified == nil {
		return true
	}
	if r.interval == 0 {
		return !sameDate(lastNotified.In(now.Location()), now)
	}
	return now.Sub(*lastNotified) >= r.interval
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
