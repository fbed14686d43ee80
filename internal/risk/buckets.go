package risk

import (
	"time"

	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
)

// Buckets is the risk dashboard grouping. A blocked deliverable that is also overdue
// appears in both Overdue and Blocked.
type Buckets struct {
	Overdue  []models.Deliverable `json:"overdue"`
	DueSoon  []models.Deliverable `json:"due_soon"`
	Blocked  []models.Deliverable `json:"blocked"`
	Upcoming []models.Deliverable `json:"upcoming"`
}

const (
	dueSoonDays  = 3
	upcomingDays = 7
)

// Categorize groups open deliverables for the risk dashboard. Terminal deliverables
// are ignored. Input order is preserved within each bucket.
func Categorize(deliverables []models.Deliverable, now time.Time) Buckets {
	b := Buckets{
		Overdue:  []models.Deliverable{},
		DueSoon:  []models.Deliverable{},
		Blocked:  []models.Deliverable{},
		Upcoming: []models.Deliverable{},
	}

	for _, d := range deliverables {
		if d.Status.Terminal() {
			continue
		}

		days := DaysUntilDue(d.DueDate, now)
		blocked := d.Status == models.StatusBlocked

		if days < 0 {
			b.Overdue = append(b.Overdue, d)
		}
		if blocked {
			b.Blocked = append(b.Blocked, d)
			continue
		}
		switch {
		case days >= 0 && days <= dueSoonDays:
			b.DueSoon = append(b.DueSoon, d)
		case days > dueSoonDays && days <= upcomingDays:
			b.Upcoming = append(b.Upcoming, d)
		}
	}

	return b
}
