// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
)

// NewDB opens a migrated in-memory SQLite database that is closed when t ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	err = db.AutoMigrate(
		&models.Organization{},
		&models.Profile{},
		&models.Event{},
		&models.Sponsor{},
		&models.DeliverableTemplate{},
		&models.Deliverable{},
	)
	require.NoError(t, err)

	return db
}

// Fixtures creates rows with sensible defaults.
type Fixtures struct {
	t  *testing.T
	db *gorm.DB
	n  int
}

// NewFixtures creates a new Fixtures
func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) seq() int {
	f.n++
	return f.n
}

// Organization creates an organization.
func (f *Fixtures) Organization(name string) *models.Organization {
	f.t.Helper()
	n := f.seq()
	org := &models.Organization{
		Name:       name,
		Slug:       fmt.Sprintf("org-%d", n),
		InviteCode: fmt.Sprintf("INV-%04d", n),
	}
	require.NoError(f.t, f.db.Create(org).Error)
	return org
}

// Profile creates an active profile in org with the given role.
func (f *Fixtures) Profile(org *models.Organization, email string, role models.ProfileRole) *models.Profile {
	f.t.Helper()
	p := &models.Profile{
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	if org != nil {
		p.OrganizationID = &org.ID
	}
	require.NoError(f.t, f.db.Create(p).Error)
	return p
}

// Event creates an event of org on date (nil for undated).
func (f *Fixtures) Event(org *models.Organization, name string, date *time.Time) *models.Event {
	f.t.Helper()
	e := &models.Event{OrganizationID: org.ID, Name: name, EventDate: date}
	require.NoError(f.t, f.db.Create(e).Error)
	return e
}

// Sponsor creates a sponsor for event.
func (f *Fixtures) Sponsor(event *models.Event, company string) *models.Sponsor {
	f.t.Helper()
	s := &models.Sponsor{OrganizationID: event.OrganizationID, EventID: event.ID, CompanyName: company}
	require.NoError(f.t, f.db.Create(s).Error)
	return s
}

// Deliverable creates a deliverable of sponsor.
func (f *Fixtures) Deliverable(sponsor *models.Sponsor, title string, due time.Time, status models.DeliverableStatus, assignee *models.Profile) *models.Deliverable {
	f.t.Helper()
	d := &models.Deliverable{SponsorID: sponsor.ID, Title: title, DueDate: due, Status: status}
	if assignee != nil {
		d.AssigneeID = &assignee.ID
	}
	require.NoError(f.t, f.db.Create(d).Error)
	return d
}

// Date returns midnight UTC of the given calendar date.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
