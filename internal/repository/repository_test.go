package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/testutil"
)

func TestProfileRepository_ListAdmins(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixtures(t, db)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	org := f.Organization("alpha")
	other := f.Organization("beta")
	admin := f.Profile(org, "admin@example.com", models.RoleAdmin)
	f.Profile(org, "member@example.com", models.RoleMember)
	f.Profile(other, "other-admin@example.com", models.RoleAdmin)
	inactive := f.Profile(org, "gone@example.com", models.RoleAdmin)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	admins, err := repo.ListAdmins(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, admin.ID, admins[0].ID)

	count, err := repo.CountAdmins(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestProfileRepository_CreateWithOrganization(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	profile := &models.Profile{Email: "founder@example.com", PasswordHash: "hash"}
	org := &models.Organization{Name: "Founder's", Slug: "founders", InviteCode: "abcd-efgh-ijkl"}
	require.NoError(t, repo.CreateWithOrganization(ctx, profile, org))

	got, err := repo.FindByEmail(ctx, "founder@example.com")
	require.NoError(t, err)
	require.NotNil(t, got.OrganizationID)
	assert.Equal(t, org.ID, *got.OrganizationID)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.True(t, got.IsActive)

	dup := &models.Profile{Email: "founder@example.com", PasswordHash: "hash"}
	err = repo.CreateWithOrganization(ctx, dup, &models.Organization{Name: "Dup", Slug: "dup", InviteCode: "zzzz-zzzz-zzzz"})
	assert.ErrorIs(t, err, ErrCreateProfile)

	var orgs int64
	require.NoError(t, db.Model(&models.Organization{}).Count(&orgs).Error)
	assert.Equal(t, int64(1), orgs, "failed signup must not leave an organization behind")
}

func TestOrganizationRepository(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixtures(t, db)
	repo := NewOrganizationRepository(db)
	ctx := context.Background()

	org := f.Organization("alpha")
	admin := f.Profile(org, "admin@example.com", models.RoleAdmin)
	member := f.Profile(org, "member@example.com", models.RoleMember)
	event := f.Event(org, "Summit", nil)
	sponsor := f.Sponsor(event, "Acme")
	d := f.Deliverable(sponsor, "Logo", testutil.Date(2024, 6, 10), models.StatusPending, member)

	found, err := repo.FindByInviteCode(ctx, org.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, org.ID, found.ID)

	exists, err := repo.SlugExists(ctx, org.Slug)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.SlugExists(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, exists)

	members, err := repo.ListMembers(ctx, org.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	require.NoError(t, repo.Delete(ctx, org.ID))

	_, err = repo.FindByID(ctx, org.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, db.First(&models.Deliverable{}, d.ID).Error, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, db.First(&models.Sponsor{}, sponsor.ID).Error, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, db.First(&models.Event{}, event.ID).Error, gorm.ErrRecordNotFound)

	var detached models.Profile
	require.NoError(t, db.First(&detached, admin.ID).Error)
	assert.Nil(t, detached.OrganizationID)
	assert.Equal(t, models.RoleMember, detached.Role)
}

func TestSponsorRepository_CreateWithDeliverables(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixtures(t, db)
	repo := NewSponsorRepository(db)
	ctx := context.Background()

	org := f.Organization("alpha")
	event := f.Event(org, "Summit", nil)

	sponsor := &models.Sponsor{OrganizationID: org.ID, EventID: event.ID, CompanyName: "Acme"}
	deliverables := []models.Deliverable{
		{Title: "Logo", DueDate: testutil.Date(2024, 6, 1), Priority: models.PriorityHigh},
		{Title: "Booth", DueDate: testutil.Date(2024, 6, 20)},
	}
	require.NoError(t, repo.CreateWithDeliverables(ctx, sponsor, deliverables))
	require.NotZero(t, sponsor.ID)

	var stored []models.Deliverable
	require.NoError(t, db.Where("sponsor_id = ?", sponsor.ID).Order("id").Find(&stored).Error)
	require.Len(t, stored, 2)
	assert.Equal(t, models.StatusPending, stored[1].Status)
	assert.Equal(t, models.PriorityMedium, stored[1].Priority)

	got, err := repo.FindByID(ctx, sponsor.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Event)
	assert.Equal(t, "Summit", got.Event.Name)

	list, err := repo.List(ctx, org.ID, &event.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSponsorRepository_ListTemplates(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixtures(t, db)
	repo := NewSponsorRepository(db)
	ctx := context.Background()

	org := f.Organization("alpha")
	other := f.Organization("beta")

	templates := []models.DeliverableTemplate{
		{PackageTier: models.PackageGold, Title: "Global logo", DaysBeforeEvent: 30},
		{OrganizationID: &org.ID, PackageTier: models.PackageGold, Title: "Our booth", DaysBeforeEvent: 7},
		{OrganizationID: &other.ID, PackageTier: models.PackageGold, Title: "Their booth", DaysBeforeEvent: 7},
		{PackageTier: models.PackageSilver, Title: "Silver only", DaysBeforeEvent: 14},
		{PackageTier: models.PackageGold, Title: "Retired", DaysBeforeEvent: 60},
	}
	require.NoError(t, db.Create(&templates).Error)
	require.NoError(t, db.Model(&templates[4]).Update("is_active", false).Error)

	got, err := repo.ListTemplates(ctx, org.ID, models.PackageGold)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Global logo", got[0].Title)
	assert.Equal(t, "Our booth", got[1].Title)
}

func TestEventRepository_ListByOrganization(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixtures(t, db)
	repo := NewEventRepository(db)
	ctx := context.Background()

	org := f.Organization("alpha")
	late := testutil.Date(2024, 9, 1)
	early := testutil.Date(2024, 6, 1)
	undated := f.Event(org, "TBD", nil)
	second := f.Event(org, "Fall", &late)
	first := f.Event(org, "Spring", &early)
	f.Event(f.Organization("beta"), "Elsewhere", nil)

	events, err := repo.ListByOrganization(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []uint64{first.ID, second.ID, undated.ID}, []uint64{events[0].ID, events[1].ID, events[2].ID})
}
