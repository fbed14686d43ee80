package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/yukikurage/sponsor-deliverables-api/internal/clock"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/repository"
	"github.com/yukikurage/sponsor-deliverables-api/internal/testutil"
)

var testNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

type ServicesTestSuite struct {
	suite.Suite
	db  *gorm.DB
	ctx context.Context
	f   *testutil.Fixtures

	auth         *AuthService
	orgs         *OrganizationService
	events       *EventService
	sponsors     *SponsorService
	deliverables *DeliverableService
}

func (suite *ServicesTestSuite) SetupTest() {
	suite.db = testutil.NewDB(suite.T())
	suite.ctx = context.Background()
	suite.f = testutil.NewFixtures(suite.T(), suite.db)
	suite.build(nil)
}

func (suite *ServicesTestSuite) build(ai *AIService) {
	profileRepo := repository.NewProfileRepository(suite.db)
	orgRepo := repository.NewOrganizationRepository(suite.db)
	clk := clock.NewFixed(testNow)

	suite.auth = NewAuthService(profileRepo, orgRepo)
	suite.orgs = NewOrganizationService(orgRepo, profileRepo)
	suite.events = NewEventService(repository.NewEventRepository(suite.db))
	suite.sponsors = NewSponsorService(repository.NewSponsorRepository(suite.db), suite.events, clk)
	suite.deliverables = NewDeliverableService(repository.NewDeliverableRepository(suite.db), profileRepo, suite.sponsors, ai, clk)
}

func (suite *ServicesTestSuite) TestSignupAndLogin() {
	profile, err := suite.auth.Signup(suite.ctx, SignupInput{
		Email:    "  Founder@Example.com ",
		Password: "supersecret",
		FullName: "Fran Founder",
	})
	suite.Require().NoError(err)
	suite.Equal("founder@example.com", profile.Email)
	suite.Equal(models.RoleAdmin, profile.Role)
	suite.Require().NotNil(profile.OrganizationID)

	var org models.Organization
	suite.Require().NoError(suite.db.First(&org, *profile.OrganizationID).Error)
	suite.Equal("Fran Founder's Organization", org.Name)
	suite.Equal("fran-founder-s-organization", org.Slug)

	_, err = suite.auth.Signup(suite.ctx, SignupInput{Email: "founder@example.com", Password: "supersecret"})
	suite.ErrorIs(err, ErrEmailTaken)

	_, err = suite.auth.Signup(suite.ctx, SignupInput{Email: "short@example.com", Password: "short"})
	suite.ErrorIs(err, ErrPasswordTooShort)

	_, err = suite.auth.Signup(suite.ctx, SignupInput{Email: "not-an-email", Password: "supersecret"})
	suite.ErrorIs(err, ErrInvalidEmail)

	got, err := suite.auth.Login(suite.ctx, LoginInput{Email: "FOUNDER@example.com", Password: "supersecret"})
	suite.Require().NoError(err)
	suite.Equal(profile.ID, got.ID)

	_, err = suite.auth.Login(suite.ctx, LoginInput{Email: "founder@example.com", Password: "wrong-password"})
	suite.ErrorIs(err, ErrInvalidCredentials)

	suite.Require().NoError(suite.db.Model(&models.Profile{}).Where("id = ?", profile.ID).Update("is_active", false).Error)
	_, err = suite.auth.Login(suite.ctx, LoginInput{Email: "founder@example.com", Password: "supersecret"})
	suite.ErrorIs(err, ErrProfileInactive)
}

func (suite *ServicesTestSuite) TestSignup_SlugsAreUnique() {
	a, err := suite.auth.Signup(suite.ctx, SignupInput{Email: "a@example.com", Password: "supersecret", OrganizationName: "Acme Events"})
	suite.Require().NoError(err)
	b, err := suite.auth.Signup(suite.ctx, SignupInput{Email: "b@example.com", Password: "supersecret", OrganizationName: "Acme Events"})
	suite.Require().NoError(err)

	var orgA, orgB models.Organization
	suite.Require().NoError(suite.db.First(&orgA, *a.OrganizationID).Error)
	suite.Require().NoError(suite.db.First(&orgB, *b.OrganizationID).Error)
	suite.Equal("acme-events", orgA.Slug)
	suite.Equal("acme-events-2", orgB.Slug)
}

func (suite *ServicesTestSuite) TestJoinByInvite() {
	owner, err := suite.auth.Signup(suite.ctx, SignupInput{Email: "owner@example.com", Password: "supersecret"})
	suite.Require().NoError(err)
	joiner, err := suite.auth.Signup(suite.ctx, SignupInput{Email: "joiner@example.com", Password: "supersecret"})
	suite.Require().NoError(err)

	org, _, err := suite.orgs.GetOrganizationWithMembers(suite.ctx, *owner.OrganizationID)
	suite.Require().NoError(err)

	joined, err := suite.orgs.JoinOrganizationByInvite(suite.ctx, joiner.ID, org.InviteCode)
	suite.Require().NoError(err)
	suite.Equal(org.ID, joined.ID)

	_, members, err := suite.orgs.GetOrganizationWithMembers(suite.ctx, org.ID)
	suite.Require().NoError(err)
	suite.Len(members, 2)

	_, err = suite.orgs.JoinOrganizationByInvite(suite.ctx, joiner.ID, org.InviteCode)
	suite.ErrorIs(err, ErrAlreadyOrganizationMember)

	_, err = suite.orgs.JoinOrganizationByInvite(suite.ctx, joiner.ID, "nope")
	suite.ErrorIs(err, ErrInvalidInviteCode)

	// The only admin of an organization with members cannot walk away from it.
	_, err = suite.orgs.CreateOrganization(suite.ctx, owner.ID, "Elsewhere")
	suite.ErrorIs(err, ErrLastAdmin)
}

func (suite *ServicesTestSuite) TestMemberManagement() {
	org := suite.f.Organization("alpha")
	admin := suite.f.Profile(org, "admin@example.com", models.RoleAdmin)
	member := suite.f.Profile(org, "member@example.com", models.RoleMember)

	_, err := suite.orgs.UpdateMemberRole(suite.ctx, org.ID, admin.ID, models.RoleMember)
	suite.ErrorIs(err, ErrLastAdmin)

	promoted, err := suite.orgs.UpdateMemberRole(suite.ctx, org.ID, member.ID, models.RoleAdmin)
	suite.Require().NoError(err)
	suite.True(promoted.IsAdmin())

	_, err = suite.orgs.UpdateMemberRole(suite.ctx, org.ID, member.ID, "owner")
	suite.ErrorIs(err, ErrInvalidRole)

	suite.ErrorIs(suite.orgs.RemoveMember(suite.ctx, org.ID, admin.ID, admin.ID), ErrCannotRemoveYourself)
	suite.Require().NoError(suite.orgs.RemoveMember(suite.ctx, org.ID, admin.ID, member.ID))
	suite.ErrorIs(suite.orgs.RemoveMember(suite.ctx, org.ID, admin.ID, member.ID), ErrOrganizationMemberNotFound)

	renamed, err := suite.orgs.UpdateOrganizationName(suite.ctx, org.ID, "  Alpha Events ")
	suite.Require().NoError(err)
	suite.Equal("Alpha Events", renamed.Name)

	before := renamed.InviteCode
	regenerated, err := suite.orgs.RegenerateInviteCode(suite.ctx, org.ID)
	suite.Require().NoError(err)
	suite.NotEqual(before, regenerated.InviteCode)
}

func (suite *ServicesTestSuite) TestCreateSponsor_ProvisionsTemplates() {
	org := suite.f.Organization("alpha")
	eventDate := testutil.Date(2024, 7, 1)
	event := suite.f.Event(org, "Summit", &eventDate)
	undated := suite.f.Event(org, "TBD", nil)

	templates := []models.DeliverableTemplate{
		{PackageTier: models.PackageGold, Title: "Logo on site", DaysBeforeEvent: 30, Priority: models.PriorityHigh},
		{OrganizationID: &org.ID, PackageTier: models.PackageGold, Title: "Booth", DaysBeforeEvent: 7},
		{PackageTier: models.PackageSilver, Title: "Silver mention", DaysBeforeEvent: 14},
	}
	suite.Require().NoError(suite.db.Create(&templates).Error)

	gold := models.PackageGold
	sponsor, provisioned, err := suite.sponsors.CreateSponsor(suite.ctx, CreateSponsorInput{
		OrganizationID: org.ID,
		EventID:        event.ID,
		CompanyName:    " Acme ",
		PackageTier:    &gold,
	})
	suite.Require().NoError(err)
	suite.Equal("Acme", sponsor.CompanyName)
	suite.Require().Len(provisioned, 2)
	suite.Equal("Logo on site", provisioned[0].Title)
	suite.True(testutil.Date(2024, 6, 1).Equal(provisioned[0].DueDate))
	suite.Equal(models.PriorityHigh, provisioned[0].Priority)
	suite.True(testutil.Date(2024, 6, 24).Equal(provisioned[1].DueDate))
	suite.Equal(sponsor.ID, provisioned[1].SponsorID)

	_, provisioned, err = suite.sponsors.CreateSponsor(suite.ctx, CreateSponsorInput{
		OrganizationID: org.ID,
		EventID:        undated.ID,
		CompanyName:    "Globex",
		PackageTier:    &gold,
	})
	suite.Require().NoError(err)
	suite.Require().Len(provisioned, 2)
	suite.True(testutil.Date(2024, 6, 10).Equal(provisioned[0].DueDate))

	bogus := models.PackageTier("diamond")
	_, _, err = suite.sponsors.CreateSponsor(suite.ctx, CreateSponsorInput{OrganizationID: org.ID, EventID: event.ID, CompanyName: "X", PackageTier: &bogus})
	suite.ErrorIs(err, ErrInvalidPackageTier)

	other := suite.f.Organization("beta")
	_, _, err = suite.sponsors.CreateSponsor(suite.ctx, CreateSponsorInput{OrganizationID: other.ID, EventID: event.ID, CompanyName: "X"})
	suite.ErrorIs(err, ErrEventNotFound)
}

func (suite *ServicesTestSuite) TestDeliverableLifecycle() {
	org := suite.f.Organization("alpha")
	other := suite.f.Organization("beta")
	alice := suite.f.Profile(org, "alice@example.com", models.RoleMember)
	outsider := suite.f.Profile(other, "mallory@example.com", models.RoleMember)
	event := suite.f.Event(org, "Summit", nil)
	sponsor := suite.f.Sponsor(event, "Acme")

	due := time.Date(2024, 6, 12, 18, 0, 0, 0, time.UTC)
	d, err := suite.deliverables.CreateDeliverable(suite.ctx, CreateDeliverableInput{
		OrganizationID: org.ID,
		SponsorID:      sponsor.ID,
		Title:          "Logo",
		DueDate:        &due,
		AssigneeID:     &alice.ID,
	})
	suite.Require().NoError(err)
	suite.Equal(models.StatusPending, d.Status)
	suite.Equal(models.PriorityMedium, d.Priority)
	suite.True(testutil.Date(2024, 6, 12).Equal(d.DueDate))
	suite.Require().NotNil(d.Assignee)
	suite.Equal("Summit", d.EventName())

	_, err = suite.deliverables.GetDeliverable(suite.ctx, other.ID, d.ID)
	suite.ErrorIs(err, ErrDeliverableNotFound)

	_, err = suite.deliverables.AssignDeliverable(suite.ctx, org.ID, d.ID, &outsider.ID)
	suite.ErrorIs(err, ErrInvalidAssignee)

	unassigned, err := suite.deliverables.AssignDeliverable(suite.ctx, org.ID, d.ID, nil)
	suite.Require().NoError(err)
	suite.Nil(unassigned.AssigneeID)

	blocked := models.StatusBlocked
	updated, err := suite.deliverables.UpdateDeliverable(suite.ctx, org.ID, d.ID, UpdateDeliverableInput{Status: &blocked})
	suite.Require().NoError(err)
	suite.Equal(models.StatusBlocked, updated.Status)

	completed := models.StatusCompleted
	notes := "Logo live on homepage"
	updated, err = suite.deliverables.UpdateDeliverable(suite.ctx, org.ID, d.ID, UpdateDeliverableInput{Status: &completed, CompletionNotes: &notes})
	suite.Require().NoError(err)
	suite.Equal(models.StatusCompleted, updated.Status)
	suite.Equal(notes, *updated.CompletionNotes)

	pending := models.StatusPending
	_, err = suite.deliverables.UpdateDeliverable(suite.ctx, org.ID, d.ID, UpdateDeliverableInput{Status: &pending})
	suite.ErrorIs(err, ErrInvalidStatusTransition)

	empty := " "
	_, err = suite.deliverables.UpdateDeliverable(suite.ctx, org.ID, d.ID, UpdateDeliverableInput{Title: &empty})
	suite.ErrorIs(err, ErrTitleEmpty)

	suite.Require().NoError(suite.deliverables.DeleteDeliverable(suite.ctx, org.ID, d.ID))
	_, err = suite.deliverables.GetDeliverable(suite.ctx, org.ID, d.ID)
	suite.ErrorIs(err, ErrDeliverableNotFound)
}

func (suite *ServicesTestSuite) TestRiskDashboard() {
	org := suite.f.Organization("alpha")
	sponsor := suite.f.Sponsor(suite.f.Event(org, "Summit", nil), "Acme")
	overdue := suite.f.Deliverable(sponsor, "Late", testutil.Date(2024, 6, 8), models.StatusPending, nil)
	soon := suite.f.Deliverable(sponsor, "Soon", testutil.Date(2024, 6, 11), models.StatusInProgress, nil)
	blocked := suite.f.Deliverable(sponsor, "Stuck", testutil.Date(2024, 8, 1), models.StatusBlocked, nil)
	upcoming := suite.f.Deliverable(sponsor, "Next week", testutil.Date(2024, 6, 16), models.StatusPending, nil)
	suite.f.Deliverable(sponsor, "Done", testutil.Date(2024, 6, 1), models.StatusCompleted, nil)

	otherSponsor := suite.f.Sponsor(suite.f.Event(suite.f.Organization("beta"), "Expo", nil), "Globex")
	suite.f.Deliverable(otherSponsor, "Not ours", testutil.Date(2024, 6, 8), models.StatusPending, nil)

	b, err := suite.deliverables.RiskDashboard(suite.ctx, org.ID)
	suite.Require().NoError(err)
	suite.Require().Len(b.Overdue, 1)
	suite.Equal(overdue.ID, b.Overdue[0].ID)
	suite.Require().Len(b.DueSoon, 1)
	suite.Equal(soon.ID, b.DueSoon[0].ID)
	suite.Require().Len(b.Blocked, 1)
	suite.Equal(blocked.ID, b.Blocked[0].ID)
	suite.Require().Len(b.Upcoming, 1)
	suite.Equal(upcoming.ID, b.Upcoming[0].ID)
}

func (suite *ServicesTestSuite) TestGenerateDeliverables() {
	org := suite.f.Organization("alpha")
	eventDate := testutil.Date(2024, 7, 1)
	sponsor := suite.f.Sponsor(suite.f.Event(org, "Summit", &eventDate), "Acme")

	_, err := suite.deliverables.GenerateDeliverables(suite.ctx, GenerateDeliverablesInput{OrganizationID: org.ID, SponsorID: sponsor.ID, Text: "x"})
	suite.ErrorIs(err, ErrAIServiceNotConfigured)

	content := "```json\n" + `[
		{"title": "Logo on stage screen", "description": "Main stage loop", "due_date": "2024-06-24", "priority": "HIGH"},
		{"title": "Past deadline", "due_date": "2024-01-01", "priority": "urgent"},
		{"title": "   ", "due_date": null}
	]` + "\n```"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.Equal("/v1/chat/completions", r.URL.Path)
		var req openai.ChatCompletionRequest
		if !suite.NoError(json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		suite.Contains(req.Messages[0].Content, "Event date: 2024-07-01")
		suite.Contains(req.Messages[0].Content, "Sponsor: Acme")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Model:  openai.GPT4o,
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			}},
		})
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	suite.build(NewAIServiceWithConfig(cfg))

	drafts, err := suite.deliverables.GenerateDeliverables(suite.ctx, GenerateDeliverablesInput{
		OrganizationID: org.ID,
		SponsorID:      sponsor.ID,
		Text:           "The organizer shall display the sponsor logo on the main stage screen.",
	})
	suite.Require().NoError(err)
	suite.Require().Len(drafts, 2)
	suite.Equal("Logo on stage screen", drafts[0].Title)
	suite.Equal(models.PriorityHigh, drafts[0].Priority)
	suite.Require().NotNil(drafts[0].DueDate)
	suite.True(testutil.Date(2024, 6, 24).Equal(*drafts[0].DueDate))
	suite.Nil(drafts[1].DueDate)
	suite.Equal(models.PriorityMedium, drafts[1].Priority)
}

func TestServicesTestSuite(t *testing.T) {
	suite.Run(t, new(ServicesTestSuite))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "[]", stripCodeFence("```json\n[]\n```"))
	assert.Equal(t, "[]", stripCodeFence("  []  "))
	require.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
}
