package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/sponsor-deliverables-api/internal/dto"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/risk"
)

func TestEventAndSponsorHandlers(t *testing.T) {
	env := setupTestEnv(t, nil)

	org := env.f.Organization("Alpha")
	admin := env.f.Profile(org, "admin@example.com", models.RoleAdmin)
	cookies := env.login(admin)

	require.NoError(t, env.db.Create(&[]models.DeliverableTemplate{
		{PackageTier: models.PackageGold, Title: "Logo on website", DaysBeforeEvent: 30},
		{PackageTier: models.PackageGold, Title: "Booth space", DaysBeforeEvent: 2, Priority: models.PriorityHigh},
	}).Error)

	w := env.do(http.MethodPost, "/api/events", map[string]any{"name": "Summit", "event_date": "2024-06-13"}, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	event := decode[dto.EventDTO](t, w)
	require.NotNil(t, event.EventDate)
	assert.Equal(t, "2024-06-13", *event.EventDate)

	w = env.do(http.MethodPost, "/api/events", map[string]any{"name": "Bad", "event_date": "June 13"}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/events", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]dto.EventDTO](t, w)["events"], 1)

	w = env.do(http.MethodPost, "/api/sponsors", map[string]any{
		"event_id":     event.ID,
		"company_name": "Acme",
		"package_tier": "gold",
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.SponsorCreatedResponse](t, w)
	assert.Equal(t, "Acme", created.Sponsor.CompanyName)
	require.Len(t, created.Deliverables, 2)
	assert.Equal(t, "Logo on website", created.Deliverables[0].Title)
	assert.Equal(t, "2024-05-14", created.Deliverables[0].DueDate)
	assert.Equal(t, risk.TierCritical, created.Deliverables[0].RiskTier)
	assert.Equal(t, "2024-06-11", created.Deliverables[1].DueDate)
	assert.Equal(t, risk.TierHigh, created.Deliverables[1].RiskTier)

	w = env.do(http.MethodPost, "/api/sponsors", map[string]any{
		"event_id":     event.ID,
		"company_name": "Globex",
		"package_tier": "diamond",
	}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/sponsors", map[string]any{
		"event_id":      event.ID,
		"company_name":  "Globex",
		"contact_email": "not-an-email",
	}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/sponsors?event_id="+itoa(event.ID), nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]dto.SponsorDTO](t, w)["sponsors"], 1)

	w = env.do(http.MethodGet, "/api/sponsors/"+itoa(created.Sponsor.ID), nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	sponsor := decode[dto.SponsorDTO](t, w)
	require.NotNil(t, sponsor.Event)
	assert.Equal(t, "Summit", sponsor.Event.Name)

	outsider := env.f.Profile(env.f.Organization("Beta"), "mallory@example.com", models.RoleAdmin)
	w = env.do(http.MethodGet, "/api/sponsors/"+itoa(created.Sponsor.ID), nil, env.login(outsider))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPost, "/api/sponsors", map[string]any{
		"event_id":     event.ID,
		"company_name": "Sneaky",
	}, env.login(outsider))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
