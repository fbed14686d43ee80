package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/sponsor-deliverables-api/internal/clock"
	"github.com/yukikurage/sponsor-deliverables-api/internal/constants"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/repository"
	"github.com/yukikurage/sponsor-deliverables-api/internal/services"
	"github.com/yukikurage/sponsor-deliverables-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testCronSecret = "cron-secret"

var testNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	f      *testutil.Fixtures
	router *gin.Engine

	reminder           *ReminderHandler
	authService        *services.AuthService
	deliverableService *services.DeliverableService
	deliverableRepo    repository.DeliverableRepository
	profileRepo        repository.ProfileRepository
}

// setupTestEnv mounts the full API on an in-memory database. sweeper may be nil
// when a test does not call the reminders endpoint.
func setupTestEnv(t *testing.T, sweeper Sweeper) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	clk := clock.NewFixed(testNow)

	profileRepo := repository.NewProfileRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	deliverableRepo := repository.NewDeliverableRepository(db)

	authService := services.NewAuthService(profileRepo, orgRepo)
	orgService := services.NewOrganizationService(orgRepo, profileRepo)
	eventService := services.NewEventService(repository.NewEventRepository(db))
	sponsorService := services.NewSponsorService(repository.NewSponsorRepository(db), eventService, clk)
	deliverableService := services.NewDeliverableService(deliverableRepo, profileRepo, sponsorService, nil, clk)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.POST("/test/session/:id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		require.NoError(t, err)
		session := sessions.Default(c)
		session.Set(constants.ContextKeyProfileID, id)
		require.NoError(t, session.Save())
		c.Status(http.StatusNoContent)
	})

	reminderHandler := NewReminderHandler(sweeper, clk, zap.NewNop())
	Routes{
		Auth:         NewAuthHandler(authService),
		Organization: NewOrganizationHandler(orgService),
		Event:        NewEventHandler(eventService),
		Sponsor:      NewSponsorHandler(sponsorService, clk),
		Deliverable:  NewDeliverableHandler(deliverableService),
		Reminder:     reminderHandler,
		Profiles:     profileRepo,
		Deliverables: deliverableService,
		CronSecret:   testCronSecret,
	}.Register(r)

	return &testEnv{
		t:                  t,
		db:                 db,
		f:                  testutil.NewFixtures(t, db),
		router:             r,
		reminder:           reminderHandler,
		authService:        authService,
		deliverableService: deliverableService,
		deliverableRepo:    deliverableRepo,
		profileRepo:        profileRepo,
	}
}

// login returns the session cookies of profile.
func (e *testEnv) login(profile *models.Profile) []*http.Cookie {
	e.t.Helper()
	w := e.do(http.MethodPost, "/test/session/"+strconv.FormatUint(profile.ID, 10), nil, nil)
	require.Equal(e.t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(e.t, cookies)
	return cookies
}

func (e *testEnv) do(method, path string, body any, cookies []*http.Cookie, headers ...string) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}
