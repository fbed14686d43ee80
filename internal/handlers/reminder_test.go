package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/sponsor-deliverables-api/internal/mailer"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/reminder"
	"github.com/yukikurage/sponsor-deliverables-api/internal/testutil"
	"go.uber.org/zap"
)

type stubSweeper struct {
	result reminder.Result
	err    error
	calls  []time.Time
}

func (s *stubSweeper) Run(ctx context.Context, now time.Time) (reminder.Result, error) {
	s.calls = append(s.calls, now)
	return s.result, s.err
}

type captureTransport struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (c *captureTransport) Send(ctx context.Context, msg mailer.Message) mailer.SendResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return mailer.SendResult{Success: true, MessageID: "test"}
}

type sendRemindersBody struct {
	Success   bool     `json:"success"`
	Sent      int      `json:"sent"`
	Reminders []string `json:"reminders"`
	Errors    []string `json:"errors"`
}

type sweepFailedBody struct {
	Success   bool     `json:"success"`
	Error     string   `json:"error"`
	Sent      *int     `json:"sent"`
	Reminders []string `json:"reminders"`
	Partial   struct {
		Sent      int      `json:"sent"`
		Reminders []string `json:"reminders"`
	} `json:"partial"`
}

func TestReminderHandler_RequiresCronSecret(t *testing.T) {
	sweeper := &stubSweeper{}
	env := setupTestEnv(t, sweeper)

	w := env.do(http.MethodPost, "/api/reminders/send", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/reminders/send", nil, nil, "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/reminders/send", nil, nil, "Authorization", testCronSecret)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Empty(t, sweeper.calls)
}

func TestReminderHandler_ReportsSweep(t *testing.T) {
	sweeper := &stubSweeper{result: reminder.Result{
		SentCount: 1,
		Sent:      []string{"Logo to bob@example.com"},
		Errors:    []string{"Failed to send to carol@example.com: mailbox full"},
	}}
	env := setupTestEnv(t, sweeper)

	w := env.do(http.MethodPost, "/api/reminders/send", nil, nil, "Authorization", "Bearer "+testCronSecret)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[sendRemindersBody](t, w)
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Sent)
	assert.Equal(t, []string{"Logo to bob@example.com"}, body.Reminders)
	assert.Len(t, body.Errors, 1)
	require.Len(t, sweeper.calls, 1)
	assert.True(t, testNow.Equal(sweeper.calls[0]))
}

func TestReminderHandler_FatalSweep(t *testing.T) {
	sweeper := &stubSweeper{
		result: reminder.Result{SentCount: 2, Sent: []string{"a", "b"}, Errors: []string{}},
		err:    errors.Join(reminder.ErrGatewayUnavailable, errors.New("connection reset")),
	}
	env := setupTestEnv(t, sweeper)

	w := env.do(http.MethodPost, "/api/reminders/send", nil, nil, "Authorization", "Bearer "+testCronSecret)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	body := decode[sweepFailedBody](t, w)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "connection reset")
	assert.Nil(t, body.Sent)
	assert.Nil(t, body.Reminders)
	assert.Equal(t, 2, body.Partial.Sent)
	assert.Equal(t, []string{"a", "b"}, body.Partial.Reminders)
}

func TestReminderHandler_EndToEnd(t *testing.T) {
	env := setupTestEnv(t, nil)
	f := env.f

	org := f.Organization("Alpha")
	admin := f.Profile(org, "admin@example.com", models.RoleAdmin)
	bob := f.Profile(org, "bob@example.com", models.RoleMember)
	sponsor := f.Sponsor(f.Event(org, "Summit", nil), "Acme")
	dueTomorrow := f.Deliverable(sponsor, "Logo", testutil.Date(2024, 6, 11), models.StatusPending, bob)
	f.Deliverable(sponsor, "Booth", testutil.Date(2024, 6, 7), models.StatusBlocked, nil)

	transport := &captureTransport{}
	dispatcher := reminder.NewDispatcher(env.deliverableRepo, env.profileRepo, transport, reminder.Options{
		AppURL: "https://app.example.com",
	}, zap.NewNop())
	env.reminder.sweeper = dispatcher

	w := env.do(http.MethodPost, "/api/reminders/send", nil, nil, "Authorization", "Bearer "+testCronSecret)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[sendRemindersBody](t, w)
	assert.Equal(t, 2, body.Sent)
	assert.Empty(t, body.Errors)
	assert.ElementsMatch(t, []string{"Logo to bob@example.com", "Overdue alert to " + admin.Email}, body.Reminders)
	assert.Len(t, transport.sent, 2)

	var stored models.Deliverable
	require.NoError(t, env.db.First(&stored, dueTomorrow.ID).Error)
	require.NotNil(t, stored.LastNotifiedAt)
	assert.True(t, testNow.Equal(*stored.LastNotifiedAt))

	// Same instant again: the tomorrow reminder is suppressed, the digest is not.
	w = env.do(http.MethodPost, "/api/reminders/send", nil, nil, "Authorization", "Bearer "+testCronSecret)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Overdue alert to " + admin.Email}, decode[sendRemindersBody](t, w).Reminders)
}
