// Package reminder decides which deliverable reminders are due and sends them.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yukikurage/sponsor-deliverables-api/internal/mailer"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/repository"
	"github.com/yukikurage/sponsor-deliverables-api/internal/risk"
)

// ErrGatewayUnavailable is returned by Run when deliverables cannot be fetched.
var ErrGatewayUnavailable = errors.New("deliverable gateway unavailable")

const (
	defaultLookaheadDays = 7
	defaultConcurrency   = 4
)

// DeliverableSource is the subset of the deliverable repository used by a sweep.
type DeliverableSource interface {
	List(ctx context.Context, filter repository.DeliverableFilter) ([]models.Deliverable, int64, error)
	MarkNotified(ctx context.Context, id uint64, at time.Time) error
}

// AdminDirectory finds the recipients of overdue digests.
type AdminDirectory interface {
	ListAdmins(ctx context.Context, organizationID uint64) ([]models.Profile, error)
}

// Options tunes a Dispatcher. Zero values fall back to defaults.
type Options struct {
	// Location is the reference timezone for all calendar math. Defaults to UTC.
	Location *time.Location
	// LookaheadDays bounds the candidate query. Values below 7 are raised to 7.
	LookaheadDays int
	// Concurrency is the number of messages sent in parallel.
	Concurrency int
	AppURL      string
	// DryRun sends through the transport but never records last_notified_at.
	DryRun bool
}

// Result summarizes one sweep.
type Result struct {
	SentCount int      `json:"sent"`
	Sent      []string `json:"reminders"`
	Errors    []string `json:"errors"`
}

// Dispatcher runs reminder sweeps.
type Dispatcher struct {
	deliverables DeliverableSource
	admins       AdminDirectory
	transport    mailer.Transport
	opts         Options
	logger       *zap.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(deliverables DeliverableSource, admins AdminDirectory, transport mailer.Transport, opts Options, logger *zap.Logger) *Dispatcher {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.LookaheadDays < defaultLookaheadDays {
		opts.LookaheadDays = defaultLookaheadDays
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = defaultConcurrency
	}
	return &Dispatcher{
		deliverables: deliverables,
		admins:       admins,
		transport:    transport,
		opts:         opts,
		logger:       logger,
	}
}

// outcome is the result of one send, kept in its own slot so parallel workers never
// share state.
type outcome struct {
	sent string
	errs []string
}

// Run performs one sweep at now: assignee reminders first, then per-organization
// overdue digests. Item failures are collected in the result. Only a failed
// deliverable query stops the sweep; the error then marks the whole run as failed
// and the returned result only records what was sent before it stopped.
func (d *Dispatcher) Run(ctx context.Context, now time.Time) (Result, error) {
	now = now.In(d.opts.Location)
	log := d.logger.With(zap.String("run_id", uuid.NewString()), zap.Time("now", now))
	res := Result{Sent: []string{}, Errors: []string{}}

	log.Info("Starting reminder sweep", zap.Bool("dry_run", d.opts.DryRun))

	if err := d.remindAssignees(ctx, log, now, &res); err != nil {
		return res, err
	}
	if err := d.alertAdmins(ctx, log, now, &res); err != nil {
		return res, err
	}

	log.Info("Reminder sweep finished",
		zap.Int("sent", res.SentCount),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}

func (d *Dispatcher) remindAssignees(ctx context.Context, log *zap.Logger, now time.Time, res *Result) error {
	horizon := models.DateOnly(now).AddDate(0, 0, d.opts.LookaheadDays)
	candidates, _, err := d.deliverables.List(ctx, repository.DeliverableFilter{
		Statuses:      []models.DeliverableStatus{models.StatusPending, models.StatusInProgress},
		DueOnOrBefore: &horizon,
		SortByDueDate: true,
	})
	if err != nil {
		log.Error("Failed to fetch reminder candidates", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}

	var decisions []Decision
	for _, dl := range candidates {
		if dec, ok := Decide(dl, now); ok {
			decisions = append(decisions, dec)
		}
	}
	log.Debug("Evaluated reminder candidates",
		zap.Int("candidates", len(candidates)),
		zap.Int("due", len(decisions)),
	)

	outcomes := d.fanOut(len(decisions), func(i int) outcome {
		return d.remind(ctx, log, decisions[i], now)
	})
	res.collect(outcomes)
	return nil
}

func (d *Dispatcher) remind(ctx context.Context, log *zap.Logger, dec Decision, now time.Time) outcome {
	msg, err := BuildReminder(dec, d.opts.AppURL)
	if err != nil {
		return outcome{errs: []string{fmt.Sprintf("Error sending reminder for %s: %v", dec.Title, err)}}
	}

	sent := d.transport.Send(ctx, msg)
	if !sent.Success {
		log.Warn("Reminder not delivered",
			zap.Uint64("deliverable_id", dec.DeliverableID),
			zap.String("kind", string(dec.Kind)),
			zap.String("to", dec.RecipientEmail),
			zap.String("error", sent.Error),
		)
		return outcome{errs: []string{fmt.Sprintf("Failed to send to %s: %s", dec.RecipientEmail, sent.Error)}}
	}

	out := outcome{sent: fmt.Sprintf("%s to %s", dec.Title, dec.RecipientEmail)}
	if d.opts.DryRun {
		return out
	}
	if err := d.deliverables.MarkNotified(ctx, dec.DeliverableID, now); err != nil {
		log.Error("Failed to record reminder",
			zap.Uint64("deliverable_id", dec.DeliverableID),
			zap.Error(err),
		)
		out.errs = append(out.errs, fmt.Sprintf("Sent %s to %s but failed to record it: %v", dec.Title, dec.RecipientEmail, err))
	}
	return out
}

type digest struct {
	organizationID uint64
	admin          models.Profile
	items          []DigestItem
}

func (d *Dispatcher) alertAdmins(ctx context.Context, log *zap.Logger, now time.Time, res *Result) error {
	today := models.DateOnly(now)
	overdue, _, err := d.deliverables.List(ctx, repository.DeliverableFilter{
		Statuses:      models.OpenStatuses,
		DueBefore:     &today,
		SortByDueDate: true,
	})
	if err != nil {
		log.Error("Failed to fetch overdue deliverables", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}

	groups := map[uint64][]DigestItem{}
	for _, dl := range overdue {
		days := risk.DaysUntilDue(dl.DueDate, now)
		if dl.Status.Terminal() || days >= 0 {
			continue
		}
		orgID, ok := dl.OrganizationID()
		if !ok {
			res.Errors = append(res.Errors, fmt.Sprintf("Overdue deliverable %s has no sponsor; no organization to alert", dl.Title))
			continue
		}
		groups[orgID] = append(groups[orgID], DigestItem{
			DeliverableID: dl.ID,
			Title:         dl.Title,
			SponsorName:   dl.SponsorName(),
			EventName:     dl.EventName(),
			DueDate:       models.DateOnly(dl.DueDate),
			DaysOverdue:   -days,
		})
	}

	orgIDs := make([]uint64, 0, len(groups))
	for id := range groups {
		orgIDs = append(orgIDs, id)
	}
	sort.Slice(orgIDs, func(i, j int) bool { return orgIDs[i] < orgIDs[j] })

	var digests []digest
	for _, orgID := range orgIDs {
		admins, err := d.admins.ListAdmins(ctx, orgID)
		if err != nil {
			log.Error("Failed to load organization admins", zap.Uint64("organization_id", orgID), zap.Error(err))
			res.Errors = append(res.Errors, fmt.Sprintf("Failed to load admins for organization %d: %v", orgID, err))
			continue
		}
		for _, admin := range admins {
			if admin.Email == "" {
				continue
			}
			digests = append(digests, digest{organizationID: orgID, admin: admin, items: groups[orgID]})
		}
	}

	outcomes := d.fanOut(len(digests), func(i int) outcome {
		return d.alert(ctx, log, digests[i])
	})
	res.collect(outcomes)
	return nil
}

func (d *Dispatcher) alert(ctx context.Context, log *zap.Logger, dg digest) outcome {
	msg, err := BuildDigest(dg.admin, dg.items, d.opts.AppURL)
	if err != nil {
		return outcome{errs: []string{fmt.Sprintf("Failed to send overdue alert to %s: %v", dg.admin.Email, err)}}
	}

	sent := d.transport.Send(ctx, msg)
	if !sent.Success {
		log.Warn("Overdue alert not delivered",
			zap.Uint64("organization_id", dg.organizationID),
			zap.String("to", dg.admin.Email),
			zap.String("error", sent.Error),
		)
		return outcome{errs: []string{fmt.Sprintf("Failed to send overdue alert to %s: %s", dg.admin.Email, sent.Error)}}
	}
	return outcome{sent: fmt.Sprintf("Overdue alert to %s", dg.admin.Email)}
}

// fanOut runs fn for 0..n-1 with bounded parallelism and returns the outcomes in
// index order.
func (d *Dispatcher) fanOut(n int, fn func(i int) outcome) []outcome {
	outcomes := make([]outcome, n)
	var g errgroup.Group
	g.SetLimit(d.opts.Concurrency)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			outcomes[i] = fn(i)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (r *Result) collect(outcomes []outcome) {
	for _, o := range outcomes {
		if o.sent != "" {
			r.SentCount++
			r.Sent = append(r.Sent, o.sent)
		}
		r.Errors = append(r.Errors, o.errs...)
	}
}
