package notification

import (
	"context"
	"html"
	"time"

	"CareerConnect/internal/auth"
	"CareerConnect/internal/config"
	"CareerConnect/internal/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	dispatchBatch       = 100
	maxEmailAttempts    = 3
	dispatchCallTimeout = 30 * time.Second
)

type DispatchStore interface {
	PendingEmail(ctx context.Context, limit int64, maxAttempts int) ([]*Notification, error)
	MarkEmailed(ctx context.Context, id primitive.ObjectID, at time.Time) error
	RecordEmailFailure(ctx context.Context, id primitive.ObjectID) error
}

type RecipientLookup interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*auth.User, error)
}

// Dispatcher mirrors recorded notifications to email on a fixed interval. Delivery is best-effort:
// a notification is retried up to maxEmailAttempts times and then left alone.
type Dispatcher struct {
	repo       DispatchStore
	mailer     config.Mailer
	recipients RecipientLookup
	interval   time.Duration
	logger     *zap.Logger
}

func NewDispatcher(repo DispatchStore, mailer config.Mailer, recipients RecipientLookup, cfg *config.NotificationConfig, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		repo:       repo,
		mailer:     mailer,
		recipients: recipients,
		interval:   cfg.DispatchInterval,
		logger:     logger.Named("dispatcher"),
	}
}

var subjects = map[string]string{
	TypeApplicationReceived:  "New application received",
	TypeApplicationSubmitted: "Application submitted",
	TypeApplicationStatus:    "Application status updated",
}

func subjectFor(kind string) string {
	if s, ok := subjects[kind]; ok {
		return s
	}
	return "Notification"
}

// DispatchDue sends one batch and returns how many emails went out.
func (d *Dispatcher) DispatchDue(ctx context.Context) int {
	pending, err := d.repo.PendingEmail(ctx, dispatchBatch, maxEmailAttempts)
	if err != nil {
		d.logger.Warn("failed to fetch pending notifications", zap.Error(err))
		return 0
	}
	sent := 0
	for _, n := range pending {
		if err := d.send(ctx, n); err != nil {
			metrics.EmailsDispatched.WithLabelValues("failed").Inc()
			d.logger.Warn("notification email failed",
				zap.String("notification_id", n.ID.Hex()), zap.Int("attempt", n.EmailAttempts+1), zap.Error(err))
			if err := d.repo.RecordEmailFailure(ctx, n.ID); err != nil {
				d.logger.Warn("failed to record email attempt", zap.String("notification_id", n.ID.Hex()), zap.Error(err))
			}
			continue
		}
		metrics.EmailsDispatched.WithLabelValues("sent").Inc()
		sent++
		if err := d.repo.MarkEmailed(ctx, n.ID, time.Now().UTC()); err != nil {
			d.logger.Warn("failed to mark notification emailed", zap.String("notification_id", n.ID.Hex()), zap.Error(err))
		}
	}
	if len(pending) > 0 {
		d.logger.Debug("dispatch round finished", zap.Int("pending", len(pending)), zap.Int("sent", sent))
	}
	return sent
}

func (d *Dispatcher) send(ctx context.Context, n *Notification) error {
	user, err := d.recipients.FindByID(ctx, n.UserID)
	if err != nil {
		return err
	}
	if user == nil || user.Email == "" {
		return errRecipientMissing
	}
	body := "<p>Hi " + html.EscapeString(user.Name) + ",</p><p>" + html.EscapeString(n.Message) + "</p>"
	return d.mailer.SendEmail(ctx, user.Email, subjectFor(n.Type), body)
}

type dispatchError string

func (e dispatchError) Error() string { return string(e) }

const errRecipientMissing = dispatchError("recipient has no email address")

// StartDispatcher runs the dispatch loop for the lifetime of the app. It is a no-op without a mailer.
func StartDispatcher(lc fx.Lifecycle, d *Dispatcher) {
	if d.mailer == nil {
		d.logger.Info("email provider disabled, notification dispatcher not started")
		return
	}
	ticker := time.NewTicker(d.interval)
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			d.logger.Info("starting notification dispatcher", zap.Duration("interval", d.interval))
			go func() {
				for {
					select {
					case <-ticker.C:
						ctx, cancel := context.WithTimeout(context.Background(), dispatchCallTimeout)
						d.DispatchDue(ctx)
						cancel()
					case <-done:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			d.logger.Info("stopping notification dispatcher")
			ticker.Stop()
			close(done)
			return nil
		},
	})
}
