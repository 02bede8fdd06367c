package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/Swapnil-code-maker/swiftstore-backend/internal/notifications"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/config"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db/models"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/logger"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/metrics"
)

const (
	defaultBatchSize   = 50
	defaultPollMs      = 500
	defaultMaxAttempts = 10
	sendBaseBackoff    = 500 * time.Millisecond
	sendMaxBackoff     = 5 * time.Second
	sendRetries        = 3
	maxLoopBackoff     = 10 * time.Second
	jitterWindow       = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type outboxRepository interface {
	FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, err error) error
	MarkTerminal(id uuid.UUID, err error, terminalAttempts int) error
}

type recipientResolver interface {
	Find(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type mailer interface {
	Send(ctx context.Context, email notifications.Email) error
}

type ServiceParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	Repository outboxRepository
	Users      recipientResolver
	Mailer     mailer
	Metrics    *metrics.NotifierMetrics
}

type Service struct {
	cfg          *config.Config
	logg         *logger.Logger
	repo         outboxRepository
	users        recipientResolver
	mail         mailer
	metrics      *metrics.NotifierMetrics
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
	sendBackoff  func() retry.Backoff
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Repository == nil {
		return nil, errors.New("outbox repository is required")
	}
	if params.Users == nil {
		return nil, errors.New("recipient resolver is required")
	}
	if params.Mailer == nil {
		return nil, errors.New("mailer is required")
	}

	batch := params.Config.Outbox.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	pollMs := params.Config.Outbox.PollIntervalMS
	if pollMs <= 0 {
		pollMs = defaultPollMs
	}
	maxAttempts := params.Config.Outbox.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Service{
		cfg:          params.Config,
		logg:         params.Logger,
		repo:         params.Repository,
		users:        params.Users,
		mail:         params.Mailer,
		metrics:      params.Metrics,
		batchSize:    batch,
		maxAttempts:  maxAttempts,
		pollInterval: time.Duration(pollMs) * time.Millisecond,
		sendBackoff: func() retry.Backoff {
			return retry.WithMaxRetries(sendRetries, retry.WithCappedDuration(sendMaxBackoff, retry.NewExponential(sendBaseBackoff)))
		},
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	interval := s.pollInterval
	backoff := interval

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "notifier context canceled")
			return ctx.Err()
		default:
		}

		processed, err := s.processBatch(ctx)
		if err != nil {
			s.logg.Error(ctx, "notifier batch error", err)
			backoff = nextBackoff(backoff, interval, maxLoopBackoff)
			if err := s.sleep(ctx, withJitter(backoff)); err != nil {
				return err
			}
			continue
		}

		backoff = interval

		if processed {
			continue
		}

		if err := s.sleep(ctx, withJitter(interval)); err != nil {
			return err
		}
	}
}

// processBatch drains one page of undelivered events. Individual event
// failures are recorded on the row and never abort the batch.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	events, err := s.repo.FetchUnpublished(s.batchSize, s.maxAttempts)
	if err != nil {
		return false, fmt.Errorf("fetch unpublished: %w", err)
	}
	if len(events) == 0 {
		return false, nil
	}

	for _, event := range events {
		s.dispatchEvent(ctx, event)
	}
	return true, nil
}

func (s *Service) dispatchEvent(ctx context.Context, event models.OutboxEvent) {
	fields := s.eventFields(event)
	logCtx := s.logg.WithFields(ctx, fields)

	message, err := notifications.Render(event)
	if err != nil {
		var unroutable notifications.ErrUnroutableEvent
		if errors.As(err, &unroutable) {
			s.markTerminal(logCtx, event, err, "unroutable_event")
			return
		}
		// A payload that does not decode will never decode.
		s.markTerminal(logCtx, event, err, "malformed_payload")
		return
	}

	recipient, err := s.users.Find(ctx, message.RecipientID)
	if err != nil {
		s.recordFailure(logCtx, event, fmt.Errorf("resolve recipient %s: %w", message.RecipientID, err))
		return
	}

	started := time.Now()
	err = retry.Do(ctx, s.sendBackoff(), func(ctx context.Context) error {
		if sendErr := s.mail.Send(ctx, notifications.Email{
			To:      recipient.Email,
			Subject: message.Subject,
			Body:    message.Body,
		}); sendErr != nil {
			return retry.RetryableError(sendErr)
		}
		return nil
	})
	s.metrics.ObserveDispatch(string(event.EventType), time.Since(started))
	if err != nil {
		s.recordFailure(logCtx, event, fmt.Errorf("send notification: %w", err))
		return
	}

	if err := s.repo.MarkPublished(event.ID); err != nil {
		s.logg.Error(logCtx, "mark published failed", err)
		return
	}
	s.metrics.IncSuccess(string(event.EventType))
	s.logg.Info(logCtx, "notification dispatched")
}

func (s *Service) recordFailure(ctx context.Context, event models.OutboxEvent, err error) {
	s.metrics.IncFailure(string(event.EventType))

	nextAttempt := event.AttemptCount + 1
	if nextAttempt >= s.maxAttempts {
		s.markTerminal(ctx, event, fmt.Errorf("max dispatch attempts reached: %w", err), "max_attempts")
		return
	}

	logCtx := s.logg.WithField(ctx, "error", err.Error())
	s.logg.Warn(logCtx, "notification dispatch failed")
	if markErr := s.repo.MarkFailed(event.ID, err); markErr != nil {
		s.logg.Error(ctx, "mark failed errored", markErr)
	}
}

func (s *Service) markTerminal(ctx context.Context, event models.OutboxEvent, err error, reason string) {
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"terminal_reason": reason,
		"error":           err.Error(),
	})
	s.logg.Warn(logCtx, "notification will not be retried")
	if markErr := s.repo.MarkTerminal(event.ID, err, s.maxAttempts); markErr != nil {
		s.logg.Error(ctx, "mark terminal errored", markErr)
	}
}

func (s *Service) eventFields(event models.OutboxEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"attempt_count":  event.AttemptCount,
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + time.Duration(jitterSource.Int63n(int64(jitterWindow)))
}
