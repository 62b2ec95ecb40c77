// Package poller is the fallback path for records the trigger missed: it pages
// through unprocessed Airtable records and posts each one to the rating
// endpoint.
package poller

import (
	"context"
	"fmt"
	"time"

	"gardenrating/internal/airtable"
	"gardenrating/pkg/concurrent"
	"gardenrating/pkg/metrics"
	"gardenrating/pkg/scoring"

	"go.uber.org/zap"
)

const (
	PageSize      = 25
	IdleInterval  = 30 * time.Second
	ErrorInterval = 15 * time.Second
	BatchInterval = 2 * time.Second

	bodyPreviewLen = 140
)

type Config struct {
	View            string
	AttachmentField string
	SchoolNameField string
	Workers         int
	// Zero values fall back to the package defaults.
	IdleInterval  time.Duration
	ErrorInterval time.Duration
	BatchInterval time.Duration
}

type Service struct {
	records airtable.ClientAPI
	scorer  scoring.ClientAPI
	pool    *concurrent.WorkerPool
	config  Config
	logger  *zap.Logger
}

func NewPollerService(records airtable.ClientAPI, scorer scoring.ClientAPI, config Config, logger *zap.Logger) *Service {
	if config.IdleInterval <= 0 {
		config.IdleInterval = IdleInterval
	}
	if config.ErrorInterval <= 0 {
		config.ErrorInterval = ErrorInterval
	}
	if config.BatchInterval <= 0 {
		config.BatchInterval = BatchInterval
	}
	return &Service{
		records: records,
		scorer:  scorer,
		pool:    concurrent.NewWorkerPool(config.Workers),
		config:  config,
		logger:  logger,
	}
}

// Run polls until ctx is cancelled. Listing failures are logged and retried
// after ErrorInterval; they never stop the loop.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("poller started", zap.Int("workers", s.pool.Size()))
	for {
		n, err := s.PollOnce(ctx)

		wait := s.config.BatchInterval
		switch {
		case ctx.Err() != nil:
			s.logger.Info("Stopping.")
			return nil
		case err != nil:
			s.logger.Error("poller error", zap.Error(err))
			wait = s.config.ErrorInterval
		case n == 0:
			s.logger.Info("no unprocessed records", zap.Duration("sleep", s.config.IdleInterval))
			wait = s.config.IdleInterval
		}

		if !sleep(ctx, wait) {
			s.logger.Info("Stopping.")
			return nil
		}
	}
}

// PollOnce lists one page of unprocessed records and rates them. It returns
// the number of records listed.
func (s *Service) PollOnce(ctx context.Context) (int, error) {
	records, err := s.records.ListUnprocessed(ctx, airtable.ListOptions{
		PageSize: PageSize,
		View:     s.config.View,
	})
	if err != nil {
		return 0, fmt.Errorf("list unprocessed: %w", err)
	}

	tasks := make([]func() error, 0, len(records))
	for _, record := range records {
		tasks = append(tasks, func() error {
			s.process(ctx, record)
			return nil
		})
	}
	for _, err := range s.pool.RunAll(ctx, tasks...) {
		s.logger.Warn("record not processed", zap.Error(err))
	}

	return len(records), nil
}

func (s *Service) process(ctx context.Context, record airtable.Record) {
	logger := s.logger.With(zap.String("record_id", record.ID))

	payload, ok := scoring.PayloadFromRecord(record, s.config.AttachmentField, s.config.SchoolNameField)
	if !ok {
		metrics.PollerRecords.WithLabelValues(metrics.OutcomeSkipped).Inc()
		logger.Info("skip: record has no attachments")
		return
	}

	resp, err := s.scorer.Rate(ctx, payload)
	if err != nil {
		metrics.PollerRecords.WithLabelValues(metrics.OutcomeError).Inc()
		logger.Error("rate request failed", zap.Error(err))
		return
	}

	outcome := metrics.OutcomeOK
	if resp.StatusCode >= 300 {
		outcome = metrics.OutcomeError
	}
	metrics.PollerRecords.WithLabelValues(outcome).Inc()
	logger.Info(fmt.Sprintf("%s -> %d %s", record.ID, resp.StatusCode, preview(resp.Body)))
}

func preview(body string) string {
	r := []rune(body)
	if len(r) > bodyPreviewLen {
		return string(r[:bodyPreviewLen])
	}
	return body
}

// sleep waits for d or until ctx is done, reporting whether the full wait
// elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
