// Package trigger handles the record-created automation: it reads the new
// record, forwards its first photo to the rating endpoint and reports the
// endpoint's reply as the run output.
package trigger

import (
	"context"
	"errors"
	"fmt"

	"gardenrating/internal/airtable"
	"gardenrating/pkg/metrics"
	"gardenrating/pkg/scoring"

	"go.uber.org/zap"
)

// Guard outputs. These are results, not errors.
const (
	OutputRecordNotFound = "Record not found"
	OutputNoAttachments  = "No attachments"
)

type ServiceInterface interface {
	Run(ctx context.Context, recordID string) (string, error)
}

type Service struct {
	records         airtable.ClientAPI
	scorer          scoring.ClientAPI
	attachmentField string
	schoolNameField string
	logger          *zap.Logger
}

func NewTriggerService(records airtable.ClientAPI, scorer scoring.ClientAPI, attachmentField, schoolNameField string, logger *zap.Logger) *Service {
	return &Service{
		records:         records,
		scorer:          scorer,
		attachmentField: attachmentField,
		schoolNameField: schoolNameField,
		logger:          logger,
	}
}

// Run processes one trigger event. The returned string is what the
// automation log should show; the rating endpoint's body is returned as-is
// whatever its status code.
func (s *Service) Run(ctx context.Context, recordID string) (string, error) {
	logger := s.logger.With(zap.String("record_id", recordID))

	record, err := s.records.GetRecord(ctx, recordID)
	if errors.Is(err, airtable.ErrRecordNotFound) {
		metrics.TriggerInvocations.WithLabelValues(metrics.OutcomeNotFound).Inc()
		logger.Info(OutputRecordNotFound)
		return OutputRecordNotFound, nil
	}
	if err != nil {
		metrics.TriggerInvocations.WithLabelValues(metrics.OutcomeError).Inc()
		return "", fmt.Errorf("read record %s: %w", recordID, err)
	}

	payload, ok := scoring.PayloadFromRecord(record, s.attachmentField, s.schoolNameField)
	if !ok {
		metrics.TriggerInvocations.WithLabelValues(metrics.OutcomeNoAttachments).Inc()
		logger.Info(OutputNoAttachments)
		return OutputNoAttachments, nil
	}

	resp, err := s.scorer.Rate(ctx, payload)
	if err != nil {
		metrics.TriggerInvocations.WithLabelValues(metrics.OutcomeError).Inc()
		return "", err
	}

	metrics.TriggerInvocations.WithLabelValues(metrics.OutcomeOK).Inc()
	logger.Info("rating requested", zap.Int("status", resp.StatusCode))
	return resp.Body, nil
}
