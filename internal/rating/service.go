package rating

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gardenrating/internal/airtable"
	"gardenrating/internal/ws"
	"gardenrating/pkg/cache"
	"gardenrating/pkg/heuristics"
	"gardenrating/pkg/metrics"
	bucket "gardenrating/pkg/s3"
	"gardenrating/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrDownload        = errors.New("failed to download image")
	ErrDecode          = errors.New("failed to decode image")
	ErrAirtableUpdate  = errors.New("airtable update failed")
	ErrHistoryDisabled = errors.New("rating history is not configured")
	ErrNoRatings       = errors.New("no ratings for record")
)

type ServiceInterface interface {
	RateService(ctx context.Context, payload RatePayload) (RateResponse, error)
	HealthService() HealthResponse
	GetRatingsService(ctx context.Context, recordID string) ([]RatingHistoryResponse, error)
}

type Publisher interface {
	Publish(event *ws.RatingEvent)
}

// Options carries the optional backends. Nil members are skipped.
type Options struct {
	Records   airtable.ClientAPI
	Repo      InterfaceRepository
	Cache     cache.InterfaceCache
	Archive   bucket.InterfaceBucket
	Publisher Publisher
}

type Service struct {
	fetcher   ImageFetcher
	records   airtable.ClientAPI
	repo      InterfaceRepository
	cache     cache.InterfaceCache
	archive   bucket.InterfaceBucket
	publisher Publisher
	table     string
	logger    *zap.Logger
}

func NewRatingService(fetcher ImageFetcher, table string, opts Options, logger *zap.Logger) *Service {
	return &Service{
		fetcher:   fetcher,
		records:   opts.Records,
		repo:      opts.Repo,
		cache:     opts.Cache,
		archive:   opts.Archive,
		publisher: opts.Publisher,
		table:     table,
		logger:    logger,
	}
}

func (s *Service) HealthService() HealthResponse {
	status := "ok"
	if s.records == nil {
		status = "missing_env"
	}
	return HealthResponse{Status: status, Table: s.table}
}

func (s *Service) RateService(ctx context.Context, payload RatePayload) (RateResponse, error) {
	logger := s.logger.With(zap.String("record_id", payload.RecordID))

	assessment, archiveURL, err := s.assess(ctx, payload, logger)
	if err != nil {
		return RateResponse{}, err
	}

	response := RateResponse{
		RecordID:        payload.RecordID,
		CropGuess:       assessment.CropGuess,
		Stage:           assessment.Stage,
		HealthScore:     assessment.HealthScore,
		Recommendations: assessment.Recommendations,
	}

	if s.records == nil {
		response.Note = MissingAirtableNote
		logger.Warn("airtable not configured, record left unchanged")
	} else if _, err := s.records.UpdateRecord(ctx, payload.RecordID, airtableFields(assessment)); err != nil {
		metrics.AirtableUpdateFailures.Inc()
		return RateResponse{}, fmt.Errorf("%w: %w", ErrAirtableUpdate, err)
	}

	s.saveHistory(ctx, payload, assessment, archiveURL, logger)
	s.publish(payload, response)

	logger.Info("photo rated",
		zap.String("crop_guess", response.CropGuess),
		zap.String("stage", response.Stage),
		zap.Float64("health_score", response.HealthScore),
	)
	return response, nil
}

// assess returns the cached assessment for the photo or computes a fresh one.
func (s *Service) assess(ctx context.Context, payload RatePayload, logger *zap.Logger) (heuristics.Assessment, string, error) {
	key := cacheKey(payload.PhotoURL)
	if cached, ok := s.cached(ctx, key, logger); ok {
		metrics.RatingsTotal.WithLabelValues(metrics.OutcomeCached).Inc()
		return cached, "", nil
	}

	body, contentType, err := s.fetcher.Fetch(ctx, payload.PhotoURL)
	if err != nil {
		metrics.RatingsTotal.WithLabelValues(metrics.OutcomeDownloadFailed).Inc()
		return heuristics.Assessment{}, "", fmt.Errorf("%w: %w", ErrDownload, err)
	}

	start := time.Now()
	img, err := decodeImage(body)
	if err != nil {
		metrics.RatingsTotal.WithLabelValues(metrics.OutcomeDecodeFailed).Inc()
		return heuristics.Assessment{}, "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	assessment := heuristics.Analyze(img)
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	metrics.RatingsTotal.WithLabelValues(metrics.OutcomeOK).Inc()

	archiveURL := s.archivePhoto(ctx, payload, body, contentType, logger)
	s.store(ctx, key, assessment, logger)

	return assessment, archiveURL, nil
}

func (s *Service) cached(ctx context.Context, key string, logger *zap.Logger) (heuristics.Assessment, bool) {
	if s.cache == nil {
		return heuristics.Assessment{}, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			logger.Warn("rating cache read failed", zap.Error(err))
		}
		return heuristics.Assessment{}, false
	}

	var assessment heuristics.Assessment
	if err := json.Unmarshal([]byte(raw), &assessment); err != nil {
		logger.Warn("rating cache entry unreadable", zap.Error(err))
		return heuristics.Assessment{}, false
	}
	return assessment, true
}

func (s *Service) store(ctx context.Context, key string, assessment heuristics.Assessment, logger *zap.Logger) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(assessment)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(data), CacheTTL); err != nil {
		logger.Warn("rating cache write failed", zap.Error(err))
	}
}

func (s *Service) archivePhoto(ctx context.Context, payload RatePayload, body []byte, contentType string, logger *zap.Logger) string {
	if s.archive == nil {
		return ""
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	archiveURL, err := s.archive.Upload(ctx, archiveKey(payload.RecordID, payload.PhotoURL, contentType), body, contentType)
	if err != nil {
		logger.Warn("photo archive failed", zap.Error(err))
		return ""
	}
	return archiveURL
}

func (s *Service) saveHistory(ctx context.Context, payload RatePayload, a heuristics.Assessment, archiveURL string, logger *zap.Logger) {
	if s.repo == nil {
		return
	}
	school := nullableString(payload.SchoolName)
	_, err := s.repo.CreateRating(ctx, CreateRatingParams{
		ID:                  uuid.New(),
		RecordID:            payload.RecordID,
		SchoolName:          sql.NullString{String: school, Valid: school != ""},
		PhotoURL:            payload.PhotoURL,
		ArchiveURL:          sql.NullString{String: archiveURL, Valid: archiveURL != ""},
		CropGuess:           a.CropGuess,
		Stage:               a.Stage,
		HealthScore:         a.HealthScore,
		GreenFraction:       a.GreenFraction,
		YellowBrownFraction: a.YellowBrownFraction,
		EdgeDensity:         a.EdgeDensity,
		Recommendations:     strings.Join(a.Recommendations, "\n"),
	})
	if err != nil {
		logger.Error("rating history insert failed", zap.Error(err))
	}
}

func (s *Service) publish(payload RatePayload, response RateResponse) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(&ws.RatingEvent{
		Type:            ws.TypeRatingCompleted,
		RecordID:        response.RecordID,
		SchoolName:      payload.SchoolName,
		CropGuess:       response.CropGuess,
		Stage:           response.Stage,
		HealthScore:     response.HealthScore,
		Recommendations: response.Recommendations,
		RatedAt:         time.Now().UTC(),
	})
}

func (s *Service) GetRatingsService(ctx context.Context, recordID string) ([]RatingHistoryResponse, error) {
	if s.repo == nil {
		return nil, ErrHistoryDisabled
	}

	results, err := s.repo.GetRatingsByRecordID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoRatings
	}

	history := make([]RatingHistoryResponse, 0, len(results))
	for _, r := range results {
		history = append(history, RatingHistoryResponse{
			ID:                  r.ID,
			RecordID:            r.RecordID,
			SchoolName:          validation.GetStringFromNull(r.SchoolName),
			PhotoURL:            r.PhotoURL,
			ArchiveURL:          validation.GetStringFromNull(r.ArchiveURL),
			CropGuess:           r.CropGuess,
			Stage:               r.Stage,
			HealthScore:         r.HealthScore,
			GreenFraction:       r.GreenFraction,
			YellowBrownFraction: r.YellowBrownFraction,
			EdgeDensity:         r.EdgeDensity,
			Recommendations:     splitRecommendations(r.Recommendations),
			CreatedAt:           r.CreatedAt,
		})
	}
	return history, nil
}
