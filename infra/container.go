package infra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gardenrating/infra/database"
	"gardenrating/infra/database/db_postgresql"
	"gardenrating/internal/airtable"
	"gardenrating/internal/poller"
	"gardenrating/internal/rating"
	"gardenrating/internal/trigger"
	"gardenrating/internal/ws"
	"gardenrating/pkg/cache"
	bucket "gardenrating/pkg/s3"
	"gardenrating/pkg/scoring"

	"go.uber.org/zap"
)

var ErrAirtableNotConfigured = errors.New("missing Airtable env vars: AIRTABLE_API_KEY, AIRTABLE_BASE_ID, AIRTABLE_TABLE_NAME")

type ContainerDI struct {
	Config           Config
	Logger           *zap.Logger
	ConnDB           *sql.DB
	RedisCache       *cache.RedisCache
	Bucket           *bucket.Bucket
	AirtableClient   *airtable.Client
	ScoringClient    *scoring.Client
	Hub              *ws.Hub
	WsHandler        *ws.Handler
	RepositoryRating *rating.Repository
	ServiceRating    *rating.Service
	HandlerRating    *rating.Handler
	ServiceTrigger   *trigger.Service
	HandlerTrigger   *trigger.Handler
	ServicePoller    *poller.Service
}

// NewContainerDI wires the clients shared by every command. Storage backends
// are only opened by BuildAPI.
func NewContainerDI(config Config, logger *zap.Logger) *ContainerDI {
	container := &ContainerDI{Config: config, Logger: logger}
	container.buildPkg()
	container.buildService()
	return container
}

func (c *ContainerDI) buildPkg() {
	if c.Config.AirtableConfigured() {
		c.AirtableClient = airtable.NewClient(airtable.Config{
			APIKey:          c.Config.AirtableAPIKey,
			BaseID:          c.Config.AirtableBaseID,
			TableName:       c.Config.AirtableTableName,
			AttachmentField: c.Config.AttachmentField,
		}, c.Logger.Named("airtable"))
	}
	c.ScoringClient = scoring.NewClient(c.Config.APIURL, c.Config.RateAPIToken, scoring.DefaultTimeout)
}

func (c *ContainerDI) buildService() {
	if c.AirtableClient == nil {
		return
	}
	c.ServiceTrigger = trigger.NewTriggerService(c.AirtableClient, c.ScoringClient,
		c.Config.AttachmentField, c.Config.SchoolNameField, c.Logger.Named("trigger"))
	c.ServicePoller = poller.NewPollerService(c.AirtableClient, c.ScoringClient, poller.Config{
		View:            c.Config.AirtableView,
		AttachmentField: c.Config.AttachmentField,
		SchoolNameField: c.Config.SchoolNameField,
		Workers:         c.Config.PollerWorkers,
	}, c.Logger.Named("poller"))
}

// RequireAirtable reports whether the Airtable-backed commands can run.
func (c *ContainerDI) RequireAirtable() error {
	if c.AirtableClient == nil {
		return ErrAirtableNotConfigured
	}
	return nil
}

// BuildAPI opens the optional storage backends and builds the HTTP handlers.
// A backend without configuration is left out; one that is configured but
// unreachable is an error.
func (c *ContainerDI) BuildAPI(ctx context.Context) error {
	if err := c.db(); err != nil {
		return err
	}
	if err := c.redis(ctx); err != nil {
		return err
	}
	if err := c.bucket(); err != nil {
		return err
	}

	c.Hub = ws.NewHub(c.Logger.Named("ws"))
	c.WsHandler = ws.NewWsHandler(c.Hub, c.Logger.Named("ws"))

	// Interface-typed so unset backends stay untyped nil.
	opts := rating.Options{Publisher: c.Hub}
	if c.AirtableClient != nil {
		opts.Records = c.AirtableClient
	} else {
		c.Logger.Warn("Airtable not configured; ratings will not be written back")
	}
	if c.ConnDB != nil {
		c.RepositoryRating = rating.NewRatingRepository(c.ConnDB)
		opts.Repo = c.RepositoryRating
	}
	if c.RedisCache != nil {
		opts.Cache = c.RedisCache
	}
	if c.Bucket != nil {
		opts.Archive = c.Bucket
	}

	c.ServiceRating = rating.NewRatingService(rating.NewHTTPImageFetcher(rating.DownloadTimeout),
		c.Config.AirtableTableName, opts, c.Logger.Named("rating"))
	c.HandlerRating = rating.NewRatingHandler(c.ServiceRating)

	if c.ServiceTrigger != nil {
		c.HandlerTrigger = trigger.NewTriggerHandler(c.ServiceTrigger)
	}
	return nil
}

func (c *ContainerDI) db() error {
	if !c.Config.DatabaseConfigured() {
		return nil
	}
	dbConfig := database.Config{
		Host:        c.Config.DBHost,
		Port:        c.Config.DBPort,
		User:        c.Config.DBUser,
		Password:    c.Config.DBPassword,
		Database:    c.Config.DBDatabase,
		SSLMode:     c.Config.DBSSLMode,
		Driver:      c.Config.DBDriver,
		Environment: c.Config.Environment,
	}
	conn, err := db_postgresql.NewConnection(&dbConfig)
	if err != nil {
		return err
	}
	c.ConnDB = conn
	return nil
}

func (c *ContainerDI) redis(ctx context.Context) error {
	if c.Config.RedisUrl == "" {
		return nil
	}
	rc, err := cache.NewRedisCache(ctx, c.Config.RedisUrl)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	c.RedisCache = rc
	return nil
}

func (c *ContainerDI) bucket() error {
	if !c.Config.BucketConfigured() {
		return nil
	}
	b, err := bucket.NewBucket(c.Config.AwsAccessKeyID, c.Config.AwsSecretAccessKey, c.Config.AwsRegion, c.Config.AwsBucketName)
	if err != nil {
		return fmt.Errorf("s3: %w", err)
	}
	c.Bucket = b
	return nil
}

// Close releases the storage connections opened by BuildAPI.
func (c *ContainerDI) Close() error {
	var errs []error
	if c.ConnDB != nil {
		errs = append(errs, c.ConnDB.Close())
	}
	if c.RedisCache != nil {
		errs = append(errs, c.RedisCache.Close())
	}
	return errors.Join(errs...)
}
