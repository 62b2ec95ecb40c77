package infra

import (
	"errors"
	"io/fs"
	"os"

	"gardenrating/validation"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerName         string
	ServerPort         string
	Environment        string
	LogLevel           string
	AirtableAPIKey     string
	AirtableBaseID     string
	AirtableTableName  string
	AirtableView       string
	AttachmentField    string
	SchoolNameField    string
	APIURL             string
	RateAPIToken       string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBDatabase         string
	DBSSLMode          string
	DBDriver           string
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsBucketName      string
	RedisUrl           string
	PollerWorkers      int
}

func NewConfig() Config {
	if os.Getenv("ENVIRONMENT") == "" {
		if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic("Error loading env file: " + err.Error())
		}
	}

	workers, err := validation.ParseStringToInt64(os.Getenv("POLLER_WORKERS"))
	if err != nil || workers <= 0 {
		workers = 4
	}

	return Config{
		ServerName:         getEnv("SERVER_NAME", "gardenrating"),
		ServerPort:         getEnv("SERVER_PORT", ":8000"),
		Environment:        os.Getenv("ENVIRONMENT"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		AirtableAPIKey:     os.Getenv("AIRTABLE_API_KEY"),
		AirtableBaseID:     os.Getenv("AIRTABLE_BASE_ID"),
		AirtableTableName:  getEnv("AIRTABLE_TABLE_NAME", "Submissions"),
		AirtableView:       os.Getenv("AIRTABLE_VIEW"),
		AttachmentField:    getEnv("ATTACHMENT_FIELD", "Photos"),
		SchoolNameField:    getEnv("SCHOOL_NAME_FIELD", "School Name"),
		APIURL:             getEnv("API_URL", "http://localhost:8000/rate"),
		RateAPIToken:       os.Getenv("RATE_API_TOKEN"),
		DBHost:             os.Getenv("DB_HOST"),
		DBPort:             os.Getenv("DB_PORT"),
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBDatabase:         os.Getenv("DB_DATABASE"),
		DBSSLMode:          os.Getenv("DB_SSL_MODE"),
		DBDriver:           getEnv("DB_DRIVER", "postgres"),
		AwsAccessKeyID:     os.Getenv("AWS_ACCESS_KEY"),
		AwsSecretAccessKey: os.Getenv("AWS_SECRET_KEY"),
		AwsRegion:          os.Getenv("AWS_REGION"),
		AwsBucketName:      os.Getenv("AWS_BUCKET_NAME"),
		RedisUrl:           os.Getenv("REDIS_URL"),
		PollerWorkers:      int(workers),
	}
}

// AirtableConfigured reports whether rating results can be written back.
func (c Config) AirtableConfigured() bool {
	return c.AirtableAPIKey != "" && c.AirtableBaseID != "" && c.AirtableTableName != ""
}

func (c Config) DatabaseConfigured() bool {
	return c.DBHost != "" && c.DBDatabase != ""
}

func (c Config) BucketConfigured() bool {
	return c.AwsBucketName != "" && c.AwsAccessKeyID != "" && c.AwsSecretAccessKey != "" && c.AwsRegion != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
