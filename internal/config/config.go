package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

const (
	rawDataPrefix     = "raw-data/"
	playerDataKey     = rawDataPrefix + "epl_player_data.jsonl"
	athenaResultsPath = "athena-results/"
)

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

type rawConfig struct {
	SportsDataAPIKey   string        `env:"SPORTS_DATA_API_KEY"`
	EPLEndpoint        string        `env:"EPL_ENDPOINT"`
	SportsDataBaseURL  string        `env:"SPORTS_DATA_BASE_URL" envDefault:"https://api.sportsdata.io/v4/soccer/scores/json"`
	Region             string        `env:"AWS_REGION" envDefault:"eu-central-1"`
	BucketName         string        `env:"EPL_BUCKET_NAME" envDefault:"sarps-epl-analytics-data-lake"`
	GlueDatabaseName   string        `env:"EPL_GLUE_DATABASE" envDefault:"sarps-glue-epl-data-lake"`
	AthenaDatabaseName string        `env:"EPL_ATHENA_DATABASE" envDefault:"epl_analytics"`
	TeamDelay          time.Duration `env:"EPL_TEAM_DELAY" envDefault:"1s"`
	BucketSettleDelay  time.Duration `env:"EPL_BUCKET_SETTLE_DELAY" envDefault:"5s"`
	Environment        string        `env:"EPL_DATALAKE_ENVIRONMENT" envDefault:"development"`
	SentryDSN          string        `env:"SENTRY_DSN"`
	OTLPEndpoint       string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Config is read once at startup and passed to every stage of the pipeline
type Config struct {
	sportsDataAPIKey   string
	eplEndpoint        string
	sportsDataBaseURL  string
	region             string
	bucketName         string
	glueDatabaseName   string
	athenaDatabaseName string
	teamDelay          time.Duration
	bucketSettleDelay  time.Duration
	sentryDSN          string
	otlpEndpoint       string
	env                environment
}

func (c *Config) SportsDataAPIKey() string {
	return c.sportsDataAPIKey
}

func (c *Config) EPLEndpoint() string {
	return c.eplEndpoint
}

func (c *Config) SportsDataBaseURL() string {
	return c.sportsDataBaseURL
}

func (c *Config) Region() string {
	return c.region
}

func (c *Config) BucketName() string {
	return c.bucketName
}

func (c *Config) GlueDatabaseName() string {
	return c.glueDatabaseName
}

func (c *Config) AthenaDatabaseName() string {
	return c.athenaDatabaseName
}

func (c *Config) TeamDelay() time.Duration {
	return c.teamDelay
}

func (c *Config) BucketSettleDelay() time.Duration {
	return c.bucketSettleDelay
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

func (c *Config) OTLPEndpoint() string {
	return c.otlpEndpoint
}

func (c *Config) PlayerDataKey() string {
	return playerDataKey
}

// Location of the external table, ie. the directory holding the player data
func (c *Config) RawDataLocation() string {
	return fmt.Sprintf("s3://%s/%s", c.bucketName, rawDataPrefix)
}

func (c *Config) AthenaOutputLocation() string {
	return fmt.Sprintf("s3://%s/%s", c.bucketName, athenaResultsPath)
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf(
		"Config{env: %s, region: %s, bucket: %s, glueDatabase: %s, athenaDatabase: %s, teamDelay: %s, ...}",
		string(c.env), c.region, c.bucketName, c.glueDatabaseName, c.athenaDatabaseName, c.teamDelay,
	)
}

// LoadDotEnv loads variables from the given .env files into the process environment.
//
// Variables that are already set are not overwritten. Missing files are ignored.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, filename := range filenames {
		err := godotenv.Load(filename)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", filename, err)
		}
	}
	return nil
}

func ConfigFromEnv() (Config, error) {
	return ConfigFromEnvironment(env.ToMap(os.Environ()))
}

func ConfigFromEnvironment(environ map[string]string) (Config, error) {
	return configFromEnvironment(environ, true)
}

func SportsDataConfigFromEnv() (Config, error) {
	return SportsDataConfigFromEnvironment(env.ToMap(os.Environ()))
}

// SportsDataConfigFromEnvironment is for commands that only talk to the sportsdata API.
//
// Error reporting is not set up by those, so SENTRY_DSN is never required.
func SportsDataConfigFromEnvironment(environ map[string]string) (Config, error) {
	return configFromEnvironment(environ, false)
}

func configFromEnvironment(environ map[string]string, requireSentry bool) (Config, error) {
	missingKey := func(key string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequiredValue, key)
	}

	var raw rawConfig
	if err := env.ParseWithOptions(&raw, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	var e environment
	switch raw.Environment {
	case "production":
		e = production
	case "staging":
		e = staging
	case "development":
		e = development
	default:
		return Config{}, fmt.Errorf("%w: EPL_DATALAKE_ENVIRONMENT (%s)", ErrInvalidValue, raw.Environment)
	}

	if raw.SportsDataAPIKey == "" {
		return missingKey("SPORTS_DATA_API_KEY")
	}
	if raw.EPLEndpoint == "" {
		return missingKey("EPL_ENDPOINT")
	}
	if raw.SportsDataBaseURL == "" {
		return missingKey("SPORTS_DATA_BASE_URL")
	}
	if raw.Region == "" {
		return missingKey("AWS_REGION")
	}
	if raw.BucketName == "" {
		return missingKey("EPL_BUCKET_NAME")
	}
	if raw.GlueDatabaseName == "" {
		return missingKey("EPL_GLUE_DATABASE")
	}
	if raw.AthenaDatabaseName == "" {
		return missingKey("EPL_ATHENA_DATABASE")
	}

	if raw.TeamDelay < 0 {
		return Config{}, fmt.Errorf("%w: EPL_TEAM_DELAY (%s)", ErrInvalidValue, raw.TeamDelay)
	}
	if raw.BucketSettleDelay < 0 {
		return Config{}, fmt.Errorf("%w: EPL_BUCKET_SETTLE_DELAY (%s)", ErrInvalidValue, raw.BucketSettleDelay)
	}

	if requireSentry && (e == production || e == staging) {
		if raw.SentryDSN == "" {
			return missingKey("SENTRY_DSN")
		}
	}

	return Config{
		sportsDataAPIKey:   raw.SportsDataAPIKey,
		eplEndpoint:        raw.EPLEndpoint,
		sportsDataBaseURL:  raw.SportsDataBaseURL,
		region:             raw.Region,
		bucketName:         raw.BucketName,
		glueDatabaseName:   raw.GlueDatabaseName,
		athenaDatabaseName: raw.AthenaDatabaseName,
		teamDelay:          raw.TeamDelay,
		bucketSettleDelay:  raw.BucketSettleDelay,
		sentryDSN:          raw.SentryDSN,
		otlpEndpoint:       raw.OTLPEndpoint,
		env:                e,
	}, nil
}
