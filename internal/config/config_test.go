package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Amund211/epl-datalake/internal/config"
	"github.com/stretchr/testify/require"
)

func baseEnvironment() map[string]string {
	return map[string]string{
		"SPORTS_DATA_API_KEY": "apikey",
		"EPL_ENDPOINT":        "https://api.sportsdata.io/v4/soccer/scores/json/Teams/EPL",
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		conf, err := config.ConfigFromEnvironment(baseEnvironment())
		require.NoError(t, err)

		require.Equal(t, "apikey", conf.SportsDataAPIKey())
		require.Equal(t, "https://api.sportsdata.io/v4/soccer/scores/json/Teams/EPL", conf.EPLEndpoint())
		require.Equal(t, "https://api.sportsdata.io/v4/soccer/scores/json", conf.SportsDataBaseURL())
		require.Equal(t, "eu-central-1", conf.Region())
		require.Equal(t, "sarps-epl-analytics-data-lake", conf.BucketName())
		require.Equal(t, "sarps-glue-epl-data-lake", conf.GlueDatabaseName())
		require.Equal(t, "epl_analytics", conf.AthenaDatabaseName())
		require.Equal(t, 1*time.Second, conf.TeamDelay())
		require.Equal(t, 5*time.Second, conf.BucketSettleDelay())
		require.Equal(t, "", conf.SentryDSN())
		require.Equal(t, "", conf.OTLPEndpoint())
		require.True(t, conf.IsDevelopment())
		require.False(t, conf.IsStaging())
		require.False(t, conf.IsProduction())

		require.Equal(t, "raw-data/epl_player_data.jsonl", conf.PlayerDataKey())
		require.Equal(t, "s3://sarps-epl-analytics-data-lake/raw-data/", conf.RawDataLocation())
		require.Equal(t, "s3://sarps-epl-analytics-data-lake/athena-results/", conf.AthenaOutputLocation())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Parallel()

		environ := baseEnvironment()
		environ["SPORTS_DATA_BASE_URL"] = "http://localhost:1234"
		environ["AWS_REGION"] = "us-east-1"
		environ["EPL_BUCKET_NAME"] = "my-bucket"
		environ["EPL_GLUE_DATABASE"] = "my-glue-db"
		environ["EPL_ATHENA_DATABASE"] = "my_athena_db"
		environ["EPL_TEAM_DELAY"] = "250ms"
		environ["EPL_BUCKET_SETTLE_DELAY"] = "0s"
		environ["EPL_DATALAKE_ENVIRONMENT"] = "production"
		environ["SENTRY_DSN"] = "https://public@sentry.example.com/1"
		environ["OTEL_EXPORTER_OTLP_ENDPOINT"] = "localhost:4317"

		conf, err := config.ConfigFromEnvironment(environ)
		require.NoError(t, err)

		require.Equal(t, "http://localhost:1234", conf.SportsDataBaseURL())
		require.Equal(t, "us-east-1", conf.Region())
		require.Equal(t, "my-bucket", conf.BucketName())
		require.Equal(t, "my-glue-db", conf.GlueDatabaseName())
		require.Equal(t, "my_athena_db", conf.AthenaDatabaseName())
		require.Equal(t, 250*time.Millisecond, conf.TeamDelay())
		require.Equal(t, time.Duration(0), conf.BucketSettleDelay())
		require.Equal(t, "https://public@sentry.example.com/1", conf.SentryDSN())
		require.Equal(t, "localhost:4317", conf.OTLPEndpoint())
		require.True(t, conf.IsProduction())
		require.Equal(t, "s3://my-bucket/athena-results/", conf.AthenaOutputLocation())
	})

	t.Run("missing secrets", func(t *testing.T) {
		t.Parallel()

		for _, key := range []string{"SPORTS_DATA_API_KEY", "EPL_ENDPOINT"} {
			t.Run(key, func(t *testing.T) {
				t.Parallel()

				t.Run("unset", func(t *testing.T) {
					t.Parallel()

					environ := baseEnvironment()
					delete(environ, key)

					_, err := config.ConfigFromEnvironment(environ)
					require.ErrorIs(t, err, config.ErrMissingRequiredValue)
					require.ErrorContains(t, err, key)
				})

				t.Run("empty", func(t *testing.T) {
					t.Parallel()

					environ := baseEnvironment()
					environ[key] = ""

					_, err := config.ConfigFromEnvironment(environ)
					require.ErrorIs(t, err, config.ErrMissingRequiredValue)
				})
			})
		}
	})

	t.Run("production and staging require sentry", func(t *testing.T) {
		t.Parallel()

		for _, env := range []string{"production", "staging"} {
			t.Run(env, func(t *testing.T) {
				t.Parallel()

				environ := baseEnvironment()
				environ["EPL_DATALAKE_ENVIRONMENT"] = env

				_, err := config.ConfigFromEnvironment(environ)
				require.ErrorIs(t, err, config.ErrMissingRequiredValue)
				require.ErrorContains(t, err, "SENTRY_DSN")
			})
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Parallel()

		cases := map[string]string{
			"EPL_DATALAKE_ENVIRONMENT": "prod",
			"EPL_TEAM_DELAY":           "one second",
			"EPL_BUCKET_SETTLE_DELAY":  "-5s",
		}
		for key, value := range cases {
			t.Run(key, func(t *testing.T) {
				t.Parallel()

				environ := baseEnvironment()
				environ[key] = value

				_, err := config.ConfigFromEnvironment(environ)
				require.ErrorIs(t, err, config.ErrInvalidValue)
			})
		}
	})

	t.Run("non sensitive string does not leak the api key", func(t *testing.T) {
		t.Parallel()

		environ := baseEnvironment()
		environ["SPORTS_DATA_API_KEY"] = "supersecretkey"

		conf, err := config.ConfigFromEnvironment(environ)
		require.NoError(t, err)
		require.NotContains(t, conf.NonSensitiveString(), "supersecretkey")
		require.Contains(t, conf.NonSensitiveString(), "env: development")
	})
}

func TestSportsDataConfigFromEnvironment(t *testing.T) {
	t.Parallel()

	t.Run("sentry is not required", func(t *testing.T) {
		t.Parallel()

		for _, env := range []string{"production", "staging", "development"} {
			t.Run(env, func(t *testing.T) {
				t.Parallel()

				environ := baseEnvironment()
				environ["EPL_DATALAKE_ENVIRONMENT"] = env

				conf, err := config.SportsDataConfigFromEnvironment(environ)
				require.NoError(t, err)
				require.Equal(t, "apikey", conf.SportsDataAPIKey())
				require.Equal(t, "https://api.sportsdata.io/v4/soccer/scores/json/Teams/EPL", conf.EPLEndpoint())
			})
		}
	})

	t.Run("api key and endpoint are still required", func(t *testing.T) {
		t.Parallel()

		for _, key := range []string{"SPORTS_DATA_API_KEY", "EPL_ENDPOINT"} {
			t.Run(key, func(t *testing.T) {
				t.Parallel()

				environ := baseEnvironment()
				delete(environ, key)

				_, err := config.SportsDataConfigFromEnvironment(environ)
				require.ErrorIs(t, err, config.ErrMissingRequiredValue)
				require.ErrorContains(t, err, key)
			})
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		require.NoError(t, config.LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("loads values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		err := os.WriteFile(path, []byte("EPL_DOTENV_TEST_VALUE=from-dotenv\n"), 0o600)
		require.NoError(t, err)

		t.Setenv("EPL_DOTENV_TEST_VALUE", "")
		require.NoError(t, os.Unsetenv("EPL_DOTENV_TEST_VALUE"))

		require.NoError(t, config.LoadDotEnv(path))
		require.Equal(t, "from-dotenv", os.Getenv("EPL_DOTENV_TEST_VALUE"))
	})

	t.Run("existing values are kept", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		err := os.WriteFile(path, []byte("EPL_DOTENV_TEST_VALUE=from-dotenv\n"), 0o600)
		require.NoError(t, err)

		t.Setenv("EPL_DOTENV_TEST_VALUE", "from-env")

		require.NoError(t, config.LoadDotEnv(path))
		require.Equal(t, "from-env", os.Getenv("EPL_DOTENV_TEST_VALUE"))
	})
}
