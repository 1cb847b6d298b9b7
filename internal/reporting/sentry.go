package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/Amund211/epl-datalake/internal/config"
	"github.com/Amund211/epl-datalake/internal/logging"
	"github.com/getsentry/sentry-go"
)

var apiKeyRx = regexp.MustCompile(`([?&]key=)[^&"\s]+`)
var hostRx = regexp.MustCompile(`\[:{0,2}([0-9a-f]{0,4}:?){1,8}\]:\d+`)
var requestIDRx = regexp.MustCompile(`(RequestID|request id): [0-9A-Za-z-]+`)

func sanitizeError(err string) string {
	err = apiKeyRx.ReplaceAllString(err, "${1}<key>")
	err = hostRx.ReplaceAllString(err, "<host>")
	err = requestIDRx.ReplaceAllString(err, "${1}: <id>")
	return err
}

func Report(ctx context.Context, err error, extras ...map[string]string) {
	hub := sentry.GetHubFromContext(ctx)
	logger := logging.FromContext(ctx)

	if err == nil {
		err = errors.New("No error provided")
	}

	if hub == nil {
		logger.WarnContext(ctx, "Failed to get Sentry hub from context", slog.String("error", sanitizeError(err.Error())), slog.Any("extras", extras))
		return
	}

	logger.ErrorContext(
		ctx,
		"Reporting error to Sentry",
		slog.String("error", sanitizeError(err.Error())),
		slog.Any("extras", extras),
	)

	hub.WithScope(func(scope *sentry.Scope) {
		meta := MetaFromContext(ctx)
		scope.SetTags(meta.tags)
		for key, value := range meta.extras {
			scope.SetExtra(key, value)
		}
		if !meta.startedAt.IsZero() {
			scope.SetExtra("secondsSinceStart", time.Since(meta.startedAt).Seconds())
		}

		for _, extra := range extras {
			if extra == nil {
				continue
			}
			for key, value := range extra {
				scope.SetExtra(key, value)
			}
		}

		scope.SetFingerprint([]string{"{{ default }}", sanitizeError(err.Error())})
		hub.CaptureException(err)
	})
}

// AddHubToContext attaches a fresh Sentry hub to the context. Report is a no-op without one.
func AddHubToContext(ctx context.Context) context.Context {
	return sentry.SetHubOnContext(ctx, sentry.CurrentHub().Clone())
}

func InitSentry(sentryDSN string, environment string) (func(), error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              sentryDSN,
		Environment:      environment,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		return nil, err
	}

	flush := func() {
		sentry.Flush(5 * time.Second)
	}

	return flush, nil
}

// NewSentryOrMock initializes Sentry if a DSN is configured.
//
// The returned bool tells whether errors will actually be sent.
func NewSentryOrMock(config config.Config) (func(), bool, error) {
	environment := "development"
	switch {
	case config.IsProduction():
		environment = "production"
	case config.IsStaging():
		environment = "staging"
	}

	if config.SentryDSN() != "" {
		flush, err := InitSentry(config.SentryDSN(), environment)
		if err != nil {
			return nil, false, err
		}
		return flush, true, nil
	}

	if config.IsDevelopment() {
		return func() {}, false, nil
	}

	return nil, false, fmt.Errorf("Missing Sentry DSN in non-development environment")
}
