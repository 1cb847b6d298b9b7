package sportsdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Amund211/epl-datalake/internal/domain"
	"github.com/Amund211/epl-datalake/internal/logging"
	"github.com/Amund211/epl-datalake/internal/ratelimiting"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

// Only used in error messages
const maxErrorBodyLength = 512

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned when the API responds with a non-2xx status code
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("sportsdata API returned status code %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("sportsdata API returned status code %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return domain.ErrBadRequest
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusTooManyRequests,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return domain.ErrTemporarilyUnavailable
	}
	return nil
}

// StatusCodeOf returns the status code of a StatusError in err's chain, or -1
func StatusCodeOf(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return -1
}

type sportsDataMetricsCollection struct {
	requestCount metric.Int64Counter
	duration     metric.Float64Histogram
}

func setupSportsDataMetrics(meter metric.Meter) (sportsDataMetricsCollection, error) {
	requestCount, err := meter.Int64Counter("sportsdata/request_count")
	if err != nil {
		return sportsDataMetricsCollection{}, fmt.Errorf("failed to create request count metric: %w", err)
	}

	duration, err := meter.Float64Histogram("sportsdata/request_duration", metric.WithUnit("s"))
	if err != nil {
		return sportsDataMetricsCollection{}, fmt.Errorf("failed to create request duration metric: %w", err)
	}

	return sportsDataMetricsCollection{
		requestCount: requestCount,
		duration:     duration,
	}, nil
}

type Client struct {
	httpClient    HttpClient
	limiter       ratelimiting.RequestLimiter
	apiKey        string
	teamsEndpoint string
	baseURL       string

	metrics sportsDataMetricsCollection
	tracer  trace.Tracer
}

func NewClient(httpClient HttpClient, limiter ratelimiting.RequestLimiter, apiKey, teamsEndpoint, baseURL string) (*Client, error) {
	const name = "epl-datalake/sportsdata"

	if apiKey == "" {
		return nil, fmt.Errorf("missing sportsdata API key")
	}
	if teamsEndpoint == "" {
		return nil, fmt.Errorf("missing teams endpoint")
	}

	meter := otel.Meter(name)
	tracer := otel.Tracer(name)

	metrics, err := setupSportsDataMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	return &Client{
		httpClient:    httpClient,
		limiter:       limiter,
		apiKey:        apiKey,
		teamsEndpoint: teamsEndpoint,
		baseURL:       strings.TrimSuffix(baseURL, "/"),

		metrics: metrics,
		tracer:  tracer,
	}, nil
}

func (c *Client) GetTeams(ctx context.Context) ([]domain.Team, error) {
	ctx, span := c.tracer.Start(ctx, "SportsData.GetTeams")
	defer span.End()

	data, err := c.get(ctx, "teams", c.teamsEndpoint)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var teams []domain.Team
	if err := json.Unmarshal(data, &teams); err != nil {
		err := fmt.Errorf("failed to parse teams response: %w", err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("team_count", len(teams)))

	return teams, nil
}

// The roster endpoint for a team. The key is also passed as a query parameter, as the API accepts either.
func (c *Client) playersURL(teamID int) string {
	query := url.Values{}
	query.Set("key", c.apiKey)
	return fmt.Sprintf("%s/PlayersByTeamBasic/EPL/%d?%s", c.baseURL, teamID, query.Encode())
}

// GetPlayersByTeam returns the roster of the given team as reported by the API.
//
// The Team field of the returned players is not set.
func (c *Client) GetPlayersByTeam(ctx context.Context, teamID int) ([]domain.Player, error) {
	ctx, span := c.tracer.Start(ctx, "SportsData.GetPlayersByTeam", trace.WithAttributes(attribute.Int("team_id", teamID)))
	defer span.End()

	data, err := c.get(ctx, "players", c.playersURL(teamID))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var players []domain.Player
	if err := json.Unmarshal(data, &players); err != nil {
		err := fmt.Errorf("failed to parse players response for team %d: %w", teamID, err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("player_count", len(players)))

	return players, nil
}

func (c *Client) get(ctx context.Context, endpoint string, rawURL string) ([]byte, error) {
	logger := logging.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(subscriptionKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTemporarilyUnavailable, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordRequest(ctx, endpoint, -1, start)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordRequest(ctx, endpoint, resp.StatusCode, start)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	c.recordRequest(ctx, endpoint, resp.StatusCode, start)

	logger.InfoContext(ctx, "sportsdata request completed", "endpoint", endpoint, "status", resp.StatusCode, "duration", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := string(data)
		if len(body) > maxErrorBodyLength {
			body = body[:maxErrorBodyLength]
		}
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        redactURL(req.URL),
			Body:       strings.TrimSpace(body),
		}
	}

	return data, nil
}

func (c *Client) recordRequest(ctx context.Context, endpoint string, statusCode int, start time.Time) {
	attrs := metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status_code", strconv.Itoa(statusCode)),
	)
	c.metrics.requestCount.Add(ctx, 1, attrs)
	c.metrics.duration.Record(ctx, time.Since(start).Seconds(), attrs)
}

// Strip the API key from the query so the URL can be logged
func redactURL(u *url.URL) string {
	redacted := *u
	query := redacted.Query()
	if !query.Has("key") {
		return redacted.String()
	}
	query.Del("key")
	redacted.RawQuery = "key=<key>"
	if rest := query.Encode(); rest != "" {
		redacted.RawQuery = rest + "&" + redacted.RawQuery
	}
	return redacted.String()
}
