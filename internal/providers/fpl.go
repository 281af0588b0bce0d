// Package providers implements clients for the external data sources the
// application consumes. The core packages never import this; raw records are
// materialized here and handed to the catalog.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// FPLClient fetches player, team, and fixture data from the Fantasy Premier
// League API. Requests are rate limited and wrapped in a circuit breaker so
// a struggling upstream fails fast instead of piling up.
type FPLClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

// NewFPLClient creates a new FPL API client.
func NewFPLClient(baseURL string, timeout time.Duration, requestsPerSec float64, logger *logrus.Logger) *FPLClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "fpl-api",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &FPLClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		breaker: breaker,
		logger:  logger,
	}
}

// Bootstrap is the bootstrap-static payload: every player, club, position
// type, and gameweek event for the season.
type Bootstrap struct {
	Elements     []Element     `json:"elements"`
	Teams        []Team        `json:"teams"`
	ElementTypes []ElementType `json:"element_types"`
	Events       []Event       `json:"events"`
}

// Element is one raw player row. Several numeric fields arrive as strings.
type Element struct {
	ID          int    `json:"id"`
	WebName     string `json:"web_name"`
	Team        int    `json:"team"`
	ElementType int    `json:"element_type"`
	NowCost     int    `json:"now_cost"` // tenths of a million
	Status      string `json:"status"`
	Form        string `json:"form"`
	EPNext      string `json:"ep_next"`
	ICTIndex    string `json:"ict_index"`
	Minutes     int    `json:"minutes"`
	EventPoints int    `json:"event_points"`
}

type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

type ElementType struct {
	ID                int    `json:"id"`
	SingularNameShort string `json:"singular_name_short"`
}

type Event struct {
	ID        int  `json:"id"`
	IsCurrent bool `json:"is_current"`
	IsNext    bool `json:"is_next"`
	Finished  bool `json:"finished"`
}

// Fixture is one match row from the fixtures endpoint. Event is nil for
// unscheduled fixtures.
type Fixture struct {
	ID    int  `json:"id"`
	Event *int `json:"event"`
	TeamH int  `json:"team_h"`
	TeamA int  `json:"team_a"`
}

// GetBootstrap fetches the bootstrap-static payload.
func (c *FPLClient) GetBootstrap(ctx context.Context) (*Bootstrap, error) {
	var bootstrap Bootstrap
	url := fmt.Sprintf("%s/bootstrap-static/", c.baseURL)
	if err := c.getJSON(ctx, url, &bootstrap); err != nil {
		return nil, fmt.Errorf("failed to fetch bootstrap data: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"players": len(bootstrap.Elements),
		"teams":   len(bootstrap.Teams),
		"events":  len(bootstrap.Events),
	}).Debug("Fetched FPL bootstrap data")

	return &bootstrap, nil
}

// GetFixtures fetches the fixtures scheduled for one gameweek.
func (c *FPLClient) GetFixtures(ctx context.Context, gameweek int) ([]Fixture, error) {
	var fixtures []Fixture
	url := fmt.Sprintf("%s/fixtures/?event=%d", c.baseURL, gameweek)
	if err := c.getJSON(ctx, url, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to fetch fixtures for gameweek %d: %w", gameweek, err)
	}
	return fixtures, nil
}

func (c *FPLClient) getJSON(ctx context.Context, url string, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
		}

		var decoded json.RawMessage
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return nil, fmt.Errorf("failed to decode response from %s: %w", url, err)
		}
		return decoded, nil
	})
	if err != nil {
		return err
	}

	return json.Unmarshal(body.(json.RawMessage), dest)
}

// CurrentGameweek returns the current event, falling back to the next event
// during the pre-deadline window, and whether it has finished.
func (b *Bootstrap) CurrentGameweek() (int, bool) {
	for _, ev := range b.Events {
		if ev.IsCurrent {
			return ev.ID, ev.Finished
		}
	}
	for _, ev := range b.Events {
		if ev.IsNext {
			return ev.ID, false
		}
	}
	return 0, false
}
