// Package openf1 fetches sessions, meetings, drivers and positions from the
// OpenF1 REST API and converts them into validated model types.
package openf1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"f1livebot/pkg/model"
	"f1livebot/pkg/telemetry"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://api.openf1.org/v1/"

	pathSessions  = "sessions"
	pathMeetings  = "meetings"
	pathDrivers   = "drivers"
	pathPositions = "position"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// get decodes the JSON array served at path into v. A 404 is reported as
// found=false: OpenF1 answers "No results found" that way.
func (c *Client) get(ctx context.Context, path string, query url.Values, v any) (found bool, err error) {
	u := strings.TrimRight(c.BaseURL, "/") + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, errors.Wrapf(err, "building request for %s", path)
	}

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	telemetry.ObserveFetch(path, time.Since(start))
	if err != nil {
		return false, errors.Wrapf(err, "requesting %s", path)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.WithError(err).Warn("failed to close response body")
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, errors.Errorf("requesting %s: unexpected status %s", path, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, errors.Wrapf(err, "reading %s response", path)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return false, model.NewDataError("decoding %s response: %s", path, err)
	}
	return true, nil
}

// LatestSession returns the most recent session known to OpenF1.
func (c *Client) LatestSession(ctx context.Context) (model.Session, error) {
	var sessions []apiSession
	found, err := c.get(ctx, pathSessions, url.Values{"session_key": {"latest"}}, &sessions)
	if err != nil {
		return model.Session{}, err
	}
	if !found || len(sessions) == 0 {
		return model.Session{}, model.NewDataError("no latest session available")
	}
	// several entries can be returned while a session is being replaced
	latest := sessions[len(sessions)-1]
	return latest.toModel()
}

func (c *Client) Meeting(ctx context.Context, meetingKey int) (model.Meeting, error) {
	var meetings []apiMeeting
	found, err := c.get(ctx, pathMeetings, url.Values{"meeting_key": {fmt.Sprint(meetingKey)}}, &meetings)
	if err != nil {
		return model.Meeting{}, err
	}
	if !found || len(meetings) == 0 {
		return model.Meeting{}, model.NewDataError("meeting %d not found", meetingKey)
	}
	return meetings[0].toModel()
}

// Drivers returns the session roster ordered by car number.
func (c *Client) Drivers(ctx context.Context, sessionKey int) ([]model.Driver, error) {
	var drivers []apiDriver
	_, err := c.get(ctx, pathDrivers, url.Values{"session_key": {fmt.Sprint(sessionKey)}}, &drivers)
	if err != nil {
		return nil, err
	}

	seen := map[int]bool{}
	roster := make([]model.Driver, 0, len(drivers))
	for _, d := range drivers {
		driver, err := d.toModel()
		if err != nil {
			return nil, err
		}
		if seen[driver.Number] {
			continue
		}
		seen[driver.Number] = true
		roster = append(roster, driver)
	}
	sort.Slice(roster, func(i, j int) bool {
		return roster[i].Number < roster[j].Number
	})
	return roster, nil
}

// LatestPositions returns the last known position of every driver in the
// session, attached to its roster entry.
func (c *Client) LatestPositions(ctx context.Context, sessionKey int, drivers []model.Driver) (model.Snapshot, error) {
	var positions []apiPosition
	_, err := c.get(ctx, pathPositions, url.Values{"session_key": {fmt.Sprint(sessionKey)}}, &positions)
	if err != nil {
		return nil, err
	}
	return latestSnapshot(positions, drivers)
}

func latestSnapshot(positions []apiPosition, drivers []model.Driver) (model.Snapshot, error) {
	roster := make(map[int]*model.Driver, len(drivers))
	for i := range drivers {
		roster[drivers[i].Number] = &drivers[i]
	}

	records := make([]model.PositionRecord, 0, len(positions))
	for _, p := range positions {
		r, err := p.toModel()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	latest := map[int]model.PositionRecord{}
	for _, r := range records {
		latest[r.DriverNumber] = r
	}

	snapshot := make(model.Snapshot, 0, len(latest))
	for number, r := range latest {
		driver, found := roster[number]
		if !found {
			return nil, model.NewLookupError(number, "driver %d is not in the session roster", number)
		}
		r.Driver = driver
		snapshot = append(snapshot, r)
	}
	return snapshot.Sorted(), nil
}
