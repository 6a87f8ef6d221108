package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jwalitptl/eligibility-checker/internal/model"
	"github.com/jwalitptl/eligibility-checker/pkg/logger"
)

// The scheduling API expects MM/DD/YYYY.
const schedulingDateFormat = "01/02/2006"

// SchedulingClient fetches appointments from the scheduling app.
type SchedulingClient struct {
	baseURL    string
	apiKey     string
	siteID     int
	httpClient *http.Client
	logger     *logger.Logger
}

func NewSchedulingClient(opts Options, customerSiteID int, logger *logger.Logger) *SchedulingClient {
	return &SchedulingClient{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		siteID:     customerSiteID,
		httpClient: newHTTPClient(opts.Timeout),
		logger:     logger,
	}
}

type appointmentsResponse struct {
	Body struct {
		Data        []model.Appointment `json:"Data"`
		RecordCount int                 `json:"RecordCount"`
	} `json:"body"`
}

// FetchAppointments queries the appointment list for a date range. Transport
// and HTTP failures are returned as errors; a malformed body is treated as
// zero appointments.
func (c *SchedulingClient) FetchAppointments(ctx context.Context, from, to time.Time) ([]model.Appointment, error) {
	params := url.Values{}
	params.Set("fromDate", from.Format(schedulingDateFormat))
	params.Set("toDate", to.Format(schedulingDateFormat))
	params.Set("customerSiteId", strconv.Itoa(c.siteID))

	endpoint := fmt.Sprintf("%s/api/appointments/today?%s", c.baseURL, params.Encode())

	c.logger.Info("fetching appointments",
		"from", from.Format(schedulingDateFormat),
		"to", to.Format(schedulingDateFormat),
		"customer_site_id", c.siteID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointments: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("appointment fetch returned status %d: %s", resp.StatusCode, string(snippet))
	}

	var parsed appointmentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.Error(err, "unexpected appointment response format, treating as empty")
		return nil, nil
	}

	c.logger.Info("fetched appointments",
		"count", len(parsed.Body.Data),
		"record_count", parsed.Body.RecordCount)

	return parsed.Body.Data, nil
}

// FetchToday fetches the current day's appointments.
func (c *SchedulingClient) FetchToday(ctx context.Context) ([]model.Appointment, error) {
	now := time.Now()
	return c.FetchAppointments(ctx, now, now)
}
