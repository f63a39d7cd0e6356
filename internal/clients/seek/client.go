package seek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/maxaizer/seekret-bot/internal/entities"
	"github.com/maxaizer/seekret-bot/internal/logger"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const searchURL = "https://www.seek.com.au/api/jobsearch/v5/search"

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrMalformedListing = errors.New("malformed listing")
)

var browserHeaders = map[string]string{
	"accept":               "application/json, text/plain, */*",
	"accept-language":      "en-US,en;q=0.9,en-AU;q=0.8",
	"priority":             "u=1, i",
	"sec-ch-ua":            `"Microsoft Edge";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
	"sec-ch-ua-mobile":     "?0",
	"sec-ch-ua-platform":   `"Windows"`,
	"sec-fetch-dest":       "empty",
	"sec-fetch-mode":       "cors",
	"sec-fetch-site":       "same-origin",
	"seek-request-brand":   "seek",
	"seek-request-country": "AU",
	"x-seek-site":          "Chalice",
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
	parameters  SearchParameters
}

func NewClient(parameters SearchParameters) *Client {
	return &Client{httpClient: &http.Client{}, parameters: parameters}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

// Fetch returns the current page of listings. Any failure is logged and
// reported as an empty page, so callers treat it like a quiet cycle.
func (c *Client) Fetch(ctx context.Context) []entities.Listing {
	listings, err := c.Search(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeSourceApi).
				Errorf("error fetching listings: %v", err)
		}
		return nil
	}
	return listings
}

// Search fetches one page and converts it. Malformed listings are skipped.
func (c *Client) Search(ctx context.Context) ([]entities.Listing, error) {

	if err := c.parameters.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	body, err := c.sendRequest(ctx, http.MethodGet, searchURL+"?"+c.parameters.ToUrlParams().Encode(), nil)
	if err != nil {
		return nil, err
	}

	var response searchResponse
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&response); err != nil {
		return nil, fmt.Errorf("error decoding JSON response: %w", err)
	}

	listings := make([]entities.Listing, 0, len(response.Data))
	for _, raw := range response.Data {
		listing, err := raw.toListing()
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeSourceApi).
				Warnf("skipping listing: %v", err)
			continue
		}
		if listing.PostedAt, err = raw.postedAt(); err != nil {
			log.Warnf("listing %s has unparseable date %q", raw.ID, raw.ListingDate)
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func (c *Client) sendRequest(ctx context.Context, method string, url string, body io.Reader) ([]byte, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	for key, value := range browserHeaders {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(ErrUnexpectedStatus, "status %d, body: %.200s", resp.StatusCode, string(body))
	}

	return body, nil
}
