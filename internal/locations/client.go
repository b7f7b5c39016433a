package locations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("postcode not found")

// PostcodeResult is the subset of a postcodes.io lookup we keep
type PostcodeResult struct {
	Postcode      string  `json:"postcode"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	AdminDistrict string  `json:"admin_district"`
}

func (r *PostcodeResult) Point() orb.Point {
	return orb.Point{r.Longitude, r.Latitude}
}

type lookupResponse struct {
	Status int             `json:"status"`
	Result *PostcodeResult `json:"result"`
}

type autocompleteResponse struct {
	Status int      `json:"status"`
	Result []string `json:"result"`
}

// Client talks to a postcodes.io compatible API
type Client struct {
	logger  *logrus.Logger
	baseURL string
	client  *http.Client
}

func NewClient(logger *logrus.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Lookup fetches a single postcode. A 404 from the service is reported as ErrNotFound.
func (c *Client) Lookup(ctx context.Context, postcode string) (*PostcodeResult, error) {
	endpoint := fmt.Sprintf("%s/postcodes/%s", c.baseURL, url.PathEscape(postcode))

	var body lookupResponse
	status, err := c.get(ctx, endpoint, &body)
	if err != nil {
		c.logger.WithError(err).WithField("postcode", postcode).Warn("Postcode lookup failed")
		return nil, err
	}

	if status == http.StatusNotFound {
		c.logger.WithField("postcode", postcode).Debug("Postcode not found")
		return nil, ErrNotFound
	}
	if status != http.StatusOK || body.Status != http.StatusOK || body.Result == nil {
		c.logger.WithFields(logrus.Fields{
			"postcode": postcode,
			"status":   status,
		}).Warn("Unexpected postcode lookup response")
		return nil, fmt.Errorf("postcode lookup returned status %d", status)
	}

	c.logger.WithFields(logrus.Fields{
		"postcode":  body.Result.Postcode,
		"latitude":  body.Result.Latitude,
		"longitude": body.Result.Longitude,
		"source":    "postcodes",
	}).Debug("Resolved postcode")

	return body.Result, nil
}

// Autocomplete returns postcodes starting with query. Queries shorter than two
// characters return nothing without calling the service.
func (c *Client) Autocomplete(ctx context.Context, query string) ([]string, error) {
	if len(query) < 2 {
		return []string{}, nil
	}

	endpoint := fmt.Sprintf("%s/postcodes/%s/autocomplete", c.baseURL, url.PathEscape(query))

	var body autocompleteResponse
	status, err := c.get(ctx, endpoint, &body)
	if err != nil {
		c.logger.WithError(err).WithField("query", query).Warn("Postcode autocomplete failed")
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("postcode autocomplete returned status %d", status)
	}

	if body.Result == nil {
		return []string{}, nil
	}
	return body.Result, nil
}

// get decodes the JSON body into out when the response is a 200
func (c *Client) get(ctx context.Context, endpoint string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
	}
	return resp.StatusCode, nil
}
