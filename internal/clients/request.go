package clients

import (
	"context"
	"fmt"
	"net/http"

	logger "github.com/pwnholic/mobilitywatch/internal"
	"github.com/pwnholic/mobilitywatch/internal/dataset"
	"github.com/pwnholic/mobilitywatch/internal/visual"
)

func statusCode(status int) (bool, string) {
	switch status {
	case http.StatusTooManyRequests:
		return true, "rate limited: Too Many Requests (429)"
	case http.StatusForbidden:
		return true, "blocked: Forbidden (403)"
	case http.StatusServiceUnavailable:
		return true, "unavailable: Service Unavailable (503)"
	}
	return false, ""
}

// Get downloads rawURL (resolved against the base URL when relative) and
// returns the body with its content type. Non-2xx responses are errors.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	target, err := completeURL(rawURL, c.baseURL)
	if err != nil {
		return nil, "", err
	}

	response, err := c.Client.R().SetContext(ctx).Get(target)
	if err != nil {
		logger.Error("Failed to fetch URL %s: %s", target, err.Error())
		return nil, "", err
	}

	if blocked, reason := statusCode(response.StatusCode()); blocked {
		logger.Warn("BLOCKED: %s", reason)
	}
	if response.IsError() {
		return nil, "", fmt.Errorf("fetching %s: %s", target, response.Status())
	}

	body := response.Bytes()
	logger.Debug("Fetched %d bytes from %s", len(body), target)
	return body, response.Header().Get("Content-Type"), nil
}

// FetchDataset downloads and parses a dataset file.
func (c *Client) FetchDataset(ctx context.Context, rawURL string) (*dataset.Dataset, error) {
	body, contentType, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	d, err := dataset.Parse(body, datasetExt(rawURL, contentType))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rawURL, err)
	}
	return d, nil
}

// FetchMarkup downloads a page holding a rendered chart. The content type
// is kept so the markup is decoded with the right charset.
func (c *Client) FetchMarkup(ctx context.Context, rawURL string) (*visual.Markup, error) {
	body, contentType, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return &visual.Markup{Label: rawURL, HTML: body, ContentType: contentType}, nil
}
