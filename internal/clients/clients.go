// Package clients fetches dashboard inputs (datasets and chart pages) over
// HTTP.
package clients

import (
	"time"

	"resty.dev/v3"
)

type HTTPClientOptions struct {
	RetryCount       int           `yaml:"retry_count"`
	RetryWaitTime    time.Duration `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration `yaml:"retry_max_wait_time"`
	TimeOut          time.Duration `yaml:"timeout"`
	UserAgent        string        `yaml:"user_agent"`
	// BaseURL resolves relative sources.
	BaseURL string `yaml:"base_url"`
}

func DefaultHTTPClientOptions() *HTTPClientOptions {
	return &HTTPClientOptions{
		RetryCount:       3,
		RetryWaitTime:    time.Second,
		RetryMaxWaitTime: 5 * time.Second,
		TimeOut:          30 * time.Second,
		UserAgent:        "mobilitywatch/1.0",
	}
}

type Client struct {
	Client  *resty.Client
	baseURL string
}

func NewClient(t *HTTPClientOptions) *Client {
	if t == nil {
		t = DefaultHTTPClientOptions()
	}
	client := resty.New().
		SetRetryCount(t.RetryCount).
		SetRetryWaitTime(t.RetryWaitTime).
		SetRetryMaxWaitTime(t.RetryMaxWaitTime).
		SetTimeout(t.TimeOut).
		SetHeader("User-Agent", t.UserAgent)

	return &Client{
		Client:  client,
		baseURL: t.BaseURL,
	}
}

func (c *Client) Close() error {
	return c.Client.Close()
}
