// Package tts synthesizes speech through an HTTP text-to-speech service.
package tts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const requestTimeout = 30 * time.Second

type Client struct {
	url  string
	http *resty.Client
}

// New builds a client for a service accepting POST {text, voice} and
// answering with MP3 bytes.
func New(url string) *Client {
	return &Client{url: url, http: resty.New().SetTimeout(requestTimeout)}
}

func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if strings.TrimSpace(c.url) == "" {
		return nil, fmt.Errorf("tts url is not configured")
	}
	r, err := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"text": text, "voice": voice}).
		Post(c.url)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	if r.IsError() {
		return nil, fmt.Errorf("tts error %s; body: %s", r.Status(), r.String())
	}
	return r.Body(), nil
}
