package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const defaultKavenegarBaseURL = "https://api.kavenegar.com"

var (
	// ErrMissingAPIKey is returned by NewKavenegar without an API key.
	ErrMissingAPIKey = errors.New("sms: kavenegar api key is required")

	errGateway = errors.New("sms: gateway rejected message")
)

// Kavenegar sends SMS through https://api.kavenegar.com.
type Kavenegar struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	senderLine string
	region     string
	maxRetries uint64
}

type kavenegarResponse struct {
	Return struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"return"`
}

// NewKavenegar creates a Kavenegar sender.
func NewKavenegar(cfg Config) (*Kavenegar, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultKavenegarBaseURL
	}

	return &Kavenegar{
		client:     client,
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		senderLine: cfg.SenderLine,
		region:     cfg.Region,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Send delivers text to phone. Server-side gateway failures are retried with backoff;
// any final failure is logged and reported as false.
func (k *Kavenegar) Send(ctx context.Context, phone, text string) bool {
	receptor := FormatE164(phone, k.region)

	b := retry.WithMaxRetries(k.maxRetries, retry.NewExponential(200*time.Millisecond))
	b = retry.WithCappedDuration(2*time.Second, b)

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		return k.send(ctx, receptor, text)
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to send sms via kavenegar", "receptor", Mask(receptor), "error", err)
		return false
	}

	return true
}

func (k *Kavenegar) send(ctx context.Context, receptor, text string) error {
	form := url.Values{}
	form.Set("receptor", receptor)
	form.Set("message", text)
	if k.senderLine != "" {
		form.Set("sender", k.senderLine)
	}

	endpoint := fmt.Sprintf("%s/v1/%s/sms/send.json", k.baseURL, url.PathEscape(k.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := k.client.Do(req)
	if err != nil {
		return retry.RetryableError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return retry.RetryableError(err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return retry.RetryableError(fmt.Errorf("%w: http status %d", errGateway, resp.StatusCode))
	}

	var out kavenegarResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("%w: http status %d: unreadable body", errGateway, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK || out.Return.Status != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", errGateway, out.Return.Status, out.Return.Message)
	}

	return nil
}
