// Package pixellab is a client for the text-to-image generation provider.
package pixellab

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

type Service struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     zerolog.Logger
}

func (s *Service) LoggerComponent() string {
	return "Pixellab.Service"
}

type ServiceOption func(*Service)

func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

func WithHTTPClient(c *http.Client) ServiceOption {
	return func(s *Service) {
		s.httpClient = c
	}
}

func NewService(apiURL, apiKey string, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		logger:     log.Logger,
	}

	for _, o := range opts {
		o(s)
	}

	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: s.LoggerComponent(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	s.logger = s.logger.With().Str("component", s.LoggerComponent()).Logger()

	return s, nil
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type RemoteError struct {
	ResponseBody string
	StatusCode   int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("provider responded %d: %s", e.StatusCode, e.ResponseBody)
}

// Generate renders the prompt and returns the image as a base64 data URL,
// ready to hand straight to a browser.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	l := s.logger.With().Str("method", "Generate").Logger()

	rawJSON, err := json.Marshal(&generateRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("json encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/text-to-image", bytes.NewReader(rawJSON))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	req.Header.Add("x-api-key", s.apiKey)
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "image/png")

	l.Debug().Msg("Doing request")

	res, err := s.breaker.Execute(func() (interface{}, error) {
		return s.httpClient.Do(req)
	})
	if err != nil {
		l.Error().Err(err).Msg("Call failed")
		return "", fmt.Errorf("do request: %w", err)
	}

	resp := res.(*http.Response)
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("body read: %w", err)
	}

	if resp.StatusCode >= 400 {
		l.Error().
			Int("http_status", resp.StatusCode).
			Str("http_body", string(body)).
			Msg("Provider responded with error")
		return "", &RemoteError{ResponseBody: string(body), StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	l.Debug().Int("image_bytes", len(body)).Msg("Generate success")

	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(body)), nil
}
