package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Service is an HTTP client for the payment gateway's orders API.
type Service struct {
	apiURL     string
	keyID      string
	keySecret  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     zerolog.Logger
}

func (s *Service) LoggerComponent() string {
	return "Razorpay.Service"
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

func NewService(apiURL, keyID, keySecret string, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		apiURL:     apiURL,
		keyID:      keyID,
		keySecret:  keySecret,
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

// CreateOrder registers a new order with the gateway. The receipt must be
// the transaction id so settlement can be reconciled later.
func (s *Service) CreateOrder(ctx context.Context, in *CreateOrderRequest) (*Order, error) {
	l := s.logger.With().
		Str("method", "CreateOrder").
		Str("receipt", in.Receipt).
		Logger()
	ctx = l.WithContext(ctx)

	out := &Order{}
	if err := s.genericCall(ctx, http.MethodPost, "/orders", in, out); err != nil {
		return nil, err
	}

	l.Debug().
		Str("order_id", out.ID).
		Int64("amount", out.Amount).
		Msg("CreateOrder success")

	return out, nil
}

// FetchOrder reads the current state of an order from the gateway.
func (s *Service) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	l := s.logger.With().
		Str("method", "FetchOrder").
		Str("order_id", orderID).
		Logger()
	ctx = l.WithContext(ctx)

	out := &Order{}
	if err := s.genericCall(ctx, http.MethodGet, fmt.Sprintf("/orders/%s", orderID), nil, out); err != nil {
		return nil, err
	}

	l.Debug().
		Str("order_status", out.Status).
		Msg("FetchOrder success")

	return out, nil
}

type RemoteError struct {
	ResponseBody string
	StatusCode   int
}

func NewRemoteError(responseBody string, statusCode int) *RemoteError {
	return &RemoteError{ResponseBody: responseBody, StatusCode: statusCode}
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("gateway responded %d: %s", e.StatusCode, e.ResponseBody)
}

func (s *Service) genericCall(ctx context.Context, method, endpoint string, in, out interface{}) error {
	l := zerolog.Ctx(ctx).With().Str("http_method", method).Str("endpoint", endpoint).Logger()
	ctx = l.WithContext(ctx)

	res, err := s.request(ctx, method, endpoint, in)
	if err != nil {
		l.Error().Err(err).Msg("Gateway request failed")
		return fmt.Errorf("request: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode >= 400 {
		resBody := readString(res.Body)
		l.Error().
			Int("http_status", res.StatusCode).
			Str("http_body", resBody).
			Msg("Gateway responded with error")
		return NewRemoteError(resBody, res.StatusCode)
	}

	if err := readJSON(res.Body, out); err != nil {
		return fmt.Errorf("body read: %w", err)
	}

	return nil
}

func (s *Service) request(ctx context.Context, method, endpoint string, bodyParams interface{}) (*http.Response, error) {
	fullURL := s.apiURL + endpoint
	l := zerolog.Ctx(ctx).With().Str("url", fullURL).Logger()
	l.Debug().Msg("HTTP request")

	var body []byte
	if bodyParams != nil {
		rawJSON, err := json.Marshal(bodyParams)
		if err != nil {
			return nil, fmt.Errorf("json encode: %w", err)
		}
		body = rawJSON
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	req.SetBasicAuth(s.keyID, s.keySecret)
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")

	res, err := s.breaker.Execute(func() (interface{}, error) {
		return s.httpClient.Do(req)
	})
	if err != nil {
		l.Error().Err(err).Msg("Call failed")
		return nil, fmt.Errorf("do request: %w", err)
	}

	return res.(*http.Response), nil
}
