package cloudvision

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	resourcePrefix = "/api/resources"
	loginPath      = "/cvpservice/login/authenticate.do"
	logoutPath     = "/cvpservice/login/logout.do"
)

// Session is one authenticated connection to CloudVision. It is safe for
// concurrent use. Close must be called when the run is over.
type Session struct {
	cfg     Config
	base    string
	token   string
	login   bool
	client  *retryablehttp.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *zap.Logger
}

// Connect authenticates against CloudVision and returns a session. A token is
// used as is; otherwise user and password are exchanged for a session id.
// CVaaS only accepts tokens.
func Connect(ctx context.Context, cfg Config, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Token == "" {
		if cfg.IsCVaaS() {
			return nil, fmt.Errorf("%w: CVaaS requires a token", ErrAuth)
		}
		if cfg.User == "" || cfg.Password == "" {
			return nil, fmt.Errorf("%w: no token and no user/password configured", ErrAuth)
		}
	}

	s := newSession(cfg, logger)
	if cfg.Token != "" {
		s.token = cfg.Token
		return s, nil
	}

	if err := s.authenticate(ctx); err != nil {
		s.client.HTTPClient.CloseIdleConnections()
		return nil, err
	}
	return s, nil
}

func newSession(cfg Config, logger *zap.Logger) *Session {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: !cfg.Verify} //nolint:gosec // opt-in for lab CVP instances

	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{Transport: transport, Timeout: timeout}
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = leveledLogger{logger.Named("http").Sugar()}
	// Hand the final response back so its error body can be decoded.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	s := &Session{
		cfg:    cfg,
		base:   cfg.BaseURL(),
		client: client,
		logger: logger,
	}
	s.breaker = newBreaker(cfg, logger)
	return s
}

func newBreaker(cfg Config, logger *zap.Logger) *gobreaker.CircuitBreaker[[]byte] {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	timeout := time.Duration(cfg.BreakerTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "cloudvision",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Request-level errors (not found, already exists, ...) say nothing
		// about the service's health.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return !apiErr.transient()
			}
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

func (s *Session) authenticate(ctx context.Context) error {
	body, err := s.call(ctx, http.MethodPost, loginPath, nil, map[string]string{
		"userId":   s.cfg.User,
		"password": s.cfg.Password,
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
			return fmt.Errorf("%w: %s", ErrAuth, apiErr.Message)
		}
		return fmt.Errorf("failed to log in to CloudVision: %w", err)
	}

	var resp struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.SessionID == "" {
		return fmt.Errorf("%w: login response carried no session id", ErrAuth)
	}
	s.token = resp.SessionID
	s.login = true
	s.logger.Debug("Logged in to CloudVision", zap.String("user", s.cfg.User))
	return nil
}

// Close logs out of a password session and releases idle connections.
func (s *Session) Close() error {
	var result *multierror.Error
	if s.login {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.call(ctx, http.MethodPost, logoutPath, nil, nil); err != nil {
			result = multierror.Append(result, fmt.Errorf("logout: %w", err))
		}
		s.login = false
	}
	s.client.HTTPClient.CloseIdleConnections()
	return result.ErrorOrNil()
}

// call performs one request through the circuit breaker and returns the body
// of a successful response.
func (s *Session) call(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	target := s.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var raw []byte
	if payload != nil {
		var err error
		if raw, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	return s.breaker.Execute(func() ([]byte, error) {
		var body any
		if raw != nil {
			body = raw
		}
		req, err := retryablehttp.NewRequestWithContext(ctx, method, target, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if raw != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if s.token != "" {
			req.Header.Set("Authorization", "Bearer "+s.token)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: reading response: %w", method, path, err)
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, parseError(resp.StatusCode, data)
		}
		return data, nil
	})
}

// envelope is one line of a Resource API stream.
type envelope[T any] struct {
	Result *struct {
		Value T `json:"value"`
	} `json:"result"`
	Error *rpcStatus `json:"error"`
}

// getAll reads every object of a Resource API "all" stream. The stream is a
// sequence of JSON objects, usually one per line; an error object aborts it.
func getAll[T any](ctx context.Context, s *Session, resource string) ([]T, error) {
	data, err := s.call(ctx, http.MethodGet, resourcePrefix+"/"+resource+"/all", nil, nil)
	if err != nil {
		return nil, err
	}

	var out []T
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var line envelope[T]
		if err := dec.Decode(&line); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decoding %s stream: %w", resource, err)
		}
		if line.Error != nil {
			return nil, &APIError{Code: line.Error.Code, Message: line.Error.Message}
		}
		if line.Result != nil {
			out = append(out, line.Result.Value)
		}
	}
	return out, nil
}

// leveledLogger adapts zap to retryablehttp.LeveledLogger.
type leveledLogger struct {
	l *zap.SugaredLogger
}

func (z leveledLogger) Error(msg string, kv ...interface{}) { z.l.Errorw(msg, kv...) }
func (z leveledLogger) Warn(msg string, kv ...interface{})  { z.l.Warnw(msg, kv...) }
func (z leveledLogger) Info(msg string, kv ...interface{})  { z.l.Debugw(msg, kv...) }
func (z leveledLogger) Debug(msg string, kv ...interface{}) { z.l.Debugw(msg, kv...) }
