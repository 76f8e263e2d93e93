package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"droneview/internal/core/domain"
	"droneview/internal/core/ports"
	"droneview/internal/infrastructure/monitoring"
	apperrors "droneview/pkg/errors"
	"droneview/pkg/tracing"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Config carries the two base URLs of the backend pair: the control
// backend (auth, drones, users) and the inference backend (predict,
// latest image, history).
type Config struct {
	ControlBaseURL   string
	InferenceBaseURL string
	Timeout          time.Duration
}

// Client is the HTTP transport to the monitoring backends. It injects
// the bearer token on every control-plane request, decodes the response
// envelope, and fires the unauthorized hook on any HTTP 401 so the
// session can be torn down globally.
type Client struct {
	http    *fasthttp.Client
	cfg     Config
	tokens  ports.TokenSource
	metrics *monitoring.PrometheusCollector
	logger  *zap.Logger

	mu             sync.RWMutex
	onUnauthorized func()
}

var _ ports.Backend = (*Client)(nil)

func NewClient(cfg Config, tokens ports.TokenSource, metrics *monitoring.PrometheusCollector, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		http: &fasthttp.Client{
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
		cfg:     cfg,
		tokens:  tokens,
		metrics: metrics,
		logger:  logger,
	}
}

// OnUnauthorized registers the global 401 handler, typically forced
// logout plus a hard redirect to the root route.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *Client) fireUnauthorized() {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// do performs one request and returns status and body. The bearer token
// is attached only when withAuth is set: the inference backend is
// tokenless.
func (c *Client) do(ctx context.Context, method, url string, body []byte, withAuth bool) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	ctx, span := tracing.TraceBackendRequest(ctx, method, url)
	defer span.End()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}
	if withAuth {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	start := time.Now()
	err := c.http.DoDeadline(req, resp, deadline)
	c.metrics.RecordRequest(method+" "+url, time.Since(start))

	if err != nil {
		tracing.RecordError(ctx, err)
		c.logger.Debug("backend request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err),
		)
		return 0, nil, apperrors.NewTransportError(err, fmt.Sprintf("request %s %s", method, url))
	}

	status := resp.StatusCode()
	if status == http.StatusUnauthorized {
		c.fireUnauthorized()
		return status, nil, domain.ErrUnauthorized
	}

	// resp body is reused by fasthttp after release
	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return status, out, nil
}

// callControl performs an enveloped request against the control backend.
func (c *Client) callControl(ctx context.Context, method, path string, payload, out interface{}) error {
	return c.call(ctx, method, c.cfg.ControlBaseURL+path, payload, out, true)
}

// callInference performs an enveloped request against the inference backend.
func (c *Client) callInference(ctx context.Context, method, path string, payload, out interface{}) error {
	return c.call(ctx, method, c.cfg.InferenceBaseURL+path, payload, out, false)
}

func (c *Client) call(ctx context.Context, method, url string, payload, out interface{}, withAuth bool) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	status, respBody, err := c.do(ctx, method, url, body, withAuth)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("unexpected status %d from %s %s", status, method, url)
	}
	return decodeEnvelope(respBody, out)
}

// Login authenticates against the control backend.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthPayload, error) {
	var payload domain.AuthPayload
	if err := c.callControl(ctx, http.MethodPost, "/login", creds, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) error {
	return c.callControl(ctx, http.MethodPost, "/register", reg, nil)
}

func (c *Client) DroneInfo(ctx context.Context, userID domain.UserID) (*domain.Drone, error) {
	var drone domain.Drone
	req := map[string]domain.UserID{"userId": userID}
	if err := c.callControl(ctx, http.MethodPost, "/droneInfo", req, &drone); err != nil {
		return nil, err
	}
	return &drone, nil
}

func (c *Client) AllDroneInfo(ctx context.Context) ([]*domain.Drone, error) {
	var drones []*domain.Drone
	if err := c.callControl(ctx, http.MethodPost, "/alldroneInfo", struct{}{}, &drones); err != nil {
		return nil, err
	}
	return drones, nil
}

func (c *Client) CreateDrone(ctx context.Context, drone *domain.Drone) error {
	return c.callControl(ctx, http.MethodPost, "/createDrone", drone, nil)
}

func (c *Client) UpdateDrone(ctx context.Context, drone *domain.Drone) error {
	return c.callControl(ctx, http.MethodPut, "/updateDrone", drone, nil)
}

func (c *Client) UploadImage(ctx context.Context, req domain.UploadRequest) (*domain.UploadResult, error) {
	var result domain.UploadResult
	if err := c.callControl(ctx, http.MethodPost, "/upload", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Users(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	if err := c.callControl(ctx, http.MethodPost, "/userInfo", struct{}{}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

type createUserRequest struct {
	domain.User
	Password string `json:"password"`
}

func (c *Client) CreateUser(ctx context.Context, user *domain.User, password string) error {
	return c.callControl(ctx, http.MethodPost, "/createUser", createUserRequest{User: *user, Password: password}, nil)
}

func (c *Client) UpdateUser(ctx context.Context, user *domain.User) error {
	return c.callControl(ctx, http.MethodPut, "/updateUser", user, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id domain.UserID) error {
	req := map[string]domain.UserID{"userId": id}
	return c.callControl(ctx, http.MethodDelete, "/deleteUser", req, nil)
}

func (c *Client) Predict(ctx context.Context, req domain.PredictRequest) (*domain.PredictResult, error) {
	var result domain.PredictResult
	if err := c.callInference(ctx, http.MethodPost, "/predict", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// LatestImage fetches the newest frame as raw bytes; the stream
// controller converts it into a displayable resource.
func (c *Client) LatestImage(ctx context.Context, userID domain.UserID) ([]byte, error) {
	url := fmt.Sprintf("%s/latest_image/%s", c.cfg.InferenceBaseURL, userID)
	status, body, err := c.do(ctx, http.MethodGet, url, nil, false)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, domain.ErrImageNotFound
	case status < 200 || status >= 300:
		return nil, fmt.Errorf("unexpected status %d fetching latest image", status)
	}
	return body, nil
}

func (c *Client) ImageHistory(ctx context.Context, userID domain.UserID, limit int) ([]domain.ImageRecord, error) {
	var records []domain.ImageRecord
	path := fmt.Sprintf("/get_image_history?userId=%s&limit=%d", userID, limit)
	if err := c.callInference(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) DeleteImage(ctx context.Context, userID domain.UserID, imageID string) error {
	req := map[string]string{"userId": string(userID), "imageId": imageID}
	return c.callInference(ctx, http.MethodPost, "/delete_image", req, nil)
}
