package skport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bnema/skport-checkin/internal/domain"
)

const (
	DefaultZonaiBaseURL = "https://zonai.skport.com"
	DefaultAuthBaseURL  = "https://as.gryphline.com"

	attendancePath = "/web/v1/game/endfield/attendance"

	languageTag = "en_US"
	gameReferer = "https://game.skport.com/"
	gameOrigin  = "https://game.skport.com"
	userAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// staticHeaders mimic the browser client the remote service expects.
// These are protocol constants, not configuration.
var staticHeaders = map[string]string{
	"User-Agent":         userAgent,
	"Referer":            gameReferer,
	"Origin":             gameOrigin,
	"accept":             "application/json, text/plain, */*",
	"accept-language":    "en-US,en;q=0.9",
	"sec-ch-ua":          `"Chromium";v="131", "Not_A Brand";v="24"`,
	"sec-ch-ua-mobile":   "?0",
	"sec-ch-ua-platform": `"Windows"`,
	"sec-fetch-dest":     "empty",
	"sec-fetch-mode":     "cors",
	"sec-fetch-site":     "same-site",
}

type ClientConfig struct {
	ZonaiBaseURL string
	AuthBaseURL  string
	HTTPClient   *http.Client
}

// Client composes the bootstrapper, the signature schemes, and the
// retrying transport into the two attendance operations. Runtime
// credentials are cached per game role for the lifetime of the process.
type Client struct {
	zonaiBaseURL string
	bootstrapper Bootstrapper
	transport    *RetryingClient
	logger       *slog.Logger
	now          func() time.Time

	mu    sync.RWMutex
	creds map[domain.AccountID]domain.RuntimeCredentials
}

func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if cfg.ZonaiBaseURL == "" {
		cfg.ZonaiBaseURL = DefaultZonaiBaseURL
	}
	if cfg.AuthBaseURL == "" {
		cfg.AuthBaseURL = DefaultAuthBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		zonaiBaseURL: cfg.ZonaiBaseURL,
		bootstrapper: Bootstrapper{
			AuthBaseURL:  cfg.AuthBaseURL,
			ZonaiBaseURL: cfg.ZonaiBaseURL,
			HTTPClient:   cfg.HTTPClient,
		},
		transport: &RetryingClient{HTTPClient: cfg.HTTPClient},
		logger:    logger,
		now:       time.Now,
		creds:     make(map[domain.AccountID]domain.RuntimeCredentials),
	}
}

// InitCredentials runs the bootstrap handshake and caches the result.
// Failures are logged and reported as false; callers must check the
// return value before issuing signed calls.
func (c *Client) InitCredentials(ctx context.Context, account domain.Account) bool {
	creds, err := c.bootstrapper.Bootstrap(ctx, account.Token)
	if err != nil {
		c.logger.Error("initialize credentials", "account", account.ID(), "error", err)
		return false
	}

	c.mu.Lock()
	c.creds[account.ID()] = creds
	c.mu.Unlock()

	c.logger.Info("credentials initialized", "account", account.ID(), "hgId", creds.HgID)
	return true
}

func (c *Client) CheckStatus(ctx context.Context, account domain.Account) domain.Result[domain.AttendanceData] {
	creds := c.mustCredentials(account.ID())

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	sign := SignV1(timestamp, creds.Cred)

	resp, err := c.transport.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.zonaiBaseURL+attendancePath, nil)
		if err != nil {
			return nil, err
		}
		c.applyHeaders(req, account, creds, timestamp, sign)
		return req, nil
	})

	env := decodeResult[attendanceWire](resp, err)
	result := domain.Result[domain.AttendanceData]{Code: env.Code, Message: env.Message}
	if env.Data != nil {
		result.Data = &domain.AttendanceData{HasToday: env.Data.HasToday}
	}
	return result
}

func (c *Client) ClaimReward(ctx context.Context, account domain.Account) domain.Result[domain.ClaimData] {
	creds := c.mustCredentials(account.ID())

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	sign := SignV2(attendancePath, "", timestamp, creds.Salt)

	resp, err := c.transport.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.zonaiBaseURL+attendancePath, http.NoBody)
		if err != nil {
			return nil, err
		}
		c.applyHeaders(req, account, creds, timestamp, sign)
		return req, nil
	})

	env := decodeResult[claimWire](resp, err)
	result := domain.Result[domain.ClaimData]{Code: env.Code, Message: env.Message}
	if env.Data != nil {
		awards := make(map[string]domain.Award, len(env.Data.Awards))
		for name, award := range env.Data.Awards {
			awards[name] = domain.Award{Count: award.Count, Icon: award.Icon}
		}
		result.Data = &domain.ClaimData{Awards: awards}
	}
	return result
}

// mustCredentials panics with ErrNoCredentials when no bootstrap has
// succeeded for the account. Signed calls before InitCredentials are a
// caller bug; the orchestrator's per-account guard converts the panic
// into an error outcome.
func (c *Client) mustCredentials(id domain.AccountID) domain.RuntimeCredentials {
	c.mu.RLock()
	creds, ok := c.creds[id]
	c.mu.RUnlock()

	if !ok {
		panic(fmt.Errorf("%w: %s", domain.ErrNoCredentials, id))
	}
	return creds
}

func (c *Client) applyHeaders(req *http.Request, account domain.Account, creds domain.RuntimeCredentials, timestamp, sign string) {
	for key, value := range staticHeaders {
		req.Header.Set(key, value)
	}
	req.Header.Set("cred", creds.Cred)
	req.Header.Set("sk-game-role", account.GameRoleID)
	req.Header.Set("sk-language", languageTag)
	req.Header.Set("timestamp", timestamp)
	req.Header.Set("vName", apiVersionName)
	req.Header.Set("platform", platformID)
	req.Header.Set("sign", sign)
}

type attendanceWire struct {
	HasToday bool `json:"hasToday"`
}

type awardWire struct {
	Count int    `json:"count"`
	Icon  string `json:"icon"`
}

type claimWire struct {
	Awards map[string]awardWire `json:"awards"`
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

// decodeResult normalizes transport and HTTP failures into a coded
// result instead of propagating errors: -1 when no response was
// received, the HTTP status for non-200 responses, the envelope code
// otherwise.
func decodeResult[T any](resp *Response, err error) envelope[T] {
	if err != nil {
		return envelope[T]{Code: domain.CodeTransportFailure, Message: err.Error()}
	}

	var env envelope[T]
	if resp.StatusCode != http.StatusOK {
		message := fmt.Sprintf("status %d", resp.StatusCode)
		if jsonErr := json.Unmarshal(resp.Body, &env); jsonErr == nil && env.Message != "" {
			message = env.Message
		}
		return envelope[T]{Code: resp.StatusCode, Message: message}
	}

	if jsonErr := json.Unmarshal(resp.Body, &env); jsonErr != nil {
		return envelope[T]{Code: domain.CodeTransportFailure, Message: fmt.Sprintf("decode response: %v", jsonErr)}
	}
	return env
}
