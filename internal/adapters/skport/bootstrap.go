package skport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bnema/skport-checkin/internal/domain"
)

const (
	basicInfoPath    = "/user/info/v1/basic"
	oauthGrantPath   = "/user/oauth2/v2/grant"
	generateCredPath = "/web/v1/user/auth/generate_cred_by_code"

	oauthAppCode = "6eb76d4e13aa36e6"
)

// Bootstrapper converts a long-lived account token into per-run
// credentials through the three-step handshake: basic-info lookup,
// OAuth grant exchange, credential issuance. Failures are terminal for
// the account's run; no retries happen here.
type Bootstrapper struct {
	AuthBaseURL    string
	ZonaiBaseURL   string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Now            func() time.Time
}

type basicInfoResponse struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
	Data   struct {
		HgID string `json:"hgId"`
	} `json:"data"`
}

type grantResponse struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
	Data   struct {
		Code string `json:"code"`
	} `json:"data"`
}

type generateCredResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Cred   string `json:"cred"`
		Token  string `json:"token"`
		UserID string `json:"userId"`
	} `json:"data"`
}

func (b Bootstrapper) Bootstrap(ctx context.Context, accountToken string) (domain.RuntimeCredentials, error) {
	hgID, err := b.fetchBasicInfo(ctx, accountToken)
	if err != nil {
		return domain.RuntimeCredentials{}, err
	}

	code, err := b.exchangeGrant(ctx, accountToken)
	if err != nil {
		return domain.RuntimeCredentials{}, err
	}

	creds, err := b.generateCred(ctx, code)
	if err != nil {
		return domain.RuntimeCredentials{}, err
	}

	creds.HgID = hgID
	creds.ObtainedAt = b.now()

	return creds, nil
}

func (b Bootstrapper) fetchBasicInfo(ctx context.Context, accountToken string) (string, error) {
	endpoint := b.AuthBaseURL + basicInfoPath + "?token=" + url.QueryEscape(accountToken)

	reqCtx, cancel := b.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", &domain.BootstrapError{Step: 1, Err: fmt.Errorf("create basic info request: %w", err)}
	}

	var payload basicInfoResponse
	if err := b.doJSON(req, &payload); err != nil {
		return "", &domain.BootstrapError{Step: 1, Err: err}
	}
	if payload.Status != 0 {
		return "", &domain.BootstrapError{Step: 1, Message: statusMessage(payload.Status, payload.Msg)}
	}

	return payload.Data.HgID, nil
}

func (b Bootstrapper) exchangeGrant(ctx context.Context, accountToken string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"token":   accountToken,
		"appCode": oauthAppCode,
		"type":    0,
	})
	if err != nil {
		return "", &domain.BootstrapError{Step: 2, Err: fmt.Errorf("encode grant request: %w", err)}
	}

	reqCtx, cancel := b.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, b.AuthBaseURL+oauthGrantPath, bytes.NewReader(body))
	if err != nil {
		return "", &domain.BootstrapError{Step: 2, Err: fmt.Errorf("create grant request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	var payload grantResponse
	if err := b.doJSON(req, &payload); err != nil {
		return "", &domain.BootstrapError{Step: 2, Err: err}
	}
	if payload.Status != 0 {
		return "", &domain.BootstrapError{Step: 2, Message: statusMessage(payload.Status, payload.Msg)}
	}
	if payload.Data.Code == "" {
		return "", &domain.BootstrapError{Step: 2, Message: "grant response missing code"}
	}

	return payload.Data.Code, nil
}

func (b Bootstrapper) generateCred(ctx context.Context, code string) (domain.RuntimeCredentials, error) {
	body, err := json.Marshal(map[string]any{
		"code": code,
		"kind": 1,
	})
	if err != nil {
		return domain.RuntimeCredentials{}, &domain.BootstrapError{Step: 3, Err: fmt.Errorf("encode credential request: %w", err)}
	}

	reqCtx, cancel := b.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, b.ZonaiBaseURL+generateCredPath, bytes.NewReader(body))
	if err != nil {
		return domain.RuntimeCredentials{}, &domain.BootstrapError{Step: 3, Err: fmt.Errorf("create credential request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("platform", platformID)

	var payload generateCredResponse
	if err := b.doJSON(req, &payload); err != nil {
		return domain.RuntimeCredentials{}, &domain.BootstrapError{Step: 3, Err: err}
	}
	if payload.Code != 0 {
		return domain.RuntimeCredentials{}, &domain.BootstrapError{Step: 3, Message: statusMessage(payload.Code, payload.Message)}
	}
	if payload.Data.Cred == "" || payload.Data.Token == "" {
		return domain.RuntimeCredentials{}, &domain.BootstrapError{Step: 3, Message: "credential response missing cred or token"}
	}

	return domain.RuntimeCredentials{
		Cred:   payload.Data.Cred,
		Salt:   payload.Data.Token,
		UserID: payload.Data.UserID,
	}, nil
}

func (b Bootstrapper) doJSON(req *http.Request, out any) error {
	resp, err := b.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (b Bootstrapper) httpClient() *http.Client {
	if b.HTTPClient != nil {
		return b.HTTPClient
	}
	return http.DefaultClient
}

func (b Bootstrapper) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := b.RequestTimeout
	if timeout <= 0 {
		timeout = requestTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (b Bootstrapper) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func statusMessage(status int, msg string) string {
	if msg == "" {
		return fmt.Sprintf("remote status %d", status)
	}
	return msg
}
