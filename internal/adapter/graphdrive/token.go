package graphdrive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/courierlabs/podproof/internal/domain/errors"
)

// DefaultTokenBaseURL is the production identity-provider endpoint.
const DefaultTokenBaseURL = "https://login.microsoftonline.com"

// TokenProvider supplies bearer tokens for delegated-auth backends.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// ClientCredentials exchanges client credentials for access tokens. Tokens
// are cached for a configurable TTL; a zero TTL restores the original
// fetch-on-every-call behavior.
type ClientCredentials struct {
	tokenURL     string
	clientID     string
	clientSecret string
	ttl          time.Duration
	httpClient   *http.Client
	now          func() time.Time

	mu     sync.Mutex
	cached string
	expiry time.Time
}

// NewClientCredentials constructs a ClientCredentials provider for the given
// tenant.
func NewClientCredentials(baseURL, tenantID, clientID, clientSecret string, ttl, timeout time.Duration) (*ClientCredentials, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse token url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("token url must be absolute")
	}
	parsed.Path = fmt.Sprintf("/%s/oauth2/v2.0/token", tenantID)

	return &ClientCredentials{
		tokenURL:     parsed.String(),
		clientID:     clientID,
		clientSecret: clientSecret,
		ttl:          ttl,
		httpClient:   &http.Client{Timeout: timeout},
		now:          time.Now,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Token returns a cached token when still fresh, otherwise performs the
// client-credentials exchange.
func (p *ClientCredentials) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != "" && p.now().Before(p.expiry) {
		return p.cached, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {p.clientID},
		"client_secret": {p.clientSecret},
		"scope":         {"https://graph.microsoft.com/.default"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", domainErrors.WrapUpstream(domainErrors.StageAuth, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", domainErrors.WrapUpstream(domainErrors.StageAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", domainErrors.NewUpstreamError(domainErrors.StageAuth, resp.StatusCode, string(body))
	}

	var data tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", domainErrors.WrapUpstream(domainErrors.StageAuth, err)
	}
	if data.AccessToken == "" {
		return "", domainErrors.NewUpstreamError(domainErrors.StageAuth, resp.StatusCode, "token response missing access_token")
	}

	if p.ttl > 0 {
		p.cached = data.AccessToken
		p.expiry = p.now().Add(p.ttl)
	}
	return data.AccessToken, nil
}
