package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/request"
)

// TokenProvider owns the client-credentials bearer token for the BIND
// API: one cached token with an explicit expiry, re-fetched on demand.
// It is injected into the Client so no process-global state is involved.
type TokenProvider struct {
	tokenURL     string
	clientID     string
	clientSecret string
	scope        string
	ttl          time.Duration

	mu     sync.Mutex
	token  string
	expiry time.Time

	// now is swapped in tests to control expiry.
	now func() time.Time
}

func NewTokenProvider(tokenURL, clientID, clientSecret, scope string, ttl time.Duration) *TokenProvider {
	return &TokenProvider{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		scope:        scope,
		ttl:          ttl,
		now:          time.Now,
	}
}

// Token returns the cached bearer token, fetching a fresh one when none
// is cached or the cached one has expired. Transient fetch failures are
// retried with exponential backoff.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.now().Before(p.expiry) {
		return p.token, nil
	}

	var token string
	operation := func() error {
		t, err := p.fetch(ctx)
		if err != nil {
			if authErr, ok := err.(*AuthError); ok && authErr.StatusCode > 0 {
				// The endpoint answered: retrying with the same
				// credentials will not change the outcome.
				return backoff.Permanent(err)
			}
			logrus.Warnf("token fetch failed, will retry: %v", err)
			return err
		}
		token = t
		return nil
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(backoff.WithMaxElapsedTime(30*time.Second)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}

	p.token = token
	p.expiry = p.now().Add(p.ttl)
	return p.token, nil
}

func (p *TokenProvider) fetch(ctx context.Context) (string, error) {
	body := request.ToFormReq(map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     p.clientID,
		"client_secret": p.clientSecret,
		"scope":         p.scope,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var data map[string]interface{}
	resp, err := request.Call(req, &data)
	if err != nil {
		return "", &AuthError{Detail: err.Error()}
	}

	token, ok := data["access_token"].(string)
	if !ok || token == "" {
		detail := "access_token missing from token response"
		if d, ok := data["error_description"].(string); ok {
			detail = d
		}
		return "", &AuthError{StatusCode: resp.StatusCode, Detail: detail}
	}
	return token, nil
}
