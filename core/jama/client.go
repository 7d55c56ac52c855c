package jama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"reqsync/core/errs"
)

// Client is the Jama REST API client. It owns OAuth token refresh,
// request pacing and the HTTP transport; the reconcile package drives
// it through its ItemSource and Transport interfaces.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger

	token        string
	tokenExpires time.Time
}

// NewClient creates a Jama client from the configuration.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	proxy := http.ProxyFromEnvironment
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, errs.NewTransportError("proxy setup", err)
		}
		proxy = http.ProxyURL(proxyURL)
	}

	transport := &http.Transport{
		Proxy: proxy,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ResponseHeaderTimeout: timeoutDuration,
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Transport: transport, Timeout: timeoutDuration},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		log:     log,
	}, nil
}

// accessToken returns a valid bearer token, fetching a new one via the
// client-credentials grant when the cached token is near expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.token != "" && time.Now().Before(c.tokenExpires) {
		return c.token, nil
	}

	c.log.Debug("fetching new access token")

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+"/rest/oauth/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", errs.NewTransportError("auth", err)
	}
	req.SetBasicAuth(c.cfg.APIID, c.cfg.APISecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errs.NewTransportError("auth", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &errs.TransportError{
			Op:        "auth",
			Err:       fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			Permanent: resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden,
		}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", errs.NewTransportError("auth", err)
	}

	c.token = tokenResp.AccessToken
	// Refresh a minute early so in-flight requests never race expiry.
	c.tokenExpires = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)
	return c.token, nil
}

// doRequest performs one paced, authenticated JSON request and decodes
// the response into out when out is non-nil.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errs.NewTransportError(method+" "+path, err)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	reqURL := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return errs.NewTransportError(method+" "+path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errs.NewTransportError(method+" "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &errs.TransportError{
			Op:        method + " " + path,
			Err:       fmt.Errorf("authentication rejected (%d): %s", resp.StatusCode, strings.TrimSpace(string(body))),
			Permanent: true,
		}
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Debug("request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return errs.NewRemoteError(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		// Delete responses carry no body.
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.NewTransportError(method+" "+path, err)
	}
	return nil
}
