package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"market-sync/src/helpers"
	"market-sync/src/logger"
	"market-sync/src/models"
)

// TokenProvider returns the current session token, or "" when logged out.
type TokenProvider func() string

// UnauthorizedHook is invoked once per rejected request, after the error is
// returned, so the session layer can tear down.
type UnauthorizedHook func()

// -----------------------------------------------------------------------------

type AuthNetworkManager struct {
	Config     *models.MConfig
	Client     *http.Client
	Logger     *logger.Logger
	BaseURL    string
	token      TokenProvider
	onRejected UnauthorizedHook
}

// -----------------------------------------------------------------------------

func NewAuthNetworkManager(cfg *models.MConfig, log *logger.Logger, token TokenProvider) *AuthNetworkManager {
	return &AuthNetworkManager{
		Config:  cfg,
		Logger:  log,
		BaseURL: strings.TrimRight(cfg.Upstream.BaseURL, "/"),
		token:   token,
		Client: &http.Client{
			Timeout: time.Duration(cfg.Network.RequestTimeout) * time.Second,
		},
	}
}

// -----------------------------------------------------------------------------

// SetUnauthorizedHook registers the teardown callback for rejected tokens.
func (nm *AuthNetworkManager) SetUnauthorizedHook(hook UnauthorizedHook) {
	nm.onRejected = hook
}

// -----------------------------------------------------------------------------

// Get performs an authenticated GET request with retries.
func (nm *AuthNetworkManager) Get(path string, params map[string]string) ([]byte, error) {
	reqURL, err := url.Parse(nm.BaseURL + path)
	if err != nil {
		return nil, err
	}

	q := reqURL.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	reqURL.RawQuery = q.Encode()

	return nm.doWithRetries("GET", reqURL.String(), "", nil)
}

// -----------------------------------------------------------------------------

// PostJSON performs an authenticated POST with a JSON body (nil for empty).
func (nm *AuthNetworkManager) PostJSON(path string, body interface{}) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}
	return nm.doWithRetries("POST", nm.BaseURL+path, "application/json", payload)
}

// -----------------------------------------------------------------------------

// PostForm performs an authenticated POST with form-encoded values. The login
// endpoint expects this encoding.
func (nm *AuthNetworkManager) PostForm(path string, values map[string]string) ([]byte, error) {
	form := url.Values{}
	for k, v := range values {
		form.Set(k, v)
	}
	return nm.doWithRetries("POST", nm.BaseURL+path, "application/x-www-form-urlencoded", []byte(form.Encode()))
}

// -----------------------------------------------------------------------------

// Delete performs an authenticated DELETE request.
func (nm *AuthNetworkManager) Delete(path string) ([]byte, error) {
	return nm.doWithRetries("DELETE", nm.BaseURL+path, "", nil)
}

// -----------------------------------------------------------------------------

func (nm *AuthNetworkManager) doWithRetries(method, fullURL, contentType string, payload []byte) ([]byte, error) {
	maxAttempts := nm.Config.Network.MaxRetries + 1

	return helpers.RetryWithBackoff(method+" "+fullURL, maxAttempts, time.Second, func() ([]byte, error) {
		return nm.doOnce(method, fullURL, contentType, payload)
	})
}

// -----------------------------------------------------------------------------

func (nm *AuthNetworkManager) doOnce(method, fullURL, contentType string, payload []byte) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, fullURL, bodyReader)
	if err != nil {
		return nil, err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if nm.Config.Network.UserAgent != "" {
		req.Header.Set("User-Agent", nm.Config.Network.UserAgent)
	}
	if tok := nm.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := nm.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		nm.Logger.Warning("Request rejected (401): %s %s", method, fullURL)
		if nm.onRejected != nil {
			defer nm.onRejected()
		}
		return nil, helpers.ErrUnauthorized
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("bad status: %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
