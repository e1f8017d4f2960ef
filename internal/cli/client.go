// Package cli implements the interactive command-line client for the
// identity service.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/socialride/identity/internal/common"
	"github.com/socialride/identity/internal/cli/config"
)

// APIError is a non-zero error code returned in the response envelope.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// Session is the token pair returned by a successful login.
type Session struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterRequest carries the fields of a local registration.
type RegisterRequest struct {
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	BirthDate time.Time `json:"birthDate"`
}

// Client talks to the identity HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.ServerEndpointAddr,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
	}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		ErrorCode int    `json:"errorCode"`
		Message   string `json:"message"`
	} `json:"error"`
}

// call performs one API request and decodes the envelope into out (when out
// is non-nil). A non-zero envelope code comes back as *APIError.
func (c *Client) call(ctx context.Context, method, path, bearer string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return err
		}
		reqBody = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("unexpected response (%s): %w", resp.Status, err)
	}
	if env.Error.ErrorCode != 0 {
		return &APIError{Code: env.Error.ErrorCode, Message: env.Error.Message}
	}
	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// Authenticate performs a local username/password login.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	var sess Session
	err := c.call(ctx, http.MethodPost, "/api/users/authenticate", "",
		map[string]string{"username": username, "password": password}, &sess)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// Register creates a local account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.call(ctx, http.MethodPost, "/api/users/register", "", req, nil)
}

// Available reports whether a username is free.
func (c *Client) Available(ctx context.Context, username string) (bool, error) {
	err := c.call(ctx, http.MethodGet, "/api/users/availability?username="+url.QueryEscape(username), "", nil, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Refresh redeems the refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.call(ctx, http.MethodPost, "/api/users/refresh", refreshToken, nil, &out)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

// RequestAvatarUpload asks the server for a presigned upload slot.
func (c *Client) RequestAvatarUpload(ctx context.Context, userID, accessToken string) (key string, uploadURL string, err error) {
	var out struct {
		Key       string `json:"key"`
		UploadURL string `json:"uploadUrl"`
	}
	err = c.call(ctx, http.MethodPost, "/api/users/"+userID+"/avatar", accessToken, nil, &out)
	if err != nil {
		return "", "", err
	}
	return out.Key, out.UploadURL, nil
}
