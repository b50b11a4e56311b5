package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"planboard/internal/logging"
)

const DefaultAPIURL = "https://api.github.com"

var ErrNotFound = errors.New("remote document not found")

// RemoteConfig locates the document file in a repository.
type RemoteConfig struct {
	APIURL string
	Owner  string
	Repo   string
	Branch string
	Path   string
	Token  string
}

// Remote reads and writes one file through the repository contents API.
type Remote struct {
	cfg        RemoteConfig
	httpClient *http.Client
}

func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("token is required")
	}
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("owner and repo are required")
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &Remote{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (r *Remote) contentsURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		r.cfg.APIURL, url.PathEscape(r.cfg.Owner), url.PathEscape(r.cfg.Repo), strings.TrimLeft(r.cfg.Path, "/"))
}

type contentFile struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// Fetch returns the file body and its revision sha. A missing file is
// ErrNotFound.
func (r *Remote) Fetch(ctx context.Context) ([]byte, string, error) {
	endpoint := r.contentsURL() + "?ref=" + url.QueryEscape(r.cfg.Branch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	respBody, err := r.do(req)
	if err != nil {
		return nil, "", err
	}

	var file contentFile
	if err := json.Unmarshal(respBody, &file); err != nil {
		return nil, "", fmt.Errorf("failed to parse contents response: %w", err)
	}
	// The API wraps base64 content at 60 columns.
	raw := strings.NewReplacer("\n", "", "\r", "").Replace(file.Content)
	body, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode content: %w", err)
	}
	return body, file.SHA, nil
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

// Store writes body as a new revision on top of sha (empty for a new file)
// and returns the new sha.
func (r *Remote) Store(ctx context.Context, body []byte, sha string, at time.Time) (string, error) {
	payload, err := json.Marshal(putRequest{
		Message: "Update productivity data - " + at.UTC().Format("2006-01-02T15:04:05.000Z"),
		Content: base64.StdEncoding.EncodeToString(body),
		Branch:  r.cfg.Branch,
		SHA:     sha,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.contentsURL(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	respBody, err := r.do(req)
	if err != nil {
		return "", err
	}
	var out putResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("failed to parse store response: %w", err)
	}
	return out.Content.SHA, nil
}

// User checks the token and returns the login it belongs to.
func (r *Remote) User(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.APIURL+"/user", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	respBody, err := r.do(req)
	if err != nil {
		return "", err
	}
	var user struct {
		Login string `json:"login"`
	}
	if err := json.Unmarshal(respBody, &user); err != nil {
		return "", fmt.Errorf("failed to parse user response: %w", err)
	}
	return user.Login, nil
}

func (r *Remote) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "token "+r.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("github API error (%d): %s", resp.StatusCode, logging.Truncate(string(respBody), 200))
	}
	return respBody, nil
}
