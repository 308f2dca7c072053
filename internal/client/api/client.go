// Package api implements the JSON HTTP client for the admin API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/stocktrack/stockkeeper/internal/models"
)

// Error is a failed API call, carrying the HTTP status and the server's
// message when one was provided.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// errorEnvelope matches both error shapes the server family emits:
// {"message": ...} and {"error": {"message": ...}}.
type errorEnvelope struct {
	Message string `json:"message"`
	Err     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the admin API server.
type Client struct {
	http    *http.Client
	baseURL string
	login   string
}

// New creates a Client for the given base URL acting as the given admin
// login. hc may be nil, in which case http.DefaultClient is used.
func New(baseURL, login string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{http: hc, baseURL: baseURL, login: login}
}

// ListBackupsResponse is the payload of GET /api/backup/list.
type ListBackupsResponse struct {
	Backups    []models.Backup   `json:"backups"`
	Pagination models.Pagination `json:"pagination"`
}

// ListBackups fetches one page of the backup catalog.
func (c *Client) ListBackups(ctx context.Context, page, limit int) (*ListBackupsResponse, error) {
	var resp ListBackupsResponse
	url := fmt.Sprintf("%s/api/backup/list?page=%d&limit=%d", c.baseURL, page, limit)
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetBackup fetches a single catalog entry.
func (c *Client) GetBackup(ctx context.Context, backupID string) (*models.Backup, error) {
	var b models.Backup
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/api/backup/"+backupID, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBackup asks the server to take a manual backup in the given format.
func (c *Client) CreateBackup(ctx context.Context, format models.BackupFormat) (*models.Backup, error) {
	var b models.Backup
	body := map[string]any{"format": format}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/backup/create", body, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Restore submits the restore request for a backup. This is the single
// mutating call of the restore workflow.
func (c *Client) Restore(ctx context.Context, backupID string, opts models.RestoreOptions) (*models.RestoreResult, error) {
	body := map[string]any{
		"backupId":      backupID,
		"mode":          opts.Mode,
		"adminPassword": opts.AdminPassword,
	}
	if opts.Password != "" {
		body["password"] = opts.Password
	}

	var result models.RestoreResult
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/backup/restore", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ValidateBackup runs an integrity check on a stored backup.
func (c *Client) ValidateBackup(ctx context.Context, backupID string) (*models.ValidationResult, error) {
	var result models.ValidationResult
	body := map[string]any{"backupId": backupID}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/backup/validate", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteBackup removes a backup.
func (c *Client) DeleteBackup(ctx context.Context, backupID string) error {
	return c.do(ctx, http.MethodDelete, c.baseURL+"/api/backup/"+backupID, nil, nil)
}

// GetConfig fetches the backup configuration.
func (c *Client) GetConfig(ctx context.Context) (*models.BackupConfig, error) {
	var cfg models.BackupConfig
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/api/backup/config", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PutConfig saves the backup configuration.
func (c *Client) PutConfig(ctx context.Context, cfg *models.BackupConfig) error {
	return c.do(ctx, http.MethodPut, c.baseURL+"/api/backup/config", cfg, nil)
}

// DownloadBackup streams a backup archive into the file at dest.
func (c *Client) DownloadBackup(ctx context.Context, backupID, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/backup/download/"+backupID, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("write download: %w", err)
	}
	return nil
}

// do issues one JSON request and decodes the response into out when out is
// non-nil.
func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Login", c.login)
}

// decodeError extracts the server's error message, falling back to a
// generic string when the body carries none.
func decodeError(resp *http.Response) error {
	apiErr := &Error{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("request failed with status %d", resp.StatusCode),
	}

	var env errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil {
		if env.Message != "" {
			apiErr.Message = env.Message
		} else if env.Err.Message != "" {
			apiErr.Message = env.Err.Message
		}
	}
	return apiErr
}
