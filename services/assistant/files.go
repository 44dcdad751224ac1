package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// PurposeAssistants marks uploads as retrieval context for the assistant.
const PurposeAssistants = "assistants"

// File is a file registered with the assistant service
type File struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Bytes     int64  `json:"bytes"`
	Purpose   string `json:"purpose"`
	CreatedAt int64  `json:"created_at"`
}

// Age returns how long ago the file was registered.
func (f *File) Age(now time.Time) time.Duration {
	return now.Sub(time.Unix(f.CreatedAt, 0))
}

// UploadFile streams a file to the assistant service and returns its
// opaque identifier. Files endpoint takes multipart, not JSON, so this
// bypasses doRequest.
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader, purpose string) (*File, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read upload content: %w", err)
	}
	if err := writer.WriteField("purpose", purpose); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait cancelled: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/files", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(respBody, resp.StatusCode)
	}

	var result File
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// ListFiles retrieves files registered with the service, optionally
// filtered by purpose.
func (c *Client) ListFiles(ctx context.Context, purpose string) ([]File, error) {
	endpoint := "/v1/files"
	if purpose != "" {
		endpoint = fmt.Sprintf("%s?purpose=%s", endpoint, purpose)
	}

	var result struct {
		Data []File `json:"data"`
	}
	if err := c.doRequest(ctx, "GET", endpoint, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// DeleteFile removes a file from the assistant service
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	endpoint := fmt.Sprintf("/v1/files/%s", fileID)
	return c.doRequest(ctx, "DELETE", endpoint, nil, nil)
}
