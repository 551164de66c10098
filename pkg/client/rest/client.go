package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const bodySnippetLimit = 512

// RequestError is returned for every non-2xx response. The verification
// protocol treats it as fatal; the contention scenarios unpack it to classify
// the outcome.
type RequestError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.URL, e.Status, snippet(e.Body))
}

func snippet(body string) string {
	if len(body) > bodySnippetLimit {
		return body[:bodySnippetLimit] + "..."
	}
	return body
}

// Client issues authenticated JSON and multipart requests. It performs no
// retries: retry policy belongs to the caller.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// Do sends a request carrying the given bearer token, marshalling body to
// JSON when non-nil, and returns the raw response body. Non-2xx responses
// are logged and returned as *RequestError.
func (c *Client) Do(ctx context.Context, method, url, token string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal %s %s request body", method, url)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s %s request", method, url)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

// Multipart posts a JSON payload as a form part named "request" plus an
// optional binary attachment under "coverImages", matching the command-side
// event upload contract.
func (c *Client) Multipart(ctx context.Context, url, token string, payload interface{}, imagePath string) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal multipart payload for %s", url)
	}

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormField("request")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request form part")
	}
	if _, err := part.Write(data); err != nil {
		return nil, errors.Wrap(err, "failed to write request form part")
	}

	if imagePath != "" {
		file, err := os.Open(imagePath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open attachment %s", imagePath)
		}
		defer file.Close()
		attachment, err := writer.CreateFormFile("coverImages", filepath.Base(imagePath))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create attachment form part")
		}
		if _, err := io.Copy(attachment, file); err != nil {
			return nil, errors.Wrapf(err, "failed to copy attachment %s", imagePath)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to finalize multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build multipart request for %s", url)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.send(req)
}

// PostForStatus issues a POST and returns the response status and body for
// any HTTP response. Errors are reserved for transport failures: callers that
// measure rejections rather than failing on them use this entry point.
func (c *Client) PostForStatus(ctx context.Context, url, token string, body interface{}) (int, []byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "failed to marshal POST %s request body", url)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, nil, errors.Wrapf(err, "failed to build POST %s request", url)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return c.sendRaw(req)
}

func (c *Client) sendRaw(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "%s %s failed", req.Method, req.URL)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "failed to read %s %s response", req.Method, req.URL)
	}
	return resp.StatusCode, data, nil
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	status, data, err := c.sendRaw(req)
	if err != nil {
		return nil, err
	}

	if status < 200 || status >= 300 {
		requestError := &RequestError{
			Method: req.Method,
			URL:    req.URL.String(),
			Status: status,
			Body:   string(data),
		}
		log.Errorf("request failed: %s %s status %d body %s",
			req.Method, req.URL, status, snippet(requestError.Body))
		return nil, requestError
	}
	return data, nil
}

// GetJSON issues a GET and unmarshals the response body into out.
func (c *Client) GetJSON(ctx context.Context, url, token string, out interface{}) error {
	data, err := c.Do(ctx, http.MethodGet, url, token, nil)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(data, out), "failed to decode GET %s response", url)
}

// PostJSON issues a POST with the given body and unmarshals the response into
// out when out is non-nil.
func (c *Client) PostJSON(ctx context.Context, url, token string, body, out interface{}) error {
	data, err := c.Do(ctx, http.MethodPost, url, token, body)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(data, out), "failed to decode POST %s response", url)
}

// PutJSON issues a PUT with the given body.
func (c *Client) PutJSON(ctx context.Context, url, token string, body interface{}) error {
	_, err := c.Do(ctx, http.MethodPut, url, token, body)
	return err
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, url, token string) error {
	_, err := c.Do(ctx, http.MethodDelete, url, token, nil)
	return err
}
