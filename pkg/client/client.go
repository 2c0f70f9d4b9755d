// Package client provides a Go client for the ocrdesk REST API, including
// a bounded poller that follows a record's processing status to a terminal
// state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Record mirrors the service's history record wire shape.
type Record struct {
	ID        int64     `json:"id"`
	FileName  string    `json:"fileName"`
	FileSize  int64     `json:"fileSize"`
	FileType  string    `json:"fileType"`
	Status    string    `json:"status"`
	Result    *string   `json:"result,omitempty"`
	PageCount *int      `json:"pageCount,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Terminal reports whether the record's status ends the processing cycle.
func (r *Record) Terminal() bool {
	return r.Status == "success" || r.Status == "failed"
}

// Pagination is the metadata block of a history page.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// HistoryPage is one page of history records.
type HistoryPage struct {
	Data       []Record   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// HistoryOptions filter and paginate history listings. A Status of "all"
// or empty disables status filtering.
type HistoryOptions struct {
	Page   int
	Limit  int
	Query  string
	Status string
}

// UploadResult is the response to a file upload.
type UploadResult struct {
	ID       int64  `json:"id"`
	FileName string `json:"fileName"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// ProcessRequest drives processing of an existing record.
type ProcessRequest struct {
	ID     int64  `json:"id"`
	APIKey string `json:"apiKey"`
	APIURL string `json:"apiUrl,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Format string `json:"format,omitempty"`
}

// ProcessResult is the response to a processing request.
type ProcessResult struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
}

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Client accesses the ocrdesk REST API. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 90 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload submits a file and returns the created pending record's identity.
func (c *Client) Upload(ctx context.Context, fileName, contentType string, data []byte) (*UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result UploadResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Record fetches a single history record.
func (c *Client) Record(ctx context.Context, id int64) (*Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/history/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := c.do(req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// History fetches a filtered page of records.
func (c *Client) History(ctx context.Context, opts HistoryOptions) (*HistoryPage, error) {
	params := url.Values{}
	if opts.Page > 0 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Query != "" {
		params.Set("q", opts.Query)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}

	target := c.baseURL + "/history"
	if encoded := params.Encode(); encoded != "" {
		target += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	var page HistoryPage
	if err := c.do(req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Process triggers processing of an existing record and waits for the
// outcome.
func (c *Client) Process(ctx context.Context, preq ProcessRequest) (*ProcessResult, error) {
	payload, err := json.Marshal(preq)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var result ProcessResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes a record and its stored file.
func (c *Client) Delete(ctx context.Context, id int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/history/%d", c.baseURL, id), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Download fetches the raw stored file bytes and their content type.
func (c *Client) Download(ctx context.Context, filename string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/uploads/"+url.PathEscape(filename), nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", c.apiError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) apiError(resp *http.Response) error {
	var envelope struct {
		Error string `json:"error"`
	}
	body, _ := io.ReadAll(resp.Body)
	json.Unmarshal(body, &envelope)
	return &APIError{Status: resp.StatusCode, Message: envelope.Error}
}
