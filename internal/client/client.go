package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/lookback/internal/history"
)

const (
	defaultTimeout = 10 * time.Second
	defaultRetries = 3
)

// Client fetches history pages from the data endpoint over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
	retries int
	backoff time.Duration
}

// New returns a client for the endpoint at baseURL, typically
// http://127.0.0.1:<port>/history/data. Zero timeout or retries fall
// back to the defaults.
func New(baseURL string, timeout time.Duration, retries int) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if retries <= 0 {
		retries = defaultRetries
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		retries: retries,
		backoff: time.Second,
	}
}

// FetchPage requests one page of history. Retryable failures are
// retried with exponential backoff up to the configured attempt count;
// everything else surfaces immediately as a *Error.
func (c *Client) FetchPage(ctx context.Context, req history.PageRequest) ([]history.Entry, error) {
	u := c.pageURL(req)

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			delay := c.backoff * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		entries, err := c.fetchOnce(ctx, u)
		if err == nil {
			return entries, nil
		}

		var fe *Error
		if errors.As(err, &fe) && fe.Retryable() {
			lastErr = err
			continue
		}
		return nil, err
	}

	return nil, lastErr
}

func (c *Client) pageURL(req history.PageRequest) string {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(req.Offset))
	if req.StartTime != nil {
		q.Set("start_time", strconv.FormatInt(*req.StartTime, 10))
	}
	return c.baseURL + "?" + q.Encode()
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]history.Entry, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: err.Error(), Err: err}
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &Error{
			Kind:       KindTransport,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	return decodePage(resp.Body)
}

// wireEntry uses pointers so absent fields are detectable: an entry
// without url or time is malformed rather than zero-valued.
type wireEntry struct {
	URL   *string `json:"url"`
	Title *string `json:"title"`
	Time  *int64  `json:"time"`
}

// decodePage parses a response body into entries. The payload must be
// a JSON array; in particular a bare null is malformed, never end of
// history.
func decodePage(r io.Reader) ([]history.Entry, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, &Error{Kind: KindMalformed, Message: "decode payload: " + err.Error(), Err: err}
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &Error{Kind: KindMalformed, Message: "payload is not an array"}
	}

	var wire []wireEntry
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return nil, &Error{Kind: KindMalformed, Message: "decode entries: " + err.Error(), Err: err}
	}

	entries := make([]history.Entry, 0, len(wire))
	for i, w := range wire {
		if w.URL == nil || w.Time == nil {
			return nil, &Error{Kind: KindMalformed, Message: fmt.Sprintf("entry %d missing url or time", i)}
		}
		e := history.Entry{URL: *w.URL, Time: *w.Time}
		if w.Title != nil {
			e.Title = *w.Title
		}
		entries = append(entries, e)
	}
	return entries, nil
}
