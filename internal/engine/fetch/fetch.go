// Package fetch turns a stream URL into a byte stream with range/seek
// support over HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Kind separates transport-level failures from server-side ones.
type Kind int

const (
	KindNetwork Kind = iota
	KindServer
)

func (k Kind) String() string {
	if k == KindServer {
		return "server"
	}
	return "network"
}

// Error is a classified fetch failure.
type Error struct {
	Kind Kind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s failed (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

const (
	dialTimeout           = 10 * time.Second
	tlsHandshakeTimeout   = 10 * time.Second
	responseHeaderTimeout = 15 * time.Second
	idleConnTimeout       = 90 * time.Second
)

// Client opens audio streams at arbitrary byte offsets. The underlying HTTP
// client carries bounded connect and header timeouts but no overall deadline;
// streams are long-lived by nature.
type Client struct {
	http *http.Client
}

func NewClient() *Client {
	return &Client{
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: dialTimeout,
				}).DialContext,
				TLSHandshakeTimeout:   tlsHandshakeTimeout,
				ResponseHeaderTimeout: responseHeaderTimeout,
				IdleConnTimeout:       idleConnTimeout,
				DisableCompression:    true,
			},
		},
	}
}

// Open starts a fetch at the given byte offset. It returns the body stream
// and the total stream length when the server reports one (-1 otherwise).
// Cancellation goes through the context; a canceled open surfaces as a
// network-class error.
//
// When the server ignores the Range header and replies 200 to an offset
// request, the skipped prefix is discarded from the body so the caller still
// observes a stream starting at the requested offset.
func (c *Client) Open(ctx context.Context, url string, offset int64) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, &Error{Kind: KindServer, URL: url, Err: err}
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &Error{Kind: KindNetwork, URL: url, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusPartialContent:
		return resp.Body, totalFromContentRange(resp.Header.Get("Content-Range"), resp.ContentLength, offset), nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if offset > 0 {
			slog.Debug("server ignored range request, discarding prefix", "url", url, "offset", offset)
			if _, err := io.CopyN(io.Discard, resp.Body, offset); err != nil {
				resp.Body.Close()
				return nil, 0, &Error{Kind: KindNetwork, URL: url, Err: err}
			}
		}
		total := resp.ContentLength
		if total < 0 {
			total = -1
		}
		return resp.Body, total, nil
	default:
		resp.Body.Close()
		return nil, 0, &Error{
			Kind: KindServer,
			URL:  url,
			Err:  fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
}

// totalFromContentRange extracts the total length from a Content-Range header
// ("bytes start-end/total"), falling back to offset+ContentLength.
func totalFromContentRange(header string, contentLength, offset int64) int64 {
	if i := strings.LastIndexByte(header, '/'); i >= 0 {
		if total, err := strconv.ParseInt(header[i+1:], 10, 64); err == nil {
			return total
		}
	}
	if contentLength >= 0 {
		return offset + contentLength
	}
	return -1
}
