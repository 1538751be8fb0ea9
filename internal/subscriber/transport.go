package subscriber

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/linkvault/internal/utils"
)

// maxFrameBytes bounds a single SSE line.
const maxFrameBytes = 1 << 20

// HTTPTransport opens the server's event stream over HTTP.
type HTTPTransport struct {
	url    string
	token  string
	client *http.Client
}

// NewHTTPTransport targets <server>/api/events. A non-empty token is sent
// as a bearer token so the stream is opened with the admin capability.
func NewHTTPTransport(server, token string, client *http.Client) *HTTPTransport {
	if client == nil {
		// No client timeout: the stream is long-lived and bounded by ctx.
		client = &http.Client{}
	}
	return &HTTPTransport{
		url:    strings.TrimRight(server, "/") + "/api/events",
		token:  token,
		client: client,
	}
}

// Open issues the stream request and fails unless the server answers 200
// with an event-stream body.
func (t *HTTPTransport) Open(ctx context.Context) (Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		utils.Close(resp.Body)
		return nil, fmt.Errorf("unexpected stream status: %s", resp.Status)
	}
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt != "text/event-stream" {
		utils.Close(resp.Body)
		return nil, fmt.Errorf("unexpected stream content type: %q", mt)
	}

	return NewSSEStream(resp.Body), nil
}

// SSEStream parses Server-Sent Events from r. Only data fields are kept;
// comment lines (keep-alives) and other fields are skipped.
type SSEStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

// NewSSEStream reads events from body and owns it until Close.
func NewSSEStream(body io.ReadCloser) *SSEStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameBytes)
	return &SSEStream{body: body, scanner: scanner}
}

// Next returns the data of the next complete event. A stream that ends,
// even cleanly, is an error: the server never closes a healthy stream.
func (s *SSEStream) Next() ([]byte, error) {
	var data [][]byte
	for s.scanner.Scan() {
		line := s.scanner.Bytes()
		switch {
		case len(line) == 0:
			if len(data) > 0 {
				return bytes.Join(data, []byte("\n")), nil
			}
		case line[0] == ':':
			// comment / keep-alive
		case bytes.HasPrefix(line, []byte("data:")):
			v := bytes.TrimPrefix(line[len("data:"):], []byte(" "))
			data = append(data, append([]byte(nil), v...))
		}
	}
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.ErrUnexpectedEOF
}

// Close closes the underlying body, unblocking a pending Next.
func (s *SSEStream) Close() error {
	return s.body.Close()
}
