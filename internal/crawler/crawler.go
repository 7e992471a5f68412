package crawler

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abraham-mv/huon-test/internal/models"
	"github.com/abraham-mv/huon-test/internal/parser"
)

const DefaultUserAgent = "huon-lobby-crawler/1.0"

var (
	ErrInvalidURL      = errors.New("invalid url")
	ErrUnsupportedType = errors.New("unsupported content type")
)

// StatusError reports a non-success HTTP status.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.Code, e.URL)
}

// ClientOptions configures an HTTPClient.
type ClientOptions struct {
	Timeout     time.Duration
	DialTimeout time.Duration
	SizeCap     int64
	UserAgent   string
	// LegacyRenegotiation lets servers renegotiate TLS once per connection.
	LegacyRenegotiation bool
}

// Response is a fetched body decoded to UTF-8.
type Response struct {
	Body        []byte
	URL         string
	ContentType string
	Elapsed     time.Duration
}

type HTTPClient struct {
	client    *http.Client
	sizeCap   int64
	userAgent string
	parser    *parser.Parser
}

func NewHTTPClient(opts ClientOptions) *HTTPClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if opts.LegacyRenegotiation {
		transport.TLSClientConfig = &tls.Config{
			MinVersion:    tls.VersionTLS12,
			Renegotiation: tls.RenegotiateOnceAsClient,
		}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		sizeCap:   opts.SizeCap,
		userAgent: ua,
		parser:    parser.New(),
	}
}

// Do issues r, as a GET when Method is empty. Params are merged into the query string; Form is sent
// url-encoded and JSON as a JSON body, in that order of precedence.
func (h *HTTPClient) Do(ctx context.Context, r models.Request) (*Response, error) {
	start := time.Now()
	u, err := url.Parse(r.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, r.URL)
	}
	if len(r.Params) > 0 {
		q := u.Query()
		for k, v := range r.Params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	var bodyType string
	switch {
	case len(r.Form) > 0:
		form := url.Values{}
		for k, v := range r.Form {
			form.Set(k, v)
		}
		body = strings.NewReader(form.Encode())
		bodyType = "application/x-www-form-urlencoded"
	case r.JSON != nil:
		b, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, fmt.Errorf("encode json body: %w", err)
		}
		body = bytes.NewReader(b)
		bodyType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", h.userAgent)
	if bodyType != "" {
		req.Header.Set("Content-Type", bodyType)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, &StatusError{Code: resp.StatusCode, URL: u.String()}
	}

	contentType := resp.Header.Get("Content-Type")
	if !acceptable(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	var rd io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		rd = gz
	}
	// enforce a size cap
	if h.sizeCap > 0 {
		rd = io.LimitReader(rd, h.sizeCap)
	}
	data, err := h.parser.Decode(rd, contentType)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", u, err)
	}

	return &Response{
		Body:        data,
		URL:         resp.Request.URL.String(),
		ContentType: contentType,
		Elapsed:     time.Since(start),
	}, nil
}

// acceptable allows markup and JSON, and an absent content type.
func acceptable(contentType string) bool {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case mediaType == "":
		return true
	case strings.Contains(mediaType, "html"), strings.Contains(mediaType, "xml"):
		return true
	case strings.HasSuffix(mediaType, "json"):
		return true
	}
	return false
}
