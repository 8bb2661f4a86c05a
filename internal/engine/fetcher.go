package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/tartampluch/go-encounter/internal/config"
)

// ContactFetcher retrieves a vCard stream from a remote address book.
type ContactFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher implements ContactFetcher over HTTP(S) with optional basic auth.
type HTTPFetcher struct {
	Client *resty.Client
}

// NewHTTPFetcher creates a fetcher with the shared timeout and User-Agent.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: resty.New().
			SetTimeout(config.HTTPTimeout).
			SetHeader(config.HeaderUserAgent, config.UserAgent),
	}
}

// Fetch downloads the address book. The returned body is capped at
// config.MaxHTTPResponseSize and must be closed by the caller.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	// Query strings may carry tokens; keep them out of the logs.
	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path),
	)
	log.Debug(config.MsgFetchStart)

	req := f.Client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := req.Get(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrImportSource, err)
	}

	body := resp.RawBody()
	if resp.StatusCode() != http.StatusOK {
		if body != nil {
			_ = body.Close()
		}
		log.Warn(config.MsgFetchStatus, slog.Int(config.LogKeyStatus, resp.StatusCode()))
		return nil, fmt.Errorf("%s: %s", config.ErrImportSource, resp.Status())
	}

	log.Info(config.MsgFetchDownload, slog.Int64(config.LogKeySizeBytes, resp.RawResponse.ContentLength))
	return &limitedReadCloser{
		Reader: io.LimitReader(body, config.MaxHTTPResponseSize),
		Closer: body,
	}, nil
}

// limitedReadCloser caps reads while still closing the underlying connection.
type limitedReadCloser struct {
	io.Reader
	io.Closer
}
