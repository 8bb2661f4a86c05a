package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-encounter/internal/config"
	"github.com/tartampluch/go-encounter/internal/engine"
)

// Bot is the command side the webhook drives.
type Bot interface {
	Dispatch(ctx context.Context, text, sender string) error
	DailyCheck(ctx context.Context) error
}

// callbackMessage holds the fields of a GroupMe callback the bot reads.
type callbackMessage struct {
	Text       string `json:"text"`
	Name       string `json:"name"`
	SenderType string `json:"sender_type"`
}

// cacheItem stores the rendered feed and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// Server receives chat callbacks and serves the birthday feed.
type Server struct {
	Addr      string
	AuthToken string
	Bot       Bot

	// feed is read on every calendar poll and replaced on refresh only.
	feed atomic.Pointer[cacheItem]
}

func New(addr, authToken string, bot Bot) *Server {
	return &Server{Addr: addr, AuthToken: authToken, Bot: bot}
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteCallback, s.handleCallback)
	mux.HandleFunc(config.RouteDaily, s.handleDaily)
	mux.HandleFunc(config.RouteFeed, s.handleFeed)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s.Addr == "" {
		return errors.New(config.ErrAddrRequired)
	}

	srv := &http.Server{
		Addr:         s.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyAddr, s.Addr,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// UpdateFeed atomically replaces the served iCalendar content.
func (s *Server) UpdateFeed(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	s.feed.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// authorized requires the auth_token query parameter to match. An empty
// configured token rejects everything.
func (s *Server) authorized(r *http.Request) bool {
	values, ok := r.URL.Query()[config.QueryAuthToken]
	if !ok || len(values) == 0 || s.AuthToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(values[0]), []byte(s.AuthToken)) == 1
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	if !s.checkRequest(w, r) {
		return
	}

	var msg callbackMessage
	body := http.MaxBytesReader(w, r.Body, config.MaxCallbackBodySize)
	if err := json.NewDecoder(body).Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": config.ErrDecodeCallback})
		return
	}

	log := slog.With(config.LogKeyComponent, config.CompServer, config.LogKeySender, msg.Name)
	log.Debug(config.MsgRequestReceived, config.LogKeyText, msg.Text)

	if msg.SenderType == config.SenderTypeBot {
		log.Debug(config.MsgIgnoredBot)
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}

	// Replies are paced; finish them even if the webhook caller hangs up.
	ctx := context.WithoutCancel(r.Context())
	if err := s.Bot.Dispatch(ctx, msg.Text, msg.Name); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	if !s.checkRequest(w, r) {
		return
	}
	if err := s.Bot.DailyCheck(context.WithoutCancel(r.Context())); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// checkRequest enforces POST and the shared token, writing the rejection itself.
func (s *Server) checkRequest(w http.ResponseWriter, r *http.Request) bool {
	if !s.authorized(r) {
		slog.Warn(config.MsgUnauthorized,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyRemote, r.RemoteAddr,
			config.LogKeyURL, r.URL.Path,
			config.LogKeyReason, config.ErrUnauthorized,
		)
		w.Header().Set(config.HeaderContentType, config.MimeTextPlain)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, config.HTTPMsgUnauthorized)
		return false
	}
	if r.Method != http.MethodPost {
		w.Header().Set(config.HeaderAllow, http.MethodPost)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// fail maps a dispatch error to a status: bad user input is the caller's
// fault, anything else is an upstream failure.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var pe *engine.ParseError
	if errors.As(err, &pe) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": pe.Error()})
		return
	}
	slog.Error(config.MsgRequestFailed,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyError, err,
	)
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": config.HTTPMsgBadGateway})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// handleFeed serves the iCalendar feed with HTTP caching support.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethodsFeed)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	item := s.feed.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}
