// Package googleauth builds authenticated HTTP clients for the Google APIs
// from a service account key.
package googleauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"

	"github.com/tartampluch/go-encounter/internal/config"
)

// HTTPClient returns a client that signs requests with the service account
// credentials in credsJSON. Token fetches and API calls share config.HTTPTimeout.
func HTTPClient(ctx context.Context, credsJSON []byte, scopes ...string) (*http.Client, error) {
	jwtCfg, err := google.JWTConfigFromJSON(credsJSON, scopes...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrGoogleCreds, err)
	}

	base := &http.Client{Timeout: config.HTTPTimeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	client := jwtCfg.Client(ctx)
	client.Timeout = config.HTTPTimeout
	return client, nil
}

// ErrIsReason reports whether err is a Google API error carrying reason.
func ErrIsReason(err error, reason string) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}
	for _, item := range gErr.Errors {
		if item.Reason == reason {
			return true
		}
	}
	return false
}

// Wrap annotates a Google API error with a readable prefix, keeping it
// inspectable through errors.As.
func Wrap(prefix string, err error) error {
	if ErrIsReason(err, config.GoogleReasonRateLimit) {
		return fmt.Errorf("%s: %s: %w", prefix, config.ErrGoogleRateLimited, err)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}
