// Package groupme posts messages to a group chat through a GroupMe bot.
package groupme

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"github.com/tartampluch/go-encounter/internal/config"
)

// Poster implements engine.Poster.
type Poster struct {
	URL    string
	BotID  string
	Client *resty.Client
}

// message is the bots/post request body.
type message struct {
	Text  string `json:"text"`
	BotID string `json:"bot_id"`
}

func NewPoster(url, botID string) *Poster {
	return &Poster{
		URL:   url,
		BotID: botID,
		Client: resty.New().
			SetTimeout(config.HTTPTimeout).
			SetHeader(config.HeaderUserAgent, config.UserAgent),
	}
}

// Post sends one message. GroupMe answers 202 Accepted on success.
func (p *Poster) Post(ctx context.Context, text string) error {
	resp, err := p.Client.R().
		SetContext(ctx).
		SetHeader(config.HeaderContentType, config.MimeJSON).
		SetBody(message{Text: text, BotID: p.BotID}).
		Post(p.URL)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrPostMessage, err)
	}
	if resp.IsError() {
		slog.WarnContext(ctx, config.MsgRequestFailed,
			config.LogKeyComponent, config.CompGroupMe,
			config.LogKeyStatus, resp.StatusCode(),
		)
		return fmt.Errorf("%s: HTTP %d: %s", config.ErrPostStatus, resp.StatusCode(), resp.String())
	}
	return nil
}
