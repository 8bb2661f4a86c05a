package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tartampluch/go-encounter/internal/config"
)

// Poster delivers one chat message.
type Poster interface {
	Post(ctx context.Context, text string) error
}

// Renderer turns replies into transport sized chunks and posts them in order.
type Renderer struct {
	Poster Poster
	Limit  int           // Every chunk stays strictly under this many characters.
	Delay  time.Duration // Pause between consecutive chunks.

	// Sleep waits for d and reports whether the context is still alive.
	// Tests replace it to avoid real pauses.
	Sleep func(ctx context.Context, d time.Duration) bool
}

// NewRenderer returns a Renderer with the transport defaults.
func NewRenderer(p Poster) *Renderer {
	return &Renderer{
		Poster: p,
		Limit:  config.ChunkLimit,
		Delay:  config.ChunkDelay,
		Sleep:  sleep,
	}
}

// Send posts text, split into chunks when it is too long for one message.
func (r *Renderer) Send(ctx context.Context, text string) error {
	chunks := Chunk(text, r.Limit)
	log := slog.With(config.LogKeyComponent, config.CompRenderer)

	for i, c := range chunks {
		if i > 0 {
			wait := r.Sleep
			if wait == nil {
				wait = sleep
			}
			if !wait(ctx, r.Delay) {
				return ctx.Err()
			}
		}

		out := Guard(trimLeadingNewline(c))
		if err := r.Poster.Post(ctx, out); err != nil {
			return fmt.Errorf("%s: %w", config.ErrPostMessage, err)
		}
		log.DebugContext(ctx, config.MsgChunkSent,
			config.LogKeyChunk, i+1,
			config.LogKeyChunks, len(chunks),
		)
	}
	return nil
}

// SendLines posts a header followed by one tab indented line per entry.
// With no lines it posts empty instead, or nothing at all when silent.
func (r *Renderer) SendLines(ctx context.Context, header string, lines []string, empty string, silent bool) error {
	if len(lines) == 0 {
		if silent {
			return nil
		}
		return r.Send(ctx, empty)
	}

	var b strings.Builder
	b.WriteString(header)
	for _, l := range lines {
		b.WriteString("\n\t")
		b.WriteString(l)
	}
	return r.Send(ctx, b.String())
}

// Chunk splits message into pieces shorter than limit characters.
//
// A message already under the limit is returned as is. Otherwise lines are
// packed greedily, each one prefixed by the newline that separated it, so the
// concatenated chunks equal "\n" + message. A line too long for any chunk is
// cut on rune boundaries.
func Chunk(message string, limit int) []string {
	if limit < 2 {
		limit = 2
	}
	if utf8.RuneCountInString(message) < limit {
		return []string{message}
	}

	var (
		chunks []string
		buf    strings.Builder
		size   int
	)
	flush := func() {
		if size > 0 {
			chunks = append(chunks, buf.String())
			buf.Reset()
			size = 0
		}
	}

	for _, line := range strings.Split(message, "\n") {
		piece := "\n" + line
		n := utf8.RuneCountInString(piece)
		if size+n < limit {
			buf.WriteString(piece)
			size += n
			continue
		}
		flush()
		for n >= limit {
			head, rest := splitRunes(piece, limit-1)
			chunks = append(chunks, head)
			piece = rest
			n -= limit - 1
		}
		buf.WriteString(piece)
		size = n
	}
	flush()
	return chunks
}

// Guard neutralizes a chunk that would invoke the bot again when echoed back.
func Guard(chunk string) string {
	if strings.HasPrefix(chunk, config.CommandPrefix) {
		return config.GuardMarker + strings.TrimPrefix(chunk, config.CommandPrefix)
	}
	if chunk == config.CommandAlias || strings.HasPrefix(chunk, config.CommandAlias+" ") {
		return config.GuardMarker + strings.TrimPrefix(chunk, config.CommandAlias)
	}
	return chunk
}

// trimLeadingNewline drops the separator newline a chunk starts with, unless
// the next character is a space.
func trimLeadingNewline(chunk string) string {
	if len(chunk) > 1 && chunk[0] == '\n' && chunk[1] != ' ' {
		return chunk[1:]
	}
	return chunk
}

func splitRunes(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
