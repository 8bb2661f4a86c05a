package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-encounter/internal/config"
)

// ImportStats summarizes a vCard import.
type ImportStats struct {
	Cards    int // Cards decoded
	Imported int // Rows appended to the registry
	Skipped  int // Cards without a usable birthday, or already registered
}

// Importer copies birthdays from a vCard stream into a registry.
type Importer struct {
	Registry BirthdayRegistry
}

// Import appends every contact with a full birth date. Cards without a year
// cannot produce an age and are skipped, as are rows already registered.
func (im *Importer) Import(ctx context.Context, r io.Reader) (ImportStats, error) {
	var stats ImportStats

	existing, err := im.Registry.ListBirthdays(ctx)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", config.ErrListBirthdays, err)
	}
	known := make(map[BirthdayRecord]bool, len(existing))
	for _, rec := range existing {
		known[rec] = true
	}

	log := slog.With(config.LogKeyComponent, config.CompImporter)
	decoder := vcard.NewDecoder(r)
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Keep going, one bad card should not stop the import.
			log.Warn(config.MsgSkippedCard, config.LogKeyError, err)
			stats.Skipped++
			continue
		}
		stats.Cards++

		rec, ok := recordFromCard(card, log)
		if !ok || known[rec] {
			stats.Skipped++
			continue
		}
		if err := im.Registry.AddBirthday(ctx, rec); err != nil {
			return stats, fmt.Errorf("%s: %w", config.ErrAddBirthday, err)
		}
		known[rec] = true
		stats.Imported++
	}

	log.Info(config.MsgImportDone,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.Cards),
			slog.Int(config.LogKeyImported, stats.Imported),
			slog.Int(config.LogKeySkipped, stats.Skipped),
		),
	)
	return stats, nil
}

// recordFromCard prefers FN over the structured N for the name.
func recordFromCard(card vcard.Card, log *slog.Logger) (BirthdayRecord, bool) {
	bday := card.Get(config.VCardBDAY)
	if bday == nil || bday.Value == "" {
		return BirthdayRecord{}, false
	}

	birth, yearKnown, err := parseContactDate(bday.Value)
	if err != nil {
		log.Debug(config.MsgSkippedDate, config.LogKeyValue, bday.Value)
		return BirthdayRecord{}, false
	}
	if !yearKnown {
		log.Debug(config.MsgSkippedNoYear, config.LogKeyValue, bday.Value)
		return BirthdayRecord{}, false
	}

	var name string
	if fn := card.Get(config.VCardFN); fn != nil {
		name = strings.TrimSpace(fn.Value)
	} else if n := card.Name(); n != nil {
		name = strings.TrimSpace(n.GivenName + " " + n.FamilyName)
	}
	if name == "" {
		return BirthdayRecord{}, false
	}
	return BirthdayRecord{Name: name, Date: FormatBirthDate(birth)}, true
}

// parseContactDate handles the vCard BDAY forms, with and without a year.
func parseContactDate(value string) (time.Time, bool, error) {
	withYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range withYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	// Year unknown: pin to a leap year so Feb 29 survives.
	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
