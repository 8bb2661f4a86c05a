package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
)

// Settings is the runtime configuration, built once at process start and
// passed to every component that needs it.
type Settings struct {
	AuthToken          string // Shared secret expected in the callback query string
	BotID              string // GroupMe bot identifier
	SheetID            string // Google Sheets spreadsheet holding the birthdays
	CalendarID         string // Google Calendar listed by "event list"
	ServiceAccountJSON string // Google service account key (JSON)

	Registry   string // RegistrySheets or RegistrySQLite
	SQLitePath string

	ListenAddr    string
	Language      string
	Location      *time.Location
	DailySchedule string // cron spec of the daily birthday check
	FeedSchedule  string // cron spec of the iCalendar feed refresh
	GroupMeURL    string
}

// Requirement names a group of settings a command needs.
type Requirement int

const (
	NeedTransport Requirement = iota // BotID
	NeedCallback                     // AuthToken
	NeedRegistry                     // SheetID + credentials, or a sqlite path
	NeedCalendar                     // CalendarID + credentials
)

// secretEnv lists the variables that fall back to the OS keyring when unset.
var secretEnv = []string{EnvAuthToken, EnvBotID, EnvServiceAccount}

// Load reads the optional dotenv file, then the process environment, then the
// keyring for secrets still missing.
func Load(envFile string) (*Settings, error) {
	log := slog.With(LogKeyComponent, CompConfig)

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%s: %w", ErrEnvFile, err)
			}
			log.Debug(MsgEnvFileMissing, LogKeyFile, envFile)
		}
	}

	s := &Settings{
		AuthToken:          lookup(EnvAuthToken, ""),
		BotID:              lookup(EnvBotID, ""),
		SheetID:            lookup(EnvSheetID, ""),
		CalendarID:         lookup(EnvCalendarID, ""),
		ServiceAccountJSON: lookup(EnvServiceAccount, ""),
		Registry:           lookup(EnvRegistry, DefaultRegistry),
		SQLitePath:         lookup(EnvSQLitePath, DefaultSQLitePath),
		ListenAddr:         lookup(EnvListenAddr, DefaultListenAddr),
		Language:           lookup(EnvLanguage, DefaultLanguage),
		DailySchedule:      lookup(EnvDailySchedule, DefaultDailySchedule),
		FeedSchedule:       lookup(EnvFeedSchedule, DefaultFeedSchedule),
		GroupMeURL:         lookup(EnvGroupMeURL, DefaultGroupMeURL),
	}

	s.Location = time.Local
	if tz := lookup(EnvTimezone, ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", ErrTimezone, tz, err)
		}
		s.Location = loc
	}

	if s.Registry != RegistrySheets && s.Registry != RegistrySQLite {
		return nil, fmt.Errorf("%s: %q", ErrUnknownRegistry, s.Registry)
	}
	if !slices.Contains(SupportedLanguages, s.Language) {
		return nil, fmt.Errorf("%s: %q", ErrUnsupportedLang, s.Language)
	}
	return s, nil
}

// Validate reports the first missing setting among the given requirements.
func (s *Settings) Validate(reqs ...Requirement) error {
	for _, r := range reqs {
		switch r {
		case NeedTransport:
			if s.BotID == "" {
				return missing(EnvBotID)
			}
		case NeedCallback:
			if s.AuthToken == "" {
				return missing(EnvAuthToken)
			}
		case NeedRegistry:
			if s.Registry == RegistrySQLite {
				if s.SQLitePath == "" {
					return missing(EnvSQLitePath)
				}
				continue
			}
			if s.SheetID == "" {
				return missing(EnvSheetID)
			}
			if s.ServiceAccountJSON == "" {
				return missing(EnvServiceAccount)
			}
		case NeedCalendar:
			if s.CalendarID == "" {
				return missing(EnvCalendarID)
			}
			if s.ServiceAccountJSON == "" {
				return missing(EnvServiceAccount)
			}
		}
	}
	return nil
}

// HasCalendar reports whether event commands can be served.
func (s *Settings) HasCalendar() bool {
	return s.Validate(NeedCalendar) == nil
}

func missing(env string) error {
	return fmt.Errorf("%s: %s", ErrMissingSetting, env)
}

// lookup returns the environment value of key, the keyring value for secrets,
// or fallback.
func lookup(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	if slices.Contains(secretEnv, key) {
		if v, err := keyring.Get(KeyringService, key); err == nil && v != "" {
			slog.Debug(MsgSecretKeyring, LogKeyComponent, CompConfig, LogKeyKey, key)
			return v
		} else if err != nil {
			slog.Debug(MsgSecretMissing, LogKeyComponent, CompConfig, LogKeyKey, key, LogKeyError, err)
		}
	}
	return fallback
}

// Secret reads an arbitrary secret from the keyring, e.g. a CardDAV password
// stored under the username.
func Secret(user string) (string, error) {
	return keyring.Get(KeyringService, user)
}
