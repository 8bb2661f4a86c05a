package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Encounter/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Encounter Bot"
	AppID          = "com.github.tartampluch.go-encounter"
	KeyringService = "com.github.tartampluch.go-encounter"
	CommandName    = "encounter"
	LogFileName    = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagDebug    = "debug"
	FlagEnvFile  = "env-file"
	FlagAs       = "as"
	FlagDryRun   = "dry-run"
	FlagUser     = "user"
	FlagCalendar = "output"

	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescEnvFile  = "Optional dotenv file loaded before reading the environment"
	FlagDescAs       = "Sender name used for the command"
	FlagDescDryRun   = "Print the replies to stdout instead of posting them"
	FlagDescUser     = "Username for CardDAV basic auth (password is read from the keyring)"
	FlagDescCalendar = "Write the iCalendar feed to this file instead of stdout"

	CmdDaily  = "daily"
	CmdServe  = "serve"
	CmdExec   = "exec <text>"
	CmdImport = "import <file.vcf|url>"
	CmdExport = "export"

	CmdDescRoot   = "GroupMe bot answering birthday and calendar commands"
	CmdDescDaily  = "Post today's birthdays (the default when no command is given)"
	CmdDescServe  = "Serve the GroupMe callback and the birthday feed, with scheduled jobs"
	CmdDescExec   = "Run one bot command, as if it was posted in the chat"
	CmdDescImport = "Import birthdays from a vCard file or a CardDAV address book URL"
	CmdDescExport = "Write the birthday iCalendar feed"

	JobDaily = "daily-check"
	JobFeed  = "feed-refresh"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
	MsgImportSummary = "Imported %d birthdays from %d contacts (%d skipped)\n"
	DefaultEnvFile   = ".env"
	DefaultSender    = "cli"
)

// -----------------------------------------------------------------------------
// Environment Variables
// -----------------------------------------------------------------------------

const (
	EnvAuthToken      = "API_CALLBACK_AUTH_TOKEN"
	EnvBotID          = "BOT_ID"
	EnvSheetID        = "GOOGLE_SHEET_ID"
	EnvCalendarID     = "GOOGLE_CALENDAR_ID"
	EnvServiceAccount = "GOOGLE_SERVICE_ACCOUNT_CREDS"
	EnvRegistry       = "ENCOUNTER_REGISTRY"
	EnvSQLitePath     = "ENCOUNTER_SQLITE_PATH"
	EnvListenAddr     = "ENCOUNTER_LISTEN_ADDR"
	EnvLanguage       = "ENCOUNTER_LANGUAGE"
	EnvTimezone       = "ENCOUNTER_TIMEZONE"
	EnvDailySchedule  = "ENCOUNTER_DAILY_SCHEDULE"
	EnvFeedSchedule   = "ENCOUNTER_FEED_SCHEDULE"
	EnvGroupMeURL     = "ENCOUNTER_GROUPME_URL"
)

// -----------------------------------------------------------------------------
// Bot Commands
// -----------------------------------------------------------------------------

const (
	// CommandPrefix is the long form invocation prefix.
	CommandPrefix = "!encounter"
	// CommandAlias is rewritten to CommandPrefix before parsing.
	CommandAlias = "!e"
	// GuardMarker replaces an invocation prefix at the start of an outbound chunk.
	GuardMarker = "$"

	VerbBirthday = "birthday"
	VerbEvent    = "event"
	VerbAdd      = "add"
	VerbList     = "list"

	WindowYear  = "year"
	WindowMonth = "month"
	WindowWeek  = "week"
	WindowDay   = "day"

	// SenderTypeBot marks callbacks emitted by bots, including this one.
	SenderTypeBot = "bot"
)

// -----------------------------------------------------------------------------
// Message Chunking
// -----------------------------------------------------------------------------

const (
	// ChunkLimit is the length a transmitted chunk must stay under.
	ChunkLimit = 450
	// ChunkDelay paces consecutive chunks to respect the transport rate limit.
	ChunkDelay = 1 * time.Second
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	RegistrySheets       = "sheets"
	RegistrySQLite       = "sqlite"
	DefaultRegistry      = RegistrySheets
	DefaultSQLitePath    = "encounter.db"
	DefaultListenAddr    = ":8080"
	DefaultLanguage      = "en"
	DefaultDailySchedule = "0 9 * * *"
	DefaultFeedSchedule  = "@every 1h"
	DefaultGroupMeURL    = "https://api.groupme.com/v3/bots/post"
	DefaultLeapYear      = 2000 // Leap year fallback for dates like --02-29
	MaxUpcomingEvents    = 10
	UIDSalt              = "go-encounter-v1-" // Salt for deterministic UID generation
)

// SupportedLanguages defines the list of available bot languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Google APIs
// -----------------------------------------------------------------------------

const (
	// SheetReadRange covers the birthday rows below the header of the first sheet.
	SheetReadRange = "A2:B1000"
	// SheetAppendRange anchors appended rows below the header.
	SheetAppendRange       = "A2"
	SheetValueInputOption  = "USER_ENTERED"
	SheetInsertDataOption  = "INSERT_ROWS"
	CalendarOrderBy        = "startTime"
	GoogleReasonRateLimit  = "rateLimitExceeded"
	GoogleReasonNotFound   = "notFound"
	GoogleSheetsScope      = "https://www.googleapis.com/auth/spreadsheets"
	GoogleCalendarScope    = "https://www.googleapis.com/auth/calendar.readonly"
	GoogleDateFormat       = "2006-01-02"
	GoogleDateTimeFormat   = time.RFC3339
	SheetColumnName        = 0
	SheetColumnDate        = 1
	SheetColumnsPerRow     = 2
	SQLiteDriverName       = "sqlite3"
	SQLiteMaxOpenConns     = 1
	SQLiteMemoryDataSource = ":memory:"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Encounter//Engine//EN"
	ICalCalName = "Birthdays"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "goencounter"

	// iCal/vCard Fields
	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"

	DefaultICalRefresh = 1 * time.Hour

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & Display
// -----------------------------------------------------------------------------

const (
	// DateFormatInput parses the M/D/YYYY registry and command format.
	// Single and double digit months and days are both accepted.
	DateFormatInput = "1/2/2006"
	// DateFormatCanonical is the zero padded form written to the registry.
	DateFormatCanonical = "01/02/2006"
	// DateFormatDisplay renders "Fri Mar 15".
	DateFormatDisplay = "Mon Jan 2"
	// TimeFormatDisplay renders "3:04PM".
	TimeFormatDisplay = "3:04PM"

	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"

	MaxHTTPResponseSize = 16 * 1024 * 1024 // 16MB of vCards is plenty
	MaxCallbackBodySize = 64 * 1024
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout        = 30 * time.Second
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 60 * time.Second // Long chunked replies are paced inside the request.
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethodsFeed = "GET, HEAD"
	SchemeHTTP         = "http"
	SchemeHTTPS        = "https"

	RouteCallback = "/callback"
	RouteDaily    = "/daily"
	RouteFeed     = "/birthdays.ics"

	QueryAuthToken = "auth_token"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeTextPlain       = "text/plain"
	MimeJSON            = "application/json"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrDateParse         = "unable to parse date"
	ErrMissingName       = "missing name after date"
	ErrMalformedRow      = "malformed birthday row"
	ErrListBirthdays     = "failed to list birthdays"
	ErrAddBirthday       = "failed to add birthday"
	ErrListEvents        = "failed to list events"
	ErrEventParse        = "unable to parse event start"
	ErrNoEventSource     = "no calendar is configured"
	ErrPostMessage       = "failed to post message"
	ErrPostStatus        = "chat transport returned unexpected status"
	ErrServerStartup     = "server startup failed"
	ErrServerShutdown    = "server shutdown failed"
	ErrAddrRequired      = "listen address is required"
	ErrInvalidURL        = "invalid URL structure"
	ErrProtocol          = "unsupported protocol scheme (http/https only)"
	ErrICalEncode        = "failed to encode iCalendar data"
	ErrImportSource      = "failed to open contact source"
	ErrLogFile           = "failed to open log file"
	ErrCacheDir          = "could not determine user cache dir"
	ErrCreateDir         = "could not create app cache dir"
	ErrAppFailed         = "application failed unexpectedly"
	ErrWriteResp         = "failed to write response body"
	ErrLocalesAccess     = "failed to access embedded locales"
	ErrLocaleLoad        = "failed to load locale file"
	ErrUnsupportedLang   = "unsupported language"
	ErrMissingSetting    = "missing required setting"
	ErrUnknownRegistry   = "unknown registry driver"
	ErrTimezone          = "invalid timezone"
	ErrEnvFile           = "failed to load env file"
	ErrGoogleCreds       = "failed to parse google service account credentials"
	ErrGoogleService     = "failed to create google service"
	ErrSQLiteOpen        = "failed to open sqlite database"
	ErrSQLiteMigrate     = "failed to run sqlite migrations"
	ErrSchedule          = "invalid schedule"
	ErrUnauthorized      = "unauthorized callback"
	ErrDecodeCallback    = "failed to decode callback body"
	ErrFeedBuild         = "failed to build birthday feed"
	ErrGoogleRateLimited = "google api rate limit exceeded"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgUnauthorized = "Unauthorized"
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgBadGateway   = "Upstream service failed"
	HTTPBodyEmptyJSON   = "{}"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting     = "Starting application"
	MsgAppStop         = "Application stopped gracefully"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Calendar cache updated"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgSecretKeyring   = "Secret read from keyring"
	MsgSecretMissing   = "Secret not found in keyring"
	MsgEnvFileMissing  = "Env file not found, using environment only"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgRequestReceived = "Received request"
	MsgUnauthorized    = "Received unauthorized callback"
	MsgIgnoredBot      = "Ignoring message sent by a bot"
	MsgIgnoredText     = "Ignoring message without command prefix"
	MsgCommand         = "Dispatching command"
	MsgBirthdayAdded   = "Birthday added"
	MsgListing         = "Listing entries"
	MsgChunkSent       = "Chunk posted"
	MsgDailyCheck      = "Running daily birthday check"
	MsgEventsFetching  = "Getting the upcoming events"
	MsgSkippedCard     = "Skipping malformed vCard"
	MsgSkippedDate     = "Skipping invalid date format"
	MsgSkippedNoYear   = "Skipping birthday without year"
	MsgImportDone      = "Contact import finished"
	MsgGenSuccess      = "Calendar generation successful"
	MsgJobFailed       = "Scheduled job failed"
	MsgJobDone         = "Scheduled job finished"
	MsgJobAdded        = "Scheduled job registered"
	MsgSchedulerStart  = "Scheduler started"
	MsgSchedulerStop   = "Scheduler stopped"
	MsgRequestFailed   = "Request processing failed"
	MsgGoogleRequest   = "Calling google api"
	MsgFetchStart      = "Initiating vCard download"
	MsgFetchStatus     = "Server returned error status"
	MsgFetchDownload   = "vCards downloading"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyHelp            = "help"
	TKeyHelpBirthday    = "help_birthday"
	TKeyHelpEvent       = "help_event"
	TKeyHeaderBirthdays = "header_birthdays"
	TKeyHeaderEvents    = "header_events"
	TKeyEmptyBirthdays  = "empty_birthdays"
	TKeyEmptyEvents     = "empty_events"
	TKeyBirthdayLine    = "birthday_line"      // Requires Name, Date, Age
	TKeyEventLineTimed  = "event_line_timed"   // Requires Summary, Date, Time
	TKeyEventLineAllDay = "event_line_allday"  // Requires Summary, Date
	TKeyBirthdayAdded   = "birthday_added"     // Requires Sender, Name, Date
	TKeyFeedSummary     = "feed_summary"       // Requires Name, Age
	TKeyFeedBirth       = "feed_summary_birth" // Requires Name (For age 0)
)

// -----------------------------------------------------------------------------
// Fallbacks
// -----------------------------------------------------------------------------

const (
	FallbackSummaryAge   = "Birthday: %s (%d)"
	FallbackSummaryBirth = "Birthday: %s (birth)"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyAddr      = "addr"
	LogKeyRemote    = "remote"
	LogKeySender    = "sender"
	LogKeyText      = "text"
	LogKeyCommand   = "command"
	LogKeyWindow    = "window"
	LogKeyCount     = "count"
	LogKeyChunk     = "chunk"
	LogKeyChunks    = "chunks"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyJob       = "job"
	LogKeySchedule  = "schedule"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyTotal     = "total_cards"
	LogKeyImported  = "imported"
	LogKeySkipped   = "skipped"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"
	LogKeyReason    = "reason"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain      = "main"
	CompConfig    = "config"
	CompEngine    = "engine"
	CompDispatch  = "dispatcher"
	CompRenderer  = "renderer"
	CompServer    = "server"
	CompFetcher   = "fetcher"
	CompImporter  = "importer"
	CompScheduler = "scheduler"
	CompI18n      = "i18n"
	CompSheets    = "sheets"
	CompSQLite    = "sqlite"
	CompCalendar  = "calendar"
	CompGroupMe   = "groupme"
)
