// =============================================================================
// Supplier Follow-up Mailer - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Settings come from two
// layers, applied in order:
//   1. The YAML config file (config.yaml by default). A missing file is not
//      an error; every setting has a default.
//   2. Environment variables (optionally from a .env file). These carry the
//      transport secrets and a few operational overrides.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/po-followup-mailer/internal/types"
)

// Transport provider names.
const (
	ProviderFile     = "file"
	ProviderResend   = "resend"
	ProviderPostmark = "postmark"
	ProviderSMTP     = "smtp"
)

// ErrInvalidConfig is returned when the configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// Input controls how spreadsheets are read.
	Input InputConfig `yaml:"input"`

	// Columns names the columns used for grouping, recipients and CC.
	Columns ColumnsConfig `yaml:"columns"`

	// Message holds the fixed parts of every outgoing email.
	Message MessageConfig `yaml:"message"`

	// Transport selects and configures the mail provider.
	Transport TransportConfig `yaml:"transport"`

	// ArchiveDir receives the input file after a run with no failures.
	// Empty disables archiving.
	ArchiveDir string `yaml:"archive_dir" env:"ARCHIVE_DIR"`

	// ArchiveTimestampSubdirs files archived inputs under YYYY/MM/DD.
	// Default: false
	ArchiveTimestampSubdirs bool `yaml:"archive_timestamp_subdirs" env:"ARCHIVE_TIMESTAMP_SUBDIRS"`

	// ReportDir receives a summary log for every send run.
	// Empty disables the summary log.
	ReportDir string `yaml:"report_dir" env:"REPORT_DIR"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// LogFormat is "console" or "json".
	// Default: "console"
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`
}

// InputConfig controls spreadsheet parsing.
type InputConfig struct {
	// Sheet is the worksheet to read from XLSX files.
	// Default: the first sheet.
	Sheet string `yaml:"sheet"`

	// HeaderRow is the 1-based row holding the column names.
	// Default: 1
	HeaderRow int `yaml:"header_row"`

	// DateLayouts are Go time layouts tried in order for dates stored as
	// text. Slash dates are day first by default; set ["01/02/2006"] for
	// month-first exports.
	// Default: types.DefaultDateLayouts
	DateLayouts []string `yaml:"date_layouts"`

	// CSV holds settings used when the input is a .csv file.
	CSV CSVSettings `yaml:"csv"`
}

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), ";" (semicolon), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the CSV file.
	// Supported values: "UTF-8", "ISO-8859-1", "Windows-1252"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`
}

// ColumnsConfig names the columns with special meaning.
type ColumnsConfig struct {
	// GroupBy is the column rows are grouped by. One email is sent per
	// distinct value.
	// Default: "Supplier Name"
	GroupBy string `yaml:"group_by"`

	// Recipient is the column holding the To address. When it equals
	// GroupBy the group key itself is used as the address.
	// Default: "Supplier Name"
	Recipient string `yaml:"recipient"`

	// CC is the optional column holding carbon-copy addresses.
	// Default: "CC"
	CC string `yaml:"cc"`

	// DateFields are rendered as YYYY-MM-DD.
	// Default: ["Purchase Order Date"]
	DateFields []string `yaml:"date_fields"`

	// HighlightFields are rendered with a yellow background.
	// Default: ["Pending Qty"]
	HighlightFields []string `yaml:"highlight_fields"`
}

// MessageConfig holds the fixed parts of every outgoing email.
type MessageConfig struct {
	// Subject is the subject line of every email.
	Subject string `yaml:"subject" env:"MAIL_SUBJECT"`

	// From is the sender address. Required by the API and SMTP transports.
	From string `yaml:"from" env:"MAIL_FROM"`

	// ReplyTo is an optional reply-to address.
	ReplyTo string `yaml:"reply_to" env:"MAIL_REPLY_TO"`

	// Intro is placed above the order table. Markdown with inline HTML.
	Intro string `yaml:"intro"`

	// Signature is placed below the order table. Markdown with inline HTML.
	Signature string `yaml:"signature"`
}

// TransportConfig selects and configures the mail provider.
type TransportConfig struct {
	// Provider is one of "file", "resend", "postmark", "smtp".
	// Default: "file"
	Provider string `yaml:"provider" env:"MAIL_TRANSPORT"`

	// OutboxDir is where the file provider writes messages.
	// Default: "./outbox"
	OutboxDir string `yaml:"outbox_dir" env:"MAIL_OUTBOX_DIR"`

	Resend   ResendConfig   `yaml:"resend"`
	Postmark PostmarkConfig `yaml:"postmark"`
	SMTP     SMTPConfig     `yaml:"smtp"`
}

// ResendConfig configures the Resend API transport.
type ResendConfig struct {
	APIKey string `yaml:"api_key" env:"RESEND_API_KEY"`

	// BaseURL overrides the API endpoint. Empty uses Resend's.
	BaseURL string `yaml:"base_url" env:"RESEND_BASE_URL"`
}

// PostmarkConfig configures the Postmark API transport.
type PostmarkConfig struct {
	ServerToken  string `yaml:"server_token" env:"POSTMARK_SERVER_TOKEN"`
	AccountToken string `yaml:"account_token" env:"POSTMARK_ACCOUNT_TOKEN"`
	Tag          string `yaml:"tag" env:"POSTMARK_TAG"`

	// TrackOpens adds Postmark's open-tracking pixel.
	// Default: false
	TrackOpens bool `yaml:"track_opens" env:"POSTMARK_TRACK_OPENS"`

	// TrackLinks is one of "None", "HtmlOnly", "HtmlAndText", "TextOnly".
	// Default: "" (no link rewriting)
	TrackLinks string `yaml:"track_links" env:"POSTMARK_TRACK_LINKS"`

	// BaseURL overrides the API endpoint. Empty uses Postmark's.
	BaseURL string `yaml:"base_url" env:"POSTMARK_BASE_URL"`
}

// SMTPConfig configures a plain SMTP relay.
type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`

	// TLS is "opportunistic" (STARTTLS when offered), "mandatory",
	// "ssl" (implicit TLS, usually port 465) or "none".
	// Default: "opportunistic"
	TLS string `yaml:"tls" env:"SMTP_TLS"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultSubject is the subject used when none is configured.
const DefaultSubject = "Delivery Follow-up – Action Required Before Material Dispatch"

// DefaultIntro is the introduction placed above the order table.
const DefaultIntro = `<p>Hello,<br>Greetings!!</p>
<p>Please go through the below pending orders as per our system. <b><span style="background-color: yellow;">"The yellow-marked entries"</span></b> indicate the pending quantity.<br>
You are requested to discuss the same with the respective end user and <b>arrange to dispatch the material only after receiving confirmation from the end user.</b><br>
Kindly note that <b>any material sent without proper communication</b> (Verbal / Message / WhatsApp / Email confirmation from the end user) <b>will not be accepted.</b><br>
This email is intended as part of our delivery follow-up and to share the current open PO status for your reference.</p>`

// DefaultSignature is placed below the order table.
const DefaultSignature = `<p>Best Regards,<br>
<b>Indirect Purchase Team</b></p>`

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Input.HeaderRow == 0 {
		cfg.Input.HeaderRow = 1
	}
	if cfg.Input.CSV.Delimiter == "" {
		cfg.Input.CSV.Delimiter = ","
	}
	if cfg.Input.CSV.Encoding == "" {
		cfg.Input.CSV.Encoding = "UTF-8"
	}
	if len(cfg.Input.DateLayouts) == 0 {
		cfg.Input.DateLayouts = append([]string(nil), types.DefaultDateLayouts...)
	}

	if cfg.Columns.GroupBy == "" {
		cfg.Columns.GroupBy = types.FieldSupplierName
	}
	if cfg.Columns.Recipient == "" {
		cfg.Columns.Recipient = cfg.Columns.GroupBy
	}
	if cfg.Columns.CC == "" {
		cfg.Columns.CC = types.FieldCC
	}
	if cfg.Columns.DateFields == nil {
		cfg.Columns.DateFields = []string{types.FieldPODate}
	}
	if cfg.Columns.HighlightFields == nil {
		cfg.Columns.HighlightFields = []string{types.FieldPendingQty}
	}

	if cfg.Message.Subject == "" {
		cfg.Message.Subject = DefaultSubject
	}
	if cfg.Message.Intro == "" {
		cfg.Message.Intro = DefaultIntro
	}
	if cfg.Message.Signature == "" {
		cfg.Message.Signature = DefaultSignature
	}

	if cfg.Transport.Provider == "" {
		cfg.Transport.Provider = ProviderFile
	}
	if cfg.Transport.OutboxDir == "" {
		cfg.Transport.OutboxDir = "./outbox"
	}
	if cfg.Transport.SMTP.Port == 0 {
		cfg.Transport.SMTP.Port = 587
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads the configuration file, overlays environment variables and
// applies defaults. A missing file yields the default configuration.
func Load(configPath string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// The .env file is optional.
	_ = godotenv.Load()

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for values that cannot work.
// Transport credentials are checked by the transport constructors.
func (c *Config) Validate() error {
	switch c.Transport.Provider {
	case ProviderFile, ProviderResend, ProviderPostmark, ProviderSMTP:
	default:
		return fmt.Errorf("%w: unknown transport provider %q", ErrInvalidConfig, c.Transport.Provider)
	}

	if c.Input.HeaderRow < 1 {
		return fmt.Errorf("%w: input.header_row must be at least 1", ErrInvalidConfig)
	}

	for _, layout := range c.Input.DateLayouts {
		if strings.TrimSpace(layout) == "" {
			return fmt.Errorf("%w: input.date_layouts must not contain blank layouts", ErrInvalidConfig)
		}
	}

	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log_format must be \"console\" or \"json\"", ErrInvalidConfig)
	}

	if strings.TrimSpace(c.Message.Subject) == "" {
		return fmt.Errorf("%w: message.subject must not be blank", ErrInvalidConfig)
	}

	return nil
}

// ExtraRequiredColumns returns configured columns that must be present in
// addition to types.RequiredFields.
func (c *Config) ExtraRequiredColumns() []string {
	var extra []string
	for _, col := range []string{c.Columns.GroupBy, c.Columns.Recipient} {
		if !contains(types.RequiredFields, col) && !contains(extra, col) {
			extra = append(extra, col)
		}
	}
	return extra
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
