package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/po-followup-mailer/internal/config"
	"github.com/ginjaninja78/po-followup-mailer/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, types.FieldSupplierName, cfg.Columns.GroupBy)
	assert.Equal(t, types.FieldSupplierName, cfg.Columns.Recipient)
	assert.Equal(t, types.FieldCC, cfg.Columns.CC)
	assert.Equal(t, []string{types.FieldPODate}, cfg.Columns.DateFields)
	assert.Equal(t, []string{types.FieldPendingQty}, cfg.Columns.HighlightFields)
	assert.Equal(t, config.DefaultSubject, cfg.Message.Subject)
	assert.Equal(t, config.ProviderFile, cfg.Transport.Provider)
	assert.Equal(t, "./outbox", cfg.Transport.OutboxDir)
	assert.Equal(t, 1, cfg.Input.HeaderRow)
	assert.Equal(t, ",", cfg.Input.CSV.Delimiter)
	assert.Equal(t, types.DefaultDateLayouts, cfg.Input.DateLayouts)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_YAMLValues(t *testing.T) {
	path := writeConfig(t, `
columns:
  recipient: "E Mail ID"
message:
  subject: "Open PO status"
  from: "purchase@example.com"
transport:
  provider: postmark
  postmark:
    server_token: server
    account_token: account
input:
  sheet: "Open POs"
  date_layouts: ["01/02/2006"]
  csv:
    delimiter: ";"
log_format: json
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "E Mail ID", cfg.Columns.Recipient)
	assert.Equal(t, types.FieldSupplierName, cfg.Columns.GroupBy)
	assert.Equal(t, "Open PO status", cfg.Message.Subject)
	assert.Equal(t, config.ProviderPostmark, cfg.Transport.Provider)
	assert.Equal(t, "server", cfg.Transport.Postmark.ServerToken)
	assert.Equal(t, "Open POs", cfg.Input.Sheet)
	assert.Equal(t, ";", cfg.Input.CSV.Delimiter)
	assert.Equal(t, []string{"01/02/2006"}, cfg.Input.DateLayouts)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"E Mail ID"}, cfg.ExtraRequiredColumns())
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
transport:
  provider: file
message:
  from: "file@example.com"
`)
	t.Setenv("MAIL_TRANSPORT", "resend")
	t.Setenv("RESEND_API_KEY", "re_test")
	t.Setenv("MAIL_FROM", "env@example.com")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.ProviderResend, cfg.Transport.Provider)
	assert.Equal(t, "re_test", cfg.Transport.Resend.APIKey)
	assert.Equal(t, "env@example.com", cfg.Message.From)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "columns: [unclosed")

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()
		cfg := config.Default()
		cfg.Transport.Provider = "outlook"
		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "outlook")
	})

	t.Run("bad log format", func(t *testing.T) {
		t.Parallel()
		cfg := config.Default()
		cfg.LogFormat = "xml"
		assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
	})

	t.Run("blank date layout", func(t *testing.T) {
		t.Parallel()
		cfg := config.Default()
		cfg.Input.DateLayouts = []string{"02/01/2006", " "}
		assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, config.Default().Validate())
	})
}

func TestExtraRequiredColumns_DefaultIsEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, config.Default().ExtraRequiredColumns())
}

func TestLoad_ExampleConfig(t *testing.T) {
	cfg, err := config.Load(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, config.ProviderFile, cfg.Transport.Provider)
	assert.Equal(t, "po-followup", cfg.Transport.Postmark.Tag)
	assert.Equal(t, 587, cfg.Transport.SMTP.Port)
	assert.Equal(t, "./archive", cfg.ArchiveDir)
	assert.Contains(t, cfg.Message.Signature, "**Indirect Purchase Team**")
	assert.Equal(t, config.DefaultIntro, cfg.Message.Intro)
	assert.Empty(t, cfg.ExtraRequiredColumns())
}
