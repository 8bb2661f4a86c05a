package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/tartampluch/go-encounter/internal/config"
)

// localEnv points the CLI at a throwaway sqlite registry and no calendar.
func localEnv(t *testing.T) {
	t.Helper()
	keyring.MockInit()
	t.Setenv("XDG_CACHE_HOME", t.TempDir()) // keep the log file out of the home directory
	t.Setenv(config.EnvRegistry, config.RegistrySQLite)
	t.Setenv(config.EnvSQLitePath, filepath.Join(t.TempDir(), "encounter.db"))
	t.Setenv(config.EnvLanguage, "en")
	t.Setenv(config.EnvTimezone, "UTC")
	t.Setenv(config.EnvCalendarID, "")
	t.Setenv(config.EnvBotID, "")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{}
	defer a.close()

	var out bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExec_DryRunAdd(t *testing.T) {
	localEnv(t)

	out, err := execute(t, "exec", "--dry-run", "--as", "Bob", "!encounter birthday add 3/15/1990 Alice")
	require.NoError(t, err)
	assert.Equal(t, "Bob added birthday for Alice with date 03/15/1990\n", out)

	out, err = execute(t, "export")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "Alice")
}

func TestExec_DryRunBadDate(t *testing.T) {
	localEnv(t)

	out, err := execute(t, "exec", "--dry-run", "!e birthday add 13/45/1990 Alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrDateParse)
	assert.Empty(t, out)
}

func TestExec_RequiresBotWithoutDryRun(t *testing.T) {
	localEnv(t)

	_, err := execute(t, "exec", "!encounter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvBotID)
}

func TestImport_File(t *testing.T) {
	localEnv(t)

	path := filepath.Join(t.TempDir(), "contacts.vcf")
	vcf := "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Carol\r\nBDAY:1985-07-04\r\nEND:VCARD\r\n" +
		"BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Dave\r\nEND:VCARD\r\n"
	require.NoError(t, os.WriteFile(path, []byte(vcf), config.FilePermUserRW))

	out, err := execute(t, "import", path)
	require.NoError(t, err)
	assert.Equal(t, "Imported 1 birthdays from 2 contacts (1 skipped)\n", out)

	exported := filepath.Join(t.TempDir(), "birthdays.ics")
	_, err = execute(t, "export", "--output", exported)
	require.NoError(t, err)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Carol")
}

func TestRoot_Version(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, versionString(), out)
}

func TestRoot_RejectsArguments(t *testing.T) {
	_, err := execute(t, "unknown-command")
	assert.Error(t, err)
}
