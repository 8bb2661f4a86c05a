package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-encounter/internal/config"
	"github.com/tartampluch/go-encounter/internal/engine"
	"github.com/tartampluch/go-encounter/internal/registry/sqlite"
)

func newStorage(t *testing.T) *sqlite.Storage {
	t.Helper()
	s, err := sqlite.Open(config.SQLiteMemoryDataSource)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorage_AddAndList(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)

	want := []engine.BirthdayRecord{
		{Name: "Alice", Date: "03/15/1990"},
		{Name: "Bob Barker", Date: "11/30/1991"},
		{Name: "Alice", Date: "03/15/1990"},
	}
	for _, r := range want {
		require.NoError(t, s.AddBirthday(ctx, r))
	}

	got, err := s.ListBirthdays(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListBirthdays() mismatch (-want +got):\n%s", diff)
	}
}

func TestStorage_EmptyList(t *testing.T) {
	got, err := newStorage(t).ListBirthdays(context.Background())

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStorage_MigrationsAreIdempotent(t *testing.T) {
	s := newStorage(t)
	assert.NoError(t, s.RunMigrations())
}

func TestStorage_PersistsOnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "encounter.db")

	s, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.AddBirthday(ctx, engine.BirthdayRecord{Name: "Zed", Date: "01/02/2003"}))
	require.NoError(t, s.Close())

	db, err := sql.Open(config.SQLiteDriverName, path)
	require.NoError(t, err)
	reopened, err := sqlite.NewStorage(db)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.ListBirthdays(ctx)
	require.NoError(t, err)
	assert.Equal(t, []engine.BirthdayRecord{{Name: "Zed", Date: "01/02/2003"}}, got)
}

func TestStorage_ClosedDatabase(t *testing.T) {
	s, err := sqlite.Open(config.SQLiteMemoryDataSource)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.ListBirthdays(context.Background())
	assert.Error(t, err)
	assert.Error(t, s.AddBirthday(context.Background(), engine.BirthdayRecord{Name: "X", Date: "01/01/2000"}))
}
