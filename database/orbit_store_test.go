package database

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/eof/config"
	"github.com/gewnthar/eof/models"
)

func withMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	DB = db
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
		DB = nil
	})
	return mock
}

var downloadColumns = []string{
	"id", "identifier", "mission", "product_type", "source_url",
	"local_path", "run_id", "downloaded_at", "created_at", "updated_at",
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: "3306", User: "eof", Password: "secret", DBName: "orbits"})
	assert.Contains(t, dsn, "eof:secret@tcp(db:3306)/orbits")
	assert.Contains(t, dsn, "parseTime=true")
}

func TestStore_NotInitialized(t *testing.T) {
	DB = nil
	assert.ErrorIs(t, EnsureSchema(), ErrNotInitialized)
	assert.ErrorIs(t, SaveOrbitDownload(models.OrbitDownload{}), ErrNotInitialized)
	_, err := GetOrbitDownload("x")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = ListOrbitDownloads()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestAttachDB(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS orbit_downloads").WillReturnResult(sqlmock.NewResult(0, 0))
	t.Cleanup(func() {
		db.Close()
		DB = nil
	})

	require.NoError(t, attachDB(db))
	assert.Same(t, db, DB)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachDB_Failures(t *testing.T) {
	t.Run("schema", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		mock.ExpectPing()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS orbit_downloads").WillReturnError(errors.New("access denied"))
		mock.ExpectClose()

		err = attachDB(db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
		assert.Nil(t, DB)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectClose()

		assert.Error(t, attachDB(db))
		assert.Nil(t, DB)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEnsureSchema(t *testing.T) {
	mock := withMockDB(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS orbit_downloads").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, EnsureSchema())
}

func TestSaveOrbitDownload(t *testing.T) {
	mock := withMockDB(t)
	at := time.Date(2020, 1, 22, 10, 0, 0, 0, time.UTC)
	d := models.OrbitDownload{
		Identifier:   "S1A_OPER_AUX_POEORB_OPOD_20200121T120654_V20191231T225942_20200102T005942",
		Mission:      "S1A",
		ProductType:  models.Precise,
		SourceURL:    "http://example/x.EOF.zip",
		LocalPath:    "/tmp/x.EOF.zip",
		RunID:        "0f8c2a9e-7b51-4b8e-9d1c-3c0f3f0f7a11",
		DownloadedAt: at,
	}
	mock.ExpectExec("INSERT INTO orbit_downloads").
		WithArgs(d.Identifier, "S1A", "AUX_POEORB", d.SourceURL, d.LocalPath, d.RunID, at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, SaveOrbitDownload(d))
}

func TestSaveOrbitDownload_Error(t *testing.T) {
	mock := withMockDB(t)
	mock.ExpectExec("INSERT INTO orbit_downloads").WillReturnError(errors.New("boom"))

	err := SaveOrbitDownload(models.OrbitDownload{Identifier: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestGetOrbitDownload(t *testing.T) {
	mock := withMockDB(t)
	at := time.Date(2020, 1, 22, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM orbit_downloads WHERE identifier = ?").
		WithArgs("S1A_X").
		WillReturnRows(sqlmock.NewRows(downloadColumns).
			AddRow(7, "S1A_X", "S1A", "AUX_RESORB", "http://u", "/p", "run", at, at, at))

	d, err := GetOrbitDownload("S1A_X")
	require.NoError(t, err)
	assert.Equal(t, int64(7), d.ID)
	assert.Equal(t, models.Restituted, d.ProductType)
	assert.Equal(t, at, d.DownloadedAt)
}

func TestGetOrbitDownload_NotFound(t *testing.T) {
	mock := withMockDB(t)
	mock.ExpectQuery("FROM orbit_downloads WHERE identifier = ?").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(downloadColumns))

	_, err := GetOrbitDownload("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrbitDownloads(t *testing.T) {
	mock := withMockDB(t)
	at := time.Date(2020, 1, 22, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM orbit_downloads ORDER BY downloaded_at DESC").
		WillReturnRows(sqlmock.NewRows(downloadColumns).
			AddRow(2, "B", "S1B", "AUX_POEORB", "http://b", "/b", "run", at, at, at).
			AddRow(1, "A", "S1A", "AUX_POEORB", "http://a", "/a", "run", at.Add(-time.Hour), at, at))

	downloads, err := ListOrbitDownloads()
	require.NoError(t, err)
	require.Len(t, downloads, 2)
	assert.Equal(t, "B", downloads[0].Identifier)
	assert.Equal(t, "A", downloads[1].Identifier)
}
