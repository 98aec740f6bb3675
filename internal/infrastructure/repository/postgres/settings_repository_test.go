package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
)

func newSettingsRepoWithMock(t *testing.T) (*SettingsRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &SettingsRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestSettingsGetBuildsPlaceholderPerName(t *testing.T) {
	repo, mock, done := newSettingsRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"name", "value"}).
		AddRow(domain.SettingChunkSize, "1500").
		AddRow(domain.SettingChunkOverlap, "200")
	mock.ExpectQuery(`SELECT name, value FROM settings WHERE name IN \(\$1,\$2,\$3\)`).
		WithArgs(domain.SettingChunkSize, domain.SettingChunkOverlap, domain.SettingDocumentSplitter).
		WillReturnRows(rows)

	got, err := repo.Get(context.Background(), domain.SettingChunkSize, domain.SettingChunkOverlap, domain.SettingDocumentSplitter)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got[domain.SettingChunkSize] != "1500" || got[domain.SettingChunkOverlap] != "200" {
		t.Fatalf("settings = %v", got)
	}
	if _, ok := got[domain.SettingDocumentSplitter]; ok {
		t.Fatalf("missing setting must be absent from the map")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSettingsGetWithoutNamesSkipsQuery(t *testing.T) {
	repo, mock, done := newSettingsRepoWithMock(t)
	defer done()

	got, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("settings = %v, want empty", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
