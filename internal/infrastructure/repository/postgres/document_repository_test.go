package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dealsense/sales-intel/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*DocumentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	cleanup := func() {
		_ = db.Close()
	}
	return NewDocumentRepository(db), mock, cleanup
}

func documentRows(docs ...domain.Document) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "filename", "mime_type", "storage_path", "status",
		"extracted_text", "pages", "used_recognition", "error_message", "created_at", "updated_at",
	})
	for _, d := range docs {
		rows.AddRow(d.ID, d.Filename, d.MimeType, d.StoragePath, string(d.Status),
			d.Text, d.Pages, d.UsedRecognition, d.Error, d.CreatedAt, d.UpdatedAt)
	}
	return rows
}

func TestCreateInsertsDocument(t *testing.T) {
	repo, mock, cleanup := newRepoWithMock(t)
	defer cleanup()

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          "doc-1",
		Filename:    "deal.pdf",
		MimeType:    "application/pdf",
		StoragePath: "doc-1_deal.pdf",
		Status:      domain.StatusProcessing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(doc.ID, doc.Filename, doc.MimeType, doc.StoragePath, "processing",
			"", 0, false, "", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDMapsNotFound(t *testing.T) {
	repo, mock, cleanup := newRepoWithMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM documents").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("error = %v, want ErrDocumentNotFound", err)
	}
}

func TestListByStatusReturnsReadyDocuments(t *testing.T) {
	repo, mock, cleanup := newRepoWithMock(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .* FROM documents").
		WithArgs("ready").
		WillReturnRows(documentRows(
			domain.Document{ID: "a", Status: domain.StatusReady, Text: "alpha", CreatedAt: now, UpdatedAt: now},
			domain.Document{ID: "b", Status: domain.StatusReady, Text: "beta", Pages: 3, UsedRecognition: true, CreatedAt: now, UpdatedAt: now},
		))

	docs, err := repo.ListByStatus(context.Background(), domain.StatusReady)
	if err != nil {
		t.Fatalf("ListByStatus() error = %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "a" || docs[1].Text != "beta" {
		t.Fatalf("docs = %+v", docs)
	}
	if !docs[1].UsedRecognition {
		t.Fatal("used_recognition not mapped")
	}
}

func TestUpdateStatusWritesErrorMessage(t *testing.T) {
	repo, mock, cleanup := newRepoWithMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE documents").
		WithArgs("doc-1", "error", "recognize page 2: provider unavailable", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "doc-1", domain.StatusError, "recognize page 2: provider unavailable")
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
}

func TestSaveExtractionPersistsResult(t *testing.T) {
	repo, mock, cleanup := newRepoWithMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE documents").
		WithArgs("doc-1", "--- PAGE 1 ---\nhello\n\n", 1, true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveExtraction(context.Background(), "doc-1", domain.Extraction{
		Text:            "--- PAGE 1 ---\nhello\n\n",
		Pages:           1,
		UsedRecognition: true,
	})
	if err != nil {
		t.Fatalf("SaveExtraction() error = %v", err)
	}
}
