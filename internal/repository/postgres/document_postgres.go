package postgres

import (
	"context"
	"database/sql"

	"handoc/internal/model"
	"handoc/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, user_id, filename, original_filename, file_size, storage_path, mime_type, file_hash,
		status, error_message, page_count, word_count, language,
		processing_started_at, processing_completed_at, processing_time, created_at, updated_at`

var documentSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"filename":   "original_filename",
	"file_size":  "file_size",
}

func scanDocument(row scanner) (*model.Document, error) {
	var d model.Document
	var status string
	if err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Filename,
		&d.OriginalFilename,
		&d.FileSize,
		&d.StoragePath,
		&d.MimeType,
		&d.FileHash,
		&status,
		&d.ErrorMessage,
		&d.PageCount,
		&d.WordCount,
		&d.Language,
		&d.ProcessingStartedAt,
		&d.ProcessingCompletedAt,
		&d.ProcessingTime,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.Status = model.DocumentStatus(status)
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, user_id, filename, original_filename, file_size, storage_path,
			mime_type, file_hash, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.UserID,
		doc.Filename,
		doc.OriginalFilename,
		doc.FileSize,
		doc.StoragePath,
		doc.MimeType,
		doc.FileHash,
		string(doc.Status),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

// List returns one owner's documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) List(ctx context.Context, f repository.DocumentFilter) (*repository.PageResult[model.Document], error) {
	var w where
	w.add("user_id = $%d", f.UserID)
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	if f.Language != "" {
		w.add("language = $%d", f.Language)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(f.Page)
	q := `SELECT ` + documentColumns + ` FROM documents` + w.String() +
		orderBy(f.Sort, documentSortColumns, "created_at", "id") + limit
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Update writes status, processing timestamps and extracted statistics.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) error {
	const q = `
		UPDATE documents SET
			status = $2,
			error_message = $3,
			page_count = $4,
			word_count = $5,
			language = $6,
			processing_started_at = $7,
			processing_completed_at = $8,
			processing_time = $9,
			updated_at = $10
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q,
		doc.ID,
		string(doc.Status),
		doc.ErrorMessage,
		doc.PageCount,
		doc.WordCount,
		doc.Language,
		doc.ProcessingStartedAt,
		doc.ProcessingCompletedAt,
		doc.ProcessingTime,
		doc.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func (r *DocumentPostgres) Stats(ctx context.Context, userID string) (*model.DocumentStats, error) {
	const q = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'failed'),
			COUNT(*) FILTER (WHERE status = 'processing'),
			COALESCE(SUM(file_size), 0),
			COALESCE(AVG(processing_time), 0)
		FROM documents
		WHERE user_id = $1
	`
	var s model.DocumentStats
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&s.TotalDocuments,
		&s.CompletedDocuments,
		&s.FailedDocuments,
		&s.ProcessingDocuments,
		&s.TotalFileSize,
		&s.AverageProcessingTime,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
