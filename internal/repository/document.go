package repository

import (
	"context"

	"handoc/internal/model"
)

// DocumentFilter narrows List to one owner and optional status/language.
type DocumentFilter struct {
	UserID   string
	Status   string
	Language string
	Sort     Sort
	Page     PageQuery
}

// DocumentRepository defines data access for documents using SQL queries only.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns ErrNotFound when no document has the ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	List(ctx context.Context, f DocumentFilter) (*PageResult[model.Document], error)

	// Update writes the processing state and the extracted statistics.
	Update(ctx context.Context, doc *model.Document) error

	// Delete removes a document by ID. Analyses go with it (ON DELETE CASCADE).
	// It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	Stats(ctx context.Context, userID string) (*model.DocumentStats, error)
}
