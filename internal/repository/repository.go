// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) inside this directory.
package repository

import "errors"

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("record not found")

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// Sort is a column and direction requested by a client. Implementations
// only honour columns from their own whitelist.
type Sort struct {
	By    string
	Order string
}

// Repositories bundles the stores the services depend on.
type Repositories struct {
	Users     UserRepository
	Documents DocumentRepository
	Analyses  AnalysisRepository
	Feedback  FeedbackRepository
}
