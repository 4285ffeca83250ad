package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

import (
	"context"
	"iter"

	"peopleapi/internal/model"
)

// Repository defines generic persistence operations for one entity type.
// It is the only component allowed to write the store for that type.
// No business logic here, only persistence operations.
type Repository[T model.Model] interface {
	// GetByID returns the entity with the given id or an error of kind KindNotFound.
	GetByID(ctx context.Context, id int64) (T, error)

	// GetAll returns a lazy query over every entity. Nothing is read until a
	// terminal operation (All, Iter, Count) runs.
	GetAll() Query[T]

	// Add stamps Created and LastUpdated, inserts the entity and returns the stored
	// record with its store-assigned ID.
	Add(ctx context.Context, entity T) (T, error)

	// Update overwrites every mutable field, refreshes LastUpdated and returns the stored record.
	// Created and ID are never written. Last write wins.
	Update(ctx context.Context, entity T) (T, error)

	// Delete removes the given instance. It returns false if no row matched.
	Delete(ctx context.Context, entity T) (bool, error)

	// DeleteWhere removes every row matching f in a single transaction.
	// It returns true if at least one row was removed.
	DeleteWhere(ctx context.Context, f Filter) (bool, error)

	// DeleteByID looks the entity up first and deletes it. It returns false if the id is absent.
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

// Query is a composable, restartable query over entities of type T.
// Composition methods return a new Query and leave the receiver untouched.
type Query[T model.Model] interface {
	Where(f Filter) Query[T]
	OrderBy(column string, desc bool) Query[T]
	Limit(n int) Query[T]
	Offset(n int) Query[T]

	// All materializes the query.
	All(ctx context.Context) ([]T, error)
	// Iter streams the query results. Iteration stops at the first error.
	Iter(ctx context.Context) iter.Seq2[T, error]
	// Count returns the number of rows matching the query filters.
	Count(ctx context.Context) (int, error)
}
