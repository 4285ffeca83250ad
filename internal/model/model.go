package model

import "time"

// Base carries the identity and audit timestamps shared by every persisted record.
// Id is assigned by the store; Created and LastUpdated are stamped by the repository.
type Base struct {
	ID          int64     `json:"id"`
	Created     time.Time `json:"created"`
	LastUpdated time.Time `json:"last_updated"`
}

// Meta exposes the embedded Base so generic code can reach the shared fields.
func (b *Base) Meta() *Base {
	return b
}

// Model is the capability every repository entity must provide.
// Implementations are pointer types embedding Base, e.g. *Customer.
type Model interface {
	comparable
	Meta() *Base
}
