package model

// Person is a person record. It has the same shape as Customer but is stored
// and served as an independent resource.
type Person struct {
	Base
	FirstName string `json:"first_name" validate:"notblank"`
	LastName  string `json:"last_name" validate:"notblank"`
}
