package model

// Customer is a customer record.
type Customer struct {
	Base
	FirstName string `json:"first_name" validate:"notblank"`
	LastName  string `json:"last_name" validate:"notblank"`
}
