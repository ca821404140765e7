package domain

import "time"

// Address is a structured shipping address. CustomerID points at the row in
// customers that owns a stored address and is nil for ad hoc guest addresses
// supplied at checkout.
type Address struct {
	ID         string    `json:"id"`
	CustomerID *string   `json:"customerId,omitempty"`
	FullName   string    `json:"fullName"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	Region     string    `json:"region,omitempty"`
	PostalCode string    `json:"postalCode"`
	Country    string    `json:"country"`
	Phone      string    `json:"phone,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Complete reports whether the address carries every field a carrier needs.
func (a Address) Complete() bool {
	return a.FullName != "" && a.Street != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}
