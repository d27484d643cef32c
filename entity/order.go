// Package entity defines data models for the ePay checkout connector.
package entity

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is the merchant-side order record processed by a checkout attempt.
// Amounts are kept in the store's primary currency; conversion to the
// settlement currency happens only while building the gateway request.
type Order struct {
	Id          int         `json:"order_id" bson:"order_id"`
	CustomerId  string      `json:"customer_id" bson:"customer_id"`
	Total       float64     `json:"total" bson:"total"`
	Currency    string      `json:"currency" bson:"currency"`
	Status      OrderStatus `json:"status" bson:"status"`
	Notes       []OrderNote `json:"notes" bson:"notes"`
	TimeCreated time.Time   `json:"time_created" bson:"time_created"`
	TimeUpdated time.Time   `json:"time_updated" bson:"time_updated"`
}

// OrderNote is an append-only annotation on an order. Notes created by the
// payment flow are never shown to the customer.
type OrderNote struct {
	Note              string    `json:"note" bson:"note"`
	DisplayToCustomer bool      `json:"display_to_customer" bson:"display_to_customer"`
	TimeCreated       time.Time `json:"time_created" bson:"time_created"`
}

// AddNote appends a timestamped internal note to the order.
func (o *Order) AddNote(note string) {
	o.Notes = append(o.Notes, OrderNote{
		Note:              note,
		DisplayToCustomer: false,
		TimeCreated:       time.Now().UTC(),
	})
}
