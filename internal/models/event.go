package models

import "time"

type ProductEventType string

const (
	ProductCreated ProductEventType = "product.created"
	ProductUpdated ProductEventType = "product.updated"
	ProductDeleted ProductEventType = "product.deleted"
)

// ProductEvent is published after a product change has been stored.
type ProductEvent struct {
	Type       ProductEventType `json:"type"`
	ProductID  int              `json:"product_id"`
	Product    *Product         `json:"product,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}
