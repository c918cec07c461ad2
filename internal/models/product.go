package models

import "time"

// Product represents an inventory item. ID is assigned by the database.
type Product struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(200);not null"`
	Price     float64   `json:"price" gorm:"not null"`
	Stock     int       `json:"stock" gorm:"not null"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// ProductPayload is the request body for create and update. Pointers let
// validation tell a missing field apart from a zero value.
type ProductPayload struct {
	ID    *int     `json:"id,omitempty"`
	Name  *string  `json:"name" validate:"required,min=1,max=200"`
	Price *float64 `json:"price" validate:"required"`
	Stock *int     `json:"stock" validate:"required"`
}

// ToProduct copies the payload fields into a Product. Call it only after validation.
func (p *ProductPayload) ToProduct() Product {
	var product Product
	if p.ID != nil {
		product.ID = *p.ID
	}
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	return product
}

// NewProductPayload builds a payload with every field set.
func NewProductPayload(name string, price float64, stock int) *ProductPayload {
	return &ProductPayload{Name: &name, Price: &price, Stock: &stock}
}

// WithID returns a copy of the payload carrying the given id.
func (p ProductPayload) WithID(id int) *ProductPayload {
	p.ID = &id
	return &p
}
