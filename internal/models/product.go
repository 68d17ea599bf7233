package models

import "strings"

// Product is a menu entry of a tenant.
type Product struct {
	ProductID    int64   `bson:"product_id" json:"productId"`
	Name         string  `bson:"name" json:"productName"`
	Description  string  `bson:"description,omitempty" json:"description,omitempty"`
	Price        float64 `bson:"price" json:"price"`
	ImageURL     string  `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	CategoryName string  `bson:"category_name,omitempty" json:"categoryName,omitempty"`
}

// Matches reports whether the product name loosely matches a typed
// search term, in either containment direction.
func (p Product) Matches(term string) bool {
	name := strings.ToLower(p.Name)
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	return strings.Contains(name, term) || strings.Contains(term, name)
}

// Category groups menu products under a display name.
type Category struct {
	Name     string    `bson:"name" json:"name"`
	Products []Product `bson:"products" json:"products"`
}

// Matches reports whether the category name loosely matches a typed or
// quick-reply-derived search term.
func (c Category) Matches(term string) bool {
	name := strings.ToLower(c.Name)
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	return name == term || strings.Contains(name, term) || strings.Contains(term, name)
}

// OrderProduct is a product line from a past order, as returned by the
// last-order lookup.
type OrderProduct struct {
	Product  `bson:",inline"`
	Quantity int    `bson:"quantity" json:"quantity"`
	Comments string `bson:"comments,omitempty" json:"comments,omitempty"`
}

// CartItem is one line of the session cart.
type CartItem struct {
	ProductID   int64   `bson:"product_id" json:"productId"`
	ProductName string  `bson:"product_name" json:"productName"`
	Price       float64 `bson:"price" json:"price"`
	ImageURL    string  `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	Comments    string  `bson:"comments,omitempty" json:"comments,omitempty"`
}

// LineTotal is the extended price of the cart line.
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}
