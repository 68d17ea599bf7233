package models

// Customer is a loyalty program member of a tenant. Populated either
// from an existing-customer lookup or from the chat registration flow.
type Customer struct {
	ID                 int64  `bson:"id" json:"id"`
	Name               string `bson:"name" json:"name"`
	Email              string `bson:"email" json:"email"`
	Phone              string `bson:"phone" json:"phone"`
	Gender             string `bson:"gender,omitempty" json:"gender,omitempty"`
	BirthDate          string `bson:"birth_date,omitempty" json:"birthDate,omitempty"` // ISO 8601
	Active             bool   `bson:"active" json:"active"`
	AcceptedPromotions bool   `bson:"accepted_promotions" json:"acceptedPromotions"`
}
