package loyalty

import (
	"github.com/KikeGitHub/lealtix-main/internal/models"
)

// envelope is the generic {code, message, object} wrapper every
// loyalty backend endpoint responds with.
type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Object  T      `json:"object"`
}

// CustomerLookup is the outcome of the validate-customer call: whether
// the contact belongs to a known member, plus everything the flow needs
// to personalize the greeting.
type CustomerLookup struct {
	Exists            bool                  `json:"exists"`
	Customer          *models.Customer      `json:"customer"`
	LTV               *float64              `json:"ltv"`
	OrderCount        *int                  `json:"orderCount"`
	ActiveCoupons     []models.Coupon       `json:"activeCoupons"`
	LastOrderProducts []models.OrderProduct `json:"lastOrderProducts"`
}

type validateCustomerRequest struct {
	TenantID int64  `json:"tenantId"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
}

// RegisterRequest creates a new loyalty member from the chat
// registration answers. Optional fields stay empty when skipped.
type RegisterRequest struct {
	TenantID           int64  `json:"tenantId"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone,omitempty"`
	Gender             string `json:"gender,omitempty"`
	BirthDate          string `json:"birthDate,omitempty"` // ISO 8601
	AcceptedPromotions bool   `json:"acceptedPromotions,omitempty"`
}

type validateCouponRequest struct {
	CouponCode string `json:"couponCode"`
	TenantID   int64  `json:"tenantId"`
}

// couponValidationObject is the raw validate-coupon payload. Field
// names differ from the session model, so it is mapped explicitly.
type couponValidationObject struct {
	Valid             bool              `json:"valid"`
	CouponCode        string            `json:"couponCode"`
	Status            string            `json:"status"`
	CampaignTitle     string            `json:"campaignTitle"`
	RewardType        models.RewardType `json:"rewardType"`
	NumericValue      float64           `json:"numericValue"`
	RewardDescription string            `json:"rewardDescription"`
	Benefit           string            `json:"benefit"`
	ExpiresAt         string            `json:"expiresAt"`
	Expired           bool              `json:"expired"`
	Message           string            `json:"message"`
}

// OrderProductRef is the per-line detail the redeem call needs to
// evaluate product-scoped rewards such as 2x1.
type OrderProductRef struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Subtotal    float64 `json:"subtotal"`
}

// RedeemRequest consumes a coupon against the current cart.
type RedeemRequest struct {
	TenantID      int64             `json:"tenantId"`
	CouponCode    string            `json:"couponCode"`
	CustomerID    int64             `json:"customerId"`
	OrderTotal    float64           `json:"orderTotal"`
	SessionID     string            `json:"sessionId"`
	OrderProducts []OrderProductRef `json:"orderProducts"`
}

// RedeemResult distinguishes a granted redemption from a business
// rejection (already redeemed, below minimum purchase). A rejection is
// a valid answer, not a transport failure: Redemption is nil and
// Message explains why.
type RedeemResult struct {
	Code       int
	Message    string
	Redemption *models.CouponRedemption
}

// CreateOrderRequest submits the confirmed cart. Monetary aggregates
// and the order lines keep the backend's original Spanish field names.
type CreateOrderRequest struct {
	TenantID      int64              `json:"tenantId"`
	SessionID     string             `json:"sessionId"`
	CustomerID    int64              `json:"customerId,omitempty"`
	CustomerName  string             `json:"customerName,omitempty"`
	CustomerPhone string             `json:"customerPhone,omitempty"`
	CustomerEmail string             `json:"customerEmail,omitempty"`
	Items         []models.OrderItem `json:"items"`
	CouponCode    string             `json:"couponCode,omitempty"`
	Discount      float64            `json:"descuento"`
	Subtotal      float64            `json:"subtotal"`
	TotalFinal    float64            `json:"totalFinal"`
	Source        string             `json:"source"`
}

// menuProduct is one row of the flat tenant menu listing. Activity
// flags may be absent, in which case the row counts as active.
type menuProduct struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Price            float64 `json:"price"`
	ImageURL         string  `json:"imageUrl"`
	CategoryName     string  `json:"categoryName"`
	IsActive         *bool   `json:"isActive"`
	CategoryIsActive *bool   `json:"categoryIsActive"`
}
