package models

// RewardType classifies what a coupon grants when redeemed.
type RewardType string

const (
	RewardPercentDiscount RewardType = "PERCENT_DISCOUNT"
	RewardFixedAmount     RewardType = "FIXED_AMOUNT"
	RewardBuyXGetY        RewardType = "BUY_X_GET_Y"
	RewardFreeProduct     RewardType = "FREE_PRODUCT"
)

// Coupon is a promotional code attached to a customer, as listed by the
// validate-customer response.
type Coupon struct {
	ID                int64      `bson:"id" json:"id"`
	Code              string     `bson:"code" json:"code"`
	Status            string     `bson:"status" json:"status"`
	ExpiresAt         string     `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
	CampaignTitle     string     `bson:"campaign_title,omitempty" json:"campaignTitle,omitempty"`
	RewardDescription string     `bson:"reward_description,omitempty" json:"rewardDescription,omitempty"`
	RewardType        RewardType `bson:"reward_type,omitempty" json:"rewardType,omitempty"`
	NumericValue      float64    `bson:"numeric_value,omitempty" json:"numericValue,omitempty"`
}

// Active reports whether the coupon can still be offered for selection.
func (c Coupon) Active() bool {
	return c.Status == "ACTIVE"
}

// CouponValidation is the outcome of the validate-coupon call.
// Validation checks eligibility and terms without consuming the coupon.
type CouponValidation struct {
	Valid         bool       `bson:"valid" json:"valid"`
	CouponCode    string     `bson:"coupon_code" json:"couponCode"`
	Status        string     `bson:"status,omitempty" json:"status,omitempty"`
	CampaignTitle string     `bson:"campaign_title,omitempty" json:"campaignTitle,omitempty"`
	RewardType    RewardType `bson:"reward_type,omitempty" json:"rewardType,omitempty"`
	RewardValue   float64    `bson:"reward_value,omitempty" json:"numericValue,omitempty"`
	Description   string     `bson:"description,omitempty" json:"description,omitempty"`
	ExpiresAt     string     `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
	Expired       bool       `bson:"expired" json:"expired"`
	Message       string     `bson:"message,omitempty" json:"message,omitempty"`
}

// CouponRedemption is the authoritative discount effect returned by the
// redeem-coupon call. Once present its amounts override any client-side
// estimate.
type CouponRedemption struct {
	Success             bool       `bson:"success" json:"success"`
	Message             string     `bson:"message,omitempty" json:"message,omitempty"`
	CouponCode          string     `bson:"coupon_code" json:"couponCode"`
	CouponID            int64      `bson:"coupon_id,omitempty" json:"couponId,omitempty"`
	CampaignTitle       string     `bson:"campaign_title,omitempty" json:"campaignTitle,omitempty"`
	RedeemedAt          string     `bson:"redeemed_at,omitempty" json:"redeemedAt,omitempty"`
	DiscountType        RewardType `bson:"discount_type" json:"discountType"`
	DiscountDescription string     `bson:"discount_description,omitempty" json:"discountDescription,omitempty"`
	OriginalAmount      float64    `bson:"original_amount" json:"originalAmount"`
	DiscountAmount      float64    `bson:"discount_amount" json:"discountAmount"`
	FinalAmount         float64    `bson:"final_amount" json:"finalAmount"`
	DiscountPercentage  *float64   `bson:"discount_percentage,omitempty" json:"discountPercentage,omitempty"`
}
