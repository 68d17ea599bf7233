package models

import (
	"time"
)

// ConversationState tracks where a chat session is in the ordering flow.
// Exactly one state is current per session; transitions are driven by
// user input classification and backend response outcomes.
type ConversationState string

const (
	StateInitial            ConversationState = "INITIAL"
	StateWaitingContact     ConversationState = "WAITING_CONTACT"
	StateCustomerIdentified ConversationState = "CUSTOMER_IDENTIFIED"
	StateCustomerNew        ConversationState = "CUSTOMER_NEW"
	StateBrowsing           ConversationState = "BROWSING"
	StateProductSelected    ConversationState = "PRODUCT_SELECTED"
	StateCrossSell          ConversationState = "CROSS_SELL"
	StateCouponValidation   ConversationState = "COUPON_VALIDATION"
	StateCouponSelection    ConversationState = "COUPON_SELECTION"
	StateReviewOrder        ConversationState = "REVIEW_ORDER"
	StateOrderConfirmed     ConversationState = "ORDER_CONFIRMED"
	StateAbandoned          ConversationState = "ABANDONED"
)

// Terminal reports whether no further conversation events are expected.
func (s ConversationState) Terminal() bool {
	return s == StateOrderConfirmed || s == StateAbandoned
}

// InputType hints the widget which input control to render.
type InputType string

const (
	InputNone     InputType = ""
	InputText     InputType = "TEXT"
	InputEmail    InputType = "EMAIL"
	InputPhone    InputType = "PHONE"
	InputContact  InputType = "CONTACT"
	InputDate     InputType = "DATE"
	InputTextarea InputType = "TEXTAREA"
)

// Registration accumulates the field-by-field answers of the
// new-customer sub-flow until the registration call is made.
type Registration struct {
	Name           string `bson:"name" json:"name"`
	Email          string `bson:"email" json:"email"`
	Phone          string `bson:"phone" json:"phone"`
	Gender         string `bson:"gender" json:"gender"`
	BirthDate      string `bson:"birth_date" json:"birthDate"` // DD/MM/YYYY as typed
	InitialContact string `bson:"initial_contact" json:"initialContact"`
}

// Session is the whole conversation state for one chat widget instance.
// It is created when the widget opens and mutated by every event until
// a terminal state is reached.
type Session struct {
	ID               string            `bson:"_id" json:"sessionId"`
	TenantID         int64             `bson:"tenant_id" json:"tenantId"`
	State            ConversationState `bson:"state" json:"state"`
	Customer         *Customer         `bson:"customer,omitempty" json:"customer,omitempty"`
	Messages         []ChatMessage     `bson:"messages" json:"messages"`
	QuickReplies     []QuickReply      `bson:"quick_replies" json:"quickReplies"`
	InputType        InputType         `bson:"input_type" json:"inputType"`
	Placeholder      string            `bson:"placeholder" json:"placeholder"`
	Cart             []CartItem        `bson:"cart" json:"cart"`
	AppliedCoupon    *CouponValidation `bson:"applied_coupon,omitempty" json:"appliedCoupon,omitempty"`
	RedeemedCoupon   *CouponRedemption `bson:"redeemed_coupon,omitempty" json:"redeemedCoupon,omitempty"`
	AvailableCoupons []Coupon          `bson:"available_coupons,omitempty" json:"availableCoupons,omitempty"`
	Subtotal         float64           `bson:"subtotal" json:"subtotal"`
	Discount         float64           `bson:"discount" json:"discount"`
	Total            float64           `bson:"total" json:"total"`
	Open             bool              `bson:"open" json:"open"`
	Registration     Registration      `bson:"registration" json:"-"`
	Menu             []Category        `bson:"menu,omitempty" json:"-"`
	SelectedCategory string            `bson:"selected_category" json:"-"`
	Suggestion       *Product          `bson:"suggestion,omitempty" json:"-"`
	AbandonNotified  bool              `bson:"abandon_notified" json:"-"`
	CreatedAt        time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time         `bson:"updated_at" json:"updatedAt"`
}

// AddUserMessage appends a user message to the transcript.
func (s *Session) AddUserMessage(content string) {
	s.Messages = append(s.Messages, ChatMessage{
		Sender:    SenderUser,
		Type:      MessageText,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// AddBotMessage appends a plain-text bot message to the transcript.
func (s *Session) AddBotMessage(content string) {
	s.AddBotTyped(MessageText, content)
}

// AddBotTyped appends a bot message tagged with its type so the widget
// can render suggestion cards, coupon results, confirmations and errors
// distinctly from plain text.
func (s *Session) AddBotTyped(typ MessageType, content string) {
	s.Messages = append(s.Messages, ChatMessage{
		Sender:    SenderBot,
		Type:      typ,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// AddToCart adds a product to the cart, incrementing the quantity when
// the product is already there. Items are never removed; there is no
// remove-from-cart path in the flow.
func (s *Session) AddToCart(p Product) *CartItem {
	for i := range s.Cart {
		if s.Cart[i].ProductID == p.ProductID {
			s.Cart[i].Quantity++
			return &s.Cart[i]
		}
	}
	s.Cart = append(s.Cart, CartItem{
		ProductID:   p.ProductID,
		ProductName: p.Name,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Quantity:    1,
	})
	return &s.Cart[len(s.Cart)-1]
}

// LastCartItem returns the most recently added cart line, or nil when
// the cart is empty. Product comments are attached to it.
func (s *Session) LastCartItem() *CartItem {
	if len(s.Cart) == 0 {
		return nil
	}
	return &s.Cart[len(s.Cart)-1]
}

// FindCategory resolves a category by a loose name match against the
// loaded menu.
func (s *Session) FindCategory(name string) *Category {
	for i := range s.Menu {
		if s.Menu[i].Matches(name) {
			return &s.Menu[i]
		}
	}
	return nil
}
