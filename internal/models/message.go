package models

import "time"

type MessageSender string

const (
	SenderUser   MessageSender = "USER"
	SenderBot    MessageSender = "BOT"
	SenderSystem MessageSender = "SYSTEM"
)

type MessageType string

const (
	MessageText              MessageType = "TEXT"
	MessageProductSuggestion MessageType = "PRODUCT_SUGGESTION"
	MessageCouponValidation  MessageType = "COUPON_VALIDATION"
	MessageOrderConfirmation MessageType = "ORDER_CONFIRMATION"
	MessageError             MessageType = "ERROR"
)

// ChatMessage is a single entry in the session transcript.
type ChatMessage struct {
	Sender    MessageSender `bson:"sender" json:"sender"`
	Type      MessageType   `bson:"type" json:"messageType"`
	Content   string        `bson:"content" json:"content"`
	Timestamp time.Time     `bson:"timestamp" json:"timestamp"`
}

// QuickReply is a predefined selectable option shown alongside free-text
// input to accelerate common responses.
type QuickReply struct {
	Label    string `bson:"label" json:"label"`
	Value    string `bson:"value" json:"value"`
	Disabled bool   `bson:"disabled,omitempty" json:"disabled,omitempty"`
}
