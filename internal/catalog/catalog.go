// Package catalog holds the scripted bot dialogue: prompt texts, the
// quick-reply sets offered with them, and input-type hints for the
// widget. Keeping the copy in one place keeps the flow logic clean.
package catalog

import (
	"fmt"

	"github.com/KikeGitHub/lealtix-main/internal/models"
)

// Quick-reply values the controller dispatches on.
const (
	ValueStart                = "start"
	ValueClose                = "close"
	ValueRepeatLast           = "repeat_last"
	ValueBrowseMenu           = "browse_menu"
	ValueNoComments           = "no_comments"
	ValueAddMore              = "add_more"
	ValueAcceptSuggestion     = "accept_suggestion"
	ValueSkipSuggestion       = "skip_suggestion"
	ValueNoCoupon             = "no_coupon"
	ValueViewCoupons          = "view_coupons"
	ValueSkipEmail            = "skip_email"
	ValueSkipPhone            = "skip_phone"
	ValueSkipBirthDate        = "skip_birthdate"
	ValueSkipGender           = "skip_gender"
	ValueConfirmOrder         = "confirm_order"
	ValueConfirmOrderNoCoupon = "confirm_order_no_coupon"
	ValueModifyOrder          = "modify_order"
	ValueCancelOrder          = "cancel_order"
	ValueTryAnotherCoupon     = "try_another_coupon"
	ValueSkipCoupon           = "skip_coupon"
	ValueRetry                = "retry"
	ValueRetryOrder           = "retry_order"

	// Dynamic quick-reply value prefixes.
	PrefixProduct  = "product_"
	PrefixCategory = "category_"
	PrefixCoupon   = "coupon_"

	// Gender answers double as quick-reply values.
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// Prompt bundles a bot message with the input affordances shown next to it.
// Type tags the message for the widget; the zero value renders as plain text.
type Prompt struct {
	Text         string
	Type         models.MessageType
	InputType    models.InputType
	Placeholder  string
	QuickReplies []models.QuickReply
}

var (
	GreetingInitial = Prompt{
		Text: "Hi! I'm Lealbot, your virtual waiter. I'm here to turn your order into a great experience.",
		QuickReplies: []models.QuickReply{
			{Label: "Let's start", Value: ValueStart},
			{Label: "Maybe later", Value: ValueClose},
		},
	}

	AskingContact = Prompt{
		Text:        "Could I have your phone or email to recognize you? You'll earn points and unlock exclusive perks.",
		InputType:   models.InputContact,
		Placeholder: "+34 600 123 456 or name@email.com",
	}

	LoadingCustomer = Prompt{Text: "Looking you up in our system..."}

	GreetingNew = Prompt{Text: "Welcome! You're one step away from joining the family."}

	AskingName = Prompt{
		Text:        "What's your name? I'll register you so you start earning points today.",
		InputType:   models.InputText,
		Placeholder: "Your full name",
	}

	AskingEmail = Prompt{
		Text:        "What's your email? We'll send confirmations and exclusive promotions.",
		InputType:   models.InputEmail,
		Placeholder: "name@example.com",
		QuickReplies: []models.QuickReply{
			{Label: "Skip this", Value: ValueSkipEmail},
		},
	}

	AskingPhone = Prompt{
		Text:        "And your phone? We could confirm orders over WhatsApp.",
		InputType:   models.InputPhone,
		Placeholder: "5512345678",
		QuickReplies: []models.QuickReply{
			{Label: "Skip this", Value: ValueSkipPhone},
		},
	}

	AskingBirthDate = Prompt{
		Text:        "When is your birthday? We'll send you special surprises!",
		InputType:   models.InputDate,
		Placeholder: "DD/MM/YYYY",
		QuickReplies: []models.QuickReply{
			{Label: "Skip this", Value: ValueSkipBirthDate},
		},
	}

	AskingGender = Prompt{
		Text: "Which gender do you identify with? (statistics only)",
		QuickReplies: []models.QuickReply{
			{Label: "Male", Value: GenderMale},
			{Label: "Female", Value: GenderFemale},
			{Label: "Other", Value: GenderOther},
			{Label: "Prefer not to say", Value: ValueSkipGender},
		},
	}

	BrowsingMenu = Prompt{Text: "What are you in the mood for today? Pick a category:"}

	SelectProduct = Prompt{
		Text:        "Type the number or name of the product you want to add.",
		InputType:   models.InputText,
		Placeholder: "e.g. 1 or House omelette",
	}

	BackToCategories = models.QuickReply{Label: "Back to categories", Value: ValueBrowseMenu}

	NoCouponChip = models.QuickReply{Label: "Don't use a coupon", Value: ValueNoCoupon}

	PickCategoryFirst = "Please pick a category first."

	LoadingLastProducts = Prompt{Text: "Fetching your recent orders..."}

	AskingComments = Prompt{
		Text:        "Any notes for this product? (e.g. no onion, well done...)",
		InputType:   models.InputTextarea,
		Placeholder: "Type your notes here...",
		QuickReplies: []models.QuickReply{
			{Label: "No notes", Value: ValueNoComments},
		},
	}

	AskingAddMore = Prompt{
		Text: "Would you like to add anything else to your order?",
		QuickReplies: []models.QuickReply{
			{Label: "Add more", Value: ValueAddMore},
			{Label: "Continue with my order", Value: ValueSkipCoupon},
		},
	}

	AskingCoupon = Prompt{
		Text:        "Do you have a coupon or promo code?",
		InputType:   models.InputText,
		Placeholder: "e.g. WELCOME20",
		QuickReplies: []models.QuickReply{
			{Label: "I don't have one", Value: ValueNoCoupon},
			{Label: "Use one of my coupons", Value: ValueViewCoupons},
		},
	}

	ValidatingCoupon = Prompt{Text: "Validating coupon..."}

	RedeemingCoupon = Prompt{Text: "Applying coupon..."}

	NoActiveCoupons = Prompt{Text: "You have no active coupons right now. Keep ordering to earn more!"}

	SelectCoupon = Prompt{Text: "Pick a coupon to apply to your order:"}

	LoadingOrder = Prompt{Text: "Processing your order..."}

	LoadingMenu = Prompt{Text: "Loading the menu..."}

	MenuUnavailable = Prompt{Text: "Sorry, there are no products available right now."}

	RepeatOrderAdded = Prompt{
		Text: "I added your usual to the cart. Anything else? A dessert, a drink?",
		QuickReplies: []models.QuickReply{
			{Label: "Confirm", Value: ValueConfirmOrder},
			{Label: "Add more", Value: ValueBrowseMenu},
		},
	}

	ClosingMessage = Prompt{Text: "Thanks for using Lealbot! See you on your next order."}

	AbandonedSession = Prompt{Text: "We get it, sometimes it's not the moment. Your cart is saved, come back any time!"}

	ErrorGeneric = Prompt{
		Text: "Sorry, something didn't work as expected. Please try again.",
		QuickReplies: []models.QuickReply{
			{Label: "Retry", Value: ValueRetry},
			{Label: "Close", Value: ValueClose},
		},
	}

	ErrorInvalidContact = Prompt{
		Text: "That format doesn't look right. Please use a phone (+34 600 123 456) or an email (name@example.com).",
	}

	ErrorInvalidName = Prompt{Text: "That name doesn't look right. Please use letters only."}

	ErrorInvalidEmail = Prompt{Text: "That email doesn't look right. Please try again."}

	ErrorInvalidPhone = Prompt{Text: "That phone doesn't look right. Please try again."}

	ErrorInvalidBirthDate = Prompt{Text: "Please use the DD/MM/YYYY format (example: 15/03/1990)."}

	ErrorBirthDateOutOfRange = Prompt{Text: "That birth date doesn't seem right. Please check it and try again."}

	ErrorEmptyCart = Prompt{
		Text: "Your cart is empty. Is there something you'd like to order?",
		QuickReplies: []models.QuickReply{
			{Label: "Browse menu", Value: ValueBrowseMenu},
			{Label: "Cancel", Value: ValueClose},
		},
	}

	EmptyState = Prompt{
		Text: "I'm here to help. Would you like to place an order?",
		QuickReplies: []models.QuickReply{
			{Label: "Sure", Value: ValueStart},
			{Label: "No thanks", Value: ValueClose},
		},
	}

	SessionBusy = Prompt{Text: "One moment, I'm still working on your last request..."}

	CouponFailedContinue = []models.QuickReply{
		{Label: "Continue without coupon", Value: ValueConfirmOrderNoCoupon},
		{Label: "Cancel", Value: ValueCancelOrder},
	}

	CouponRetryOrSkip = []models.QuickReply{
		{Label: "Try another one", Value: ValueTryAnotherCoupon},
		{Label: "Continue without coupon", Value: ValueSkipCoupon},
	}

	OrderSummaryReplies = []models.QuickReply{
		{Label: "Confirm order", Value: ValueConfirmOrder},
		{Label: "Modify", Value: ValueModifyOrder},
		{Label: "Cancel", Value: ValueCancelOrder},
	}

	OrderConfirmedReplies = []models.QuickReply{
		{Label: "Goodbye", Value: ValueClose},
		{Label: "Order something else", Value: ValueStart},
	}

	OrderErrorReplies = []models.QuickReply{
		{Label: "Retry", Value: ValueRetryOrder},
		{Label: "Close", Value: ValueClose},
	}
)

func GreetingReturning(name string) string {
	return fmt.Sprintf("Hi %s! I recognized you. Great to see you again!", name)
}

func AskingRepeatOrder(name, productName string) Prompt {
	return Prompt{
		Text: fmt.Sprintf("I see you recently ordered %s. The usual, %s?", productName, name),
		QuickReplies: []models.QuickReply{
			{Label: "Yes, the usual", Value: ValueRepeatLast},
			{Label: "See the full menu", Value: ValueBrowseMenu},
		},
	}
}

func RegisteredSuccess(name string) string {
	return fmt.Sprintf("Registered! Welcome %s, you're one of us now.", name)
}

func CategoryHeader(name string, count int) string {
	return fmt.Sprintf("%s (%d products):", name, count)
}

func MoreProducts(count int) string {
	return fmt.Sprintf("... and %d more products", count)
}

func ProductLine(index int, name string, price float64) string {
	return fmt.Sprintf("%d. %s - $%.2f", index, name, price)
}

func ProductAdded(name string, price float64) string {
	return fmt.Sprintf("Added %s ($%.2f) to your cart.", name, price)
}

func ProductIncremented(name string, quantity int) string {
	return fmt.Sprintf("Added another %s to your cart. You have %d now.", name, quantity)
}

func CommentNoted(comment string) string {
	return fmt.Sprintf("Note added: %q", comment)
}

func CategoryNotFound(term string) string {
	return fmt.Sprintf("I couldn't find products in that category. You searched for %q.", term)
}

func ProductNotFound(term, category string) string {
	return fmt.Sprintf("I couldn't find %q in %s. Please try the product number or its name.", term, category)
}

func CrossSellSuggestion(name string, price float64) Prompt {
	return Prompt{
		Text: fmt.Sprintf("Good choice! Would you like to pair it with %s? ($%.2f)", name, price),
		Type: models.MessageProductSuggestion,
		QuickReplies: []models.QuickReply{
			{Label: "Sure", Value: ValueAcceptSuggestion},
			{Label: "No, thanks", Value: ValueSkipSuggestion},
		},
	}
}

func HasActiveCoupons(count int) Prompt {
	plural := ""
	if count > 1 {
		plural = "s"
	}
	return Prompt{
		Text: fmt.Sprintf("Great news! You have %d active coupon%s. Want to use one?", count, plural),
		QuickReplies: []models.QuickReply{
			{Label: "See my coupons", Value: ValueViewCoupons},
			{Label: "No, thanks", Value: ValueNoCoupon},
		},
	}
}

// CouponChipLabel renders the selectable label for an available coupon.
func CouponChipLabel(c models.Coupon) string {
	label := c.Code
	if c.CampaignTitle != "" {
		label = fmt.Sprintf("%s (%s)", c.CampaignTitle, c.Code)
	}
	switch {
	case c.RewardType == models.RewardPercentDiscount && c.NumericValue > 0:
		label += fmt.Sprintf(" - %.0f%% OFF", c.NumericValue)
	case c.RewardType == models.RewardFixedAmount && c.NumericValue > 0:
		label += fmt.Sprintf(" - $%.0f OFF", c.NumericValue)
	case c.RewardType == models.RewardBuyXGetY:
		label += " - 2x1"
	case c.RewardType == models.RewardFreeProduct:
		label += " - Free product"
	}
	return label
}

func CouponApplied(v models.CouponValidation) string {
	title := v.CampaignTitle
	if title == "" {
		title = v.CouponCode
	}
	msg := fmt.Sprintf("Coupon applied: %s", title)
	if v.Description != "" {
		msg += "\n" + v.Description
	}
	switch v.RewardType {
	case models.RewardPercentDiscount:
		msg += fmt.Sprintf("\nDiscount: %.0f%% off", v.RewardValue)
	case models.RewardFixedAmount:
		msg += fmt.Sprintf("\nDiscount: $%.2f off", v.RewardValue)
	case models.RewardBuyXGetY:
		msg += "\nPromotion: 2x1 on selected products"
	case models.RewardFreeProduct:
		msg += "\nPromotion: free product"
	}
	return msg
}

func CouponInvalid(reason string) string {
	if reason == "" {
		reason = "invalid coupon"
	}
	return fmt.Sprintf("Oops, that coupon isn't valid: %s", reason)
}

func CouponError(message string) string {
	return fmt.Sprintf("Couldn't apply the coupon: %s", message)
}

func CouponRedeemed(r models.CouponRedemption) string {
	title := r.CampaignTitle
	if title == "" {
		title = "Coupon applied"
	}
	msg := title
	if r.DiscountDescription != "" {
		msg += "\n" + r.DiscountDescription
	}
	discountLabel := "Discount"
	switch r.DiscountType {
	case models.RewardPercentDiscount:
		if r.DiscountPercentage != nil && *r.DiscountPercentage > 0 {
			discountLabel = fmt.Sprintf("Discount (%.0f%%)", *r.DiscountPercentage)
		}
	case models.RewardBuyXGetY:
		discountLabel = "2x1 savings"
	case models.RewardFreeProduct:
		discountLabel = "Free product"
	}
	msg += fmt.Sprintf("\n\nOriginal total: $%.2f\n%s: -$%.2f\nTotal to pay: $%.2f",
		r.OriginalAmount, discountLabel, r.DiscountAmount, r.FinalAmount)
	return msg
}

func OrderSummary(subtotal, discount, total float64) string {
	return fmt.Sprintf("Your order summary:\n\nSubtotal: $%.2f\nDiscount: -$%.2f\nTotal: $%.2f",
		subtotal, discount, total)
}

func OrderConfirmed(orderID string) string {
	return fmt.Sprintf("Order confirmed! Your order #%s is in the kitchen.", orderID)
}
