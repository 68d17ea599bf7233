package usecase

import (
	"context"

	log "github.com/carousell/ct-go/pkg/logger/log_context"

	"github.com/KikeGitHub/lealtix-main/internal/catalog"
	"github.com/KikeGitHub/lealtix-main/internal/models"
	"github.com/KikeGitHub/lealtix-main/internal/repo/loyalty"
)

// reviewOrder is the entry to checkout. An empty cart bounces back to
// the menu; unused coupons are offered before the summary.
func (uc *dialogUsecase) reviewOrder(s *models.Session) {
	if len(s.Cart) == 0 {
		uc.apply(s, catalog.ErrorEmptyCart)
		return
	}
	if s.AppliedCoupon == nil && len(s.AvailableCoupons) > 0 {
		uc.offerCoupons(s)
		return
	}
	uc.orderSummary(s)
}

func (uc *dialogUsecase) orderSummary(s *models.Session) {
	uc.refreshTotals(s)
	s.State = models.StateReviewOrder
	uc.say(s, catalog.OrderSummary(s.Subtotal, s.Discount, s.Total))
	s.QuickReplies = catalog.OrderSummaryReplies
	s.InputType = models.InputNone
	s.Placeholder = ""
}

func (uc *dialogUsecase) confirmOrder(ctx context.Context, s *models.Session) {
	if len(s.Cart) == 0 {
		uc.apply(s, catalog.ErrorEmptyCart)
		return
	}
	if s.AppliedCoupon != nil && s.RedeemedCoupon == nil {
		uc.redeemThenCreate(ctx, s)
		return
	}
	uc.createOrder(ctx, s)
}

// redeemThenCreate consumes the applied coupon before submitting the
// order. Each coupon is redeemed at most once per session; a rejection
// offers checkout without the coupon instead of failing the order.
func (uc *dialogUsecase) redeemThenCreate(ctx context.Context, s *models.Session) {
	if s.Customer == nil {
		uc.createOrder(ctx, s)
		return
	}

	uc.say(s, catalog.RedeemingCoupon.Text)
	uc.refreshTotals(s)

	products := make([]loyalty.OrderProductRef, 0, len(s.Cart))
	for _, item := range s.Cart {
		products = append(products, loyalty.OrderProductRef{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
			Subtotal:    item.LineTotal(),
		})
	}

	result, err := uc.gateway.RedeemCoupon(ctx, loyalty.RedeemRequest{
		TenantID:      s.TenantID,
		CouponCode:    s.AppliedCoupon.CouponCode,
		CustomerID:    s.Customer.ID,
		OrderTotal:    s.Subtotal,
		SessionID:     s.ID,
		OrderProducts: products,
	})
	if err != nil {
		s.AddBotTyped(models.MessageCouponValidation, catalog.CouponError(loyalty.UserMessage(err)))
		s.QuickReplies = catalog.CouponFailedContinue
		return
	}
	if result.Redemption == nil {
		log.Infow(ctx, "Coupon redemption rejected",
			"session_id", s.ID,
			"coupon_code", s.AppliedCoupon.CouponCode,
			"message", result.Message)
		s.AddBotTyped(models.MessageCouponValidation, catalog.CouponError(result.Message))
		s.QuickReplies = catalog.CouponFailedContinue
		return
	}

	s.RedeemedCoupon = result.Redemption
	uc.consumeAvailableCoupon(s, result.Redemption.CouponCode)
	uc.refreshTotals(s)
	s.AddBotTyped(models.MessageCouponValidation, catalog.CouponRedeemed(*result.Redemption))

	uc.createOrder(ctx, s)
}

// consumeAvailableCoupon drops a redeemed code from the held-coupon
// list so it is not offered again later in the session.
func (uc *dialogUsecase) consumeAvailableCoupon(s *models.Session, code string) {
	for i := range s.AvailableCoupons {
		if s.AvailableCoupons[i].Code == code {
			s.AvailableCoupons = append(s.AvailableCoupons[:i], s.AvailableCoupons[i+1:]...)
			return
		}
	}
}

func (uc *dialogUsecase) createOrder(ctx context.Context, s *models.Session) {
	uc.say(s, catalog.LoadingOrder.Text)
	uc.refreshTotals(s)

	items := make([]models.OrderItem, 0, len(s.Cart))
	for _, item := range s.Cart {
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			Comments:  item.Comments,
		})
	}

	req := loyalty.CreateOrderRequest{
		TenantID:   s.TenantID,
		SessionID:  s.ID,
		Items:      items,
		Subtotal:   s.Subtotal,
		Discount:   s.Discount,
		TotalFinal: s.Total,
		Source:     "CHATBOT",
	}
	if s.Customer != nil {
		req.CustomerID = s.Customer.ID
		req.CustomerName = s.Customer.Name
		req.CustomerEmail = s.Customer.Email
		req.CustomerPhone = s.Customer.Phone
	}
	// The code rides along only when validated but not yet consumed, so
	// the backend can settle it with the order.
	if s.AppliedCoupon != nil && s.RedeemedCoupon == nil {
		req.CouponCode = s.AppliedCoupon.CouponCode
	}

	order, err := uc.gateway.CreateOrder(ctx, req)
	if err != nil {
		log.Errorw(ctx, "Failed to create order", "error", err, "session_id", s.ID)
		s.AddBotTyped(models.MessageError, loyalty.UserMessage(err))
		s.QuickReplies = catalog.OrderErrorReplies
		s.InputType = models.InputNone
		s.Placeholder = ""
		return
	}

	s.State = models.StateOrderConfirmed
	uc.producer.OrderConfirmed(ctx, s, order.ID)
	log.Infow(ctx, "Order confirmed",
		"session_id", s.ID,
		"order_id", order.ID,
		"total", s.Total)

	s.AddBotTyped(models.MessageOrderConfirmation, catalog.OrderConfirmed(order.ID))
	s.QuickReplies = catalog.OrderConfirmedReplies
	s.InputType = models.InputNone
	s.Placeholder = ""
	s.Cart = nil
}
