package usecase

import (
	"context"
	"strings"

	log "github.com/carousell/ct-go/pkg/logger/log_context"

	"github.com/KikeGitHub/lealtix-main/internal/catalog"
	"github.com/KikeGitHub/lealtix-main/internal/models"
	"github.com/KikeGitHub/lealtix-main/internal/repo/loyalty"
)

func (uc *dialogUsecase) askForCoupon(s *models.Session) {
	s.State = models.StateCouponValidation
	uc.apply(s, catalog.AskingCoupon)
}

func (uc *dialogUsecase) handleCouponText(ctx context.Context, s *models.Session, text string) {
	uc.validateCoupon(ctx, s, strings.ToUpper(strings.TrimSpace(text)))
}

// offerCoupons interrupts the review step when the customer holds
// unused active coupons.
func (uc *dialogUsecase) offerCoupons(s *models.Session) {
	if len(s.AvailableCoupons) == 0 {
		uc.skipCoupon(s)
		return
	}
	s.State = models.StateCouponSelection
	uc.apply(s, catalog.HasActiveCoupons(len(s.AvailableCoupons)))
}

func (uc *dialogUsecase) showAvailableCoupons(s *models.Session) {
	if len(s.AvailableCoupons) == 0 {
		uc.say(s, catalog.NoActiveCoupons.Text)
		uc.skipCoupon(s)
		return
	}

	uc.say(s, catalog.SelectCoupon.Text)

	var descriptions []string
	for _, c := range s.AvailableCoupons {
		if c.RewardDescription != "" {
			descriptions = append(descriptions, "- "+c.Code+": "+c.RewardDescription)
		}
	}
	if len(descriptions) > 0 {
		uc.say(s, strings.Join(descriptions, "\n"))
	}

	chips := make([]models.QuickReply, 0, len(s.AvailableCoupons)+1)
	for _, c := range s.AvailableCoupons {
		chips = append(chips, models.QuickReply{
			Label:    catalog.CouponChipLabel(c),
			Value:    catalog.PrefixCoupon + c.Code,
			Disabled: !c.Active(),
		})
	}
	s.QuickReplies = append(chips, catalog.NoCouponChip)
	s.InputType = models.InputNone
	s.Placeholder = ""
}

func (uc *dialogUsecase) validateCoupon(ctx context.Context, s *models.Session, code string) {
	uc.say(s, catalog.ValidatingCoupon.Text)

	validation, err := uc.gateway.ValidateCoupon(ctx, s.TenantID, code)
	if err != nil {
		s.AddBotTyped(models.MessageCouponValidation, catalog.CouponError(loyalty.UserMessage(err)))
		s.QuickReplies = catalog.CouponRetryOrSkip
		return
	}

	if !validation.Valid {
		s.AddBotTyped(models.MessageCouponValidation, catalog.CouponInvalid(validation.Message))
		s.QuickReplies = catalog.CouponRetryOrSkip
		return
	}

	s.AppliedCoupon = validation
	s.AddBotTyped(models.MessageCouponValidation, catalog.CouponApplied(*validation))
	log.Infow(ctx, "Coupon applied",
		"session_id", s.ID,
		"coupon_code", validation.CouponCode,
		"reward_type", validation.RewardType)
	uc.orderSummary(s)
}

func (uc *dialogUsecase) skipCoupon(s *models.Session) {
	s.AppliedCoupon = nil
	uc.orderSummary(s)
}
