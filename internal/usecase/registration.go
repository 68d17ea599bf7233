package usecase

import (
	"context"
	"time"

	log "github.com/carousell/ct-go/pkg/logger/log_context"

	"github.com/KikeGitHub/lealtix-main/internal/catalog"
	"github.com/KikeGitHub/lealtix-main/internal/models"
	"github.com/KikeGitHub/lealtix-main/internal/repo/loyalty"
	"github.com/KikeGitHub/lealtix-main/pkg/contact"
)

func (uc *dialogUsecase) startOrder(s *models.Session) {
	s.State = models.StateWaitingContact
	uc.apply(s, catalog.AskingContact)
}

// restartOrder wipes the previous order's cart and coupon state before
// starting over. A discount redeemed for an already submitted order
// never carries into the next one.
func (uc *dialogUsecase) restartOrder(s *models.Session) {
	s.Cart = nil
	s.AppliedCoupon = nil
	s.RedeemedCoupon = nil
	s.Suggestion = nil
	s.SelectedCategory = ""
	uc.refreshTotals(s)
	uc.startOrder(s)
}

func (uc *dialogUsecase) handleContactText(ctx context.Context, s *models.Session, text string) {
	kind := contact.Detect(text)
	if kind == contact.KindNone {
		uc.say(s, catalog.ErrorInvalidContact.Text)
		return
	}

	switch kind {
	case contact.KindEmail:
		s.Registration.InitialContact = "email"
		s.Registration.Email = text
	case contact.KindPhone:
		s.Registration.InitialContact = "phone"
		s.Registration.Phone = text
	}

	uc.say(s, catalog.LoadingCustomer.Text)

	var phone, email string
	if kind == contact.KindEmail {
		email = text
	} else {
		phone = contact.NormalizePhone(text)
	}

	lookup, err := uc.gateway.ValidateCustomer(ctx, s.TenantID, phone, email)
	if err != nil {
		uc.reportError(ctx, s, err)
		return
	}

	if lookup.Exists && lookup.Customer != nil {
		uc.greetExistingCustomer(ctx, s, lookup)
		return
	}
	uc.startRegistration(s)
}

func (uc *dialogUsecase) greetExistingCustomer(ctx context.Context, s *models.Session, lookup *loyalty.CustomerLookup) {
	s.Customer = lookup.Customer
	s.AvailableCoupons = lookup.ActiveCoupons
	s.State = models.StateCustomerIdentified

	uc.say(s, catalog.GreetingReturning(lookup.Customer.Name))
	log.Infow(ctx, "Customer identified",
		"session_id", s.ID,
		"customer_id", lookup.Customer.ID,
		"coupons", len(lookup.ActiveCoupons))

	if len(lookup.LastOrderProducts) > 0 {
		first := lookup.LastOrderProducts[0]
		uc.apply(s, catalog.AskingRepeatOrder(lookup.Customer.Name, first.Name))
		return
	}
	uc.browseMenu(ctx, s)
}

func (uc *dialogUsecase) startRegistration(s *models.Session) {
	s.State = models.StateCustomerNew
	uc.say(s, catalog.GreetingNew.Text)
	uc.apply(s, catalog.AskingName)
}

// handleRegistrationText dispatches on the pending input hint: the
// registration sub-flow walks name, complementary contact, birthdate
// and gender, each answer arriving as plain text.
func (uc *dialogUsecase) handleRegistrationText(ctx context.Context, s *models.Session, text string) {
	switch s.InputType {
	case models.InputText:
		uc.handleRegistrationName(s, text)
	case models.InputEmail:
		uc.handleRegistrationEmail(s, text)
	case models.InputPhone:
		uc.handleRegistrationPhone(s, text)
	case models.InputDate:
		uc.handleRegistrationBirthDate(s, text)
	default:
		uc.apply(s, catalog.EmptyState)
	}
}

func (uc *dialogUsecase) handleRegistrationName(s *models.Session, name string) {
	if !contact.IsName(name) {
		uc.say(s, catalog.ErrorInvalidName.Text)
		return
	}
	s.Registration.Name = name

	// Ask for the contact channel we do not have yet.
	switch {
	case s.Registration.InitialContact == "phone" && s.Registration.Email == "":
		uc.apply(s, catalog.AskingEmail)
	case s.Registration.InitialContact == "email" && s.Registration.Phone == "":
		uc.apply(s, catalog.AskingPhone)
	default:
		uc.askBirthDate(s)
	}
}

func (uc *dialogUsecase) handleRegistrationEmail(s *models.Session, email string) {
	if !contact.IsEmail(email) {
		uc.say(s, catalog.ErrorInvalidEmail.Text)
		return
	}
	s.Registration.Email = email
	uc.askBirthDate(s)
}

func (uc *dialogUsecase) handleRegistrationPhone(s *models.Session, phone string) {
	if !contact.IsPhone(phone) {
		uc.say(s, catalog.ErrorInvalidPhone.Text)
		return
	}
	s.Registration.Phone = phone
	uc.askBirthDate(s)
}

func (uc *dialogUsecase) askBirthDate(s *models.Session) {
	uc.apply(s, catalog.AskingBirthDate)
}

// Birth dates outside this age window are treated as typos rather than
// stored on the loyalty profile.
const (
	minCustomerAge = 10
	maxCustomerAge = 120
)

func (uc *dialogUsecase) handleRegistrationBirthDate(s *models.Session, birthDate string) {
	if !contact.IsBirthDate(birthDate) {
		uc.say(s, catalog.ErrorInvalidBirthDate.Text)
		return
	}
	iso, err := contact.ToISODate(birthDate)
	if err != nil {
		uc.say(s, catalog.ErrorInvalidBirthDate.Text)
		return
	}
	if age, err := contact.Age(iso, time.Now()); err != nil || age < minCustomerAge || age > maxCustomerAge {
		uc.say(s, catalog.ErrorBirthDateOutOfRange.Text)
		return
	}
	s.Registration.BirthDate = birthDate
	uc.askGender(s)
}

func (uc *dialogUsecase) askGender(s *models.Session) {
	uc.apply(s, catalog.AskingGender)
}

func (uc *dialogUsecase) finishRegistration(ctx context.Context, s *models.Session, gender string) {
	s.Registration.Gender = gender
	uc.say(s, catalog.LoadingCustomer.Text)

	req := loyalty.RegisterRequest{
		TenantID:           s.TenantID,
		Name:               s.Registration.Name,
		Email:              s.Registration.Email,
		Phone:              s.Registration.Phone,
		Gender:             s.Registration.Gender,
		AcceptedPromotions: true,
	}
	if s.Registration.BirthDate != "" {
		if iso, err := contact.ToISODate(s.Registration.BirthDate); err == nil {
			req.BirthDate = iso
		}
	}

	customer, err := uc.gateway.RegisterCustomer(ctx, req)
	if err != nil {
		uc.reportError(ctx, s, err)
		return
	}

	s.Customer = customer
	uc.say(s, catalog.RegisteredSuccess(s.Registration.Name))
	log.Infow(ctx, "Customer registered", "session_id", s.ID, "customer_id", customer.ID)
	s.Registration = models.Registration{}

	uc.browseMenu(ctx, s)
}
