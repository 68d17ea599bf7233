package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KikeGitHub/lealtix-main/internal/catalog"
	"github.com/KikeGitHub/lealtix-main/internal/models"
	"github.com/KikeGitHub/lealtix-main/internal/repo/loyalty"
)

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*models.Session{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
	copied := *s
	r.sessions[s.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.UpdatedAt = time.Now()
	copied := *s
	r.sessions[s.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) ListOpenBefore(_ context.Context, cutoff time.Time) ([]*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Session
	for _, s := range r.sessions {
		if s.Open && s.UpdatedAt.Before(cutoff) {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeGateway struct {
	lookup     *loyalty.CustomerLookup
	lookupErr  error
	registered *models.Customer
	lastOrder  []models.OrderProduct
	crossSell  []models.Product
	menu       []models.Category
	validation *models.CouponValidation
	redeem     *loyalty.RedeemResult
	redeemErr  error
	order      *models.OrderResponse
	orderErr   error

	abandonCalls int
	redeemCalls  int
	orderReqs    []loyalty.CreateOrderRequest
}

func (g *fakeGateway) ValidateCustomer(context.Context, int64, string, string) (*loyalty.CustomerLookup, error) {
	if g.lookupErr != nil {
		return nil, g.lookupErr
	}
	if g.lookup == nil {
		return &loyalty.CustomerLookup{}, nil
	}
	return g.lookup, nil
}

func (g *fakeGateway) RegisterCustomer(_ context.Context, req loyalty.RegisterRequest) (*models.Customer, error) {
	if g.registered != nil {
		return g.registered, nil
	}
	return &models.Customer{ID: 99, Name: req.Name, Email: req.Email, Phone: req.Phone, Active: true}, nil
}

func (g *fakeGateway) LastOrder(context.Context, int64, int64) ([]models.OrderProduct, error) {
	return g.lastOrder, nil
}

func (g *fakeGateway) CrossSell(context.Context, int64, int64) ([]models.Product, error) {
	return g.crossSell, nil
}

func (g *fakeGateway) Menu(context.Context, int64) ([]models.Category, error) {
	return g.menu, nil
}

func (g *fakeGateway) ValidateCoupon(context.Context, int64, string) (*models.CouponValidation, error) {
	return g.validation, nil
}

func (g *fakeGateway) RedeemCoupon(context.Context, loyalty.RedeemRequest) (*loyalty.RedeemResult, error) {
	g.redeemCalls++
	if g.redeemErr != nil {
		return nil, g.redeemErr
	}
	return g.redeem, nil
}

func (g *fakeGateway) CreateOrder(_ context.Context, req loyalty.CreateOrderRequest) (*models.OrderResponse, error) {
	g.orderReqs = append(g.orderReqs, req)
	if g.orderErr != nil {
		return nil, g.orderErr
	}
	if g.order != nil {
		return g.order, nil
	}
	return &models.OrderResponse{ID: "ORD-1", Status: "PENDING"}, nil
}

func (g *fakeGateway) AbandonSession(context.Context, string) error {
	g.abandonCalls++
	return nil
}

type fakeProducer struct {
	confirmed []string
	abandoned []string
}

func (p *fakeProducer) OrderConfirmed(_ context.Context, s *models.Session, orderID string) {
	p.confirmed = append(p.confirmed, orderID)
}

func (p *fakeProducer) SessionAbandoned(_ context.Context, s *models.Session) {
	p.abandoned = append(p.abandoned, s.ID)
}

func testMenu() []models.Category {
	return []models.Category{
		{
			Name: "Breakfast",
			Products: []models.Product{
				{ProductID: 1, Name: "House omelette", Price: 8.5, CategoryName: "Breakfast"},
				{ProductID: 2, Name: "Pancakes", Price: 6.0, CategoryName: "Breakfast"},
			},
		},
		{
			Name: "Drinks",
			Products: []models.Product{
				{ProductID: 3, Name: "Latte", Price: 3.5, CategoryName: "Drinks"},
			},
		},
	}
}

func newTestDialog(g *fakeGateway) (DialogUsecase, *fakeSessionRepo, *fakeProducer) {
	repo := newFakeSessionRepo()
	producer := &fakeProducer{}
	return NewDialogUsecase(repo, g, producer), repo, producer
}

func lastBotMessage(t *testing.T, s *models.Session) string {
	t.Helper()
	return lastBotEntry(t, s).Content
}

func lastBotEntry(t *testing.T, s *models.Session) models.ChatMessage {
	t.Helper()
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Sender == models.SenderBot {
			return s.Messages[i]
		}
	}
	t.Fatal("no bot message in transcript")
	return models.ChatMessage{}
}

func botMessageTypes(s *models.Session) []models.MessageType {
	var types []models.MessageType
	for _, m := range s.Messages {
		if m.Sender == models.SenderBot {
			types = append(types, m.Type)
		}
	}
	return types
}

func TestOpen_GreetsWithStartOptions(t *testing.T) {
	uc, _, _ := newTestDialog(&fakeGateway{})

	s, err := uc.Open(context.Background(), 3)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, models.StateInitial, s.State)
	assert.True(t, s.Open)
	assert.Equal(t, catalog.GreetingInitial.Text, lastBotMessage(t, s))
	require.Len(t, s.QuickReplies, 2)
	assert.Equal(t, catalog.ValueStart, s.QuickReplies[0].Value)
}

func TestStart_AsksForContact(t *testing.T) {
	uc, _, _ := newTestDialog(&fakeGateway{})
	s, _ := uc.Open(context.Background(), 3)

	s, err := uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueStart)
	require.NoError(t, err)
	assert.Equal(t, models.StateWaitingContact, s.State)
	assert.Equal(t, models.InputContact, s.InputType)
}

func TestContact_InvalidFormatKeepsState(t *testing.T) {
	uc, _, _ := newTestDialog(&fakeGateway{})
	s, _ := uc.Open(context.Background(), 3)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueStart)

	s, err := uc.HandleText(context.Background(), s.ID, "not a contact")
	require.NoError(t, err)
	assert.Equal(t, models.StateWaitingContact, s.State)
	assert.Equal(t, catalog.ErrorInvalidContact.Text, lastBotMessage(t, s))
}

func TestContact_ExistingCustomerWithLastOrder(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{
			Exists:   true,
			Customer: &models.Customer{ID: 42, Name: "Ana", Email: "ana@example.com"},
			LastOrderProducts: []models.OrderProduct{
				{Product: models.Product{ProductID: 1, Name: "House omelette", Price: 8.5}, Quantity: 2},
			},
		},
	}
	uc, _, _ := newTestDialog(g)
	s, _ := uc.Open(context.Background(), 3)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueStart)

	s, err := uc.HandleText(context.Background(), s.ID, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.StateCustomerIdentified, s.State)
	require.NotNil(t, s.Customer)
	assert.Equal(t, int64(42), s.Customer.ID)
	require.Len(t, s.QuickReplies, 2)
	assert.Equal(t, catalog.ValueRepeatLast, s.QuickReplies[0].Value)
}

func TestContact_UnknownCustomerStartsRegistration(t *testing.T) {
	uc, _, _ := newTestDialog(&fakeGateway{})
	s, _ := uc.Open(context.Background(), 3)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueStart)

	s, err := uc.HandleText(context.Background(), s.ID, "+34600123456")
	require.NoError(t, err)
	assert.Equal(t, models.StateCustomerNew, s.State)
	assert.Equal(t, models.InputText, s.InputType)
	assert.Equal(t, "phone", s.Registration.InitialContact)
}

func TestRegistration_FullFlowWithSkips(t *testing.T) {
	g := &fakeGateway{menu: testMenu()}
	uc, _, _ := newTestDialog(g)
	s, _ := uc.Open(context.Background(), 3)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueStart)
	uc.HandleText(context.Background(), s.ID, "+34600123456")

	// Name, then the missing contact channel is email.
	s, err := uc.HandleText(context.Background(), s.ID, "Luis Romero")
	require.NoError(t, err)
	assert.Equal(t, models.InputEmail, s.InputType)

	s, err = uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueSkipEmail)
	require.NoError(t, err)
	assert.Equal(t, models.InputDate, s.InputType)

	s, err = uc.HandleText(context.Background(), s.ID, "15/03/1990")
	require.NoError(t, err)
	// Gender is quick replies only.
	assert.Equal(t, models.InputNone, s.InputType)

	s, err = uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueSkipGender)
	require.NoError(t, err)
	require.NotNil(t, s.Customer)
	assert.Equal(t, "Luis Romero", s.Customer.Name)
	assert.Empty(t, s.Registration.Name)
	// Registration flows straight into the menu.
	assert.Equal(t, models.StateBrowsing, s.State)
}

func TestRegistration_InvalidBirthDateReprompts(t *testing.T) {
	uc, _, _ := newTestDialog(&fakeGateway{})
	s, _ := uc.Open(context.Background(), 3)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueStart)
	uc.HandleText(context.Background(), s.ID, "ana@example.com")
	uc.HandleText(context.Background(), s.ID, "Ana")
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueSkipPhone)

	s, err := uc.HandleText(context.Background(), s.ID, "1990-03-15")
	require.NoError(t, err)
	assert.Equal(t, models.InputDate, s.InputType)
	assert.Equal(t, catalog.ErrorInvalidBirthDate.Text, lastBotMessage(t, s))
}

func TestRegistration_RejectsInvalidName(t *testing.T) {
	uc, _, _ := newTestDialog(&fakeGateway{})
	s, _ := uc.Open(context.Background(), 3)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueStart)
	uc.HandleText(context.Background(), s.ID, "+34600123456")

	s, err := uc.HandleText(context.Background(), s.ID, "1234")
	require.NoError(t, err)
	assert.Equal(t, models.InputText, s.InputType)
	assert.Empty(t, s.Registration.Name)
	assert.Equal(t, catalog.ErrorInvalidName.Text, lastBotMessage(t, s))
}

func TestRegistration_RejectsImplausibleBirthDate(t *testing.T) {
	uc, _, _ := newTestDialog(&fakeGateway{})
	s, _ := uc.Open(context.Background(), 3)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueStart)
	uc.HandleText(context.Background(), s.ID, "ana@example.com")
	uc.HandleText(context.Background(), s.ID, "Ana")
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueSkipPhone)

	// A well-formed date naming a two-year-old is a typo, not a customer.
	s, err := uc.HandleText(context.Background(), s.ID, "15/03/2024")
	require.NoError(t, err)
	assert.Equal(t, models.InputDate, s.InputType)
	assert.Empty(t, s.Registration.BirthDate)
	assert.Equal(t, catalog.ErrorBirthDateOutOfRange.Text, lastBotMessage(t, s))
}

func browseToProduct(t *testing.T, uc DialogUsecase, sessionID string) *models.Session {
	t.Helper()
	_, err := uc.HandleQuickReply(context.Background(), sessionID, catalog.ValueBrowseMenu)
	require.NoError(t, err)
	s, err := uc.HandleQuickReply(context.Background(), sessionID, catalog.PrefixCategory+"breakfast")
	require.NoError(t, err)
	return s
}

func openIdentified(t *testing.T, uc DialogUsecase) *models.Session {
	t.Helper()
	s, err := uc.Open(context.Background(), 3)
	require.NoError(t, err)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueStart)
	s, err = uc.HandleText(context.Background(), s.ID, "ana@example.com")
	require.NoError(t, err)
	return s
}

func TestMenu_CategoryListsProductsWithChips(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{Exists: true, Customer: &models.Customer{ID: 42, Name: "Ana"}},
		menu:   testMenu(),
	}
	uc, _, _ := newTestDialog(g)
	s := openIdentified(t, uc)
	s = browseToProduct(t, uc, s.ID)

	assert.Equal(t, models.StateProductSelected, s.State)
	assert.Equal(t, "Breakfast", s.SelectedCategory)
	// Two numbered chips plus the back chip.
	require.Len(t, s.QuickReplies, 3)
	assert.Equal(t, catalog.PrefixProduct+"0", s.QuickReplies[0].Value)
	assert.Equal(t, catalog.ValueBrowseMenu, s.QuickReplies[2].Value)
}

func TestMenu_UnknownCategoryReprompts(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{Exists: true, Customer: &models.Customer{ID: 42, Name: "Ana"}},
		menu:   testMenu(),
	}
	uc, _, _ := newTestDialog(g)
	s := openIdentified(t, uc)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueBrowseMenu)

	s, err := uc.HandleText(context.Background(), s.ID, "sushi")
	require.NoError(t, err)
	assert.Equal(t, models.StateBrowsing, s.State)
}

func TestProduct_SelectByNumberThenComment(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{Exists: true, Customer: &models.Customer{ID: 42, Name: "Ana"}},
		menu:   testMenu(),
	}
	uc, _, _ := newTestDialog(g)
	s := openIdentified(t, uc)
	browseToProduct(t, uc, s.ID)

	s, err := uc.HandleText(context.Background(), s.ID, "1")
	require.NoError(t, err)
	require.Len(t, s.Cart, 1)
	assert.Equal(t, int64(1), s.Cart[0].ProductID)
	assert.Equal(t, models.InputTextarea, s.InputType)
	assert.Equal(t, 8.5, s.Subtotal)

	s, err = uc.HandleText(context.Background(), s.ID, "no onion")
	require.NoError(t, err)
	assert.Equal(t, "no onion", s.Cart[0].Comments)
	assert.Equal(t, models.StateCrossSell, s.State)
}

func TestProduct_DuplicateSelectionIncrementsQuantity(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{Exists: true, Customer: &models.Customer{ID: 42, Name: "Ana"}},
		menu:   testMenu(),
	}
	uc, _, _ := newTestDialog(g)
	s := openIdentified(t, uc)
	browseToProduct(t, uc, s.ID)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.PrefixProduct+"0")
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueNoComments)
	browseToProduct(t, uc, s.ID)

	s, err := uc.HandleQuickReply(context.Background(), s.ID, catalog.PrefixProduct+"0")
	require.NoError(t, err)
	require.Len(t, s.Cart, 1)
	assert.Equal(t, 2, s.Cart[0].Quantity)
	assert.Equal(t, 17.0, s.Subtotal)
}

func TestCrossSell_SuggestionAcceptedAddsToCart(t *testing.T) {
	g := &fakeGateway{
		lookup:    &loyalty.CustomerLookup{Exists: true, Customer: &models.Customer{ID: 42, Name: "Ana"}},
		menu:      testMenu(),
		crossSell: []models.Product{{ProductID: 3, Name: "Latte", Price: 3.5}},
	}
	uc, _, _ := newTestDialog(g)
	s := openIdentified(t, uc)
	browseToProduct(t, uc, s.ID)
	uc.HandleText(context.Background(), s.ID, "1")

	s, err := uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueNoComments)
	require.NoError(t, err)
	assert.Equal(t, models.StateCrossSell, s.State)
	require.Len(t, s.QuickReplies, 2)
	assert.Equal(t, catalog.ValueAcceptSuggestion, s.QuickReplies[0].Value)

	s, err = uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueAcceptSuggestion)
	require.NoError(t, err)
	require.Len(t, s.Cart, 2)
	assert.Equal(t, int64(3), s.Cart[1].ProductID)
	assert.Equal(t, 12.0, s.Subtotal)
}

func TestRepeatLastOrder_ReplacesCart(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{
			Exists:   true,
			Customer: &models.Customer{ID: 42, Name: "Ana"},
			LastOrderProducts: []models.OrderProduct{
				{Product: models.Product{ProductID: 1, Name: "House omelette", Price: 8.5}, Quantity: 2},
			},
		},
		lastOrder: []models.OrderProduct{
			{Product: models.Product{ProductID: 1, Name: "House omelette", Price: 8.5}, Quantity: 2, Comments: "well done"},
		},
	}
	uc, _, _ := newTestDialog(g)
	s := openIdentified(t, uc)

	s, err := uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueRepeatLast)
	require.NoError(t, err)
	require.Len(t, s.Cart, 1)
	assert.Equal(t, 2, s.Cart[0].Quantity)
	assert.Equal(t, "well done", s.Cart[0].Comments)
	assert.Equal(t, 17.0, s.Subtotal)
	assert.Equal(t, catalog.ValueConfirmOrder, s.QuickReplies[0].Value)
}

func TestReview_EmptyCartIsRejected(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{Exists: true, Customer: &models.Customer{ID: 42, Name: "Ana"}},
	}
	uc, _, _ := newTestDialog(g)
	s := openIdentified(t, uc)

	s, err := uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueSkipCoupon)
	require.NoError(t, err)
	assert.NotEqual(t, models.StateReviewOrder, s.State)
	assert.Equal(t, catalog.ErrorEmptyCart.Text, lastBotMessage(t, s))
}

func TestReview_OffersHeldCouponsFirst(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{
			Exists:   true,
			Customer: &models.Customer{ID: 42, Name: "Ana"},
			ActiveCoupons: []models.Coupon{
				{ID: 1, Code: "SAVE10", Status: "ACTIVE", RewardType: models.RewardPercentDiscount, NumericValue: 10},
			},
		},
		menu: testMenu(),
	}
	uc, _, _ := newTestDialog(g)
	s := openIdentified(t, uc)
	browseToProduct(t, uc, s.ID)
	uc.HandleText(context.Background(), s.ID, "1")
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueNoComments)

	s, err := uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueSkipCoupon)
	require.NoError(t, err)
	assert.Equal(t, models.StateCouponSelection, s.State)
	assert.Equal(t, catalog.ValueViewCoupons, s.QuickReplies[0].Value)

	s, err = uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueViewCoupons)
	require.NoError(t, err)
	// One coupon chip plus the opt-out chip.
	require.Len(t, s.QuickReplies, 2)
	assert.Equal(t, catalog.PrefixCoupon+"SAVE10", s.QuickReplies[0].Value)
}

func TestCoupon_ValidCouponEstimatesDiscount(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{
			Exists:   true,
			Customer: &models.Customer{ID: 42, Name: "Ana"},
			ActiveCoupons: []models.Coupon{
				{ID: 1, Code: "SAVE10", Status: "ACTIVE"},
			},
		},
		menu: testMenu(),
		validation: &models.CouponValidation{
			Valid:       true,
			CouponCode:  "SAVE10",
			RewardType:  models.RewardPercentDiscount,
			RewardValue: 10,
		},
	}
	uc, _, _ := newTestDialog(g)
	s := openIdentified(t, uc)
	browseToProduct(t, uc, s.ID)
	uc.HandleText(context.Background(), s.ID, "1")
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueNoComments)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueSkipCoupon)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueViewCoupons)

	s, err := uc.HandleQuickReply(context.Background(), s.ID, catalog.PrefixCoupon+"SAVE10")
	require.NoError(t, err)
	assert.Equal(t, models.StateReviewOrder, s.State)
	require.NotNil(t, s.AppliedCoupon)
	assert.Equal(t, 8.5, s.Subtotal)
	assert.Equal(t, 0.85, s.Discount)
	assert.Equal(t, 7.65, s.Total)
}

func TestCoupon_InvalidOffersRetryOrSkip(t *testing.T) {
	g := &fakeGateway{
		lookup:     &loyalty.CustomerLookup{Exists: true, Customer: &models.Customer{ID: 42, Name: "Ana"}},
		menu:       testMenu(),
		validation: &models.CouponValidation{Valid: false, Message: "expired"},
	}
	uc, _, _ := newTestDialog(g)
	s := openIdentified(t, uc)
	browseToProduct(t, uc, s.ID)
	uc.HandleText(context.Background(), s.ID, "1")
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueNoComments)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueSkipCoupon)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueTryAnotherCoupon)

	s, err := uc.HandleText(context.Background(), s.ID, "OLD20")
	require.NoError(t, err)
	assert.Nil(t, s.AppliedCoupon)
	require.Len(t, s.QuickReplies, 2)
	assert.Equal(t, catalog.ValueTryAnotherCoupon, s.QuickReplies[0].Value)
}

func TestConfirm_RedeemsCouponThenCreatesOrder(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{
			Exists:        true,
			Customer:      &models.Customer{ID: 42, Name: "Ana"},
			ActiveCoupons: []models.Coupon{{ID: 1, Code: "SAVE10", Status: "ACTIVE"}},
		},
		menu: testMenu(),
		validation: &models.CouponValidation{
			Valid:       true,
			CouponCode:  "SAVE10",
			RewardType:  models.RewardPercentDiscount,
			RewardValue: 10,
		},
		redeem: &loyalty.RedeemResult{
			Code: 200,
			Redemption: &models.CouponRedemption{
				Success:        true,
				CouponCode:     "SAVE10",
				DiscountType:   models.RewardPercentDiscount,
				OriginalAmount: 8.5,
				DiscountAmount: 0.85,
				FinalAmount:    7.65,
			},
		},
		order: &models.OrderResponse{ID: "ORD-9"},
	}
	uc, _, producer := newTestDialog(g)
	s := openIdentified(t, uc)
	browseToProduct(t, uc, s.ID)
	uc.HandleText(context.Background(), s.ID, "1")
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueNoComments)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueSkipCoupon)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueViewCoupons)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.PrefixCoupon+"SAVE10")

	s, err := uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueConfirmOrder)
	require.NoError(t, err)
	assert.Equal(t, models.StateOrderConfirmed, s.State)
	assert.Equal(t, 1, g.redeemCalls)
	assert.Empty(t, s.Cart)
	assert.Equal(t, 0.85, s.Discount)
	assert.Equal(t, 7.65, s.Total)
	assert.Equal(t, []string{"ORD-9"}, producer.confirmed)

	// Redeemed figures are authoritative; the code must not ride on the
	// create-order request once consumed.
	require.Len(t, g.orderReqs, 1)
	assert.Empty(t, g.orderReqs[0].CouponCode)
	assert.Equal(t, 7.65, g.orderReqs[0].TotalFinal)
}

func TestConfirm_RedemptionRejectedOffersCheckoutWithout(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{
			Exists:        true,
			Customer:      &models.Customer{ID: 42, Name: "Ana"},
			ActiveCoupons: []models.Coupon{{ID: 1, Code: "SAVE10", Status: "ACTIVE"}},
		},
		menu: testMenu(),
		validation: &models.CouponValidation{
			Valid:       true,
			CouponCode:  "SAVE10",
			RewardType:  models.RewardFixedAmount,
			RewardValue: 2,
		},
		redeem: &loyalty.RedeemResult{Code: 400, Message: "coupon already redeemed"},
	}
	uc, _, producer := newTestDialog(g)
	s := openIdentified(t, uc)
	browseToProduct(t, uc, s.ID)
	uc.HandleText(context.Background(), s.ID, "1")
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueNoComments)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueSkipCoupon)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueViewCoupons)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.PrefixCoupon+"SAVE10")

	s, err := uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueConfirmOrder)
	require.NoError(t, err)
	assert.NotEqual(t, models.StateOrderConfirmed, s.State)
	assert.Empty(t, g.orderReqs)
	assert.Equal(t, catalog.ValueConfirmOrderNoCoupon, s.QuickReplies[0].Value)

	s, err = uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueConfirmOrderNoCoupon)
	require.NoError(t, err)
	assert.Equal(t, models.StateOrderConfirmed, s.State)
	assert.Nil(t, s.AppliedCoupon)
	require.Len(t, g.orderReqs, 1)
	assert.Equal(t, 8.5, g.orderReqs[0].TotalFinal)
	require.Len(t, producer.confirmed, 1)
}

func TestConfirm_EmptyCartDoesNotCreateOrder(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{Exists: true, Customer: &models.Customer{ID: 42, Name: "Ana"}},
	}
	uc, _, _ := newTestDialog(g)
	s := openIdentified(t, uc)

	s, err := uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueConfirmOrder)
	require.NoError(t, err)
	assert.Empty(t, g.orderReqs)
	assert.NotEqual(t, models.StateOrderConfirmed, s.State)
	assert.Equal(t, catalog.ErrorEmptyCart.Text, lastBotMessage(t, s))
}

func TestConfirm_RestartClearsPreviousOrderCoupon(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{
			Exists:        true,
			Customer:      &models.Customer{ID: 42, Name: "Ana"},
			ActiveCoupons: []models.Coupon{{ID: 1, Code: "SAVE10", Status: "ACTIVE"}},
		},
		menu: testMenu(),
		validation: &models.CouponValidation{
			Valid:       true,
			CouponCode:  "SAVE10",
			RewardType:  models.RewardPercentDiscount,
			RewardValue: 10,
		},
		redeem: &loyalty.RedeemResult{
			Code: 200,
			Redemption: &models.CouponRedemption{
				Success:        true,
				CouponCode:     "SAVE10",
				DiscountType:   models.RewardPercentDiscount,
				OriginalAmount: 8.5,
				DiscountAmount: 0.85,
				FinalAmount:    7.65,
			},
		},
		order: &models.OrderResponse{ID: "ORD-9"},
	}
	uc, _, _ := newTestDialog(g)
	s := openIdentified(t, uc)
	browseToProduct(t, uc, s.ID)
	uc.HandleText(context.Background(), s.ID, "1")
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueNoComments)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueSkipCoupon)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueViewCoupons)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.PrefixCoupon+"SAVE10")
	s, err := uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueConfirmOrder)
	require.NoError(t, err)
	require.Equal(t, models.StateOrderConfirmed, s.State)

	// "Order something else" starts a fresh order.
	s, err = uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueStart)
	require.NoError(t, err)
	assert.Equal(t, models.StateWaitingContact, s.State)
	assert.Nil(t, s.AppliedCoupon)
	assert.Nil(t, s.RedeemedCoupon)
	assert.Empty(t, s.AvailableCoupons)
	assert.Zero(t, s.Subtotal)
	assert.Zero(t, s.Discount)
	assert.Zero(t, s.Total)

	uc.HandleText(context.Background(), s.ID, "ana@example.com")
	uc.HandleQuickReply(context.Background(), s.ID, catalog.PrefixCategory+"breakfast")
	s, err = uc.HandleQuickReply(context.Background(), s.ID, catalog.PrefixProduct+"1")
	require.NoError(t, err)
	assert.Equal(t, 6.0, s.Subtotal)
	assert.Zero(t, s.Discount)
	assert.Equal(t, 6.0, s.Total)

	// The second order must not inherit the first one's redemption.
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueNoComments)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueSkipCoupon)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueNoCoupon)
	s, err = uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueConfirmOrder)
	require.NoError(t, err)
	assert.Equal(t, models.StateOrderConfirmed, s.State)
	assert.Equal(t, 1, g.redeemCalls)
	require.Len(t, g.orderReqs, 2)
	assert.Equal(t, 6.0, g.orderReqs[1].Subtotal)
	assert.Zero(t, g.orderReqs[1].Discount)
	assert.Equal(t, 6.0, g.orderReqs[1].TotalFinal)
}

func TestInitialText_AffirmativeMovesToContact(t *testing.T) {
	uc, _, _ := newTestDialog(&fakeGateway{})
	s, _ := uc.Open(context.Background(), 3)

	s, err := uc.HandleText(context.Background(), s.ID, "yes, let's order")
	require.NoError(t, err)
	assert.Equal(t, models.StateWaitingContact, s.State)
	assert.Equal(t, models.InputContact, s.InputType)
}

func TestInitialText_DismissalClosesSession(t *testing.T) {
	uc, _, producer := newTestDialog(&fakeGateway{})
	s, _ := uc.Open(context.Background(), 3)

	s, err := uc.HandleText(context.Background(), s.ID, "maybe later")
	require.NoError(t, err)
	assert.False(t, s.Open)
	assert.Equal(t, models.StateAbandoned, s.State)
	assert.Equal(t, catalog.ClosingMessage.Text, lastBotMessage(t, s))
	assert.Empty(t, producer.abandoned)
}

func TestClose_AbandonsNonEmptyCartOnce(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{Exists: true, Customer: &models.Customer{ID: 42, Name: "Ana"}},
		menu:   testMenu(),
	}
	uc, _, producer := newTestDialog(g)
	s := openIdentified(t, uc)
	browseToProduct(t, uc, s.ID)
	uc.HandleText(context.Background(), s.ID, "1")

	s, err := uc.Close(context.Background(), s.ID)
	require.NoError(t, err)
	assert.False(t, s.Open)
	assert.Equal(t, models.StateAbandoned, s.State)
	assert.Equal(t, 1, g.abandonCalls)
	assert.Equal(t, []string{s.ID}, producer.abandoned)

	_, err = uc.Close(context.Background(), s.ID)
	assert.ErrorIs(t, err, models.ErrSessionClosed)
}

func TestClose_EmptyCartSkipsAbandonTracking(t *testing.T) {
	g := &fakeGateway{}
	uc, _, producer := newTestDialog(g)
	s, _ := uc.Open(context.Background(), 3)

	s, err := uc.Close(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateAbandoned, s.State)
	assert.Zero(t, g.abandonCalls)
	assert.Empty(t, producer.abandoned)
}

func TestClose_AfterConfirmationIsNotAnAbandonment(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{Exists: true, Customer: &models.Customer{ID: 42, Name: "Ana"}},
		menu:   testMenu(),
		order:  &models.OrderResponse{ID: "ORD-5"},
	}
	uc, _, producer := newTestDialog(g)
	s := openIdentified(t, uc)
	browseToProduct(t, uc, s.ID)
	uc.HandleText(context.Background(), s.ID, "1")
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueNoComments)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueSkipCoupon)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueConfirmOrder)

	s, err := uc.Close(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateOrderConfirmed, s.State)
	assert.Zero(t, g.abandonCalls)
	assert.Empty(t, producer.abandoned)
}

func TestBusySession_RejectsConcurrentEvent(t *testing.T) {
	uc, _, _ := newTestDialog(&fakeGateway{})
	s, _ := uc.Open(context.Background(), 3)

	impl := uc.(*dialogUsecase)
	require.True(t, impl.acquire(s.ID))
	defer impl.release(s.ID)

	_, err := uc.HandleText(context.Background(), s.ID, "hello")
	assert.ErrorIs(t, err, models.ErrSessionBusy)
}

func TestSweepAbandoned_ClosesStaleSessions(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{Exists: true, Customer: &models.Customer{ID: 42, Name: "Ana"}},
		menu:   testMenu(),
	}
	uc, repo, producer := newTestDialog(g)
	s := openIdentified(t, uc)
	browseToProduct(t, uc, s.ID)
	uc.HandleText(context.Background(), s.ID, "1")

	// Make the session look idle.
	repo.mu.Lock()
	repo.sessions[s.ID].UpdatedAt = time.Now().Add(-2 * time.Hour)
	repo.mu.Unlock()

	require.NoError(t, uc.SweepAbandoned(context.Background(), time.Hour))

	swept, err := repo.GetByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.False(t, swept.Open)
	assert.Equal(t, models.StateAbandoned, swept.State)
	assert.Equal(t, []string{s.ID}, producer.abandoned)
}

func TestTranscript_TagsRichMessages(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{
			Exists:        true,
			Customer:      &models.Customer{ID: 42, Name: "Ana"},
			ActiveCoupons: []models.Coupon{{ID: 1, Code: "SAVE10", Status: "ACTIVE"}},
		},
		menu:      testMenu(),
		crossSell: []models.Product{{ProductID: 3, Name: "Latte", Price: 3.5}},
		validation: &models.CouponValidation{
			Valid:       true,
			CouponCode:  "SAVE10",
			RewardType:  models.RewardPercentDiscount,
			RewardValue: 10,
		},
		redeem: &loyalty.RedeemResult{
			Code: 200,
			Redemption: &models.CouponRedemption{
				Success:        true,
				CouponCode:     "SAVE10",
				DiscountType:   models.RewardPercentDiscount,
				OriginalAmount: 8.5,
				DiscountAmount: 0.85,
				FinalAmount:    7.65,
			},
		},
		order: &models.OrderResponse{ID: "ORD-9"},
	}
	uc, _, _ := newTestDialog(g)
	s := openIdentified(t, uc)
	browseToProduct(t, uc, s.ID)
	uc.HandleText(context.Background(), s.ID, "1")

	s, err := uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueNoComments)
	require.NoError(t, err)
	assert.Equal(t, models.MessageProductSuggestion, lastBotEntry(t, s).Type)

	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueSkipSuggestion)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueSkipCoupon)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueViewCoupons)
	s, err = uc.HandleQuickReply(context.Background(), s.ID, catalog.PrefixCoupon+"SAVE10")
	require.NoError(t, err)
	assert.Contains(t, botMessageTypes(s), models.MessageCouponValidation)

	s, err = uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueConfirmOrder)
	require.NoError(t, err)
	assert.Equal(t, models.MessageOrderConfirmation, lastBotEntry(t, s).Type)
}

func TestTranscript_TagsGatewayErrors(t *testing.T) {
	g := &fakeGateway{lookupErr: errors.New("boom")}
	uc, _, _ := newTestDialog(g)
	s, _ := uc.Open(context.Background(), 3)
	uc.HandleQuickReply(context.Background(), s.ID, catalog.ValueStart)

	s, err := uc.HandleText(context.Background(), s.ID, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.MessageError, lastBotEntry(t, s).Type)
	assert.Equal(t, catalog.ValueRetry, s.QuickReplies[0].Value)
}

func TestUnknownState_TextGetsEmptyStatePrompt(t *testing.T) {
	g := &fakeGateway{
		lookup: &loyalty.CustomerLookup{
			Exists:   true,
			Customer: &models.Customer{ID: 42, Name: "Ana"},
			LastOrderProducts: []models.OrderProduct{
				{Product: models.Product{ProductID: 1, Name: "House omelette", Price: 8.5}, Quantity: 1},
			},
		},
	}
	uc, _, _ := newTestDialog(g)
	s := openIdentified(t, uc)
	require.Equal(t, models.StateCustomerIdentified, s.State)

	// CUSTOMER_IDENTIFIED has no text handler.
	s, err := uc.HandleText(context.Background(), s.ID, "anything")
	require.NoError(t, err)
	assert.Equal(t, catalog.EmptyState.Text, lastBotMessage(t, s))
}
