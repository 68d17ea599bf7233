package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/google/uuid"

	"github.com/KikeGitHub/lealtix-main/internal/cart"
	"github.com/KikeGitHub/lealtix-main/internal/catalog"
	"github.com/KikeGitHub/lealtix-main/internal/kafka"
	"github.com/KikeGitHub/lealtix-main/internal/models"
	"github.com/KikeGitHub/lealtix-main/internal/repo/loyalty"
	"github.com/KikeGitHub/lealtix-main/internal/repo/mongodb"
)

// DialogUsecase drives the conversational ordering flow. Every widget
// event loads the session, runs the handler for its current state and
// persists the mutated session back.
type DialogUsecase interface {
	Open(ctx context.Context, tenantID int64) (*models.Session, error)
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	HandleText(ctx context.Context, sessionID, text string) (*models.Session, error)
	HandleQuickReply(ctx context.Context, sessionID, value string) (*models.Session, error)
	Close(ctx context.Context, sessionID string) (*models.Session, error)
	SweepAbandoned(ctx context.Context, idleFor time.Duration) error
}

type dialogUsecase struct {
	sessions mongodb.SessionRepository
	gateway  loyalty.Client
	producer kafka.Producer

	mu   sync.Mutex
	busy map[string]struct{}

	textHandlers map[models.ConversationState]func(ctx context.Context, s *models.Session, text string)
}

func NewDialogUsecase(
	sessions mongodb.SessionRepository,
	gateway loyalty.Client,
	producer kafka.Producer,
) DialogUsecase {
	uc := &dialogUsecase{
		sessions: sessions,
		gateway:  gateway,
		producer: producer,
		busy:     map[string]struct{}{},
	}
	uc.textHandlers = map[models.ConversationState]func(context.Context, *models.Session, string){
		models.StateInitial:          uc.handleInitialText,
		models.StateWaitingContact:   uc.handleContactText,
		models.StateCustomerNew:      uc.handleRegistrationText,
		models.StateBrowsing:         uc.handleCategoryText,
		models.StateProductSelected:  uc.handleProductText,
		models.StateCouponValidation: uc.handleCouponText,
	}
	return uc
}

func (uc *dialogUsecase) Open(ctx context.Context, tenantID int64) (*models.Session, error) {
	s := &models.Session{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		State:    models.StateInitial,
		Open:     true,
	}
	uc.apply(s, catalog.GreetingInitial)

	if err := uc.sessions.Create(ctx, s); err != nil {
		return nil, err
	}
	log.Infow(ctx, "Session opened", "session_id", s.ID, "tenant_id", tenantID)
	return s, nil
}

func (uc *dialogUsecase) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	return uc.sessions.GetByID(ctx, sessionID)
}

func (uc *dialogUsecase) HandleText(ctx context.Context, sessionID, text string) (*models.Session, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return uc.sessions.GetByID(ctx, sessionID)
	}

	return uc.withSession(ctx, sessionID, func(s *models.Session) {
		s.AddUserMessage(text)

		handler := uc.textHandlers[s.State]
		if handler == nil {
			uc.apply(s, catalog.EmptyState)
			return
		}
		handler(ctx, s, text)
	})
}

func (uc *dialogUsecase) HandleQuickReply(ctx context.Context, sessionID, value string) (*models.Session, error) {
	return uc.withSession(ctx, sessionID, func(s *models.Session) {
		for _, chip := range s.QuickReplies {
			if chip.Value == value {
				s.AddUserMessage(chip.Label)
				break
			}
		}

		switch {
		case strings.HasPrefix(value, catalog.PrefixProduct):
			uc.selectProductByValue(ctx, s, strings.TrimPrefix(value, catalog.PrefixProduct))
			return
		case strings.HasPrefix(value, catalog.PrefixCategory):
			term := strings.ReplaceAll(strings.TrimPrefix(value, catalog.PrefixCategory), "_", " ")
			uc.selectCategory(ctx, s, term)
			return
		case strings.HasPrefix(value, catalog.PrefixCoupon):
			uc.validateCoupon(ctx, s, strings.TrimPrefix(value, catalog.PrefixCoupon))
			return
		}

		switch value {
		case catalog.ValueStart:
			uc.restartOrder(s)
		case catalog.ValueRetry, catalog.ValueRetryOrder:
			uc.startOrder(s)
		case catalog.ValueClose, catalog.ValueCancelOrder:
			uc.closeSession(ctx, s)
		case catalog.ValueRepeatLast:
			uc.repeatLastOrder(ctx, s)
		case catalog.ValueBrowseMenu, catalog.ValueAddMore, catalog.ValueModifyOrder:
			uc.browseMenu(ctx, s)
		case catalog.ValueNoComments:
			uc.finalizeProduct(ctx, s)
		case catalog.ValueAcceptSuggestion:
			uc.acceptSuggestion(ctx, s)
		case catalog.ValueSkipSuggestion:
			s.Suggestion = nil
			uc.askAddMore(s)
		case catalog.ValueNoCoupon:
			uc.skipCoupon(s)
		case catalog.ValueViewCoupons:
			uc.showAvailableCoupons(s)
		case catalog.ValueSkipEmail:
			s.Registration.Email = ""
			uc.askBirthDate(s)
		case catalog.ValueSkipPhone:
			s.Registration.Phone = ""
			uc.askBirthDate(s)
		case catalog.ValueSkipBirthDate:
			s.Registration.BirthDate = ""
			uc.askGender(s)
		case catalog.ValueSkipGender:
			uc.finishRegistration(ctx, s, "")
		case catalog.GenderMale, catalog.GenderFemale, catalog.GenderOther:
			uc.finishRegistration(ctx, s, value)
		case catalog.ValueConfirmOrder:
			uc.confirmOrder(ctx, s)
		case catalog.ValueConfirmOrderNoCoupon:
			s.AppliedCoupon = nil
			s.RedeemedCoupon = nil
			uc.refreshTotals(s)
			uc.createOrder(ctx, s)
		case catalog.ValueTryAnotherCoupon:
			uc.askForCoupon(s)
		case catalog.ValueSkipCoupon:
			uc.reviewOrder(s)
		default:
			log.Warnw(ctx, "Unknown quick reply value", "session_id", s.ID, "value", value)
			uc.apply(s, catalog.EmptyState)
		}
	})
}

func (uc *dialogUsecase) Close(ctx context.Context, sessionID string) (*models.Session, error) {
	return uc.withSession(ctx, sessionID, func(s *models.Session) {
		uc.closeSession(ctx, s)
	})
}

// SweepAbandoned closes open sessions idle longer than idleFor so their
// carts are tracked as abandoned even when the widget never said
// goodbye.
func (uc *dialogUsecase) SweepAbandoned(ctx context.Context, idleFor time.Duration) error {
	stale, err := uc.sessions.ListOpenBefore(ctx, time.Now().Add(-idleFor))
	if err != nil {
		return err
	}
	for _, s := range stale {
		if !uc.acquire(s.ID) {
			continue
		}
		uc.closeSession(ctx, s)
		if err := uc.sessions.Update(ctx, s); err != nil {
			log.Errorw(ctx, "Failed to save swept session", "error", err, "session_id", s.ID)
		}
		uc.release(s.ID)
	}
	if len(stale) > 0 {
		log.Infow(ctx, "Swept stale sessions", "count", len(stale))
	}
	return nil
}

// withSession loads, guards, mutates and saves one session. Events for
// a busy session are rejected so gateway calls never interleave.
func (uc *dialogUsecase) withSession(ctx context.Context, sessionID string, fn func(*models.Session)) (*models.Session, error) {
	if !uc.acquire(sessionID) {
		return nil, models.ErrSessionBusy
	}
	defer uc.release(sessionID)

	s, err := uc.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.Open {
		return nil, models.ErrSessionClosed
	}

	fn(s)

	if err := uc.sessions.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *dialogUsecase) acquire(sessionID string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, ok := uc.busy[sessionID]; ok {
		return false
	}
	uc.busy[sessionID] = struct{}{}
	return true
}

func (uc *dialogUsecase) release(sessionID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.busy, sessionID)
}

// apply writes a scripted prompt onto the session: bot message, input
// hint and quick replies together.
func (uc *dialogUsecase) apply(s *models.Session, p catalog.Prompt) {
	if p.Text != "" {
		if p.Type != "" {
			s.AddBotTyped(p.Type, p.Text)
		} else {
			s.AddBotMessage(p.Text)
		}
	}
	s.QuickReplies = p.QuickReplies
	s.InputType = p.InputType
	s.Placeholder = p.Placeholder
}

func (uc *dialogUsecase) say(s *models.Session, text string) {
	s.AddBotMessage(text)
}

func (uc *dialogUsecase) refreshTotals(s *models.Session) {
	t := cart.Compute(s.Cart, s.AppliedCoupon, s.RedeemedCoupon)
	s.Subtotal = t.Subtotal
	s.Discount = t.Discount
	s.Total = t.Total
}

// reportError turns a gateway failure into a conversation message with
// retry options. The event itself still succeeds.
func (uc *dialogUsecase) reportError(ctx context.Context, s *models.Session, err error) {
	log.Errorw(ctx, "Gateway call failed", "error", err, "session_id", s.ID, "state", s.State)
	s.AddBotTyped(models.MessageError, loyalty.UserMessage(err))
	s.QuickReplies = catalog.ErrorGeneric.QuickReplies
	s.InputType = models.InputNone
	s.Placeholder = ""
}

var affirmativeTokens = []string{"yes", "yeah", "sure", "ok", "hi", "hello", "hey", "start", "order"}

func (uc *dialogUsecase) handleInitialText(ctx context.Context, s *models.Session, text string) {
	lowered := strings.ToLower(text)
	for _, token := range affirmativeTokens {
		if strings.Contains(lowered, token) {
			uc.startOrder(s)
			return
		}
	}
	uc.closeSession(ctx, s)
}

func (uc *dialogUsecase) closeSession(ctx context.Context, s *models.Session) {
	if s.State != models.StateOrderConfirmed {
		s.State = models.StateAbandoned
		if len(s.Cart) > 0 && !s.AbandonNotified {
			s.AbandonNotified = true
			if err := uc.gateway.AbandonSession(ctx, s.ID); err != nil {
				log.Errorw(ctx, "Failed to notify abandonment", "error", err, "session_id", s.ID)
			}
			uc.producer.SessionAbandoned(ctx, s)
		}
	}
	s.Open = false
	if s.State == models.StateAbandoned && len(s.Cart) > 0 {
		uc.apply(s, catalog.AbandonedSession)
	} else {
		uc.apply(s, catalog.ClosingMessage)
	}
	log.Infow(ctx, "Session closed", "session_id", s.ID, "state", s.State)
}
