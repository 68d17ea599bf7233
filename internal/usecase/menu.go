package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	log "github.com/carousell/ct-go/pkg/logger/log_context"

	"github.com/KikeGitHub/lealtix-main/internal/catalog"
	"github.com/KikeGitHub/lealtix-main/internal/models"
)

// maxProductsShown caps the listed product lines per category.
const maxProductsShown = 20

// maxProductChips is the largest category that still gets one numbered
// quick reply per product.
const maxProductChips = 10

func (uc *dialogUsecase) browseMenu(ctx context.Context, s *models.Session) {
	s.State = models.StateBrowsing
	uc.say(s, catalog.BrowsingMenu.Text)

	if len(s.Menu) == 0 {
		uc.say(s, catalog.LoadingMenu.Text)
		menu, err := uc.gateway.Menu(ctx, s.TenantID)
		if err != nil {
			log.Errorw(ctx, "Failed to load menu", "error", err, "tenant_id", s.TenantID)
		}
		s.Menu = menu
	}
	uc.showCategories(s)
}

func (uc *dialogUsecase) showCategories(s *models.Session) {
	if len(s.Menu) == 0 {
		uc.apply(s, catalog.MenuUnavailable)
		return
	}

	chips := make([]models.QuickReply, 0, len(s.Menu))
	for _, c := range s.Menu {
		chips = append(chips, models.QuickReply{
			Label: c.Name,
			Value: catalog.PrefixCategory + strings.ReplaceAll(strings.ToLower(c.Name), " ", "_"),
		})
	}
	s.QuickReplies = chips
	s.InputType = models.InputText
	s.Placeholder = ""
}

func (uc *dialogUsecase) handleCategoryText(ctx context.Context, s *models.Session, text string) {
	uc.selectCategory(ctx, s, text)
}

func (uc *dialogUsecase) selectCategory(ctx context.Context, s *models.Session, term string) {
	category := s.FindCategory(term)
	if category == nil || len(category.Products) == 0 {
		uc.say(s, catalog.CategoryNotFound(term))
		uc.browseMenu(ctx, s)
		return
	}

	s.SelectedCategory = category.Name
	uc.say(s, catalog.CategoryHeader(category.Name, len(category.Products)))
	for i, p := range category.Products {
		if i == maxProductsShown {
			uc.say(s, catalog.MoreProducts(len(category.Products)-maxProductsShown))
			break
		}
		uc.say(s, catalog.ProductLine(i+1, p.Name, p.Price))
	}

	s.State = models.StateProductSelected
	uc.apply(s, catalog.SelectProduct)

	if len(category.Products) <= maxProductChips {
		chips := make([]models.QuickReply, 0, len(category.Products)+1)
		for i, p := range category.Products {
			chips = append(chips, models.QuickReply{
				Label: fmt.Sprintf("%d. %s", i+1, p.Name),
				Value: fmt.Sprintf("%s%d", catalog.PrefixProduct, i),
			})
		}
		s.QuickReplies = append(chips, catalog.BackToCategories)
	} else {
		s.QuickReplies = []models.QuickReply{catalog.BackToCategories}
	}
}

// handleProductText resolves a typed product answer, or a note for the
// just-added product when the textarea hint is active.
func (uc *dialogUsecase) handleProductText(ctx context.Context, s *models.Session, text string) {
	if s.InputType == models.InputTextarea {
		uc.attachComment(ctx, s, text)
		return
	}
	uc.selectProduct(ctx, s, text)
}

func (uc *dialogUsecase) selectProduct(ctx context.Context, s *models.Session, term string) {
	category := uc.selectedCategory(ctx, s)
	if category == nil {
		return
	}

	if n, err := strconv.Atoi(strings.TrimSpace(term)); err == nil && n > 0 && n <= len(category.Products) {
		uc.addProduct(s, category.Products[n-1])
		return
	}

	for _, p := range category.Products {
		if p.Matches(term) {
			uc.addProduct(s, p)
			return
		}
	}

	uc.say(s, catalog.ProductNotFound(term, category.Name))
	s.QuickReplies = []models.QuickReply{catalog.BackToCategories}
}

func (uc *dialogUsecase) selectProductByValue(ctx context.Context, s *models.Session, raw string) {
	category := uc.selectedCategory(ctx, s)
	if category == nil {
		return
	}

	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 || index >= len(category.Products) {
		uc.say(s, catalog.ProductNotFound(raw, category.Name))
		uc.browseMenu(ctx, s)
		return
	}
	uc.addProduct(s, category.Products[index])
}

func (uc *dialogUsecase) selectedCategory(ctx context.Context, s *models.Session) *models.Category {
	if s.SelectedCategory == "" {
		uc.say(s, catalog.PickCategoryFirst)
		uc.browseMenu(ctx, s)
		return nil
	}
	for i := range s.Menu {
		if s.Menu[i].Name == s.SelectedCategory {
			return &s.Menu[i]
		}
	}
	uc.say(s, catalog.PickCategoryFirst)
	uc.browseMenu(ctx, s)
	return nil
}

func (uc *dialogUsecase) addProduct(s *models.Session, p models.Product) {
	item := s.AddToCart(p)
	if item.Quantity > 1 {
		uc.say(s, catalog.ProductIncremented(p.Name, item.Quantity))
	} else {
		uc.say(s, catalog.ProductAdded(p.Name, p.Price))
	}
	uc.refreshTotals(s)

	s.State = models.StateProductSelected
	uc.apply(s, catalog.AskingComments)
}

func (uc *dialogUsecase) attachComment(ctx context.Context, s *models.Session, comment string) {
	comment = strings.TrimSpace(comment)
	if item := s.LastCartItem(); item != nil && comment != "" {
		item.Comments = comment
		uc.say(s, catalog.CommentNoted(comment))
	}
	uc.finalizeProduct(ctx, s)
}

// finalizeProduct closes out the just-added product: offer a pairing
// suggestion when the backend has one, otherwise ask whether to keep
// adding.
func (uc *dialogUsecase) finalizeProduct(ctx context.Context, s *models.Session) {
	s.State = models.StateCrossSell
	s.Suggestion = nil

	item := s.LastCartItem()
	if item == nil {
		uc.askAddMore(s)
		return
	}

	suggestions, err := uc.gateway.CrossSell(ctx, item.ProductID, s.TenantID)
	if err != nil {
		log.Warnw(ctx, "Cross-sell lookup failed", "error", err, "product_id", item.ProductID)
	}
	for _, p := range suggestions {
		if !uc.inCart(s, p.ProductID) {
			s.Suggestion = &p
			uc.apply(s, catalog.CrossSellSuggestion(p.Name, p.Price))
			return
		}
	}
	uc.askAddMore(s)
}

func (uc *dialogUsecase) inCart(s *models.Session, productID int64) bool {
	for _, item := range s.Cart {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

func (uc *dialogUsecase) acceptSuggestion(ctx context.Context, s *models.Session) {
	if s.Suggestion == nil {
		uc.browseMenu(ctx, s)
		return
	}
	p := *s.Suggestion
	s.Suggestion = nil

	s.AddToCart(p)
	uc.say(s, catalog.ProductAdded(p.Name, p.Price))
	uc.refreshTotals(s)
	uc.askAddMore(s)
}

func (uc *dialogUsecase) askAddMore(s *models.Session) {
	s.State = models.StateCrossSell
	uc.apply(s, catalog.AskingAddMore)
}

// repeatLastOrder replaces the cart with the customer's previous order.
func (uc *dialogUsecase) repeatLastOrder(ctx context.Context, s *models.Session) {
	if s.Customer == nil {
		uc.browseMenu(ctx, s)
		return
	}

	uc.say(s, catalog.LoadingLastProducts.Text)
	products, err := uc.gateway.LastOrder(ctx, s.Customer.ID, s.TenantID)
	if err != nil {
		uc.reportError(ctx, s, err)
		return
	}
	if len(products) == 0 {
		uc.browseMenu(ctx, s)
		return
	}

	cart := make([]models.CartItem, 0, len(products))
	for _, p := range products {
		quantity := p.Quantity
		if quantity < 1 {
			quantity = 1
		}
		cart = append(cart, models.CartItem{
			ProductID:   p.ProductID,
			ProductName: p.Name,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
			Quantity:    quantity,
			Comments:    p.Comments,
		})
	}
	s.Cart = cart
	uc.refreshTotals(s)
	uc.apply(s, catalog.RepeatOrderAdded)
}
