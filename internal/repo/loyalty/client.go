// Package loyalty is the HTTP gateway to the loyalty backend. Every
// remote action of the ordering flow goes through it: customer lookup
// and registration, menu and suggestions, coupon validation and
// redemption, order creation, abandonment tracking.
package loyalty

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/KikeGitHub/lealtix-main/internal/config"
	"github.com/KikeGitHub/lealtix-main/internal/models"
)

type Client interface {
	ValidateCustomer(ctx context.Context, tenantID int64, phone, email string) (*CustomerLookup, error)
	RegisterCustomer(ctx context.Context, req RegisterRequest) (*models.Customer, error)
	LastOrder(ctx context.Context, customerID, tenantID int64) ([]models.OrderProduct, error)
	CrossSell(ctx context.Context, productID, tenantID int64) ([]models.Product, error)
	Menu(ctx context.Context, tenantID int64) ([]models.Category, error)
	ValidateCoupon(ctx context.Context, tenantID int64, code string) (*models.CouponValidation, error)
	RedeemCoupon(ctx context.Context, req RedeemRequest) (*RedeemResult, error)
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.OrderResponse, error)
	AbandonSession(ctx context.Context, sessionID string) error
}

type client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(cfg *config.Config) Client {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.Loyalty.Timeout,
		},
		baseURL: cfg.Loyalty.BaseURL,
	}
}

func (c *client) ValidateCustomer(ctx context.Context, tenantID int64, phone, email string) (*CustomerLookup, error) {
	req := validateCustomerRequest{TenantID: tenantID, Phone: phone, Email: email}
	env, err := postJSON[envelope[CustomerLookup]](ctx, c, "/api/chatbot/validate-customer", req)
	if err != nil {
		return nil, err
	}
	return &env.Object, nil
}

func (c *client) RegisterCustomer(ctx context.Context, req RegisterRequest) (*models.Customer, error) {
	env, err := postJSON[envelope[models.Customer]](ctx, c, "/api/chatbot/register-customer", req)
	if err != nil {
		return nil, err
	}
	return &env.Object, nil
}

func (c *client) LastOrder(ctx context.Context, customerID, tenantID int64) ([]models.OrderProduct, error) {
	path := fmt.Sprintf("/api/chatbot/customer/%d/last-order?tenantId=%d", customerID, tenantID)
	env, err := getJSON[envelope[[]models.OrderProduct]](ctx, c, path)
	if err != nil {
		return nil, err
	}
	return env.Object, nil
}

func (c *client) CrossSell(ctx context.Context, productID, tenantID int64) ([]models.Product, error) {
	path := fmt.Sprintf("/api/chatbot/product/%d/cross-sell?tenantId=%d", productID, tenantID)
	env, err := getJSON[envelope[[]models.Product]](ctx, c, path)
	if err != nil {
		return nil, err
	}
	return env.Object, nil
}

// Menu fetches the flat tenant product listing and groups it into
// categories, dropping inactive products and products of inactive
// categories.
func (c *client) Menu(ctx context.Context, tenantID int64) ([]models.Category, error) {
	path := fmt.Sprintf("/api/tenant-menu-products/tenant/%d", tenantID)
	env, err := getJSON[envelope[[]menuProduct]](ctx, c, path)
	if err != nil {
		return nil, err
	}

	byCategory := map[string][]models.Product{}
	for _, p := range env.Object {
		if (p.IsActive != nil && !*p.IsActive) || (p.CategoryIsActive != nil && !*p.CategoryIsActive) {
			continue
		}
		name := p.CategoryName
		if name == "" {
			name = "Other"
		}
		byCategory[name] = append(byCategory[name], models.Product{
			ProductID:    p.ID,
			Name:         p.Name,
			Description:  p.Description,
			Price:        p.Price,
			ImageURL:     p.ImageURL,
			CategoryName: name,
		})
	}

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	categories := make([]models.Category, 0, len(names))
	for _, name := range names {
		categories = append(categories, models.Category{Name: name, Products: byCategory[name]})
	}
	return categories, nil
}

func (c *client) ValidateCoupon(ctx context.Context, tenantID int64, code string) (*models.CouponValidation, error) {
	req := validateCouponRequest{CouponCode: code, TenantID: tenantID}
	env, err := postJSON[envelope[couponValidationObject]](ctx, c, "/api/chatbot/validate-coupon", req)
	if err != nil {
		return nil, err
	}

	obj := env.Object
	description := obj.RewardDescription
	if description == "" {
		description = obj.Benefit
	}
	return &models.CouponValidation{
		Valid:         obj.Valid,
		CouponCode:    obj.CouponCode,
		Status:        obj.Status,
		CampaignTitle: obj.CampaignTitle,
		RewardType:    obj.RewardType,
		RewardValue:   obj.NumericValue,
		Description:   description,
		ExpiresAt:     obj.ExpiresAt,
		Expired:       obj.Expired,
		Message:       obj.Message,
	}, nil
}

// RedeemCoupon consumes the coupon. A 400 or 422 answer is a business
// rejection, returned as a RedeemResult without Redemption rather than
// as an error.
func (c *client) RedeemCoupon(ctx context.Context, req RedeemRequest) (*RedeemResult, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/chatbot/redeem-coupon", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
		var env envelope[json.RawMessage]
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || env.Message == "" {
			env.Message = "The coupon could not be applied."
		}
		return &RedeemResult{Code: resp.StatusCode, Message: env.Message}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}

	var env envelope[models.CouponRedemption]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	env.Object.Success = true
	return &RedeemResult{Code: env.Code, Message: env.Message, Redemption: &env.Object}, nil
}

func (c *client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.OrderResponse, error) {
	env, err := postJSON[envelope[models.OrderResponse]](ctx, c, "/api/chatbot/create-order", req)
	if err != nil {
		return nil, err
	}
	return &env.Object, nil
}

func (c *client) AbandonSession(ctx context.Context, sessionID string) error {
	path := fmt.Sprintf("/api/chatbot/session/%s/abandon", sessionID)
	_, err := postJSON[envelope[json.RawMessage]](ctx, c, path, struct{}{})
	return err
}

func (c *client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var buf *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		buf = bytes.NewBuffer(jsonData)
	} else {
		buf = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	return resp, nil
}

func postJSON[T any](ctx context.Context, c *client, path string, body any) (*T, error) {
	return roundTrip[T](ctx, c, http.MethodPost, path, body)
}

func getJSON[T any](ctx context.Context, c *client, path string) (*T, error) {
	return roundTrip[T](ctx, c, http.MethodGet, path, nil)
}

func roundTrip[T any](ctx context.Context, c *client, method, path string, body any) (*T, error) {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}
