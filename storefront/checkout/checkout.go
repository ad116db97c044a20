// Package checkout converts a cart plus customer details into one order
// submission and resolves the cart's lifecycle from the outcome: the cart is
// cleared only after the server confirms the order, and left untouched on
// every failure path so the user can retry.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/shoparak/shop-backend/storefront/cart"
)

var (
	// ErrEmptyCart rejects a submission locally, before any network call.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrSubmitInFlight rejects a second submission while one is outstanding.
	ErrSubmitInFlight = errors.New("an order submission is already in progress")

	// ErrNetwork marks transport failures; the order may or may not have been
	// received, and the cart is preserved for a retry.
	ErrNetwork = errors.New("order submission failed to reach the server")
)

// ValidationError is a rejection by the server (4xx); the message is meant
// for display.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ServerError is a server-side failure (5xx).
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string { return e.Message }

// CustomerDetails are the user-entered fields attached to the order. Name,
// Email, and Address are required by the server; Phone and Notes are
// optional. An empty PaymentMethod defaults to "cash".
type CustomerDetails struct {
	Name          string
	Email         string
	Phone         string
	Address       string
	PaymentMethod string
	Notes         string
}

// Confirmation is the successful outcome of a submission.
type Confirmation struct {
	OrderNumber    string
	TotalAmount    int64
	DiscountAmount int64
	FinalAmount    int64
}

type orderItem struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}

type orderRequest struct {
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone,omitempty"`
	CustomerAddress string      `json:"customer_address"`
	PaymentMethod   string      `json:"payment_method"`
	Notes           string      `json:"notes,omitempty"`
	Items           []orderItem `json:"items"`
	CouponCode      string      `json:"coupon_code,omitempty"`
}

type orderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   struct {
		OrderNumber    string `json:"order_number"`
		TotalAmount    int64  `json:"total_amount"`
		DiscountAmount int64  `json:"discount_amount"`
		FinalAmount    int64  `json:"final_amount"`
	} `json:"order"`
}

// Orchestrator submits orders to the shop API. It borrows read-only snapshots
// from the cart store and never mutates it directly, except for instructing a
// clear after a confirmed success.
type Orchestrator struct {
	cart     *cart.Store
	baseURL  string
	client   *http.Client
	logger   *zap.Logger
	inFlight atomic.Bool
}

func NewOrchestrator(cartStore *cart.Store, baseURL string, timeout time.Duration, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cart:    cartStore,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Submit sends the current cart as one order. The cart is snapshotted once up
// front, so edits made while the request is in flight do not leak into the
// submitted order. couponCode is attached as-is when non-blank; validating it
// at submission time is the server's job.
func (o *Orchestrator) Submit(ctx context.Context, details CustomerDetails, couponCode string) (*Confirmation, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer o.inFlight.Store(false)

	lines := o.cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]orderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, orderItem{
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			Price:       l.UnitPrice,
		})
	}

	paymentMethod := details.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cash"
	}

	reqBody := orderRequest{
		CustomerName:    details.Name,
		CustomerEmail:   details.Email,
		CustomerPhone:   details.Phone,
		CustomerAddress: details.Address,
		PaymentMethod:   paymentMethod,
		Notes:           details.Notes,
		Items:           items,
		CouponCode:      strings.TrimSpace(couponCode),
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		o.logger.Warn("order submission transport failure", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	var payload orderResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode >= 500 {
		message := payload.Message
		if message == "" {
			message = "the shop is temporarily unavailable, please try again"
		}
		return nil, &ServerError{Message: message}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrNetwork, decodeErr)
	}

	if !payload.Success {
		message := payload.Message
		if message == "" {
			message = "order was rejected, please check your details and try again"
		}
		return nil, &ValidationError{Message: message}
	}

	// Confirmed: the one path that empties the cart.
	if err := o.cart.Clear(ctx); err != nil {
		o.logger.Warn("order confirmed but cart clear failed", zap.Error(err),
			zap.String("order_number", payload.Order.OrderNumber))
	}

	o.logger.Info("order confirmed",
		zap.String("order_number", payload.Order.OrderNumber),
		zap.Int64("final_amount", payload.Order.FinalAmount),
	)

	return &Confirmation{
		OrderNumber:    payload.Order.OrderNumber,
		TotalAmount:    payload.Order.TotalAmount,
		DiscountAmount: payload.Order.DiscountAmount,
		FinalAmount:    payload.Order.FinalAmount,
	}, nil
}
