// Package coupon asks the pricing service whether a discount code applies to
// the current cart total. Results are transient: a code is re-validated from
// scratch against the live total on every call, so a stale discount is never
// carried forward after the cart changes.
package coupon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrEmptyCode is returned when the code is blank after trimming; no network
// call is made.
var ErrEmptyCode = errors.New("coupon code is empty")

// Application is the outcome of validating one code against one cart total.
type Application struct {
	Code           string
	Valid          bool
	DiscountAmount int64
	FinalAmount    int64
	Message        string
}

type validateRequest struct {
	Code   string `json:"code"`
	Amount int64  `json:"amount"`
}

type validateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Valid          bool   `json:"valid"`
		DiscountAmount int64  `json:"discount_amount"`
		FinalAmount    int64  `json:"final_amount"`
		Message        string `json:"message"`
	} `json:"data"`
}

// Validator validates coupon codes against the shop pricing API.
type Validator struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewValidator(baseURL string, timeout time.Duration, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Validate asks the server whether code applies to cartTotal. cartTotal must
// be the cart store's current total at call time; the validator never
// recomputes it. A server rejection comes back as Valid=false with a
// human-readable message; transport and decode failures come back as errors,
// after which the caller should treat the coupon as not applied and retry.
func (v *Validator) Validate(ctx context.Context, code string, cartTotal int64) (*Application, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmptyCode
	}

	body, err := json.Marshal(validateRequest{Code: code, Amount: cartTotal})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		v.baseURL+"/coupons/validate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coupon validation request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("coupon validation response malformed: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("coupon validation failed: server returned %d", resp.StatusCode)
	}

	if !payload.Success || !payload.Data.Valid {
		message := payload.Data.Message
		if message == "" {
			message = payload.Message
		}
		if message == "" {
			message = "coupon code is not valid"
		}
		v.logger.Info("coupon rejected", zap.String("code", code), zap.String("reason", message))
		return &Application{Code: code, Valid: false, Message: message}, nil
	}

	app := &Application{
		Code:           code,
		Valid:          true,
		DiscountAmount: payload.Data.DiscountAmount,
		FinalAmount:    payload.Data.FinalAmount,
		Message:        payload.Data.Message,
	}

	// The pricing invariant the rest of checkout depends on.
	if app.DiscountAmount < 0 || app.FinalAmount != cartTotal-app.DiscountAmount || app.FinalAmount < 0 {
		return nil, fmt.Errorf("coupon response inconsistent: total=%d discount=%d final=%d",
			cartTotal, app.DiscountAmount, app.FinalAmount)
	}

	v.logger.Info("coupon applied",
		zap.String("code", code),
		zap.Int64("discount", app.DiscountAmount),
		zap.Int64("final", app.FinalAmount),
	)
	return app, nil
}
