package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/shoparak/shop-backend/services/shop/controllers"
	"github.com/shoparak/shop-backend/services/shop/models"
	"github.com/shoparak/shop-backend/services/shop/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Mock CouponService ---

type mockCouponService struct {
	createFn func(ctx context.Context, req *models.CreateCouponRequest) (*models.Coupon, *services.ServiceError)
	quoteFn  func(ctx context.Context, code string, amount int64) (*models.CouponQuote, *services.ServiceError)
	deactFn  func(ctx context.Context, code string) *services.ServiceError
	listFn   func(ctx context.Context, page, limit int) ([]models.Coupon, int64, *services.ServiceError)
}

func (m *mockCouponService) CreateCoupon(ctx context.Context, req *models.CreateCouponRequest) (*models.Coupon, *services.ServiceError) {
	return m.createFn(ctx, req)
}
func (m *mockCouponService) Quote(ctx context.Context, code string, amount int64) (*models.CouponQuote, *services.ServiceError) {
	return m.quoteFn(ctx, code, amount)
}
func (m *mockCouponService) DeactivateCoupon(ctx context.Context, code string) *services.ServiceError {
	return m.deactFn(ctx, code)
}
func (m *mockCouponService) ListCoupons(ctx context.Context, page, limit int) ([]models.Coupon, int64, *services.ServiceError) {
	return m.listFn(ctx, page, limit)
}

// --- Helpers ---

func setupCouponRouter(svc services.CouponService) *gin.Engine {
	r := gin.New()
	cc := controllers.NewCouponController(svc)

	r.POST("/coupons/validate", cc.ValidateCoupon)
	r.POST("/coupons", cc.CreateCoupon)
	r.GET("/coupons", cc.ListCoupons)
	r.DELETE("/coupons/:code", cc.DeactivateCoupon)
	return r
}

func doJSON(r *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req, _ := http.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// --- Tests ---

func TestCouponController_Validate_AcceptedCode(t *testing.T) {
	svc := &mockCouponService{
		quoteFn: func(_ context.Context, code string, amount int64) (*models.CouponQuote, *services.ServiceError) {
			assert.Equal(t, "SAVE10", code)
			assert.Equal(t, int64(250000), amount)
			return &models.CouponQuote{
				Valid:          true,
				DiscountAmount: 25000,
				FinalAmount:    225000,
				Message:        "Coupon applied successfully",
			}, nil
		},
	}
	r := setupCouponRouter(svc)

	w := doJSON(r, http.MethodPost, "/coupons/validate",
		models.ValidateCouponRequest{Code: "SAVE10", Amount: 250000})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    models.CouponQuote `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, int64(25000), resp.Data.DiscountAmount)
	assert.Equal(t, int64(225000), resp.Data.FinalAmount)
}

func TestCouponController_Validate_RejectedCodeStill200(t *testing.T) {
	svc := &mockCouponService{
		quoteFn: func(_ context.Context, _ string, _ int64) (*models.CouponQuote, *services.ServiceError) {
			return &models.CouponQuote{Valid: false, Message: "Coupon has expired"}, nil
		},
	}
	r := setupCouponRouter(svc)

	w := doJSON(r, http.MethodPost, "/coupons/validate",
		models.ValidateCouponRequest{Code: "GONE", Amount: 100000})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    models.CouponQuote `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, "Coupon has expired", resp.Data.Message)
}

func TestCouponController_Validate_MissingFields(t *testing.T) {
	r := setupCouponRouter(&mockCouponService{})

	w := doJSON(r, http.MethodPost, "/coupons/validate", map[string]any{"code": "SAVE10"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCouponController_Create_Success(t *testing.T) {
	svc := &mockCouponService{
		createFn: func(_ context.Context, req *models.CreateCouponRequest) (*models.Coupon, *services.ServiceError) {
			return &models.Coupon{
				ID:            uuid.New(),
				Code:          req.Code,
				DiscountType:  req.DiscountType,
				DiscountValue: req.DiscountValue,
				IsActive:      true,
			}, nil
		},
	}
	r := setupCouponRouter(svc)

	w := doJSON(r, http.MethodPost, "/coupons", models.CreateCouponRequest{
		Code:          "NEW10",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "NEW10")
}

func TestCouponController_Create_ServiceError(t *testing.T) {
	svc := &mockCouponService{
		createFn: func(_ context.Context, _ *models.CreateCouponRequest) (*models.Coupon, *services.ServiceError) {
			return nil, &services.ServiceError{StatusCode: 409, Message: "Coupon code already exists"}
		},
	}
	r := setupCouponRouter(svc)

	w := doJSON(r, http.MethodPost, "/coupons", models.CreateCouponRequest{
		Code:          "DUP10",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 5000,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
}

func TestCouponController_Deactivate_NotFound(t *testing.T) {
	svc := &mockCouponService{
		deactFn: func(_ context.Context, _ string) *services.ServiceError {
			return &services.ServiceError{StatusCode: 404, Message: "Coupon not found"}
		},
	}
	r := setupCouponRouter(svc)

	w := doJSON(r, http.MethodDelete, "/coupons/MISSING", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
