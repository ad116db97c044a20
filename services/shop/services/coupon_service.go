package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shoparak/shop-backend/services/shop/models"
	"github.com/shoparak/shop-backend/services/shop/repository"
)

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// CouponService defines the interface for coupon business logic.
type CouponService interface {
	CreateCoupon(ctx context.Context, req *models.CreateCouponRequest) (*models.Coupon, *ServiceError)
	// Quote prices a code against an amount without consuming a use; both the
	// public validate endpoint and order submission go through it.
	Quote(ctx context.Context, code string, amount int64) (*models.CouponQuote, *ServiceError)
	DeactivateCoupon(ctx context.Context, code string) *ServiceError
	ListCoupons(ctx context.Context, page, limit int) ([]models.Coupon, int64, *ServiceError)
}

type couponServiceImpl struct {
	repo   repository.CouponRepository
	logger *zap.Logger
}

func NewCouponService(repo repository.CouponRepository, logger *zap.Logger) CouponService {
	return &couponServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

// CreateCoupon creates a new coupon (admin operation).
func (s *couponServiceImpl) CreateCoupon(ctx context.Context, req *models.CreateCouponRequest) (*models.Coupon, *ServiceError) {
	if req.ValidUntil != nil && req.ValidUntil.Before(time.Now()) {
		return nil, &ServiceError{StatusCode: 400, Message: "Expiry date must be in the future"}
	}
	if req.DiscountType == models.DiscountTypePercentage && req.DiscountValue > 100 {
		return nil, &ServiceError{StatusCode: 400, Message: "Percentage discount cannot exceed 100"}
	}

	coupon := &models.Coupon{
		Code:          strings.ToUpper(strings.TrimSpace(req.Code)),
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MinPurchase:   req.MinPurchase,
		MaxDiscount:   req.MaxDiscount,
		UsageLimit:    req.UsageLimit,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		IsActive:      true,
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return nil, &ServiceError{StatusCode: 409, Message: "Coupon code already exists"}
		}
		s.logger.Error("Failed to create coupon", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create coupon"}
	}

	s.logger.Info("Coupon created",
		zap.String("code", coupon.Code),
		zap.String("type", string(coupon.DiscountType)),
	)
	return coupon, nil
}

// Quote validates a code against a purchase amount and computes the discount.
// Rejections come back as a Quote with Valid=false, never as an error.
func (s *couponServiceImpl) Quote(ctx context.Context, code string, amount int64) (*models.CouponQuote, *ServiceError) {
	coupon, err := s.repo.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return &models.CouponQuote{Valid: false, Message: "Coupon code is not valid"}, nil
	}

	now := time.Now()
	if coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom) {
		return &models.CouponQuote{Valid: false, Message: "Coupon is not active yet"}, nil
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return &models.CouponQuote{Valid: false, Message: "Coupon has expired"}, nil
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return &models.CouponQuote{Valid: false, Message: "Coupon usage limit reached"}, nil
	}
	if amount < coupon.MinPurchase {
		return &models.CouponQuote{
			Valid:   false,
			Message: fmt.Sprintf("Minimum purchase for this coupon is %d tomans", coupon.MinPurchase),
		}, nil
	}

	var discount int64
	switch coupon.DiscountType {
	case models.DiscountTypePercentage:
		discount = amount * coupon.DiscountValue / 100
		if coupon.MaxDiscount > 0 && discount > coupon.MaxDiscount {
			discount = coupon.MaxDiscount
		}
	case models.DiscountTypeFixed:
		discount = coupon.DiscountValue
		if discount > amount {
			discount = amount
		}
	default:
		return nil, &ServiceError{StatusCode: 500, Message: "Unknown coupon type"}
	}

	return &models.CouponQuote{
		Valid:          true,
		DiscountAmount: discount,
		FinalAmount:    amount - discount,
		Message:        "Coupon applied successfully",
	}, nil
}

// DeactivateCoupon deactivates a coupon by code (admin operation).
func (s *couponServiceImpl) DeactivateCoupon(ctx context.Context, code string) *ServiceError {
	if err := s.repo.Deactivate(ctx, code); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ServiceError{StatusCode: 404, Message: "Coupon not found"}
		}
		s.logger.Error("Failed to deactivate coupon", zap.String("code", code), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to deactivate coupon"}
	}

	s.logger.Info("Coupon deactivated", zap.String("code", code))
	return nil
}

// ListCoupons returns paginated coupons (admin operation).
func (s *couponServiceImpl) ListCoupons(ctx context.Context, page, limit int) ([]models.Coupon, int64, *ServiceError) {
	coupons, total, err := s.repo.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to list coupons", zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: 500, Message: "Failed to list coupons"}
	}
	return coupons, total, nil
}
