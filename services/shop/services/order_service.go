package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shoparak/shop-backend/pkg/awsx"
	"github.com/shoparak/shop-backend/services/shop/kafka"
	"github.com/shoparak/shop-backend/services/shop/models"
	"github.com/shoparak/shop-backend/services/shop/repository"
)

// OrderService defines the interface for order business logic.
type OrderService interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.OrderReceipt, *ServiceError)
	ListOrders(ctx context.Context, status string, limit int) ([]models.Order, *ServiceError)
	TrackOrder(ctx context.Context, orderNumber string) (*models.Order, *ServiceError)
	UpdateOrderStatus(ctx context.Context, orderNumber, status string) *ServiceError
}

type orderServiceImpl struct {
	repo        repository.OrderRepository
	coupons     CouponService
	producer    kafka.ProducerAPI
	snsClient   awsx.SNSPublisher
	snsTopicArn string
	logger      *zap.Logger
}

func NewOrderService(
	repo repository.OrderRepository,
	coupons CouponService,
	producer kafka.ProducerAPI,
	snsClient awsx.SNSPublisher,
	snsTopicArn string,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		repo:        repo,
		coupons:     coupons,
		producer:    producer,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		logger:      logger,
	}
}

// generateOrderNumber builds the customer-facing order reference:
// ORD-<timestamp>-<4 random digits>.
func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%04d", time.Now().Format("20060102150405"), rand.Intn(10000))
}

// CreateOrder converts a submitted cart snapshot into a persisted order.
// The total is recomputed server-side from the submitted items, and the
// coupon (when present) is re-validated and consumed in the same transaction
// as the order write.
func (s *orderServiceImpl) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.OrderReceipt, *ServiceError) {
	if len(req.Items) == 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "Cart is empty"}
	}

	var totalAmount int64
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 || it.Price < 0 {
			return nil, &ServiceError{StatusCode: 400, Message: "Order contains an invalid item"}
		}
		items = append(items, models.OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
		totalAmount += it.Price * int64(it.Quantity)
	}

	var discountAmount int64
	couponCode := strings.ToUpper(strings.TrimSpace(req.CouponCode))
	if couponCode != "" {
		quote, svcErr := s.coupons.Quote(ctx, couponCode, totalAmount)
		if svcErr != nil {
			return nil, svcErr
		}
		if !quote.Valid {
			return nil, &ServiceError{StatusCode: 400, Message: quote.Message}
		}
		discountAmount = quote.DiscountAmount
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cash"
	}

	order := &models.Order{
		OrderNumber:     generateOrderNumber(),
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		PaymentMethod:   paymentMethod,
		Notes:           req.Notes,
		TotalAmount:     totalAmount,
		DiscountAmount:  discountAmount,
		FinalAmount:     totalAmount - discountAmount,
		CouponCode:      couponCode,
		Status:          models.OrderStatusPending,
		Items:           items,
	}

	if err := s.repo.CreateWithCoupon(ctx, order, couponCode); err != nil {
		if errors.Is(err, repository.ErrCouponExhausted) {
			return nil, &ServiceError{StatusCode: 400, Message: "Coupon usage limit reached"}
		}
		s.logger.Error("Failed to persist order", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to register order, please try again"}
	}

	s.logger.Info("Order created",
		zap.String("order_number", order.OrderNumber),
		zap.Int64("final_amount", order.FinalAmount),
		zap.Int("items", len(order.Items)),
	)

	s.publishOrderCreated(ctx, order, req.Items)
	if couponCode != "" {
		s.publishCouponApplied(ctx, order)
	}

	return &models.OrderReceipt{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		TotalAmount:    order.TotalAmount,
		DiscountAmount: order.DiscountAmount,
		FinalAmount:    order.FinalAmount,
	}, nil
}

// ListOrders returns recent orders, optionally filtered by status (admin).
func (s *orderServiceImpl) ListOrders(ctx context.Context, status string, limit int) ([]models.Order, *ServiceError) {
	if status != "" && !models.ValidOrderStatus(status) {
		return nil, &ServiceError{StatusCode: 400, Message: "Unknown order status"}
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	orders, err := s.repo.FindAll(ctx, status, limit)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch orders"}
	}
	return orders, nil
}

// TrackOrder fetches one order by its customer-facing number.
func (s *orderServiceImpl) TrackOrder(ctx context.Context, orderNumber string) (*models.Order, *ServiceError) {
	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		s.logger.Error("Failed to fetch order", zap.String("order_number", orderNumber), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch order"}
	}
	return order, nil
}

// UpdateOrderStatus moves an order to a new status (admin).
func (s *orderServiceImpl) UpdateOrderStatus(ctx context.Context, orderNumber, status string) *ServiceError {
	if !models.ValidOrderStatus(status) {
		return &ServiceError{StatusCode: 400, Message: "Unknown order status"}
	}

	if err := s.repo.UpdateStatus(ctx, orderNumber, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		s.logger.Error("Failed to update order status",
			zap.String("order_number", orderNumber), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to update order status"}
	}

	s.logger.Info("Order status updated",
		zap.String("order_number", orderNumber),
		zap.String("status", status),
	)
	return nil
}

// publishOrderCreated emits the order.created event. Best-effort: a broker
// failure is logged, the order stays registered.
func (s *orderServiceImpl) publishOrderCreated(ctx context.Context, order *models.Order, items []models.OrderItemRequest) {
	if s.producer == nil {
		return
	}

	event := models.OrderCreatedEvent{
		Event:         "order.created",
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		FinalAmount:   order.FinalAmount,
		Items:         items,
		Timestamp:     time.Now(),
	}

	if err := s.producer.SendOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish order.created event",
			zap.String("order_number", order.OrderNumber), zap.Error(err))
	}
}

// publishCouponApplied publishes a coupon_applied event to SNS, best-effort.
func (s *orderServiceImpl) publishCouponApplied(ctx context.Context, order *models.Order) {
	if s.snsClient == nil || s.snsTopicArn == "" {
		return
	}

	event := models.CouponAppliedEvent{
		EventType:      "coupon_applied",
		CouponCode:     order.CouponCode,
		DiscountAmount: order.DiscountAmount,
		OrderNumber:    order.OrderNumber,
		Timestamp:      time.Now(),
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal coupon_applied event", zap.Error(err))
		return
	}

	if err := s.snsClient.Publish(ctx, s.snsTopicArn, eventBytes); err != nil {
		s.logger.Error("Failed to publish coupon_applied event", zap.Error(err))
		return
	}

	s.logger.Info("Published coupon_applied event",
		zap.String("coupon_code", order.CouponCode),
		zap.Int64("discount", order.DiscountAmount),
	)
}
