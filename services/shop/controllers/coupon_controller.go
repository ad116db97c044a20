package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shoparak/shop-backend/services/shop/models"
	"github.com/shoparak/shop-backend/services/shop/services"
)

// CouponController handles HTTP requests for coupon operations.
type CouponController struct {
	couponService services.CouponService
}

func NewCouponController(couponService services.CouponService) *CouponController {
	return &CouponController{couponService: couponService}
}

// ValidateCoupon handles POST /coupons/validate, the storefront pricing call.
// A rejected code is still a 200: the quote carries valid=false plus a
// user-facing message.
func (cc *CouponController) ValidateCoupon(ctx *gin.Context) {
	var req models.ValidateCouponRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request", "details": err.Error()})
		return
	}

	quote, svcErr := cc.couponService.Quote(ctx.Request.Context(), req.Code, req.Amount)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"success": false, "message": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": quote})
}

// CreateCoupon handles POST /coupons (admin).
func (cc *CouponController) CreateCoupon(ctx *gin.Context) {
	var req models.CreateCouponRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request", "details": err.Error()})
		return
	}

	coupon, svcErr := cc.couponService.CreateCoupon(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"success": false, "message": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": true, "coupon": coupon})
}

// ListCoupons handles GET /coupons (admin), paginated.
func (cc *CouponController) ListCoupons(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	coupons, total, svcErr := cc.couponService.ListCoupons(ctx.Request.Context(), page, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"success": false, "message": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"coupons": coupons,
		"total":   total,
		"page":    page,
	})
}

// DeactivateCoupon handles DELETE /coupons/:code (admin).
func (cc *CouponController) DeactivateCoupon(ctx *gin.Context) {
	code := ctx.Param("code")
	if code == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Coupon code is required"})
		return
	}

	if svcErr := cc.couponService.DeactivateCoupon(ctx.Request.Context(), code); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"success": false, "message": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Coupon deactivated"})
}
