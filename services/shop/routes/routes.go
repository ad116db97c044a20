package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shoparak/shop-backend/services/shop/controllers"
	"github.com/shoparak/shop-backend/services/shop/services"
)

// Register wires the shop API under /api/shop.
func Register(
	r *gin.Engine,
	productService services.ProductService,
	couponService services.CouponService,
	orderService services.OrderService,
) {
	productController := controllers.NewProductController(productService)
	couponController := controllers.NewCouponController(couponService)
	orderController := controllers.NewOrderController(orderService)

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/shop")
	{
		api.GET("/products", productController.ListProducts)
		api.GET("/products/:id", productController.GetProduct)
		api.GET("/categories", productController.ListCategories)

		api.POST("/coupons/validate", couponController.ValidateCoupon)
		api.POST("/orders", orderController.CreateOrder)
		api.GET("/orders/:orderNumber", orderController.TrackOrder)
	}

	// Admin surface. Deployment puts an authenticating proxy in front of
	// these routes.
	admin := r.Group("/api/shop/admin")
	{
		admin.POST("/products", productController.CreateProduct)
		admin.PATCH("/products/:id", productController.UpdateProduct)
		admin.DELETE("/products/:id", productController.DeleteProduct)

		admin.POST("/coupons", couponController.CreateCoupon)
		admin.GET("/coupons", couponController.ListCoupons)
		admin.DELETE("/coupons/:code", couponController.DeactivateCoupon)

		admin.GET("/orders", orderController.ListOrders)
		admin.PATCH("/orders/:orderNumber/status", orderController.UpdateOrderStatus)
	}
}
