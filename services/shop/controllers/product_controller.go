package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shoparak/shop-backend/services/shop/models"
	"github.com/shoparak/shop-backend/services/shop/services"
)

// ProductController handles HTTP requests for catalog operations.
type ProductController struct {
	productService services.ProductService
}

func NewProductController(productService services.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// ListProducts handles GET /products. The storefront sees available products
// only; admins pass ?all=true to include hidden ones.
func (pc *ProductController) ListProducts(ctx *gin.Context) {
	category := ctx.Query("category")
	availableOnly := ctx.Query("all") != "true"

	products, svcErr := pc.productService.ListProducts(ctx.Request.Context(), category, availableOnly)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"success": false, "message": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

// GetProduct handles GET /products/:id.
func (pc *ProductController) GetProduct(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product id"})
		return
	}

	product, svcErr := pc.productService.GetProduct(ctx.Request.Context(), id)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"success": false, "message": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// ListCategories handles GET /categories.
func (pc *ProductController) ListCategories(ctx *gin.Context) {
	categories, svcErr := pc.productService.ListCategories(ctx.Request.Context())
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"success": false, "message": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "categories": categories})
}

// CreateProduct handles POST /products (admin).
func (pc *ProductController) CreateProduct(ctx *gin.Context) {
	var req models.CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request", "details": err.Error()})
		return
	}

	product, svcErr := pc.productService.CreateProduct(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"success": false, "message": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": true, "product": product})
}

// UpdateProduct handles PATCH /products/:id (admin).
func (pc *ProductController) UpdateProduct(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product id"})
		return
	}

	var req models.UpdateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request", "details": err.Error()})
		return
	}

	product, svcErr := pc.productService.UpdateProduct(ctx.Request.Context(), id, &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"success": false, "message": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// DeleteProduct handles DELETE /products/:id (admin). The product is marked
// unavailable rather than removed.
func (pc *ProductController) DeleteProduct(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product id"})
		return
	}

	if svcErr := pc.productService.DeleteProduct(ctx.Request.Context(), id); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"success": false, "message": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Product removed from catalog"})
}
