package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type ProductHandler struct {
	app core.App
}

func NewProductHandler(app core.App) *ProductHandler {
	return &ProductHandler{app: app}
}

// ListProducts - Public shop listing
func (h *ProductHandler) ListProducts(e *core.RequestEvent) error {
	products, err := h.app.FindRecordsByFilter(
		"products",
		"id != ''",
		"-created",
		200,
		0,
	)
	if err != nil {
		return apis.NewBadRequestError("Failed to list products", err)
	}
	return e.JSON(http.StatusOK, products)
}

// GetProduct - Public product detail
func (h *ProductHandler) GetProduct(e *core.RequestEvent) error {
	productID := e.Request.PathValue("productId")

	product, err := h.app.FindRecordById("products", productID)
	if err != nil {
		return apis.NewNotFoundError("Product not found", err)
	}
	return e.JSON(http.StatusOK, product)
}

type productRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	ImageURL      string  `json:"image_url"`
	Category      string  `json:"category"`
}

// CreateProduct - Admin: add a product
func (h *ProductHandler) CreateProduct(e *core.RequestEvent) error {
	var req productRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Name == "" {
		return apis.NewBadRequestError("Name is required", nil)
	}
	if req.Price < 0 || req.StockQuantity < 0 {
		return apis.NewBadRequestError("Price and stock cannot be negative", nil)
	}

	collection, err := h.app.FindCollectionByNameOrId("products")
	if err != nil {
		return apis.NewBadRequestError("Failed to create product", err)
	}

	product := core.NewRecord(collection)
	product.Set("name", req.Name)
	product.Set("description", req.Description)
	product.Set("price", req.Price)
	product.Set("stock_quantity", req.StockQuantity)
	product.Set("in_stock", req.StockQuantity > 0)
	product.Set("image_url", req.ImageURL)
	product.Set("category", req.Category)

	if err := h.app.SaveWithContext(e.Request.Context(), product); err != nil {
		return apis.NewBadRequestError("Failed to create product", err)
	}

	return e.JSON(http.StatusCreated, product)
}

// UpdateProduct - Admin: partial update, in_stock kept consistent
func (h *ProductHandler) UpdateProduct(e *core.RequestEvent) error {
	productID := e.Request.PathValue("productId")

	product, err := h.app.FindRecordById("products", productID)
	if err != nil {
		return apis.NewNotFoundError("Product not found", err)
	}

	var fields map[string]any
	if err := e.BindBody(&fields); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	allowed := []string{"name", "description", "price", "stock_quantity", "image_url", "category"}
	for _, name := range allowed {
		if value, ok := fields[name]; ok {
			product.Set(name, value)
		}
	}
	product.Set("in_stock", product.GetInt("stock_quantity") > 0)

	if err := h.app.SaveWithContext(e.Request.Context(), product); err != nil {
		return apis.NewBadRequestError("Failed to update product", err)
	}

	return e.JSON(http.StatusOK, product)
}

// DeleteProduct - Admin: remove a product
func (h *ProductHandler) DeleteProduct(e *core.RequestEvent) error {
	productID := e.Request.PathValue("productId")

	product, err := h.app.FindRecordById("products", productID)
	if err != nil {
		return apis.NewNotFoundError("Product not found", err)
	}

	if err := h.app.DeleteWithContext(e.Request.Context(), product); err != nil {
		return apis.NewBadRequestError("Failed to delete product", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"message": "Product deleted"})
}
