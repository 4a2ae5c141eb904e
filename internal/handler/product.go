package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-api/internal/model"
	"github.com/iliyamo/shop-api/internal/repository"
)

// ProductStore is the persistence surface the catalog handlers need for
// products.  *repository.ProductRepo satisfies it; tests substitute an
// in-memory fake.
type ProductStore interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id string) (*model.Product, error)
	GetBySKU(ctx context.Context, sku string) (*model.Product, error)
	List(ctx context.Context, f repository.ProductFilter) ([]*model.Product, int, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
}

// ProductHandler bundles dependencies for catalog product endpoints.
// Reads are public; writes require the ADMIN role (enforced in the router).
type ProductHandler struct {
	Products   ProductStore
	Categories CategoryStore
}

func NewProductHandler(products ProductStore, categories CategoryStore) *ProductHandler {
	return &ProductHandler{Products: products, Categories: categories}
}

type productReq struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	SKU         string   `json:"sku"`
	ImageURL    *string  `json:"imageUrl"`
	IsActive    *bool    `json:"isActive"`
	CategoryID  string   `json:"categoryId"`
}

type productView struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	Price       float64       `json:"price"`
	Stock       int           `json:"stock"`
	SKU         string        `json:"sku"`
	ImageURL    *string       `json:"imageUrl"`
	IsActive    bool          `json:"isActive"`
	Category    *categoryView `json:"category,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func toProductView(p *model.Product) productView {
	v := productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		SKU:         p.SKU,
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Category != nil {
		cv := toCategoryView(p.Category)
		v.Category = &cv
	}
	return v
}

// Create handles POST /api/v1/products (ADMIN).  The category must exist;
// an omitted SKU gets a generated fallback.
func (h *ProductHandler) Create(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || req.CategoryID == "" || req.Price == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, price and categoryId are required"})
	}
	if *req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Categories.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		log.Printf("category lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create product failed"})
	}

	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		sku = fmt.Sprintf("SKU-%d", time.Now().UnixMilli())
	}
	// Pre-check the SKU so the common conflict is reported without paying for
	// the insert; the unique index still closes the check-then-insert race.
	if _, err := h.Products.GetBySKU(ctx, sku); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "product sku already exists"})
	} else if !errors.Is(err, repository.ErrProductNotFound) {
		log.Printf("sku lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create product failed"})
	}
	stock := 0
	if req.Stock != nil {
		stock = *req.Stock
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	p := &model.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: req.Description,
		Price:       *req.Price,
		Stock:       stock,
		SKU:         sku,
		ImageURL:    req.ImageURL,
		IsActive:    active,
		CategoryID:  req.CategoryID,
	}
	if err := h.Products.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrSKUExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "product sku already exists"})
		}
		log.Printf("create product failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create product failed"})
	}

	created, err := h.Products.GetByID(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusCreated, toProductView(p))
	}
	return c.JSON(http.StatusCreated, toProductView(created))
}

// List handles GET /api/v1/products with page/limit/search/isActive/categoryId.
func (h *ProductHandler) List(c echo.Context) error {
	page, limit := pageParams(c)
	filter := repository.ProductFilter{
		Page:       page,
		Limit:      limit,
		Search:     strings.TrimSpace(c.QueryParam("search")),
		IsActive:   boolParam(c, "isActive"),
		CategoryID: strings.TrimSpace(c.QueryParam("categoryId")),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Products.List(ctx, filter)
	if err != nil {
		log.Printf("list products failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list products failed"})
	}
	views := make([]productView, 0, len(items))
	for _, it := range items {
		views = append(views, toProductView(it))
	}
	return c.JSON(http.StatusOK, echo.Map{"data": views, "meta": newPageMeta(total, page, limit)})
}

// Get handles GET /api/v1/products/:id.
func (h *ProductHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		log.Printf("get product failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get product failed"})
	}
	return c.JSON(http.StatusOK, toProductView(p))
}

// Update handles PATCH /api/v1/products/:id (ADMIN).
func (h *ProductHandler) Update(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		log.Printf("get product failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update product failed"})
	}

	if req.CategoryID != "" && req.CategoryID != p.CategoryID {
		if _, err := h.Categories.GetByID(ctx, req.CategoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
			}
			log.Printf("category lookup failed: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update product failed"})
		}
		p.CategoryID = req.CategoryID
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		p.Name = name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
		}
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if sku := strings.TrimSpace(req.SKU); sku != "" && sku != p.SKU {
		if _, err := h.Products.GetBySKU(ctx, sku); err == nil {
			return c.JSON(http.StatusConflict, echo.Map{"error": "product sku already exists"})
		} else if !errors.Is(err, repository.ErrProductNotFound) {
			log.Printf("sku lookup failed: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update product failed"})
		}
		p.SKU = sku
	}
	if req.ImageURL != nil {
		p.ImageURL = req.ImageURL
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := h.Products.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrSKUExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "product sku already exists"})
		}
		log.Printf("update product failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update product failed"})
	}

	updated, err := h.Products.GetByID(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusOK, toProductView(p))
	}
	return c.JSON(http.StatusOK, toProductView(updated))
}

// Delete handles DELETE /api/v1/products/:id (ADMIN).
func (h *ProductHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Products.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		log.Printf("delete product failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete product failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}
