package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-api/internal/model"
	"github.com/iliyamo/shop-api/internal/repository"
)

// CategoryStore is the persistence surface the catalog handlers need for
// categories.  *repository.CategoryRepo satisfies it; tests substitute an
// in-memory fake.
type CategoryStore interface {
	Create(ctx context.Context, c *model.Category) error
	GetByID(ctx context.Context, id string) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	List(ctx context.Context, f repository.CategoryFilter) ([]*model.Category, int, error)
	Update(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, id string) error
}

// CategoryHandler bundles dependencies for catalog category endpoints.
// Reads are public; writes require the ADMIN role (enforced in the router).
type CategoryHandler struct {
	Categories CategoryStore
}

func NewCategoryHandler(store CategoryStore) *CategoryHandler {
	return &CategoryHandler{Categories: store}
}

type categoryReq struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	IsActive    *bool   `json:"isActive"`
}

type categoryView struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  *string   `json:"description"`
	ImageURL     *string   `json:"imageUrl"`
	IsActive     bool      `json:"isActive"`
	ProductCount int       `json:"productCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toCategoryView(c *model.Category) categoryView {
	return categoryView{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Description:  c.Description,
		ImageURL:     c.ImageURL,
		IsActive:     c.IsActive,
		ProductCount: c.ProductCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// slugify lowercases, trims and dashes a name into a URL-safe slug; used
// when the client does not supply one.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Create handles POST /api/v1/categories (ADMIN).
func (h *CategoryHandler) Create(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = slugify(name)
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	cat := &model.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    active,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Categories.Create(ctx, cat); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "category slug already exists"})
		}
		log.Printf("create category failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create category failed"})
	}
	return c.JSON(http.StatusCreated, toCategoryView(cat))
}

// List handles GET /api/v1/categories with page/limit/search/isActive.
func (h *CategoryHandler) List(c echo.Context) error {
	page, limit := pageParams(c)
	filter := repository.CategoryFilter{
		Page:     page,
		Limit:    limit,
		Search:   strings.TrimSpace(c.QueryParam("search")),
		IsActive: boolParam(c, "isActive"),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Categories.List(ctx, filter)
	if err != nil {
		log.Printf("list categories failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list categories failed"})
	}
	views := make([]categoryView, 0, len(items))
	for _, it := range items {
		views = append(views, toCategoryView(it))
	}
	return c.JSON(http.StatusOK, echo.Map{"data": views, "meta": newPageMeta(total, page, limit)})
}

// Get handles GET /api/v1/categories/:id.
func (h *CategoryHandler) Get(c echo.Context) error {
	return h.getOne(c, func(ctx context.Context) (*model.Category, error) {
		return h.Categories.GetByID(ctx, c.Param("id"))
	})
}

// GetBySlug handles GET /api/v1/categories/slug/:slug.
func (h *CategoryHandler) GetBySlug(c echo.Context) error {
	return h.getOne(c, func(ctx context.Context) (*model.Category, error) {
		return h.Categories.GetBySlug(ctx, c.Param("slug"))
	})
}

func (h *CategoryHandler) getOne(c echo.Context, fetch func(context.Context) (*model.Category, error)) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cat, err := fetch(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		log.Printf("get category failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get category failed"})
	}
	return c.JSON(http.StatusOK, toCategoryView(cat))
}

// Update handles PATCH /api/v1/categories/:id (ADMIN).
func (h *CategoryHandler) Update(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cat, err := h.Categories.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		log.Printf("get category failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update category failed"})
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		cat.Name = name
	}
	if slug := strings.TrimSpace(req.Slug); slug != "" {
		cat.Slug = slug
	}
	if req.Description != nil {
		cat.Description = req.Description
	}
	if req.ImageURL != nil {
		cat.ImageURL = req.ImageURL
	}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}

	if err := h.Categories.Update(ctx, cat); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "category slug already exists"})
		}
		log.Printf("update category failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update category failed"})
	}

	updated, err := h.Categories.GetByID(ctx, cat.ID)
	if err != nil {
		return c.JSON(http.StatusOK, toCategoryView(cat))
	}
	return c.JSON(http.StatusOK, toCategoryView(updated))
}

// Delete handles DELETE /api/v1/categories/:id (ADMIN).
func (h *CategoryHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Categories.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		log.Printf("delete category failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete category failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted successfully"})
}
