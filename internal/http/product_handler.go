package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/saree_store/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const catalogCacheControl = "public, max-age=60"

type CatalogService interface {
	ListProducts(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, id string, p *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	RateProduct(ctx context.Context, id string, rating int) (*domain.Product, error)
}

type ProductHandler struct {
	catalog CatalogService
	timeout time.Duration
	log     *zap.Logger
}

func NewProductHandler(catalog CatalogService, timeout time.Duration, log *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		timeout: timeout,
		log:     log,
	}
}

type ProductsResponse struct {
	Products []*domain.Product `json:"products"`
}

type VariantDTO struct {
	Color  string   `json:"color" validate:"required"`
	Images []string `json:"images"`
}

type ProductRequestDTO struct {
	Name         string       `json:"name" validate:"required"`
	Description  string       `json:"description"`
	Category     string       `json:"category" validate:"required"`
	Fabric       string       `json:"fabric"`
	Price        float64      `json:"price" validate:"gte=0"`
	Stock        int          `json:"stock" validate:"gte=0"`
	OfferPercent int          `json:"offerPercent" validate:"gte=0,lte=90"`
	OfferLabel   string       `json:"offerLabel"`
	Images       []string     `json:"images"`
	Variants     []VariantDTO `json:"variants" validate:"dive"`
}

func (d ProductRequestDTO) toDomain() *domain.Product {
	p := &domain.Product{
		Name:         strings.TrimSpace(d.Name),
		Description:  d.Description,
		Category:     strings.TrimSpace(d.Category),
		Fabric:       d.Fabric,
		Price:        d.Price,
		Stock:        d.Stock,
		OfferPercent: d.OfferPercent,
		OfferLabel:   d.OfferLabel,
		Images:       d.Images,
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	for _, v := range d.Variants {
		p.Variants = append(p.Variants, domain.Variant{Color: v.Color, Images: v.Images})
	}
	return p
}

type RatingRequestDTO struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, msg := parseProductFilter(r)
	if msg != "" {
		respondError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	products, err := h.catalog.ListProducts(ctx, filter)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	w.Header().Set("Cache-Control", catalogCacheControl)
	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	w.Header().Set("Cache-Control", catalogCacheControl)
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Rate(w http.ResponseWriter, r *http.Request) {
	var req RatingRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	product, err := h.catalog.RateProduct(ctx, chi.URLParam(r, "id"), req.Rating)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	product := req.toDomain()
	if err := h.catalog.CreateProduct(ctx, product); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ProductRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	product, err := h.catalog.UpdateProduct(ctx, chi.URLParam(r, "id"), req.toDomain())
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.catalog.DeleteProduct(ctx, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseProductFilter(r *http.Request) (domain.ProductFilter, string) {
	q := r.URL.Query()
	f := domain.ProductFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("q")),
		Sort:     domain.ProductSort(q.Get("sort")),
	}

	switch f.Sort {
	case "", domain.SortNewest, domain.SortPriceAsc, domain.SortPriceDesc, domain.SortRating:
	default:
		return f, "sort must be one of newest, price_asc, price_desc, rating"
	}

	for _, p := range []struct {
		name string
		dst  **float64
	}{{"minPrice", &f.MinPrice}, {"maxPrice", &f.MaxPrice}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return f, p.name + " must be a non-negative number"
		}
		*p.dst = &v
	}

	for _, p := range []struct {
		name string
		dst  *int64
	}{{"limit", &f.Limit}, {"offset", &f.Offset}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return f, p.name + " must be a non-negative integer"
		}
		*p.dst = v
	}
	return f, ""
}
