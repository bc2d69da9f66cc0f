package rest

import (
	"net/http"

	"suitup-be/internal/brand"
	"suitup-be/internal/product"

	"github.com/go-chi/chi/v5"
)

type brandProductsResponse struct {
	Brand    *brand.Brand       `json:"brand"`
	Products []*product.Product `json:"products"`
}

type productResponse struct {
	Message string           `json:"message"`
	Product *product.Product `json:"product"`
}

// GET /brands
func (h *Handler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.brands.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if brands == nil {
		brands = []*brand.Brand{}
	}
	respondJSON(w, http.StatusOK, brands)
}

// POST /brands
func (h *Handler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var input brand.CreateInput
	if err := decodeValid(w, r, &input); err != nil {
		respondError(w, r, err)
		return
	}

	b, err := h.brands.Create(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

// DELETE /brands/{brandId}
func (h *Handler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := h.brands.Delete(r.Context(), chi.URLParam(r, "brandId")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Brand deleted"})
}

// GET /brands/{brandId}/products
func (h *Handler) BrandProducts(w http.ResponseWriter, r *http.Request) {
	b, products, err := h.products.ListByBrand(r.Context(), chi.URLParam(r, "brandId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if products == nil {
		products = []*product.Product{}
	}
	respondJSON(w, http.StatusOK, brandProductsResponse{Brand: b, Products: products})
}

// GET /products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if products == nil {
		products = []*product.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

// GET /products/{productId}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// POST /products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input product.CreateInput
	if err := decodeValid(w, r, &input); err != nil {
		respondError(w, r, err)
		return
	}

	p, err := h.products.Create(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// DELETE /products/{productId}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "productId")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Product deleted"})
}

// PATCH /products/{productId}
func (h *Handler) SetStock(w http.ResponseWriter, r *http.Request) {
	var input product.StockInput
	if err := decodeValid(w, r, &input); err != nil {
		respondError(w, r, err)
		return
	}

	p, err := h.products.SetStock(r.Context(), chi.URLParam(r, "productId"), *input.Stock)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, productResponse{Message: "Stock updated", Product: p})
}

// POST /products/{productId}/buy
func (h *Handler) BuyProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Buy(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, productResponse{Message: "Stock decremented", Product: p})
}
