// internal/adapters/in/http/handlers/product_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	usecase "storefront/internal/application/usecase"
	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/domain/apperr"
	productdom "storefront/internal/domain/product"
)

const productTag = "product_handler"

// ProductHandler は /api/products 関連のエンドポイントを担当します。
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Patch("/{id}", h.patch)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/image", h.uploadImage)
}

type productBody struct {
	Category    *string          `json:"category"`
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Slug        *string          `json:"slug"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	IsActive    *bool            `json:"is_active"`
}

func (b productBody) toInput() usecase.ProductInput {
	in := usecase.ProductInput{IsActive: b.IsActive}
	if b.Category != nil {
		in.CategoryID = *b.Category
	}
	if b.Title != nil {
		in.Title = *b.Title
	}
	if b.Description != nil {
		in.Description = *b.Description
	}
	if b.Slug != nil {
		in.Slug = *b.Slug
	}
	if b.Price != nil {
		in.Price = *b.Price
	}
	if b.Stock != nil {
		in.Stock = *b.Stock
	}
	return in
}

func (b productBody) toPatch() productdom.Patch {
	return productdom.Patch{
		CategoryID:  b.Category,
		Title:       b.Title,
		Description: b.Description,
		Slug:        b.Slug,
		Price:       b.Price,
		Stock:       b.Stock,
		IsActive:    b.IsActive,
	}
}

// GET /api/products?category=&min_price=&max_price=&search=&is_active=
func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := productdom.Filter{
		CategoryID: strings.TrimSpace(q.Get("category")),
		Search:     strings.TrimSpace(q.Get("search")),
		IsActive:   parseBoolPtr(q.Get("is_active")),
	}
	var err error
	if f.MinPrice, err = parseDecimalPtr("min_price", q.Get("min_price")); err != nil {
		writeErr(w, r, productTag, err)
		return
	}
	if f.MaxPrice, err = parseDecimalPtr("max_price", q.Get("max_price")); err != nil {
		writeErr(w, r, productTag, err)
		return
	}

	res, err := h.uc.List(r.Context(), middleware.CurrentActor(r), f, pageFrom(r))
	if err != nil {
		writeErr(w, r, productTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageView(res, toProductView))
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.Get(r.Context(), middleware.CurrentActor(r), pathID(r))
	if err != nil {
		writeErr(w, r, productTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductView(p))
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	var body productBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, productTag, err)
		return
	}
	p, err := h.uc.Create(r.Context(), middleware.CurrentActor(r), body.toInput())
	if err != nil {
		writeErr(w, r, productTag, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductView(p))
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	var body productBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, productTag, err)
		return
	}
	p, err := h.uc.Update(r.Context(), middleware.CurrentActor(r), pathID(r), body.toInput())
	if err != nil {
		writeErr(w, r, productTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductView(p))
}

func (h *ProductHandler) patch(w http.ResponseWriter, r *http.Request) {
	var body productBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, productTag, err)
		return
	}
	p, err := h.uc.Patch(r.Context(), middleware.CurrentActor(r), pathID(r), body.toPatch())
	if err != nil {
		writeErr(w, r, productTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductView(p))
}

func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Delete(r.Context(), middleware.CurrentActor(r), pathID(r)); err != nil {
		writeErr(w, r, productTag, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/products/{id}/image  (multipart/form-data, field "image")
func (h *ProductHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, productdom.MaxImageSize+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeErr(w, r, productTag, productdom.ValidateImageSize(productdom.MaxImageSize+1))
			return
		}
		writeErr(w, r, productTag, apperr.Validation("image", "Upload a valid image."))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeErr(w, r, productTag, apperr.Validation("image", "No file was submitted."))
		return
	}
	defer file.Close()

	p, err := h.uc.UploadImage(r.Context(), middleware.CurrentActor(r), pathID(r), header.Filename, header.Size, file)
	if err != nil {
		writeErr(w, r, productTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductView(p))
}

func parseDecimalPtr(field, s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, apperr.Validation(field, "Enter a number.")
	}
	return &d, nil
}
