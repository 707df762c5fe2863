// internal/adapters/in/http/handlers/category_handler.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	usecase "storefront/internal/application/usecase"
	"storefront/internal/adapters/in/http/middleware"
	categorydom "storefront/internal/domain/category"
)

const categoryTag = "category_handler"

type CategoryHandler struct {
	uc *usecase.CategoryUsecase
}

func NewCategoryHandler(uc *usecase.CategoryUsecase) *CategoryHandler {
	return &CategoryHandler{uc: uc}
}

func (h *CategoryHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Patch("/{id}", h.patch)
	r.Delete("/{id}", h.delete)
}

type categoryBody struct {
	Title       *string `json:"title"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (b categoryBody) toInput() usecase.CategoryInput {
	in := usecase.CategoryInput{IsActive: b.IsActive}
	if b.Title != nil {
		in.Title = *b.Title
	}
	if b.Slug != nil {
		in.Slug = *b.Slug
	}
	if b.Description != nil {
		in.Description = *b.Description
	}
	return in
}

func (h *CategoryHandler) list(w http.ResponseWriter, r *http.Request) {
	res, err := h.uc.List(r.Context(), middleware.CurrentActor(r), pageFrom(r))
	if err != nil {
		writeErr(w, r, categoryTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageView(res, toCategoryView))
}

// GET /api/categories/{id} は見える商品も一緒に返す
func (h *CategoryHandler) get(w http.ResponseWriter, r *http.Request) {
	d, err := h.uc.Get(r.Context(), middleware.CurrentActor(r), pathID(r))
	if err != nil {
		writeErr(w, r, categoryTag, err)
		return
	}
	products := make([]productView, 0, len(d.Products))
	for _, p := range d.Products {
		products = append(products, toProductView(p))
	}
	writeJSON(w, http.StatusOK, categoryDetailView{categoryView: toCategoryView(d.Category), Products: products})
}

func (h *CategoryHandler) create(w http.ResponseWriter, r *http.Request) {
	var body categoryBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, categoryTag, err)
		return
	}
	c, err := h.uc.Create(r.Context(), middleware.CurrentActor(r), body.toInput())
	if err != nil {
		writeErr(w, r, categoryTag, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryView(c))
}

func (h *CategoryHandler) update(w http.ResponseWriter, r *http.Request) {
	var body categoryBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, categoryTag, err)
		return
	}
	c, err := h.uc.Update(r.Context(), middleware.CurrentActor(r), pathID(r), body.toInput())
	if err != nil {
		writeErr(w, r, categoryTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryView(c))
}

func (h *CategoryHandler) patch(w http.ResponseWriter, r *http.Request) {
	var body categoryBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, categoryTag, err)
		return
	}
	p := categorydom.Patch{Title: body.Title, Slug: body.Slug, Description: body.Description, IsActive: body.IsActive}
	c, err := h.uc.Patch(r.Context(), middleware.CurrentActor(r), pathID(r), p)
	if err != nil {
		writeErr(w, r, categoryTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryView(c))
}

func (h *CategoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Delete(r.Context(), middleware.CurrentActor(r), pathID(r)); err != nil {
		writeErr(w, r, categoryTag, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
