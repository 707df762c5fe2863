// internal/adapters/in/http/handlers/cart_handler.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	usecase "storefront/internal/application/usecase"
	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/domain/apperr"
)

const cartTag = "cart_handler"

// CartHandler serves the caller's own cart. Every mutation answers with the
// whole cart as it is after the change.
type CartHandler struct {
	uc *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

func (h *CartHandler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Post("/add", h.add)
	r.Put("/items/{id}/update", h.updateItem)
	r.Delete("/items/{id}/delete", h.deleteItem)
	r.Delete("/clear", h.clear)
}

type addToCartBody struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

type updateCartItemBody struct {
	Quantity *int `json:"quantity"`
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r, http.StatusOK)
}

// POST /api/cart/add  {"product_id": "...", "quantity": 2}
func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var body addToCartBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, cartTag, err)
		return
	}
	if body.ProductID == "" {
		writeErr(w, r, cartTag, apperr.Validation("product_id", "This field is required."))
		return
	}
	if _, err := h.uc.AddItem(r.Context(), middleware.CurrentActor(r), body.ProductID, body.Quantity); err != nil {
		writeErr(w, r, cartTag, err)
		return
	}
	h.respondCart(w, r, http.StatusCreated)
}

// PUT /api/cart/items/{id}/update  {"quantity": 0} で行削除
func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	var body updateCartItemBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, cartTag, err)
		return
	}
	if body.Quantity == nil {
		writeErr(w, r, cartTag, apperr.Validation("quantity", "This field is required."))
		return
	}
	if _, _, err := h.uc.UpdateItem(r.Context(), middleware.CurrentActor(r), pathID(r), *body.Quantity); err != nil {
		writeErr(w, r, cartTag, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *CartHandler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.RemoveItem(r.Context(), middleware.CurrentActor(r), pathID(r)); err != nil {
		writeErr(w, r, cartTag, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Clear(r.Context(), middleware.CurrentActor(r)); err != nil {
		writeErr(w, r, cartTag, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, code int) {
	actor := middleware.CurrentActor(r)
	c, err := h.uc.Get(r.Context(), actor)
	if err != nil {
		writeErr(w, r, cartTag, err)
		return
	}
	writeJSON(w, code, toCartView(c, actor.Username))
}
