// internal/adapters/in/http/handlers/comment_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	usecase "storefront/internal/application/usecase"
	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/domain/apperr"
	commentdom "storefront/internal/domain/comment"
)

const commentTag = "comment_handler"

type CommentHandler struct {
	uc *usecase.CommentUsecase
}

func NewCommentHandler(uc *usecase.CommentUsecase) *CommentHandler {
	return &CommentHandler{uc: uc}
}

func (h *CommentHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Patch("/{id}", h.patch)
	r.Delete("/{id}", h.delete)
}

type commentBody struct {
	Product *string `json:"product"`
	Rating  *int    `json:"rating"`
	Text    *string `json:"text"`
}

// GET /api/comments?product=<id>
func (h *CommentHandler) list(w http.ResponseWriter, r *http.Request) {
	f := commentdom.Filter{ProductID: strings.TrimSpace(r.URL.Query().Get("product"))}
	res, err := h.uc.List(r.Context(), f, pageFrom(r))
	if err != nil {
		writeErr(w, r, commentTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageView(res, toCommentView))
}

func (h *CommentHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.uc.Get(r.Context(), pathID(r))
	if err != nil {
		writeErr(w, r, commentTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentView(c))
}

func (h *CommentHandler) create(w http.ResponseWriter, r *http.Request) {
	var body commentBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, commentTag, err)
		return
	}
	if body.Rating == nil {
		writeErr(w, r, commentTag, apperr.Validation("rating", "This field is required."))
		return
	}
	var product, text string
	if body.Product != nil {
		product = *body.Product
	}
	if body.Text != nil {
		text = *body.Text
	}
	c, err := h.uc.Create(r.Context(), middleware.CurrentActor(r), product, *body.Rating, text)
	if err != nil {
		writeErr(w, r, commentTag, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentView(c))
}

func (h *CommentHandler) update(w http.ResponseWriter, r *http.Request) {
	var body commentBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, commentTag, err)
		return
	}
	if body.Rating == nil {
		writeErr(w, r, commentTag, apperr.Validation("rating", "This field is required."))
		return
	}
	text := ""
	if body.Text != nil {
		text = *body.Text
	}
	c, err := h.uc.Update(r.Context(), middleware.CurrentActor(r), pathID(r), *body.Rating, text)
	if err != nil {
		writeErr(w, r, commentTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentView(c))
}

func (h *CommentHandler) patch(w http.ResponseWriter, r *http.Request) {
	var body commentBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, commentTag, err)
		return
	}
	c, err := h.uc.Patch(r.Context(), middleware.CurrentActor(r), pathID(r), commentdom.Patch{Rating: body.Rating, Text: body.Text})
	if err != nil {
		writeErr(w, r, commentTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentView(c))
}

func (h *CommentHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Delete(r.Context(), middleware.CurrentActor(r), pathID(r)); err != nil {
		writeErr(w, r, commentTag, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
