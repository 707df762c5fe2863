// internal/adapters/in/http/handlers/order_handler.go
package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	usecase "storefront/internal/application/usecase"
	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/domain/apperr"
)

const orderTag = "order_handler"

// OrderHandler は /api/orders 配下（checkout / 支払い / 管理者向け）を担当します。
type OrderHandler struct {
	checkout *usecase.CheckoutUsecase
	orders   *usecase.OrderUsecase
	payments *usecase.PaymentUsecase
}

func NewOrderHandler(checkout *usecase.CheckoutUsecase, orders *usecase.OrderUsecase, payments *usecase.PaymentUsecase) *OrderHandler {
	return &OrderHandler{checkout: checkout, orders: orders, payments: payments}
}

func (h *OrderHandler) Routes(r chi.Router) {
	r.Get("/", h.listMine)
	r.Post("/create", h.create)

	// static segment なので /{id} より優先される
	r.Get("/admin", h.adminList)
	r.Get("/admin/{id}", h.adminGet)
	r.Put("/admin/{id}", h.adminUpdateStatus)
	r.Patch("/admin/{id}", h.adminUpdateStatus)

	r.Get("/{id}", h.getMine)
	r.Post("/{id}/pay", h.pay)
}

type orderCreatedView struct {
	Message string `json:"message"`
	OrderID string `json:"order_id"`
}

type orderStatusBody struct {
	Status string `json:"status"`
}

// POST /api/orders/create  body = delivery address
func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var body addressBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, orderTag, err)
		return
	}
	o, err := h.checkout.PlaceOrder(r.Context(), middleware.CurrentActor(r), body.toDomain())
	if err != nil {
		writeErr(w, r, orderTag, err)
		return
	}
	log.Printf("[%s] order created id=%s user=%s total=%s", orderTag, o.ID, o.UserID, money(o.Total))
	writeJSON(w, http.StatusCreated, orderCreatedView{Message: "Order created", OrderID: o.ID})
}

func (h *OrderHandler) listMine(w http.ResponseWriter, r *http.Request) {
	res, err := h.orders.ListMine(r.Context(), middleware.CurrentActor(r), pageFrom(r))
	if err != nil {
		writeErr(w, r, orderTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageView(res, toOrderView))
}

func (h *OrderHandler) getMine(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetMine(r.Context(), middleware.CurrentActor(r), pathID(r))
	if err != nil {
		writeErr(w, r, orderTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderView(o))
}

// POST /api/orders/{id}/pay  (mock)
func (h *OrderHandler) pay(w http.ResponseWriter, r *http.Request) {
	rc, err := h.payments.ProcessPayment(r.Context(), middleware.CurrentActor(r), pathID(r))
	if err != nil {
		writeErr(w, r, orderTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toReceiptView(rc))
}

// GET /api/orders/admin?userId=
func (h *OrderHandler) adminList(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	res, err := h.orders.AdminList(r.Context(), middleware.CurrentActor(r), userID, pageFrom(r))
	if err != nil {
		writeErr(w, r, orderTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageView(res, toOrderView))
}

func (h *OrderHandler) adminGet(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.AdminGet(r.Context(), middleware.CurrentActor(r), pathID(r))
	if err != nil {
		writeErr(w, r, orderTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderView(o))
}

func (h *OrderHandler) adminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body orderStatusBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, orderTag, err)
		return
	}
	if strings.TrimSpace(body.Status) == "" {
		writeErr(w, r, orderTag, apperr.Validation("status", "This field is required."))
		return
	}
	o, err := h.orders.AdminUpdateStatus(r.Context(), middleware.CurrentActor(r), pathID(r), body.Status)
	if err != nil {
		writeErr(w, r, orderTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderView(o))
}
