// internal/adapters/in/http/handlers/user_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	usecase "storefront/internal/application/usecase"
	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/domain/apperr"
	userdom "storefront/internal/domain/user"
)

const userTag = "user_handler"

type UserHandler struct {
	uc *usecase.UserUsecase
}

func NewUserHandler(uc *usecase.UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

func (h *UserHandler) Routes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Post("/token/refresh", h.refresh)
	r.Post("/change-password", h.changePassword)
	r.Get("/me", h.me)
	r.Put("/update", h.update)
	r.Patch("/update", h.update)
}

type registerBody struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Refresh  string `json:"refresh"`
	Access   string `json:"access"`
}

type refreshBody struct {
	Refresh string `json:"refresh"`
}

type accessView struct {
	Access string `json:"access"`
}

type changePasswordBody struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

type profileBody struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (h *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, userTag, err)
		return
	}
	u, err := h.uc.Register(r.Context(), usecase.RegisterInput(body))
	if err != nil {
		writeErr(w, r, userTag, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(u))
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, userTag, err)
		return
	}
	res, err := h.uc.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		writeErr(w, r, userTag, err)
		return
	}
	writeJSON(w, http.StatusOK, loginView{
		ID:       res.User.ID,
		Username: res.User.Username,
		Email:    res.User.Email,
		Refresh:  res.Tokens.Refresh,
		Access:   res.Tokens.Access,
	})
}

// POST /api/users/logout  {"refresh": "..."} は任意
func (h *UserHandler) logout(w http.ResponseWriter, r *http.Request) {
	var body refreshBody
	if err := readOptionalJSON(w, r, &body); err != nil {
		writeErr(w, r, userTag, err)
		return
	}
	claims, _ := middleware.CurrentClaims(r)
	if err := h.uc.Logout(r.Context(), middleware.CurrentActor(r), claims, body.Refresh); err != nil {
		writeErr(w, r, userTag, err)
		return
	}
	writeJSON(w, http.StatusOK, messageView{Message: "Successfully logged out"})
}

func (h *UserHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var body refreshBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, userTag, err)
		return
	}
	if strings.TrimSpace(body.Refresh) == "" {
		writeErr(w, r, userTag, apperr.Validation("refresh", "This field is required."))
		return
	}
	access, err := h.uc.Refresh(r.Context(), body.Refresh)
	if err != nil {
		writeErr(w, r, userTag, err)
		return
	}
	writeJSON(w, http.StatusOK, accessView{Access: access})
}

func (h *UserHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	var body changePasswordBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, userTag, err)
		return
	}
	err := h.uc.ChangePassword(r.Context(), middleware.CurrentActor(r), body.OldPassword, body.NewPassword, body.NewPasswordConfirm)
	if err != nil {
		writeErr(w, r, userTag, err)
		return
	}
	writeJSON(w, http.StatusOK, messageView{Message: "Password changed successfully"})
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.uc.Me(r.Context(), middleware.CurrentActor(r))
	if err != nil {
		writeErr(w, r, userTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(u))
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request) {
	var body profileBody
	if err := readJSON(w, r, &body); err != nil {
		writeErr(w, r, userTag, err)
		return
	}
	p := userdom.Patch{Username: body.Username, Email: body.Email, FirstName: body.FirstName, LastName: body.LastName}
	u, err := h.uc.UpdateProfile(r.Context(), middleware.CurrentActor(r), p)
	if err != nil {
		writeErr(w, r, userTag, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(u))
}
