// internal/adapters/in/http/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"storefront/internal/domain/apperr"
	"storefront/internal/domain/common"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encode response failed: %v", err)
	}
}

// statusFor は apperr.Kind を HTTP ステータスへ変換する唯一の場所。
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidQuantity,
		apperr.KindInsufficientStock,
		apperr.KindEmptyCart,
		apperr.KindEmptyOrder,
		apperr.KindInvalidState,
		apperr.KindValidation,
		apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeErr は err の種別に応じたステータスと {"error", "field"} を返す。
// 500 の詳細はログにのみ出す。
func writeErr(w http.ResponseWriter, r *http.Request, tag string, err error) {
	code := statusFor(apperr.KindOf(err))
	if code >= http.StatusInternalServerError {
		log.Printf("[%s] %s %s request_id=%s err=%v", tag, r.Method, r.URL.Path, chimw.GetReqID(r.Context()), err)
	}
	writeJSON(w, code, errorBody{Error: apperr.PublicMessage(err), Field: apperr.FieldOf(err)})
}

// readJSON は 1MB までの JSON を未知フィールド拒否で読む。
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.Validation("", "Request body must not be empty.")
		case errors.As(err, &maxErr):
			return apperr.Validation("", "Request body is too large.")
		default:
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) && typeErr.Field != "" {
				return apperr.Validation(typeErr.Field, "Invalid value for "+typeErr.Field+".")
			}
			if f, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
				return apperr.Validation(strings.Trim(f, `"`), "Unknown field.")
			}
			return apperr.Validation("", "Malformed JSON body.")
		}
	}
	if dec.More() {
		return apperr.Validation("", "Request body must contain a single JSON object.")
	}
	return nil
}

// readOptionalJSON は空ボディを許す（logout など）。
func readOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return readJSON(w, r, dst)
}

func pathID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

func parseIntDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// pageFrom reads ?page=&page_size=.
func pageFrom(r *http.Request) common.Page {
	q := r.URL.Query()
	return common.Page{
		Number:  parseIntDefault(q.Get("page"), 1),
		PerPage: parseIntDefault(q.Get("page_size"), 0),
	}
}

func parseBoolPtr(s string) *bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &b
}

type pageView[T any] struct {
	Count      int `json:"count"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	Results    []T `json:"results"`
}

func toPageView[S, T any](p common.PageResult[S], conv func(S) T) pageView[T] {
	out := make([]T, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, conv(it))
	}
	return pageView[T]{
		Count:      p.TotalCount,
		Page:       p.Page,
		PageSize:   p.PerPage,
		TotalPages: p.TotalPages,
		Results:    out,
	}
}

type messageView struct {
	Message string `json:"message"`
}
