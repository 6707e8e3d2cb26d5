package suppliers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/supplier-service/internal/platform/httpx"
)

const maxBodyBytes = 1 << 20

// Handler exposes the supplier service as a JSON API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers supplier routes relative to the router it is given.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.With(httpx.RequireJSON).Post("/", h.create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.With(httpx.RequireJSON).Put("/", h.update)
		r.Delete("/", h.delete)
		r.With(httpx.RequireJSON).Post("/products", h.addProducts)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sup, err := Deserialize(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	created, err := h.service.Create(r.Context(), sup)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := FilterFromQuery(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.service.FindAll(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponses(list))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sup, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(sup))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	patch, err := DecodePatch(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	updated, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) addProducts(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	// An unknown supplier is reported before any problem with the body.
	if _, err := h.service.Get(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ids, err := h.decodeProducts(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	updated, err := h.service.AddProducts(r.Context(), id, ids)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) decodeProducts(body []byte) ([]int64, error) {
	if _, err := decodeJSON(body); err != nil {
		return nil, err
	}
	var req addProductsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, newError(CodeWrongArgType, "object expected for request body")
	}
	if len(req.Products) == 0 || bytes.Equal(req.Products, []byte("null")) {
		return nil, newError(CodeMissingInfo, "products is required")
	}
	value, err := decodeJSON(req.Products)
	if err != nil {
		return nil, err
	}
	ids, err := productsFromValue(value)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if httpx.IsServerError(err) {
		h.logger.Error("supplier request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, newError(CodeWrongArgType, "integer expected for id, got %q", raw)
	}
	return id, nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, newError(CodeInvalidFormat, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, newError(CodeInvalidFormat, "read request body: %v", err)
	}
	return body, nil
}
