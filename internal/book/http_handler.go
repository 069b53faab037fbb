package book

import (
	"net/http"

	"bookcatalog/internal/httpx"
)

type createBookRequest struct {
	Title         string `json:"title" validate:"required,notblank,nonul,max=255"`
	Author        string `json:"author" validate:"nonul,max=255"`
	Publisher     string `json:"publisher" validate:"nonul,max=255"`
	PublishedDate string `json:"published_date" validate:"nonul,max=64"`
	PageCount     int    `json:"page_count" validate:"gte=0,lte=2147483647"`
	Language      string `json:"language" validate:"nonul,max=64"`
}

type updateBookRequest struct {
	Title         *string `json:"title" validate:"omitempty,nonul,max=255"`
	Author        *string `json:"author" validate:"omitempty,nonul,max=255"`
	Publisher     *string `json:"publisher" validate:"omitempty,nonul,max=255"`
	PublishedDate *string `json:"published_date" validate:"omitempty,nonul,max=64"`
	PageCount     *int    `json:"page_count" validate:"omitempty,gte=0,lte=2147483647"`
	Language      *string `json:"language" validate:"omitempty,nonul,max=64"`
}

type HTTPHandler struct {
	scope Scope
}

func NewHTTPHandler(scope Scope) *HTTPHandler {
	return &HTTPHandler{scope: scope}
}

// Routes registers the book routes under prefix.
func (h *HTTPHandler) Routes(mux *http.ServeMux, prefix string, eh *httpx.ErrorHandler) {
	mux.Handle("GET "+prefix+"/books", eh.Wrap(h.List))
	mux.Handle("POST "+prefix+"/books", eh.Wrap(h.Create))
	mux.Handle("GET "+prefix+"/books/{id}", eh.Wrap(h.Get))
	mux.Handle("PUT "+prefix+"/books/{id}", eh.Wrap(h.Update))
	mux.Handle("PATCH "+prefix+"/books/{id}", eh.Wrap(h.Update))
	mux.Handle("DELETE "+prefix+"/books/{id}", eh.Wrap(h.Delete))
}

// withService resolves a request-scoped Service and releases it when fn returns.
func (h *HTTPHandler) withService(r *http.Request, fn func(*Service) error) error {
	svc, release, err := h.scope.Open(r.Context())
	if err != nil {
		return err
	}
	defer release()
	return fn(svc)
}

// List handles GET /books
// @Summary List books
// @Tags books
// @Produce json
// @Success 200 {array} Book
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) error {
	return h.withService(r, func(svc *Service) error {
		books, err := svc.List(r.Context())
		if err != nil {
			return err
		}
		httpx.JSON(w, http.StatusOK, books)
		return nil
	})
}

// Get handles GET /books/{id}
// @Summary Get book by id
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} Book
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")
	return h.withService(r, func(svc *Service) error {
		b, err := svc.Get(r.Context(), id)
		if err != nil {
			return err
		}
		httpx.JSON(w, http.StatusOK, b)
		return nil
	})
}

// Create handles POST /books
// @Summary Create book
// @Tags books
// @Accept json
// @Produce json
// @Success 201 {object} Book
// @Failure 400 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var req createBookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	return h.withService(r, func(svc *Service) error {
		b, err := svc.Create(r.Context(), CreateInput{
			Title:         req.Title,
			Author:        req.Author,
			Publisher:     req.Publisher,
			PublishedDate: req.PublishedDate,
			PageCount:     req.PageCount,
			Language:      req.Language,
		})
		if err != nil {
			return err
		}
		httpx.JSONCreated(w, b)
		return nil
	})
}

// Update handles PUT and PATCH /books/{id}. Both accept partial bodies.
// @Summary Update book
// @Tags books
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} Book
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [patch]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")
	var req updateBookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	return h.withService(r, func(svc *Service) error {
		b, err := svc.Update(r.Context(), id, Patch{
			Title:         req.Title,
			Author:        req.Author,
			Publisher:     req.Publisher,
			PublishedDate: req.PublishedDate,
			PageCount:     req.PageCount,
			Language:      req.Language,
		})
		if err != nil {
			return err
		}
		httpx.JSON(w, http.StatusOK, b)
		return nil
	})
}

// Delete handles DELETE /books/{id}
// @Summary Delete book
// @Tags books
// @Param id path string true "Book ID"
// @Success 204
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")
	return h.withService(r, func(svc *Service) error {
		deleted, err := svc.Delete(r.Context(), id)
		if err != nil {
			return err
		}
		if !deleted {
			return notFound(id)
		}
		httpx.NoContent(w)
		return nil
	})
}
