package ratings

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/ratehub/ratehub/internal/pkg/httputil"
)

// Handler handles HTTP requests for the ratings module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new ratings handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers rating routes. Mounted behind
// RequireRole(NORMAL_USER).
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ratings", h.Submit)
	r.Get("/ratings/mine", h.ListMine)
	r.Delete("/ratings/stores/{storeID}", h.Remove)
}

var serviceErrorMappings = []httputil.ErrorMapping{
	{Error: ErrStoreNotFound, Status: http.StatusNotFound},
	{Error: ErrRatingNotFound, Status: http.StatusNotFound},
	{Error: ErrInvalidValue, Status: http.StatusBadRequest},
	{Error: ErrDuplicate, Status: http.StatusConflict},
}

// SubmitRequest represents the rating submission body.
type SubmitRequest struct {
	StoreID int64 `json:"store_id" validate:"required"`
	Rating  int32 `json:"rating" validate:"required"`
}

// ratingResponse is the JSON shape of a rating.
type ratingResponse struct {
	UserID       int64     `json:"user_id"`
	StoreID      int64     `json:"store_id"`
	Rating       int32     `json:"rating"`
	StoreName    string    `json:"store_name,omitempty"`
	StoreAddress string    `json:"store_address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Submit handles POST /ratings. Responds 201 when the rating was created,
// 200 when an existing rating was updated in place.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	userID := httputil.GetUserID(r.Context())
	if userID == 0 {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rating, created, err := h.service.Submit(r.Context(), userID, req.StoreID, req.Rating)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	httputil.Success(w, status, ratingResponse{
		UserID:    rating.UserID,
		StoreID:   rating.StoreID,
		Rating:    rating.Value,
		CreatedAt: rating.CreatedAt,
		UpdatedAt: rating.UpdatedAt,
	})
}

// ListMine handles GET /ratings/mine.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r.Context())
	if userID == 0 {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
		return
	}

	out := make([]ratingResponse, 0, len(list))
	for _, rws := range list {
		out = append(out, ratingResponse{
			UserID:       rws.UserID,
			StoreID:      rws.StoreID,
			Rating:       rws.Value,
			StoreName:    rws.StoreName,
			StoreAddress: rws.StoreAddress,
			CreatedAt:    rws.CreatedAt,
			UpdatedAt:    rws.UpdatedAt,
		})
	}

	httputil.Success(w, http.StatusOK, out)
}

// Remove handles DELETE /ratings/stores/{storeID}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	storeID, err := strconv.ParseInt(chi.URLParam(r, "storeID"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid store id")
		return
	}

	userID := httputil.GetUserID(r.Context())
	if userID == 0 {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.service.Remove(r.Context(), userID, storeID); err != nil {
		httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
