package stores

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/ratehub/ratehub/internal/pkg/httputil"
)

// Handler handles HTTP requests for the stores module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new stores handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterAdminRoutes registers store management routes. Mounted behind
// RequireRole(SYSTEM_ADMIN).
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/stores", h.Create)
	r.Get("/stores", h.List)
}

// RegisterUserRoutes registers browsing routes. Mounted behind
// RequireRole(NORMAL_USER).
func (h *Handler) RegisterUserRoutes(r chi.Router) {
	r.Get("/stores/browse", h.Browse)
}

// RegisterOwnerRoutes registers the owner dashboard. Mounted behind
// RequireRole(STORE_OWNER).
func (h *Handler) RegisterOwnerRoutes(r chi.Router) {
	r.Get("/stores/owner/dashboard", h.Dashboard)
}

var serviceErrorMappings = []httputil.ErrorMapping{
	{Error: ErrStoreNotFound, Status: http.StatusNotFound},
	{Error: ErrEmailExists, Status: http.StatusConflict},
	{Error: ErrOwnerNotFound, Status: http.StatusNotFound},
}

// CreateStoreRequest represents the store creation body.
type CreateStoreRequest struct {
	Name    string `json:"name" validate:"required,min=20,max=60"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required,max=400"`
	OwnerID int64  `json:"owner_id" validate:"required"`
}

// storeResponse is the JSON shape of a store.
type storeResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Create handles POST /stores.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	store, err := h.service.Create(r.Context(), CreateStoreInput{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, storeResponse{
		ID:        store.ID,
		Name:      store.Name,
		Email:     store.Email,
		Address:   store.Address,
		OwnerID:   store.OwnerID,
		CreatedAt: store.CreatedAt,
	})
}

// ownerProfile is the JSON shape of a public user profile.
type ownerProfile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// storeListingResponse is the JSON shape of an admin listing row.
type storeListingResponse struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Address     string       `json:"address"`
	Owner       ownerProfile `json:"owner"`
	Rating      float64      `json:"rating"`
	RatingCount int64        `json:"rating_count"`
	CreatedAt   time.Time    `json:"created_at"`
}

func listFilterFromQuery(r *http.Request) ListFilter {
	q := r.URL.Query()
	return ListFilter{
		Name:      q.Get("name"),
		Email:     q.Get("email"),
		Address:   q.Get("address"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
}

// List handles GET /stores.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), listFilterFromQuery(r))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
		return
	}

	out := make([]storeListingResponse, 0, len(list))
	for _, s := range list {
		out = append(out, storeListingResponse{
			ID:      s.ID,
			Name:    s.Name,
			Email:   s.Email,
			Address: s.Address,
			Owner: ownerProfile{
				ID:    s.Owner.ID,
				Name:  s.Owner.Name,
				Email: s.Owner.Email,
			},
			Rating:      s.Average,
			RatingCount: s.RatingCount,
			CreatedAt:   s.CreatedAt,
		})
	}

	httputil.Success(w, http.StatusOK, out)
}

// browseResponse is the JSON shape of a user-facing browsing row.
type browseResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	OverallRating float64 `json:"overall_rating"`
	UserRating    *int32  `json:"user_rating"`
	RatingCount   int64   `json:"rating_count"`
}

// Browse handles GET /stores/browse.
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r.Context())
	if userID == 0 {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.service.ListForUser(r.Context(), userID, listFilterFromQuery(r))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
		return
	}

	out := make([]browseResponse, 0, len(list))
	for _, s := range list {
		out = append(out, browseResponse{
			ID:            s.ID,
			Name:          s.Name,
			Address:       s.Address,
			OverallRating: s.Average,
			UserRating:    s.UserRating,
			RatingCount:   s.RatingCount,
		})
	}

	httputil.Success(w, http.StatusOK, out)
}

// dashboardRating is the JSON shape of a rating row on the owner dashboard.
type dashboardRating struct {
	Rating    int32        `json:"rating"`
	User      ownerProfile `json:"user"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// dashboardResponse is the JSON shape of the owner dashboard.
type dashboardResponse struct {
	Store         storeResponse     `json:"store"`
	AverageRating float64           `json:"average_rating"`
	RatingCount   int64             `json:"rating_count"`
	Ratings       []dashboardRating `json:"ratings"`
}

// Dashboard handles GET /stores/owner/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r.Context())
	if userID == 0 {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), userID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
		return
	}

	ratingRows := make([]dashboardRating, 0, len(dashboard.Ratings))
	for _, rwa := range dashboard.Ratings {
		ratingRows = append(ratingRows, dashboardRating{
			Rating: rwa.Value,
			User: ownerProfile{
				ID:    rwa.Author.ID,
				Name:  rwa.Author.Name,
				Email: rwa.Author.Email,
			},
			CreatedAt: rwa.CreatedAt,
			UpdatedAt: rwa.UpdatedAt,
		})
	}

	httputil.Success(w, http.StatusOK, dashboardResponse{
		Store: storeResponse{
			ID:        dashboard.Store.ID,
			Name:      dashboard.Store.Name,
			Email:     dashboard.Store.Email,
			Address:   dashboard.Store.Address,
			OwnerID:   dashboard.Store.OwnerID,
			CreatedAt: dashboard.Store.CreatedAt,
		},
		AverageRating: dashboard.Average,
		RatingCount:   dashboard.RatingCount,
		Ratings:       ratingRows,
	})
}
