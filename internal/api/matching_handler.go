package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/domain/rules"
	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/service/donor"
	"github.com/phrazzld/lifeline-api/internal/service/matching"
	"github.com/phrazzld/lifeline-api/internal/service/supply"
)

// MatchingService is the part of the facade served by MatchingHandler.
type MatchingService interface {
	FindNearestSupply(ctx context.Context, req matching.SupplyRequest) matching.Response[[]supply.Candidate]
	MatchDonors(ctx context.Context, req matching.DonorRequest) matching.Response[[]donor.Match]
	ClassifyExpiryByID(ctx context.Context, id uuid.UUID) matching.Response[rules.Assessment]
	SearchBlood(ctx context.Context, req matching.SearchRequest) matching.Response[matching.SearchResult]
}

var _ MatchingService = (*matching.Facade)(nil)

// MatchingHandler serves supply search, donor matching and expiry
// classification.
type MatchingHandler struct {
	service MatchingService
	logger  *slog.Logger
}

// NewMatchingHandler creates a MatchingHandler.
func NewMatchingHandler(service MatchingService, logger *slog.Logger) *MatchingHandler {
	if service == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("matching service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MatchingHandler{
		service: service,
		logger:  logger.With(slog.String("component", "matching_handler")),
	}
}

// NearestSupply handles POST /api/supply/nearest.
func (h *MatchingHandler) NearestSupply(w http.ResponseWriter, r *http.Request) {
	var req NearestSupplyRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}

	resp := h.service.FindNearestSupply(r.Context(), req.toFacade())
	if resp.Success {
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("supply ranked",
			slog.String("blood_group", req.BloodGroup),
			slog.Int("candidates", len(resp.Data)))
	}
	writeResponse(w, r, resp)
}

// MatchDonors handles POST /api/donors/match.
func (h *MatchingHandler) MatchDonors(w http.ResponseWriter, r *http.Request) {
	var req DonorMatchRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}
	writeResponse(w, r, h.service.MatchDonors(r.Context(), req.toFacade()))
}

// ClassifyExpiry handles GET /api/inventory/{id}/expiry.
func (h *MatchingHandler) ClassifyExpiry(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}
	writeResponse(w, r, h.service.ClassifyExpiryByID(r.Context(), id))
}

// SearchBlood handles POST /api/blood/search. Donors are only matched when
// no inventory qualifies.
func (h *MatchingHandler) SearchBlood(w http.ResponseWriter, r *http.Request) {
	var req BloodSearchRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}

	resp := h.service.SearchBlood(r.Context(), req.toFacade())
	if resp.Success && len(resp.Data.Supply) == 0 {
		logger.FromContextOrDefault(r.Context(), h.logger).Info("no inventory available, fell back to donors",
			slog.String("blood_group", req.BloodGroup),
			slog.String("city", req.City),
			slog.Int("donors", len(resp.Data.Donors)))
	}
	writeResponse(w, r, resp)
}
