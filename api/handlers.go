/*
handlers.go - HTTP API handlers for the disbursement engine

PURPOSE:
  Exposes the fee engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the disbursement package. Nothing
  computed here is stored: every request recomputes from its inputs.

ENDPOINTS:
  Calculations:
    POST   /api/calculations           Full PDA with projections
    POST   /api/calculations/quote     cv + bracket agency fee only
    POST   /api/fda                    Final account from final amounts

  Tariffs:
    GET    /api/tariffs                List tariff profiles
    POST   /api/tariffs                Create/replace from a tariff document
    GET    /api/tariffs/{id}           Get one tariff document
    DELETE /api/tariffs/{id}           Remove a tariff profile
    GET    /api/tariffs/{id}/brackets  Agency fee scale (?cv= flags a row)

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Tariff profiles
  - TariffFactory: Document to profile conversion
  - Cached calculators per profile, dropped when a profile changes

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid or missing input (with "field"), invalid tariff document
  - 404: Unknown tariff profile
  - 409: Deleting the default tariff
  - 422: cv outside every agency fee bracket
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - reloader.go: Tariff directory reloads
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/warp/pda-engine/disbursement"
	"github.com/warp/pda-engine/factory"
	"github.com/warp/pda-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         disbursement.TariffStore
	TariffFactory *factory.TariffFactory
	DefaultTariff string
	Formatter     disbursement.Formatter
	Logger        *slog.Logger

	mu          sync.RWMutex
	calculators map[string]*disbursement.Calculator
	// generations counts invalidations per tariff. A calculator built from
	// a read that an invalidation overtook is returned but not cached.
	generations map[string]uint64
}

// NewHandler creates a new handler. Requests without a tariff_id use
// defaultTariff.
func NewHandler(store disbursement.TariffStore, defaultTariff string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:         store,
		TariffFactory: factory.NewTariffFactory(),
		DefaultTariff: defaultTariff,
		Formatter:     disbursement.DefaultFormatter,
		Logger:        logger,
		calculators:   make(map[string]*disbursement.Calculator),
		generations:   make(map[string]uint64),
	}
}

// calculator returns the cached calculator for id, building it from the
// store on first use.
func (h *Handler) calculator(ctx context.Context, id string) (*disbursement.Calculator, error) {
	if id == "" {
		id = h.DefaultTariff
	}

	h.mu.RLock()
	calc, ok := h.calculators[id]
	gen := h.generations[id]
	h.mu.RUnlock()
	if ok {
		return calc, nil
	}

	profile, err := h.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	calc, err = disbursement.NewCalculator(*profile)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	if h.generations[id] == gen {
		h.calculators[id] = calc
	}
	h.mu.Unlock()
	return calc, nil
}

// invalidate drops the cached calculator for id. Call it after the store
// holds the new profile.
func (h *Handler) invalidate(id string) {
	h.mu.Lock()
	delete(h.calculators, id)
	h.generations[id]++
	h.mu.Unlock()
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports liveness and how many tariffs are loaded.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Tariff store unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"tariffs":        len(profiles),
		"default_tariff": h.DefaultTariff,
	})
}

// =============================================================================
// CALCULATION ENDPOINTS
// =============================================================================

// Calculate runs a full calculation.
// POST /api/calculations
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	calc, result, err := h.run(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	dto := h.toCalculationDTO(result)
	h.Logger.InfoContext(r.Context(), "calculation completed",
		"calculation_id", dto.CalculationID,
		"tariff_id", calc.Profile().ID,
		"cv", result.CV.String(),
		"grand_total", result.GrandTotal.StringFixed(2),
	)
	writeJSON(w, http.StatusOK, dto)
}

// Quote derives cv and the bracket agency fee.
// POST /api/calculations/quote
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in := disbursement.Inputs{}
	for _, field := range []struct {
		key string
		dst *string
	}{
		{disbursement.FieldLBP, &in.LBP},
		{disbursement.FieldBeam, &in.Beam},
		{disbursement.FieldRDM, &in.RDM},
	} {
		v, ok := req.Inputs[field.key]
		if !ok {
			h.writeDomainError(w, r, &disbursement.MissingRequiredFieldError{Field: field.key})
			return
		}
		*field.dst = v
	}

	calc, err := h.calculator(r.Context(), req.TariffID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	q, err := calc.Quote(in)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, QuoteDTO{
		TariffID:     calc.Profile().ID,
		CV:           q.CV.String(),
		AgencyFee:    q.AgencyFee.StringFixed(2),
		BracketIndex: q.BracketIndex,
	})
}

// ReviseFDA recomputes the PDA and applies final amounts to every line.
// POST /api/fda
func (h *Handler) ReviseFDA(w http.ResponseWriter, r *http.Request) {
	var req FDARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	calc, result, err := h.run(r.Context(), req.CalculationRequest)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	fda, err := disbursement.ReviseFDA(result.Items(), req.FinalAmounts)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	dto := FDADTO{
		TariffID:           calc.Profile().ID,
		Lines:              make([]FDALineDTO, len(fda.Lines)),
		SubtotalDues:       fda.SubtotalDues.StringFixed(2),
		SubtotalAgencyFees: fda.SubtotalAgencyFees.StringFixed(2),
		GrandTotal:         fda.GrandTotal.StringFixed(2),
		PDATotal:           fda.PDATotal.StringFixed(2),
		Difference:         fda.Difference.StringFixed(2),
		Placeholders:       fda.Placeholders(h.Formatter),
	}
	for i, l := range fda.Lines {
		dto.Lines[i] = FDALineDTO{
			Name:       l.Name,
			Category:   string(l.Category),
			PDAAmount:  l.PDAAmount.StringFixed(2),
			FDAAmount:  l.FDAAmount.StringFixed(2),
			Difference: l.Difference.StringFixed(2),
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// run builds Inputs from the request and calculates with the named tariff.
func (h *Handler) run(ctx context.Context, req CalculationRequest) (*disbursement.Calculator, *disbursement.Result, error) {
	in, err := disbursement.InputsFromFields(req.Inputs)
	if err != nil {
		return nil, nil, err
	}
	if in.AdditionalDues, err = disbursement.EntriesFromFields(disbursement.FieldAdditionalDues, req.AdditionalDues); err != nil {
		return nil, nil, err
	}
	if in.AdditionalFees, err = disbursement.EntriesFromFields(disbursement.FieldAdditionalFees, req.AdditionalFees); err != nil {
		return nil, nil, err
	}

	calc, err := h.calculator(ctx, req.TariffID)
	if err != nil {
		return nil, nil, err
	}
	result, err := calc.Calculate(in)
	if err != nil {
		return nil, nil, err
	}
	return calc, result, nil
}

func (h *Handler) toCalculationDTO(res *disbursement.Result) CalculationDTO {
	dto := CalculationDTO{
		CalculationID:      uuid.NewString(),
		TariffID:           res.TariffID,
		LBP:                res.LBP.String(),
		Beam:               res.Beam.String(),
		RDM:                res.RDM.String(),
		CV:                 res.CV.String(),
		SuggestedAgencyFee: res.SuggestedAgencyFee.StringFixed(2),
		Fees:               make([]FeeDTO, len(res.Fees)),
		Lines:              make([]LineDTO, 0, len(res.Fees)),
		SubtotalDues:       res.SubtotalDues.StringFixed(2),
		SubtotalAgencyFees: res.SubtotalAgencyFees.StringFixed(2),
		TotalTax:           res.TotalTax.StringFixed(2),
		GrandTotal:         res.GrandTotal.StringFixed(2),
		Projections:        make([]ProjectionDTO, len(res.Projections)),
		Placeholders:       res.Placeholders(h.Formatter),
	}
	for i, f := range res.Fees {
		dto.Fees[i] = FeeDTO{
			Name:          f.Name,
			Category:      string(f.Category),
			TaxApplicable: f.TaxApplicable,
			Base:          f.BaseAmount.StringFixed(2),
			Tax:           f.TaxAmount.StringFixed(2),
			Total:         f.TotalAmount.StringFixed(2),
		}
	}
	for _, l := range res.Lines(h.Formatter) {
		dto.Lines = append(dto.Lines, LineDTO{Name: l.Name, Category: string(l.Category), Tax: l.Tax, Total: l.Total})
	}
	for i, p := range res.Projections {
		dto.Projections[i] = ProjectionDTO{
			Rate:           disbursement.FormatPercent(p.Rate),
			DuesTotal:      p.DuesTotal.StringFixed(2),
			AgencyFeeTotal: p.AgencyFeeTotal.StringFixed(2),
			GrandTotal:     p.GrandTotal.StringFixed(2),
		}
	}
	return dto
}

// =============================================================================
// TARIFF ENDPOINTS
// =============================================================================

// ListTariffs returns all tariff profiles.
// GET /api/tariffs
func (h *Handler) ListTariffs(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tariffs", err)
		return
	}

	dtos := make([]TariffDTO, len(profiles))
	for i, p := range profiles {
		dtos[i] = h.toTariffDTO(r.Context(), p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTariff returns one tariff document.
// GET /api/tariffs/{id}
func (h *Handler) GetTariff(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toTariffDTO(r.Context(), *profile))
}

// CreateTariff creates or replaces a tariff profile from a document.
// POST /api/tariffs
func (h *Handler) CreateTariff(w http.ResponseWriter, r *http.Request) {
	var doc factory.TariffDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	profile, err := h.TariffFactory.FromDocument(doc)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if err := h.Store.Save(r.Context(), profile); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.invalidate(profile.ID)

	h.Logger.InfoContext(r.Context(), "tariff saved", "tariff_id", profile.ID, "fees", len(profile.Dues), "brackets", len(profile.Brackets))
	writeJSON(w, http.StatusCreated, h.toTariffDTO(r.Context(), profile))
}

// DeleteTariff removes a tariff profile.
// DELETE /api/tariffs/{id}
func (h *Handler) DeleteTariff(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == h.DefaultTariff {
		writeError(w, http.StatusConflict, "The default tariff cannot be deleted", nil)
		return
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete tariff", err)
		return
	}
	h.invalidate(id)
	w.WriteHeader(http.StatusNoContent)
}

// ListBrackets returns the agency fee scale of a profile. With ?cv= the
// bracket containing that cv is flagged.
// GET /api/tariffs/{id}/brackets
func (h *Handler) ListBrackets(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	selected := -1
	if raw := r.URL.Query().Get("cv"); raw != "" {
		cv, err := disbursement.ParseAmount("cv", raw)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		// cv is always whole; a fractional query is rounded the same way
		if _, selected, err = profile.Bracket(cv.Ceil()); err != nil {
			h.writeDomainError(w, r, err)
			return
		}
	}

	dtos := make([]BracketDTO, len(profile.Brackets))
	for i, b := range profile.Brackets {
		dtos[i] = BracketDTO{
			Index:    i,
			MinCV:    b.MinCV.String(),
			Fee:      b.Fee.StringFixed(2),
			Selected: i == selected,
		}
		if b.MaxCV.Valid {
			max := b.MaxCV.Decimal.String()
			dtos[i].MaxCV = &max
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) toTariffDTO(ctx context.Context, p disbursement.TariffProfile) TariffDTO {
	dto := TariffDTO{
		ID:     p.ID,
		Name:   p.Name,
		Port:   p.Port,
		Config: h.TariffFactory.ToDocument(p),
	}
	// Only the SQLite store tracks versions.
	if s, ok := h.Store.(*sqlite.Store); ok {
		if rec, err := s.Record(ctx, p.ID); err == nil {
			dto.Version = rec.Version
			dto.UpdatedAt = rec.UpdatedAt.Format(time.RFC3339)
		}
	}
	return dto
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid *disbursement.InvalidInputError
		missing *disbursement.MissingRequiredFieldError
	)
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid input", Field: invalid.Field, Details: err.Error()})
	case errors.As(err, &missing):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Missing required field", Field: missing.Field, Details: err.Error()})
	case disbursement.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Tariff not found", err)
	case errors.Is(err, disbursement.ErrNoMatchingBracket):
		writeError(w, http.StatusUnprocessableEntity, "No agency fee bracket for this vessel", err)
	case disbursement.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid tariff", err)
	default:
		h.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error", fmt.Errorf("%s: %w", r.URL.Path, err))
	}
}
