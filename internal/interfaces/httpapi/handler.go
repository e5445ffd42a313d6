package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/roster-sync/internal/domain/roster"
	"github.com/riskibarqy/roster-sync/internal/domain/rostersync"
	"github.com/riskibarqy/roster-sync/internal/platform/logging"
	"github.com/riskibarqy/roster-sync/internal/usecase"
)

// RosterSyncService is the part of usecase.RosterSyncService served over HTTP.
type RosterSyncService interface {
	SyncLeagues(ctx context.Context, leagueIDs []string, opts rostersync.Options) ([]rostersync.Result, error)
	GetSyncStatus(ctx context.Context, leagueID string) (*rostersync.State, error)
	GetUnresolvedPlayerCount(ctx context.Context, leagueID string) (int, error)
	GetCurrentRoster(ctx context.Context, leagueID string) (roster.Snapshot, error)
	ListOwnershipEvents(ctx context.Context, leagueID string, limit int) ([]roster.OwnershipEvent, error)
	VerifyLeague(ctx context.Context, leagueID string) (rostersync.Verification, error)
}

type Handler struct {
	rosterSync       RosterSyncService
	defaultLeagueIDs []string
	logger           *logging.Logger
	validator        *validator.Validate
}

// NewHandler builds the HTTP handler. defaultLeagueIDs are synced when a job
// request names no leagues.
func NewHandler(rosterSync RosterSyncService, defaultLeagueIDs []string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		rosterSync:       rosterSync,
		defaultLeagueIDs: append([]string(nil), defaultLeagueIDs...),
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSyncStatus")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	state, err := h.rosterSync.GetSyncStatus(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get sync status failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if state == nil {
		writeError(ctx, w, fmt.Errorf("%w: no sync state for league %s", usecase.ErrNotFound, leagueID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, syncStateToDTO(*state))
}

func (h *Handler) GetUnresolvedPlayerCount(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUnresolvedPlayerCount")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	count, err := h.rosterSync.GetUnresolvedPlayerCount(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "count unresolved players failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, unresolvedCountDTO{LeagueID: leagueID, Count: count})
}

func (h *Handler) GetCurrentRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentRoster")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	snapshot, err := h.rosterSync.GetCurrentRoster(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get current roster failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(leagueID, snapshot))
}

func (h *Handler) ListOwnershipEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListOwnershipEvents")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: limit must be an integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	events, err := h.rosterSync.ListOwnershipEvents(ctx, leagueID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list ownership events failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]ownershipEventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, ownershipEventToDTO(event))
	}
	writeSuccess(ctx, w, http.StatusOK, listDTO[ownershipEventDTO]{Items: out})
}

func (h *Handler) VerifyLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.VerifyLeague")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	verification, err := h.rosterSync.VerifyLeague(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "verify league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, verificationToDTO(verification))
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
