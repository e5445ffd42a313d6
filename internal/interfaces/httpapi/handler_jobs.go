package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/roster-sync/internal/domain/rostersync"
	"github.com/riskibarqy/roster-sync/internal/usecase"
)

const maxJobRequestBytes = 1 << 20

var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

type syncRostersRequest struct {
	LeagueIDs []string `json:"league_ids" validate:"max=200,dive,required"`
	Force     bool     `json:"force"`
	Week      int      `json:"week" validate:"min=0,max=53"`
	Season    int      `json:"season" validate:"min=0"`
}

func (h *Handler) RunSyncRostersJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncRostersJob")
	defer span.End()

	req, err := decodeSyncRostersRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueIDs := req.LeagueIDs
	if len(leagueIDs) == 0 {
		leagueIDs = h.defaultLeagueIDs
	}
	if len(leagueIDs) == 0 {
		writeError(ctx, w, fmt.Errorf("%w: league_ids is required when no default leagues are configured", usecase.ErrInvalidInput))
		return
	}

	results, err := h.rosterSync.SyncLeagues(ctx, leagueIDs, rostersync.Options{
		Force:  req.Force,
		Week:   req.Week,
		Season: req.Season,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run sync rosters job failed", "leagues", len(leagueIDs), "force", req.Force, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := syncJobDTO{Results: make([]syncResultDTO, 0, len(results))}
	for _, result := range results {
		if result.Success {
			out.Succeeded++
		} else {
			out.Failed++
		}
		out.Results = append(out.Results, syncResultToDTO(result))
	}
	h.logger.InfoContext(ctx, "sync rosters job completed",
		"leagues", len(leagueIDs),
		"succeeded", out.Succeeded,
		"failed", out.Failed,
		"force", req.Force,
	)

	writeSuccess(ctx, w, http.StatusOK, out)
}

// decodeSyncRostersRequest treats an empty body as a request with defaults.
func decodeSyncRostersRequest(r *http.Request) (syncRostersRequest, error) {
	var req syncRostersRequest
	if r.Body == nil {
		return req, nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxJobRequestBytes))
	if err != nil {
		return req, fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return req, nil
	}
	if err := strictJSON.Unmarshal(raw, &req); err != nil {
		return syncRostersRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}
