package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metrics http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
}

func registerRosterSyncRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues/{leagueID}/roster-sync", handler.GetSyncStatus)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/roster-sync/unresolved", handler.GetUnresolvedPlayerCount)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/roster-sync/verify", handler.VerifyLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/rosters", handler.GetCurrentRoster)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/ownership-events", handler.ListOwnershipEvents)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sync-rosters", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncRostersJob)))
}
