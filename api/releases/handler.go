package releases

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/kilianp07/crossroad/core/model"
	"github.com/kilianp07/crossroad/infra/releaselog"
)

// Path is where NewHandler is mounted.
const Path = "/api/releases"

// NewHandler returns an HTTP handler exposing release records via GET /api/releases.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewHandler(store releaselog.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		params := r.URL.Query()
		q := releaselog.Query{
			RunID:     params.Get("run_id"),
			VehicleID: params.Get("vehicle_id"),
		}
		if s := params.Get("route"); s != "" {
			if !strings.HasPrefix(s, "route_") {
				s = "route_" + s
			}
			q.Route = model.Route(s)
		}
		if s := params.Get("min_delay"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				http.Error(w, "invalid min_delay", http.StatusBadRequest)
				return
			}
			q.MinDelay = v
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []releaselog.Record{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
