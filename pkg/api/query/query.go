// Package query serves the read-only statistics side consumed by the
// dashboard: per-service downtime totals and availability over a window.
package query

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/noticehub/noticehub/pkg/api/handler"
	"github.com/noticehub/noticehub/pkg/types"
)

// StatisticsProvider computes availability statistics; implemented by the
// downtime event tracker.
type StatisticsProvider interface {
	Statistics(serviceID string, from time.Time, to time.Time) (types.DowntimeStatistic, error)
}

type queryServer struct {
	stats StatisticsProvider
}

func (s *queryServer) QueryService(w http.ResponseWriter, r *http.Request) {
	serviceID := r.PathValue("serviceid")

	from := r.URL.Query().Get("from")
	fromT, err := time.Parse(time.RFC3339, from)
	if err != nil {
		http.Error(w, "could not parse `from` time: "+err.Error(), http.StatusBadRequest)
		return
	}
	to := r.URL.Query().Get("to")
	toT, err := time.Parse(time.RFC3339, to)
	if err != nil {
		http.Error(w, "could not parse `to` time: "+err.Error(), http.StatusBadRequest)
		return
	}

	stat, err := s.stats.Statistics(serviceID, fromT, toT)
	if err != nil {
		http.Error(w, err.Error(), handler.StatusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stat)
}

func Setup(mux *http.ServeMux, stats StatisticsProvider) {
	s := queryServer{stats: stats}
	mux.HandleFunc("GET /api/v1/stats/service/{serviceid}", s.QueryService)
}
