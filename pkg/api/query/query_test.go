package query

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noticehub/noticehub/pkg/store/mock"
	"github.com/noticehub/noticehub/pkg/types"
)

func setup() (*http.ServeMux, *mock.MockStatisticsProvider) {
	stats := &mock.MockStatisticsProvider{}
	mux := http.NewServeMux()

	Setup(mux, stats)
	return mux, stats
}

func TestQueryService(t *testing.T) {
	mux, stats := setup()
	stats.ReturnValue = types.DowntimeStatistic{
		ServiceID:    "aws-s3",
		EventCount:   2,
		Availability: 0.95,
	}

	time1, _ := time.Parse(time.RFC3339, "2020-01-01T00:00:00Z")
	time2, _ := time.Parse(time.RFC3339, "2020-02-02T00:00:00Z")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/service/aws-s3?from=2020-01-01T00:00:00Z&to=2020-02-02T00:00:00Z", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()

	assert.Equal(t, "200 OK", res.Status)

	stat := types.DowntimeStatistic{}
	err := json.NewDecoder(res.Body).Decode(&stat)
	assert.NoError(t, err)
	assert.Equal(t, "aws-s3", stat.ServiceID)
	assert.InDelta(t, 0.95, stat.Availability, 1e-9)

	assert.Equal(t, "statistics", stats.LastCall)
	assert.Equal(t, "aws-s3", stats.LastCallID)
	assert.True(t, stats.LastCallFrom.Equal(time1))
	assert.True(t, stats.LastCallTo.Equal(time2))
}

func TestQueryServiceUnknown(t *testing.T) {
	mux, stats := setup()
	stats.DoError = &types.UnknownNodeError{ID: "ghost"}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/service/ghost?from=2020-01-01T00:00:00Z&to=2020-02-02T00:00:00Z", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()

	assert.Equal(t, "404 Not Found", res.Status)
	assert.Equal(t, "statistics", stats.LastCall)
}

func TestQueryServiceParseError(t *testing.T) {
	mux, stats := setup()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/service/aws-s3?from=2020-bogus", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()

	assert.Equal(t, "400 Bad Request", res.Status)
	assert.Equal(t, "", stats.LastCall)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/stats/service/aws-s3?from=2020-01-01T00:00:00Z&to=bogus", nil)
	w = httptest.NewRecorder()

	mux.ServeHTTP(w, req)
	res = w.Result()
	defer res.Body.Close()

	assert.Equal(t, "400 Bad Request", res.Status)
	assert.Equal(t, "", stats.LastCall)
}
