package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fleet-dispatch-service/internal/adapters/distance"
	"fleet-dispatch-service/internal/roster"
	"fleet-dispatch-service/internal/services"
	"fleet-dispatch-service/internal/workhours"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	provider, err := distance.NewHaversineProvider(48)
	if err != nil {
		t.Fatalf("NewHaversineProvider: %v", err)
	}
	tracker := workhours.NewTracker(workhours.DefaultLimits())
	return NewRouter(
		services.NewOptimizer(provider, tracker),
		roster.NewService(provider),
		workhours.NewReporter(tracker),
	)
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	cases := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/compliance_report", "", http.StatusOK},
		{http.MethodGet, "/api/drivers_with_schedules", "", http.StatusOK},
		{http.MethodPost, "/api/optimize_schedule", `{"drivers": []}`, http.StatusOK},
		{http.MethodGet, "/api/optimize_schedule", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/suggest_alternative_drivers", `{"task_location": {"lat": 32, "lng": 34}}`, http.StatusOK},
	}

	for _, tc := range cases {
		req, err := http.NewRequest(tc.method, srv.URL+tc.path, strings.NewReader(tc.body))
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		resp, err := srv.Client().Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", tc.method, tc.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tc.want {
			t.Fatalf("%s %s = %d, want %d", tc.method, tc.path, resp.StatusCode, tc.want)
		}
	}
}
