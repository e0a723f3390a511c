package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"polynav/config"
	"polynav/navigation"
)

const squareRegion = `{
  "type": "Feature",
  "properties": {"name": "square", "depth": 2},
  "geometry": {
    "type": "Polygon",
    "coordinates": [
      [[0,0],[10,0],[10,10],[0,10],[0,0]],
      [[4,4],[6,4],[6,6],[4,6],[4,4]]
    ]
  }
}`

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func writeRegion(t *testing.T, dir, file, data string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.RateLimit = 0
	if mutate != nil {
		mutate(cfg)
	}
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := writeRegion(t, t.TempDir(), "square.geojson", squareRegion)
	if _, err := s.Store().LoadFile(path); err != nil {
		t.Fatalf("failed to load region: %v", err)
	}
	return s
}

func postRoute(t *testing.T, s *Server, body interface{}) (*httptest.ResponseRecorder, RouteResponse) {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/route", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp RouteResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestRouteAroundHole(t *testing.T) {
	s := newTestServer(t, nil)

	rec, resp := postRoute(t, s, map[string]interface{}{
		"region": "square",
		"origin": navigation.Point{X: 1, Y: 1},
		"target": navigation.Point{X: 9, Y: 9},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !resp.Success || resp.Direct || resp.Fallback {
		t.Fatalf("expected a graph route, got %+v", resp)
	}
	if len(resp.Path) != 2 || resp.Path[1] != (navigation.Point{X: 9, Y: 9}) {
		t.Fatalf("unexpected path %v", resp.Path)
	}
	if resp.Depth != 2 {
		t.Fatalf("expected depth 2, got %v", resp.Depth)
	}
	if resp.QueryID == "" {
		t.Fatalf("expected a query id")
	}
	if resp.Distance <= 11.3 || resp.Distance >= 12 {
		t.Fatalf("unexpected distance %v", resp.Distance)
	}
}

func TestRouteDirect(t *testing.T) {
	s := newTestServer(t, nil)

	_, resp := postRoute(t, s, map[string]interface{}{
		"region": "square",
		"origin": navigation.Point{X: 1, Y: 1},
		"target": navigation.Point{X: 3, Y: 1},
	})
	if !resp.Success || !resp.Direct || len(resp.Path) != 1 {
		t.Fatalf("expected direct route, got %+v", resp)
	}
}

func TestRouteEvasion(t *testing.T) {
	s := newTestServer(t, nil)
	guard := navigation.Obstacle{ID: "guard", Center: navigation.Point{X: 6.5, Y: 3.5}, Radius: 1.2, Moving: true}

	for _, tc := range []struct {
		name    string
		evasion string
		corners []navigation.Point
	}{
		{"default-ignores-moving", "", []navigation.Point{{X: 6, Y: 4}, {X: 4, Y: 6}}},
		{"all", "all", []navigation.Point{{X: 4, Y: 6}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			body := map[string]interface{}{
				"region":    "square",
				"origin":    navigation.Point{X: 1, Y: 1},
				"target":    navigation.Point{X: 9, Y: 9},
				"obstacles": []navigation.Obstacle{guard},
			}
			if tc.evasion != "" {
				body["evasion"] = tc.evasion
			}
			rec, resp := postRoute(t, s, body)
			if rec.Code != http.StatusOK || len(resp.Path) == 0 {
				t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
			}
			found := false
			for _, c := range tc.corners {
				if resp.Path[0] == c {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected to turn at one of %v, got %v", tc.corners, resp.Path)
			}
		})
	}
}

func TestRouteErrors(t *testing.T) {
	s := newTestServer(t, nil)

	for _, tc := range []struct {
		name string
		body interface{}
		code int
	}{
		{"unknown-region", map[string]interface{}{"region": "nowhere"}, http.StatusNotFound},
		{"missing-region", map[string]interface{}{"origin": navigation.Point{}}, http.StatusBadRequest},
		{"bad-evasion", map[string]interface{}{"region": "square", "evasion": "sometimes"}, http.StatusBadRequest},
		{"not-an-object", []int{1, 2}, http.StatusBadRequest},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := postRoute(t, s, tc.body)
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d: %s", tc.code, rec.Code, rec.Body.String())
			}
			if resp.Success || resp.Message == "" {
				t.Fatalf("expected a failure message, got %+v", resp)
			}
		})
	}
}

func TestRouteDegenerateRegion(t *testing.T) {
	s := newTestServer(t, nil)
	if err := s.Store().Put(navigation.NewRegion("line", []navigation.Point{{X: 0, Y: 0}, {X: 1, Y: 1}})); err != nil {
		t.Fatal(err)
	}

	rec, _ := postRoute(t, s, map[string]interface{}{"region": "line"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestRouteRateLimited(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = 0.001
		cfg.Server.Burst = 1
	})
	body := map[string]interface{}{
		"region": "square",
		"origin": navigation.Point{X: 1, Y: 1},
		"target": navigation.Point{X: 3, Y: 1},
	}

	if rec, _ := postRoute(t, s, body); rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}
	if rec, _ := postRoute(t, s, body); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", rec.Code)
	}
}

func TestRegionsAndHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/regions", nil))
	var regions struct {
		Regions []RegionInfo `json:"regions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &regions); err != nil {
		t.Fatalf("bad regions body: %v", err)
	}
	want := RegionInfo{Name: "square", Surfaces: 1, Vertices: 8, Depth: 2, Bounds: [4]float64{0, 0, 10, 10}}
	if len(regions.Regions) != 1 || regions.Regions[0] != want {
		t.Fatalf("expected %+v, got %+v", want, regions.Regions)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var health map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("bad health body: %v", err)
	}
	if health["status"] != "ready" || health["engine"] != "polygon" || health["regions"] != float64(1) {
		t.Fatalf("unexpected health %v", health)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/route", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected CORS header, got %q", got)
	}
}

func TestDirectEngineServer(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Navigation.Engine = "direct"
	})

	_, resp := postRoute(t, s, map[string]interface{}{
		"region": "square",
		"origin": navigation.Point{X: 1, Y: 1},
		"target": navigation.Point{X: 9, Y: 9},
	})
	if !resp.Direct || len(resp.Path) != 1 {
		t.Fatalf("direct engine should walk straight, got %+v", resp)
	}
}

func TestRegionExport(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/regions/square", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	region, err := navigation.ParseRegion("copy", rec.Body.Bytes(), navigation.LoadOptions{})
	if err != nil {
		t.Fatalf("export should parse back as a region: %v", err)
	}
	if region.Name != "square" || region.VertexCount() != 8 {
		t.Fatalf("unexpected exported region %q with %d vertices", region.Name, region.VertexCount())
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/regions/nowhere", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
