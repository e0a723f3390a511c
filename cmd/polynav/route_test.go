package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"polynav/navigation"
	"polynav/server"
)

const squareRegion = `{"type": "Feature", "properties": {"name": "square"}, "geometry": {"type": "Polygon", "coordinates": [
	[[0,0],[10,0],[10,10],[0,10],[0,0]],
	[[4,4],[6,4],[6,6],[4,6],[4,4]]
]}}`

func runRouteJSON(t *testing.T, f routeFlags) server.RouteResponse {
	t.Helper()
	var out bytes.Buffer
	if err := runRoute(f, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp server.RouteResponse
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	return resp
}

func TestRunRoute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.geojson")
	if err := os.WriteFile(path, []byte(squareRegion), 0o644); err != nil {
		t.Fatal(err)
	}

	resp := runRouteJSON(t, routeFlags{region: path, from: "1,1", to: "9,9", exact: true})
	if !resp.Success || len(resp.Path) != 2 {
		t.Fatalf("expected a two waypoint route, got %+v", resp)
	}

	resp = runRouteJSON(t, routeFlags{region: path, from: "1,1", to: "9,9", obstacles: []string{"6.5,3.5,1.2,moving"}, evasion: "all"})
	if resp.Path[0] != (navigation.Point{X: 4, Y: 6}) {
		t.Fatalf("expected to avoid the obstacle via (4,6), got %v", resp.Path)
	}
}

func TestRunRouteErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.geojson")
	if err := os.WriteFile(path, []byte(squareRegion), 0o644); err != nil {
		t.Fatal(err)
	}

	for name, f := range map[string]routeFlags{
		"bad-from":     {region: path, from: "1", to: "9,9"},
		"bad-to":       {region: path, from: "1,1", to: "9,x"},
		"bad-obstacle": {region: path, from: "1,1", to: "9,9", obstacles: []string{"1,1,1,running"}},
		"bad-evasion":  {region: path, from: "1,1", to: "9,9", evasion: "sometimes"},
		"missing-file": {region: path + ".missing", from: "1,1", to: "9,9"},
	} {
		t.Run(name, func(t *testing.T) {
			if err := runRoute(f, &bytes.Buffer{}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseObstacle(t *testing.T) {
	o, err := parseObstacle("1.5, 2, 0.5, moving")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := navigation.Obstacle{Center: navigation.Point{X: 1.5, Y: 2}, Radius: 0.5, Moving: true}
	if o != want {
		t.Fatalf("expected %+v, got %+v", want, o)
	}
	if _, err := parseObstacle("1,2"); err == nil {
		t.Fatalf("expected error for missing radius")
	}
}
