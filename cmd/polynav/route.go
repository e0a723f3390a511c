package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"polynav/config"
	"polynav/navigation"
	"polynav/server"
)

type routeFlags struct {
	configFile string
	region     string
	from       string
	to         string
	obstacles  []string
	agent      string
	evasion    string
	exact      bool
	verbose    bool
}

// RouteCmd computes a single route against a region file and prints it as JSON
func RouteCmd() *cobra.Command {
	var f routeFlags
	c := &cobra.Command{
		Use:   "route",
		Short: "compute one route",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoute(f, cmd.OutOrStdout())
		},
	}
	c.Flags().StringVar(&f.configFile, "config", "", "config file for navigation settings")
	c.Flags().StringVar(&f.region, "region", "", "GeoJSON region file")
	c.Flags().StringVar(&f.from, "from", "", "origin as x,y")
	c.Flags().StringVar(&f.to, "to", "", "target as x,y")
	c.Flags().StringArrayVar(&f.obstacles, "obstacle", nil, "character footprint as x,y,r[,moving] (repeatable)")
	c.Flags().StringVar(&f.agent, "agent", "", "id of the agent asking, never evaded")
	c.Flags().StringVar(&f.evasion, "evasion", "", "idle, all or none")
	c.Flags().BoolVar(&f.exact, "exact", false, "use exact segment intersection instead of sampling")
	c.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log progress to stderr")
	_ = c.MarkFlagRequired("region")
	_ = c.MarkFlagRequired("from")
	_ = c.MarkFlagRequired("to")
	return c
}

func runRoute(f routeFlags, out io.Writer) error {
	cfg := config.Default()
	if f.configFile != "" {
		var err error
		if cfg, err = config.Load(f.configFile); err != nil {
			return err
		}
	}
	if f.exact {
		cfg.Navigation.Occlusion = "exact"
	}
	if f.evasion != "" {
		cfg.Navigation.Evasion = f.evasion
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	origin, err := parsePoint(f.from)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	target, err := parsePoint(f.to)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}
	obstacles := make([]navigation.Obstacle, 0, len(f.obstacles))
	for i, s := range f.obstacles {
		o, err := parseObstacle(s)
		if err != nil {
			return fmt.Errorf("--obstacle %q: %w", s, err)
		}
		o.ID = fmt.Sprintf("obstacle-%d", i)
		obstacles = append(obstacles, o)
	}

	var logger *log.Logger
	if f.verbose {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	loadOpts := cfg.LoadOptions()
	loadOpts.Logger = logger
	region, err := navigation.LoadRegionFile(f.region, loadOpts)
	if err != nil {
		return err
	}

	kind, err := cfg.EngineKind()
	if err != nil {
		return err
	}
	engineOpts := cfg.EngineOptions()
	engineOpts.Logger = logger
	engine, err := navigation.NewEngine(kind, region, engineOpts)
	if err != nil {
		return err
	}

	route, err := engine.ComputePath(origin, target, navigation.Query{
		AgentID:   f.agent,
		Evasion:   cfg.DefaultEvasion(),
		Obstacles: obstacles,
	})
	if err != nil {
		return err
	}

	resp := server.RouteResponse{
		QueryID:  uuid.NewString(),
		Path:     route.Waypoints,
		Depth:    route.Depth,
		Success:  !route.Fallback,
		Direct:   route.Direct,
		Fallback: route.Fallback,
		Distance: route.Length(origin),
	}
	if route.Reason != nil {
		resp.Message = route.Reason.Error()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func parseFloats(s string, lo, hi int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) < lo || len(parts) > hi {
		return nil, fmt.Errorf("expected %d to %d comma separated values", lo, hi)
	}
	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func parsePoint(s string) (navigation.Point, error) {
	v, err := parseFloats(s, 2, 2)
	if err != nil {
		return navigation.Point{}, err
	}
	return navigation.Point{X: v[0], Y: v[1]}, nil
}

// parseObstacle reads x,y,r with an optional fourth field that marks the character as moving
func parseObstacle(s string) (navigation.Obstacle, error) {
	parts := strings.Split(s, ",")
	moving := false
	if len(parts) == 4 {
		if strings.TrimSpace(parts[3]) != "moving" {
			return navigation.Obstacle{}, fmt.Errorf("fourth field must be \"moving\"")
		}
		moving = true
		parts = parts[:3]
	}
	v, err := parseFloats(strings.Join(parts, ","), 3, 3)
	if err != nil {
		return navigation.Obstacle{}, err
	}
	return navigation.Obstacle{Center: navigation.Point{X: v[0], Y: v[1]}, Radius: v[2], Moving: moving}, nil
}
