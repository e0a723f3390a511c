package navigation

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// RegionFileExt is the extension of region files in a region directory
const RegionFileExt = ".geojson"

// LoadOptions controls how region files become regions
type LoadOptions struct {
	SimplifyEpsilon float64
	ProbeRadius     float64
	Occlusion       OcclusionMode
	Logger          *log.Logger
}

// RegionNameFromPath returns the default region name for a file: its base name without extension
func RegionNameFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// LoadRegionFile reads a GeoJSON region file
func LoadRegionFile(path string, opts LoadOptions) (*Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read region file: %w", err)
	}
	return ParseRegion(RegionNameFromPath(path), data, opts)
}

// LoadRegionDir loads every region file in dir. Unreadable files are logged and skipped.
func LoadRegionDir(dir string, opts LoadOptions) ([]*Region, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*"+RegionFileExt))
	if err != nil {
		return nil, err
	}

	logf(opts.Logger, "Loading regions from %d GeoJSON files...\n", len(files))

	var regions []*Region
	for _, file := range files {
		region, err := LoadRegionFile(file, opts)
		if err != nil {
			logf(opts.Logger, "⚠️  Failed to load %s: %v\n", file, err)
			continue
		}
		logf(opts.Logger, "   ✅ Loaded region %q (%d surfaces, %d vertices) from %s\n",
			region.Name, len(region.Surfaces), region.VertexCount(), filepath.Base(file))
		regions = append(regions, region)
	}

	return regions, nil
}

// ParseRegion converts a GeoJSON FeatureCollection (or a single Feature) into a region.
// Polygon and MultiPolygon geometries become surfaces; inner rings become static holes.
func ParseRegion(name string, data []byte, opts LoadOptions) (*Region, error) {
	features, err := decodeFeatures(data)
	if err != nil {
		return nil, err
	}

	region := &Region{
		Name:        name,
		Transform:   IdentityTransform,
		ProbeRadius: opts.ProbeRadius,
		Occlusion:   opts.Occlusion,
	}

	var surfaces []Surface
	propsApplied := false
	for _, feature := range features {
		found := geometrySurfaces(feature.Geometry)
		if len(found) == 0 {
			continue
		}
		surfaces = append(surfaces, found...)

		if !propsApplied {
			propsApplied = applyProperties(region, feature.Properties)
		}
	}

	for i := range surfaces {
		surfaces[i] = RemoveContainedHoles(surfaces[i])
	}
	if opts.SimplifyEpsilon > 0 {
		surfaces = SimplifySurfaces(surfaces, opts.SimplifyEpsilon)
	}
	region.SetSurfaces(surfaces)

	if err := region.Validate(); err != nil {
		return nil, err
	}
	return region, nil
}

func decodeFeatures(data []byte) ([]*geojson.Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err == nil && len(fc.Features) > 0 {
		return fc.Features, nil
	}

	feature, ferr := geojson.UnmarshalFeature(data)
	if ferr == nil && feature.Geometry != nil {
		return []*geojson.Feature{feature}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse region GeoJSON: %w", err)
	}
	return nil, fmt.Errorf("failed to parse region GeoJSON: no features")
}

// applyProperties reads the region frame from feature properties. Reports whether any were set.
func applyProperties(region *Region, props geojson.Properties) bool {
	if len(props) == 0 {
		return false
	}
	if n := props.MustString("name", ""); n != "" {
		region.Name = n
	}
	region.Depth = props.MustFloat64("depth", 0)
	region.Transform = Transform{
		Offset: Point{
			X: props.MustFloat64("offset_x", 0),
			Y: props.MustFloat64("offset_y", 0),
		},
		Scale:    props.MustFloat64("scale", 1),
		Rotation: props.MustFloat64("rotation", 0),
	}
	return true
}

// geometrySurfaces converts GeoJSON geometry into surfaces
func geometrySurfaces(geometry orb.Geometry) []Surface {
	switch g := geometry.(type) {
	case orb.Polygon:
		if s, ok := polygonSurface(g); ok {
			return []Surface{s}
		}
	case orb.MultiPolygon:
		var surfaces []Surface
		for _, p := range g {
			if s, ok := polygonSurface(p); ok {
				surfaces = append(surfaces, s)
			}
		}
		return surfaces
	}
	return nil
}

func polygonSurface(p orb.Polygon) (Surface, bool) {
	if len(p) == 0 {
		return Surface{}, false
	}
	surface := Surface{Boundary: openRing(p[0])}
	for _, inner := range p[1:] {
		if ring := openRing(inner); len(ring) >= 3 {
			surface.Holes = append(surface.Holes, Hole{Ring: ring, Kind: HoleStatic})
		}
	}
	return surface, true
}

// openRing converts an orb ring to points, dropping the closing vertex and repeats
func openRing(r orb.Ring) []Point {
	ring := make([]Point, 0, len(r))
	for _, v := range r {
		p := pointFromOrb(v)
		if len(ring) > 0 && ring[len(ring)-1].Coincides(p) {
			continue
		}
		ring = append(ring, p)
	}
	if len(ring) > 1 && ring[0].Coincides(ring[len(ring)-1]) {
		ring = ring[:len(ring)-1]
	}
	return ring
}

// RegionFeatureCollection exports a region (including current dynamic holes) as GeoJSON
func RegionFeatureCollection(region *Region) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range region.Surfaces {
		poly := orb.Polygon{closedRing(s.Boundary)}
		for _, h := range s.Holes {
			poly = append(poly, closedRing(h.Ring))
		}
		feature := geojson.NewFeature(poly)
		feature.Properties["name"] = region.Name
		feature.Properties["depth"] = region.Depth
		feature.Properties["offset_x"] = region.Transform.Offset.X
		feature.Properties["offset_y"] = region.Transform.Offset.Y
		feature.Properties["scale"] = region.Transform.scale()
		feature.Properties["rotation"] = region.Transform.Rotation
		fc.Append(feature)
	}
	return fc
}

func closedRing(ring []Point) orb.Ring {
	r := make(orb.Ring, 0, len(ring)+1)
	for _, v := range ring {
		r = append(r, v.orb())
	}
	if len(ring) > 0 {
		r = append(r, ring[0].orb())
	}
	return r
}

func logf(logger *log.Logger, format string, args ...interface{}) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
