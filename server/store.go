package server

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"sync"

	"github.com/paulmach/orb/geojson"

	"polynav/navigation"
)

// ErrUnknownRegion is returned for queries naming a region that is not loaded
var ErrUnknownRegion = errors.New("unknown region")

// regionEntry serialises queries on one region; a query rewrites its dynamic holes
type regionEntry struct {
	mu     sync.Mutex
	region *navigation.Region
	engine navigation.Engine
}

// RegionInfo summarises a loaded region
type RegionInfo struct {
	Name     string     `json:"name"`
	Surfaces int        `json:"surfaces"`
	Vertices int        `json:"vertices"`
	Depth    float64    `json:"depth"`
	Bounds   [4]float64 `json:"bounds"`
}

// RegionStore holds the loaded regions and their engines
type RegionStore struct {
	kind     navigation.EngineKind
	engine   navigation.Options
	load     navigation.LoadOptions
	logger   *log.Logger
	mu       sync.RWMutex
	entries  map[string]*regionEntry
	fromFile map[string]string
}

// NewRegionStore creates an empty store that builds engines of the given kind
func NewRegionStore(kind navigation.EngineKind, engine navigation.Options, load navigation.LoadOptions, logger *log.Logger) *RegionStore {
	return &RegionStore{
		kind:     kind,
		engine:   engine,
		load:     load,
		logger:   logger,
		entries:  make(map[string]*regionEntry),
		fromFile: make(map[string]string),
	}
}

// Put adds or replaces a region
func (s *RegionStore) Put(region *navigation.Region) error {
	engine, err := navigation.NewEngine(s.kind, region, s.engine)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[region.Name] = &regionEntry{region: region, engine: engine}
	s.mu.Unlock()
	return nil
}

// Remove drops a region by name
func (s *RegionStore) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[name]
	delete(s.entries, name)
	return ok
}

// LoadFile (re)loads a region file. A region renamed by its properties replaces the old name.
func (s *RegionStore) LoadFile(path string) (*navigation.Region, error) {
	region, err := navigation.LoadRegionFile(path, s.load)
	if err != nil {
		return nil, err
	}
	key := filepath.Clean(path)

	s.mu.RLock()
	previous, hadPrevious := s.fromFile[key]
	s.mu.RUnlock()

	if err := s.Put(region); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if hadPrevious && previous != region.Name {
		delete(s.entries, previous)
	}
	s.fromFile[key] = region.Name
	s.mu.Unlock()
	return region, nil
}

// RemoveFile drops the region that was loaded from path
func (s *RegionStore) RemoveFile(path string) (string, bool) {
	key := filepath.Clean(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.fromFile[key]
	if !ok {
		return "", false
	}
	delete(s.fromFile, key)
	delete(s.entries, name)
	return name, true
}

// LoadDir loads every region file in dir and returns how many were loaded
func (s *RegionStore) LoadDir(dir string) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*"+navigation.RegionFileExt))
	if err != nil {
		return 0, err
	}
	loaded := 0
	for _, file := range files {
		region, err := s.LoadFile(file)
		if err != nil {
			s.logf("⚠️  Failed to load %s: %v\n", file, err)
			continue
		}
		s.logf("   ✅ Loaded region %q (%d surfaces, %d vertices)\n",
			region.Name, len(region.Surfaces), region.VertexCount())
		loaded++
	}
	return loaded, nil
}

// Len returns the number of loaded regions
func (s *RegionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Regions lists the loaded regions sorted by name
func (s *RegionStore) Regions() []RegionInfo {
	s.mu.RLock()
	entries := make([]*regionEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	infos := make([]RegionInfo, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		r := e.region
		b := r.Bounds()
		infos = append(infos, RegionInfo{
			Name:     r.Name,
			Surfaces: len(r.Surfaces),
			Vertices: r.VertexCount(),
			Depth:    r.Depth,
			Bounds:   [4]float64{b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y()},
		})
		e.mu.Unlock()
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Export returns a region as GeoJSON, including the holes cut by its last query
func (s *RegionStore) Export(name string) (*geojson.FeatureCollection, error) {
	s.mu.RLock()
	entry, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownRegion, name)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return navigation.RegionFeatureCollection(entry.region), nil
}

// Route runs one query against a region. Queries on the same region run one at a time.
func (s *RegionStore) Route(name string, origin, target navigation.Point, q navigation.Query) (*navigation.Route, error) {
	s.mu.RLock()
	entry, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownRegion, name)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.engine.ComputePath(origin, target, q)
}

func (s *RegionStore) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
