package navigation

// Blocked marks a missing edge in a weight matrix
const Blocked = -1.0

// Origin and target always occupy the first two node slots
const (
	OriginIndex = 0
	TargetIndex = 1
)

// VisibilityGraph is a symmetric weight matrix over query endpoints and region vertices
type VisibilityGraph struct {
	Nodes   []Point
	Weights [][]float64
}

// NewVisibilityGraph allocates a graph over nodes with every edge blocked
func NewVisibilityGraph(nodes []Point) *VisibilityGraph {
	weights := make([][]float64, len(nodes))
	for i := range weights {
		weights[i] = make([]float64, len(nodes))
		for j := range weights[i] {
			weights[i][j] = Blocked
		}
	}
	return &VisibilityGraph{Nodes: nodes, Weights: weights}
}

// Len returns the number of nodes
func (g *VisibilityGraph) Len() int {
	return len(g.Nodes)
}

// Connect sets the weight of edge i-j in both directions
func (g *VisibilityGraph) Connect(i, j int, cost float64) {
	g.Weights[i][j] = cost
	g.Weights[j][i] = cost
}

// HasEdge reports whether i and j are connected
func (g *VisibilityGraph) HasEdge(i, j int) bool {
	return g.Weights[i][j] != Blocked
}

// EdgeCount returns the number of undirected edges
func (g *VisibilityGraph) EdgeCount() int {
	count := 0
	for i := range g.Weights {
		for j := i + 1; j < len(g.Weights); j++ {
			if g.HasEdge(i, j) {
				count++
			}
		}
	}
	return count
}
