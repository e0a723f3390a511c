package navigation

import (
	"fmt"
	"log"
)

// DefaultMaxGraphNodes is the node count above which a visibility graph is refused
const DefaultMaxGraphNodes = 1000

// BuildVisibilityGraph constructs a visibility graph from origin, target and the
// region's vertices, all in local space. Origin is node 0 and target node 1.
func BuildVisibilityGraph(region *Region, origin, target Point, maxNodes int, logger *log.Logger) (*VisibilityGraph, error) {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxGraphNodes
	}

	nodes := []Point{origin, target}
	for _, v := range region.VertexData() {
		// Skip vertices already present (the endpoints, or shared ring vertices)
		if containsPoint(nodes, v) {
			continue
		}
		nodes = append(nodes, v)
	}

	totalNodes := len(nodes)
	totalPossibleEdges := (totalNodes * (totalNodes - 1)) / 2
	if logger != nil {
		logger.Printf("   Unique nodes: %d\n", totalNodes)
		logger.Printf("   Checking up to %d possible edges...\n", totalPossibleEdges)
	}

	// Safety limit: prevent massive graphs
	if totalNodes > maxNodes {
		return nil, fmt.Errorf("%d nodes exceeds limit %d: %w", totalNodes, maxNodes, ErrGraphTooLarge)
	}

	graph := NewVisibilityGraph(nodes)

	// Connect nodes that have line-of-sight; each pair is tested once
	for i := 0; i < totalNodes; i++ {
		for j := i + 1; j < totalNodes; j++ {
			if region.IsSegmentClear(nodes[i], nodes[j]) {
				graph.Connect(i, j, nodes[i].Distance(nodes[j]))
			}
		}
	}

	if logger != nil {
		logger.Printf("   Edges added: %d\n", graph.EdgeCount())
	}

	return graph, nil
}
