package navigation

import (
	"container/heap"
	"fmt"
	"math"
)

// queueItem is a tentative distance entry in the Dijkstra queue
type queueItem struct {
	NodeID   int
	Distance float64
}

// PriorityQueue implements heap.Interface ordered by distance, then node index
type PriorityQueue []queueItem

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	if pq[i].Distance != pq[j].Distance {
		return pq[i].Distance < pq[j].Distance
	}
	return pq[i].NodeID < pq[j].NodeID
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *PriorityQueue) Push(x interface{}) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

// ShortestPath runs Dijkstra over the graph's weight matrix and returns the node
// indices from source to destination inclusive. ErrPathNotFound is returned when the
// destination is unreachable or reconstruction exceeds maxNodes. A maxNodes of zero
// bounds reconstruction by the graph size, which no simple path can exceed.
func ShortestPath(graph *VisibilityGraph, source, destination, maxNodes int) ([]int, error) {
	n := graph.Len()
	if source < 0 || source >= n || destination < 0 || destination >= n {
		return nil, fmt.Errorf("node %d or %d outside graph of %d: %w", source, destination, n, ErrPathNotFound)
	}
	if maxNodes <= 0 {
		maxNodes = n
	}

	dist := make([]float64, n)
	prev := make([]int, n)
	visited := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = -1
	}
	dist[source] = 0

	openSet := &PriorityQueue{}
	heap.Init(openSet)
	heap.Push(openSet, queueItem{NodeID: source, Distance: 0})

	reached := false
	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(queueItem)
		u := current.NodeID
		if visited[u] || current.Distance > dist[u] {
			continue
		}
		visited[u] = true

		if u == destination {
			reached = true
			break
		}

		for v := 0; v < n; v++ {
			w := graph.Weights[u][v]
			if v == u || visited[v] || w == Blocked {
				continue
			}
			if alt := dist[u] + w; alt < dist[v] {
				dist[v] = alt
				prev[v] = u
				heap.Push(openSet, queueItem{NodeID: v, Distance: alt})
			}
		}
	}

	if !reached {
		return nil, fmt.Errorf("node %d unreachable from %d: %w", destination, source, ErrPathNotFound)
	}

	return reconstructPath(prev, source, destination, maxNodes)
}

// reconstructPath walks predecessors back from destination and reverses the result
func reconstructPath(prev []int, source, destination, maxNodes int) ([]int, error) {
	path := []int{destination}
	for cur := destination; cur != source; {
		cur = prev[cur]
		if cur < 0 {
			return nil, fmt.Errorf("broken predecessor chain at node %d: %w", path[len(path)-1], ErrPathNotFound)
		}
		path = append(path, cur)
		if len(path) > maxNodes {
			return nil, fmt.Errorf("path exceeds %d nodes: %w", maxNodes, ErrPathNotFound)
		}
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}
