// aviation/graph.go

package aviation

import (
	"container/heap"
	"sort"

	"github.com/iancoleman/orderedmap"

	"github.com/mmp/aerosim/math"
)

// Edge is one undirected route between two airports.
type Edge struct {
	U, V             string
	PassengersAnnual float64
	DistanceKM       float64
	Weight           float64 // w_ij, normalised so edges with positive weight sum to 1.
}

// Graph is an undirected weighted network of airports. Edge iteration order
// is the order edges were added -- a property the plan generator's
// multinomial draw and the determinism testable property both depend on --
// which a plain Go map cannot offer, since map iteration order is
// randomized per process.
type Graph struct {
	nodes []string
	adj   map[string]*orderedmap.OrderedMap // node -> (neighbor -> *Edge)
	order *orderedmap.OrderedMap            // "u|v" -> *Edge, insertion order
}

func NewGraph() *Graph {
	return &Graph{
		adj:   make(map[string]*orderedmap.OrderedMap),
		order: orderedmap.New(),
	}
}

func edgeKey(u, v string) string {
	if u <= v {
		return u + "|" + v
	}
	return v + "|" + u
}

// AddNode registers a node with no edges, if not already present.
func (g *Graph) AddNode(id string) {
	if _, ok := g.adj[id]; !ok {
		g.adj[id] = orderedmap.New()
		g.nodes = append(g.nodes, id)
	}
}

// AddPassengers accumulates annual passenger weight onto the edge {u, v},
// creating it (and its nodes) if necessary.
func (g *Graph) AddPassengers(u, v string, passengers float64) {
	g.AddNode(u)
	g.AddNode(v)

	key := edgeKey(u, v)
	if existing, ok := g.order.Get(key); ok {
		e := existing.(*Edge)
		e.PassengersAnnual += passengers
		return
	}

	e := &Edge{U: u, V: v, PassengersAnnual: passengers}
	g.order.Set(key, e)
	g.adj[u].Set(v, e)
	g.adj[v].Set(u, e)
}

// AddUniformEdge adds an edge with a fixed passenger weight of 1, used by
// the complete-graph fallback when no flow data covers any route.
func (g *Graph) AddUniformEdge(u, v string) {
	g.AddPassengers(u, v, 1.0)
}

// Nodes returns the node ids in insertion order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	edges := make([]*Edge, 0, len(g.order.Keys()))
	for _, k := range g.order.Keys() {
		v, _ := g.order.Get(k)
		edges = append(edges, v.(*Edge))
	}
	return edges
}

// Neighbors returns the edges incident on node, in the order they were
// added to that node.
func (g *Graph) Neighbors(node string) []*Edge {
	om, ok := g.adj[node]
	if !ok {
		return nil
	}
	edges := make([]*Edge, 0, len(om.Keys()))
	for _, k := range om.Keys() {
		v, _ := om.Get(k)
		edges = append(edges, v.(*Edge))
	}
	return edges
}

// Other returns the endpoint of e that isn't node.
func (e *Edge) Other(node string) string {
	if e.U == node {
		return e.V
	}
	return e.U
}

// NormalizeWeights sets each edge's Weight to PassengersAnnual / total. If
// total is zero, every edge gets a uniform weight of 1/len(edges) -- the
// same "total == 0" fallback the source applies, here applied per-graph
// rather than requiring the caller to rebuild the whole edge set as a
// complete graph (BuildGraph performs that rebuild before calling this, to
// match the source's observable behavior exactly).
func (g *Graph) NormalizeWeights() {
	edges := g.Edges()
	total := 0.0
	for _, e := range edges {
		total += e.PassengersAnnual
	}
	if total <= 0 {
		if len(edges) == 0 {
			return
		}
		w := 1.0 / float64(len(edges))
		for _, e := range edges {
			e.Weight = w
		}
		return
	}
	for _, e := range edges {
		e.Weight = e.PassengersAnnual / total
	}
}

// SetDistances computes great-circle distance for every edge from the
// supplied positions.
func (g *Graph) SetDistances(positions map[string]math.LatLon) {
	for _, e := range g.Edges() {
		e.DistanceKM = math.GreatCircleKM(positions[e.U], positions[e.V])
	}
}

// BuildGraph constructs the network from per-route annual-passenger rows
// and a position table, falling back to a uniformly-weighted complete graph
// if no route carries positive passenger weight. Grounded on
// preparar_grafo.py's _anadir_pesos / _anadir_distancias.
func BuildGraph(routePassengers map[[2]string]float64, positions map[string]math.LatLon) *Graph {
	g := NewGraph()

	// Insert routes in sorted pair order so edge order is a function of the
	// route table's contents, not of Go's randomized map iteration.
	pairs := make([][2]string, 0, len(routePassengers))
	for pair := range routePassengers {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	total := 0.0
	for _, pair := range pairs {
		pax := routePassengers[pair]
		if pax <= 0 {
			continue
		}
		if _, ok := positions[pair[0]]; !ok {
			continue
		}
		if _, ok := positions[pair[1]]; !ok {
			continue
		}
		g.AddPassengers(pair[0], pair[1], pax)
		total += pax
	}

	if total <= 0 {
		g = NewGraph()
		ids := make([]string, 0, len(positions))
		for id := range positions {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for i, u := range ids {
			for _, v := range ids[i+1:] {
				g.AddUniformEdge(u, v)
			}
		}
	}

	g.NormalizeWeights()
	g.SetDistances(positions)
	return g
}

// TrafficByNode sums the weight (preferring raw passenger counts, falling
// back to w_ij) of every edge touching each node, excluding Exterior.
// Grounded on _calcular_trafico_por_aeropuerto / _trafico_por_nodo.
func (g *Graph) TrafficByNode() map[string]float64 {
	traf := make(map[string]float64)
	for _, n := range g.nodes {
		if n != Exterior {
			traf[n] = 0
		}
	}

	total := 0.0
	for _, e := range g.Edges() {
		if e.U == Exterior || e.V == Exterior {
			continue
		}
		w := e.PassengersAnnual
		if w <= 0 {
			w = e.Weight
		}
		if w < 0 {
			w = 0
		}
		total += w
		traf[e.U] += w
		traf[e.V] += w
	}

	allZero := true
	for _, v := range traf {
		if v != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		for n := range traf {
			traf[n] = float64(len(g.Neighbors(n)))
		}
	}

	if total > 0 {
		allFraction := true
		for _, v := range traf {
			if v > 1.0 {
				allFraction = false
				break
			}
		}
		if allFraction {
			sum := 0.0
			for _, v := range traf {
				sum += v
			}
			if sum > 1e-9 {
				for n, v := range traf {
					traf[n] = v / sum
				}
			}
		}
	}

	return traf
}

///////////////////////////////////////////////////////////////////////////
// Shortest path (Dijkstra), weighted by DistanceKM.

type pqItem struct {
	node string
	dist float64
	idx  int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].idx, pq[j].idx = i, j
}
func (pq *priorityQueue) Push(x any) {
	item := x.(*pqItem)
	item.idx = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

// ShortestPathKM returns the shortest-path distance in km between from and
// to, weighted by edge DistanceKM, and whether a path exists.
func (g *Graph) ShortestPathKM(from, to string) (float64, bool) {
	if from == to {
		return 0, true
	}

	dist := map[string]float64{from: 0}
	visited := make(map[string]bool)

	pq := &priorityQueue{{node: from, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		if visited[item.node] {
			continue
		}
		visited[item.node] = true
		if item.node == to {
			return item.dist, true
		}

		for _, e := range g.Neighbors(item.node) {
			next := e.Other(item.node)
			if visited[next] {
				continue
			}
			nd := item.dist + e.DistanceKM
			if cur, ok := dist[next]; !ok || nd < cur {
				dist[next] = nd
				heap.Push(pq, &pqItem{node: next, dist: nd})
			}
		}
	}

	d, ok := dist[to]
	return d, ok && visited[to]
}

// DeriveCapacitiesFromTraffic implements spec's
// cap_i = round(cap_min + (pax_i/pax_max)*(cap_max-cap_min)), lower-bounded
// at 1.
func DeriveCapacitiesFromTraffic(traffic map[string]float64, capMin, capMax int) map[string]int {
	paxMax := 0.0
	for _, v := range traffic {
		if v > paxMax {
			paxMax = v
		}
	}
	caps := make(map[string]int, len(traffic))
	for id, pax := range traffic {
		c := capMin
		if paxMax > 0 {
			frac := pax / paxMax
			c = int(math.Round(float64(capMin) + frac*float64(capMax-capMin)))
		}
		if c < 1 {
			c = 1
		}
		caps[id] = c
	}
	return caps
}
