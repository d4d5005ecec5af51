package network

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/huangsam/govscope/core/algo"
	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
)

// Centrality parameters.
const (
	PageRankDamping      = 0.85
	PageRankTolerance    = 1e-10
	PageRankMaxIter      = 1000
	EigenvectorMaxIter   = 1000
	EigenvectorTolerance = 1e-6
	DefaultTopEdges      = 25
	MetricDecimals       = 12
)

var metricScale = math.Pow10(MetricDecimals)

// Metric names reported in failed_metrics.
const (
	MetricBetweenness = "betweenness"
	MetricCloseness   = "closeness"
	MetricEigenvector = "eigenvector"
	MetricPageRank    = "pagerank"
)

var (
	// ErrNotConverged is returned when a power iteration hits its limit.
	ErrNotConverged = errors.New("centrality did not converge")

	// ErrEmptyGraph is returned by metrics that are undefined without nodes.
	ErrEmptyGraph = errors.New("graph has no nodes")
)

// Options tune Analyze.
type Options struct {
	TopN     []int
	TopEdges int
}

// Analyze computes every node metric and the graph-level statistics.
// Each centrality is computed independently: a failing metric is zero for
// every node and listed in FailedMetrics, and the others still run.
func Analyze(g *Graph, opts Options) schema.NetworkResult {
	if opts.TopEdges <= 0 {
		opts.TopEdges = DefaultTopEdges
	}
	result := schema.NetworkResult{
		Relation: g.relation,
		Stats:    g.stats(),
		Nodes:    []schema.NodeMetrics{},
		TopEdges: []schema.Edge{},
	}
	n := g.NodeCount()
	if n == 0 {
		result.OutStrengthConcentration = algo.ComputeWeighted(nil, opts.TopN)
		result.InStrengthConcentration = algo.ComputeWeighted(nil, opts.TopN)
		result.PageRankConcentration = algo.ComputeWeighted(nil, opts.TopN)
		return result
	}

	nodes := g.degrees()

	metrics := []struct {
		name string
		fn   func(*Graph) ([]float64, error)
		set  func(*schema.NodeMetrics, float64)
	}{
		{MetricBetweenness, Betweenness, func(m *schema.NodeMetrics, v float64) { m.Betweenness = v }},
		{MetricCloseness, Closeness, func(m *schema.NodeMetrics, v float64) { m.Closeness = v }},
		{MetricEigenvector, Eigenvector, func(m *schema.NodeMetrics, v float64) { m.Eigenvector = v }},
		{MetricPageRank, PageRank, func(m *schema.NodeMetrics, v float64) { m.PageRank = v }},
	}
	for _, metric := range metrics {
		values, err := safeMetric(g, metric.fn)
		if err != nil {
			contract.Named("network").Warn().Err(err).
				Str("relation", string(g.relation)).
				Str("metric", metric.name).
				Msg("centrality failed, defaulting to zero")
			result.FailedMetrics = append(result.FailedMetrics, metric.name)
			continue
		}
		for i := range nodes {
			metric.set(&nodes[i], stable(values[i]))
		}
	}

	outStrength := make(map[string]float64, n)
	inStrength := make(map[string]float64, n)
	pageRank := make(map[string]float64, n)
	for _, m := range nodes {
		outStrength[m.Participant] = float64(m.OutStrength)
		inStrength[m.Participant] = float64(m.InStrength)
		pageRank[m.Participant] = m.PageRank
	}
	result.OutStrengthConcentration = algo.ComputeWeighted(outStrength, opts.TopN)
	result.InStrengthConcentration = algo.ComputeWeighted(inStrength, opts.TopN)
	result.PageRankConcentration = algo.ComputeWeighted(pageRank, opts.TopN)

	result.Nodes = algo.Rank(nodes, 0,
		func(m schema.NodeMetrics) float64 { return m.PageRank },
		func(m schema.NodeMetrics) string { return m.Participant })
	edges := g.Edges()
	if len(edges) > opts.TopEdges {
		edges = edges[:opts.TopEdges]
	}
	result.TopEdges = edges
	return result
}

// safeMetric runs one metric and turns a panic or a malformed result into an error.
func safeMetric(g *Graph, fn func(*Graph) ([]float64, error)) (values []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			values, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	values, err = fn(g)
	if err == nil && len(values) != g.NodeCount() {
		err = fmt.Errorf("expected %d values, got %d", g.NodeCount(), len(values))
	}
	return values, err
}

// degrees returns the per-node degree and strength metrics in node id order.
func (g *Graph) degrees() []schema.NodeMetrics {
	n := len(g.names)
	nodes := make([]schema.NodeMetrics, n)
	for i, name := range g.names {
		nodes[i] = schema.NodeMetrics{Participant: name, Role: g.roles[name]}
	}
	for k, w := range g.weights {
		src, dst := &nodes[g.index[k.source]], &nodes[g.index[k.target]]
		src.OutDegree++
		src.OutStrength += w
		dst.InDegree++
		dst.InStrength += w
	}
	if n > 1 {
		for i := range nodes {
			nodes[i].Degree = float64(nodes[i].InDegree+nodes[i].OutDegree) / float64(n-1)
		}
	}
	return nodes
}

// stats returns the graph-level counts and ratios.
func (g *Graph) stats() schema.NetworkStats {
	n := len(g.names)
	s := schema.NetworkStats{Nodes: n, Edges: len(g.weights)}
	reciprocal := 0
	for k, w := range g.weights {
		s.TotalWeight += w
		if _, ok := g.weights[edgeKey{k.target, k.source}]; ok {
			reciprocal++
		}
	}
	if n > 1 {
		s.Density = float64(s.Edges) / float64(n*(n-1))
	}
	if s.Edges > 0 {
		s.Reciprocity = float64(reciprocal) / float64(s.Edges)
	}
	return s
}

// Betweenness returns the weighted betweenness of each node, using 1/weight
// as edge length, normalized by 1/((n-1)(n-2)).
func Betweenness(g *Graph) ([]float64, error) {
	n := g.NodeCount()
	out := make([]float64, n)
	if n < 3 {
		return out, nil
	}
	dg := g.distances()
	raw := network.BetweennessWeighted(dg, path.DijkstraAllPaths(dg))
	scale := 1 / float64((n-1)*(n-2))
	for id, v := range raw {
		out[id] = v * scale
	}
	return out, nil
}

// Closeness returns the Wasserman-Faust closeness of each node over incoming
// shortest paths, using 1/weight as edge length. Nodes nobody reaches get 0.
func Closeness(g *Graph) ([]float64, error) {
	n := g.NodeCount()
	out := make([]float64, n)
	if n < 2 {
		return out, nil
	}
	paths := path.DijkstraAllPaths(g.distances())
	for u := range n {
		var total float64
		reached := 0
		for v := range n {
			if u == v {
				continue
			}
			d := paths.Weight(int64(v), int64(u))
			if math.IsInf(d, 1) || math.IsNaN(d) {
				continue
			}
			total += d
			reached++
		}
		if total > 0 {
			r := float64(reached)
			out[u] = (r / float64(n-1)) * (r / total)
		}
	}
	return out, nil
}

// PageRank returns the edge-weighted PageRank of each node by power
// iteration from the uniform vector. Rank held by nodes without out-edges is
// spread evenly over every node. It gives up with ErrNotConverged after
// PageRankMaxIter iterations.
func PageRank(g *Graph) ([]float64, error) {
	n := g.NodeCount()
	if n == 0 {
		return nil, ErrEmptyGraph
	}
	arcs := g.arcs()
	outWeight := make([]float64, n)
	for _, a := range arcs {
		outWeight[a.from] += a.w
	}

	x := uniform(n)
	next := make([]float64, n)
	for range PageRankMaxIter {
		var dangling float64
		for u, w := range outWeight {
			if w == 0 {
				dangling += x[u]
			}
		}
		base := (1-PageRankDamping)/float64(n) + PageRankDamping*dangling/float64(n)
		for i := range next {
			next[i] = base
		}
		for _, a := range arcs {
			next[a.to] += PageRankDamping * x[a.from] * a.w / outWeight[a.from]
		}
		diff := floats.Distance(next, x, 1)
		x, next = next, x
		if diff < float64(n)*PageRankTolerance {
			return x, nil
		}
	}
	return nil, ErrNotConverged
}

// Eigenvector returns the in-edge eigenvector centrality of each node by
// power iteration on (A^T + I), normalized to unit length. It gives up with
// ErrNotConverged after EigenvectorMaxIter iterations.
func Eigenvector(g *Graph) ([]float64, error) {
	n := g.NodeCount()
	if n == 0 {
		return nil, ErrEmptyGraph
	}
	arcs := g.arcs()
	x := uniform(n)
	last := make([]float64, n)
	for range EigenvectorMaxIter {
		copy(last, x)
		for _, a := range arcs {
			x[a.to] += last[a.from] * a.w
		}
		norm := floats.Norm(x, 2)
		if norm == 0 {
			return nil, ErrNotConverged
		}
		floats.Scale(1/norm, x)
		if floats.Distance(x, last, 1) < float64(n)*EigenvectorTolerance {
			return x, nil
		}
	}
	return nil, ErrNotConverged
}

// arc is one weighted edge between node ids.
type arc struct {
	from, to int64
	w        float64
}

// arcs returns the edges sorted by node ids, so iterative metrics add terms
// in the same order on every run.
func (g *Graph) arcs() []arc {
	arcs := make([]arc, 0, len(g.weights))
	for k, w := range g.weights {
		arcs = append(arcs, arc{g.index[k.source], g.index[k.target], float64(w)})
	}
	slices.SortFunc(arcs, func(a, b arc) int {
		return cmp.Or(cmp.Compare(a.from, b.from), cmp.Compare(a.to, b.to))
	})
	return arcs
}

func uniform(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = 1 / float64(n)
	}
	return x
}

// stable rounds a metric to MetricDecimals places. Shortest-path metrics
// accumulate floats in map order inside gonum, and rounding removes that
// last-bit noise from the output.
func stable(v float64) float64 {
	return math.Round(v*metricScale) / metricScale
}
