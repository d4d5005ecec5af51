// Package network builds weighted influence graphs between participants and
// computes their centrality.
package network

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/schema"
	"gonum.org/v1/gonum/graph/simple"
)

type edgeKey struct {
	source, target string
}

// Graph is a directed influence graph with integer interaction weights.
// Node ids are assigned from the sorted participant names so every metric is
// reproducible across runs.
type Graph struct {
	relation schema.Relation
	names    []string
	index    map[string]int64
	weights  map[edgeKey]int
	roles    map[string]schema.Role
}

// Build constructs the graph of one relation. Edges point from the acting
// participant to the one acted upon: reviewer to author, merger to author,
// replier to original poster. Self edges are never created and repeated
// interactions accumulate into one edge weight. Endpoints are passed through
// the resolver so raw reply targets land on canonical ids.
func Build(records []schema.EnrichedRecord, relation schema.Relation, resolver contract.IdentityResolver, tl contract.MaintainerTimeline) (*Graph, error) {
	resolve := func(id string) string {
		if resolver == nil || id == "" {
			return id
		}
		return resolver.Resolve(id)
	}

	weights := make(map[edgeKey]int)
	add := func(source, target string) {
		source, target = resolve(source), resolve(target)
		if source == "" || target == "" || source == target {
			return
		}
		weights[edgeKey{source, target}]++
	}

	switch relation {
	case schema.ReviewRelation:
		for i := range records {
			r := &records[i]
			for _, rv := range r.ReviewMetrics.Reviews {
				add(rv.Author, r.CanonicalAuthor)
			}
		}
	case schema.MergeRelation:
		for i := range records {
			r := &records[i]
			if r.Kind == schema.PullKind && r.IsMerged() {
				add(r.CanonicalMergedBy, r.CanonicalAuthor)
			}
		}
	case schema.CommunicationRelation:
		messageAuthors := make(map[string]string)
		for i := range records {
			if r := &records[i]; r.Kind == schema.EmailKind && r.ID != "" {
				messageAuthors[r.ID] = r.CanonicalAuthor
			}
		}
		for i := range records {
			r := &records[i]
			switch r.Kind {
			case schema.EmailKind:
				if parent, ok := messageAuthors[r.InReplyTo]; ok {
					add(r.CanonicalAuthor, parent)
				}
			case schema.IRCKind:
				add(r.CanonicalAuthor, r.InReplyTo)
			default:
				for _, c := range r.CanonicalCommenters {
					add(c, r.CanonicalAuthor)
				}
			}
		}
	default:
		return nil, fmt.Errorf("unknown relation %q", relation)
	}

	return newGraph(relation, weights, contributors(records), tl), nil
}

// contributors returns the canonical authors of pull requests.
func contributors(records []schema.EnrichedRecord) map[string]struct{} {
	out := make(map[string]struct{})
	for i := range records {
		if r := &records[i]; r.Kind == schema.PullKind && r.CanonicalAuthor != "" {
			out[r.CanonicalAuthor] = struct{}{}
		}
	}
	return out
}

func newGraph(relation schema.Relation, weights map[edgeKey]int, developers map[string]struct{}, tl contract.MaintainerTimeline) *Graph {
	nameSet := make(map[string]struct{})
	for k := range weights {
		nameSet[k.source] = struct{}{}
		nameSet[k.target] = struct{}{}
	}
	g := &Graph{
		relation: relation,
		names:    slices.Sorted(maps.Keys(nameSet)),
		index:    make(map[string]int64, len(nameSet)),
		weights:  weights,
		roles:    make(map[string]schema.Role, len(nameSet)),
	}
	for i, name := range g.names {
		g.index[name] = int64(i)
		switch _, dev := developers[name]; {
		case tl != nil && tl.IsMaintainer(name, nil):
			g.roles[name] = schema.MaintainerRole
		case dev:
			g.roles[name] = schema.DeveloperRole
		default:
			g.roles[name] = schema.ParticipantRole
		}
	}
	return g
}

// Relation returns the relation the graph was built from.
func (g *Graph) Relation() schema.Relation { return g.relation }

// NodeCount returns the number of participants in the graph.
func (g *Graph) NodeCount() int { return len(g.names) }

// EdgeCount returns the number of collapsed edges.
func (g *Graph) EdgeCount() int { return len(g.weights) }

// Weight returns the weight of the edge from source to target, or 0.
func (g *Graph) Weight(source, target string) int {
	return g.weights[edgeKey{source, target}]
}

// Edges returns every edge sorted by weight descending, then source and target.
func (g *Graph) Edges() []schema.Edge {
	edges := make([]schema.Edge, 0, len(g.weights))
	for k, w := range g.weights {
		edges = append(edges, schema.Edge{Source: k.source, Target: k.target, Weight: w})
	}
	slices.SortFunc(edges, func(a, b schema.Edge) int {
		return cmp.Or(
			cmp.Compare(b.Weight, a.Weight),
			cmp.Compare(a.Source, b.Source),
			cmp.Compare(a.Target, b.Target),
		)
	})
	return edges
}

// distances returns the gonum form with 1/weight as edge length, so frequent
// interaction means a shorter path.
func (g *Graph) distances() *simple.WeightedDirectedGraph {
	return g.gonum(func(w int) float64 { return 1 / float64(w) })
}

func (g *Graph) gonum(weight func(int) float64) *simple.WeightedDirectedGraph {
	wg := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	for i := range g.names {
		wg.AddNode(simple.Node(int64(i)))
	}
	for k, w := range g.weights {
		from, to := wg.Node(g.index[k.source]), wg.Node(g.index[k.target])
		wg.SetWeightedEdge(wg.NewWeightedEdge(from, to, weight(w)))
	}
	return wg
}
