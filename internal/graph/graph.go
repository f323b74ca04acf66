// Package graph builds a pattern relationship graph and exports it.
package graph

import (
	"strings"

	"github.com/verte-zerg/plminer/internal/model"
)

// Node types.
const (
	PatternNode = "pattern"
	TagNode     = "tag"
	ConceptNode = "concept"
)

// Edge relationships.
const (
	HasTag    = "has_tag"
	About     = "about"
	RelatedTo = "related_to"
	Contains  = "contains"
)

// Node is a graph vertex.
type Node struct {
	ID    string
	Label string
	Type  string
}

// Edge is a directed, labelled connection.
type Edge struct {
	Source       string
	Target       string
	Relationship string
}

// Graph is a directed graph that keeps insertion order. Re-adding a node updates its label and
// type; re-adding an edge updates its relationship.
type Graph struct {
	nodes     []Node
	nodeIndex map[string]int
	edges     []Edge
	edgeIndex map[[2]string]int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodeIndex: make(map[string]int), edgeIndex: make(map[[2]string]int)}
}

// AddNode inserts or updates a node.
func (g *Graph) AddNode(n Node) {
	if idx, ok := g.nodeIndex[n.ID]; ok {
		g.nodes[idx] = n
		return
	}
	g.nodeIndex[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

// AddEdge inserts or updates an edge. Missing endpoints are added with an empty type.
func (g *Graph) AddEdge(e Edge) {
	for _, id := range []string{e.Source, e.Target} {
		if _, ok := g.nodeIndex[id]; !ok {
			g.AddNode(Node{ID: id, Label: id})
		}
	}
	key := [2]string{e.Source, e.Target}
	if idx, ok := g.edgeIndex[key]; ok {
		g.edges[idx] = e
		return
	}
	g.edgeIndex[key] = len(g.edges)
	g.edges = append(g.edges, e)
}

// Nodes returns nodes in insertion order.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns edges in insertion order.
func (g *Graph) Edges() []Edge { return g.edges }

// SanitizeID turns a label into a node id by replacing spaces, hyphens and dots with
// underscores.
func SanitizeID(text string) string {
	return strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(strings.TrimSpace(text))
}

// Build adds a pattern node per pattern, keyed by its title, with has_tag, about and
// related_to edges. Subpattern and related-pattern ids resolve to the referenced pattern's node.
func Build(patterns []model.Pattern) *Graph {
	g := New()
	byID := make(map[string]string, len(patterns))
	for _, p := range patterns {
		if p.ID != "" {
			byID[p.ID] = title(p)
		}
	}
	addPattern := func(label string) string {
		id := SanitizeID(label)
		g.AddNode(Node{ID: id, Label: label, Type: PatternNode})
		return id
	}

	for _, p := range patterns {
		nodeID := addPattern(title(p))
		for _, tag := range p.Tags {
			tagID := SanitizeID(tag)
			g.AddNode(Node{ID: tagID, Label: tag, Type: TagNode})
			g.AddEdge(Edge{Source: nodeID, Target: tagID, Relationship: HasTag})
		}
		for _, concept := range p.Concepts {
			conceptID := SanitizeID(concept)
			g.AddNode(Node{ID: conceptID, Label: concept, Type: ConceptNode})
			g.AddEdge(Edge{Source: nodeID, Target: conceptID, Relationship: About})
		}
		related := append(append([]string(nil), p.Related...), p.RelatedPatterns...)
		for _, r := range related {
			if label, ok := byID[r]; ok {
				r = label
			}
			g.AddEdge(Edge{Source: nodeID, Target: addPattern(r), Relationship: RelatedTo})
		}
		for _, sub := range p.Subpatterns {
			label, ok := byID[sub]
			if !ok {
				continue
			}
			g.AddEdge(Edge{Source: nodeID, Target: SanitizeID(label), Relationship: Contains})
		}
	}
	return g
}

func title(p model.Pattern) string {
	if t := strings.TrimSpace(p.Title); t != "" {
		return t
	}
	if t := strings.TrimSpace(p.Name); t != "" {
		return t
	}
	return "Untitled"
}
