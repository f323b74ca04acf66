package graph

import (
	"bufio"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format is a graph export format.
type Format string

const (
	GraphML Format = "graphml"
	Mermaid Format = "mermaid"
	Neo4j   Format = "neo4j"
	JSON    Format = "json"
)

type exporter func(w io.Writer, g *Graph) error

var exporters = map[Format]exporter{
	GraphML: writeGraphML,
	Mermaid: writeMermaid,
	Neo4j:   writeNeo4j,
	JSON:    writeJSON,
}

// ParseFormat validates a format name.
func ParseFormat(value string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := exporters[f]; !ok {
		return "", fmt.Errorf("unsupported format: %s (choose from graphml, mermaid, neo4j, json)", value)
	}
	return f, nil
}

// Export writes g to w in the given format.
func Export(w io.Writer, g *Graph, format Format) error {
	exp, ok := exporters[format]
	if !ok {
		return fmt.Errorf("unsupported format: %s", format)
	}
	return exp(w, g)
}

// WriteFile exports g to path, creating parent directories.
func WriteFile(path string, g *Graph, format Format) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	bw := bufio.NewWriter(f)
	if err := Export(bw, g, format); err != nil {
		return err
	}
	return bw.Flush()
}

type graphMLKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type graphMLData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type graphMLNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphMLData `xml:"data"`
}

type graphMLEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphMLData `xml:"data"`
}

type graphMLGraph struct {
	ID          string        `xml:"id,attr,omitempty"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphMLNode `xml:"node"`
	Edges       []graphMLEdge `xml:"edge"`
}

type graphMLDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	Xmlns   string       `xml:"xmlns,attr"`
	Keys    []graphMLKey `xml:"key"`
	Graph   graphMLGraph `xml:"graph"`
}

func writeGraphML(w io.Writer, g *Graph) error {
	doc := graphMLDoc{
		Xmlns: "http://graphml.graphdrawing.org/xmlns",
		Keys: []graphMLKey{
			{ID: "d0", For: "node", AttrName: "label", AttrType: "string"},
			{ID: "d1", For: "node", AttrName: "type", AttrType: "string"},
			{ID: "d2", For: "edge", AttrName: "relationship", AttrType: "string"},
		},
		Graph: graphMLGraph{EdgeDefault: "directed"},
	}
	for _, n := range g.Nodes() {
		node := graphMLNode{ID: n.ID, Data: []graphMLData{{Key: "d0", Value: n.Label}}}
		if n.Type != "" {
			node.Data = append(node.Data, graphMLData{Key: "d1", Value: n.Type})
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, node)
	}
	for _, e := range g.Edges() {
		doc.Graph.Edges = append(doc.Graph.Edges, graphMLEdge{
			Source: e.Source,
			Target: e.Target,
			Data:   []graphMLData{{Key: "d2", Value: e.Relationship}},
		})
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func writeMermaid(w io.Writer, g *Graph) error {
	lines := []string{"graph TD"}
	for _, e := range g.Edges() {
		lines = append(lines, fmt.Sprintf("    %s -->|%s| %s", e.Source, e.Relationship, e.Target))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func cypherString(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

func writeNeo4j(w io.Writer, g *Graph) error {
	var lines []string
	for _, n := range g.Nodes() {
		label := n.Type
		if label == "" {
			label = "Node"
		}
		props := []string{"id: " + cypherString(n.ID), "label: " + cypherString(n.Label)}
		if n.Type != "" {
			props = append(props, "type: "+cypherString(n.Type))
		}
		lines = append(lines, fmt.Sprintf("MERGE (n:%s { %s });", label, strings.Join(props, ", ")))
	}
	for _, e := range g.Edges() {
		rel := strings.ToUpper(e.Relationship)
		if rel == "" {
			rel = "RELATED_TO"
		}
		lines = append(lines, fmt.Sprintf("MATCH (a { id: %s }), (b { id: %s }) CREATE (a)-[:%s]->(b);",
			cypherString(e.Source), cypherString(e.Target), rel))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

type jsonNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type,omitempty"`
}

type jsonLink struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	Relationship string `json:"relationship"`
}

type nodeLink struct {
	Directed   bool           `json:"directed"`
	Multigraph bool           `json:"multigraph"`
	Graph      map[string]any `json:"graph"`
	Nodes      []jsonNode     `json:"nodes"`
	Links      []jsonLink     `json:"links"`
}

func writeJSON(w io.Writer, g *Graph) error {
	data := nodeLink{
		Directed: true,
		Graph:    map[string]any{},
		Nodes:    make([]jsonNode, 0, len(g.Nodes())),
		Links:    make([]jsonLink, 0, len(g.Edges())),
	}
	for _, n := range g.Nodes() {
		data.Nodes = append(data.Nodes, jsonNode(n))
	}
	for _, e := range g.Edges() {
		data.Links = append(data.Links, jsonLink(e))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
