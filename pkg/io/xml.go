package io

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/objgraph/pkg/graph"
	"github.com/matzehuels/objgraph/pkg/payload"
)

const codecXML = "xml"

// XMLVersion is the value of the version attribute written on <graph>.
const XMLVersion = "1"

type xmlGraph struct {
	XMLName  xml.Name      `xml:"graph"`
	Version  string        `xml:"version,attr"`
	Vertices []xmlVertex   `xml:"vertex"`
	Edges    *xmlEdgeGroup `xml:"edges,omitempty"`
}

type xmlVertex struct {
	ID    string    `xml:"id,attr"`
	Data  *string   `xml:"data,omitempty"`
	Edges []xmlEdge `xml:"edge"`
}

type xmlEdgeGroup struct {
	Edges []xmlEdge `xml:"edge"`
}

type xmlEdge struct {
	From  string `xml:"from,attr,omitempty"`
	Label string `xml:"label,attr"`
	To    string `xml:"to,attr"`
}

// MarshalXML encodes g as an indented XML document with header.
func MarshalXML(g *graph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteXML(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteXML encodes g as XML and writes it to w. Edges are nested under
// their source vertex.
func WriteXML(g *graph.Graph, w io.Writer) error {
	doc := xmlGraph{Version: XMLVersion, Vertices: make([]xmlVertex, 0, g.Len())}
	for id := range g.All() {
		v := xmlVertex{ID: strconv.FormatUint(uint64(id), 10)}
		if data, ok := g.Payload(id); ok {
			text := payload.Print(data)
			v.Data = &text
		}
		edges, err := g.Edges(id)
		if err != nil {
			return err
		}
		for _, e := range edges {
			v.Edges = append(v.Edges, xmlEdge{Label: e.Label, To: strconv.FormatUint(uint64(e.To), 10)})
		}
		doc.Vertices = append(doc.Vertices, v)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportXML writes g to an XML file at path.
func ExportXML(g *graph.Graph, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteXML(g, w) })
}

// UnmarshalXML decodes an XML document into a new graph built with opts.
//
// It returns a [*graph.FormatError] for malformed XML, a root element other
// than <graph>, an unknown version, a missing or non-numeric identity, a
// duplicate identity, bad payload hex, an invalid label, or an edge
// referencing an identity with no <vertex> element.
func UnmarshalXML(data []byte, opts ...graph.Option) (*graph.Graph, error) {
	return ReadXML(bytes.NewReader(data), opts...)
}

// ReadXML reads an XML document from r. See [UnmarshalXML].
// ReadXML does not close r.
func ReadXML(r io.Reader, opts ...graph.Option) (*graph.Graph, error) {
	var doc xmlGraph
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		var syn *xml.SyntaxError
		if errors.As(err, &syn) {
			return nil, graph.WrapFormat(codecXML, int64(syn.Line), err, "malformed document")
		}
		return nil, graph.WrapFormat(codecXML, -1, err, "malformed document")
	}
	if err := expectEnd(dec); err != nil {
		return nil, err
	}
	recs, err := doc.records()
	if err != nil {
		return nil, err
	}
	return build(codecXML, recs, opts)
}

// ImportXML reads an XML file at path. See [UnmarshalXML].
func ImportXML(path string, opts ...graph.Option) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadXML(f, opts...)
}

func (doc *xmlGraph) records() ([]record, error) {
	if doc.Version != "" && doc.Version != XMLVersion {
		return nil, graph.Formatf(codecXML, -1, "unsupported version %q", doc.Version)
	}
	recs := make([]record, 0, len(doc.Vertices))
	index := make(map[graph.ID]int, len(doc.Vertices))
	for _, v := range doc.Vertices {
		id, err := parseXMLID("vertex id", v.ID)
		if err != nil {
			return nil, err
		}
		rec := record{id: id, offset: -1}
		if v.Data != nil {
			data, err := payload.Parse(*v.Data)
			if err != nil {
				return nil, graph.WrapFormat(codecXML, -1, err, "vertex %s data", id)
			}
			rec.data, rec.present = data, true
		}
		for _, e := range v.Edges {
			if e.From != "" && e.From != v.ID {
				return nil, graph.Formatf(codecXML, -1, "edge %q nested in vertex %s names source %q", e.Label, id, e.From)
			}
			re, err := parseXMLEdge(e)
			if err != nil {
				return nil, err
			}
			rec.edges = append(rec.edges, re)
		}
		if _, dup := index[id]; !dup {
			index[id] = len(recs)
		}
		recs = append(recs, rec)
	}

	if doc.Edges == nil {
		return recs, nil
	}
	for _, e := range doc.Edges.Edges {
		from, err := parseXMLID("edge source", e.From)
		if err != nil {
			return nil, err
		}
		i, ok := index[from]
		if !ok {
			return nil, graph.WrapFormat(codecXML, -1, &graph.VertexError{ID: from}, "edge %q source", e.Label)
		}
		re, err := parseXMLEdge(e)
		if err != nil {
			return nil, err
		}
		recs[i].edges = append(recs[i].edges, re)
	}
	return recs, nil
}

func parseXMLEdge(e xmlEdge) (recordEdge, error) {
	to, err := parseXMLID("edge target", e.To)
	if err != nil {
		return recordEdge{}, err
	}
	return recordEdge{label: e.Label, to: to, offset: -1}, nil
}

func parseXMLID(what, s string) (graph.ID, error) {
	if s == "" {
		return 0, graph.Formatf(codecXML, -1, "missing %s", what)
	}
	id, err := graph.ParseID(s)
	if err != nil {
		return 0, graph.WrapFormat(codecXML, -1, err, "invalid %s %q", what, s)
	}
	return id, nil
}

// expectEnd checks that only whitespace, comments and processing
// instructions follow the </graph> element.
func expectEnd(dec *xml.Decoder) error {
	for {
		line, _ := dec.InputPos()
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return graph.WrapFormat(codecXML, int64(line), err, "content after </graph>")
		}
		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst:
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return graph.Formatf(codecXML, int64(line), "content after </graph>")
			}
		default:
			return graph.Formatf(codecXML, int64(line), "content after </graph>")
		}
	}
}
