package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/objgraph/pkg/graph"
)

// record is a decoded vertex before it is added to a graph. Both codecs
// decode into records first so that validation is shared and a graph is
// only returned once every record has been accepted.
type record struct {
	id      graph.ID
	present bool
	data    []byte
	edges   []recordEdge
	offset  int64
}

type recordEdge struct {
	label  string
	to     graph.ID
	offset int64
}

func build(codec string, recs []record, opts []graph.Option) (*graph.Graph, error) {
	g := graph.New(append(opts, graph.WithCapacity(len(recs)))...)
	for _, rec := range recs {
		if err := g.Add(rec.id); err != nil {
			return nil, graph.WrapFormat(codec, rec.offset, err, "duplicate vertex")
		}
		if rec.present {
			_ = g.SetPayload(rec.id, rec.data)
		}
	}
	for _, rec := range recs {
		for _, e := range rec.edges {
			if err := graph.ValidateLabel(e.label); err != nil {
				return nil, graph.WrapFormat(codec, e.offset, err, "vertex %s", rec.id)
			}
			if _, dup := g.Target(rec.id, e.label); dup {
				return nil, graph.Formatf(codec, e.offset, "vertex %s has two edges labeled %q", rec.id, e.label)
			}
			if !g.Exists(e.to) {
				dangling := &graph.DanglingEdgeError{From: rec.id, Label: e.label, To: e.to}
				return nil, graph.WrapFormat(codec, e.offset, dangling, "unknown edge target")
			}
			if err := g.Connect(rec.id, e.label, e.to); err != nil {
				return nil, graph.WrapFormat(codec, e.offset, err, "connect")
			}
		}
	}
	return g, nil
}

// exportFile creates path and runs write on it, reporting close errors.
func exportFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f)
}
