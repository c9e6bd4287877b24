package io

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/matzehuels/objgraph/pkg/graph"
)

const (
	// Magic opens every binary document.
	Magic = "SODG"

	// Version is the binary format version written by this package.
	Version uint16 = 1

	headerSize = len(Magic) + 2

	// Smallest possible encodings, used to bound declared counts.
	minVertexSize = 4 // id, present, length, edges
	minEdgeSize   = 3 // label length, one label byte, target
)

const codecBinary = "binary"

// MarshalBinary encodes g in the binary format.
func MarshalBinary(g *graph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteBinary(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteBinary encodes g in the binary format and writes it to w.
func WriteBinary(g *graph.Graph, w io.Writer) error {
	bw := bufio.NewWriter(w)
	var scratch [binary.MaxVarintLen64]byte
	uvarint := func(n uint64) {
		bw.Write(scratch[:binary.PutUvarint(scratch[:], n)])
	}

	bw.WriteString(Magic)
	binary.Write(bw, binary.BigEndian, Version)
	uvarint(uint64(g.Len()))

	for id := range g.All() {
		uvarint(uint64(id))
		data, ok := g.Payload(id)
		if ok {
			bw.WriteByte(1)
		} else {
			bw.WriteByte(0)
		}
		uvarint(uint64(len(data)))
		bw.Write(data)

		edges, err := g.Edges(id)
		if err != nil {
			return err
		}
		uvarint(uint64(len(edges)))
		for _, e := range edges {
			uvarint(uint64(len(e.Label)))
			bw.WriteString(e.Label)
			uvarint(uint64(e.To))
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportBinary writes g to a binary file at path.
func ExportBinary(g *graph.Graph, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteBinary(g, w) })
}

// UnmarshalBinary decodes a binary document into a new graph built with opts.
//
// It returns a [*graph.FormatError] if the magic or version is wrong, a
// declared length overruns the input, a record is malformed, an identity is
// duplicated, a label is invalid, an edge targets an identity with no
// record, or bytes follow the last record.
func UnmarshalBinary(data []byte, opts ...graph.Option) (*graph.Graph, error) {
	d := &decoder{data: data}
	recs, err := d.document()
	if err != nil {
		return nil, err
	}
	return build(codecBinary, recs, opts)
}

// ReadBinary reads a binary document from r. See [UnmarshalBinary].
func ReadBinary(r io.Reader, opts ...graph.Option) (*graph.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return UnmarshalBinary(data, opts...)
}

// ImportBinary reads a binary file at path. See [UnmarshalBinary].
func ImportBinary(path string, opts ...graph.Option) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return UnmarshalBinary(data, opts...)
}

// =============================================================================
// Decoding
// =============================================================================

type decoder struct {
	data []byte
	off  int
}

func (d *decoder) remaining() int { return len(d.data) - d.off }

func (d *decoder) fail(format string, args ...any) error {
	return graph.Formatf(codecBinary, int64(d.off), format, args...)
}

func (d *decoder) uvarint(what string) (uint64, error) {
	n, size := binary.Uvarint(d.data[d.off:])
	switch {
	case size == 0:
		return 0, d.fail("truncated %s", what)
	case size < 0:
		return 0, d.fail("%s overflows 64 bits", what)
	}
	d.off += size
	return n, nil
}

func (d *decoder) count(what string, minSize int) (int, error) {
	n, err := d.uvarint(what)
	if err != nil {
		return 0, err
	}
	if n > uint64(d.remaining()/minSize) {
		return 0, d.fail("%s %d overruns the remaining %d bytes", what, n, d.remaining())
	}
	return int(n), nil
}

func (d *decoder) id(what string) (graph.ID, error) {
	start := d.off
	n, err := d.uvarint(what)
	if err != nil {
		return 0, err
	}
	if n > math.MaxUint32 {
		return 0, graph.Formatf(codecBinary, int64(start), "%s %d out of range", what, n)
	}
	return graph.ID(n), nil
}

func (d *decoder) bytes(what string) ([]byte, error) {
	n, err := d.uvarint(what + " length")
	if err != nil {
		return nil, err
	}
	if n > uint64(d.remaining()) {
		return nil, d.fail("%s length %d overruns the remaining %d bytes", what, n, d.remaining())
	}
	b := d.data[d.off : d.off+int(n)]
	d.off += int(n)
	return b, nil
}

func (d *decoder) document() ([]record, error) {
	if len(d.data) < headerSize {
		return nil, d.fail("truncated header")
	}
	if string(d.data[:len(Magic)]) != Magic {
		return nil, d.fail("bad magic %q", d.data[:len(Magic)])
	}
	d.off = len(Magic)
	if v := binary.BigEndian.Uint16(d.data[d.off:]); v != Version {
		return nil, d.fail("unsupported version %d", v)
	}
	d.off += 2

	n, err := d.count("vertex count", minVertexSize)
	if err != nil {
		return nil, err
	}
	recs := make([]record, 0, n)
	for range n {
		rec, err := d.record()
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if d.remaining() != 0 {
		return nil, d.fail("%d trailing bytes", d.remaining())
	}
	return recs, nil
}

func (d *decoder) record() (record, error) {
	var rec record
	var err error
	rec.offset = int64(d.off)
	if rec.id, err = d.id("vertex id"); err != nil {
		return rec, err
	}
	if d.remaining() == 0 {
		return rec, d.fail("truncated payload flag")
	}
	switch flag := d.data[d.off]; flag {
	case 0, 1:
		rec.present = flag == 1
	default:
		return rec, d.fail("invalid payload flag %d", flag)
	}
	d.off++

	data, err := d.bytes("payload")
	if err != nil {
		return rec, err
	}
	if !rec.present && len(data) > 0 {
		return rec, d.fail("vertex %s has %d payload bytes but no payload flag", rec.id, len(data))
	}
	rec.data = data

	n, err := d.count("edge count", minEdgeSize)
	if err != nil {
		return rec, err
	}
	rec.edges = make([]recordEdge, 0, n)
	for range n {
		off := int64(d.off)
		label, err := d.bytes("label")
		if err != nil {
			return rec, err
		}
		to, err := d.id("edge target")
		if err != nil {
			return rec, err
		}
		rec.edges = append(rec.edges, recordEdge{label: string(label), to: to, offset: off})
	}
	return rec, nil
}
