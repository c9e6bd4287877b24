package io

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/objgraph/pkg/graph"
)

// Format selects a codec.
type Format int

const (
	FormatUnknown Format = iota
	FormatBinary
	FormatXML
	FormatCompressed
)

var formatNames = map[Format]string{
	FormatUnknown:    "unknown",
	FormatBinary:     "binary",
	FormatXML:        "xml",
	FormatCompressed: "zstd",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return "unknown"
}

// ParseFormat parses "binary", "xml" or "zstd" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary", "bin", "sodg":
		return FormatBinary, nil
	case "xml":
		return FormatXML, nil
	case "zstd", "zst", "compressed":
		return FormatCompressed, nil
	}
	return FormatUnknown, fmt.Errorf("unknown format %q (want binary, xml or zstd)", s)
}

// DetectFormat picks a format from the file extension: ".sodg" and ".bin"
// are binary, ".xml" is XML and ".zst" is compressed binary.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sodg", ".bin":
		return FormatBinary
	case ".xml":
		return FormatXML
	case ".zst", ".zstd":
		return FormatCompressed
	}
	return FormatUnknown
}

// Sniff picks a format from the first bytes of a document.
func Sniff(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte(Magic)):
		return FormatBinary
	case bytes.HasPrefix(data, zstdMagic):
		return FormatCompressed
	case bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n\ufeff"), []byte("<")):
		return FormatXML
	}
	return FormatUnknown
}

// Encode writes g to w in format f.
func Encode(g *graph.Graph, w io.Writer, f Format) error {
	switch f {
	case FormatBinary:
		return WriteBinary(g, w)
	case FormatXML:
		return WriteXML(g, w)
	case FormatCompressed:
		return WriteCompressed(g, w)
	}
	return fmt.Errorf("encode: unsupported format %s", f)
}

// Decode decodes data in format f. FormatUnknown sniffs the content.
func Decode(data []byte, f Format, opts ...graph.Option) (*graph.Graph, error) {
	if f == FormatUnknown {
		f = Sniff(data)
	}
	switch f {
	case FormatBinary:
		return UnmarshalBinary(data, opts...)
	case FormatXML:
		return UnmarshalXML(data, opts...)
	case FormatCompressed:
		return UnmarshalCompressed(data, opts...)
	}
	return nil, graph.Formatf("detect", 0, "unrecognized document")
}

// Save writes g to path in the format given by its extension.
// Unknown extensions get the binary format.
func Save(g *graph.Graph, path string) error {
	f := DetectFormat(path)
	if f == FormatUnknown {
		f = FormatBinary
	}
	return exportFile(path, func(w io.Writer) error { return Encode(g, w, f) })
}

// Load reads the graph at path, choosing the codec from the extension or,
// failing that, from the content.
func Load(path string, opts ...graph.Option) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	g, err := Decode(data, DetectFormat(path), opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return g, nil
}
