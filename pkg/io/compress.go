package io

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/objgraph/pkg/graph"
)

// MaxDecompressedSize bounds the decoded size of a compressed document.
const MaxDecompressedSize = 1 << 30

// zstdMagic opens every zstd frame.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// decompressLimit is MaxDecompressedSize; tests lower it.
var decompressLimit uint64 = MaxDecompressedSize

func newDecoder(r io.Reader) (*zstd.Decoder, error) {
	return zstd.NewReader(r, zstd.WithDecoderMaxMemory(decompressLimit))
}

// WriteCompressed writes g to w as a zstd-compressed binary document.
func WriteCompressed(g *graph.Graph, w io.Writer) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating zstd encoder: %w", err)
	}
	if err := WriteBinary(g, enc); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing encoder: %w", err)
	}
	return nil
}

// ReadCompressed reads a zstd-compressed binary document from r.
// A broken zstd stream, or one that inflates past [MaxDecompressedSize], is
// reported as a [*graph.FormatError].
func ReadCompressed(r io.Reader, opts ...graph.Option) (*graph.Graph, error) {
	dec, err := newDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(io.LimitReader(dec, int64(decompressLimit)+1))
	if err != nil {
		return nil, graph.WrapFormat("zstd", -1, err, "decompressing")
	}
	if uint64(len(data)) > decompressLimit {
		return nil, graph.Formatf("zstd", -1, "decompressed size exceeds %d bytes", decompressLimit)
	}
	return UnmarshalBinary(data, opts...)
}

// MarshalCompressed returns the zstd-compressed binary encoding of g.
func MarshalCompressed(g *graph.Graph) ([]byte, error) {
	raw, err := MarshalBinary(g)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// UnmarshalCompressed decodes the output of [MarshalCompressed]. The same
// size bound as [ReadCompressed] applies.
func UnmarshalCompressed(data []byte, opts ...graph.Option) (*graph.Graph, error) {
	dec, err := newDecoder(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, graph.WrapFormat("zstd", -1, err, "decompressing")
	}
	return UnmarshalBinary(raw, opts...)
}
