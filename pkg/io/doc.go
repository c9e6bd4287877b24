// Package io serializes object graphs in a compact binary format and a
// human-readable XML format.
//
// # Overview
//
// Both codecs are total and round-trip exactly: decoding an encoded graph
// yields a graph with the same identities, the same labeled edges and the
// same payload bytes (including the difference between an empty payload and
// no payload). The free-identity pool and the root are not serialized; pass
// [graph.WithRoot] to the decoder when the root is not 0.
//
// Encoding is deterministic. Vertices are written in ascending identity
// order and edges in the insertion order of their labels, so encoding an
// unchanged graph twice produces identical bytes.
//
// # Binary Format
//
// All integers are unsigned LEB128 varints unless noted:
//
//	magic   "SODG" (4 bytes)
//	version uint16, big-endian (currently 1)
//	count   number of vertices
//	count × vertex:
//	    id       identity
//	    present  1 byte: 1 if the vertex has a payload, else 0
//	    length   payload length
//	    payload  raw bytes
//	    edges    number of edges
//	    edges × (length, label bytes, target identity)
//
// Unknown versions are rejected. Declared counts and lengths are checked
// against the remaining input before anything is allocated.
//
// # XML Format
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<graph version="1">
//	  <vertex id="0">
//	    <data>00-2A</data>
//	    <edge label="x" to="1"></edge>
//	  </vertex>
//	  <vertex id="1"></vertex>
//	</graph>
//
// Payloads use the dash-separated hex form of [payload.Print], with "--" for
// an empty payload. The decoder also accepts edges as a flat list under the
// graph element:
//
//	<edges>
//	  <edge from="0" label="x" to="1"/>
//	</edges>
//
// # Errors
//
// Malformed input of any kind is reported as a [*graph.FormatError], which
// matches [graph.ErrFormat]. A failed decode never returns a partially built
// graph.
//
// # Compression and Files
//
// [WriteCompressed] and [ReadCompressed] wrap the binary format in a zstd
// stream. [Save] and [Load] pick a codec from the file extension (see
// [DetectFormat]); [Load] falls back to sniffing the content.
//
// [payload.Print]: github.com/matzehuels/objgraph/pkg/payload.Print
package io
