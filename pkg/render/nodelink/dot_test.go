package nodelink

import (
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/objgraph/pkg/digest"
	"github.com/matzehuels/objgraph/pkg/graph"
)

func sample() *graph.Graph {
	g := graph.New()
	root, a, b := g.Insert(), g.Insert(), g.Insert()
	_ = g.Connect(root, "a", a)
	_ = g.Connect(a, "ρ", root)
	_ = g.SetPayload(a, []byte{0x00, 0x2A})
	_ = g.Connect(b, "self", b)
	return g
}

func TestToDOT_Basic(t *testing.T) {
	dot, err := ToDOT(sample(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"digraph G",
		`"ν0" [label="ν0", peripheries=2];`,
		`"ν1" [label="ν1"];`,
		`"ν0" -> "ν1" [label="a"];`,
		`"ν1" -> "ν0" [label="ρ"];`,
		`"ν2" -> "ν2" [label="self"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %s:\n%s", want, dot)
		}
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot, err := ToDOT(sample(), Options{Detailed: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dot, `ν1\n00-2A\n#`) {
		t.Errorf("detailed label missing payload and digest:\n%s", dot)
	}
}

func TestToDOT_From(t *testing.T) {
	from := graph.ID(0)
	dot, err := ToDOT(sample(), Options{From: &from})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(dot, `"ν2"`) {
		t.Error("unreachable vertex drawn")
	}

	missing := graph.ID(9)
	if _, err := ToDOT(sample(), Options{From: &missing}); !errors.Is(err, graph.ErrVertexNotFound) {
		t.Errorf("err = %v, want ErrVertexNotFound", err)
	}
}

func TestToDOT_Deterministic(t *testing.T) {
	a, _ := ToDOT(sample(), Options{Detailed: true})
	b, _ := ToDOT(sample(), Options{Detailed: true})
	if a != b {
		t.Error("ToDOT() is not deterministic")
	}
}

func TestFmtLabel(t *testing.T) {
	g := graph.New()
	id := g.Insert()
	_ = g.SetPayload(id, make([]byte, 64))

	if label := fmtLabel(g, id, nil); label != "ν0" {
		t.Errorf("simple label = %q", label)
	}

	label := fmtLabel(g, id, map[graph.ID]digest.Digest{id: {0xAB, 0xCD}})
	lines := strings.Split(label, "\n")
	if len(lines) != 3 {
		t.Fatalf("detailed label = %q", label)
	}
	if lines[1] != strings.Repeat("00-", 10)+"00..." {
		t.Errorf("payload line = %q", lines[1])
	}
	if lines[2] != "#abcd0000" {
		t.Errorf("digest line = %q", lines[2])
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" viewBox="0.00 0.00 120.50 80.25" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 120.50 80.25"`) || !strings.Contains(out, `width="120"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox was changed")
	}
}
