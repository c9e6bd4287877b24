package graph

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	apperr "github.com/matzehuels/objgraph/pkg/errors"
)

func TestInsertAndRecycle(t *testing.T) {
	g := New()
	a, b, c := g.Insert(), g.Insert(), g.Insert()
	if a != 0 || b != 1 || c != 2 {
		t.Fatalf("Insert() = %d, %d, %d, want 0, 1, 2", a, b, c)
	}

	if err := g.Remove(b); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if g.Exists(b) {
		t.Error("removed vertex still exists")
	}
	if got := g.NextID(); got != b {
		t.Errorf("NextID() = %d, want recycled %d", got, b)
	}
	if got := g.Insert(); got != b {
		t.Errorf("Insert() after remove = %d, want recycled %d", got, b)
	}
	if got := g.Insert(); got != 3 {
		t.Errorf("Insert() = %d, want 3", got)
	}
}

func TestInsertSkipsAddedIDs(t *testing.T) {
	g := New()
	if err := g.Add(0); err != nil {
		t.Fatal(err)
	}
	if err := g.Add(1); err != nil {
		t.Fatal(err)
	}
	if got := g.Insert(); got != 2 {
		t.Errorf("Insert() = %d, want 2", got)
	}
}

func TestAdd(t *testing.T) {
	g := New()
	if err := g.Add(7); err != nil {
		t.Fatalf("Add(7): %v", err)
	}
	err := g.Add(7)
	if !errors.Is(err, ErrVertexExists) {
		t.Fatalf("Add(7) twice error = %v, want ErrVertexExists", err)
	}
	if apperr.GetCode(err) != apperr.ErrCodeVertexExists {
		t.Errorf("code = %v", apperr.GetCode(err))
	}

	// An added identity is taken out of the free pool.
	_ = g.Remove(7)
	_ = g.Add(7)
	if got := g.Insert(); got == 7 {
		t.Error("Insert() returned an identity claimed by Add")
	}
}

func TestRemoveMissing(t *testing.T) {
	g := New()
	err := g.Remove(3)
	if !errors.Is(err, ErrVertexNotFound) {
		t.Fatalf("Remove() error = %v, want ErrVertexNotFound", err)
	}
	var ve *VertexError
	if !errors.As(err, &ve) || ve.ID != 3 {
		t.Errorf("error = %#v, want VertexError{ID: 3}", err)
	}
}

func TestRemoveDropsIncomingEdges(t *testing.T) {
	g := New()
	a, b := g.Insert(), g.Insert()
	_ = g.Connect(a, "x", b)
	_ = g.Connect(b, "back", a)
	_ = g.Connect(a, "self", a)

	if err := g.Remove(b); err != nil {
		t.Fatal(err)
	}
	if _, ok := g.Target(a, "x"); ok {
		t.Error("edge to removed vertex survived")
	}
	if got, _ := g.Target(a, "self"); got != a {
		t.Error("unrelated edge was dropped")
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestRemoveAll(t *testing.T) {
	g := New()
	for range 5 {
		g.Insert()
	}
	_ = g.Connect(0, "a", 1)
	_ = g.Connect(1, "b", 2)
	_ = g.Connect(3, "c", 0)

	if err := g.RemoveAll([]ID{1, 9}); !errors.Is(err, ErrVertexNotFound) {
		t.Fatalf("RemoveAll with missing id error = %v", err)
	}
	if g.Len() != 5 {
		t.Fatal("failed RemoveAll removed vertices")
	}

	if err := g.RemoveAll([]ID{1, 2}); err != nil {
		t.Fatal(err)
	}
	if got := g.IDs(); !slices.Equal(got, []ID{0, 3, 4}) {
		t.Errorf("IDs() = %v", got)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
}

func TestPayload(t *testing.T) {
	g := New()
	id := g.Insert()

	if _, ok := g.Payload(id); ok {
		t.Error("new vertex has a payload")
	}

	data := []byte{1, 2, 3}
	if err := g.SetPayload(id, data); err != nil {
		t.Fatal(err)
	}
	data[0] = 9
	got, ok := g.Payload(id)
	if !ok || !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("Payload() = %v, %v; graph must own a copy", got, ok)
	}
	got[1] = 9
	if again, _ := g.Payload(id); again[1] != 2 {
		t.Error("Payload() returned graph-owned memory")
	}

	_ = g.SetPayload(id, nil)
	if got, ok := g.Payload(id); !ok || len(got) != 0 {
		t.Errorf("empty payload = %v, %v; want present and empty", got, ok)
	}

	_ = g.ClearPayload(id)
	if _, ok := g.Payload(id); ok {
		t.Error("ClearPayload left a payload")
	}

	if err := g.SetPayload(42, data); !errors.Is(err, ErrVertexNotFound) {
		t.Errorf("SetPayload(missing) error = %v", err)
	}
}

func TestConnect(t *testing.T) {
	g := New()
	a, b, c := g.Insert(), g.Insert(), g.Insert()

	tests := []struct {
		name    string
		from    ID
		label   string
		to      ID
		wantErr error
	}{
		{"ok", a, "x", b, nil},
		{"self loop", a, "self", a, nil},
		{"greek", a, "φ", c, nil},
		{"missing source", 9, "x", b, ErrVertexNotFound},
		{"missing target", a, "x", 9, ErrVertexNotFound},
		{"empty label", a, "", b, ErrInvalidLabel},
		{"dotted label", a, "a.b", b, ErrInvalidLabel},
		{"slashed label", a, "a/b", b, ErrInvalidLabel},
		{"space", a, "a b", b, ErrInvalidLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Connect(tt.from, tt.label, tt.to)
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("Connect() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}
}

func TestConnectOverwrites(t *testing.T) {
	g := New()
	a, b, c := g.Insert(), g.Insert(), g.Insert()
	_ = g.Connect(a, "x", b)
	_ = g.Connect(a, "x", c)

	if got, _ := g.Target(a, "x"); got != c {
		t.Errorf("Target() = %d, want %d", got, c)
	}
	labels, _ := g.Labels(a)
	if !slices.Equal(labels, []string{"x"}) {
		t.Errorf("Labels() = %v, want [x]", labels)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
}

func TestDisconnect(t *testing.T) {
	g := New()
	a, b := g.Insert(), g.Insert()
	_ = g.Connect(a, "x", b)

	if err := g.Disconnect(a, "x"); err != nil {
		t.Fatal(err)
	}
	err := g.Disconnect(a, "x")
	if !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("Disconnect twice error = %v, want ErrEdgeNotFound", err)
	}
	if apperr.GetCode(err) != apperr.ErrCodeEdgeNotFound {
		t.Errorf("code = %v", apperr.GetCode(err))
	}
	if err := g.Disconnect(9, "x"); !errors.Is(err, ErrVertexNotFound) {
		t.Errorf("Disconnect(missing) error = %v", err)
	}
}

func TestEdgeTablePromotion(t *testing.T) {
	g := New(WithInlineEdges(4))
	hub := g.Insert()
	var labels []string
	for i := range 20 {
		to := g.Insert()
		label := "a" + strings.Repeat("x", i)
		labels = append(labels, label)
		if err := g.Connect(hub, label, to); err != nil {
			t.Fatal(err)
		}
	}
	if g.vertices[hub].edges.index == nil {
		t.Error("large table was not indexed")
	}

	got, _ := g.Labels(hub)
	if !slices.Equal(got, labels) {
		t.Error("Labels() lost insertion order after promotion")
	}

	for i, l := range labels {
		if to, ok := g.Target(hub, l); !ok || to != ID(i+1) {
			t.Errorf("Target(%q) = %d, %v", l, to, ok)
		}
	}

	for _, l := range labels[:18] {
		if err := g.Disconnect(hub, l); err != nil {
			t.Fatal(err)
		}
	}
	if g.vertices[hub].edges.index != nil {
		t.Error("small table kept its index")
	}
	got, _ = g.Labels(hub)
	if !slices.Equal(got, labels[18:]) {
		t.Errorf("Labels() = %v, want %v", got, labels[18:])
	}
	if to, _ := g.Target(hub, labels[19]); to != 20 {
		t.Errorf("Target after shrink = %d, want 20", to)
	}
}

func TestKidsAndEdges(t *testing.T) {
	g := New()
	a, b, c := g.Insert(), g.Insert(), g.Insert()
	_ = g.Connect(a, "y", c)
	_ = g.Connect(a, "x", b)

	var got []Edge
	for label, to := range g.Kids(a) {
		got = append(got, Edge{Label: label, To: to})
	}
	want := []Edge{{"y", c}, {"x", b}}
	if !slices.Equal(got, want) {
		t.Errorf("Kids() = %v, want %v", got, want)
	}

	edges, _ := g.Edges(a)
	if !slices.Equal(edges, want) {
		t.Errorf("Edges() = %v, want %v", edges, want)
	}
	if g.Degree(a) != 2 || g.Degree(99) != 0 {
		t.Error("Degree() mismatch")
	}
	for range g.Kids(99) {
		t.Error("Kids() of missing vertex yielded")
	}
}

func TestAllAscending(t *testing.T) {
	g := New()
	for _, id := range []ID{5, 1, 3} {
		_ = g.Add(id)
	}
	var got []ID
	for id := range g.All() {
		got = append(got, id)
		_ = g.Remove(id)
	}
	if !slices.Equal(got, []ID{1, 3, 5}) {
		t.Errorf("All() = %v", got)
	}
}

func TestCloneAndEqual(t *testing.T) {
	g := New()
	a, b := g.Insert(), g.Insert()
	_ = g.Connect(a, "x", b)
	_ = g.Connect(b, "self", b)
	_ = g.SetPayload(b, []byte("hi"))

	c := g.Clone()
	if !g.Equal(c) {
		t.Fatal("clone is not equal")
	}

	_ = c.SetPayload(b, []byte("ho"))
	if g.Equal(c) {
		t.Error("payload change not detected")
	}
	if p, _ := g.Payload(b); string(p) != "hi" {
		t.Error("clone shares payload memory")
	}

	d := g.Clone()
	_ = d.Connect(a, "x", a)
	if g.Equal(d) {
		t.Error("retargeted edge not detected")
	}

	e := g.Clone()
	_ = e.SetPayload(a, []byte{})
	if g.Equal(e) {
		t.Error("empty vs absent payload not distinguished")
	}
}

func TestValidateDangling(t *testing.T) {
	g := New()
	a := g.Insert()
	g.vertices[a].edges.put("x", 99, g.inline)
	g.edgeCount++

	err := g.Validate()
	if !errors.Is(err, ErrDanglingEdge) || !errors.Is(err, ErrVertexNotFound) {
		t.Errorf("Validate() = %v, want ErrDanglingEdge", err)
	}
}

func TestParseID(t *testing.T) {
	for _, s := range []string{"42", "ν42"} {
		id, err := ParseID(s)
		if err != nil || id != 42 {
			t.Errorf("ParseID(%q) = %d, %v", s, id, err)
		}
	}
	if _, err := ParseID("-1"); err == nil {
		t.Error("ParseID(-1) should fail")
	}
	if ID(7).String() != "ν7" {
		t.Errorf("String() = %q", ID(7).String())
	}
}

func TestValidateLabelTruncatesOnRuneBoundary(t *testing.T) {
	long := "a" + strings.Repeat("φ", MaxLabelLength)
	err := ValidateLabel(long)
	var le *LabelError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v, want *LabelError", err)
	}
	if !utf8.ValidString(le.Label) {
		t.Errorf("truncated label %q is not valid UTF-8", le.Label)
	}
	if !strings.HasSuffix(le.Label, "...") || len(le.Label) > 16+len("...") {
		t.Errorf("truncated label = %q", le.Label)
	}
}

func TestConnectRejectsNonXMLLabel(t *testing.T) {
	g := New()
	r := g.Insert()
	if err := g.Connect(r, "a\uFFFE", r); !errors.Is(err, ErrInvalidLabel) {
		t.Errorf("Connect() err = %v, want ErrInvalidLabel", err)
	}
	if g.EdgeCount() != 0 {
		t.Error("rejected edge was stored")
	}
}

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		label   string
		wantErr bool
	}{
		{"x", false},
		{"φ", false},
		{"α0", false},
		{"snake_case", false},
		{"", true},
		{"a.b", true},
		{"a/b", true},
		{"tab\t", true},
		{"nul\x00", true},
		{string([]byte{0xff}), true},
		{strings.Repeat("l", MaxLabelLength+1), true},
		{"a\uFFFE", true},
		{"\uFFFF", true},
		{"\U0001F600", false},
		{"\uFFFD", false},
	}
	for _, tt := range tests {
		err := ValidateLabel(tt.label)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateLabel(%q) = %v, wantErr %v", tt.label, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidLabel) {
			t.Errorf("ValidateLabel(%q) error does not match ErrInvalidLabel", tt.label)
		}
	}
}
