package nodelink_test

import (
	"fmt"

	"github.com/matzehuels/objgraph/pkg/graph"
	"github.com/matzehuels/objgraph/pkg/render/nodelink"
)

func ExampleToDOT() {
	g := graph.New()
	root, attr := g.Insert(), g.Insert()
	_ = g.Connect(root, "φ", attr)

	dot, err := nodelink.ToDOT(g, nodelink.Options{})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Print(dot)
	// Output:
	// digraph G {
	//   rankdir=TB;
	//   bgcolor="transparent";
	//   node [shape=box, style="rounded,filled", fillcolor=white, fontsize=14, margin="0.15,0.08"];
	//   edge [fontsize=12];
	//   ranksep=0.5;
	//   nodesep=0.3;
	//
	//   "ν0" [label="ν0", peripheries=2];
	//   "ν1" [label="ν1"];
	//
	//   "ν0" -> "ν1" [label="φ"];
	// }
}
