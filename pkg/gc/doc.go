// Package gc implements mark-and-sweep garbage collection over a
// [graph.Graph].
//
// The collector is a separate component: the graph package never imports
// it, so programs that do not reclaim vertices pay nothing for it.
//
// # Algorithm
//
// Marking walks breadth-first from the roots with an explicit visited set,
// so cycles of any length (including self-loops) terminate. Sweeping
// removes every live vertex that was not marked in a single pass and
// returns the identities to the graph's free pool. Roots are never removed,
// even when nothing points at them.
//
// Collection is idempotent: a second run with no mutation in between
// removes nothing.
//
// # Usage
//
//	c := gc.New(g)
//	report, err := c.Collect() // roots default to g.Root()
//	if err != nil {
//	    return err
//	}
//	fmt.Println(len(report.Removed), "vertices reclaimed")
//
// A Collector must not run concurrently with other mutations of its graph.
package gc
