// Package script builds graphs from short textual instruction lists.
//
// A script is a sequence of commands, each terminated by a semicolon.
// A '#' starts a comment that runs to the end of the line:
//
//	ADD(0);              # create vertex ν0
//	ADD($ν1);            # create a fresh vertex and bind it to $ν1
//	BIND(0, $ν1, foo);   # edge ν0 -foo-> $ν1
//	PUT($ν1, 00-2A);     # payload of $ν1
//
// Commands:
//
//   - ADD(v) creates vertex v.
//   - BIND(from, to, label) connects from -label-> to.
//   - PUT(v, hex) sets the payload of v from dash-separated or plain hex.
//
// A vertex argument is an integer identity ("7" or "ν7") or a variable
// ("$name"). ADD of an unbound variable inserts a fresh vertex and binds the
// variable to it; any other use of an unbound variable is an error.
// Labels may be double-quoted, which allows commas and parentheses.
//
// Errors are reported as [*Error] with the line and command that failed.
package script
