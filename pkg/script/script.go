package script

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	apperr "github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/graph"
	"github.com/matzehuels/objgraph/pkg/payload"
)

// Command is one parsed instruction.
type Command struct {
	Line int
	Op   string
	Args []string
}

func (c Command) String() string {
	return c.Op + "(" + strings.Join(c.Args, ", ") + ")"
}

var arity = map[string]int{
	"ADD":  1,
	"BIND": 3,
	"PUT":  2,
}

// vertexArgs lists the argument positions that name vertices.
var vertexArgs = map[string][]int{
	"ADD":  {0},
	"BIND": {0, 1},
	"PUT":  {0},
}

// Error reports a script failure. Command is empty for syntax errors.
type Error struct {
	Line    int
	Command string
	Err     error
}

func (e *Error) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Command, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code implements errors.Coder.
func (e *Error) Code() apperr.Code { return apperr.ErrCodeInvalidScript }

// Script is a parsed instruction list together with its variable bindings.
//
// The zero value is not usable - use New or Parse.
type Script struct {
	cmds []Command
	vars map[string]graph.ID
	err  error
}

// New parses text. A syntax error is reported by [Script.Deploy].
func New(text string) *Script {
	cmds, err := Parse(text)
	return &Script{cmds: cmds, vars: make(map[string]graph.ID), err: err}
}

// Commands returns the parsed commands.
func (s *Script) Commands() []Command { return s.cmds }

// Vars returns a copy of the variable bindings made by Deploy so far.
func (s *Script) Vars() map[string]graph.ID {
	out := make(map[string]graph.ID, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}

// Deploy applies every command to g in order and returns how many were
// applied. It stops at the first failing command; commands before it stay
// applied. Bindings persist across calls on the same Script.
func (s *Script) Deploy(g *graph.Graph) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	for i, c := range s.cmds {
		if err := s.apply(g, c); err != nil {
			return i, &Error{Line: c.Line, Command: c.String(), Err: err}
		}
	}
	return len(s.cmds), nil
}

// Deploy is a shorthand for New(text).Deploy(g).
func Deploy(g *graph.Graph, text string) (int, error) {
	return New(text).Deploy(g)
}

func (s *Script) apply(g *graph.Graph, c Command) error {
	switch c.Op {
	case "ADD":
		if name, ok := variable(c.Args[0]); ok {
			if _, bound := s.vars[name]; !bound {
				s.vars[name] = g.Insert()
				return nil
			}
		}
		id, err := s.vertex(c.Args[0])
		if err != nil {
			return err
		}
		return g.Add(id)

	case "BIND":
		from, err := s.vertex(c.Args[0])
		if err != nil {
			return err
		}
		to, err := s.vertex(c.Args[1])
		if err != nil {
			return err
		}
		return g.Connect(from, c.Args[2], to)

	case "PUT":
		id, err := s.vertex(c.Args[0])
		if err != nil {
			return err
		}
		data, err := payload.Parse(c.Args[1])
		if err != nil {
			return err
		}
		return g.SetPayload(id, data)
	}
	return fmt.Errorf("unknown command %s", c.Op)
}

func variable(arg string) (string, bool) {
	return strings.CutPrefix(arg, "$")
}

func (s *Script) vertex(arg string) (graph.ID, error) {
	if name, ok := variable(arg); ok {
		id, bound := s.vars[name]
		if !bound {
			return 0, fmt.Errorf("unbound variable $%s", name)
		}
		return id, nil
	}
	id, err := graph.ParseID(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid vertex %q", arg)
	}
	return id, nil
}

// =============================================================================
// Parsing
// =============================================================================

// Parse splits text into commands and checks their shape: known command
// names, argument counts, and variable names. It does not touch a graph.
func Parse(text string) ([]Command, error) {
	p := &parser{src: []rune(text), line: 1}
	var cmds []Command
	for {
		p.skip()
		if p.done() {
			return cmds, nil
		}
		c, err := p.command()
		if err != nil {
			return nil, &Error{Line: p.line, Err: err}
		}
		cmds = append(cmds, c)
	}
}

type parser struct {
	src  []rune
	pos  int
	line int
}

func (p *parser) done() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune { return p.src[p.pos] }

func (p *parser) advance() rune {
	r := p.src[p.pos]
	p.pos++
	if r == '\n' {
		p.line++
	}
	return r
}

// skip consumes whitespace and comments.
func (p *parser) skip() {
	for !p.done() {
		switch r := p.peek(); {
		case r == '#':
			for !p.done() && p.peek() != '\n' {
				p.advance()
			}
		case unicode.IsSpace(r):
			p.advance()
		default:
			return
		}
	}
}

func (p *parser) expect(want rune) error {
	p.skip()
	if p.done() {
		return fmt.Errorf("expected %q, got end of script", want)
	}
	if r := p.advance(); r != want {
		return fmt.Errorf("expected %q, got %q", want, r)
	}
	return nil
}

func (p *parser) command() (Command, error) {
	c := Command{Line: p.line}
	start := p.pos
	for !p.done() && unicode.IsLetter(p.peek()) {
		p.advance()
	}
	c.Op = strings.ToUpper(string(p.src[start:p.pos]))
	if c.Op == "" {
		return c, fmt.Errorf("expected a command, got %q", p.peek())
	}
	n, ok := arity[c.Op]
	if !ok {
		return c, fmt.Errorf("unknown command %s", c.Op)
	}
	if err := p.expect('('); err != nil {
		return c, err
	}
	for {
		arg, err := p.argument()
		if err != nil {
			return c, err
		}
		c.Args = append(c.Args, arg)
		p.skip()
		if p.done() {
			return c, fmt.Errorf("unterminated %s", c.Op)
		}
		if r := p.advance(); r == ')' {
			break
		} else if r != ',' {
			return c, fmt.Errorf("expected ',' or ')', got %q", r)
		}
	}
	if len(c.Args) != n {
		return c, fmt.Errorf("%s takes %d arguments, got %d", c.Op, n, len(c.Args))
	}
	for _, i := range vertexArgs[c.Op] {
		if name, ok := variable(c.Args[i]); ok {
			if err := apperr.ValidateVariable(name); err != nil {
				return c, err
			}
		}
	}
	if err := p.expect(';'); err != nil {
		return c, err
	}
	return c, nil
}

func (p *parser) argument() (string, error) {
	p.skip()
	if p.done() {
		return "", fmt.Errorf("unexpected end of script")
	}
	if p.peek() == '"' {
		return p.quoted()
	}
	start := p.pos
	for !p.done() {
		r := p.peek()
		if r == ',' || r == ')' || r == ';' || r == '#' || r == '\n' {
			break
		}
		p.advance()
	}
	arg := strings.TrimSpace(string(p.src[start:p.pos]))
	if arg == "" {
		return "", fmt.Errorf("empty argument")
	}
	return arg, nil
}

func (p *parser) quoted() (string, error) {
	start := p.pos
	p.advance()
	for !p.done() {
		switch p.advance() {
		case '\\':
			if !p.done() {
				p.advance()
			}
		case '"':
			s, err := strconv.Unquote(string(p.src[start:p.pos]))
			if err != nil {
				return "", fmt.Errorf("bad quoted argument: %w", err)
			}
			return s, nil
		}
	}
	return "", fmt.Errorf("unterminated quoted argument")
}
