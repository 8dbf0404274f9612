package cfg

import (
	"fmt"

	"github.com/l3aro/go-flow-graph/pkg/stmt"
)

// Label widths. Truncation is cosmetic only and never affects topology.
const (
	maxCondLabel   = 40 // if/while/for header text
	maxReturnLabel = 30 // return expression text
	maxStmtLabel   = 50 // simple statement text
)

// InputError reports a statement tree that failed upstream parsing. It is
// the only failure Build can return; gracefully-degraded input (unknown
// statement kinds, dangling break/continue) never produces an error.
type InputError struct {
	Function string
	Msg      string
}

func (e *InputError) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("input error in %s: %s", e.Function, e.Msg)
	}
	return "input error: " + e.Msg
}

// Frontier identifies the node the next statement in a sequence must attach
// to. A dead frontier means control cannot fall through (after return,
// break, or continue); the builder still creates nodes for statements past
// a dead frontier but draws no fallthrough edge into them.
type Frontier struct {
	id   NodeID
	live bool
}

func at(id NodeID) Frontier { return Frontier{id: id, live: true} }

var dead = Frontier{}

// Live reports whether control can reach this frontier.
func (f Frontier) Live() bool { return f.live }

// ID returns the frontier node id and whether the frontier is live.
func (f Frontier) ID() (NodeID, bool) { return f.id, f.live }

// Builder holds the transient state of one Build call: the graph under
// construction and the break/continue target stacks. Each call owns an
// independent Builder, so concurrent builds never interfere.
type Builder struct {
	graph           *Graph
	breakTargets    []NodeID
	continueTargets []NodeID
}

// Build constructs the control flow graph for one function. A function
// carrying an upstream parse failure yields (nil, *InputError); otherwise
// Build always succeeds, degrading unknown constructs to plain statement
// nodes.
func Build(fn *stmt.Function) (*Graph, error) {
	if fn.Err != "" {
		return nil, &InputError{Function: fn.Name, Msg: fn.Err}
	}

	b := &Builder{graph: NewGraph(fn.Name)}

	entry := b.graph.NewNode(KindEntry, "START: "+fn.Name, 1)
	cur := at(entry)
	for _, s := range fn.Body {
		cur = b.visit(s, cur)
	}

	exit := b.graph.NewNode(KindExit, "END: "+fn.Name, 0)
	b.flow(cur, exit, LabelNone)

	return b.graph, nil
}

// BuildModule builds one graph per function in a parsed module. The first
// function with a parse failure aborts the build; no partial result is
// returned alongside an error.
func BuildModule(m *stmt.Module) ([]*Graph, error) {
	graphs := make([]*Graph, 0, len(m.Functions))
	for _, fn := range m.Functions {
		g, err := Build(fn)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return graphs, nil
}

// flow draws a fallthrough edge from a frontier, skipping dead frontiers.
func (b *Builder) flow(from Frontier, to NodeID, label EdgeLabel) {
	if from.live {
		b.graph.AddEdge(from.id, to, label)
	}
}

// visit dispatches one statement to its handler and returns the new
// frontier. Kinds outside the enumeration degrade to simple statements so
// the graph stays complete.
func (b *Builder) visit(s *stmt.Statement, cur Frontier) Frontier {
	switch s.Kind {
	case stmt.If:
		return b.visitIf(s, cur)
	case stmt.While, stmt.For:
		return b.visitLoop(s, cur)
	case stmt.Return:
		return b.visitReturn(s, cur)
	case stmt.Break:
		return b.visitBreak(s, cur)
	case stmt.Continue:
		return b.visitContinue(s, cur)
	case stmt.Try:
		return b.visitTry(s, cur)
	case stmt.FuncDef:
		return b.visitFuncDef(s, cur)
	default:
		return b.visitSimple(s, cur)
	}
}

// visitSeq threads a statement sequence through the frontier protocol.
func (b *Builder) visitSeq(seq []*stmt.Statement, cur Frontier) Frontier {
	for _, s := range seq {
		cur = b.visit(s, cur)
	}
	return cur
}

func (b *Builder) visitSimple(s *stmt.Statement, cur Frontier) Frontier {
	label := s.Text
	if label == "" {
		label = s.Kind.String()
	}
	n := b.graph.NewNode(KindStatement, truncate(label, maxStmtLabel), s.Line)
	b.flow(cur, n, LabelNone)
	return at(n)
}

func (b *Builder) visitIf(s *stmt.Statement, cur Frontier) Frontier {
	cond := b.graph.NewNode(KindCondition, "if "+truncate(s.Cond, maxCondLabel), s.Line)
	b.flow(cur, cond, LabelNone)

	trueEnd := b.visitSeq(s.Body, at(cond))

	// An absent else leaves the false path on the condition itself, which
	// yields a direct condition->merge edge below.
	falseEnd := at(cond)
	if len(s.Else) > 0 {
		falseEnd = b.visitSeq(s.Else, at(cond))
	}

	merge := b.graph.NewNode(KindStatement, "merge", 0)
	b.flow(trueEnd, merge, LabelTrue)
	b.flow(falseEnd, merge, LabelFalse)

	// When every branch exits (e.g. both return), the merge node is
	// unreachable and control cannot fall through the if.
	if !trueEnd.live && !falseEnd.live {
		return dead
	}
	return at(merge)
}

func (b *Builder) visitLoop(s *stmt.Statement, cur Frontier) Frontier {
	var header, endLabel string
	if s.Kind == stmt.While {
		header = "while " + truncate(s.Cond, maxCondLabel)
		endLabel = "end while"
	} else {
		header = "for " + truncate(s.Target+" in "+s.Iter, maxCondLabel)
		endLabel = "end for"
	}

	loop := b.graph.NewNode(KindLoop, header, s.Line)
	b.flow(cur, loop, LabelNone)
	end := b.graph.NewNode(KindStatement, endLabel, 0)

	// Strict push/pop pair around the body so break/continue in nested
	// loops resolve to the innermost enclosing loop.
	b.breakTargets = append(b.breakTargets, end)
	b.continueTargets = append(b.continueTargets, loop)

	bodyEnd := b.visitSeq(s.Body, at(loop))

	b.flow(bodyEnd, loop, LabelLoop)
	// The exit edge is drawn even when the body never falls through.
	b.graph.AddEdge(loop, end, LabelExit)

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]

	return at(end)
}

func (b *Builder) visitReturn(s *stmt.Statement, cur Frontier) Frontier {
	label := "return"
	if s.Text != "" {
		label = "return " + truncate(s.Text, maxReturnLabel)
	}
	n := b.graph.NewNode(KindStatement, label, s.Line)
	b.flow(cur, n, LabelNone)
	return dead
}

func (b *Builder) visitBreak(s *stmt.Statement, cur Frontier) Frontier {
	n := b.graph.NewNode(KindStatement, "break", s.Line)
	b.flow(cur, n, LabelNone)
	// Outside a loop the node is inert: no resolving edge, no error.
	if len(b.breakTargets) > 0 {
		b.graph.AddEdge(n, b.breakTargets[len(b.breakTargets)-1], LabelBreak)
	}
	return dead
}

func (b *Builder) visitContinue(s *stmt.Statement, cur Frontier) Frontier {
	n := b.graph.NewNode(KindStatement, "continue", s.Line)
	b.flow(cur, n, LabelNone)
	if len(b.continueTargets) > 0 {
		b.graph.AddEdge(n, b.continueTargets[len(b.continueTargets)-1], LabelContinue)
	}
	return dead
}

func (b *Builder) visitTry(s *stmt.Statement, cur Frontier) Frontier {
	try := b.graph.NewNode(KindStatement, "try", s.Line)
	b.flow(cur, try, LabelNone)

	tryEnd := b.visitSeq(s.Body, at(try))

	exits := make([]Frontier, 0, len(s.Handlers))
	for _, h := range s.Handlers {
		typ := h.Type
		if typ == "" {
			typ = "Exception"
		}
		exc := b.graph.NewNode(KindStatement, "except "+typ, h.Line)
		b.graph.AddEdge(try, exc, LabelException)
		exits = append(exits, b.visitSeq(h.Body, at(exc)))
	}

	merge := b.graph.NewNode(KindStatement, "end try", 0)
	b.flow(tryEnd, merge, LabelNone)
	live := tryEnd.live
	for _, e := range exits {
		b.flow(e, merge, LabelNone)
		live = live || e.live
	}
	if !live {
		return dead
	}
	return at(merge)
}

func (b *Builder) visitFuncDef(s *stmt.Statement, cur Frontier) Frontier {
	n := b.graph.NewNode(KindStatement, "def "+s.Name+"(...)", s.Line)
	b.flow(cur, n, LabelNone)
	return b.visitSeq(s.Body, at(n))
}

// truncate bounds a label to max runes, never splitting a multi-byte
// character.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
