// Package stmt defines the statement-tree abstraction consumed by the CFG
// builder. It is the contract between a parser frontend and pkg/cfg: any
// parser that can populate these types can drive graph construction.
package stmt

// Kind discriminates the statement variants the builder dispatches on.
// Kinds outside this enumeration are treated as Simple by the builder.
type Kind int

const (
	Simple Kind = iota // expression statements, assignments, anything unmodeled
	If
	While
	For
	Return
	Break
	Continue
	Try
	FuncDef // nested function definition, body threaded inline
)

// String returns the kind name, used as a fallback label when a statement
// carries no rendered text.
func (k Kind) String() string {
	switch k {
	case Simple:
		return "statement"
	case If:
		return "if"
	case While:
		return "while"
	case For:
		return "for"
	case Return:
		return "return"
	case Break:
		return "break"
	case Continue:
		return "continue"
	case Try:
		return "try"
	case FuncDef:
		return "def"
	default:
		return "statement"
	}
}

// Statement is one node of the statement tree. Only the fields relevant to
// its Kind are populated:
//
//	Simple:   Text (rendered statement)
//	If:       Cond, Body, Else
//	While:    Cond, Body
//	For:      Target, Iter, Body
//	Return:   Text (rendered return expression, empty for bare return)
//	Try:      Body, Handlers
//	FuncDef:  Name, Body
type Statement struct {
	Kind   Kind
	Line   int    // 1-based source line
	Text   string // rendered statement or expression text
	Cond   string // condition text for If/While
	Target string // loop variable text for For
	Iter   string // iterable text for For
	Name   string // function name for FuncDef

	Body     []*Statement // primary body (if-true branch, loop body, try body)
	Else     []*Statement // else branch for If (elif chains nest here)
	Handlers []*Handler   // except clauses for Try
}

// Handler is one except clause of a Try statement.
type Handler struct {
	Type string // rendered exception type text, empty for a bare except
	Line int
	Body []*Statement
}

// Function is one unit of CFG construction: a named statement sequence.
// Err carries an upstream parse failure; a function with a non-empty Err
// has no usable Body.
type Function struct {
	Name string
	Line int
	Body []*Statement
	Err  string
}

// Module is the parse result for one source file.
type Module struct {
	Path      string
	Functions []*Function
}
