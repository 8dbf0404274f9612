// Package parser turns Python source into the statement-tree form consumed
// by pkg/cfg. It is a tree-sitter frontend: any other parser producing the
// same stmt types could replace it.
package parser

import (
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/l3aro/go-flow-graph/pkg/stmt"
)

// frontend holds the per-parse state: the source bytes for text rendering.
type frontend struct {
	content []byte
}

// ParseFile parses a Python file into a statement-tree module. The returned
// error covers I/O only; syntax errors are reported per function on the
// module itself.
func ParseFile(path string) (*stmt.Module, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return Parse(content, path), nil
}

// Parse parses Python source into a statement-tree module. Every function
// definition (including class methods, named Class.method) becomes one
// Function; a file with no functions yields a single pseudo-function named
// "module" over the top-level statements.
func Parse(content []byte, path string) *stmt.Module {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	tree := p.Parse(nil, content)
	defer tree.Close()

	f := &frontend{content: content}
	m := &stmt.Module{Path: path}

	root := tree.RootNode()
	f.collectFunctions(root, "", &m.Functions)

	if len(m.Functions) == 0 {
		fn := &stmt.Function{Name: "module", Line: 1}
		if root.HasError() {
			fn.Err = f.syntaxErrorMessage(root)
		} else {
			fn.Body = f.convertBlock(root)
		}
		m.Functions = append(m.Functions, fn)
	}

	return m
}

// collectFunctions walks the tree gathering every function definition.
// Methods carry their class name as a prefix; nested functions are
// collected in their own right and also appear inline in the enclosing
// function's body as FuncDef statements.
func (f *frontend) collectFunctions(node *sitter.Node, class string, out *[]*stmt.Function) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "function_definition":
		name := f.text(node.ChildByFieldName("name"))
		if class != "" {
			name = class + "." + name
		}
		*out = append(*out, f.convertFunction(node, name))
		// Keep walking: nested defs get their own graphs too.
		f.collectFunctions(node.ChildByFieldName("body"), "", out)
		return
	case "class_definition":
		name := f.text(node.ChildByFieldName("name"))
		f.collectFunctions(node.ChildByFieldName("body"), name, out)
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		f.collectFunctions(node.Child(i), class, out)
	}
}

// convertFunction converts one function definition. A subtree containing a
// tree-sitter syntax error marks the function failed instead of producing
// a half-converted body.
func (f *frontend) convertFunction(node *sitter.Node, name string) *stmt.Function {
	fn := &stmt.Function{
		Name: name,
		Line: int(node.StartPoint().Row) + 1,
	}
	if node.HasError() {
		fn.Err = f.syntaxErrorMessage(node)
		return fn
	}
	fn.Body = f.convertBlock(node.ChildByFieldName("body"))
	return fn
}

// convertBlock converts the named children of a block node into a
// statement sequence.
func (f *frontend) convertBlock(block *sitter.Node) []*stmt.Statement {
	if block == nil {
		return nil
	}
	stmts := make([]*stmt.Statement, 0, block.NamedChildCount())
	for i := 0; i < int(block.NamedChildCount()); i++ {
		if s := f.convertStatement(block.NamedChild(i)); s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

func (f *frontend) convertStatement(node *sitter.Node) *stmt.Statement {
	if node == nil {
		return nil
	}

	line := int(node.StartPoint().Row) + 1

	switch node.Type() {
	case "comment":
		return nil

	case "if_statement":
		return &stmt.Statement{
			Kind: stmt.If,
			Line: line,
			Cond: f.text(node.ChildByFieldName("condition")),
			Body: f.convertBlock(node.ChildByFieldName("consequence")),
			Else: f.convertAlternatives(node),
		}

	case "while_statement":
		return &stmt.Statement{
			Kind: stmt.While,
			Line: line,
			Cond: f.text(node.ChildByFieldName("condition")),
			Body: f.convertBlock(node.ChildByFieldName("body")),
		}

	case "for_statement":
		return &stmt.Statement{
			Kind:   stmt.For,
			Line:   line,
			Target: f.text(node.ChildByFieldName("left")),
			Iter:   f.text(node.ChildByFieldName("right")),
			Body:   f.convertBlock(node.ChildByFieldName("body")),
		}

	case "return_statement":
		s := &stmt.Statement{Kind: stmt.Return, Line: line}
		if node.NamedChildCount() > 0 {
			s.Text = f.text(node.NamedChild(0))
		}
		return s

	case "break_statement":
		return &stmt.Statement{Kind: stmt.Break, Line: line}

	case "continue_statement":
		return &stmt.Statement{Kind: stmt.Continue, Line: line}

	case "try_statement":
		return f.convertTry(node, line)

	case "function_definition":
		return &stmt.Statement{
			Kind: stmt.FuncDef,
			Line: line,
			Name: f.text(node.ChildByFieldName("name")),
			Body: f.convertBlock(node.ChildByFieldName("body")),
		}

	case "decorated_definition":
		if def := f.findChildByType(node, "function_definition"); def != nil {
			return f.convertStatement(def)
		}
		return &stmt.Statement{Kind: stmt.Simple, Line: line, Text: f.text(node)}

	default:
		// Anything unmodeled degrades to a plain statement with its
		// rendered text, so the graph stays complete.
		return &stmt.Statement{Kind: stmt.Simple, Line: line, Text: f.text(node)}
	}
}

// convertAlternatives flattens an if statement's elif/else clauses into the
// nested-else shape the builder expects: each elif becomes a single nested
// If in the else sequence of the one before it.
func (f *frontend) convertAlternatives(ifNode *sitter.Node) []*stmt.Statement {
	var clauses []*sitter.Node
	for i := 0; i < int(ifNode.ChildCount()); i++ {
		child := ifNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "elif_clause", "else_clause":
			clauses = append(clauses, child)
		}
	}
	return f.chainAlternatives(clauses)
}

func (f *frontend) chainAlternatives(clauses []*sitter.Node) []*stmt.Statement {
	if len(clauses) == 0 {
		return nil
	}
	head := clauses[0]
	if head.Type() == "else_clause" {
		return f.convertBlock(head.ChildByFieldName("body"))
	}
	// elif: a nested if carrying the remaining clauses as its else.
	return []*stmt.Statement{{
		Kind: stmt.If,
		Line: int(head.StartPoint().Row) + 1,
		Cond: f.text(head.ChildByFieldName("condition")),
		Body: f.convertBlock(head.ChildByFieldName("consequence")),
		Else: f.chainAlternatives(clauses[1:]),
	}}
}

// convertTry converts a try statement. The finally clause is not modeled
// by the builder and is dropped.
func (f *frontend) convertTry(node *sitter.Node, line int) *stmt.Statement {
	s := &stmt.Statement{
		Kind: stmt.Try,
		Line: line,
		Body: f.convertBlock(node.ChildByFieldName("body")),
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || child.Type() != "except_clause" {
			continue
		}
		h := &stmt.Handler{Line: int(child.StartPoint().Row) + 1}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			named := child.NamedChild(j)
			if named.Type() == "block" {
				h.Body = f.convertBlock(named)
				break
			}
			// First non-block named child is the exception type; an
			// "as" alias follows it and is not part of the label. Some
			// grammar versions wrap "E as e" in an as_pattern node.
			if h.Type == "" {
				if named.Type() == "as_pattern" && named.NamedChildCount() > 0 {
					named = named.NamedChild(0)
				}
				h.Type = f.text(named)
			}
		}
		s.Handlers = append(s.Handlers, h)
	}

	return s
}

// syntaxErrorMessage locates the first ERROR node for a readable message.
func (f *frontend) syntaxErrorMessage(node *sitter.Node) string {
	if errNode := f.findErrorNode(node); errNode != nil {
		return fmt.Sprintf("syntax error near line %d", int(errNode.StartPoint().Row)+1)
	}
	return "syntax error"
}

func (f *frontend) findErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := f.findErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// findChildByType finds the first direct child of a specific type.
func (f *frontend) findChildByType(node *sitter.Node, childType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == childType {
			return child
		}
	}
	return nil
}

// text renders a node's source text with whitespace collapsed, matching
// how statements read on a single display line.
func (f *frontend) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start >= uint32(len(f.content)) || end > uint32(len(f.content)) {
		return ""
	}
	return strings.Join(strings.Fields(string(f.content[start:end])), " ")
}
