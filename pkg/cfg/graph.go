// Package cfg constructs control flow graphs from parsed statement trees.
// It provides the graph data model (nodes, labeled edges) and the builder
// that turns a function's statement sequence into a flat graph with
// entry/exit nodes, branch merge points, and loop back-edges.
package cfg

// NodeKind classifies a CFG node.
type NodeKind string

const (
	KindEntry     NodeKind = "entry"     // Function entry point
	KindExit      NodeKind = "exit"      // Function exit point
	KindStatement NodeKind = "statement" // Regular statement (also merge and end-loop nodes)
	KindCondition NodeKind = "condition" // Conditional branch (if/elif)
	KindLoop      NodeKind = "loop"      // Loop header (for/while)
)

// EdgeLabel annotates the branch outcome an edge represents.
type EdgeLabel string

const (
	LabelNone      EdgeLabel = ""          // Plain fallthrough
	LabelTrue      EdgeLabel = "true"      // True branch rejoining its merge node
	LabelFalse     EdgeLabel = "false"     // False branch rejoining its merge node
	LabelLoop      EdgeLabel = "loop"      // Back-edge to a loop header
	LabelExit      EdgeLabel = "exit"      // Loop header to its end-loop node
	LabelException EdgeLabel = "exception" // Try node to an except handler
	LabelBreak     EdgeLabel = "break"     // Break statement to its loop's end node
	LabelContinue  EdgeLabel = "continue"  // Continue statement to its loop header
)

// NodeID indexes a node within one graph's arena. IDs are assigned
// monotonically from zero and are stable for the lifetime of the graph.
type NodeID int

// Node is a single execution point in the graph.
type Node struct {
	ID         NodeID
	Kind       NodeKind
	Label      string
	Line       int // 1-based source line, 0 for synthetic nodes
	Successors []NodeID
}

// Edge is a directed control transfer between two nodes.
type Edge struct {
	From  NodeID
	To    NodeID
	Label EdgeLabel
}

// Graph is the control flow graph for one function. Nodes live in an arena
// slice indexed by NodeID; edges are kept both in insertion order (for
// deterministic serialization) and on each node's successor list (for
// traversal). A graph is append-only during construction and read-only
// afterwards, so finished graphs are safe to share across goroutines.
type Graph struct {
	Function string

	nodes []*Node
	edges []Edge
}

// NewGraph creates an empty graph for the named function.
func NewGraph(function string) *Graph {
	return &Graph{
		Function: function,
		nodes:    make([]*Node, 0),
		edges:    make([]Edge, 0),
	}
}

// NewNode allocates a node in the arena and returns its id.
func (g *Graph) NewNode(kind NodeKind, label string, line int) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &Node{
		ID:         id,
		Kind:       kind,
		Label:      label,
		Line:       line,
		Successors: make([]NodeID, 0),
	})
	return id
}

// AddEdge connects two nodes. It is a no-op when either endpoint does not
// exist or when from already lists to as a successor, so repeated insertion
// is idempotent.
func (g *Graph) AddEdge(from, to NodeID, label EdgeLabel) {
	if !g.has(from) || !g.has(to) {
		return
	}
	src := g.nodes[from]
	for _, s := range src.Successors {
		if s == to {
			return
		}
	}
	src.Successors = append(src.Successors, to)
	g.edges = append(g.edges, Edge{From: from, To: to, Label: label})
}

func (g *Graph) has(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// Node returns the node with the given id, or nil if it does not exist.
func (g *Graph) Node(id NodeID) *Node {
	if !g.has(id) {
		return nil
	}
	return g.nodes[id]
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// SerializableNode is the wire form of a Node.
type SerializableNode struct {
	ID         int    `json:"id" msgpack:"id"`
	Kind       string `json:"kind" msgpack:"kind"`
	Label      string `json:"label" msgpack:"label"`
	Line       *int   `json:"line" msgpack:"line"`
	Successors []int  `json:"successors" msgpack:"successors"`
}

// SerializableEdge is the wire form of an Edge.
type SerializableEdge struct {
	From  int    `json:"from" msgpack:"from"`
	To    int    `json:"to" msgpack:"to"`
	Label string `json:"label" msgpack:"label"`
}

// SerializableGraph is an order-preserving view of a graph suitable for
// JSON or msgpack encoding. Nodes and edges appear in insertion order, so
// two builds of the same statement tree serialize byte-identically.
type SerializableGraph struct {
	Function string             `json:"function" msgpack:"function"`
	Nodes    []SerializableNode `json:"nodes" msgpack:"nodes"`
	Edges    []SerializableEdge `json:"edges" msgpack:"edges"`
}

// Serializable converts the graph to its wire form. Synthetic nodes
// (merge points, end-loop and exit nodes) serialize with a null line.
func (g *Graph) Serializable() *SerializableGraph {
	out := &SerializableGraph{
		Function: g.Function,
		Nodes:    make([]SerializableNode, 0, len(g.nodes)),
		Edges:    make([]SerializableEdge, 0, len(g.edges)),
	}
	for _, n := range g.nodes {
		sn := SerializableNode{
			ID:         int(n.ID),
			Kind:       string(n.Kind),
			Label:      n.Label,
			Successors: make([]int, 0, len(n.Successors)),
		}
		if n.Line > 0 {
			line := n.Line
			sn.Line = &line
		}
		for _, s := range n.Successors {
			sn.Successors = append(sn.Successors, int(s))
		}
		out.Nodes = append(out.Nodes, sn)
	}
	for _, e := range g.edges {
		out.Edges = append(out.Edges, SerializableEdge{
			From:  int(e.From),
			To:    int(e.To),
			Label: string(e.Label),
		})
	}
	return out
}
