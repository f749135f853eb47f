// Package graph implements the component dependency graph: lazy node creation,
// depth-first topological ordering and cycle reconstruction.
package graph

// visit colours of the depth-first traversal
type mark int

const (
	unvisited mark = iota
	inProgress
	done
)

// Graph dependency graph keyed by component name
//
// Nodes keep their insertion order; the order of independent components in
// InitializationOrder follows it. The graph caches nothing between queries.
type Graph struct {
	nodes map[string]*Node
	order []string
}

// New creates an empty graph
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddNode returns the node for name, creating it on first reference
func (g *Graph) AddNode(name string) *Node {
	if n, ok := g.nodes[name]; ok {
		return n
	}
	n := newNode(name)
	g.nodes[name] = n
	g.order = append(g.order, name)
	return n
}

// AddDependency records that node depends on dep, creating either lazily
func (g *Graph) AddDependency(node, dep string) {
	n := g.AddNode(node)
	g.AddNode(dep)
	n.addDependency(dep)
}

// Node looks up a node without creating it
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns every node in insertion order
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.nodes[name])
	}
	return out
}

// Len number of nodes
func (g *Graph) Len() int {
	return len(g.order)
}

// Dependents returns the nodes that directly depend on name, in insertion order
func (g *Graph) Dependents(name string) []string {
	var out []string
	for _, n := range g.order {
		if g.nodes[n].HasDependency(name) {
			out = append(out, n)
		}
	}
	return out
}

// InitializationOrder returns a topological order: every name appears after all
// of its dependencies. A cycle yields a *CycleError carrying its path.
func (g *Graph) InitializationOrder() ([]string, error) {
	marks := make(map[string]mark, len(g.nodes))
	result := make([]string, 0, len(g.nodes))

	var visit func(name string) error
	visit = func(name string) error {
		switch marks[name] {
		case done:
			return nil
		case inProgress:
			path := g.FindCycle(name)
			if path == nil {
				path = []string{name, name}
			}
			return &CycleError{Path: path}
		}

		marks[name] = inProgress
		for _, dep := range g.nodes[name].deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		marks[name] = done
		result = append(result, name)
		return nil
	}

	for _, name := range g.order {
		if marks[name] == unvisited {
			if err := visit(name); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// FindCycle reconstructs a cycle reachable from start.
// It returns the path from the first repeated node back to itself, or nil.
func (g *Graph) FindCycle(start string) []string {
	if _, ok := g.nodes[start]; !ok {
		return nil
	}

	onPath := make(map[string]int)
	cleared := make(map[string]bool)
	var path []string

	var walk func(name string) []string
	walk = func(name string) []string {
		if idx, ok := onPath[name]; ok {
			cycle := make([]string, 0, len(path)-idx+1)
			cycle = append(cycle, path[idx:]...)
			return append(cycle, name)
		}
		if cleared[name] {
			return nil
		}

		onPath[name] = len(path)
		path = append(path, name)
		for _, dep := range g.nodes[name].deps {
			if cycle := walk(dep); cycle != nil {
				return cycle
			}
		}
		path = path[:len(path)-1]
		delete(onPath, name)
		cleared[name] = true
		return nil
	}

	return walk(start)
}
