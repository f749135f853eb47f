package graph

// Status initialization state of a node
type Status int

const (
	// StatusPending neither initialized nor failed
	StatusPending Status = iota
	// StatusInitialized the factory returned successfully
	StatusInitialized
	// StatusFailed the factory returned an error
	StatusFailed
)

// String status name
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInitialized:
		return "initialized"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Node graph vertex for one component
type Node struct {
	Name string

	deps   []string
	depSet map[string]struct{}
	status Status
	err    error
}

func newNode(name string) *Node {
	return &Node{
		Name:   name,
		depSet: make(map[string]struct{}),
	}
}

// Dependencies names this node requires, in declaration order
func (n *Node) Dependencies() []string {
	out := make([]string, len(n.deps))
	copy(out, n.deps)
	return out
}

// HasDependency reports whether dep is a direct dependency
func (n *Node) HasDependency(dep string) bool {
	_, ok := n.depSet[dep]
	return ok
}

func (n *Node) addDependency(dep string) {
	if _, ok := n.depSet[dep]; ok {
		return
	}
	n.depSet[dep] = struct{}{}
	n.deps = append(n.deps, dep)
}

// Status current state
func (n *Node) Status() Status {
	return n.status
}

// Initialized reports whether the factory succeeded
func (n *Node) Initialized() bool {
	return n.status == StatusInitialized
}

// Failed reports whether the factory failed
func (n *Node) Failed() bool {
	return n.status == StatusFailed
}

// Err captured failure, nil unless Failed
func (n *Node) Err() error {
	return n.err
}

// MarkInitialized moves the node to StatusInitialized and clears any error
func (n *Node) MarkInitialized() {
	n.status = StatusInitialized
	n.err = nil
}

// MarkFailed moves the node to StatusFailed with err
func (n *Node) MarkFailed(err error) {
	n.status = StatusFailed
	n.err = err
}
