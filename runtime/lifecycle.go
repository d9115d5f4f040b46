package runtime

import "github.com/odvcencio/furry-state/state"

// Node is any element of an owner tree.
type Node = any

// Lifecycle is implemented by nodes that need mount/unmount hooks.
type Lifecycle interface {
	Mount()
	Unmount()
}

// ChildProvider exposes a node's children.
type ChildProvider interface {
	ChildNodes() []Node
}

// MountTree activates a tree, parents before children. For each node it
// calls Mount, then starts the node's Machine if it is a state.Owner, so
// the first full-refresh cycle sees a mounted owner.
func MountTree(root Node) {
	mountNode(root)
}

// UnmountTree deactivates a tree, children before parents. For each node
// it stops the Machine, then calls Unmount.
func UnmountTree(root Node) {
	unmountNode(root)
}

func mountNode(n Node) {
	if n == nil {
		return
	}
	if m, ok := n.(Lifecycle); ok {
		m.Mount()
	}
	if o, ok := n.(state.Owner); ok {
		o.StateMachine().Start()
	}
	if children, ok := n.(ChildProvider); ok {
		for _, child := range children.ChildNodes() {
			mountNode(child)
		}
	}
}

func unmountNode(n Node) {
	if n == nil {
		return
	}
	if children, ok := n.(ChildProvider); ok {
		for _, child := range children.ChildNodes() {
			unmountNode(child)
		}
	}
	if o, ok := n.(state.Owner); ok {
		o.StateMachine().Stop()
	}
	if m, ok := n.(Lifecycle); ok {
		m.Unmount()
	}
}
