package runtime

import (
	"testing"

	"github.com/odvcencio/furry-state/state"
)

type lifecycleNode struct {
	name     string
	children []Node
	machine  *state.Machine
	log      *[]string
}

func newLifecycleNode(name string, log *[]string, children ...Node) *lifecycleNode {
	n := &lifecycleNode{name: name, children: children, log: log}
	n.machine = state.NewMachine(n)
	return n
}

func (n *lifecycleNode) StateMachine() *state.Machine {
	return n.machine
}

func (n *lifecycleNode) Update(v *state.Validator) {
	if v.IsAll() {
		*n.log = append(*n.log, n.name+":refresh")
	}
}

func (n *lifecycleNode) ChildNodes() []Node {
	return n.children
}

func (n *lifecycleNode) Mount() {
	*n.log = append(*n.log, n.name+":mount")
}

func (n *lifecycleNode) Unmount() {
	*n.log = append(*n.log, n.name+":unmount")
}

func expectLog(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestMountTree_ParentsFirst(t *testing.T) {
	var log []string
	child := newLifecycleNode("child", &log)
	root := newLifecycleNode("root", &log, child)

	MountTree(root)
	expectLog(t, log, []string{"root:mount", "root:refresh", "child:mount", "child:refresh"})
	if !root.machine.Running() || !child.machine.Running() {
		t.Fatalf("expected both machines running")
	}
}

func TestUnmountTree_ChildrenFirst(t *testing.T) {
	var log []string
	child := newLifecycleNode("child", &log)
	root := newLifecycleNode("root", &log, child)
	MountTree(root)
	log = nil

	UnmountTree(root)
	expectLog(t, log, []string{"child:unmount", "root:unmount"})
	if root.machine.Running() || child.machine.Running() {
		t.Fatalf("expected both machines stopped")
	}

	MountTree(root)
	if len(log) != 6 || log[3] != "root:refresh" {
		t.Fatalf("expected full refresh after remount, got %v", log)
	}
}

func TestMountTree_NilAndPlainNodes(t *testing.T) {
	MountTree(nil)
	UnmountTree(nil)
	MountTree(struct{}{})
}
