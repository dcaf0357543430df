package bins

import (
	"iter"
	"maps"
	"slices"
)

type nodeKind uint8

const (
	mappingNode nodeKind = iota
	binNode
)

// Node is one level of the nested bin index: either a mapping from
// partition index to child nodes, or a leaf holding a Bin.
type Node struct {
	kind     nodeKind
	depth    int
	children map[int]*Node
	bin      *Bin
}

func newMapping(depth int) *Node {
	return &Node{kind: mappingNode, depth: depth, children: make(map[int]*Node)}
}

func newLeaf(depth int, b *Bin) *Node {
	return &Node{kind: binNode, depth: depth, bin: b}
}

// IsBin reports whether n is a leaf.
func (n *Node) IsBin() bool { return n.kind == binNode }

// Bin returns the leaf's bin, or nil for a mapping node.
func (n *Node) Bin() *Bin { return n.bin }

// Depth is the index of the dimension whose partition indices key n's
// children. A leaf's depth equals the number of dimensions.
func (n *Node) Depth() int { return n.depth }

// Keys returns the populated partition indices of a mapping node in
// ascending order.
func (n *Node) Keys() []int {
	if n.kind == binNode {
		return nil
	}
	return slices.Sorted(maps.Keys(n.children))
}

// Child returns the node below partition index i.
func (n *Node) Child(i int) (*Node, bool) {
	if n.kind == binNode {
		return nil, false
	}
	c, ok := n.children[i]
	return c, ok
}

// Count is the total number of units in the bins below n.
func (n *Node) Count() int {
	if n.kind == binNode {
		return n.bin.Count()
	}
	total := 0
	for _, c := range n.children {
		total += c.Count()
	}
	return total
}

// Bins yields every bin below n, in ascending path order. The sequence
// can be ranged over any number of times.
func (n *Node) Bins() iter.Seq[*Bin] {
	return func(yield func(*Bin) bool) {
		n.walk(yield)
	}
}

func (n *Node) walk(yield func(*Bin) bool) bool {
	if n.kind == binNode {
		return yield(n.bin)
	}
	for _, k := range n.Keys() {
		if !n.children[k].walk(yield) {
			return false
		}
	}
	return true
}
