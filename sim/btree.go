// Session-scoped snapshot index: a B-tree of order t mapping snapshot
// keys to the configuration files they were saved under.
//
// Insertion is top-down: a full root is split before anything else, and
// any full child is split before the descent enters it, so no node is
// ever over-full when a key lands in it. The contract has no delete.

package sim

import "fmt"

// DefaultBTreeOrder matches the index order used for snapshots.
const DefaultBTreeOrder = 4

// SnapshotEntry is one key → filename mapping.
type SnapshotEntry struct {
	Key   string
	Value string
}

// SnapshotIndexStats summarizes tree shape and split activity.
type SnapshotIndexStats struct {
	Order  int
	Nodes  int
	Height int
	Splits int
}

type btNode struct {
	keys     []string
	values   []string
	children []*btNode
	leaf     bool
}

// SnapshotIndex is a B-tree keyed by snapshot name. Construct with
// NewSnapshotIndex.
type SnapshotIndex struct {
	root   *btNode
	order  int
	splits int
}

// NewSnapshotIndex creates an empty index of the given order t (nodes
// hold at most 2t-1 keys). Orders below 2 fall back to the default.
func NewSnapshotIndex(order int) *SnapshotIndex {
	if order < 2 {
		order = DefaultBTreeOrder
	}
	return &SnapshotIndex{
		root:  &btNode{leaf: true},
		order: order,
	}
}

func (si *SnapshotIndex) full(n *btNode) bool {
	return len(n.keys) == 2*si.order-1
}

// Insert adds key → value. Duplicate keys are stored as written; Search
// returns the first (leftmost) occurrence.
func (si *SnapshotIndex) Insert(key, value string) {
	if si.full(si.root) {
		newRoot := &btNode{children: []*btNode{si.root}}
		si.splitChild(newRoot, 0)
		si.root = newRoot
	}
	si.insertNonFull(si.root, key, value)
}

func (si *SnapshotIndex) insertNonFull(n *btNode, key, value string) {
	i := len(n.keys) - 1
	if n.leaf {
		for i >= 0 && key < n.keys[i] {
			i--
		}
		i++
		n.keys = append(n.keys, "")
		n.values = append(n.values, "")
		copy(n.keys[i+1:], n.keys[i:])
		copy(n.values[i+1:], n.values[i:])
		n.keys[i] = key
		n.values[i] = value
		return
	}
	for i >= 0 && key < n.keys[i] {
		i--
	}
	i++
	if si.full(n.children[i]) {
		si.splitChild(n, i)
		if key > n.keys[i] {
			i++
		}
	}
	si.insertNonFull(n.children[i], key, value)
}

// splitChild splits parent.children[i] (which must be full) around its
// median key, which moves up into the parent.
func (si *SnapshotIndex) splitChild(parent *btNode, i int) {
	t := si.order
	y := parent.children[i]
	z := &btNode{leaf: y.leaf}

	z.keys = append(z.keys, y.keys[t:]...)
	z.values = append(z.values, y.values[t:]...)
	midKey, midVal := y.keys[t-1], y.values[t-1]
	y.keys = y.keys[:t-1]
	y.values = y.values[:t-1]
	if !y.leaf {
		z.children = append(z.children, y.children[t:]...)
		y.children = y.children[:t]
	}

	parent.keys = append(parent.keys, "")
	parent.values = append(parent.values, "")
	copy(parent.keys[i+1:], parent.keys[i:])
	copy(parent.values[i+1:], parent.values[i:])
	parent.keys[i] = midKey
	parent.values[i] = midVal

	parent.children = append(parent.children, nil)
	copy(parent.children[i+2:], parent.children[i+1:])
	parent.children[i+1] = z

	si.splits++
}

// Search returns the value stored under key, or false when absent.
func (si *SnapshotIndex) Search(key string) (string, bool) {
	n := si.root
	for {
		i := 0
		for i < len(n.keys) && key > n.keys[i] {
			i++
		}
		if i < len(n.keys) && key == n.keys[i] {
			return n.values[i], true
		}
		if n.leaf {
			return "", false
		}
		n = n.children[i]
	}
}

// InOrder returns every entry in ascending key order.
func (si *SnapshotIndex) InOrder() []SnapshotEntry {
	var out []SnapshotEntry
	var walk func(n *btNode)
	walk = func(n *btNode) {
		if n.leaf {
			for i := range n.keys {
				out = append(out, SnapshotEntry{Key: n.keys[i], Value: n.values[i]})
			}
			return
		}
		for i := range n.keys {
			walk(n.children[i])
			out = append(out, SnapshotEntry{Key: n.keys[i], Value: n.values[i]})
		}
		walk(n.children[len(n.keys)])
	}
	walk(si.root)
	return out
}

// Stats returns order, node count, height and the cumulative number of
// node splits.
func (si *SnapshotIndex) Stats() SnapshotIndexStats {
	var count func(n *btNode) int
	count = func(n *btNode) int {
		total := 1
		for _, c := range n.children {
			total += count(c)
		}
		return total
	}
	h := 1
	for n := si.root; !n.leaf; n = n.children[0] {
		h++
	}
	return SnapshotIndexStats{
		Order:  si.order,
		Nodes:  count(si.root),
		Height: h,
		Splits: si.splits,
	}
}

func (s SnapshotIndexStats) String() string {
	return fmt.Sprintf("order=%d height=%d nodes=%d splits=%d", s.Order, s.Height, s.Nodes, s.Splits)
}
