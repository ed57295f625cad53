// Per-device route table backed by an AVL tree.
//
// The tree is ordered by (network ascending, mask length descending,
// metric ascending). Lookup is a true longest-prefix match: every node
// whose network covers the destination is a candidate regardless of
// where tree-order placed it, so the search scans the whole tree and
// keeps the most specific match.

package sim

import (
	"fmt"
	"strings"
)

// Route is a single routing table entry.
type Route struct {
	Prefix  Addr // as configured; Network() applies the mask
	MaskLen int
	NextHop Addr
	Metric  int
}

// Network returns the prefix with host bits cleared.
func (r Route) Network() Addr {
	return r.Prefix.Masked(r.MaskLen)
}

func (r Route) String() string {
	return fmt.Sprintf("%s via %s metric %d", CIDR(r.Network(), r.MaskLen), r.NextHop, r.Metric)
}

// RotationStats counts AVL rebalancing rotations by case.
type RotationStats struct {
	LL int
	RR int
	LR int
	RL int
}

// RouteTableStats summarizes tree shape and rebalancing activity.
type RouteTableStats struct {
	Nodes     int
	Height    int
	Rotations RotationStats
}

type rtNode struct {
	route  Route
	left   *rtNode
	right  *rtNode
	height int
}

// RouteTable is an AVL-balanced routing table. The zero value is not
// usable; construct with NewRouteTable.
type RouteTable struct {
	root      *rtNode
	size      int
	rotations RotationStats
}

func NewRouteTable() *RouteTable {
	return &RouteTable{}
}

// orderKey compares full ordering keys:
// (network asc, maskLen desc, metric asc).
func orderKey(a, b Route) int {
	an, bn := a.Network(), b.Network()
	switch {
	case an < bn:
		return -1
	case an > bn:
		return 1
	}
	switch {
	case a.MaskLen > b.MaskLen:
		return -1
	case a.MaskLen < b.MaskLen:
		return 1
	}
	switch {
	case a.Metric < b.Metric:
		return -1
	case a.Metric > b.Metric:
		return 1
	}
	return 0
}

// sameEntry reports whether two routes are the same table entry for
// update/delete purposes. Next-hop and metric are not part of identity.
func sameEntry(a, b Route) bool {
	return a.Network() == b.Network() && a.MaskLen == b.MaskLen
}

// AddRoute inserts a route, or updates next-hop and metric in place if
// an entry with the same network and mask length already exists. Later
// writes win; duplicates are never an error.
func (rt *RouteTable) AddRoute(prefix Addr, maskLen int, nextHop Addr, metric int) {
	r := Route{Prefix: prefix, MaskLen: maskLen, NextHop: nextHop, Metric: metric}
	rt.root = rt.insert(rt.root, r)
}

// DelRoute removes the entry matching network and mask length. It
// returns false (and changes nothing) when no such entry exists; an
// absent key is a silent no-op, not an error.
func (rt *RouteTable) DelRoute(prefix Addr, maskLen int) bool {
	target := Route{Prefix: prefix, MaskLen: maskLen}
	before := rt.size
	rt.root = rt.remove(rt.root, target)
	return rt.size < before
}

// Lookup returns the longest-prefix match for dest, tie-broken by
// lowest metric, or false when no stored prefix covers it.
func (rt *RouteTable) Lookup(dest Addr) (Route, bool) {
	var best Route
	found := false
	var walk func(n *rtNode)
	walk = func(n *rtNode) {
		if n == nil {
			return
		}
		r := n.route
		if dest.Masked(r.MaskLen) == r.Network() {
			if !found ||
				r.MaskLen > best.MaskLen ||
				(r.MaskLen == best.MaskLen && r.Metric < best.Metric) {
				best = r
				found = true
			}
		}
		walk(n.left)
		walk(n.right)
	}
	walk(rt.root)
	return best, found
}

// Routes returns all entries in tree order.
func (rt *RouteTable) Routes() []Route {
	out := make([]Route, 0, rt.size)
	var walk func(n *rtNode)
	walk = func(n *rtNode) {
		if n == nil {
			return
		}
		walk(n.left)
		out = append(out, n.route)
		walk(n.right)
	}
	walk(rt.root)
	return out
}

// Len returns the number of entries.
func (rt *RouteTable) Len() int {
	return rt.size
}

// Stats returns node count, height and rotation counters.
func (rt *RouteTable) Stats() RouteTableStats {
	return RouteTableStats{
		Nodes:     rt.size,
		Height:    height(rt.root),
		Rotations: rt.rotations,
	}
}

// RenderTree returns an ASCII diagram of the tree, right subtree on
// top, for the `show ip route-tree` command.
func (rt *RouteTable) RenderTree() string {
	var sb strings.Builder
	renderRT(&sb, rt.root, "", true)
	return sb.String()
}

func renderRT(sb *strings.Builder, n *rtNode, prefix string, isLeft bool) {
	if n == nil {
		return
	}
	if n.right != nil {
		childPrefix := prefix + "    "
		if isLeft {
			childPrefix = prefix + "│   "
		}
		renderRT(sb, n.right, childPrefix, false)
	}
	sb.WriteString(prefix)
	if isLeft {
		sb.WriteString("└── ")
	} else {
		sb.WriteString("┌── ")
	}
	sb.WriteString(fmt.Sprintf("[%s]\n", CIDR(n.route.Network(), n.route.MaskLen)))
	if n.left != nil {
		childPrefix := prefix + "│   "
		if isLeft {
			childPrefix = prefix + "    "
		}
		renderRT(sb, n.left, childPrefix, true)
	}
}

func height(n *rtNode) int {
	if n == nil {
		return 0
	}
	return n.height
}

func balance(n *rtNode) int {
	if n == nil {
		return 0
	}
	return height(n.left) - height(n.right)
}

func fix(n *rtNode) {
	n.height = 1 + max(height(n.left), height(n.right))
}

func (rt *RouteTable) rotateRight(y *rtNode) *rtNode {
	x := y.left
	t := x.right
	x.right = y
	y.left = t
	fix(y)
	fix(x)
	return x
}

func (rt *RouteTable) rotateLeft(x *rtNode) *rtNode {
	y := x.right
	t := y.left
	y.left = x
	x.right = t
	fix(x)
	fix(y)
	return y
}

func (rt *RouteTable) insert(n *rtNode, r Route) *rtNode {
	if n == nil {
		rt.size++
		return &rtNode{route: r, height: 1}
	}
	if sameEntry(n.route, r) {
		// Same network/mask: update in place. Metric only orders
		// entries with identical network+mask, which are unique,
		// so rewriting it cannot break tree order.
		n.route.NextHop = r.NextHop
		n.route.Metric = r.Metric
		return n
	}
	if orderKey(r, n.route) < 0 {
		n.left = rt.insert(n.left, r)
	} else {
		n.right = rt.insert(n.right, r)
	}
	fix(n)
	return rt.rebalanceInsert(n, r)
}

func (rt *RouteTable) rebalanceInsert(n *rtNode, r Route) *rtNode {
	b := balance(n)
	if b > 1 && orderKey(r, n.left.route) < 0 {
		rt.rotations.LL++
		return rt.rotateRight(n)
	}
	if b < -1 && orderKey(r, n.right.route) > 0 {
		rt.rotations.RR++
		return rt.rotateLeft(n)
	}
	if b > 1 {
		rt.rotations.LR++
		n.left = rt.rotateLeft(n.left)
		return rt.rotateRight(n)
	}
	if b < -1 {
		rt.rotations.RL++
		n.right = rt.rotateRight(n.right)
		return rt.rotateLeft(n)
	}
	return n
}

// entryKey compares identity keys only (network asc, maskLen desc), for
// removal where the metric is unknown.
func entryKey(a, b Route) int {
	an, bn := a.Network(), b.Network()
	switch {
	case an < bn:
		return -1
	case an > bn:
		return 1
	}
	switch {
	case a.MaskLen > b.MaskLen:
		return -1
	case a.MaskLen < b.MaskLen:
		return 1
	}
	return 0
}

func (rt *RouteTable) remove(n *rtNode, target Route) *rtNode {
	if n == nil {
		return nil
	}
	switch c := entryKey(target, n.route); {
	case c < 0:
		n.left = rt.remove(n.left, target)
	case c > 0:
		n.right = rt.remove(n.right, target)
	default:
		rt.size--
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		// Two children: promote the in-order successor.
		succ := n.right
		for succ.left != nil {
			succ = succ.left
		}
		n.route = succ.route
		rt.size++ // the recursive remove below decrements again
		n.right = rt.remove(n.right, succ.route)
	}
	fix(n)
	return rt.rebalanceRemove(n)
}

func (rt *RouteTable) rebalanceRemove(n *rtNode) *rtNode {
	b := balance(n)
	if b > 1 && balance(n.left) >= 0 {
		rt.rotations.LL++
		return rt.rotateRight(n)
	}
	if b > 1 {
		rt.rotations.LR++
		n.left = rt.rotateLeft(n.left)
		return rt.rotateRight(n)
	}
	if b < -1 && balance(n.right) <= 0 {
		rt.rotations.RR++
		return rt.rotateLeft(n)
	}
	if b < -1 {
		rt.rotations.RL++
		n.right = rt.rotateRight(n.right)
		return rt.rotateLeft(n)
	}
	return n
}
