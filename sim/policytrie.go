// Per-device policy trie: a binary (per-bit) trie over IPv4 prefixes.
//
// A policy set at depth d applies to every address sharing its first d
// bits until a deeper prefix overrides it. Lookup walks the destination
// address bit by bit and remembers the deepest policy seen, which is
// what gives broad prefixes their inheritance semantics.

package sim

import (
	"fmt"
	"strings"
)

// PolicyType identifies the kind of a forwarding policy.
type PolicyType string

const (
	PolicyBlock  PolicyType = "block"
	PolicyMinTTL PolicyType = "ttl-min"
)

// Policy is the closed set of forwarding policies. MinTTL is only
// meaningful when Type is PolicyMinTTL.
type Policy struct {
	Type   PolicyType
	MinTTL int
}

func (p Policy) String() string {
	if p.Type == PolicyMinTTL {
		return fmt.Sprintf("ttl-min %d", p.MinTTL)
	}
	return string(p.Type)
}

type trieNode struct {
	children [2]*trieNode
	policy   *Policy
	// label is set on nodes that carry (or carried) a policy, for display.
	prefix  Addr
	maskLen int
	labeled bool
}

// PolicyTrie holds one device's hierarchical forwarding policies.
type PolicyTrie struct {
	root *trieNode
}

func NewPolicyTrie() *PolicyTrie {
	return &PolicyTrie{root: &trieNode{}}
}

// SetPolicy stores p at the node for prefix/maskLen, creating
// intermediate nodes as needed. An existing policy there is overwritten.
func (pt *PolicyTrie) SetPolicy(prefix Addr, maskLen int, p Policy) {
	n := pt.root
	for i := 0; i < maskLen; i++ {
		b := prefix.Bit(i)
		if n.children[b] == nil {
			n.children[b] = &trieNode{}
		}
		n = n.children[b]
	}
	cp := p
	n.policy = &cp
	n.prefix = prefix.Masked(maskLen)
	n.maskLen = maskLen
	n.labeled = true
}

// UnsetPolicy clears the policy at prefix/maskLen. Intermediate nodes
// are left in place. Returns false when no policy was set there; that
// is a silent no-op, not an error.
func (pt *PolicyTrie) UnsetPolicy(prefix Addr, maskLen int) bool {
	n := pt.root
	for i := 0; i < maskLen; i++ {
		n = n.children[prefix.Bit(i)]
		if n == nil {
			return false
		}
	}
	if n.policy == nil {
		return false
	}
	n.policy = nil
	return true
}

// LookupPolicy returns the most specific policy covering ip, possibly
// inherited from a shorter prefix, or false when none applies.
func (pt *PolicyTrie) LookupPolicy(ip Addr) (Policy, bool) {
	n := pt.root
	var best *Policy
	if n.policy != nil {
		best = n.policy
	}
	for i := 0; i < 32; i++ {
		n = n.children[ip.Bit(i)]
		if n == nil {
			break
		}
		if n.policy != nil {
			best = n.policy
		}
	}
	if best == nil {
		return Policy{}, false
	}
	return *best, true
}

// PolicyEntry is one configured policy, used for display and
// serialization.
type PolicyEntry struct {
	Prefix  Addr
	MaskLen int
	Policy  Policy
}

// Entries returns all configured policies, shallowest first.
func (pt *PolicyTrie) Entries() []PolicyEntry {
	var out []PolicyEntry
	var walk func(n *trieNode)
	walk = func(n *trieNode) {
		if n == nil {
			return
		}
		if n.policy != nil {
			out = append(out, PolicyEntry{Prefix: n.prefix, MaskLen: n.maskLen, Policy: *n.policy})
		}
		walk(n.children[0])
		walk(n.children[1])
	}
	walk(pt.root)
	return out
}

// RenderTree returns an indented diagram of the configured prefixes for
// the `show ip prefix-tree` command.
func (pt *PolicyTrie) RenderTree() string {
	var sb strings.Builder
	var walk func(n *trieNode, depth int)
	walk = func(n *trieNode, depth int) {
		if n == nil {
			return
		}
		if n.labeled {
			sb.WriteString(strings.Repeat("    ", depth))
			sb.WriteString("└── ")
			sb.WriteString(CIDR(n.prefix, n.maskLen))
			if n.policy != nil {
				sb.WriteString(" [" + n.policy.String() + "]")
			}
			sb.WriteString("\n")
			depth++
		}
		walk(n.children[0], depth)
		walk(n.children[1], depth)
	}
	walk(pt.root, 0)
	if sb.Len() == 0 {
		return "(no policies)\n"
	}
	return sb.String()
}
