// Addr is the 32-bit IPv4 representation used throughout the engine.
// Text parsing and validation live here so the core components only
// ever see already-valid integers.

package sim

import (
	"fmt"
	"math/bits"
	"net/netip"
	"strconv"
	"strings"
)

// Addr is an IPv4 address in host byte order. The zero value (0.0.0.0)
// doubles as "unassigned" for interface addresses.
type Addr uint32

// ParseAddr parses a dotted-quad IPv4 address.
func ParseAddr(s string) (Addr, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil || !ip.Is4() {
		return 0, fmt.Errorf("invalid IPv4 address %q", s)
	}
	b := ip.As4()
	return Addr(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])), nil
}

// ParseMaskLen parses a network mask given as a prefix length ("/24" or
// "24") or as a dotted-quad mask ("255.255.255.0"). Dotted masks must be
// contiguous.
func ParseMaskLen(s string) (int, error) {
	if !strings.Contains(s, ".") {
		t := strings.TrimPrefix(s, "/")
		n, err := strconv.Atoi(t)
		if err != nil || n < 0 || n > 32 {
			return 0, fmt.Errorf("invalid mask length %q", s)
		}
		return n, nil
	}
	m, err := ParseAddr(s)
	if err != nil {
		return 0, fmt.Errorf("invalid mask %q", s)
	}
	n := bits.OnesCount32(uint32(m))
	if MaskFromLen(n) != m {
		return 0, fmt.Errorf("non-contiguous mask %q", s)
	}
	return n, nil
}

// MaskFromLen returns the mask with the top maskLen bits set.
func MaskFromLen(maskLen int) Addr {
	if maskLen <= 0 {
		return 0
	}
	return Addr(^uint32(0) << (32 - maskLen))
}

// Masked returns the network part of a under a mask of maskLen bits.
func (a Addr) Masked(maskLen int) Addr {
	return a & MaskFromLen(maskLen)
}

// Bit returns bit i of the address counting from the most significant
// bit (i=0 is the top bit). Used by the policy trie walk.
func (a Addr) Bit(i int) int {
	return int(a>>(31-i)) & 1
}

// IsUnspecified reports whether a is the zero address.
func (a Addr) IsUnspecified() bool {
	return a == 0
}

func (a Addr) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", byte(a>>24), byte(a>>16), byte(a>>8), byte(a))
}

// CIDR formats an address/mask pair as "a.b.c.d/len".
func CIDR(a Addr, maskLen int) string {
	return fmt.Sprintf("%s/%d", a, maskLen)
}
