// Network-wide statistics accumulated across ticks, reported in the
// style of a final metrics summary.

package sim

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Stats aggregates counters across the life of a Network.
type Stats struct {
	PacketsSent      int               // packets accepted by Send
	PacketsDelivered int               // packets that reached their destination
	PacketsDropped   int               // packets dropped for any reason
	DroppedByReason  map[ErrorKind]int // drop counts per taxonomy kind
	HopSum           int               // sum of path lengths of delivered packets
	DeviceActivity   map[string]int    // packets processed per device
	Ticks            int               // tick invocations so far

	hopCounts []float64 // per delivered packet, for mean/quantiles
}

func NewStats() *Stats {
	return &Stats{
		DroppedByReason: make(map[ErrorKind]int),
		DeviceActivity:  make(map[string]int),
	}
}

func (s *Stats) recordDelivered(p *Packet) {
	s.PacketsDelivered++
	s.HopSum += len(p.Path)
	s.hopCounts = append(s.hopCounts, float64(len(p.Path)))
}

func (s *Stats) recordDropped(kind ErrorKind) {
	s.PacketsDropped++
	s.DroppedByReason[kind]++
}

// Report is a point-in-time summary of the counters.
type Report struct {
	PacketsSent      int               `json:"total_packets_sent"`
	Delivered        int               `json:"delivered"`
	Dropped          int               `json:"dropped"`
	DroppedByReason  map[ErrorKind]int `json:"dropped_by_reason"`
	AverageHops      float64           `json:"average_hops"`
	P95Hops          float64           `json:"p95_hops"`
	TopTalker        string            `json:"top_talker"`
	TopTalkerPackets int               `json:"top_talker_packets"`
	Ticks            int               `json:"ticks"`
}

// Report computes derived figures from the raw counters.
func (s *Stats) Report() Report {
	r := Report{
		PacketsSent:     s.PacketsSent,
		Delivered:       s.PacketsDelivered,
		Dropped:         s.PacketsDropped,
		DroppedByReason: s.DroppedByReason,
		Ticks:           s.Ticks,
	}
	if len(s.hopCounts) > 0 {
		hops := make([]float64, len(s.hopCounts))
		copy(hops, s.hopCounts)
		sort.Float64s(hops)
		r.AverageHops = stat.Mean(hops, nil)
		r.P95Hops = stat.Quantile(0.95, stat.Empirical, hops, nil)
	}
	// Iterate names in sorted order so ties break deterministically.
	names := make([]string, 0, len(s.DeviceActivity))
	for name := range s.DeviceActivity {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if n := s.DeviceActivity[name]; r.TopTalker == "" || n > r.TopTalkerPackets {
			r.TopTalker = name
			r.TopTalkerPackets = n
		}
	}
	return r
}

// Print displays the report on stdout.
func (r Report) Print() {
	fmt.Println("=== Network Statistics ===")
	fmt.Printf("Total packets sent : %d\n", r.PacketsSent)
	fmt.Printf("Delivered          : %d\n", r.Delivered)
	fmt.Printf("Dropped            : %d\n", r.Dropped)
	for kind, n := range r.DroppedByReason {
		fmt.Printf("  %-17s: %d\n", kind, n)
	}
	fmt.Printf("Average hops       : %.2f\n", r.AverageHops)
	fmt.Printf("P95 hops           : %.2f\n", r.P95Hops)
	if r.TopTalker != "" {
		fmt.Printf("Top talker         : %s (%d packets)\n", r.TopTalker, r.TopTalkerPackets)
	}
	fmt.Printf("Ticks              : %d\n", r.Ticks)
}

// Export writes the report as JSON to filename.
func (r Report) Export(filename string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal statistics: %w", err)
	}
	return os.WriteFile(filename, data, 0o644)
}
