package pipeline

import (
	"fmt"
	"io"
	"sort"
	"time"

	"salonscout/internal/model"
)

// RenderSummary prints a human-readable run summary.
func RenderSummary(w io.Writer, s *Summary) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Harvest Complete\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Collected:   %d / %d", s.Count, s.TargetCap)
	if s.Capped {
		fmt.Fprintf(w, "  (cap reached)")
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Duration:    %v\n", s.Duration.Round(10*time.Millisecond))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Offers:      %d admitted, %d invalid, %d duplicate, %d past cap\n",
		s.Admitted, s.RejectedInvalid, s.RejectedDuplicate, s.RejectedCapReached)

	if s.Count > 0 {
		fmt.Fprintf(w, "  With phone:  %d (%d%%)\n", s.WithPhone, percent(s.WithPhone, s.Count))
		fmt.Fprintf(w, "  With addr:   %d (%d%%)\n", s.WithAddress, percent(s.WithAddress, s.Count))
	}

	if len(s.ByOrigin) > 0 {
		fmt.Fprintf(w, "\n  By source:\n")
		for _, origin := range sortedOrigins(s.ByOrigin) {
			fmt.Fprintf(w, "    %-12s %d\n", origin, s.ByOrigin[origin])
		}
	}
	if len(s.ByAnchor) > 0 {
		fmt.Fprintf(w, "\n  By district:\n")
		for _, anchor := range sortedAnchors(s.ByAnchor) {
			fmt.Fprintf(w, "    %-12s %d\n", anchor, s.ByAnchor[anchor])
		}
	}
	fmt.Fprintf(w, "\n")
}

func percent(part, total int) int {
	return part * 100 / total
}

func sortedOrigins(m map[model.Origin]int) []model.Origin {
	out := make([]model.Origin, 0, len(m))
	for origin := range m {
		out = append(out, origin)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedAnchors(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for anchor := range m {
		out = append(out, anchor)
	}
	sort.Strings(out)
	return out
}
