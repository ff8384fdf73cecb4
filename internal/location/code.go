package location

import "strings"

// CodeUnassigned is the location code for slots created without any
// addressing components.
const CodeUnassigned = "UNASSIGNED"

// BuildCode joins the non-empty addressing components with hyphens, e.g.
// zone "A", aisle "03", shelf "2" -> "A-03-2". A slot with no components at
// all gets the sentinel code.
func BuildCode(zone, aisle, rack, shelf, level string) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{zone, aisle, rack, shelf, level} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return CodeUnassigned
	}
	return strings.Join(parts, "-")
}
