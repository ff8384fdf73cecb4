package location

import "testing"

func TestBuildCode(t *testing.T) {
	cases := []struct {
		name                            string
		zone, aisle, rack, shelf, level string
		want                            string
	}{
		{"full address", "A", "03", "R1", "2", "L4", "A-03-R1-2-L4"},
		{"skips empty middle", "A", "03", "", "2", "", "A-03-2"},
		{"single component", "", "", "R7", "", "", "R7"},
		{"trims whitespace", " A ", "", "", " 2 ", "", "A-2"},
		{"whitespace only is empty", " ", "\t", "", "", "", CodeUnassigned},
		{"all blank", "", "", "", "", "", CodeUnassigned},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := BuildCode(c.zone, c.aisle, c.rack, c.shelf, c.level)
			if got != c.want {
				t.Fatalf("BuildCode = %q, want %q", got, c.want)
			}
		})
	}
}
