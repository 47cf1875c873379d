package services

import "testing"

func TestResolveNickname(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		taken     []string
		want      string
	}{
		{"free nickname kept", "Aidos", nil, "Aidos"},
		{"whitespace trimmed", "  Aidos  ", nil, "Aidos"},
		{"first duplicate gets (2)", "Aidos", []string{"Aidos"}, "Aidos (2)"},
		{"second duplicate gets (3)", "Aidos", []string{"Aidos", "Aidos (2)"}, "Aidos (3)"},
		{"numbering continues past a gap", "Ali", []string{"Ali", "Ali (3)"}, "Ali (4)"},
		{"highest suffix wins over order", "Ali", []string{"Ali (5)", "Ali", "Ali (2)"}, "Ali (6)"},
		{"suffixed name taken but base free", "Aidos", []string{"Aidos (2)"}, "Aidos"},
		{"unrelated names ignored", "Aidos", []string{"Dana", "Miras"}, "Aidos"},
		{"non-numeric suffix ignored", "Aidos", []string{"Aidos", "Aidos (next)"}, "Aidos (2)"},
		{"nickname that already looks suffixed", "Aidos (2)", []string{"Aidos (2)"}, "Aidos (2) (2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveNickname(tt.requested, tt.taken)
			if got != tt.want {
				t.Errorf("resolveNickname(%q, %v) = %q, want %q", tt.requested, tt.taken, got, tt.want)
			}
		})
	}
}
