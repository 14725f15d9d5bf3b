package sqlparse

import (
	"strings"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"single statement", "SELECT * FROM sales", []string{"SELECT * FROM sales"}, false},
		{"trailing separator", "SELECT * FROM sales;", []string{"SELECT * FROM sales"}, false},
		{"trailing separator and whitespace", "SELECT * FROM sales ;  ", []string{"SELECT * FROM sales"}, false},
		{"stacked statements", "SELECT 1; DROP TABLE x;", []string{"SELECT 1", "DROP TABLE x"}, false},
		{"separator inside string literal", "SELECT * FROM t WHERE name = 'a;b'", []string{"SELECT * FROM t WHERE name = 'a;b'"}, false},
		{"separator inside double-quoted identifier", `SELECT "a;b" FROM t`, []string{`SELECT "a;b" FROM t`}, false},
		{"empty input", "", nil, false},
		{"whitespace only", "   \n\t ", nil, false},
		{"separators only", ";;;", nil, false},
		{"unterminated literal", "SELECT 'oops", nil, true},
		{"three statements", "SELECT 1; SELECT 2; SELECT 3", []string{"SELECT 1", "SELECT 2", "SELECT 3"}, false},
		{"separator inside line comment", "SELECT id FROM sales WHERE id = 1 -- x;y", []string{"SELECT id FROM sales WHERE id = 1 -- x;y"}, false},
		{"separator inside block comment", "SELECT id /* a;b */ FROM sales", []string{"SELECT id /* a;b */ FROM sales"}, false},
		{"separator after line comment splits", "SELECT 1 -- note\n; SELECT 2", []string{"SELECT 1 -- note", "SELECT 2"}, false},
		{"unterminated block comment kept whole", "SELECT 1 /* dangling;", []string{"SELECT 1 /* dangling;"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitStatements(tt.input, 0)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitStatements(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("SplitStatements(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("statement %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitStatements_MaxLength(t *testing.T) {
	long := "SELECT " + strings.Repeat("x", 200)
	if _, err := SplitStatements(long, 64); err == nil {
		t.Fatal("expected length limit error")
	}
	if _, err := SplitStatements("SELECT 1", 64); err != nil {
		t.Fatalf("short statement should pass: %v", err)
	}
}
