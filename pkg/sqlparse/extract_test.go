package sqlparse

import (
	"sort"
	"testing"
)

func parseTables(t *testing.T, sql string) []string {
	t.Helper()
	st, err := NewParser().Parse(sql)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", sql, err)
	}
	tables := st.Tables()
	sort.Strings(tables)
	return tables
}

func TestTables(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{"single table", "SELECT id FROM sales", []string{"sales"}},
		{"alias with AS", "SELECT o.id FROM orders AS o", []string{"orders"}},
		{"bare alias", "SELECT o.id FROM orders o", []string{"orders"}},
		{"comma list", "SELECT * FROM sales, customers", []string{"customers", "sales"}},
		{"join", "SELECT * FROM orders o JOIN customers c ON o.cid = c.id", []string{"customers", "orders"}},
		{"multiple joins", "SELECT * FROM a JOIN b ON a.x = b.x INNER JOIN c ON b.y = c.y", []string{"a", "b", "c"}},
		{"subquery table surfaces", "SELECT id FROM sales WHERE id IN (SELECT sid FROM returns)", []string{"returns", "sales"}},
		{"schema qualified", "SELECT id FROM analytics.sales", []string{"analytics.sales"}},
		{"duplicate references deduped", "SELECT * FROM sales s1 JOIN sales s2 ON s1.id = s2.id", []string{"sales"}},
		{"cte name excluded", "WITH top AS (SELECT * FROM sales) SELECT * FROM top", []string{"sales"}},
		{"two ctes excluded", "WITH a AS (SELECT 1 FROM sales), b AS (SELECT 2 FROM customers) SELECT * FROM a JOIN b ON a.x = b.x", []string{"customers", "sales"}},
		{"extract is not a source", "SELECT EXTRACT(YEAR FROM order_date) FROM orders", []string{"orders"}},
		{"update target", "UPDATE products SET price = 0 WHERE id = 1", []string{"products"}},
		{"insert target", "INSERT INTO sales (id, amount) VALUES (1, 2)", []string{"sales"}},
		{"merge target and source", "MERGE INTO sales USING staging ON sales.id = staging.id", []string{"sales", "staging"}},
		{"drop target", "DROP TABLE products", []string{"products"}},
		{"truncate target", "TRUNCATE TABLE sales", []string{"sales"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTables(t, tt.sql)
			if len(got) != len(tt.want) {
				t.Fatalf("Tables(%q) = %v, want %v", tt.sql, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Tables(%q) = %v, want %v", tt.sql, got, tt.want)
					break
				}
			}
		})
	}
}

func TestHasUnqualifiedWildcard(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want bool
	}{
		{"bare star", "SELECT * FROM sales", true},
		{"star in list", "SELECT id, * FROM sales", true},
		{"distinct star", "SELECT DISTINCT * FROM sales", true},
		{"all star", "SELECT ALL * FROM sales", true},
		{"qualified star", "SELECT o.* FROM orders o", false},
		{"named columns", "SELECT id, amount FROM sales", false},
		{"count star is not a projection", "SELECT COUNT(*) FROM sales", false},
		{"star in subquery", "SELECT id FROM sales WHERE id IN (SELECT * FROM returns)", true},
		{"multiplication is not a wildcard", "SELECT price * 2 FROM sales", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := NewParser().Parse(tt.sql)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.sql, err)
			}
			if got := st.HasUnqualifiedWildcard(); got != tt.want {
				t.Errorf("HasUnqualifiedWildcard(%q) = %v, want %v", tt.sql, got, tt.want)
			}
		})
	}
}

func TestQualifiedWildcardTables(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{"alias resolves to table", "SELECT c.* FROM customers c", []string{"customers"}},
		{"as-alias resolves to table", "SELECT o.* FROM orders AS o", []string{"orders"}},
		{"table name as qualifier", "SELECT sales.* FROM sales", []string{"sales"}},
		{"no qualified wildcard", "SELECT * FROM sales", nil},
		{"named columns", "SELECT id, amount FROM sales", nil},
		{"unknown qualifier kept as-is", "SELECT x.* FROM sales s", []string{"x"}},
		{"two qualifiers", "SELECT a.*, b.* FROM orders a JOIN customers b ON a.id = b.id", []string{"customers", "orders"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := NewParser().Parse(tt.sql)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.sql, err)
			}
			got := st.QualifiedWildcardTables()
			sort.Strings(got)
			if len(got) != len(tt.want) {
				t.Fatalf("QualifiedWildcardTables(%q) = %v, want %v", tt.sql, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("QualifiedWildcardTables(%q) = %v, want %v", tt.sql, got, tt.want)
					break
				}
			}
		})
	}
}
