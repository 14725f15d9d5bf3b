package sqlparse

import "strings"

// sourceClauses are the clause nodes whose identifiers name stored tables:
// read sources (FROM, JOIN), mutation targets (UPDATE, INTO), DDL targets
// (TABLE), and MERGE sources (USING).
var sourceClauses = map[string]bool{
	"FROM":   true,
	"JOIN":   true,
	"UPDATE": true,
	"INTO":   true,
	"TABLE":  true,
	"USING":  true,
}

// Tables returns the distinct table names referenced by the statement,
// collected from every source and target clause in the tree. Aliases are
// discarded and names defined by a leading WITH are excluded, since a CTE
// name is not a stored table. Names keep their original case; policy
// comparison downstream is case-insensitive.
func (st *Statement) Tables() []string {
	seen := make(map[string]bool)
	var tables []string

	var visit func(n *Node)
	visit = func(n *Node) {
		if n.Kind == NodeIdentifier {
			key := strings.ToLower(n.Value)
			if !seen[key] && !st.cteNames[key] {
				seen[key] = true
				tables = append(tables, n.Value)
			}
		}
		for _, child := range n.Children {
			visit(child)
		}
	}

	for _, clause := range st.Root.Children {
		if clause.Kind == NodeClause && sourceClauses[clause.Value] {
			visit(clause)
		}
	}

	return tables
}

// HasUnqualifiedWildcard reports whether any projection in the statement uses
// a bare "*". A qualified wildcard ("o.*") does not count here: it names a
// single source, which QualifiedWildcardTables resolves for a per-table check.
func (st *Statement) HasUnqualifiedWildcard() bool {
	var found bool
	var visit func(n *Node)
	visit = func(n *Node) {
		if n.Kind == NodeWildcard && n.Qualifier == "" {
			found = true
			return
		}
		for _, child := range n.Children {
			visit(child)
		}
	}
	visit(st.Root)
	return found
}

// QualifiedWildcardTables resolves every qualified wildcard ("o.*") in the
// statement to the table its qualifier names, following aliases declared in
// source clauses. A qualifier that matches no known alias or table is
// returned as-is so the caller still sees a name to check. CTE names are
// excluded, matching Tables.
func (st *Statement) QualifiedWildcardTables() []string {
	aliases := make(map[string]string)
	var collect func(n *Node)
	collect = func(n *Node) {
		if n.Kind == NodeIdentifier {
			aliases[strings.ToLower(n.Value)] = n.Value
			if n.Alias != "" {
				aliases[strings.ToLower(n.Alias)] = n.Value
			}
		}
		for _, child := range n.Children {
			collect(child)
		}
	}
	for _, clause := range st.Root.Children {
		if clause.Kind == NodeClause && sourceClauses[clause.Value] {
			collect(clause)
		}
	}

	seen := make(map[string]bool)
	var tables []string
	var visit func(n *Node)
	visit = func(n *Node) {
		if n.Kind == NodeWildcard && n.Qualifier != "" {
			name := n.Qualifier
			if resolved, ok := aliases[strings.ToLower(n.Qualifier)]; ok {
				name = resolved
			}
			key := strings.ToLower(name)
			if !seen[key] && !st.cteNames[key] {
				seen[key] = true
				tables = append(tables, name)
			}
		}
		for _, child := range n.Children {
			visit(child)
		}
	}
	visit(st.Root)

	return tables
}
