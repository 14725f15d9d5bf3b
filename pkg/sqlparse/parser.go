package sqlparse

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/sqlward/sqlward/pkg/errors"
)

// DefaultMaxNestingDepth bounds parenthesis nesting so adversarial input
// cannot force unbounded work.
const DefaultMaxNestingDepth = 32

// NodeKind tags the nodes of the parsed statement tree.
type NodeKind int

const (
	NodeCommand NodeKind = iota
	NodeClause
	NodeIdentifierList
	NodeIdentifier
	NodeWildcard
	NodeFunction
)

// Node is one tagged node of the lightweight statement tree. The tree holds
// just the structure the extractor and decision engine need: the command,
// clause boundaries, identifier lists, and wildcard tokens.
type Node struct {
	Kind      NodeKind
	Value     string // keyword, identifier, or function name
	Alias     string // identifier alias, retained for column qualification
	Qualifier string // wildcard qualifier ("o" in "o.*"), empty if unqualified
	Children  []*Node
}

func (n *Node) addChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return child
}

// Statement is the parsed form of a single SQL statement.
type Statement struct {
	Command     Command
	Root        *Node
	HasWhere    bool
	HasSubquery bool
	JoinCount   int
	Limit       int // explicit LIMIT value, -1 when absent
	Functions   []string

	cteNames map[string]bool
}

// Parser converts one statement substring into a Statement tree. It is
// stateless apart from its limits and safe for concurrent use.
type Parser struct {
	MaxStatementLength int
	MaxNestingDepth    int
}

// NewParser creates a parser with default resource limits.
func NewParser() *Parser {
	return &Parser{
		MaxStatementLength: DefaultMaxStatementLength,
		MaxNestingDepth:    DefaultMaxNestingDepth,
	}
}

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenNumber
	tokenString
	tokenPunct
)

type token struct {
	kind tokenKind
	text string
}

// keywords that terminate an identifier list or can never be an alias.
var reservedWords = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "JOIN": true, "ON": true,
	"AND": true, "OR": true, "NOT": true, "IN": true, "AS": true,
	"GROUP": true, "ORDER": true, "BY": true, "HAVING": true, "LIMIT": true,
	"OFFSET": true, "UNION": true, "INTERSECT": true, "EXCEPT": true,
	"LEFT": true, "RIGHT": true, "INNER": true, "OUTER": true, "FULL": true,
	"CROSS": true, "NATURAL": true, "USING": true, "WITH": true, "SET": true,
	"VALUES": true, "INTO": true, "DISTINCT": true, "ALL": true, "EXISTS": true,
	"BETWEEN": true, "LIKE": true, "IS": true, "NULL": true, "ASC": true,
	"DESC": true, "CASE": true, "WHEN": true, "THEN": true, "ELSE": true,
	"END": true,
}

// Parse converts a single statement into its structural tree. It never
// panics on malformed input; every failure is a structured parse error.
func (p *Parser) Parse(stmt string) (*Statement, error) {
	maxLen := p.MaxStatementLength
	if maxLen <= 0 {
		maxLen = DefaultMaxStatementLength
	}
	if len(stmt) > maxLen {
		return nil, errors.Newf(errors.CodeParseError,
			"statement exceeds maximum length of %d bytes", maxLen)
	}

	toks, err := tokenize(stmt)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, errors.New(errors.CodeParseError, "statement contains no tokens")
	}
	if toks[0].kind != tokenWord {
		return nil, errors.Newf(errors.CodeParseError,
			"statement must start with a keyword, got %q", toks[0].text)
	}

	maxDepth := p.MaxNestingDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxNestingDepth
	}

	leading := strings.ToUpper(toks[0].text)
	st := &Statement{
		Limit:    -1,
		cteNames: make(map[string]bool),
	}
	st.Root = &Node{Kind: NodeCommand, Value: leading}

	if err := p.walk(st, toks, maxDepth); err != nil {
		return nil, err
	}

	st.Command = Classify(leading, st.hasTopLevelSelect(toks))
	return st, nil
}

// hasTopLevelSelect reports whether a depth-zero SELECT follows the leading
// token, which is what classifies a WITH statement as SELECT-equivalent.
func (st *Statement) hasTopLevelSelect(toks []token) bool {
	depth := 0
	for i, tok := range toks {
		if tok.kind == tokenPunct {
			switch tok.text {
			case "(":
				depth++
			case ")":
				depth--
			}
			continue
		}
		if i == 0 {
			continue
		}
		if depth == 0 && tok.kind == tokenWord && strings.EqualFold(tok.text, "SELECT") {
			return true
		}
	}
	return false
}

// walk performs the single structural pass over the token stream, building
// the clause tree and recording the flags the decision gates read.
func (p *Parser) walk(st *Statement, toks []token, maxDepth int) error {
	depth := 0
	var projection *Node
	// Tracks, per nesting level, whether the paren opened a function argument
	// list; a FROM inside one (EXTRACT(YEAR FROM d)) is not a table source.
	var funcParen []bool

	if strings.EqualFold(toks[0].text, "WITH") {
		collectCTENames(st, toks)
	}

	for i := 0; i < len(toks); i++ {
		tok := toks[i]

		if tok.kind == tokenPunct {
			switch tok.text {
			case "(":
				depth++
				if depth > maxDepth {
					return errors.Newf(errors.CodeParseError,
						"nesting exceeds maximum depth of %d", maxDepth)
				}
				isFunc := i > 0 && toks[i-1].kind == tokenWord && !reservedWords[strings.ToUpper(toks[i-1].text)]
				funcParen = append(funcParen, isFunc)
				if i+1 < len(toks) && strings.EqualFold(toks[i+1].text, "SELECT") {
					st.HasSubquery = true
				}
			case ")":
				depth--
				if depth < 0 {
					return errors.New(errors.CodeParseError, "unbalanced parentheses")
				}
				funcParen = funcParen[:len(funcParen)-1]
			case "*":
				if isProjectionWildcard(toks, i) {
					node := &Node{Kind: NodeWildcard}
					if projection != nil {
						projection.addChild(node)
					} else {
						st.Root.addChild(node)
					}
				} else if i >= 2 && toks[i-1].kind == tokenPunct && toks[i-1].text == "." && toks[i-2].kind == tokenWord {
					// Qualified wildcard: "o.*" keeps its qualifier so the
					// column gate can resolve it to a single table.
					node := &Node{Kind: NodeWildcard, Qualifier: toks[i-2].text}
					if projection != nil {
						projection.addChild(node)
					} else {
						st.Root.addChild(node)
					}
				}
			}
			continue
		}

		if tok.kind != tokenWord {
			continue
		}
		upper := strings.ToUpper(tok.text)

		switch upper {
		case "SELECT":
			projection = st.Root.addChild(&Node{Kind: NodeClause, Value: "SELECT"})
		case "FROM":
			if len(funcParen) > 0 && funcParen[len(funcParen)-1] {
				continue
			}
			clause := st.Root.addChild(&Node{Kind: NodeClause, Value: "FROM"})
			next, err := p.parseIdentifierList(st, clause, toks, i+1, true)
			if err != nil {
				return err
			}
			i = next - 1
		case "JOIN":
			st.JoinCount++
			clause := st.Root.addChild(&Node{Kind: NodeClause, Value: "JOIN"})
			next, err := p.parseIdentifierList(st, clause, toks, i+1, false)
			if err != nil {
				return err
			}
			i = next - 1
		case "UPDATE":
			// Only a leading UPDATE names a target table; the word elsewhere
			// ("FOR UPDATE") is not a source.
			if i == 0 {
				clause := st.Root.addChild(&Node{Kind: NodeClause, Value: "UPDATE"})
				next, err := p.parseIdentifierList(st, clause, toks, i+1, false)
				if err != nil {
					return err
				}
				i = next - 1
			}
		case "INTO", "USING", "TABLE":
			// Mutation and DDL targets (INSERT INTO, MERGE INTO, DROP TABLE)
			// and MERGE sources are tables the access gate must see.
			clause := st.Root.addChild(&Node{Kind: NodeClause, Value: upper})
			next, err := p.parseIdentifierList(st, clause, toks, i+1, false)
			if err != nil {
				return err
			}
			i = next - 1
		case "WHERE":
			if depth == 0 {
				st.HasWhere = true
			}
			st.Root.addChild(&Node{Kind: NodeClause, Value: "WHERE"})
		case "GROUP":
			if i+1 < len(toks) && strings.EqualFold(toks[i+1].text, "BY") {
				st.Root.addChild(&Node{Kind: NodeClause, Value: "GROUP BY"})
				i++
			}
		case "LIMIT":
			if depth == 0 && i+1 < len(toks) && toks[i+1].kind == tokenNumber {
				if n, err := strconv.Atoi(toks[i+1].text); err == nil {
					st.Limit = n
					st.Root.addChild(&Node{Kind: NodeClause, Value: "LIMIT"})
					i++
				}
			}
		default:
			// A word directly followed by "(" is a function call.
			if !reservedWords[upper] && i+1 < len(toks) &&
				toks[i+1].kind == tokenPunct && toks[i+1].text == "(" {
				st.Functions = append(st.Functions, upper)
				node := &Node{Kind: NodeFunction, Value: upper}
				if projection != nil {
					projection.addChild(node)
				}
			}
		}
	}

	if depth != 0 {
		return errors.New(errors.CodeParseError, "unbalanced parentheses")
	}
	return nil
}

// parseIdentifierList reads the table references following a source or
// target keyword (FROM, JOIN, UPDATE, INTO, USING, TABLE). FROM accepts a
// comma-separated list; the others take a single reference.
// Aliases ("orders AS o" or "orders o") are kept on the identifier node but
// carry no policy weight. A "(" target is a subquery: its tables surface when
// the walk reaches the inner FROM, so the list parse simply stops.
func (p *Parser) parseIdentifierList(st *Statement, clause *Node, toks []token, start int, allowList bool) (int, error) {
	list := clause.addChild(&Node{Kind: NodeIdentifierList})
	i := start

	for i < len(toks) {
		// Subquery or parenthesized source.
		if toks[i].kind == tokenPunct && toks[i].text == "(" {
			return i, nil
		}
		if toks[i].kind != tokenWord || reservedWords[strings.ToUpper(toks[i].text)] {
			if len(list.Children) == 0 {
				return i, errors.Newf(errors.CodeParseError,
					"expected table name after %s, got %q", clause.Value, tokenText(toks, i))
			}
			return i, nil
		}

		name := toks[i].text
		i++
		// Dotted references: schema.table keeps the full dotted name.
		for i+1 < len(toks) && toks[i].kind == tokenPunct && toks[i].text == "." && toks[i+1].kind == tokenWord {
			name += "." + toks[i+1].text
			i += 2
		}

		ident := &Node{Kind: NodeIdentifier, Value: name}

		// Optional alias: "AS o" or bare "o".
		if i < len(toks) && toks[i].kind == tokenWord && strings.EqualFold(toks[i].text, "AS") {
			if i+1 >= len(toks) || toks[i+1].kind != tokenWord {
				return i, errors.New(errors.CodeParseError, "expected alias after AS")
			}
			ident.Alias = toks[i+1].text
			i += 2
		} else if i < len(toks) && toks[i].kind == tokenWord && !reservedWords[strings.ToUpper(toks[i].text)] {
			ident.Alias = toks[i].text
			i++
		}

		list.addChild(ident)

		if !allowList || i >= len(toks) || toks[i].kind != tokenPunct || toks[i].text != "," {
			return i, nil
		}
		i++ // consume comma and continue the list
	}

	if len(list.Children) == 0 {
		return i, errors.Newf(errors.CodeParseError, "expected table name after %s", clause.Value)
	}
	return i, nil
}

// isProjectionWildcard reports whether the "*" at index i is an unqualified
// projection wildcard. Qualified wildcards ("o.*") follow a dot, and "*"
// inside an argument list ("COUNT(*)") or used as an operator follows "(" or
// an operand, so only SELECT, its ALL/DISTINCT quantifiers, or a list comma
// can precede one.
func isProjectionWildcard(toks []token, i int) bool {
	if i == 0 {
		return false
	}
	prev := toks[i-1]
	if prev.kind == tokenPunct {
		return prev.text == ","
	}
	if prev.kind == tokenWord {
		upper := strings.ToUpper(prev.text)
		return upper == "SELECT" || upper == "DISTINCT" || upper == "ALL"
	}
	return false
}

// collectCTENames records names defined by a leading WITH so the extractor
// does not report them as referenced tables.
func collectCTENames(st *Statement, toks []token) {
	depth := 0
	expectName := true // directly after WITH or after a top-level comma
	for i := 1; i < len(toks); i++ {
		tok := toks[i]
		if tok.kind == tokenPunct {
			switch tok.text {
			case "(":
				depth++
			case ")":
				depth--
			case ",":
				if depth == 0 {
					expectName = true
				}
			}
			continue
		}
		if tok.kind != tokenWord || depth != 0 {
			continue
		}
		upper := strings.ToUpper(tok.text)
		if upper == "SELECT" {
			return // the terminal SELECT ends the CTE definition list
		}
		if upper == "RECURSIVE" {
			continue
		}
		if expectName && !reservedWords[upper] {
			st.cteNames[strings.ToLower(tok.text)] = true
			expectName = false
		}
	}
}

func tokenText(toks []token, i int) string {
	if i >= len(toks) {
		return "end of statement"
	}
	return toks[i].text
}

// tokenize splits a statement into word, number, string, and punctuation
// tokens. Keywords are matched on word boundaries downstream, so a column
// named "updated_at" is a single word token, never the keyword UPDATE.
func tokenize(stmt string) ([]token, error) {
	var toks []token
	runes := []rune(stmt)

	for i := 0; i < len(runes); {
		ch := runes[i]

		switch {
		case unicode.IsSpace(ch):
			i++
		case ch == '\'' || ch == '"' || ch == '`':
			quote := ch
			j := i + 1
			for j < len(runes) && runes[j] != quote {
				j++
			}
			if j >= len(runes) {
				return nil, errors.New(errors.CodeParseError, "unterminated string literal")
			}
			toks = append(toks, token{kind: tokenString, text: string(runes[i+1 : j])})
			i = j + 1
		case ch == '-' && i+1 < len(runes) && runes[i+1] == '-':
			// Line comment runs to end of line.
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case ch == '/' && i+1 < len(runes) && runes[i+1] == '*':
			j := i + 2
			for j+1 < len(runes) && !(runes[j] == '*' && runes[j+1] == '/') {
				j++
			}
			if j+1 >= len(runes) {
				return nil, errors.New(errors.CodeParseError, "unterminated block comment")
			}
			i = j + 2
		case unicode.IsLetter(ch) || ch == '_':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_' || runes[j] == '$') {
				j++
			}
			toks = append(toks, token{kind: tokenWord, text: string(runes[i:j])})
			i = j
		case unicode.IsDigit(ch):
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			toks = append(toks, token{kind: tokenNumber, text: string(runes[i:j])})
			i = j
		default:
			toks = append(toks, token{kind: tokenPunct, text: string(ch)})
			i++
		}
	}

	return toks, nil
}
