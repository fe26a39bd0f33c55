package sqlgen

import (
	"fmt"
	"strings"
	"unicode"
)

// sqlKeywords are tokens that may appear in a valid SELECT without being
// catalog identifiers.
var sqlKeywords = map[string]bool{
	"select": true, "from": true, "where": true, "group": true, "by": true,
	"order": true, "having": true, "as": true, "and": true, "or": true,
	"not": true, "in": true, "like": true, "glob": true, "limit": true,
	"offset": true, "distinct": true, "all": true, "case": true, "when": true,
	"then": true, "else": true, "end": true, "join": true, "left": true,
	"right": true, "inner": true, "outer": true, "full": true, "cross": true,
	"on": true, "using": true, "is": true, "null": true, "between": true,
	"asc": true, "desc": true, "with": true, "union": true, "intersect": true,
	"except": true, "exists": true, "collate": true, "nocase": true,
	"escape": true, "true": true, "false": true,
}

// writeKeywords reject the statement outright wherever they appear.
var writeKeywords = map[string]bool{
	"insert": true, "update": true, "delete": true, "drop": true,
	"alter": true, "create": true, "replace": true, "attach": true,
	"detach": true, "pragma": true, "vacuum": true, "reindex": true,
	"truncate": true, "grant": true, "revoke": true,
}

type token struct {
	text       string
	isFunction bool // immediately followed by '('
	afterDot   bool // appeared as the y of x.y
	beforeDot  bool // appeared as the x of x.y
}

// Validate checks that stmt is a single read-only SELECT referencing only
// identifiers known to the catalog. The model prompt already demands this;
// the guard makes it a guarantee instead of a trust boundary.
func Validate(stmt string, identifiers map[string]bool) error {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stmt), ";"))
	if s == "" {
		return fmt.Errorf("empty statement")
	}

	tokens, err := lexIdentifiers(s)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return fmt.Errorf("no SQL found in statement")
	}

	first := strings.ToLower(tokens[0].text)
	if first != "select" && first != "with" {
		return fmt.Errorf("only SELECT statements are allowed, got %q", tokens[0].text)
	}

	aliases := collectAliases(tokens, identifiers)
	for _, tok := range tokens {
		lower := strings.ToLower(tok.text)
		if writeKeywords[lower] {
			return fmt.Errorf("statement contains forbidden keyword %q", tok.text)
		}
		if sqlKeywords[lower] || tok.isFunction {
			continue
		}
		if identifiers[lower] || aliases[lower] {
			continue
		}
		return fmt.Errorf("unknown identifier %q not present in schema", tok.text)
	}
	return nil
}

// collectAliases gathers table aliases, AS-bound names and CTE names, which
// are legal without appearing in the catalog.
func collectAliases(tokens []token, identifiers map[string]bool) map[string]bool {
	aliases := make(map[string]bool)
	for i, tok := range tokens {
		lower := strings.ToLower(tok.text)
		if lower == "as" {
			// "expr AS name" binds the following token; "name AS (select…)"
			// in a WITH clause binds the preceding one.
			if i+1 < len(tokens) {
				aliases[strings.ToLower(tokens[i+1].text)] = true
			}
			if i > 0 {
				aliases[strings.ToLower(tokens[i-1].text)] = true
			}
			continue
		}
		// "FROM table t" style alias: a bare non-keyword token directly after
		// a catalog table name.
		if i > 0 && identifiers[strings.ToLower(tokens[i-1].text)] &&
			!sqlKeywords[lower] && !tok.isFunction && !tok.afterDot && !identifiers[lower] {
			aliases[lower] = true
		}
	}
	return aliases
}

// lexIdentifiers extracts identifier-like tokens from s, skipping string
// literals and numbers. A semicolon outside a literal means more than one
// statement and is rejected.
func lexIdentifiers(s string) ([]token, error) {
	var tokens []token
	runes := []rune(s)
	i := 0
	prevDot := false
	for i < len(runes) {
		r := runes[i]
		switch {
		case r == '\'' || r == '"' || r == '`':
			quote := r
			j := i + 1
			for j < len(runes) && runes[j] != quote {
				j++
			}
			if j >= len(runes) {
				return nil, fmt.Errorf("unterminated quote in statement")
			}
			if quote != '\'' {
				// quoted identifier
				tokens = append(tokens, token{text: string(runes[i+1 : j]), afterDot: prevDot})
			}
			prevDot = false
			i = j + 1
		case r == ';':
			return nil, fmt.Errorf("multiple statements are not allowed")
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
				j++
			}
			tok := token{text: string(runes[i:j]), afterDot: prevDot}
			k := j
			for k < len(runes) && unicode.IsSpace(runes[k]) {
				k++
			}
			if k < len(runes) && runes[k] == '(' {
				tok.isFunction = true
			}
			if k < len(runes) && runes[k] == '.' {
				tok.beforeDot = true
			}
			tokens = append(tokens, tok)
			prevDot = false
			i = j
		case r == '.':
			prevDot = true
			i++
		case unicode.IsDigit(r):
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.' || runes[j] == 'e' || runes[j] == 'E') {
				j++
			}
			prevDot = false
			i = j
		default:
			if !unicode.IsSpace(r) {
				prevDot = false
			}
			i++
		}
	}
	return tokens, nil
}
