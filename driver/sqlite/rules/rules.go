// Package rules compiles a structured rule tree into a SQL WHERE
// fragment over a JSON payload column, the way the reference driver's
// predicate compiler does.
//
// A rule is either a field predicate, a 3-element sequence
// [field, op, value], or a logical predicate, a 2-element sequence
// [op, operands]. A bare top-level sequence of rules is implicitly
// conjoined, as if wrapped in ["and", rules].
package rules

import (
	"fmt"
	"strings"

	"github.com/twoporeguys/libpersist/document"
	"github.com/twoporeguys/libpersist/persisterr"
)

// fieldOperators maps a rule-tree field operator to its SQL equivalent.
var fieldOperators = map[string]string{
	"=":     "=",
	"!=":    "!=",
	">":     ">",
	">=":    ">=",
	"<":     "<",
	"<=":    "<=",
	"~":     "REGEXP",
	"match": "GLOB",
}

// Compile lowers a rule tree (nil or a []any of rule tuples) into a SQL
// boolean expression over json_extract(value, '$.<field>'), plus the
// ordered list of values to bind against the expression's "?"
// placeholders. An empty or nil tree compiles to the constant-true
// predicate "(1=1)" with no bound values. Any failure aborts the whole
// build: the returned string and args are only meaningful when err is
// nil.
//
// Field-predicate right-hand values are always bound as placeholders,
// never spliced into the SQL text: json_quote(json_extract(...)) always
// yields a TEXT value (e.g. the 5-character string `"Ann"` for a JSON
// string field), and a literal double-quoted token on the right would
// fall through SQLite's string-literal compatibility quirk for
// unresolved identifiers, comparing against the unquoted 3-character
// `Ann` instead and never matching.
//
// The "~" and "match" operators are the exception: they compare against
// the field's plain extracted text (json_extract with no json_quote
// wrapper) and bind the pattern unencoded, since REGEXP/GLOB pattern
// matching operates on raw text, not a JSON-literal encoding of it.
func Compile(tree []any) (string, []any, error) {
	if len(tree) == 0 {
		return "(1=1)", nil, nil
	}
	return compileAnd(tree)
}

// compileSequence asserts that v is a []any, the shape every rule
// operand (and/or/nor's value, a bare top-level tree) must have.
func compileSequence(v any) ([]any, error) {
	seq, ok := v.([]any)
	if !ok {
		return nil, persisterr.New(persisterr.InvalidArgument,
			"rules: expected a sequence, got %T", v)
	}
	return seq, nil
}

func compileAnd(operands []any) (string, []any, error) {
	return compileJoin(operands, " AND ")
}

func compileOr(operands []any) (string, []any, error) {
	return compileJoin(operands, " OR ")
}

func compileNor(operands []any) (string, []any, error) {
	inner, args, err := compileOr(operands)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("NOT (%s)", inner), args, nil
}

func compileJoin(operands []any, sep string) (string, []any, error) {
	if len(operands) == 0 {
		return "(1=1)", nil, nil
	}

	parts := make([]string, 0, len(operands))
	var args []any
	for _, op := range operands {
		rule, err := compileSequence(op)
		if err != nil {
			return "", nil, err
		}

		frag, fragArgs, err := compileRule(rule)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, frag)
		args = append(args, fragArgs...)
	}

	return "(" + strings.Join(parts, sep) + ")", args, nil
}

// compileRule dispatches a single rule tuple by arity: 2 elements is a
// logical predicate, 3 is a field predicate.
func compileRule(rule []any) (string, []any, error) {
	switch len(rule) {
	case 2:
		return compileLogical(rule)
	case 3:
		return compileField(rule)
	default:
		return "", nil, persisterr.New(persisterr.InvalidArgument,
			"rules: rule tuple must have 2 or 3 elements, got %d", len(rule))
	}
}

func compileLogical(rule []any) (string, []any, error) {
	op, ok := rule[0].(string)
	if !ok {
		return "", nil, persisterr.New(persisterr.InvalidArgument,
			"rules: logical operator must be a string, got %T", rule[0])
	}

	operands, err := compileSequence(rule[1])
	if err != nil {
		return "", nil, err
	}

	switch op {
	case "and":
		return compileAnd(operands)
	case "or":
		return compileOr(operands)
	case "nor":
		return compileNor(operands)
	default:
		return "", nil, persisterr.New(persisterr.InvalidArgument,
			"rules: unknown logical operator %q", op)
	}
}

func compileField(rule []any) (string, []any, error) {
	field, ok := rule[0].(string)
	if !ok {
		return "", nil, persisterr.New(persisterr.InvalidArgument,
			"rules: field name must be a string, got %T", rule[0])
	}

	ruleOp, ok := rule[1].(string)
	if !ok {
		return "", nil, persisterr.New(persisterr.InvalidArgument,
			"rules: field operator must be a string, got %T", rule[1])
	}

	sqlOp, ok := fieldOperators[ruleOp]
	if !ok {
		return "", nil, persisterr.New(persisterr.InvalidArgument,
			"rules: unknown field operator %q", ruleOp)
	}

	// REGEXP and GLOB match against the field's raw text, not its JSON
	// encoding: json_quote would wrap the extracted value in a literal
	// pair of '"' characters, which a ^-anchored regex can never see
	// past (the anchor asserts true start-of-text, not "after the
	// opening quote"). Bind the pattern as-is, unquoted, against the
	// unquoted json_extract result.
	if ruleOp == "~" || ruleOp == "match" {
		pattern, ok := rule[2].(string)
		if !ok {
			return "", nil, persisterr.New(persisterr.InvalidArgument,
				"rules: %q operator requires a string pattern for field %q, got %T", ruleOp, field, rule[2])
		}
		frag := fmt.Sprintf("json_extract(value, '$.%s') %s ?", field, sqlOp)
		return frag, []any{pattern}, nil
	}

	literal, err := document.MarshalLiteral(rule[2])
	if err != nil {
		return "", nil, persisterr.New(persisterr.Serialization,
			"rules: cannot serialize value for field %q: %v", field, err)
	}

	frag := fmt.Sprintf(
		"json_quote(json_extract(value, '$.%s')) %s ?",
		field, sqlOp,
	)
	return frag, []any{literal}, nil
}

// OrderBy builds the ORDER BY/LIMIT/OFFSET suffix for params. sortField
// may be empty (no ordering applied). The returned string has a leading
// space when non-empty and is safe to append directly after a WHERE
// clause or bare SELECT.
func OrderBy(sortField string, descending bool, offset, limit uint64, single bool) string {
	var b strings.Builder

	if sortField != "" {
		dir := "ASC"
		if descending {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY json_quote(json_extract(value, '$.%s')) %s", sortField, dir)
	}

	switch {
	case single:
		b.WriteString(" LIMIT 1")
	case limit > 0:
		fmt.Fprintf(&b, " LIMIT %d", limit)
	case offset > 0:
		// SQLite only accepts OFFSET after a LIMIT; -1 means no limit.
		b.WriteString(" LIMIT -1")
	}

	if offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", offset)
	}

	return b.String()
}
