package graphstore

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// EncodeTriG renders quads as the line-oriented statement format this
// package's parser and PodManager's chunk sorter both understand: one
// subject per unindented header line, followed by one indented
// continuation line per predicate/object pair. Subjects are emitted in
// first-seen order; predicate/object pairs within a subject are emitted in
// insertion order.
func EncodeTriG(quads []Quad) []byte {
	var subjects []string
	bySubject := make(map[string][]Quad)
	for _, q := range quads {
		if _, ok := bySubject[q.Subject]; !ok {
			subjects = append(subjects, q.Subject)
		}
		bySubject[q.Subject] = append(bySubject[q.Subject], q)
	}

	var b strings.Builder
	for _, subj := range subjects {
		b.WriteString(subj)
		b.WriteByte('\n')
		for _, q := range bySubject[subj] {
			b.WriteString("  <")
			b.WriteString(q.Predicate)
			b.WriteString("> ")
			if q.Object.IsLiteral {
				b.WriteString(strconv.Quote(q.Object.Value))
			} else {
				b.WriteByte('<')
				b.WriteString(q.Object.Value)
				b.WriteByte('>')
			}
			b.WriteString(" .\n")
		}
	}
	return []byte(b.String())
}

// DecodeTriG parses the format EncodeTriG produces, attributing every
// resulting quad to graph.
func DecodeTriG(data []byte, graph string) ([]Quad, error) {
	lines := strings.Split(string(data), "\n")
	var quads []Quad
	var subject string
	for lineNo, raw := range lines {
		if raw == "" {
			continue
		}
		if !strings.HasPrefix(raw, " ") && !strings.HasPrefix(raw, "\t") {
			subject = strings.TrimSpace(raw)
			continue
		}
		if subject == "" {
			return nil, fmt.Errorf("graphstore: continuation line %d with no subject", lineNo+1)
		}
		pred, obj, err := parseStatementLine(raw)
		if err != nil {
			return nil, fmt.Errorf("graphstore: line %d: %w", lineNo+1, err)
		}
		quads = append(quads, Quad{Subject: subject, Predicate: pred, Object: obj, Graph: graph})
	}
	return quads, nil
}

func parseStatementLine(line string) (predicate string, object Term, err error) {
	line = strings.TrimSpace(line)
	line = strings.TrimSuffix(line, " .")
	line = strings.TrimSuffix(line, ".")
	line = strings.TrimSpace(line)

	if !strings.HasPrefix(line, "<") {
		return "", Term{}, fmt.Errorf("expected predicate IRI, got %q", line)
	}
	end := strings.Index(line, ">")
	if end < 0 {
		return "", Term{}, fmt.Errorf("unterminated predicate IRI in %q", line)
	}
	predicate = line[1:end]
	rest := strings.TrimSpace(line[end+1:])

	switch {
	case strings.HasPrefix(rest, "\""):
		value, err := strconv.Unquote(rest)
		if err != nil {
			return "", Term{}, fmt.Errorf("bad literal %q: %w", rest, err)
		}
		return predicate, Literal(value), nil
	case strings.HasPrefix(rest, "<") && strings.HasSuffix(rest, ">"):
		return predicate, IRI(rest[1 : len(rest)-1]), nil
	default:
		return "", Term{}, fmt.Errorf("unrecognized object %q", rest)
	}
}

// statementPriority returns the chunk-sorting priority of a raw
// statement's text: 0 if it contains the HasIndex predicate, 1 if it
// contains PodRef, else 2.
func statementPriority(statement string) int {
	switch {
	case strings.Contains(statement, HasIndex):
		return 0
	case strings.Contains(statement, PodRef):
		return 1
	default:
		return 2
	}
}

// SplitStatements breaks a TriG-like document into its statements: a
// subject header line plus every following continuation line, never
// splitting a statement across the boundary.
func SplitStatements(data []byte) []string {
	lines := strings.Split(string(data), "\n")
	var statements []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			statements = append(statements, strings.Join(current, "\n"))
			current = nil
		}
	}
	for _, line := range lines {
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			flush()
		}
		current = append(current, line)
	}
	flush()
	return statements
}

// SortGraphData sorts a TriG-like document's statements by priority
// (HasIndex-bearing first, then PodRef-bearing, then everything else),
// stably preserving relative order within each priority class, and never
// splitting a multi-line statement.
func SortGraphData(data []byte) []byte {
	statements := SplitStatements(data)
	sort.SliceStable(statements, func(i, j int) bool {
		return statementPriority(statements[i]) < statementPriority(statements[j])
	})
	var b strings.Builder
	for _, s := range statements {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
