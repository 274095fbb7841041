package graphstore

import (
	"sort"
	"strconv"
	"strings"
)

// BindingValue is one SPARQL-JSON-results-style bound value.
type BindingValue struct {
	Type  string `json:"type"` // "uri" or "literal"
	Value string `json:"value"`
}

// Binding maps a result row's variable names to their bound values.
type Binding map[string]BindingValue

// SparqlResults is the SPARQL-JSON-results-shaped envelope every search
// operation returns.
type SparqlResults struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []Binding `json:"bindings"`
	} `json:"results"`
}

func newResults(vars ...string) SparqlResults {
	var r SparqlResults
	r.Head.Vars = vars
	r.Results.Bindings = []Binding{}
	return r
}

func uriVal(v string) BindingValue     { return BindingValue{Type: "uri", Value: v} }
func literalVal(v string) BindingValue { return BindingValue{Type: "literal", Value: v} }

// tokenizeQuery splits q on whitespace; runs enclosed in double quotes
// become single phrase terms.
func tokenizeQuery(q string) []string {
	var terms []string
	var cur strings.Builder
	inPhrase := false
	flush := func() {
		if cur.Len() > 0 {
			terms = append(terms, cur.String())
			cur.Reset()
		}
	}
	for _, r := range q {
		switch {
		case r == '"':
			if inPhrase {
				flush()
			}
			inPhrase = !inPhrase
		case r == ' ' || r == '\t' || r == '\n':
			if inPhrase {
				cur.WriteRune(r)
			} else {
				flush()
			}
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return terms
}

// SearchContent implements the text search algorithm: tokenize, count
// case-insensitive substring matches of every term against every literal
// object across every named graph, join each match's source graph against
// cfg for its recorded depth, and order by (match_count DESC, depth ASC,
// object ASC).
func (gs *GraphStore) SearchContent(cfg, query string, limit int) (SparqlResults, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	terms := tokenizeQuery(query)
	results := newResults("subject", "predicate", "object", "graph", "match_count", "depth")
	if len(terms) == 0 {
		return results, nil
	}

	quads, err := gs.engine.Find(Pattern{})
	if err != nil {
		return results, err
	}

	type match struct {
		q          Quad
		matchCount int
		depth      uint64
	}
	depths, err := gs.allDepths(cfg)
	if err != nil {
		return results, err
	}

	var matches []match
	for _, q := range quads {
		if !q.Object.IsLiteral {
			continue
		}
		lower := strings.ToLower(q.Object.Value)
		count := 0
		for _, term := range terms {
			if strings.Contains(lower, strings.ToLower(term)) {
				count++
			}
		}
		if count == 0 {
			continue
		}
		matches = append(matches, match{q: q, matchCount: count, depth: depths[q.Graph]})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].matchCount != matches[j].matchCount {
			return matches[i].matchCount > matches[j].matchCount
		}
		if matches[i].depth != matches[j].depth {
			return matches[i].depth < matches[j].depth
		}
		return matches[i].q.Object.Value < matches[j].q.Object.Value
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	for _, m := range matches {
		results.Results.Bindings = append(results.Results.Bindings, Binding{
			"subject":     uriVal(m.q.Subject),
			"predicate":   uriVal(m.q.Predicate),
			"object":      literalVal(m.q.Object.Value),
			"graph":       uriVal(m.q.Graph),
			"match_count": literalVal(strconv.Itoa(m.matchCount)),
			"depth":       literalVal(strconv.FormatUint(m.depth, 10)),
		})
	}
	return results, nil
}

func (gs *GraphStore) allDepths(cfg string) (map[string]uint64, error) {
	quads, err := gs.engine.Find(Pattern{Graph: PodIRI(cfg), Predicate: HasDepth})
	if err != nil {
		return nil, err
	}
	out := make(map[string]uint64, len(quads))
	for _, q := range quads {
		if v, err := strconv.ParseUint(q.Object.Value, 10, 64); err == nil {
			out[PodIRI(stripIRI(q.Subject))] = v
		}
	}
	return out, nil
}

// SearchByType returns every subject/graph pair typed as typeIRI.
func (gs *GraphStore) SearchByType(typeIRI string, limit int) (SparqlResults, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	quads, err := gs.engine.Find(Pattern{Predicate: vocabBase + "type", Object: typeIRI})
	if err != nil {
		return SparqlResults{}, err
	}
	return bindSubjectGraph(quads, limit), nil
}

// SearchByPredicate returns every subject/object/graph triple using predIRI.
func (gs *GraphStore) SearchByPredicate(predIRI string, limit int) (SparqlResults, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	quads, err := gs.engine.Find(Pattern{Predicate: predIRI})
	if err != nil {
		return SparqlResults{}, err
	}
	return bindFull(quads, limit), nil
}

// Browse returns up to limit quads across every graph, in no particular
// order beyond engine enumeration order.
func (gs *GraphStore) Browse(limit int) (SparqlResults, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	quads, err := gs.engine.Find(Pattern{})
	if err != nil {
		return SparqlResults{}, err
	}
	return bindFull(quads, limit), nil
}

// AdvancedSearch evaluates a small filter language over subject/predicate/
// object/graph instead of full SPARQL (no SPARQL engine exists anywhere in
// the retrieved corpus): semicolon-separated "field=value" clauses, e.g.
// "predicate=ant://colony-vocab/name;graph=ant://<pod>".
func (gs *GraphStore) AdvancedSearch(query string, limit int) (SparqlResults, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	var p Pattern
	for _, clause := range strings.Split(query, ";") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		kv := strings.SplitN(clause, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, value := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
		switch key {
		case "subject":
			p.Subject = value
		case "predicate":
			p.Predicate = value
		case "object":
			p.Object = value
		case "graph":
			p.Graph = value
		}
	}

	quads, err := gs.engine.Find(p)
	if err != nil {
		return SparqlResults{}, err
	}
	return bindFull(quads, limit), nil
}

func bindFull(quads []Quad, limit int) SparqlResults {
	if limit > 0 && len(quads) > limit {
		quads = quads[:limit]
	}
	results := newResults("subject", "predicate", "object", "graph")
	for _, q := range quads {
		obj := literalVal(q.Object.Value)
		if !q.Object.IsLiteral {
			obj = uriVal(q.Object.Value)
		}
		results.Results.Bindings = append(results.Results.Bindings, Binding{
			"subject":   uriVal(q.Subject),
			"predicate": uriVal(q.Predicate),
			"object":    obj,
			"graph":     uriVal(q.Graph),
		})
	}
	return results
}

func bindSubjectGraph(quads []Quad, limit int) SparqlResults {
	if limit > 0 && len(quads) > limit {
		quads = quads[:limit]
	}
	results := newResults("subject", "graph")
	for _, q := range quads {
		results.Results.Bindings = append(results.Results.Bindings, Binding{
			"subject": uriVal(q.Subject),
			"graph":   uriVal(q.Graph),
		})
	}
	return results
}

// PodsFound returns the set of distinct named graphs appearing in a
// result's bindings, the pods_found field of the search façade's envelope.
func PodsFound(results SparqlResults) []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range results.Results.Bindings {
		g, ok := b["graph"]
		if !ok {
			continue
		}
		if !seen[g.Value] {
			seen[g.Value] = true
			out = append(out, g.Value)
		}
	}
	sort.Strings(out)
	return out
}
