package podmanager

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/colonylib/colony/pkg/graphstore"
	"github.com/colonylib/colony/pkg/metrics"
)

// SearchKind discriminates the search façade's query variants. Kept as a
// typed enum over a tagged struct rather than dispatching on a raw JSON
// "type" field at call time, so a caller builds a SearchQuery directly and
// only the JSON entry point (ParseSearchQuery) pays the parsing cost.
type SearchKind string

const (
	SearchText     SearchKind = "text"
	SearchByType   SearchKind = "by_type"
	SearchByPred   SearchKind = "by_predicate"
	SearchAdvanced SearchKind = "advanced"
	SearchBrowse   SearchKind = "browse"
)

// SearchQuery is the parameter struct for every search variant. Only the
// fields relevant to Kind are read; see ParseSearchQuery for the JSON shape
// this is built from.
type SearchQuery struct {
	Kind     SearchKind `json:"type"`
	Text     string     `json:"text,omitempty"`
	TypeIRI  string     `json:"type_iri,omitempty"`
	PredIRI  string     `json:"predicate_iri,omitempty"`
	Advanced string     `json:"advanced,omitempty"`
	Limit    int        `json:"limit,omitempty"`
}

// ParseSearchQuery builds a SearchQuery from raw JSON input. A bare JSON
// string is equivalent to {"type": "text", "text": <string>, "limit": 50}.
func ParseSearchQuery(raw json.RawMessage) (SearchQuery, error) {
	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil {
		return SearchQuery{Kind: SearchText, Text: bare, Limit: 50}, nil
	}
	var q SearchQuery
	if err := json.Unmarshal(raw, &q); err != nil {
		return SearchQuery{}, fmt.Errorf("podmanager: parse search query: %w", err)
	}
	if q.Limit == 0 {
		q.Limit = 50
	}
	return q, nil
}

// SearchResult is the search façade's response envelope.
type SearchResult struct {
	SparqlResults   graphstore.SparqlResults `json:"sparql_results"`
	ResultCount     int                      `json:"result_count"`
	PodsFound       []string                 `json:"pods_found"`
	SearchTimestamp string                   `json:"search_timestamp"`
}

// Search dispatches a SearchQuery to the matching GraphStore search
// operation and wraps the results into the façade's envelope.
func (pm *PodManager) Search(q SearchQuery) (SearchResult, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.SearchDuration, string(q.Kind))
	metrics.SearchQueriesTotal.WithLabelValues(string(q.Kind)).Inc()

	var results graphstore.SparqlResults
	var err error
	switch q.Kind {
	case SearchText, "":
		results, err = pm.graph.SearchContent(pm.cfgPointer, q.Text, q.Limit)
	case SearchByType:
		results, err = pm.graph.SearchByType(q.TypeIRI, q.Limit)
	case SearchByPred:
		results, err = pm.graph.SearchByPredicate(q.PredIRI, q.Limit)
	case SearchAdvanced:
		results, err = pm.graph.AdvancedSearch(q.Advanced, q.Limit)
	case SearchBrowse:
		results, err = pm.graph.Browse(q.Limit)
	default:
		return SearchResult{}, fmt.Errorf("%w: unknown search kind %q", ErrBadOperation, q.Kind)
	}
	if err != nil {
		return SearchResult{}, err
	}

	return SearchResult{
		SparqlResults:   results,
		ResultCount:     len(results.Results.Bindings),
		PodsFound:       graphstore.PodsFound(results),
		SearchTimestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}
