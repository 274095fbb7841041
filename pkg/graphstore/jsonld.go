package graphstore

import (
	"encoding/json"
	"fmt"
)

// FlattenJSONLD turns a flat JSON-LD object (the shape PodManager's
// put_subject_data callers pass: "@type" plus scalar-valued properties)
// into quads about subjectIRI in graph. No JSON-LD library exists in the
// retrieved corpus; this handles exactly the flat-object shape the spec's
// S1 scenario exercises, not arbitrary nested JSON-LD.
func FlattenJSONLD(data []byte, subjectIRI, graph string) ([]Quad, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("graphstore: parse json-ld: %w", err)
	}

	var quads []Quad
	for key, val := range doc {
		predicate := key
		if key == "@type" {
			predicate = "ant://colony-vocab/type"
		} else {
			predicate = vocabBase + key
		}

		switch v := val.(type) {
		case string:
			quads = append(quads, Quad{Subject: subjectIRI, Predicate: predicate, Object: Literal(v), Graph: graph})
		case float64:
			quads = append(quads, Quad{Subject: subjectIRI, Predicate: predicate, Object: Literal(jsonNumber(v)), Graph: graph})
		case bool:
			quads = append(quads, Quad{Subject: subjectIRI, Predicate: predicate, Object: Literal(boolString(v)), Graph: graph})
		case []any:
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					continue
				}
				quads = append(quads, Quad{Subject: subjectIRI, Predicate: predicate, Object: Literal(s), Graph: graph})
			}
		default:
			// Nested objects are out of scope for the flat shape this
			// flattener supports; skip rather than fail the whole document.
		}
	}
	return quads, nil
}

func jsonNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
