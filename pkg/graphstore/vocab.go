package graphstore

const vocabBase = "ant://colony-vocab/"

// Fixed internal vocabulary. These are the only predicates PodManager ever
// writes or queries against; everything else is user-supplied subject data.
const (
	HasIndex     = vocabBase + "hasIndex"
	PodRef       = vocabBase + "podRef"
	HasDepth     = vocabBase + "hasDepth"
	Name         = vocabBase + "name"
	ModifiedDate = vocabBase + "modifiedDate"
	AddrType     = vocabBase + "addrType"
	PodIndex     = vocabBase + "podIndex"
	Count        = vocabBase + "count"
)

// addrType values recorded in the configuration graph.
const (
	AddrTypePointer        = "pointer"
	AddrTypeScratchpad     = "scratchpad"
	AddrTypeFreePointer    = "free_pointer"
	AddrTypeFreeScratchpad = "free_scratchpad"
	AddrTypeBad            = "bad"
)

// PodIRI returns the named-graph IRI for a pod address.
func PodIRI(podAddress string) string {
	return "ant://" + podAddress
}

// SubjectIRI returns the subject IRI for a bare subject identifier.
func SubjectIRI(subject string) string {
	return "ant://" + subject
}
