package model

// KnowledgeSnapshot is the pair of knowledge sources at the moment a
// prompt is composed: the static reference text and the service log in
// insertion order. The slice is a copy; mutating it does not affect the
// store.
type KnowledgeSnapshot struct {
	Reference string
	Logs      []*LogEntry
}
