// Package activity accepts structured watch/read activity records,
// validates their shape and forwards them to a configured remote service.
// Records are relayed as-is apart from identifier and timestamp
// normalization; nothing is queued or persisted locally.
package activity

// Kind distinguishes watch activity (video platforms) from read activity
// (articles).
type Kind string

const (
	KindWatch Kind = "watch"
	KindRead  Kind = "read"
)

// Record is one activity event as submitted by a client. ID and the
// normalized OccurredAt are filled in server-side when absent.
type Record struct {
	ID              string `json:"id,omitempty"`
	Kind            Kind   `json:"kind"`
	URL             string `json:"url"`
	Title           string `json:"title,omitempty"`
	Channel         string `json:"channel,omitempty"`
	ProgressSeconds int64  `json:"progressSeconds,omitempty"`
	Rating          *int   `json:"rating,omitempty"`
	OccurredAt      string `json:"occurredAt,omitempty"`
}
