package activity

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/araddon/dateparse"
)

const (
	maxURLLength     = 2048
	maxTitleLength   = 512
	maxChannelLength = 256
	maxProgress      = 7 * 24 * 60 * 60 // a week of seconds
	minRating        = 1
	maxRating        = 5
)

// rule is one declarative shape constraint: a field name for error
// reporting and a check over the whole record. The rule table is the
// schema; Validate is just the fold.
type rule struct {
	field string
	check func(r *Record) error
}

var rules = []rule{
	{"kind", func(r *Record) error {
		if r.Kind != KindWatch && r.Kind != KindRead {
			return fmt.Errorf("must be %q or %q", KindWatch, KindRead)
		}

		return nil
	}},
	{"url", func(r *Record) error {
		if r.URL == "" {
			return errors.New("is required")
		}

		if len(r.URL) > maxURLLength {
			return fmt.Errorf("must not exceed %d bytes", maxURLLength)
		}

		u, err := url.Parse(r.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.New("must be an absolute http(s) URL")
		}

		return nil
	}},
	{"title", func(r *Record) error {
		if len(r.Title) > maxTitleLength {
			return fmt.Errorf("must not exceed %d bytes", maxTitleLength)
		}

		return nil
	}},
	{"channel", func(r *Record) error {
		if len(r.Channel) > maxChannelLength {
			return fmt.Errorf("must not exceed %d bytes", maxChannelLength)
		}

		return nil
	}},
	{"progressSeconds", func(r *Record) error {
		if r.ProgressSeconds < 0 || r.ProgressSeconds > maxProgress {
			return fmt.Errorf("must be between 0 and %d", maxProgress)
		}

		return nil
	}},
	{"rating", func(r *Record) error {
		if r.Rating != nil && (*r.Rating < minRating || *r.Rating > maxRating) {
			return fmt.Errorf("must be between %d and %d", minRating, maxRating)
		}

		return nil
	}},
	{"occurredAt", func(r *Record) error {
		if r.OccurredAt == "" {
			return nil
		}

		if _, err := dateparse.ParseAny(r.OccurredAt); err != nil {
			return errors.New("is not a recognizable timestamp")
		}

		return nil
	}},
}

// ValidationError reports the first violated rule by field name.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks the record against the rule table.
func Validate(r *Record) error {
	for _, rl := range rules {
		if err := rl.check(r); err != nil {
			return &ValidationError{Field: rl.field, Err: err}
		}
	}

	return nil
}

// Normalize fills server-side defaults on a validated record: a fresh
// identifier when the client sent none and an RFC3339 occurredAt.
// OccurredAt values arrive in whatever format the client produced;
// dateparse pins them down before the relay.
func Normalize(r *Record, newID func() string) {
	if r.ID == "" {
		r.ID = newID()
	}

	if r.OccurredAt == "" {
		r.OccurredAt = time.Now().UTC().Format(time.RFC3339)

		return
	}

	if t, err := dateparse.ParseAny(r.OccurredAt); err == nil {
		r.OccurredAt = t.UTC().Format(time.RFC3339)
	}
}
