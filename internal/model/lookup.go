package model

import (
	"time"

	"github.com/nao1215/kbreplace/internal/kb"
)

// Lookup is the result of resolving one KB identifier against the catalog.
// Steps of the pipeline fill it in as they run.
type Lookup struct {
	// Input is the identifier exactly as the user supplied it.
	Input string `json:"input"`

	// Number is the seven digit update number extracted from Input.
	Number string `json:"number"`

	// Title is the name of the first product listed on the search page.
	Title string `json:"title,omitempty"`

	// SearchURL is the catalog search page that was fetched.
	SearchURL string `json:"search_url,omitempty"`

	// RedirectID is the catalog-internal key of the product detail page.
	RedirectID string `json:"redirect_id,omitempty"`

	// DetailURL is the product detail page that was fetched.
	DetailURL string `json:"detail_url,omitempty"`

	// Chain holds the unique cumulative update numbers listed in the
	// package details, in document order.
	Chain []string `json:"chain,omitempty"`

	// Replaces is the KB identifier this update supersedes, i.e. the last
	// entry of Chain with the KB prefix restored.
	Replaces string `json:"replaces,omitempty"`

	// StartedAt is when the lookup began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when the lookup finished, successfully or not.
	CompletedAt time.Time `json:"completed_at"`

	// Error holds the failure message if the lookup did not complete.
	Error string `json:"error,omitempty"`
}

// NewLookup creates a Lookup for the given input identifier.
func NewLookup(input string) *Lookup {
	number, _ := kb.ExtractNumber(input)
	return &Lookup{
		Input:     input,
		Number:    number,
		Chain:     make([]string, 0),
		StartedAt: time.Now(),
	}
}

// Current returns the KB identifier being resolved, as supplied.
func (l *Lookup) Current() string {
	return l.Input
}

// SetChain records the supersedence chain and derives Replaces from its
// last entry. An empty chain clears Replaces.
func (l *Lookup) SetChain(chain []string) {
	l.Chain = chain
	if len(chain) == 0 {
		l.Replaces = ""
		return
	}
	l.Replaces = kb.Format(chain[len(chain)-1])
}

// Fail records err on the lookup and marks it complete.
func (l *Lookup) Fail(err error) {
	if err != nil {
		l.Error = err.Error()
	}
	l.Complete()
}

// Complete stamps the completion time.
func (l *Lookup) Complete() {
	l.CompletedAt = time.Now()
}

// Succeeded reports whether the lookup resolved a replaced KB.
func (l *Lookup) Succeeded() bool {
	return l.Error == "" && l.Replaces != ""
}

// Elapsed returns how long the lookup took. It is zero until Complete is called.
func (l *Lookup) Elapsed() time.Duration {
	if l.CompletedAt.IsZero() {
		return 0
	}
	return l.CompletedAt.Sub(l.StartedAt)
}
