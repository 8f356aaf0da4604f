package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/kbreplace/internal/catalog"
	"github.com/nao1215/kbreplace/internal/model"
)

// StepOption configures a catalog step.
type StepOption func(*stepBase)

// WithStepLogger sets the logger used by a step.
func WithStepLogger(logger *slog.Logger) StepOption {
	return func(s *stepBase) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// stepBase holds what every catalog step needs.
type stepBase struct {
	client *catalog.Client
	logger *slog.Logger
}

func newStepBase(client *catalog.Client, opts []StepOption) stepBase {
	s := stepBase{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// SearchStep fetches the catalog search page for the lookup's KB and
// records the first listed product.
type SearchStep struct {
	stepBase
}

// NewSearchStep creates a SearchStep using client.
func NewSearchStep(client *catalog.Client, opts ...StepOption) *SearchStep {
	return &SearchStep{stepBase: newStepBase(client, opts)}
}

// Name returns the step name.
func (s *SearchStep) Name() string {
	return "search"
}

// Do executes the search step.
func (s *SearchStep) Do(ctx context.Context, lookup *model.Lookup) error {
	lookup.SearchURL = s.client.SearchURL(lookup.Input)

	doc, err := s.client.FetchDocument(ctx, lookup.SearchURL)
	if err != nil {
		return err
	}

	product, err := catalog.FindProduct(doc)
	if err != nil {
		return err
	}

	lookup.RedirectID = product.RedirectID
	lookup.Title = product.Title

	s.logger.Debug("found catalog product",
		"kb", lookup.Input,
		"redirect_id", product.RedirectID,
		"title", product.Title,
	)

	return nil
}

// DetailStep fetches the product detail page found by SearchStep and
// records its supersedence chain.
type DetailStep struct {
	stepBase
}

// NewDetailStep creates a DetailStep using client.
func NewDetailStep(client *catalog.Client, opts ...StepOption) *DetailStep {
	return &DetailStep{stepBase: newStepBase(client, opts)}
}

// Name returns the step name.
func (s *DetailStep) Name() string {
	return "detail"
}

// Do executes the detail step.
func (s *DetailStep) Do(ctx context.Context, lookup *model.Lookup) error {
	if lookup.RedirectID == "" {
		return catalog.ErrRedirectNotFound
	}

	lookup.DetailURL = s.client.DetailURL(lookup.RedirectID)

	doc, err := s.client.FetchDocument(ctx, lookup.DetailURL)
	if err != nil {
		return err
	}

	chain, err := catalog.ExtractChain(doc)
	if err != nil {
		return err
	}
	if len(chain) == 0 {
		return catalog.ErrNoCumulativeUpdate
	}

	lookup.SetChain(chain)

	s.logger.Debug("extracted supersedence chain",
		"kb", lookup.Input,
		"chain", chain,
		"replaces", lookup.Replaces,
	)

	return nil
}
