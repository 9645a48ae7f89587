package api

import (
	"fmt"

	"github.com/JaimeStill/arbiter/internal/awards"
	"github.com/JaimeStill/arbiter/internal/cases"
	"github.com/JaimeStill/arbiter/internal/classifications"
	"github.com/JaimeStill/arbiter/internal/config"
	"github.com/JaimeStill/arbiter/internal/documents"
	"github.com/JaimeStill/arbiter/internal/notifications"
	"github.com/JaimeStill/arbiter/internal/requests"
	"github.com/JaimeStill/arbiter/internal/summaries"
	"github.com/JaimeStill/arbiter/internal/templates"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Cases           cases.System
	Documents       documents.System
	Classifications classifications.System
	Summaries       summaries.System
	Templates       templates.System
	Awards          awards.System
	Requests        requests.System
	Notifier        *notifications.Notifier
}

// NewDomain creates all domain systems from the API runtime and subscribes
// the notifier to the event bus. It must run before the bus starts.
func NewDomain(runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	hierarchy, err := classifications.LoadHierarchy(runtime.Classification.HierarchyPath)
	if err != nil {
		return nil, fmt.Errorf("load category hierarchy: %w", err)
	}

	casesSystem := cases.New(db, runtime.Logger, runtime.Pagination)

	docsSystem := documents.New(
		db,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	classifier := classifications.NewEngine(
		runtime.Model,
		hierarchy,
		classifications.WithThresholds(classifications.Thresholds{
			Primary:   runtime.Classification.PrimaryThreshold,
			Secondary: runtime.Classification.SecondaryThreshold,
			Review:    runtime.Classification.ReviewThreshold,
		}),
		classifications.WithMaxContentLength(runtime.Classification.MaxContentLength),
		classifications.WithLogger(runtime.Logger),
	)

	classificationsSystem := classifications.New(
		db,
		classifier,
		docsSystem,
		runtime.Model,
		runtime.Events,
		runtime.Logger,
		runtime.Pagination,
	)

	summarizer := summaries.NewEngine(
		runtime.Model,
		summaries.WithDefaults(summaryDefaults(runtime.Summaries)),
		summaries.WithLogger(runtime.Logger),
	)

	summariesSystem := summaries.New(
		db,
		summarizer,
		docsSystem,
		runtime.Summaries.CacheTTLDuration(),
		runtime.Logger,
		runtime.Pagination,
	)

	templatesSystem := templates.New(db, runtime.Logger, runtime.Pagination)

	awardsSystem := awards.New(
		db,
		awards.NewAggregator(
			casesSystem,
			docsSystem,
			classificationsSystem,
			summariesSystem,
			awards.NewHierarchyBucketer(hierarchy),
		),
		templates.NewRenderer(templatesSystem),
		runtime.Events,
		runtime.Logger,
		runtime.Pagination,
	)

	requestsSystem := requests.New(
		db,
		casesSystem,
		docsSystem,
		runtime.Events,
		runtime.Logger,
		runtime.Pagination,
	)

	notifier := notifications.New(runtime.Mail, runtime.Logger)
	notifier.Register(runtime.Events)

	return &Domain{
		Cases:           casesSystem,
		Documents:       docsSystem,
		Classifications: classificationsSystem,
		Summaries:       summariesSystem,
		Templates:       templatesSystem,
		Awards:          awardsSystem,
		Requests:        requestsSystem,
		Notifier:        notifier,
	}, nil
}

func summaryDefaults(cfg config.SummariesConfig) summaries.Options {
	return summaries.Options{
		MaxLength:               cfg.MaxLength,
		MinLength:               cfg.MinLength,
		ExecutiveSummaryLength:  cfg.ExecutiveSummaryLength,
		ExtractLegalTerms:       cfg.ExtractLegalTerms,
		ExtractEntities:         cfg.ExtractEntities,
		SectionDetection:        cfg.SectionDetection,
		IncludeConfidenceScores: &cfg.IncludeConfidenceScores,
	}
}
