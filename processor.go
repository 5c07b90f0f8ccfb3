package media_archiver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/r3labs/diff/v3"
	"go.uber.org/zap"
)

type ProcessStage string

const (
	ProcessStageClassifying ProcessStage = "classifying"
	ProcessStageResolving   ProcessStage = "resolving"
	ProcessStageRetrieving  ProcessStage = "retrieving"
	ProcessStageRecorded    ProcessStage = "recorded"
)

// itemState is the progress of the URL currently being processed.
type itemState struct {
	Stage    ProcessStage
	Kind     MediaKind
	MediaID  string
	Author   string
	Strategy string
	Saved    int
	Error    string
}

// A Processor takes one URL at a time through classification, resolution and retrieval, recording the outcome in its
// SessionLedger.
type Processor struct {
	chain     *ResolutionChain
	retriever *Retriever
	ledger    *SessionLedger
	// If set, only this strategy is attempted.
	strategy string
}

func NewProcessor(chain *ResolutionChain, retriever *Retriever, ledger *SessionLedger) *Processor {
	return &Processor{
		chain:     chain,
		retriever: retriever,
		ledger:    ledger,
	}
}

// WithStrategy restricts resolution to the named strategy.
func (p *Processor) WithStrategy(name string) *Processor {
	p.strategy = name
	return p
}

func (p *Processor) Ledger() *SessionLedger {
	return p.ledger
}

// ProcessURL runs rawURL from classification through to a recorded outcome, which is also returned. Failures at any
// stage become a Failed record; nothing is returned as an error and nothing panics past this point. A failed URL
// should be processed again from the start.
func (p *Processor) ProcessURL(ctx context.Context, rawURL string) (record OutcomeRecord) {
	log := Logger(ctx).Sugar().Named("processor").With("url", rawURL)
	state := itemState{}
	record = OutcomeRecord{
		ID:     NewOutcomeID(),
		At:     time.Now(),
		URL:    strings.TrimSpace(rawURL),
		Status: OutcomeStatusFailed,
	}

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("panic while processing: %v", r)
			record.Status = OutcomeStatusFailed
			record.Details = fmt.Sprintf("internal error: %v", r)
		}
		p.transition(log, &state, func(s *itemState) {
			s.Stage = ProcessStageRecorded
			s.Error = record.Details
		})
		p.ledger.Record(record)
	}()

	p.transition(log, &state, func(s *itemState) { s.Stage = ProcessStageClassifying })
	ref, err := Classify(rawURL)
	if err != nil {
		record.Details = err.Error()
		return record
	}
	record.MediaKind = ref.Kind
	p.transition(log, &state, func(s *itemState) {
		s.Stage = ProcessStageResolving
		s.Kind = ref.Kind
	})

	resolution, err := p.resolve(ctx, ref)
	if err != nil {
		record.Details = err.Error()
		return record
	}
	descriptor := resolution.Descriptor
	record.MediaKind = descriptor.Kind()
	record.MediaID = descriptor.ID()
	record.Author = descriptor.Author()
	record.Strategy = resolution.StrategyName
	if v, ok := descriptor.(VideoDescriptor); ok {
		if title, ok := v.Title.Get(); ok {
			log.Infof("resolved %v: %q", v, title)
		}
	}
	p.transition(log, &state, func(s *itemState) {
		s.Stage = ProcessStageRetrieving
		s.Kind = descriptor.Kind()
		s.MediaID = descriptor.ID()
		s.Author = descriptor.Author()
		s.Strategy = resolution.StrategyName
	})

	result, err := p.retriever.Retrieve(ctx, descriptor, ref.SourceURL)
	if result != nil {
		p.transition(log, &state, func(s *itemState) { s.Saved = result.Count() })
	}
	if err != nil {
		record.Details = err.Error()
		var retrievalErr *RetrievalError
		if errors.As(err, &retrievalErr) && retrievalErr.IsPartial() {
			log.Warnf("kept %d of %d files", retrievalErr.Saved, retrievalErr.Total)
			record.Details += "; kept " + strings.Join(savedNames(result), ", ")
		}
		return record
	}
	record.Status = OutcomeStatusSuccess
	record.Details = successDetails(resolution.StrategyName, result)
	return record
}

func (p *Processor) resolve(ctx context.Context, ref MediaReference) (*Resolution, error) {
	if p.strategy != "" {
		return p.chain.ResolveWith(ctx, p.strategy, ref)
	}
	return p.chain.Resolve(ctx, ref)
}

func (p *Processor) transition(log *zap.SugaredLogger, state *itemState, f func(s *itemState)) {
	old := *state
	f(state)
	changes, err := diff.Diff(old, *state)
	if err != nil {
		log.Errorf("failed to diff old and new item state: %v", err)
		return
	}
	for _, change := range changes {
		log.Debugf("%v: %#v -> %#v", strings.Join(change.Path, "."), change.From, change.To)
	}
}

func savedNames(result *RetrievalResult) []string {
	names := make([]string, 0, result.Count())
	for _, path := range result.SavedPaths {
		names = append(names, filepath.Base(path))
	}
	return names
}

func successDetails(strategy string, result *RetrievalResult) string {
	names := savedNames(result)
	if result.Count() == 1 {
		return fmt.Sprintf("saved %s (%d bytes) via %s", names[0], result.TotalBytes(), strategy)
	}
	return fmt.Sprintf("saved %d files (%d bytes) via %s: %s", result.Count(), result.TotalBytes(), strategy, strings.Join(names, ", "))
}
