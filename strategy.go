package media_archiver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/alanbriolat/media-archiver/generic"
)

var (
	ErrDuplicateStrategy = errors.New("duplicate strategy name")
	ErrInvalidStrategy   = errors.New("invalid strategy")
	ErrUnknownStrategy   = errors.New("unknown strategy")
)

var (
	PriorityHighest int16 = math.MinInt16
	PriorityDefault int16 = 0
	PriorityLowest  int16 = math.MaxInt16
)

type OutcomeKind int

const (
	OutcomeResolved OutcomeKind = iota
	OutcomeNotApplicable
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeResolved:
		return "resolved"
	case OutcomeNotApplicable:
		return "not applicable"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// An Outcome is what a single strategy attempt produced: a descriptor, a reason it could not apply (the chain moves
// on), or a terminal failure (the chain stops).
type Outcome struct {
	Kind       OutcomeKind
	Descriptor MediaDescriptor
	Err        error
}

func Resolved(d MediaDescriptor) Outcome {
	return Outcome{Kind: OutcomeResolved, Descriptor: d}
}

func NotApplicable(reason error) Outcome {
	if reason == nil {
		reason = ErrNotApplicable
	} else if !errors.Is(reason, ErrNotApplicable) {
		reason = fmt.Errorf("%w: %w", ErrNotApplicable, reason)
	}
	return Outcome{Kind: OutcomeNotApplicable, Err: reason}
}

func Failed(err error) Outcome {
	if err == nil {
		err = errors.New("unspecified failure")
	}
	return Outcome{Kind: OutcomeFailed, Err: err}
}

type ResolveFunc = func(context.Context, MediaReference) Outcome

// A Strategy attempts to turn a MediaReference into a MediaDescriptor, for the media kinds it declares.
type Strategy struct {
	Name    string
	Kinds   generic.Set[MediaKind]
	Resolve ResolveFunc
	// Priority of the strategy, lower (including negative) means attempted earlier.
	Priority int16
}

func (s Strategy) WithName(name string) Strategy {
	s.Name = name
	return s
}

func (s Strategy) WithPriority(priority int16) Strategy {
	s.Priority = priority
	return s
}

func (s Strategy) AppliesTo(kind MediaKind) bool {
	return s.Kinds.Contains(kind)
}

// A Resolution is the result of the chain successfully resolving a MediaReference.
type Resolution struct {
	StrategyName string
	Descriptor   MediaDescriptor
}

// A ResolutionChain is an ordered collection of Strategy instances, attempted in priority order until one resolves.
type ResolutionChain struct {
	strategies  []*Strategy
	strategyMap map[string]*Strategy
}

// Add registers a Strategy. Strategy.Name, Strategy.Kinds and Strategy.Resolve must be set, and Strategy.Name must be
// unique within the chain.
func (c *ResolutionChain) Add(s Strategy) error {
	if c.strategyMap == nil {
		c.strategyMap = make(map[string]*Strategy)
	}
	if s.Name == "" || s.Resolve == nil || s.Kinds.Count() == 0 {
		return ErrInvalidStrategy
	}
	if _, ok := c.strategyMap[s.Name]; ok {
		return ErrDuplicateStrategy
	}
	c.strategyMap[s.Name] = &s
	c.strategies = append(c.strategies, c.strategyMap[s.Name])
	c.sortByPriority()
	return nil
}

// MustAdd wraps Add but panics if there is an error.
func (c *ResolutionChain) MustAdd(s Strategy) {
	generic.Unwrap_(c.Add(s))
}

// List returns the names of strategies that apply to kind, in the order they would be attempted.
func (c *ResolutionChain) List(kind MediaKind) []string {
	var names []string
	for _, s := range c.strategies {
		if s.AppliesTo(kind) {
			names = append(names, s.Name)
		}
	}
	return names
}

// Resolve attempts each applicable strategy in priority order, stopping at the first that resolves. NotApplicable
// outcomes are logged and fall through to the next strategy; a Failed outcome ends the chain. Any returned error
// wraps ErrResolutionFailed, plus the reason of the strategy that failed.
func (c *ResolutionChain) Resolve(ctx context.Context, ref MediaReference) (*Resolution, error) {
	log := Logger(ctx).Sugar().Named("chain").With("url", ref.SourceURL, "kind", ref.Kind)
	attempted := 0
	for _, s := range c.strategies {
		if !s.AppliesTo(ref.Kind) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrResolutionFailed, err)
		}
		attempted++
		log.Debugf("attempting strategy %s", s.Name)
		resolution, err := c.attempt(ctx, s, ref, log)
		if err != nil {
			return nil, c.failure(err)
		}
		if resolution != nil {
			log.Debugf("resolved by %s: %v", s.Name, resolution.Descriptor)
			return resolution, nil
		}
	}
	if attempted == 0 {
		return nil, fmt.Errorf("%w: no strategy for %s", ErrResolutionFailed, ref.Kind)
	}
	return nil, fmt.Errorf("%w: no strategy resolved %s", ErrResolutionFailed, ref.Kind)
}

// ResolveWith attempts only the named strategy.
func (c *ResolutionChain) ResolveWith(ctx context.Context, name string, ref MediaReference) (*Resolution, error) {
	s, ok := c.strategyMap[name]
	if !ok {
		return nil, ErrUnknownStrategy
	}
	if !s.AppliesTo(ref.Kind) {
		return nil, fmt.Errorf("%w: strategy %s does not handle %s", ErrResolutionFailed, name, ref.Kind)
	}
	log := Logger(ctx).Sugar().Named("chain").With("url", ref.SourceURL, "kind", ref.Kind)
	resolution, err := c.attempt(ctx, s, ref, log)
	if err != nil {
		return nil, c.failure(err)
	}
	if resolution == nil {
		return nil, fmt.Errorf("%w: strategy %s did not resolve %s", ErrResolutionFailed, name, ref.Kind)
	}
	return resolution, nil
}

// attempt runs one strategy. It returns a Resolution, a terminal error, or neither if the strategy was not
// applicable.
func (c *ResolutionChain) attempt(ctx context.Context, s *Strategy, ref MediaReference, log *zap.SugaredLogger) (*Resolution, error) {
	outcome := s.Resolve(ctx, ref)
	log.Debugf("strategy %s: %v", s.Name, outcome.Kind)
	prefix := fmt.Sprintf("[%s]", s.Name)
	switch outcome.Kind {
	case OutcomeResolved:
		if outcome.Descriptor == nil {
			return nil, multierror.Prefix(Malformed("no descriptor"), prefix)
		}
		if err := outcome.Descriptor.Validate(); err != nil {
			return nil, multierror.Prefix(err, prefix)
		}
		return &Resolution{StrategyName: s.Name, Descriptor: outcome.Descriptor}, nil
	case OutcomeNotApplicable:
		log.Debugf("strategy %s not applicable: %v", s.Name, NotApplicable(outcome.Err).Err)
		return nil, nil
	default:
		reason := Failed(outcome.Err).Err
		log.Debugf("strategy %s failed: %v", s.Name, reason)
		return nil, multierror.Prefix(reason, prefix)
	}
}

func (c *ResolutionChain) failure(err error) error {
	return fmt.Errorf("%w: %w", ErrResolutionFailed, err)
}

func (c *ResolutionChain) sortByPriority() {
	sort.SliceStable(c.strategies, func(i, j int) bool {
		return c.strategies[i].Priority < c.strategies[j].Priority
	})
}
