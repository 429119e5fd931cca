package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/willofcode/flowmind/internal/models"
)

// ErrorKind classifies a failure of the generative path.
type ErrorKind string

const (
	KindTimeout   ErrorKind = "timeout"
	KindBackend   ErrorKind = "backend"
	KindMalformed ErrorKind = "malformed"
	KindEmpty     ErrorKind = "empty"
)

// GenerationError is returned by backends when they cannot produce candidates.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generation failed (%s)", e.Kind)
	}
	return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ProposalContext is everything a backend is told about the day.
type ProposalContext struct {
	Date     string
	Location *time.Location
	Windows  []models.FreeWindow
	Policy   models.GenerationPolicy
	State    models.StateSignals
}

// Backend proposes activity candidates. Implementations should honour ctx.
type Backend interface {
	Propose(ctx context.Context, pc ProposalContext) ([]models.ActivityCandidate, error)
}

// Result is what Generate hands back. Err holds the primary-path failure
// that caused a fallback; it is informational and never fatal.
type Result struct {
	Candidates []models.ActivityCandidate
	Source     models.GenerationSource
	Err        error
}

type Generator struct {
	backend Backend
	timeout time.Duration
}

// New returns a Generator. A nil backend means every run uses the fallback.
func New(backend Backend, timeout time.Duration) *Generator {
	return &Generator{backend: backend, timeout: timeout}
}

// Generate asks the backend for candidates and falls back to the
// deterministic generator on any failure. It never returns an error.
func (g *Generator) Generate(ctx context.Context, pc ProposalContext) Result {
	if g.backend == nil {
		return Result{Candidates: Fallback(pc.Windows, pc.Policy), Source: models.SourceFallback}
	}

	candidates, err := g.propose(ctx, pc)
	if err != nil {
		return Result{Candidates: Fallback(pc.Windows, pc.Policy), Source: models.SourceFallback, Err: err}
	}
	return Result{Candidates: candidates, Source: models.SourceGenerative}
}

func (g *Generator) propose(ctx context.Context, pc ProposalContext) ([]models.ActivityCandidate, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	type reply struct {
		candidates []models.ActivityCandidate
		err        error
	}
	// Buffered so a backend that ignores ctx can still finish and exit.
	done := make(chan reply, 1)
	go func() {
		c, err := g.backend.Propose(ctx, pc)
		done <- reply{c, err}
	}()

	var r reply
	select {
	case r = <-done:
	case <-ctx.Done():
		return nil, &GenerationError{Kind: KindTimeout, Err: ctx.Err()}
	}

	if r.err != nil {
		return nil, classify(ctx, r.err)
	}
	if len(r.candidates) == 0 {
		return nil, &GenerationError{Kind: KindEmpty, Err: errors.New("backend returned no activities")}
	}

	kept := restrict(r.candidates, pc.Policy)
	if len(kept) == 0 {
		return nil, &GenerationError{Kind: KindMalformed, Err: errors.New("no proposed activity matches the allowed categories")}
	}
	return kept, nil
}

// restrict drops candidates outside the policy's categories and caps the
// list at the target count, keeping the backend's order as priority.
func restrict(candidates []models.ActivityCandidate, policy models.GenerationPolicy) []models.ActivityCandidate {
	kept := make([]models.ActivityCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !policy.Allows(c.Category) {
			continue
		}
		kept = append(kept, c)
		if policy.TargetCount > 0 && len(kept) == policy.TargetCount {
			break
		}
	}
	return kept
}

func classify(ctx context.Context, err error) error {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &GenerationError{Kind: KindTimeout, Err: err}
	}
	return &GenerationError{Kind: KindBackend, Err: err}
}
