// Package app wires the domain together: the simulation service fans
// templated prompts out through the rate-limited dispatcher, parses the
// completions, and collects exactly one result per selected hypothesis.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"oracle/ai"
	"oracle/domain/core"
	"oracle/domain/simulation"
	"oracle/domain/template"
	"oracle/internal/config"
	"oracle/internal/dispatch"
	"oracle/internal/errors"
	"oracle/internal/parse"
	"oracle/ports"
)

// SimulationService runs one domain template end to end
type SimulationService struct {
	completion ports.CompletionPort
	dispatcher *dispatch.Dispatcher
	cfg        config.RunConfig
	sink       ports.ResultSink

	sleepFunc func(ctx context.Context, d time.Duration) error
}

// ServiceOption customizes a SimulationService.
type ServiceOption func(*SimulationService)

// WithResultSink streams each category's results out as the category
// finishes, so a crash mid-run loses at most the in-flight category.
func WithResultSink(sink ports.ResultSink) ServiceOption {
	return func(s *SimulationService) { s.sink = sink }
}

func withSleepFunc(fn func(ctx context.Context, d time.Duration) error) ServiceOption {
	return func(s *SimulationService) { s.sleepFunc = fn }
}

// NewSimulationService assembles a runner
func NewSimulationService(completion ports.CompletionPort, dispatcher *dispatch.Dispatcher, cfg config.RunConfig, opts ...ServiceOption) *SimulationService {
	s := &SimulationService{
		completion: completion,
		dispatcher: dispatcher,
		cfg:        cfg,
		sleepFunc:  sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunRequest selects what to simulate. An empty Category runs every category
// in the template; CountOverride > 0 replaces each category's own count.
type RunRequest struct {
	Template      *template.Template
	Domain        string
	Category      string
	CountOverride int
}

// RunResult is the outcome of one run. ResultsByCategory preserves hypothesis
// order within each category; CategoryOrder preserves the processing order.
type RunResult struct {
	RunID             core.RunID
	ResultsByCategory map[string][]simulation.Result
	CategoryOrder     []string
	Attempted         int
	Degraded          int
}

// Results flattens the run in category order
func (r *RunResult) Results() []simulation.Result {
	var out []simulation.Result
	for _, cat := range r.CategoryOrder {
		out = append(out, r.ResultsByCategory[cat]...)
	}
	return out
}

// Run processes categories one at a time, fanning the category's hypotheses
// out concurrently under the dispatcher's admission gate. Every selected
// hypothesis yields exactly one result: parsed on success, degraded after the
// retry budget is spent. Cancellation stops admitting new work, keeps every
// completed result, and returns the partial run alongside a CANCELLED error.
func (s *SimulationService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if req.Template == nil {
		return nil, errors.InvalidInput("template is required")
	}
	if err := req.Template.Validate(); err != nil {
		return nil, errors.ConfigInvalid("template failed validation", err)
	}

	categories := req.Template.CategoryNames()
	if req.Category != "" {
		if _, ok := req.Template.Hypotheses[req.Category]; !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("category %q not in template", req.Category))
		}
		categories = []string{req.Category}
	}

	run := &RunResult{
		RunID:             core.NewRunID(),
		ResultsByCategory: make(map[string][]simulation.Result, len(categories)),
	}
	log.Printf("[SimulationRunner] Run %s starting: domain=%s categories=%d", run.RunID, req.Domain, len(categories))

	var runErr error
	for _, category := range categories {
		results, err := s.runCategory(ctx, req, category, run)
		if len(results) > 0 {
			run.ResultsByCategory[category] = results
			run.CategoryOrder = append(run.CategoryOrder, category)
			if s.sink != nil {
				if werr := s.sink.WriteCategory(req.Domain, category, results); werr != nil {
					log.Printf("[SimulationRunner] Failed to persist category %s: %v", category, werr)
				}
			}
		}
		if err != nil {
			runErr = err
			break
		}
	}

	log.Printf("[SimulationRunner] Run %s finished: attempted=%d degraded=%d", run.RunID, run.Attempted, run.Degraded)
	return run, runErr
}

// runCategory fans one category's hypotheses out and collects results in
// hypothesis order. Returns a CANCELLED error when the context died before
// the category completed; the returned slice then holds only finished work.
func (s *SimulationService) runCategory(ctx context.Context, req RunRequest, category string, run *RunResult) ([]simulation.Result, error) {
	hyps := req.Template.SelectHypotheses(category, req.CountOverride)
	if len(hyps) == 0 {
		return nil, nil
	}
	log.Printf("[SimulationRunner] Category %s: %d hypotheses", category, len(hyps))

	results := make([]simulation.Result, len(hyps))
	completed := make([]bool, len(hyps))

	g := new(errgroup.Group)
	for i, hyp := range hyps {
		i := i
		simReq := simulation.Request{
			SimulationID: core.NewSimulationID(req.Domain, category, i+1),
			Domain:       req.Domain,
			Category:     category,
			Hypothesis:   hyp,
		}
		prompt := ai.Build(ai.PromptInput{
			MasterPrompt:   req.Template.MasterPrompt,
			Domain:         req.Domain,
			Category:       category,
			CategoryPrompt: req.Template.CategoryPrompt(category),
			Hypothesis:     hyp,
		})

		g.Go(func() error {
			res, err := s.runOne(ctx, simReq, prompt)
			if err != nil {
				return err
			}
			results[i] = res
			completed[i] = true
			return nil
		})
	}
	err := g.Wait()

	kept := make([]simulation.Result, 0, len(hyps))
	for i, ok := range completed {
		if ok {
			kept = append(kept, results[i])
			run.Attempted++
			if results[i].Degraded {
				run.Degraded++
			}
		}
	}
	return kept, err
}

// runOne executes the retry-then-degrade loop for a single hypothesis. Only
// cancellation propagates as an error; every other failure mode ends in a
// degraded result once the budget is exhausted.
func (s *SimulationService) runOne(ctx context.Context, req simulation.Request, prompt string) (simulation.Result, error) {
	start := time.Now()
	attempts := 1 + s.cfg.RetryAttempts

	var lastErr error
	var lastRaw string
	for attempt := 0; attempt < attempts; attempt++ {
		var raw string
		err := s.dispatcher.Do(ctx, func(ctx context.Context) error {
			var cerr error
			raw, cerr = s.completion.Complete(ctx, prompt)
			return cerr
		})
		if err == nil {
			lastRaw = raw
			payload, perr := parse.Parse(raw)
			if perr == nil {
				res := s.buildResult(req, payload, raw, start)
				log.Printf("[SimulationRunner] %s completed: outcome=%s priority=%d confidence=%.2f",
					req.SimulationID, res.Outcome, res.PriorityScore, res.Confidence)
				return res, nil
			}
			err = perr
		}
		lastErr = err

		if errors.HasCode(err, errors.CodeCancelled) {
			return simulation.Result{}, err
		}
		if !errors.IsRetryable(err) {
			break
		}
		if attempt < attempts-1 {
			backoff := time.Duration(attempt+1) * s.cfg.RetryBackoff
			log.Printf("[SimulationRunner] %s attempt %d/%d failed, retrying in %v: %v",
				req.SimulationID, attempt+1, attempts, backoff, err)
			if serr := s.sleepFunc(ctx, backoff); serr != nil {
				return simulation.Result{}, errors.Cancelled("run interrupted during backoff", serr)
			}
		}
	}

	log.Printf("[SimulationRunner] %s degraded after %d attempts: %v", req.SimulationID, attempts, lastErr)
	res := simulation.NewDegradedResult(req, fmt.Sprintf("%v", lastErr))
	res.RawResponse = lastRaw
	res.DurationMs = time.Since(start).Milliseconds()
	return res, nil
}

func (s *SimulationService) buildResult(req simulation.Request, p *parse.Payload, raw string, start time.Time) simulation.Result {
	res := simulation.Result{
		SimulationID:    req.SimulationID,
		Domain:          req.Domain,
		Category:        req.Category,
		Hypothesis:      req.Hypothesis,
		Scenario:        simulation.NewScenario(req.Hypothesis),
		Outcome:         p.Outcome,
		Confidence:      p.Confidence,
		PriorityScore:   p.PriorityScore,
		Insights:        p.Insights,
		Recommendations: p.Recommendations,
		Risks:           p.Risks,
		Dependencies:    p.Dependencies,
		RawResponse:     raw,
		Timestamp:       core.Now(),
		DurationMs:      time.Since(start).Milliseconds(),
	}
	if p.Summary != "" {
		res.Metadata = map[string]any{"summary": p.Summary}
	}
	return res
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
