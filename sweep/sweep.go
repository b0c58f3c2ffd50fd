// Package sweep evaluates a strategy under many stress scenarios
// concurrently. Parallelism lives only across runs: each scenario gets its
// own generated series, engine, and ledger, so nothing mutable is shared.
package sweep

import (
	"context"
	"sync"

	"github.com/rustyeddy/quantsim/market"
	"github.com/rustyeddy/quantsim/scenario"
	"github.com/rustyeddy/quantsim/signal"
	"github.com/rustyeddy/quantsim/sim"
	"github.com/rustyeddy/quantsim/stats"
)

// ScenarioResult is one scenario's outcome. Err is set when the scenario
// could not be generated or run (e.g. correlation breakdown on a single
// series); the rest of the sweep is unaffected.
type ScenarioResult struct {
	Kind    scenario.Kind
	Result  sim.Result
	Summary stats.Summary
	Err     error
}

// Report aggregates a whole sweep. MostResilient and MostVulnerable rank
// successful scenarios by Sharpe ratio.
type Report struct {
	Results        []ScenarioResult
	MostResilient  scenario.Kind
	MostVulnerable scenario.Kind
}

// Runner fans a baseline series out over stress scenarios.
type Runner struct {
	Generator   *scenario.Generator
	Engine      sim.Config
	BarsPerYear float64
}

// Run executes one backtest per scenario kind, concurrently. The context
// bounds the fan-out: kinds not yet started when ctx is done are reported
// with ctx.Err(). Results keep the order of kinds.
func (r *Runner) Run(ctx context.Context, bars []market.Bar, sigs []signal.Signal, kinds []scenario.Kind) (Report, error) {
	if len(kinds) == 0 {
		kinds = scenario.Kinds()
	}

	results := make([]ScenarioResult, len(kinds))
	var wg sync.WaitGroup

	for i, kind := range kinds {
		if err := ctx.Err(); err != nil {
			results[i] = ScenarioResult{Kind: kind, Err: err}
			continue
		}

		wg.Add(1)
		go func(i int, kind scenario.Kind) {
			defer wg.Done()
			results[i] = r.runOne(bars, sigs, kind)
		}(i, kind)
	}
	wg.Wait()

	rep := Report{Results: results}
	rep.rank()
	return rep, nil
}

func (r *Runner) runOne(bars []market.Bar, sigs []signal.Signal, kind scenario.Kind) ScenarioResult {
	res := ScenarioResult{Kind: kind}

	stressed, err := r.Generator.Generate(bars, kind)
	if err != nil {
		res.Err = err
		return res
	}

	engine := sim.New(r.Engine)
	run, err := engine.Run(stressed, sigs)
	if err != nil {
		res.Err = err
		return res
	}

	res.Result = run
	res.Summary = stats.Summarize(run.EquityCurve, run.Trades, r.Engine.InitialCapital, r.BarsPerYear)
	return res
}

func (rep *Report) rank() {
	first := true
	var best, worst float64
	for _, sr := range rep.Results {
		if sr.Err != nil {
			continue
		}
		s := sr.Summary.Sharpe
		if first {
			first = false
			best, worst = s, s
			rep.MostResilient, rep.MostVulnerable = sr.Kind, sr.Kind
			continue
		}
		if s > best {
			best = s
			rep.MostResilient = sr.Kind
		}
		if s < worst {
			worst = s
			rep.MostVulnerable = sr.Kind
		}
	}
}
