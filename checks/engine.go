package checks

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/cel-go/cel"
)

// InputVariable is the dynamic variable NewEngine declares, so checks can be
// parameterised: `fizzBuzz(input) == "Fizz"`.
const InputVariable = "input"

// costLimit bounds runaway expressions.
const costLimit = 1000000

// Engine owns a CEL environment and the compiled programs for its checks.
// Safe for concurrent use.
type Engine struct {
	env      *cel.Env
	store    CheckStore
	cache    ChecksCache
	adhoc    *ProgramCache
	programs map[string]cel.Program // checkID -> compiled program
	mu       sync.RWMutex
}

// NewEnv creates a CEL environment with the exercise library and one
// variable per entry in vars.
func NewEnv(vars map[string]*cel.Type) (*cel.Env, error) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := []cel.EnvOption{Library()}
	for _, name := range names {
		opts = append(opts, cel.Variable(name, vars[name]))
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

// NewEngine creates an engine whose environment declares InputVariable as
// dyn, and compiles every active check already in store.
func NewEngine(store CheckStore) (*Engine, error) {
	env, err := NewEnv(map[string]*cel.Type{InputVariable: cel.DynType})
	if err != nil {
		return nil, err
	}
	return NewEngineWithEnv(env, store)
}

// NewEngineWithEnv creates an engine with a caller supplied environment.
// Suites use this to declare their own variables.
func NewEngineWithEnv(env *cel.Env, store CheckStore) (*Engine, error) {
	en := &Engine{
		env:      env,
		store:    store,
		cache:    NewInMemoryChecksCache(DefaultCacheConfig()),
		adhoc:    NewProgramCache(DefaultProgramCacheTTL, DefaultProgramCacheSize),
		programs: make(map[string]cel.Program),
	}

	if err := en.CompileAllChecks(); err != nil {
		return nil, fmt.Errorf("failed to compile checks: %w", err)
	}

	return en, nil
}

// SetProgramCache replaces the cache used by EvaluateExpression.
func (en *Engine) SetProgramCache(c *ProgramCache) {
	en.mu.Lock()
	en.adhoc = c
	en.mu.Unlock()
}

// Store returns the engine's check store.
func (en *Engine) Store() CheckStore {
	return en.store
}

// compile type-checks expression and builds a program with state tracking
// and the cost limit applied.
func (en *Engine) compile(expression string) (cel.Program, error) {
	ast, issues := en.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}

	prog, err := en.env.Program(ast,
		cel.EvalOptions(cel.OptTrackState),
		cel.CostLimit(costLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}
	return prog, nil
}

// CompileCheck compiles expression and caches the program under checkID.
func (en *Engine) CompileCheck(checkID, expression string) error {
	prog, err := en.compile(expression)
	if err != nil {
		return err
	}

	en.mu.Lock()
	en.programs[checkID] = prog
	en.mu.Unlock()

	return nil
}

// CompileAllChecks compiles all active checks from the store and primes
// the cache with them.
func (en *Engine) CompileAllChecks() error {
	checks, err := en.store.ListActive()
	if err != nil {
		return err
	}

	for _, check := range checks {
		if err := en.CompileCheck(check.ID, check.Expression); err != nil {
			return fmt.Errorf("failed to compile check %s: %w", check.ID, err)
		}
	}

	en.cache.Set(checks)
	return nil
}

func (en *Engine) run(check *Check, prog cel.Program, facts map[string]any) *EvaluationResult {
	if facts == nil {
		facts = map[string]any{}
	}

	result := &EvaluationResult{
		CheckID:   check.ID,
		CheckName: check.Name,
	}

	out, details, err := prog.Eval(facts)
	if err != nil {
		result.Error = err
		return result
	}

	result.Output = nativeOutput(out)
	if b, ok := out.Value().(bool); ok {
		result.Passed = b
	}
	if details != nil {
		result.Trace = details.State()
	}
	return result
}

// Evaluate evaluates a single check against facts. An evaluation failure is
// returned both in the result and as the error.
func (en *Engine) Evaluate(checkID string, facts map[string]any) (*EvaluationResult, error) {
	check, err := en.store.Get(checkID)
	if err != nil {
		return nil, err
	}

	en.mu.RLock()
	prog, exists := en.programs[checkID]
	en.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("check %s is not compiled", checkID)
	}

	result := en.run(check, prog, facts)
	return result, result.Error
}

// EvaluateAll evaluates every active check. A failing check is reported in
// its result and does not stop the others.
func (en *Engine) EvaluateAll(facts map[string]any) ([]*EvaluationResult, error) {
	checks := en.cache.Get()
	if checks == nil {
		var err error
		checks, err = en.store.ListActive()
		if err != nil {
			return nil, err
		}
		en.cache.Set(checks)
	}

	results := make([]*EvaluationResult, 0, len(checks))
	for _, check := range checks {
		en.mu.RLock()
		prog, exists := en.programs[check.ID]
		en.mu.RUnlock()

		if !exists {
			results = append(results, &EvaluationResult{
				CheckID:   check.ID,
				CheckName: check.Name,
				Error:     fmt.Errorf("check %s is not compiled", check.ID),
			})
			continue
		}

		results = append(results, en.run(check, prog, facts))
	}

	return results, nil
}

// EvaluateExpression compiles and evaluates an ad-hoc expression. Compiled
// programs are cached by expression text.
func (en *Engine) EvaluateExpression(expression string, facts map[string]any) (*EvaluationResult, error) {
	en.mu.RLock()
	adhoc := en.adhoc
	en.mu.RUnlock()

	prog, _, err := adhoc.GetOrCompile(expression, en.compile)
	if err != nil {
		return nil, err
	}

	result := en.run(&Check{Name: expression, Expression: expression}, prog, facts)
	return result, result.Error
}

// AddCheck validates, compiles and stores a new check. The compiled program
// is dropped again if the store rejects the check.
func (en *Engine) AddCheck(c *Check) error {
	if _, err := en.store.Get(c.ID); err == nil {
		return fmt.Errorf("check with ID %s already exists", c.ID)
	}

	if err := en.CompileCheck(c.ID, c.Expression); err != nil {
		return fmt.Errorf("check validation failed: %w", err)
	}

	if err := en.store.Add(c); err != nil {
		en.mu.Lock()
		delete(en.programs, c.ID)
		en.mu.Unlock()
		return err
	}

	en.cache.Invalidate()
	return nil
}

// UpdateCheck recompiles and stores c. The old program stays in place if
// either step fails.
func (en *Engine) UpdateCheck(c *Check) error {
	prog, err := en.compile(c.Expression)
	if err != nil {
		return fmt.Errorf("check validation failed: %w", err)
	}

	if err := en.store.Update(c); err != nil {
		return err
	}

	en.mu.Lock()
	en.programs[c.ID] = prog
	en.mu.Unlock()

	en.cache.Invalidate()
	return nil
}

// DeleteCheck removes a check from the store and its compiled program.
func (en *Engine) DeleteCheck(checkID string) error {
	if err := en.store.Delete(checkID); err != nil {
		return err
	}

	en.mu.Lock()
	delete(en.programs, checkID)
	en.mu.Unlock()

	en.cache.Invalidate()
	return nil
}
