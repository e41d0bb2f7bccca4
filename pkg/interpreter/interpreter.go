// Package interpreter evaluates bangla programs by walking their syntax tree.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/edwingeng/deque"
	"github.com/tevino/abool/v2"

	"github.com/zurustar/bangla/pkg/compiler"
	"github.com/zurustar/bangla/pkg/compiler/ast"
	"github.com/zurustar/bangla/pkg/config"
	"github.com/zurustar/bangla/pkg/logger"
	"github.com/zurustar/bangla/pkg/object"
)

const (
	// DefaultMaxIterations bounds the iterations of any single loop.
	DefaultMaxIterations = 1000000

	// DefaultMaxDepth bounds the number of nested function calls.
	DefaultMaxDepth = 1000
)

// Interpreter runs programs against a persistent global environment.
// It is not safe for concurrent use, except for Interrupt.
type Interpreter struct {
	env      *object.Environment
	builtins map[string]*object.Builtin

	output []string
	out    io.Writer

	cache *compiler.ProgramCache

	// frames holds the active user function calls, innermost at the back.
	frames deque.Deque

	maxIterations int
	maxDepth      int

	ctx         context.Context
	interrupted *abool.AtomicBool

	rng *rand.Rand
	now func() time.Time
	log *slog.Logger
}

// frame is one active function call.
type frame struct {
	name string
}

// callTrace lists the active calls, innermost first.
func (in *Interpreter) callTrace() []string {
	n := in.frames.Len()
	trace := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		trace = append(trace, in.frames.Peek(i).(*frame).name)
	}
	return trace
}

// Result is the outcome of one Run.
type Result struct {
	// Value is the value of the last statement, or the Error on failure.
	Value object.Object
	// Err is the runtime error that stopped the run, if any.
	Err *object.Error
	// ParseErrors lists syntax errors. When non-empty nothing was evaluated.
	ParseErrors []string
	// Output holds the lines printed during the run.
	Output []string
}

// Failed reports whether the run ended with a parse or runtime error.
func (r Result) Failed() bool {
	return r.Err != nil || len(r.ParseErrors) > 0
}

// Option is a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(in *Interpreter) {
		in.log = log
	}
}

// WithMaxIterations sets the per-loop iteration limit. Zero disables it.
func WithMaxIterations(n int) Option {
	return func(in *Interpreter) {
		in.maxIterations = n
	}
}

// WithMaxDepth sets the call depth limit, capped at config.MaxDepthLimit.
func WithMaxDepth(n int) Option {
	return func(in *Interpreter) {
		in.maxDepth = min(n, config.MaxDepthLimit)
	}
}

// WithOutput mirrors printed lines to w as they are produced.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) {
		in.out = w
	}
}

// WithProgramCache parses through cache instead of parsing every run.
func WithProgramCache(cache *compiler.ProgramCache) Option {
	return func(in *Interpreter) {
		in.cache = cache
	}
}

// WithRandSeed seeds the source behind lotto.
func WithRandSeed(seed int64) Option {
	return func(in *Interpreter) {
		in.rng = rand.New(rand.NewPCG(uint64(seed), 0))
	}
}

// WithClock replaces the clock behind somoy.
func WithClock(now func() time.Time) Option {
	return func(in *Interpreter) {
		in.now = now
	}
}

// New creates an Interpreter with the default builtins registered.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		env:           object.NewEnvironment(),
		builtins:      make(map[string]*object.Builtin),
		frames:        deque.NewDeque(),
		maxIterations: DefaultMaxIterations,
		maxDepth:      DefaultMaxDepth,
		ctx:           context.Background(),
		interrupted:   abool.New(),
		rng:           rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		now:           time.Now,
		log:           logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(in)
	}

	for name, fn := range defaultBuiltins() {
		in.RegisterBuiltin(name, fn)
	}

	return in
}

// RegisterBuiltin adds or replaces a native function. User bindings of the
// same name take precedence over it.
func (in *Interpreter) RegisterBuiltin(name string, fn object.BuiltinFunction) {
	in.builtins[name] = &object.Builtin{Name: name, Fn: fn}
}

// Builtins returns the registered builtin names.
func (in *Interpreter) Builtins() []string {
	names := make([]string, 0, len(in.builtins))
	for name := range in.builtins {
		names = append(names, name)
	}
	return names
}

// Env returns the global environment.
func (in *Interpreter) Env() *object.Environment {
	return in.env
}

// Reset discards all global bindings and printed output.
func (in *Interpreter) Reset() {
	in.env = object.NewEnvironment()
	in.output = nil
	in.frames = deque.NewDeque()
	in.log.Debug("interpreter reset")
}

// Interrupt stops the running program at its next loop iteration or call.
// It may be called from another goroutine.
func (in *Interpreter) Interrupt() {
	in.interrupted.Set()
}

// Output returns the lines printed by the current run.
func (in *Interpreter) Output() []string {
	lines := make([]string, len(in.output))
	copy(lines, in.output)
	return lines
}

// Run parses and evaluates source.
func (in *Interpreter) Run(source string) Result {
	return in.RunContext(context.Background(), source)
}

// RunContext is Run with a context; cancelling ctx stops the program with an
// uncatchable INTERRUPTED error.
func (in *Interpreter) RunContext(ctx context.Context, source string) Result {
	in.output = nil

	var (
		program *ast.Program
		errs    []*compiler.CompileError
	)
	if in.cache != nil {
		program, errs = in.cache.Compile(source)
	} else {
		program, errs = compiler.Compile(source)
	}
	if len(errs) > 0 {
		in.log.Debug("parse failed", "errors", len(errs))
		return Result{ParseErrors: compiler.Messages(errs)}
	}

	val, err := in.EvalContext(ctx, program)
	res := Result{Value: val, Output: in.Output()}
	if err != nil {
		res.Err = toError(err)
		res.Value = res.Err
	}
	return res
}

// EvalContext evaluates an already parsed program in the global environment.
func (in *Interpreter) EvalContext(ctx context.Context, program *ast.Program) (object.Object, error) {
	start := time.Now()

	in.ctx = ctx
	in.interrupted.UnSet()
	in.frames = deque.NewDeque()
	defer func() { in.ctx = context.Background() }()

	val, err := in.evalProgram(program, in.env)
	if err != nil {
		in.log.Debug("run failed", "error", err, "elapsed", time.Since(start))
		return nil, err
	}

	in.log.Debug("run finished", "statements", len(program.Statements), "output_lines", len(in.output), "elapsed", time.Since(start))
	return val, nil
}

// Print implements object.Host.
func (in *Interpreter) Print(line string) {
	in.output = append(in.output, line)
	if in.out != nil {
		fmt.Fprintln(in.out, line)
	}
}

// Call implements object.Host.
func (in *Interpreter) Call(fn object.Object, args ...object.Object) (object.Object, error) {
	return in.applyFunction(fn, args)
}

// Random implements object.Host.
func (in *Interpreter) Random() float64 {
	return in.rng.Float64()
}

// Now implements object.Host.
func (in *Interpreter) Now() time.Time {
	return in.now()
}

// checkInterrupt reports an INTERRUPTED error once Interrupt was called or
// the run's context is done.
func (in *Interpreter) checkInterrupt() error {
	if in.interrupted.IsSet() {
		return object.NewInterruptedError(nil)
	}
	if err := in.ctx.Err(); err != nil {
		return object.NewInterruptedError(err)
	}
	return nil
}

// toError converts any evaluation failure into a runtime Error.
func toError(err error) *object.Error {
	var rtErr *object.Error
	if errors.As(err, &rtErr) {
		return rtErr
	}
	return object.NewHostError("%v", err)
}
