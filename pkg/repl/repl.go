// Package repl は対話モード（Read-Eval-Print Loop）を提供する
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/zurustar/bangla/pkg/compiler"
	"github.com/zurustar/bangla/pkg/compiler/token"
	"github.com/zurustar/bangla/pkg/interpreter"
	"github.com/zurustar/bangla/pkg/logger"
	"github.com/zurustar/bangla/pkg/object"
	"github.com/zurustar/bangla/pkg/script"
)

const (
	// Prompt は通常のプロンプト
	Prompt = ">> "
	// ContinuationPrompt は複数行入力の途中のプロンプト
	ContinuationPrompt = ".. "
)

const helpText = `コマンド:
  :help          このヘルプを表示
  :quit, :q      終了
  :reset         すべての変数を消去
  :load <file>   スクリプトを読み込んで実行
  :ast <src>     構文木を表示
ブロックや括弧が閉じていない行は次の行に続く。空行で入力を取り消す。`

// REPL は対話モードの状態を保持する
// 変数は入力をまたいで保持される
type REPL struct {
	in  *interpreter.Interpreter
	out io.Writer
	log *slog.Logger

	historyFile string
	timeout     time.Duration
	loader      *script.Loader

	errColor   *color.Color
	valueColor *color.Color

	pending strings.Builder
}

// Option REPLの設定
type Option func(*REPL)

// WithOutput 出力先を設定
func WithOutput(w io.Writer) Option {
	return func(r *REPL) {
		r.out = w
	}
}

// WithLogger ロガーを設定
func WithLogger(log *slog.Logger) Option {
	return func(r *REPL) {
		r.log = log
	}
}

// WithHistoryFile 履歴ファイルを設定（空なら履歴を保存しない）
func WithHistoryFile(path string) Option {
	return func(r *REPL) {
		r.historyFile = path
	}
}

// WithTimeout 1回の入力の実行時間の上限を設定（0は無制限）
func WithTimeout(d time.Duration) Option {
	return func(r *REPL) {
		r.timeout = d
	}
}

// WithLoader :load で使うローダーを設定
func WithLoader(loader *script.Loader) Option {
	return func(r *REPL) {
		r.loader = loader
	}
}

// WithColor 色付けの有無を設定
func WithColor(enabled bool) Option {
	return func(r *REPL) {
		if !enabled {
			r.errColor.DisableColor()
			r.valueColor.DisableColor()
		}
	}
}

// New REPLを作成
func New(in *interpreter.Interpreter, opts ...Option) *REPL {
	r := &REPL{
		in:         in,
		out:        os.Stdout,
		log:        logger.GetLogger(),
		loader:     script.NewLoader(script.DefaultEncoding),
		errColor:   color.New(color.FgRed),
		valueColor: color.New(color.FgCyan),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run 端末から入力を読み込んで実行する
// Ctrl-C は入力中なら行の取り消し、実行中なら実行の中断
func (r *REPL) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(r.Complete)
	r.readHistory(line)
	defer r.writeHistory(line)

	// 実行中の Ctrl-C はインタプリタに伝える
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer func() {
		signal.Stop(sigs)
		close(sigs)
	}()
	go func() {
		for range sigs {
			r.in.Interrupt()
		}
	}()

	fmt.Fprintln(r.out, "bangla REPL (:help でヘルプ)")

	for {
		if ctx.Err() != nil {
			return nil
		}

		input, err := line.Prompt(r.prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				r.pending.Reset()
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if quit := r.Feed(ctx, input); quit {
			return nil
		}
	}
}

func (r *REPL) prompt() string {
	if r.Pending() {
		return ContinuationPrompt
	}
	return Prompt
}

// Pending 複数行入力の途中かどうか
func (r *REPL) Pending() bool {
	return r.pending.Len() > 0
}

// Feed 1行の入力を処理する。終了が要求されたらtrueを返す
func (r *REPL) Feed(ctx context.Context, input string) bool {
	if !r.Pending() {
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			return false
		}
		if strings.HasPrefix(trimmed, ":") {
			return r.command(ctx, trimmed)
		}
	} else if strings.TrimSpace(input) == "" {
		// 空行で複数行入力を取り消す
		r.pending.Reset()
		return false
	}

	r.pending.WriteString(input)
	r.pending.WriteString("\n")

	source := r.pending.String()
	if compiler.Incomplete(source) {
		return false
	}
	r.pending.Reset()

	r.eval(ctx, source)
	return false
}

// eval ソースを実行して結果を表示する
func (r *REPL) eval(ctx context.Context, source string) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	res := r.in.RunContext(ctx, source)
	for _, msg := range res.ParseErrors {
		r.errColor.Fprintf(r.out, "syntax error: %s\n", msg)
	}
	if res.Err != nil {
		r.printError(res.Err)
		return
	}
	if res.Value != nil && res.Value != object.NULL {
		r.valueColor.Fprintln(r.out, object.Repr(res.Value))
	}
}

func (r *REPL) printError(err *object.Error) {
	msg := err.Inspect()
	if err.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", err.Line)
	}
	if len(err.Trace) > 0 {
		msg += " " + err.TraceString()
	}
	r.errColor.Fprintln(r.out, msg)
}

// command ":" で始まるコマンドを処理する
func (r *REPL) command(ctx context.Context, input string) bool {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	r.log.Debug("REPL command", "name", name, "arg", arg)

	switch name {
	case ":quit", ":q":
		return true

	case ":help":
		fmt.Fprintln(r.out, helpText)

	case ":reset":
		r.in.Reset()
		fmt.Fprintln(r.out, "environment cleared")

	case ":load":
		if arg == "" {
			r.errColor.Fprintln(r.out, "usage: :load <file>")
			return false
		}
		s, err := r.loader.Load(arg)
		if err != nil {
			r.errColor.Fprintln(r.out, err.Error())
			return false
		}
		r.eval(ctx, s.Content)

	case ":ast":
		if arg == "" {
			r.errColor.Fprintln(r.out, "usage: :ast <source>")
			return false
		}
		program, errs := compiler.Compile(arg)
		if len(errs) > 0 {
			for _, msg := range compiler.Messages(errs) {
				r.errColor.Fprintf(r.out, "syntax error: %s\n", msg)
			}
			return false
		}
		for _, stmt := range program.Statements {
			fmt.Fprintln(r.out, stmt.String())
		}

	default:
		r.errColor.Fprintf(r.out, "unknown command %s (try :help)\n", name)
	}
	return false
}

// Complete 入力中の単語をキーワード・組み込み関数・変数名で補完する
func (r *REPL) Complete(line string) []string {
	start := strings.LastIndexFunc(line, func(c rune) bool {
		return !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9')
	}) + 1
	prefix := line[start:]
	if prefix == "" {
		return nil
	}

	seen := make(map[string]bool)
	var candidates []string
	add := func(words []string) {
		for _, w := range words {
			if strings.HasPrefix(w, prefix) && !seen[w] {
				seen[w] = true
				candidates = append(candidates, line[:start]+w)
			}
		}
	}
	add(token.Keywords())
	add(r.in.Builtins())
	add(r.in.Env().Keys())

	sort.Strings(candidates)
	return candidates
}

func (r *REPL) readHistory(line *liner.State) {
	if r.historyFile == "" {
		return
	}
	f, err := os.Open(r.historyFile)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := line.ReadHistory(f); err != nil {
		r.log.Warn("failed to read history", "file", r.historyFile, "error", err)
	}
}

func (r *REPL) writeHistory(line *liner.State) {
	if r.historyFile == "" {
		return
	}
	f, err := os.Create(r.historyFile)
	if err != nil {
		r.log.Warn("failed to write history", "file", r.historyFile, "error", err)
		return
	}
	defer f.Close()
	if _, err := line.WriteHistory(f); err != nil {
		r.log.Warn("failed to write history", "file", r.historyFile, "error", err)
	}
}
