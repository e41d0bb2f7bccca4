package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/zurustar/bangla/pkg/cli"
	"github.com/zurustar/bangla/pkg/compiler"
	"github.com/zurustar/bangla/pkg/compiler/ast"
	"github.com/zurustar/bangla/pkg/interpreter"
	"github.com/zurustar/bangla/pkg/logger"
	"github.com/zurustar/bangla/pkg/object"
	"github.com/zurustar/bangla/pkg/repl"
	"github.com/zurustar/bangla/pkg/script"
)

// ErrScriptFailed スクリプトが構文エラーまたは実行時エラーで終了したことを示す
// 詳細はすでに標準エラー出力に表示済み
var ErrScriptFailed = errors.New("script failed")

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config *cli.Config
	log    *slog.Logger

	stdout io.Writer
	stderr io.Writer

	errColor  *color.Color
	hintColor *color.Color
}

// New Applicationを作成
// REPLは端末から直接読み込む
func New(stdout, stderr io.Writer) *Application {
	return &Application{
		stdout:    stdout,
		stderr:    stderr,
		errColor:  color.New(color.FgRed, color.Bold),
		hintColor: color.New(color.FgYellow),
	}
}

// Run アプリケーションを実行
func (app *Application) Run(ctx context.Context, args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp(app.stdout)
		return nil
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if app.config.NoColor {
		app.errColor.DisableColor()
		app.hintColor.DisableColor()
	}

	app.log.Debug("Application started", "script", app.config.ScriptPath, "eval", app.config.Eval != "")

	// 3. REPL
	if app.config.REPL() {
		return app.runREPL(ctx)
	}

	// 4. ソースの読み込み
	name, source, err := app.loadSource()
	if err != nil {
		return err
	}

	// 5. 構文解析
	program, errs := compiler.Compile(source)
	if len(errs) > 0 {
		app.printCompileErrors(name, errs)
		return ErrScriptFailed
	}

	app.log.Debug("Script compiled", "name", name, "statements", len(program.Statements))

	if app.config.DumpAST {
		dumpAST(app.stdout, program)
		return nil
	}

	// 6. 実行
	return app.execute(ctx, name, program)
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化（ログは標準エラー出力へ）
func (app *Application) initLogger() error {
	if err := logger.InitLogger(app.config.LogLevel, app.stderr); err != nil {
		return err
	}
	app.log = logger.GetLogger()
	return nil
}

// loadSource 実行するソースを取得
func (app *Application) loadSource() (string, string, error) {
	if app.config.Eval != "" {
		return "<eval>", app.config.Eval, nil
	}

	loader := script.NewLoader(app.config.Encoding)
	s, err := loader.Load(app.config.ScriptPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to load script: %w", err)
	}

	app.log.Debug("Script loaded", "name", s.FileName, "size", s.Size, "encoding", loader.Encoding())
	app.log.Debug("Script content preview", "name", s.FileName, "preview", truncate(s.Content, 100))
	return s.FileName, s.Content, nil
}

// newInterpreter 設定に従ってインタプリタを作成
func (app *Application) newInterpreter() *interpreter.Interpreter {
	return interpreter.New(
		interpreter.WithLogger(app.log),
		interpreter.WithMaxIterations(app.config.MaxIterations),
		interpreter.WithMaxDepth(app.config.MaxDepth),
		interpreter.WithOutput(app.stdout),
		interpreter.WithProgramCache(compiler.NewProgramCache(app.config.CacheSize, app.log)),
	)
}

// execute プログラムを実行（タイムアウトとCtrl-Cで中断）
func (app *Application) execute(ctx context.Context, name string, program *ast.Program) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if app.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.config.Timeout)
		defer cancel()
	}

	in := app.newInterpreter()
	if _, err := in.EvalContext(ctx, program); err != nil {
		var rtErr *object.Error
		if !errors.As(err, &rtErr) {
			return fmt.Errorf("%s: %w", name, err)
		}
		app.printRuntimeError(name, rtErr)
		return ErrScriptFailed
	}

	app.log.Debug("Script finished", "name", name, "output_lines", len(in.Output()))
	return nil
}

// runREPL 対話モードを起動
func (app *Application) runREPL(ctx context.Context) error {
	history := app.config.HistoryFile
	if history != "" && !filepath.IsAbs(history) {
		if home, err := os.UserHomeDir(); err == nil {
			history = filepath.Join(home, history)
		}
	}

	r := repl.New(app.newInterpreter(),
		repl.WithOutput(app.stdout),
		repl.WithLogger(app.log),
		repl.WithHistoryFile(history),
		repl.WithTimeout(app.config.Timeout),
		repl.WithLoader(script.NewLoader(app.config.Encoding)),
		repl.WithColor(!app.config.NoColor),
	)
	return r.Run(ctx)
}

// printCompileErrors 構文エラーを表示
func (app *Application) printCompileErrors(name string, errs []*compiler.CompileError) {
	for _, e := range errs {
		app.errColor.Fprintf(app.stderr, "%s: ", name)
		fmt.Fprintln(app.stderr, e.Error())
	}
	app.hintColor.Fprintf(app.stderr, "%d error(s), nothing was run\n", len(errs))
}

// printRuntimeError 実行時エラーを表示
func (app *Application) printRuntimeError(name string, err *object.Error) {
	app.errColor.Fprintf(app.stderr, "%s: ", name)
	fmt.Fprintln(app.stderr, err.Inspect())

	details := string(err.Kind)
	if err.Line > 0 {
		details += fmt.Sprintf(" at line %d", err.Line)
	}
	if len(err.Trace) > 0 {
		details += ", " + err.TraceString()
	}
	app.hintColor.Fprintf(app.stderr, "  %s\n", details)
}

// dumpAST 構文木を文ごとに1行で表示
func dumpAST(w io.Writer, program *ast.Program) {
	for _, stmt := range program.Statements {
		fmt.Fprintln(w, stmt.String())
	}
}

// truncate 文字列を指定した長さで切り詰める
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return strings.TrimSpace(string(runes[:maxLen])) + "..."
}
