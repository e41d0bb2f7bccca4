package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zurustar/bangla/pkg/config"
)

// maxDepthLimit は --max-depth に指定できる上限
const maxDepthLimit = config.MaxDepthLimit

// Config はコマンドライン引数・環境変数・設定ファイルをまとめた実行設定
// 優先順位: フラグ > 環境変数 > 設定ファイル > デフォルト値
type Config struct {
	ScriptPath    string        // 実行するスクリプトのパス（省略時はREPL）
	Eval          string        // -e で指定されたソース
	ScriptArgs    []string      // スクリプトパス以降の引数
	Timeout       time.Duration // タイムアウト時間（0は無制限）
	LogLevel      string        // ログレベル（debug, info, warn, error）
	MaxIterations int           // 1つのループの最大反復回数（0は無制限）
	MaxDepth      int           // 関数呼び出しの最大深さ
	Encoding      string        // スクリプトの文字コード
	ConfigPath    string        // 設定ファイルのパス
	HistoryFile   string        // REPLの履歴ファイル
	CacheSize     int           // 構文木キャッシュの大きさ
	DumpAST       bool          // 構文木を表示して終了
	NoColor       bool          // エラー表示の色付けを無効化
	ShowHelp      bool          // ヘルプ表示フラグ
}

// 値を取るフラグ（reorderArgsで次の引数を値として扱う）
var valueFlags = map[string]bool{
	"-t": true, "--timeout": true, "-timeout": true,
	"-l": true, "--log-level": true, "-log-level": true,
	"-e": true, "--eval": true, "-eval": true,
	"--max-iterations": true, "-max-iterations": true,
	"--max-depth": true, "-max-depth": true,
	"--encoding": true, "-encoding": true,
	"--config": true, "-config": true,
}

// REPL ParseArgs の結果がREPLの起動を意味するか
func (c *Config) REPL() bool {
	return c.ScriptPath == "" && c.Eval == ""
}

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("bangla", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{}

	var (
		timeoutSec    int
		logLevel      string
		maxIterations int
		maxDepth      int
		encoding      string
	)
	fs.IntVar(&timeoutSec, "timeout", 0, "タイムアウト時間（秒）")
	fs.IntVar(&timeoutSec, "t", 0, "タイムアウト時間（秒）（短縮形）")
	fs.StringVar(&logLevel, "log-level", "", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&logLevel, "l", "", "ログレベル（短縮形）")
	fs.StringVar(&config.Eval, "eval", "", "実行するソース")
	fs.StringVar(&config.Eval, "e", "", "実行するソース（短縮形）")
	fs.IntVar(&maxIterations, "max-iterations", 0, "1つのループの最大反復回数")
	fs.IntVar(&maxDepth, "max-depth", 0, "関数呼び出しの最大深さ")
	fs.StringVar(&encoding, "encoding", "", "スクリプトの文字コード")
	fs.StringVar(&config.ConfigPath, "config", "", "設定ファイルのパス")
	fs.BoolVar(&config.DumpAST, "dump-ast", false, "構文木を表示")
	fs.BoolVar(&config.NoColor, "no-color", false, "色付けを無効化")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// 明示的に指定されたフラグ
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// 設定ファイル（フラグ > 環境変数）
	if config.ConfigPath == "" {
		config.ConfigPath = os.Getenv("BANGLA_CONFIG")
	}
	file, err := loadFile(config.ConfigPath)
	if err != nil {
		return nil, err
	}
	config.apply(file)

	// 環境変数からタイムアウトを取得（コマンドラインフラグが優先）
	if timeoutEnv := os.Getenv("TIMEOUT"); timeoutEnv != "" {
		if t, err := strconv.Atoi(timeoutEnv); err == nil && t > 0 {
			config.Timeout = time.Duration(t) * time.Second
		}
	}

	// 環境変数からログレベルを取得（コマンドラインフラグが優先）
	if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
		config.LogLevel = strings.ToLower(logLevelEnv)
	}

	// コマンドラインフラグ
	if set["timeout"] || set["t"] {
		// タイムアウトの検証
		if timeoutSec < 0 {
			return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
		}
		config.Timeout = time.Duration(timeoutSec) * time.Second
	}
	if set["log-level"] || set["l"] {
		config.LogLevel = logLevel
	}
	if set["max-iterations"] {
		if maxIterations < 0 {
			return nil, fmt.Errorf("max-iterations must be non-negative, got %d", maxIterations)
		}
		config.MaxIterations = maxIterations
	}
	if set["max-depth"] {
		if maxDepth <= 0 {
			return nil, fmt.Errorf("max-depth must be positive, got %d", maxDepth)
		}
		if maxDepth > maxDepthLimit {
			return nil, fmt.Errorf("max-depth must be at most %d, got %d", maxDepthLimit, maxDepth)
		}
		config.MaxDepth = maxDepth
	}
	if set["encoding"] {
		config.Encoding = encoding
	}
	if !set["no-color"] {
		config.NoColor = file.NoColor
	}

	// ログレベルの検証
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	// 位置引数（スクリプトのパスとスクリプトへの引数）
	if fs.NArg() > 0 {
		if config.Eval != "" {
			config.ScriptArgs = fs.Args()
		} else {
			config.ScriptPath = fs.Arg(0)
			config.ScriptArgs = fs.Args()[1:]
		}
	}

	return config, nil
}

// loadFile 設定ファイルを読み込む（パスが空ならデフォルト値）
func loadFile(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// apply 設定ファイルの値を反映する
func (c *Config) apply(file *config.Config) {
	c.LogLevel = file.LogLevel
	c.Timeout = time.Duration(file.Timeout) * time.Second
	c.MaxIterations = file.MaxIterations
	c.MaxDepth = file.MaxDepth
	c.Encoding = file.Encoding
	c.HistoryFile = file.HistoryFile
	c.CacheSize = file.CacheSize
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
// "--" 以降はすべて位置引数として扱う
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)

			// 値を取るフラグは次の引数を値として追加（-e "-1 + 2" のような場合も含む）
			if valueFlags[arg] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			// 位置引数
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を後ろに配置
	if len(positional) == 0 {
		return flags
	}
	return append(append(flags, "--"), positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `bangla - Banglish scripting language interpreter

Usage:
  bangla [options] [script.bang [args...]]
  bangla [options] -e <source>
  bangla [options]                 REPLを起動

Arguments:
  script.bang   実行するスクリプト（拡張子 .bang は省略可）

Options:
  -e, --eval <source>         ソースを直接実行
  -t, --timeout <seconds>     指定秒数後に実行を中断（デフォルト: 無制限）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  --max-iterations <n>        1つのループの最大反復回数（0は無制限、デフォルト: 1000000）
  --max-depth <n>             関数呼び出しの最大深さ（デフォルト: 1000）
  --encoding <name>           スクリプトの文字コード（デフォルト: utf-8）
  --config <path>             設定ファイル（YAML）
  --dump-ast                  構文木を表示して終了
  --no-color                  エラー表示の色付けを無効化
  -h, --help                  このヘルプを表示

Environment Variables:
  TIMEOUT=<seconds>           タイムアウト時間（秒）
  LOG_LEVEL=<level>           ログレベル
  BANGLA_CONFIG=<path>        設定ファイルのパス

Examples:
  bangla hello.bang                   スクリプトを実行
  bangla -e 'dekho(2 + 3 * 4);'       ソースを直接実行
  bangla --dump-ast hello.bang        構文木を表示
  bangla --timeout 10 loop.bang       10秒後に中断
  LOG_LEVEL=debug bangla              デバッグログ付きでREPLを起動
`)
}
