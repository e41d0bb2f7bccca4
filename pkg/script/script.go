// Package script はbanglaスクリプトファイルの読み込みと文字コード変換を行う
package script

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/zurustar/bangla/pkg/fileutil"
)

// Extension はスクリプトファイルの拡張子
const Extension = ".bang"

// DefaultEncoding は指定がない場合の文字コード
const DefaultEncoding = "utf-8"

// Script はスクリプトファイルを表す
type Script struct {
	FileName string // ファイル名
	Path     string // 解決済みのパス
	Content  string // UTF-8(NFC)に変換された内容
	Size     int64  // ファイルサイズ
}

// Loader はスクリプトファイルの読み込みを行う
type Loader struct {
	encoding string
}

// NewLoader Loaderを作成
// encodingはWHATWGのラベル（"utf-8", "shift_jis", "utf-16le"など）。空ならUTF-8
func NewLoader(encoding string) *Loader {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &Loader{
		encoding: encoding,
	}
}

// Encoding 使用する文字コード名を返す
func (l *Loader) Encoding() string {
	return l.encoding
}

// Load スクリプトファイルを読み込む
// 拡張子の省略と大文字小文字の違いは許容する
func (l *Loader) Load(path string) (*Script, error) {
	resolved, err := fileutil.ResolveScript(path, Extension)
	if err != nil {
		return nil, err
	}

	// ファイル情報を取得
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	// ファイルを読み込む
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	content, err := Decode(data, l.encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to convert encoding of %s: %w", resolved, err)
	}

	return &Script{
		FileName: filepath.Base(resolved),
		Path:     resolved,
		Content:  content,
		Size:     info.Size(),
	}, nil
}

// Decode 指定の文字コードからUTF-8に変換する
// BOMがあればBOMの示す文字コードを優先し、結果はNFCに正規化する
func Decode(data []byte, encoding string) (string, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	enc, err := htmlindex.Get(strings.TrimSpace(encoding))
	if err != nil {
		return "", fmt.Errorf("unknown encoding %q: %w", encoding, err)
	}

	// BOMOverrideはUTF-8/UTF-16のBOMを検出して取り除く
	decoder := unicode.BOMOverride(enc.NewDecoder())
	reader := transform.NewReader(bytes.NewReader(data), decoder)

	utf8Data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", encoding, err)
	}

	return norm.NFC.String(string(utf8Data)), nil
}
