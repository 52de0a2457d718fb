package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Metrics はストレージ操作のメトリクス収集インターフェース。
// metrics.Collectorの部分集合として定義する。nilの場合は記録しない。
type Metrics interface {
	RecordUploadSaved(bytes int64)
	RecordFileDelete(ok bool)
}

// LocalStore はローカルディスク上の単一ディレクトリにファイルを保存するストア。
// 保存名は「UUID_サニタイズ済み元ファイル名」で、衝突とパストラバーサルを防ぐ。
type LocalStore struct {
	root    string
	metrics Metrics
}

// NewLocalStore はLocalStoreを生成し、保存先ディレクトリを作成する。
// metricsはnilを許容する。
func NewLocalStore(root string, metrics Metrics) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{root: root, metrics: metrics}, nil
}

// Root は保存先ディレクトリのパスを返す。
func (s *LocalStore) Root() string {
	return s.root
}

// unsafeChars はサニタイズで「_」に置換する文字の集合。
// 英数字・ドット・ハイフン・アンダースコア以外をすべて潰す。
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename は元ファイル名からパス区切りと不正な文字を取り除く。
// 空になった場合は"file"を返す。
func SanitizeFilename(name string) string {
	// Windows形式のパス区切りもここで落とす
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, ".")
	if name == "" {
		return "file"
	}
	return name
}

// Save はアップロード内容を保存し、保存名（ストレージルートからの相対パス）を返す。
// 保存名には新規生成したUUIDを前置するため、同名ファイルの同時アップロードでも衝突しない。
func (s *LocalStore) Save(content io.Reader, originalName string) (string, error) {
	storedName := uuid.NewString() + "_" + SanitizeFilename(originalName)

	f, err := os.OpenFile(filepath.Join(s.root, storedName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// 書き込みに失敗した中途半端なファイルは残さない
		s.Delete(storedName)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordUploadSaved(written)
	}

	return storedName, nil
}

// Delete は保存ファイルをベストエフォートで削除する。
// 失敗しても呼び出し元のCRUD操作を妨げないため、エラーはログに残すだけで返さない。
func (s *LocalStore) Delete(storedName string) {
	if storedName == "" {
		return
	}
	if !s.validName(storedName) {
		slog.Warn("refusing to delete file with unsafe name",
			slog.String("name", storedName),
		)
		return
	}

	err := os.Remove(filepath.Join(s.root, storedName))
	if err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to delete stored file",
			slog.String("name", storedName),
			slog.String("error", err.Error()),
		)
		if s.metrics != nil {
			s.metrics.RecordFileDelete(false)
		}
		return
	}

	if s.metrics != nil {
		s.metrics.RecordFileDelete(err == nil)
	}
}

// Open は保存ファイルを読み取り用に開く。
// 存在しない場合はos.ErrNotExistをラップしたエラーを返す。
func (s *LocalStore) Open(storedName string) (*os.File, error) {
	if !s.validName(storedName) {
		return nil, fmt.Errorf("invalid stored name %q: %w", storedName, os.ErrNotExist)
	}
	f, err := os.Open(filepath.Join(s.root, storedName))
	if err != nil {
		return nil, fmt.Errorf("failed to open stored file: %w", err)
	}
	return f, nil
}

// validName は保存名がストレージルートの直下を指すことを検証する。
// パス区切りや「..」を含む名前はすべて拒否する。
func (s *LocalStore) validName(name string) bool {
	return name != "" &&
		!strings.ContainsAny(name, `/\`) &&
		name != "." && name != ".." &&
		filepath.Base(name) == name
}
