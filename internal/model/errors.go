// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// クライアントに返す原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, todo, storage, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEmailAlreadyRegistered = "EMAIL_ALREADY_REGISTERED"
	ErrCodeInvalidCredentials     = "INVALID_CREDENTIALS"
	ErrCodeInvalidFileExtension   = "INVALID_FILE_EXTENSION"
	ErrCodeFileNotFound           = "FILE_NOT_FOUND"
	ErrCodeInvalidRequest         = "INVALID_REQUEST"
	ErrCodeRequestTooLarge        = "REQUEST_TOO_LARGE"
)

// NewEmailAlreadyRegisteredError はメールアドレス重複エラーを生成する。
func NewEmailAlreadyRegisteredError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeEmailAlreadyRegistered,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "auth",
		Action:   "別のメールアドレスで登録するか、ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレス不在とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewInvalidFileExtensionError は許可されない拡張子エラーを生成する。
func NewInvalidFileExtensionError(filename string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFileExtension,
		Message:  fmt.Sprintf("このファイル形式はアップロードできません: %s", filename),
		Category: "validation",
		Action:   "許可されている形式（画像・文書・アーカイブ・音声・動画）のファイルを選択してください。",
	}
}

// NewFileNotFoundError はアップロード済みファイル未検出エラーを生成する。
func NewFileNotFoundError(filename string) *APIError {
	return &APIError{
		Code:     ErrCodeFileNotFound,
		Message:  fmt.Sprintf("指定されたファイルが見つかりません: %s", filename),
		Category: "storage",
		Action:   "ファイル名を確認してください。",
	}
}

// NewInvalidRequestError はリクエスト解析失敗エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストの解析に失敗しました: %s", reason),
		Category: "validation",
		Action:   "リクエスト形式を確認してください。",
	}
}

// NewRequestTooLargeError はリクエストボディ超過エラーを生成する。
func NewRequestTooLargeError(limit int64) *APIError {
	return &APIError{
		Code:     ErrCodeRequestTooLarge,
		Message:  fmt.Sprintf("リクエストボディが上限（%dバイト）を超えています。", limit),
		Category: "validation",
		Action:   "アップロードするファイルのサイズを小さくしてください。",
	}
}
