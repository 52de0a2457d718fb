// Package model はドメインモデルを定義する。
package model

import "time"

// Todo はユーザーが所有するタスクを表す。
// 添付ファイルは最大1つで、FileURL・FileType・FileNameの3フィールドは
// すべて設定されるか、すべてnilかのどちらかである（部分的な設定は不正）。
type Todo struct {
	ID        int64
	UserID    int64
	Text      string
	FileURL   *string // ストレージルートからの相対パス（保存ファイル名）
	FileType  *string // FileCategoryのいずれか
	FileName  *string // アップロード時の元ファイル名
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasAttachment は添付ファイルの有無を返す。
func (t *Todo) HasAttachment() bool {
	return t.FileURL != nil
}

// Attachment は添付ファイルのメタデータを表す。
// 保存名・カテゴリ・元ファイル名を常に一組として扱う。
type Attachment struct {
	StoredName   string
	Category     FileCategory
	OriginalName string
}

// FileCategory は添付ファイルの拡張子ベースの分類を表す。
type FileCategory string

const (
	// FileCategoryImage は画像ファイルを表す。
	FileCategoryImage FileCategory = "image"
	// FileCategoryDocument は文書ファイルを表す。
	FileCategoryDocument FileCategory = "document"
	// FileCategoryArchive はアーカイブファイルを表す。
	FileCategoryArchive FileCategory = "archive"
	// FileCategoryAudio は音声ファイルを表す。
	FileCategoryAudio FileCategory = "audio"
	// FileCategoryVideo は動画ファイルを表す。
	FileCategoryVideo FileCategory = "video"
	// FileCategoryOther は上記いずれにも該当しないファイルを表す。
	FileCategoryOther FileCategory = "other"
)
