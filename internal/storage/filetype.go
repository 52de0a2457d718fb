// Package storage はアップロードファイルのローカルディスク保存を提供する。
package storage

import (
	"strings"

	"github.com/TayyabSohail/cloud-task-backend/internal/model"
)

// categoryByExtension は許可される拡張子とそのカテゴリの対応表。
// ここに存在しない拡張子のファイルはアップロードを拒否する。
var categoryByExtension = map[string]model.FileCategory{
	// image
	"png":  model.FileCategoryImage,
	"jpg":  model.FileCategoryImage,
	"jpeg": model.FileCategoryImage,
	"gif":  model.FileCategoryImage,
	"svg":  model.FileCategoryImage,
	"webp": model.FileCategoryImage,
	// document
	"pdf":  model.FileCategoryDocument,
	"doc":  model.FileCategoryDocument,
	"docx": model.FileCategoryDocument,
	"xls":  model.FileCategoryDocument,
	"xlsx": model.FileCategoryDocument,
	"ppt":  model.FileCategoryDocument,
	"pptx": model.FileCategoryDocument,
	"txt":  model.FileCategoryDocument,
	"rtf":  model.FileCategoryDocument,
	// archive
	"zip": model.FileCategoryArchive,
	"rar": model.FileCategoryArchive,
	"7z":  model.FileCategoryArchive,
	// audio
	"mp3": model.FileCategoryAudio,
	"wav": model.FileCategoryAudio,
	"ogg": model.FileCategoryAudio,
	// video
	"mp4": model.FileCategoryVideo,
	"avi": model.FileCategoryVideo,
	"mov": model.FileCategoryVideo,
	"wmv": model.FileCategoryVideo,
}

// extensionOf はファイル名から最後の「.」以降の拡張子を小文字で返す。
// 「.」を含まないファイル名の場合は空文字列を返す。
func extensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// IsAllowedFilename はファイル名の拡張子が許可セットに含まれるかを返す。
// 拡張子の大文字小文字は区別しない。
func IsAllowedFilename(filename string) bool {
	ext := extensionOf(filename)
	if ext == "" {
		return false
	}
	_, ok := categoryByExtension[ext]
	return ok
}

// ClassifyFilename はファイル名の拡張子からカテゴリを判定する。
// 許可セットに含まれない拡張子はFileCategoryOtherとして扱う。
func ClassifyFilename(filename string) model.FileCategory {
	if category, ok := categoryByExtension[extensionOf(filename)]; ok {
		return category
	}
	return model.FileCategoryOther
}
