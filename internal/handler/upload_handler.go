package handler

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/TayyabSohail/cloud-task-backend/internal/model"
)

// FileOpener はアップロード済みファイルの読み取りに必要なインターフェース。
// storage.LocalStoreの部分集合として定義する。
type FileOpener interface {
	Open(storedName string) (*os.File, error)
}

// UploadHandler は保存済みファイル配信のHTTPハンドラー。
// アクセス制御は行わない（保存名のUUIDが事実上の参照キー）。
type UploadHandler struct {
	files FileOpener
}

// NewUploadHandler はUploadHandlerを生成する。
func NewUploadHandler(files FileOpener) *UploadHandler {
	return &UploadHandler{
		files: files,
	}
}

// ServeFile は保存済みファイルをストリーム配信する。
// GET /uploads/:filename
func (h *UploadHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	f, err := h.files.Open(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeAPIErrorResponse(w, http.StatusNotFound, model.NewFileNotFoundError(filename))
			return
		}
		handleServiceError(w, err)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// Content-Typeの推定とRangeリクエスト対応はServeContentに任せる
	http.ServeContent(w, r, filename, stat.ModTime(), f)
}
