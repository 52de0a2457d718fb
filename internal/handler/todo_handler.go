package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/TayyabSohail/cloud-task-backend/internal/model"
	"github.com/TayyabSohail/cloud-task-backend/internal/todo"
)

// multipartMemoryLimit はマルチパート解析時にメモリへ保持する最大バイト数。
// これを超えた分は一時ファイルに書かれる。
const multipartMemoryLimit = 32 << 20

// TodoServiceInterface はTodoハンドラーが必要とするサービスインターフェース。
type TodoServiceInterface interface {
	// ListTodos は指定ユーザーのTodo一覧を返す。FileURLは絶対URLに変換済み。
	ListTodos(ctx context.Context, userID int64) ([]*model.Todo, error)
	// AddTodo は新規Todoを作成する。uploadはnilを許容する。
	AddTodo(ctx context.Context, userID int64, text string, upload *todo.Upload) (*model.Todo, error)
	// UpdateTodo は指定IDのTodoを更新する。uploadはnilを許容する。
	UpdateTodo(ctx context.Context, todoID int64, text string, upload *todo.Upload) error
	// DeleteTodo は指定IDのTodoと添付ファイルを削除する。
	DeleteTodo(ctx context.Context, todoID int64) error
}

// TodoHandler はTodo管理のHTTPハンドラー。
type TodoHandler struct {
	service TodoServiceInterface
}

// NewTodoHandler はTodoHandlerを生成する。
func NewTodoHandler(service TodoServiceInterface) *TodoHandler {
	return &TodoHandler{
		service: service,
	}
}

// --- リクエスト/レスポンス型 ---

// addTodoRequest はJSONボディでのTodo追加リクエスト。
type addTodoRequest struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

// updateTodoRequest はJSONボディでのTodo更新リクエスト。
type updateTodoRequest struct {
	Text string `json:"text"`
}

// todoResponse はTodo一覧のレスポンス要素。
// 添付がない場合はfile_url・file_type・file_nameを省略する。
type todoResponse struct {
	ID       int64   `json:"id"`
	UserID   int64   `json:"user_id"`
	Text     string  `json:"text"`
	FileURL  *string `json:"file_url,omitempty"`
	FileType *string `json:"file_type,omitempty"`
	FileName *string `json:"file_name,omitempty"`
}

// addTodoResponse はTodo追加成功レスポンス。
type addTodoResponse struct {
	Message  string  `json:"message"`
	ID       int64   `json:"id"`
	FileURL  *string `json:"file_url,omitempty"`
	FileType *string `json:"file_type,omitempty"`
	FileName *string `json:"file_name,omitempty"`
}

// messageResponse はメッセージのみの成功レスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

func toTodoResponse(t *model.Todo) todoResponse {
	return todoResponse{
		ID:       t.ID,
		UserID:   t.UserID,
		Text:     t.Text,
		FileURL:  t.FileURL,
		FileType: t.FileType,
		FileName: t.FileName,
	}
}

// --- ハンドラー ---

// ListTodos は指定ユーザーのTodo一覧を取得する。
// GET /todos/:id
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("ユーザーIDが数値ではありません"))
		return
	}

	todos, err := h.service.ListTodos(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]todoResponse, len(todos))
	for i, t := range todos {
		results[i] = toTodoResponse(t)
	}

	writeJSON(w, http.StatusOK, results)
}

// AddTodo は新規Todoを作成する。
// JSONボディ（添付なし）とマルチパートフォーム（添付あり）の両方を受け付ける。
// POST /todos
func (h *TodoHandler) AddTodo(w http.ResponseWriter, r *http.Request) {
	var (
		userID int64
		text   string
		upload *todo.Upload
	)

	if isMultipart(r) {
		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			writeBodyError(w, err)
			return
		}

		var err error
		userID, err = strconv.ParseInt(r.FormValue("user_id"), 10, 64)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("user_idが数値ではありません"))
			return
		}
		text = r.FormValue("text")

		file, header, err := r.FormFile("file")
		switch {
		case err == nil:
			defer file.Close()
			upload = &todo.Upload{Content: file, Filename: header.Filename}
		case errors.Is(err, http.ErrMissingFile):
			// ファイルなしのマルチパートも許容する
		default:
			writeBodyError(w, err)
			return
		}
	} else {
		var req addTodoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBodyError(w, err)
			return
		}
		userID = req.UserID
		text = req.Text
	}

	created, err := h.service.AddTodo(r.Context(), userID, text, upload)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, addTodoResponse{
		Message:  "Todoを追加しました。",
		ID:       created.ID,
		FileURL:  created.FileURL,
		FileType: created.FileType,
		FileName: created.FileName,
	})
}

// UpdateTodo は指定IDのTodoを更新する。
// JSONボディ（テキストのみ）とマルチパートフォーム（テキスト+添付）の両方を受け付ける。
// PUT /todos/:id
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	todoID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("Todo IDが数値ではありません"))
		return
	}

	var (
		text   string
		upload *todo.Upload
	)

	if isMultipart(r) {
		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			writeBodyError(w, err)
			return
		}
		text = r.FormValue("text")

		file, header, err := r.FormFile("file")
		switch {
		case err == nil:
			defer file.Close()
			upload = &todo.Upload{Content: file, Filename: header.Filename}
		case errors.Is(err, http.ErrMissingFile):
			// テキストのみの更新
		default:
			writeBodyError(w, err)
			return
		}
	} else {
		var req updateTodoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBodyError(w, err)
			return
		}
		text = req.Text
	}

	if err := h.service.UpdateTodo(r.Context(), todoID, text, upload); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: "Todoを更新しました。",
	})
}

// DeleteTodo は指定IDのTodoを削除する。
// 存在しないIDでも成功レスポンスを返す（冪等）。
// DELETE /todos/:id
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	todoID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("Todo IDが数値ではありません"))
		return
	}

	if err := h.service.DeleteTodo(r.Context(), todoID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: "Todoを削除しました。",
	})
}

// isMultipart はContent-Typeがmultipart/form-dataかどうかを返す。
func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "multipart/form-data"
}

// --- 共通ヘルパー ---

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeBodyError はリクエストボディの解析エラーをレスポンスに変換する。
// ボディ上限超過（http.MaxBytesError）は413、それ以外は400として扱う。
func writeBodyError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeAPIErrorResponse(w, http.StatusRequestEntityTooLarge, model.NewRequestTooLargeError(maxBytesErr.Limit))
		return
	}
	writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError(err.Error()))
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラー（ストア障害等）は内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeEmailAlreadyRegistered:
		return http.StatusConflict
	case model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeInvalidFileExtension, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeFileNotFound:
		return http.StatusNotFound
	case model.ErrCodeRequestTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
