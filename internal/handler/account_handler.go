// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/TayyabSohail/cloud-task-backend/internal/model"
)

// AccountServiceInterface はアカウントハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	// Signup は新規ユーザーを登録する。メール重複時はConflictエラーを返す。
	Signup(ctx context.Context, name, company, email, password string) error
	// Login はメールアドレスとパスワードでユーザーを認証する。
	Login(ctx context.Context, email, password string) (*model.User, error)
}

// AccountHandler はサインアップ・ログインのHTTPハンドラー。
type AccountHandler struct {
	service AccountServiceInterface
}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler(service AccountServiceInterface) *AccountHandler {
	return &AccountHandler{
		service: service,
	}
}

// signupRequest はサインアップリクエストのボディ。
// 会社名はcompany_nameとcompanyの両方のキーを受け付ける。
type signupRequest struct {
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Company     string `json:"company"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// company は会社名を返す。company_nameを優先する。
func (r *signupRequest) company() string {
	if r.CompanyName != "" {
		return r.CompanyName
	}
	return r.Company
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse はログイン成功時のユーザー情報レスポンス。
// 資格情報（パスワードハッシュ）は含めない。
type userResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
}

// loginResponse はログイン成功レスポンス。
type loginResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

// Signup は新規ユーザー登録を処理する。
// POST /signup
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBodyError(w, err)
		return
	}

	if err := h.service.Signup(r.Context(), req.Name, req.company(), req.Email, req.Password); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{
		Message: "ユーザー登録が完了しました。",
	})
}

// Login はログインを処理する。
// POST /login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBodyError(w, err)
		return
	}

	user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "ログインに成功しました。",
		User: userResponse{
			ID:          user.ID,
			Name:        user.Name,
			CompanyName: user.CompanyName,
			Email:       user.Email,
		},
	})
}
