// Package todo はTodoのCRUDと添付ファイル管理のドメインロジックを提供する。
package todo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/TayyabSohail/cloud-task-backend/internal/model"
	"github.com/TayyabSohail/cloud-task-backend/internal/repository"
	"github.com/TayyabSohail/cloud-task-backend/internal/storage"
)

// FileStore はTodoサービスが必要とするファイルストアのインターフェース。
// storage.LocalStoreの部分集合として定義する。
type FileStore interface {
	// Save はアップロード内容を保存し、保存名を返す。
	Save(content io.Reader, originalName string) (string, error)
	// Delete は保存ファイルをベストエフォートで削除する。エラーは返さない。
	Delete(storedName string)
}

// Upload はハンドラーから渡される未保存のアップロードファイルを表す。
type Upload struct {
	Content  io.Reader
	Filename string
}

// Service はTodo管理のサービス層。
// 添付ファイルの保存・置換・削除はトランザクションで保護されないベストエフォートの
// 逐次処理であり、途中で失敗した場合は孤児ファイルが残ることを許容する。
type Service struct {
	todoRepo repository.TodoRepository
	store    FileStore
	baseURL  string
}

// NewService はServiceの新しいインスタンスを生成する。
// baseURLは添付ファイルの公開URL組み立てに使用する（例: "http://localhost:8080"）。
func NewService(todoRepo repository.TodoRepository, store FileStore, baseURL string) *Service {
	return &Service{
		todoRepo: todoRepo,
		store:    store,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

// fileURL は保存名から外部参照可能な絶対URLを組み立てる。
func (s *Service) fileURL(storedName string) string {
	return s.baseURL + "/uploads/" + storedName
}

// ListTodos は指定ユーザーのTodo一覧を返す。
// 添付ファイルを持つTodoのFileURLは、保存名からベースURLを前置した絶対URLに変換する。
func (s *Service) ListTodos(ctx context.Context, userID int64) ([]*model.Todo, error) {
	todos, err := s.todoRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Todo一覧の取得に失敗しました: %w", err)
	}

	for _, t := range todos {
		if t.FileURL != nil {
			url := s.fileURL(*t.FileURL)
			t.FileURL = &url
		}
	}

	return todos, nil
}

// AddTodo は新規Todoを作成する。
// ファイルが添付されている場合は、拡張子を検証してから保存し、
// 保存名・カテゴリ・元ファイル名を行と一緒に永続化する。
// 拡張子が許可されない場合はBadRequestエラーを返し、ファイルも行も作成しない。
// 返却するTodoのFileURLは絶対URLに変換済み。
func (s *Service) AddTodo(ctx context.Context, userID int64, text string, upload *Upload) (*model.Todo, error) {
	todo := &model.Todo{
		UserID: userID,
		Text:   text,
	}

	if upload != nil {
		att, err := s.saveUpload(upload)
		if err != nil {
			return nil, err
		}

		fileType := string(att.Category)
		todo.FileURL = &att.StoredName
		todo.FileType = &fileType
		todo.FileName = &att.OriginalName
	}

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		// 行の作成に失敗した場合、保存済みファイルを孤児にしない
		if todo.FileURL != nil {
			s.store.Delete(*todo.FileURL)
		}
		return nil, fmt.Errorf("Todoの作成に失敗しました: %w", err)
	}

	if todo.FileURL != nil {
		url := s.fileURL(*todo.FileURL)
		todo.FileURL = &url
	}

	slog.Info("todo added",
		slog.Int64("todo_id", todo.ID),
		slog.Int64("user_id", userID),
		slog.Bool("has_attachment", todo.HasAttachment()),
	)

	return todo, nil
}

// UpdateTodo は指定IDのTodoを更新する。テキストは常に更新される。
// 新しいファイルが添付されている場合は、拡張子検証→新ファイル保存→行更新→
// 旧ファイル削除（ベストエフォート）の順で処理する。
// ファイルが無い場合は既存の添付フィールドに触れない。
// 存在しないIDに対する更新は0行更新としてそのまま成功する。
func (s *Service) UpdateTodo(ctx context.Context, todoID int64, text string, upload *Upload) error {
	if upload == nil {
		if err := s.todoRepo.UpdateText(ctx, todoID, text); err != nil {
			return fmt.Errorf("Todoの更新に失敗しました: %w", err)
		}
		return nil
	}

	// 置換前の添付ファイルを控えておく（行更新後に削除するため）
	existing, err := s.todoRepo.FindByID(ctx, todoID)
	if err != nil {
		return fmt.Errorf("Todoの取得に失敗しました: %w", err)
	}

	att, err := s.saveUpload(upload)
	if err != nil {
		return err
	}

	if err := s.todoRepo.UpdateTextAndAttachment(ctx, todoID, text, att); err != nil {
		s.store.Delete(att.StoredName)
		return fmt.Errorf("Todoの更新に失敗しました: %w", err)
	}

	// 旧ファイルの削除はベストエフォート。失敗しても更新自体は成功扱い。
	if existing != nil && existing.FileURL != nil {
		s.store.Delete(*existing.FileURL)
	}

	slog.Info("todo updated",
		slog.Int64("todo_id", todoID),
		slog.Bool("attachment_replaced", true),
	)

	return nil
}

// DeleteTodo は指定IDのTodoを削除する。
// 添付ファイルがあれば行の削除後にベストエフォートで削除する。
// 存在しないIDに対する削除も成功として扱う（冪等）。
func (s *Service) DeleteTodo(ctx context.Context, todoID int64) error {
	existing, err := s.todoRepo.FindByID(ctx, todoID)
	if err != nil {
		return fmt.Errorf("Todoの取得に失敗しました: %w", err)
	}

	deleted, err := s.todoRepo.DeleteByID(ctx, todoID)
	if err != nil {
		return fmt.Errorf("Todoの削除に失敗しました: %w", err)
	}

	if existing != nil && existing.FileURL != nil {
		s.store.Delete(*existing.FileURL)
	}

	if !deleted {
		slog.Debug("delete of nonexistent todo treated as success",
			slog.Int64("todo_id", todoID),
		)
	} else {
		slog.Info("todo deleted",
			slog.Int64("todo_id", todoID),
		)
	}

	return nil
}

// saveUpload は拡張子を検証してからファイルを保存し、添付メタデータを返す。
// 検証は保存より先に行うため、拒否されたファイルがディスクに書かれることはない。
func (s *Service) saveUpload(upload *Upload) (*model.Attachment, error) {
	if !storage.IsAllowedFilename(upload.Filename) {
		return nil, model.NewInvalidFileExtensionError(upload.Filename)
	}

	storedName, err := s.store.Save(upload.Content, upload.Filename)
	if err != nil {
		return nil, fmt.Errorf("ファイルの保存に失敗しました: %w", err)
	}

	return &model.Attachment{
		StoredName:   storedName,
		Category:     storage.ClassifyFilename(upload.Filename),
		OriginalName: upload.Filename,
	}, nil
}
