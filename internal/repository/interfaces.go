// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/TayyabSohail/cloud-task-backend/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDをuser.IDに設定する。
	// emailのユニーク制約違反の場合は*model.APIError（Conflict）を返す。
	Create(ctx context.Context, user *model.User) error
}

// TodoRepository はTodoデータの永続化インターフェース。
type TodoRepository interface {
	// FindByID は指定IDのTodoを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Todo, error)

	// ListByUserID は指定ユーザーのTodo一覧を挿入順で返す。
	ListByUserID(ctx context.Context, userID int64) ([]*model.Todo, error)

	// Create はTodoを作成し、採番されたIDをtodo.IDに設定する。
	// 添付フィールドはtodo.FileURL等がnilでなければ3つ一組で保存される。
	Create(ctx context.Context, todo *model.Todo) error

	// UpdateText は指定IDのTodoのテキストのみを更新する。添付フィールドは変更しない。
	// 該当行が存在しない場合もエラーにはしない。
	UpdateText(ctx context.Context, id int64, text string) error

	// UpdateTextAndAttachment はテキストと添付メタデータ3フィールドを
	// 1回のUPDATEで置き換える（添付の部分更新を許さないため）。
	UpdateTextAndAttachment(ctx context.Context, id int64, text string, att *model.Attachment) error

	// DeleteByID は指定IDのTodoを削除する。
	// 削除された場合はtrueを返す。該当行がない場合は(false, nil)を返す。
	DeleteByID(ctx context.Context, id int64) (bool, error)
}
