package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/TayyabSohail/cloud-task-backend/internal/model"
)

// PostgresTodoRepo はPostgreSQLを使用したTodoリポジトリ。
type PostgresTodoRepo struct {
	db *sql.DB
}

// NewPostgresTodoRepo はPostgresTodoRepoを生成する。
func NewPostgresTodoRepo(db *sql.DB) *PostgresTodoRepo {
	return &PostgresTodoRepo{db: db}
}

// FindByID は指定IDのTodoを取得する。見つからない場合はnilを返す。
func (r *PostgresTodoRepo) FindByID(ctx context.Context, id int64) (*model.Todo, error) {
	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, text, file_url, file_type, file_name, created_at, updated_at
		 FROM todos WHERE id = $1`,
		id,
	).Scan(&todo.ID, &todo.UserID, &todo.Text, &todo.FileURL, &todo.FileType, &todo.FileName, &todo.CreatedAt, &todo.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find todo by ID: %w", err)
	}

	return todo, nil
}

// ListByUserID は指定ユーザーのTodo一覧を挿入順（ID昇順）で返す。
func (r *PostgresTodoRepo) ListByUserID(ctx context.Context, userID int64) ([]*model.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, text, file_url, file_type, file_name, created_at, updated_at
		 FROM todos WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []*model.Todo{}
	for rows.Next() {
		todo := &model.Todo{}
		if err := rows.Scan(&todo.ID, &todo.UserID, &todo.Text, &todo.FileURL, &todo.FileType, &todo.FileName, &todo.CreatedAt, &todo.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan todo row: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todo rows: %w", err)
	}

	return todos, nil
}

// Create はTodoを作成し、採番されたIDをtodo.IDに設定する。
// 添付メタデータの3フィールドはすべてnilか、すべて非nilで渡されること
// （todosテーブルのCHECK制約でも保証される）。
func (r *PostgresTodoRepo) Create(ctx context.Context, todo *model.Todo) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO todos (user_id, text, file_url, file_type, file_name)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		todo.UserID, todo.Text, todo.FileURL, todo.FileType, todo.FileName,
	).Scan(&todo.ID, &todo.CreatedAt, &todo.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert todo: %w", err)
	}

	return nil
}

// UpdateText は指定IDのTodoのテキストのみを更新する。添付フィールドは変更しない。
func (r *PostgresTodoRepo) UpdateText(ctx context.Context, id int64, text string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE todos SET text = $1, updated_at = now() WHERE id = $2`,
		text, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update todo text: %w", err)
	}
	return nil
}

// UpdateTextAndAttachment はテキストと添付メタデータを1回のUPDATEで置き換える。
func (r *PostgresTodoRepo) UpdateTextAndAttachment(ctx context.Context, id int64, text string, att *model.Attachment) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE todos
		 SET text = $1, file_url = $2, file_type = $3, file_name = $4, updated_at = now()
		 WHERE id = $5`,
		text, att.StoredName, string(att.Category), att.OriginalName, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update todo attachment: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのTodoを削除する。削除された場合はtrueを返す。
func (r *PostgresTodoRepo) DeleteByID(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete todo: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ TodoRepository = (*PostgresTodoRepo)(nil)
