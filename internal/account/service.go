// Package account はサインアップとログインのドメインロジックを提供する。
package account

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/TayyabSohail/cloud-task-backend/internal/model"
	"github.com/TayyabSohail/cloud-task-backend/internal/repository"
)

// Service はアカウント管理のサービス層。
type Service struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

// NewService はServiceの新しいインスタンスを生成する。
// bcryptCostが範囲外の場合はbcrypt.DefaultCostを使用する。
func NewService(userRepo repository.UserRepository, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
	}
}

// Signup は新規ユーザーを登録する。
// 同一メールアドレスのユーザーが既に存在する場合はConflictエラーを返す。
// パスワードはbcryptでハッシュ化して保存し、平文は保持しない。
// パスワード強度やメールアドレス形式の検証は行わない。
func (s *Service) Signup(ctx context.Context, name, company, email, password string) error {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if existing != nil {
		return model.NewEmailAlreadyRegisteredError(email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	user := &model.User{
		Name:         name,
		CompanyName:  company,
		Email:        email,
		PasswordHash: string(hash),
	}

	// 事前チェックとINSERTの間の競合はDBのユニーク制約が弾き、
	// リポジトリが同じConflictエラーとして返す。
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
	)

	return nil
}

// Login はメールアドレスとパスワードでユーザーを認証する。
// メールアドレス不在とパスワード不一致はどちらも同じUnauthorizedエラーを返す。
// 返却するUserにはPasswordHashが含まれるが、ハンドラー層でレスポンスから除外する。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	slog.Info("user logged in",
		slog.Int64("user_id", user.ID),
	)

	return user, nil
}
