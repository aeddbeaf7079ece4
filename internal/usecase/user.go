package usecase

import (
	"context"
	"errors"

	"github.com/xavierca1/leadflow/internal/entity"
)

type UserUseCase struct {
	Users entity.UserRepositoryInterface
}

func NewUserUseCase(users entity.UserRepositoryInterface) *UserUseCase {
	return &UserUseCase{Users: users}
}

func (uc *UserUseCase) List(ctx context.Context) ([]*entity.User, error) {
	users, err := uc.Users.List(ctx)
	if err != nil {
		return nil, technical("failed to list users", err)
	}
	return users, nil
}

func (uc *UserUseCase) Get(ctx context.Context, id string) (*entity.User, error) {
	u, err := uc.Users.FindByID(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, technical("failed to load user", err)
	}
	return u, nil
}
