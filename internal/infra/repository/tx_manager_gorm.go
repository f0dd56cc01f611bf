package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	activities repo.ActivityRepository
	users      repo.UserRepository
	followings repo.FollowingRepository
}

func (r *txReposGorm) Activities() repo.ActivityRepository { return r.activities }
func (r *txReposGorm) Users() repo.UserRepository          { return r.users }
func (r *txReposGorm) Followings() repo.FollowingRepository {
	return r.followings
}

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			activities: NewActivityGormRepository(tx),
			users:      NewUserGormRepository(tx),
			followings: NewFollowingGormRepository(tx),
		}
		return fn(r)
	})
}
