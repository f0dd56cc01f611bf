package usecase

import (
	"context"
	"strings"

	"app/internal/domain/model"
	"app/internal/repository"
)

type ProfileDTO struct {
	Username       string `json:"username"`
	DisplayName    string `json:"displayName"`
	Bio            string `json:"bio,omitempty"`
	Image          string `json:"image,omitempty"`
	FollowersCount int64  `json:"followersCount"`
	FollowingCount int64  `json:"followingCount"`
	// 閲覧者がこのプロフィールをフォローしているか
	Following bool `json:"following"`
}

type ProfileUsecase struct {
	users      repository.UserRepository
	followings repository.FollowingRepository
}

func NewProfileUsecase(users repository.UserRepository, followings repository.FollowingRepository) *ProfileUsecase {
	return &ProfileUsecase{users: users, followings: followings}
}

// Getはusernameでプロフィールを返す（viewerIDは空でも可）
func (u *ProfileUsecase) Get(ctx context.Context, viewerID string, username string) (*ProfileDTO, error) {
	user, err := u.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, ErrInternal
	}
	if user == nil {
		return nil, ErrNotFound
	}

	return u.toProfileDTO(ctx, viewerID, user)
}

// UpdateProfileは本人のdisplayName/bioを更新する
func (u *ProfileUsecase) UpdateProfile(ctx context.Context, userID string, displayName string, bio string) error {
	if strings.TrimSpace(displayName) == "" {
		return FieldErrors{"displayName": "Display name is required"}
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return ErrInternal
	}
	if user == nil {
		return ErrUnauthorized
	}

	user.DisplayName = displayName
	user.Bio = bio

	if err := u.users.Update(ctx, user); err != nil {
		return ErrInternal
	}
	return nil
}

// FollowToggleはフォロー状態を反転する
func (u *ProfileUsecase) FollowToggle(ctx context.Context, observerID string, targetUsername string) error {
	target, err := u.users.FindByUsername(ctx, targetUsername)
	if err != nil {
		return ErrInternal
	}
	if target == nil {
		return ErrNotFound
	}
	if target.ID == observerID {
		return FieldErrors{"username": "You cannot follow yourself"}
	}

	exists, err := u.followings.Exists(ctx, observerID, target.ID)
	if err != nil {
		return ErrInternal
	}

	if exists {
		if err := u.followings.Delete(ctx, observerID, target.ID); err != nil {
			return ErrInternal
		}
		return nil
	}

	if err := u.followings.Create(ctx, &model.UserFollowing{
		ObserverID: observerID,
		TargetID:   target.ID,
	}); err != nil {
		return ErrInternal
	}
	return nil
}

// ListFollowingsはpredicate（followers / following）で一覧を返す
func (u *ProfileUsecase) ListFollowings(ctx context.Context, viewerID string, username string, predicate string) ([]ProfileDTO, error) {
	user, err := u.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, ErrInternal
	}
	if user == nil {
		return nil, ErrNotFound
	}

	var list []model.User
	switch predicate {
	case "followers":
		list, err = u.followings.ListFollowers(ctx, user.ID)
	case "following":
		list, err = u.followings.ListFollowings(ctx, user.ID)
	default:
		return nil, FieldErrors{"predicate": "Predicate must be followers or following"}
	}
	if err != nil {
		return nil, ErrInternal
	}

	out := make([]ProfileDTO, 0, len(list))
	for i := range list {
		dto, err := u.toProfileDTO(ctx, viewerID, &list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *dto)
	}
	return out, nil
}

func (u *ProfileUsecase) toProfileDTO(ctx context.Context, viewerID string, user *model.User) (*ProfileDTO, error) {
	followers, err := u.followings.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, ErrInternal
	}
	following, err := u.followings.CountFollowings(ctx, user.ID)
	if err != nil {
		return nil, ErrInternal
	}

	dto := &ProfileDTO{
		Username:       user.Username,
		DisplayName:    user.DisplayName,
		Bio:            user.Bio,
		Image:          user.MainPhotoURL(),
		FollowersCount: followers,
		FollowingCount: following,
	}

	if viewerID != "" && viewerID != user.ID {
		isFollowing, err := u.followings.Exists(ctx, viewerID, user.ID)
		if err != nil {
			return nil, ErrInternal
		}
		dto.Following = isFollowing
	}

	return dto, nil
}
