package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
)

// realtimeにもHTTPにも同じ形で返す
type CommentDTO struct {
	ID          int64     `json:"id"`
	Body        string    `json:"body"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CommentUsecase struct {
	comments   repository.CommentRepository
	activities repository.ActivityRepository
	users      repository.UserRepository
}

func NewCommentUsecase(
	comments repository.CommentRepository,
	activities repository.ActivityRepository,
	users repository.UserRepository,
) *CommentUsecase {
	return &CommentUsecase{
		comments:   comments,
		activities: activities,
		users:      users,
	}
}

// Createは本文を検証して永続化してから返す。
// timestampは保存時のサーバー時刻
func (u *CommentUsecase) Create(ctx context.Context, authorID string, activityID string, body string) (*CommentDTO, error) {
	if strings.TrimSpace(body) == "" {
		return nil, FieldErrors{"body": "Comment body is required"}
	}

	if _, err := u.activities.FindByID(ctx, activityID); err != nil {
		if errors.Is(err, repository.ErrActivityNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrInternal
	}

	author, err := u.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, ErrInternal
	}
	if author == nil {
		return nil, ErrUnauthorized
	}

	comment := &model.Comment{
		Body:       body,
		ActivityID: activityID,
		AuthorID:   authorID,
		CreatedAt:  time.Now(),
	}

	if err := u.comments.Create(ctx, comment); err != nil {
		return nil, ErrInternal
	}

	dto := toCommentDTO(comment, author)
	return &dto, nil
}

// Listは古い順（新しいものが最後）で全件返す
func (u *CommentUsecase) List(ctx context.Context, activityID string) ([]CommentDTO, error) {
	comments, err := u.comments.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, ErrInternal
	}

	out := make([]CommentDTO, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentDTO(&comments[i], &comments[i].Author))
	}
	return out, nil
}

func toCommentDTO(c *model.Comment, author *model.User) CommentDTO {
	return CommentDTO{
		ID:          c.ID,
		Body:        c.Body,
		Username:    author.Username,
		DisplayName: author.DisplayName,
		Image:       author.MainPhotoURL(),
		CreatedAt:   c.CreatedAt,
	}
}
