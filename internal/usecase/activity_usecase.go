package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"

	"github.com/google/uuid"
)

// API返却用の参加者表現
type AttendeeDTO struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Image       string `json:"image,omitempty"`
	IsHost      bool   `json:"isHost"`
}

type ActivityDTO struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Date         time.Time     `json:"date"`
	Description  string        `json:"description"`
	Category     string        `json:"category"`
	City         string        `json:"city"`
	Venue        string        `json:"venue"`
	IsCancelled  bool          `json:"isCancelled"`
	HostUsername string        `json:"hostUsername"`
	Attendees    []AttendeeDTO `json:"attendees"`
}

type ActivityInput struct {
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	City        string    `json:"city"`
	Venue       string    `json:"venue"`
}

type ActivityUsecase struct {
	activities repository.ActivityRepository
	tx         repository.TransactionManager
}

func NewActivityUsecase(activities repository.ActivityRepository, tx repository.TransactionManager) *ActivityUsecase {
	return &ActivityUsecase{activities: activities, tx: tx}
}

func (u *ActivityUsecase) List(ctx context.Context) ([]ActivityDTO, error) {
	list, err := u.activities.List(ctx)
	if err != nil {
		return nil, ErrInternal
	}

	out := make([]ActivityDTO, 0, len(list))
	for i := range list {
		out = append(out, toActivityDTO(&list[i]))
	}
	return out, nil
}

func (u *ActivityUsecase) Get(ctx context.Context, activityID string) (*ActivityDTO, error) {
	a, err := u.activities.FindByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, repository.ErrActivityNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrInternal
	}

	dto := toActivityDTO(a)
	return &dto, nil
}

// Createは作成者をhost参加者として同時に登録する
func (u *ActivityUsecase) Create(ctx context.Context, hostID string, in ActivityInput) (string, error) {
	if strings.TrimSpace(in.Title) == "" {
		return "", FieldErrors{"title": "Title is required"}
	}

	activity := &model.Activity{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Date:        in.Date,
		Description: in.Description,
		Category:    in.Category,
		City:        in.City,
		Venue:       in.Venue,
	}

	err := u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Activities().Create(ctx, activity); err != nil {
			return err
		}
		return r.Activities().AddAttendee(ctx, &model.ActivityAttendee{
			ActivityID: activity.ID,
			UserID:     hostID,
			IsHost:     true,
		})
	})
	if err != nil {
		return "", ErrInternal
	}

	return activity.ID, nil
}

// Updateはhostのみ
func (u *ActivityUsecase) Update(ctx context.Context, userID string, activityID string, in ActivityInput) error {
	a, err := u.activities.FindByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, repository.ErrActivityNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}

	if a.HostID() != userID {
		return ErrForbidden
	}

	a.Title = in.Title
	a.Date = in.Date
	a.Description = in.Description
	a.Category = in.Category
	a.City = in.City
	a.Venue = in.Venue

	if err := u.activities.Update(ctx, a); err != nil {
		return ErrInternal
	}
	return nil
}

// Deleteはhostのみ
func (u *ActivityUsecase) Delete(ctx context.Context, userID string, activityID string) error {
	a, err := u.activities.FindByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, repository.ErrActivityNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}

	if a.HostID() != userID {
		return ErrForbidden
	}

	if err := u.activities.Delete(ctx, activityID); err != nil {
		return ErrInternal
	}
	return nil
}

// UpdateAttendanceはトグル動作：
// host → 開催キャンセルのon/off、参加者 → 参加/離脱
func (u *ActivityUsecase) UpdateAttendance(ctx context.Context, userID string, activityID string) error {
	return u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		a, err := r.Activities().FindByID(ctx, activityID)
		if err != nil {
			if errors.Is(err, repository.ErrActivityNotFound) {
				return ErrNotFound
			}
			return err
		}

		if a.HostID() == userID {
			a.IsCancelled = !a.IsCancelled
			return r.Activities().Update(ctx, a)
		}

		for _, at := range a.Attendees {
			if at.UserID == userID {
				return r.Activities().RemoveAttendee(ctx, activityID, userID)
			}
		}

		return r.Activities().AddAttendee(ctx, &model.ActivityAttendee{
			ActivityID: activityID,
			UserID:     userID,
		})
	})
}

func toActivityDTO(a *model.Activity) ActivityDTO {
	dto := ActivityDTO{
		ID:          a.ID,
		Title:       a.Title,
		Date:        a.Date,
		Description: a.Description,
		Category:    a.Category,
		City:        a.City,
		Venue:       a.Venue,
		IsCancelled: a.IsCancelled,
	}

	for _, at := range a.Attendees {
		attendee := AttendeeDTO{
			Username:    at.User.Username,
			DisplayName: at.User.DisplayName,
			Image:       at.User.MainPhotoURL(),
			IsHost:      at.IsHost,
		}
		if at.IsHost {
			dto.HostUsername = at.User.Username
		}
		dto.Attendees = append(dto.Attendees, attendee)
	}

	return dto
}
