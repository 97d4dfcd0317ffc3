package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lksmaxx/enroll-api/internal/domain/enrollment"
)

type EnrollmentStatusDTO struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	AgeGroupID string `json:"age_group_id,omitempty"`
}

type GetEnrollment struct {
	redisClient *redis.Client
	store       enrollment.Store
}

func NewGetEnrollment(redisClient *redis.Client, store enrollment.Store) *GetEnrollment {
	return &GetEnrollment{
		redisClient: redisClient,
		store:       store,
	}
}

func (uc *GetEnrollment) Execute(ctx context.Context, id string) (*EnrollmentStatusDTO, error) {
	cacheKey := fmt.Sprintf("enrollment:%s", id)

	if uc.redisClient != nil {
		val, err := uc.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var dto EnrollmentStatusDTO
			if err := json.Unmarshal([]byte(val), &dto); err == nil {
				return &dto, nil
			}
		}
	}

	e, err := uc.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := &EnrollmentStatusDTO{
		ID:         e.ID,
		Status:     string(e.Status),
		Message:    e.Message,
		AgeGroupID: e.AgeGroupID,
	}

	if uc.redisClient != nil {
		data, _ := json.Marshal(dto)
		// short TTL so status flips become visible quickly
		uc.redisClient.Set(ctx, cacheKey, data, 1*time.Second)
	}

	return dto, nil
}
