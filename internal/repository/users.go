package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"bulkbuddy-workers/internal/common/database"
	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

type UserRepository struct {
	db    *sql.DB
	redis *redis.Client
	ttl   time.Duration
}

func NewUserRepository(db *sql.DB, rdb *redis.Client, ttl time.Duration) *UserRepository {
	return &UserRepository{db: db, redis: rdb, ttl: ttl}
}

// GetByID returns the user row, served from cache when present.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	key := database.ProfileCacheKey(userID)

	var cached models.User
	if database.GetJSON(ctx, r.redis, key, &cached) {
		return &cached, nil
	}

	user, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	// cache failures only cost a reload
	_ = database.SetJSON(ctx, r.redis, key, user, r.ttl)
	return user, nil
}

func (r *UserRepository) load(ctx context.Context, userID string) (*models.User, error) {
	var (
		u             models.User
		phone, sex    sql.NullString
		activityLevel sql.NullString
		age           sql.NullInt64
		weight        sql.NullFloat64
		height        sql.NullFloat64
		bodyFat       sql.NullFloat64
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, phone, age, weight_kg, height_cm, sex, body_fat_percent, activity_level
		FROM users
		WHERE id = $1`, userID).Scan(
		&u.ID, &u.Email, &phone,
		&age, &weight, &height,
		&sex, &bodyFat, &activityLevel,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewProfileNotFoundError(userID)
	}
	if err != nil {
		return nil, queryError(ctx, string(models.QueryTypeUserProfile), err)
	}

	u.Phone = phone.String
	u.Sex = sex.String
	u.ActivityLevel = activityLevel.String
	if age.Valid {
		v := int(age.Int64)
		u.Age = &v
	}
	u.WeightKg = floatPtr(weight)
	u.HeightCm = floatPtr(height)
	u.BodyFatPercent = floatPtr(bodyFat)
	return &u, nil
}

// Invalidate drops the cached profile after an update elsewhere.
func (r *UserRepository) Invalidate(ctx context.Context, userID string) error {
	if r.redis == nil {
		return nil
	}
	return r.redis.Del(ctx, database.ProfileCacheKey(userID)).Err()
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
