package service

import (
	"context"
	"encoding/json"
	"time"

	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/repository"
	"manara_edu_backend/internal/util"
	"manara_edu_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const leaderboardCacheKey = "leaderboard:points"
const leaderboardCacheTTL = time.Minute

type UserService struct {
	UserRepo    *repository.UserRepository
	Progression *ProgressionService
	Redis       *redis.Client
}

func NewUserService(userRepo *repository.UserRepository, progression *ProgressionService, rdb *redis.Client) *UserService {
	return &UserService{
		UserRepo:    userRepo,
		Progression: progression,
		Redis:       rdb,
	}
}

type Profile struct {
	User        *model.User        `json:"user"`
	Progression ProgressionSummary `json:"progression"`
}

func (s *UserService) GetProfile(userID uint) (*Profile, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	return &Profile{
		User:        user,
		Progression: s.Progression.Summary(user),
	}, nil
}

type ProfileUpdateRequest struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Avatar   string `json:"avatar"`
}

func (s *UserService) UpdateProfile(userID uint, req ProfileUpdateRequest) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Language != "" {
		user.Language = req.Language
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

type LeaderboardEntry struct {
	UserID uint   `json:"userId"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Points int    `json:"points"`
	Level  int    `json:"level"`
}

// Leaderboard ranks learners by points. Results are cached for a minute;
// slightly stale rankings are fine.
func (s *UserService) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	ctx := context.Background()

	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, leaderboardCacheKey).Result(); err == nil {
			var cached []LeaderboardEntry
			if err := json.Unmarshal([]byte(val), &cached); err == nil && len(cached) >= limit {
				return cached[:limit], nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("leaderboard cache read failed", zap.Error(err))
		}
	}

	users, err := s.UserRepo.FindTopByPoints(limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, user := range users {
		entries = append(entries, LeaderboardEntry{
			UserID: user.ID,
			Name:   user.Name,
			Avatar: user.Avatar,
			Points: user.Points,
			Level:  user.Level,
		})
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(entries); err == nil {
			s.Redis.Set(ctx, leaderboardCacheKey, raw, leaderboardCacheTTL)
		}
	}

	return entries, nil
}

func (s *UserService) List(page, limit int) ([]model.User, int64, error) {
	return s.UserRepo.List(page, limit)
}

func (s *UserService) Get(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	return user, nil
}

type AdminUserUpdateRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Role     *model.UserRole `json:"role"`
	Language string          `json:"language"`
	Disabled *bool           `json:"disabled"`
}

func (s *UserService) AdminUpdate(userID uint, req AdminUserUpdateRequest) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Language != "" {
		user.Language = req.Language
	}
	if req.Disabled != nil {
		user.Disabled = *req.Disabled
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ResetPassword(userID uint, newPassword string) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return util.ErrUserNotFound
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)

	return s.UserRepo.Update(user)
}

func (s *UserService) SetDisabled(userID uint, disabled bool) error {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		return util.ErrUserNotFound
	}
	return s.UserRepo.SetDisabled(userID, disabled)
}
