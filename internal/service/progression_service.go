package service

import (
	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/repository"
	"manara_edu_backend/internal/util"
	"manara_edu_backend/pkg/logger"

	"go.uber.org/zap"
)

// ProgressionService is the XP/level ledger. Lesson completion, quiz passing
// and lab completion all funnel through AwardXP; nothing else mutates the
// xp/points/level triple.
type ProgressionService struct {
	UserRepo *repository.UserRepository
}

func NewProgressionService(userRepo *repository.UserRepository) *ProgressionService {
	return &ProgressionService{UserRepo: userRepo}
}

// AwardXP credits a positive amount of XP (and mirrored points) to a learner
// and rederives the level in the same statement. A missing learner is a
// no-op, not an error.
func (s *ProgressionService) AwardXP(userID uint, amount int) error {
	if amount <= 0 {
		return nil
	}
	if err := s.UserRepo.AwardXP(userID, amount); err != nil {
		return err
	}
	logger.Log.Info("xp awarded",
		zap.Uint("userId", userID),
		zap.Int("amount", amount),
	)
	return nil
}

type ProgressionSummary struct {
	XP          int `json:"xp"`
	Points      int `json:"points"`
	Level       int `json:"level"`
	NextLevelXP int `json:"nextLevelXp"`
}

func (s *ProgressionService) Summary(user *model.User) ProgressionSummary {
	level := util.LevelForXP(user.XP)
	return ProgressionSummary{
		XP:          user.XP,
		Points:      user.Points,
		Level:       level,
		NextLevelXP: level * util.XPPerLevel,
	}
}
