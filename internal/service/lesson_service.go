package service

import (
	"time"

	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/repository"
	"manara_edu_backend/internal/util"
	"manara_edu_backend/pkg/logger"
	"manara_edu_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type LessonService struct {
	LessonRepo  *repository.LessonRepository
	Enrollment  *EnrollmentService
	Progression *ProgressionService
}

func NewLessonService(lessonRepo *repository.LessonRepository, enrollment *EnrollmentService,
	progression *ProgressionService) *LessonService {
	return &LessonService{
		LessonRepo:  lessonRepo,
		Enrollment:  enrollment,
		Progression: progression,
	}
}

type CompletionResult struct {
	LessonID       uint `json:"lessonId"`
	FirstCompleted bool `json:"firstCompleted"`
	XPAwarded      int  `json:"xpAwarded"`
}

// CompleteLesson marks a lesson done for the learner. The unique progress row
// makes the call idempotent: XP is awarded on the first completion only.
// Course progress on the enrollment is recomputed afterwards, best effort.
func (s *LessonService) CompleteLesson(userID, lessonID uint) (*CompletionResult, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil || !lesson.IsPublished {
		return nil, util.ErrLessonNotFound
	}

	approved, err := s.Enrollment.IsApproved(userID, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, util.ErrEnrollmentRequired
	}

	created, err := s.LessonRepo.CreateProgress(&model.LessonProgress{
		UserID:      userID,
		LessonID:    lessonID,
		CompletedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	result := &CompletionResult{LessonID: lessonID, FirstCompleted: created}
	if created && lesson.XPReward > 0 {
		if err := s.Progression.AwardXP(userID, lesson.XPReward); err != nil {
			return nil, err
		}
		monitoring.XPAwardCounter.WithLabelValues("lesson").Inc()
		result.XPAwarded = lesson.XPReward
	}

	if err := s.refreshCourseProgress(userID, lesson.CourseID); err != nil {
		logger.Log.Warn("failed to refresh course progress",
			zap.Uint("userId", userID),
			zap.Uint("courseId", lesson.CourseID),
			zap.Error(err),
		)
	}

	return result, nil
}

func (s *LessonService) refreshCourseProgress(userID, courseID uint) error {
	lessons, err := s.LessonRepo.ListByCourse(courseID)
	if err != nil {
		return err
	}
	if len(lessons) == 0 {
		return nil
	}

	completed, err := s.LessonRepo.CountCompletedInCourse(userID, courseID)
	if err != nil {
		return err
	}

	percent := int(completed) * 100 / len(lessons)
	return s.Enrollment.UpdateProgress(userID, courseID, percent)
}

type LessonRequest struct {
	CourseID    uint   `json:"courseId" binding:"required"`
	TitleAr     string `json:"titleAr" binding:"required"`
	TitleEn     string `json:"titleEn"`
	ContentAr   string `json:"contentAr"`
	ContentEn   string `json:"contentEn"`
	VideoURL    string `json:"videoUrl"`
	SortOrder   int    `json:"sortOrder"`
	XPReward    int    `json:"xpReward"`
	IsPublished bool   `json:"isPublished"`
}

func (s *LessonService) Create(req LessonRequest) (*model.Lesson, error) {
	lesson := &model.Lesson{
		CourseID:    req.CourseID,
		TitleAr:     req.TitleAr,
		TitleEn:     req.TitleEn,
		ContentAr:   req.ContentAr,
		ContentEn:   req.ContentEn,
		VideoURL:    req.VideoURL,
		SortOrder:   req.SortOrder,
		XPReward:    req.XPReward,
		IsPublished: req.IsPublished,
	}
	if err := s.LessonRepo.Create(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *LessonService) Update(lessonID uint, req LessonRequest) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		return nil, util.ErrLessonNotFound
	}

	lesson.TitleAr = req.TitleAr
	lesson.TitleEn = req.TitleEn
	lesson.ContentAr = req.ContentAr
	lesson.ContentEn = req.ContentEn
	lesson.VideoURL = req.VideoURL
	lesson.SortOrder = req.SortOrder
	lesson.XPReward = req.XPReward
	lesson.IsPublished = req.IsPublished

	if err := s.LessonRepo.Update(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *LessonService) Delete(lessonID uint) error {
	if _, err := s.LessonRepo.FindByID(lessonID); err != nil {
		return util.ErrLessonNotFound
	}
	return s.LessonRepo.Delete(lessonID)
}

// CourseID resolves a lesson to its owning course, for ownership checks.
func (s *LessonService) CourseID(lessonID uint) (uint, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		return 0, util.ErrLessonNotFound
	}
	return lesson.CourseID, nil
}

// SetVideo attaches an uploaded video to the lesson with its probed duration.
func (s *LessonService) SetVideo(lessonID uint, url string, duration float64) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		return nil, util.ErrLessonNotFound
	}

	lesson.VideoURL = url
	lesson.VideoDuration = duration

	if err := s.LessonRepo.Update(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}
