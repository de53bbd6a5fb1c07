package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/repository"
	"manara_edu_backend/internal/util"
	"manara_edu_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const catalogCacheTTL = 5 * time.Minute

type CourseService struct {
	CourseRepo *repository.CourseRepository
	QuizRepo   *repository.QuizRepository
	Enrollment *EnrollmentService
	Redis      *redis.Client
}

func NewCourseService(courseRepo *repository.CourseRepository, quizRepo *repository.QuizRepository,
	enrollment *EnrollmentService, rdb *redis.Client) *CourseService {
	return &CourseService{
		CourseRepo: courseRepo,
		QuizRepo:   quizRepo,
		Enrollment: enrollment,
		Redis:      rdb,
	}
}

type CatalogPage struct {
	List  []model.Course `json:"list"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// Catalog lists published courses, cached in Redis with a short TTL. Cache
// failures fall through to MySQL.
func (s *CourseService) Catalog(category string, page, limit int) (*CatalogPage, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("catalog:%s:%d:%d", category, page, limit)

	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached CatalogPage
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("catalog cache read failed", zap.Error(err))
		}
	}

	courses, total, err := s.CourseRepo.ListPublished(category, page, limit)
	if err != nil {
		return nil, err
	}

	result := &CatalogPage{List: courses, Total: total, Page: page, Limit: limit}

	if s.Redis != nil {
		if raw, err := json.Marshal(result); err == nil {
			s.Redis.Set(ctx, cacheKey, raw, catalogCacheTTL)
		}
	}

	return result, nil
}

// GetPublished is the public course detail (no content tree).
func (s *CourseService) GetPublished(courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil || !course.IsPublished {
		return nil, util.ErrCourseNotFound
	}
	return course, nil
}

// LessonContentView pairs a published lesson with its quiz reference, if any.
type LessonContentView struct {
	model.Lesson
	QuizID *uint `json:"quizId"`
}

type CourseContent struct {
	Course  model.Course        `json:"course"`
	Lessons []LessonContentView `json:"lessons"`
	Labs    []model.Lab         `json:"labs"`
}

// Content returns the full course tree for entitled callers. Admins see
// everything, instructors their own courses; learners need an approved
// enrollment — missing, pending or rejected all deny.
func (s *CourseService) Content(userID uint, role model.UserRole, courseID uint) (*CourseContent, error) {
	course, err := s.CourseRepo.FindByIDWithContent(courseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}

	entitled := role == model.Admin || (role == model.Instructor && course.InstructorID == userID)
	if !entitled {
		if !course.IsPublished {
			return nil, util.ErrCourseNotFound
		}
		approved, err := s.Enrollment.IsApproved(userID, courseID)
		if err != nil {
			return nil, err
		}
		if !approved {
			return nil, util.ErrEnrollmentRequired
		}
	}

	content := &CourseContent{Course: *course}
	content.Course.Lessons = nil
	content.Course.Labs = nil

	for _, lesson := range course.Lessons {
		if !entitled && !lesson.IsPublished {
			continue
		}
		view := LessonContentView{Lesson: lesson}
		if quiz, err := s.QuizRepo.FindByLessonID(lesson.ID); err == nil {
			if entitled || (quiz.IsPublished && len(quiz.Questions) > 0) {
				id := quiz.ID
				view.QuizID = &id
			}
		}
		content.Lessons = append(content.Lessons, view)
	}

	for _, lab := range course.Labs {
		if !entitled && !lab.IsPublished {
			continue
		}
		content.Labs = append(content.Labs, lab)
	}

	return content, nil
}

type CourseRequest struct {
	TitleAr       string  `json:"titleAr" binding:"required"`
	TitleEn       string  `json:"titleEn"`
	DescriptionAr string  `json:"descriptionAr"`
	DescriptionEn string  `json:"descriptionEn"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	Thumbnail     string  `json:"thumbnail"`
	IsPublished   bool    `json:"isPublished"`
}

func (s *CourseService) Create(instructorID uint, req CourseRequest) (*model.Course, error) {
	course := &model.Course{
		InstructorID:  instructorID,
		TitleAr:       req.TitleAr,
		TitleEn:       req.TitleEn,
		DescriptionAr: req.DescriptionAr,
		DescriptionEn: req.DescriptionEn,
		Category:      req.Category,
		Price:         req.Price,
		Currency:      req.Currency,
		Thumbnail:     req.Thumbnail,
		IsPublished:   req.IsPublished,
	}
	if course.Currency == "" {
		course.Currency = "SAR"
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Update(courseID uint, req CourseRequest) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}

	course.TitleAr = req.TitleAr
	course.TitleEn = req.TitleEn
	course.DescriptionAr = req.DescriptionAr
	course.DescriptionEn = req.DescriptionEn
	course.Category = req.Category
	course.Price = req.Price
	if req.Currency != "" {
		course.Currency = req.Currency
	}
	if req.Thumbnail != "" {
		course.Thumbnail = req.Thumbnail
	}
	course.IsPublished = req.IsPublished

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Delete(courseID uint) error {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		return util.ErrCourseNotFound
	}
	return s.CourseRepo.Delete(courseID)
}

func (s *CourseService) SetThumbnail(courseID uint, url string) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	course.Thumbnail = url
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Get(courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	return course, nil
}

func (s *CourseService) ListByInstructor(instructorID uint) ([]model.Course, error) {
	return s.CourseRepo.ListByInstructor(instructorID)
}
