package service

import (
	"errors"
	"time"

	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/repository"
	"manara_edu_backend/internal/util"

	"gorm.io/gorm"
)

// EnrollmentService implements the offline-payment-confirmation workflow:
// learners file a pending enrollment, an admin approves or rejects it, and
// only approved enrollments unlock course content.
type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
}

func NewEnrollmentService(enrollmentRepo *repository.EnrollmentRepository, courseRepo *repository.CourseRepository) *EnrollmentService {
	return &EnrollmentService{
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
	}
}

type EnrollRequest struct {
	PaymentMethod    string `json:"paymentMethod" binding:"required"`
	PaymentReference string `json:"paymentReference"`
	ContactName      string `json:"contactName" binding:"required"`
	ContactPhone     string `json:"contactPhone" binding:"required"`
}

func (s *EnrollmentService) Enroll(userID, courseID uint, req EnrollRequest) (*model.Enrollment, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil || !course.IsPublished {
		return nil, util.ErrCourseNotFound
	}

	if _, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID); err == nil {
		return nil, util.ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	enrollment := &model.Enrollment{
		UserID:           userID,
		CourseID:         courseID,
		Status:           util.EnrollmentPending,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
		ContactName:      req.ContactName,
		ContactPhone:     req.ContactPhone,
	}
	if err := s.EnrollmentRepo.Create(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// Review flips a pending (or previously reviewed) enrollment to approved or
// rejected. Re-review is allowed; the latest decision wins.
func (s *EnrollmentService) Review(enrollmentID, reviewerID uint, status, notes string) (*model.Enrollment, error) {
	if status != util.EnrollmentApproved && status != util.EnrollmentRejected {
		return nil, util.ErrInvalidReviewStatus
	}

	enrollment, err := s.EnrollmentRepo.FindByID(enrollmentID)
	if err != nil {
		return nil, util.ErrEnrollmentNotFound
	}

	now := time.Now()
	enrollment.Status = status
	enrollment.ReviewedBy = &reviewerID
	enrollment.ReviewedAt = &now
	enrollment.Notes = notes

	if err := s.EnrollmentRepo.Update(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// IsApproved is the content gate predicate: no enrollment, pending and
// rejected all deny access.
func (s *EnrollmentService) IsApproved(userID, courseID uint) (bool, error) {
	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return enrollment.Status == util.EnrollmentApproved, nil
}

func (s *EnrollmentService) ListByUser(userID uint) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.ListByUser(userID)
}

func (s *EnrollmentService) ListPending(page, limit int) ([]model.Enrollment, int64, error) {
	return s.EnrollmentRepo.ListByStatus(util.EnrollmentPending, page, limit)
}

func (s *EnrollmentService) ListByCourse(courseID uint, page, limit int) ([]model.Enrollment, int64, error) {
	return s.EnrollmentRepo.ListByCourse(courseID, page, limit)
}

// UpdateProgress recomputes the enrollment's progress percentage after a
// lesson completion. Best effort: a missing enrollment is ignored.
func (s *EnrollmentService) UpdateProgress(userID, courseID uint, percent int) error {
	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	enrollment.Progress = percent
	return s.EnrollmentRepo.Update(enrollment)
}
