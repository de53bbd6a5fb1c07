package service

import (
	"errors"
	"sync"
	"time"

	"manara_edu_backend/internal/config"
	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/repository"
	"manara_edu_backend/internal/util"
	"manara_edu_backend/pkg/logger"
	"manara_edu_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LabService owns the submission review workflow: learners file pending
// submissions (per section or whole-lab), reviewers approve or reject them,
// and lab completion plus its XP award follow the configured gate:
//
//	"submission": completion and XP are granted the moment the learner calls
//	              the whole-lab submit endpoint, review is after-the-fact;
//	"approval":   completion and XP wait until the reviewer approves.
type LabService struct {
	LabRepo     *repository.LabRepository
	Enrollment  *EnrollmentService
	Progression *ProgressionService

	mu   sync.RWMutex
	gate string
}

func NewLabService(labRepo *repository.LabRepository, enrollment *EnrollmentService,
	progression *ProgressionService, cfg *config.Config) *LabService {
	return &LabService{
		LabRepo:     labRepo,
		Enrollment:  enrollment,
		Progression: progression,
		gate:        cfg.Progression.LabCompletionGate,
	}
}

// ApplyConfig picks up hot-reloaded progression toggles.
func (s *LabService) ApplyConfig(cfg *config.Config) {
	s.mu.Lock()
	s.gate = cfg.Progression.LabCompletionGate
	s.mu.Unlock()
}

func (s *LabService) completionGate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.gate == util.LabGateApproval {
		return util.LabGateApproval
	}
	return util.LabGateSubmission
}

// StartLab creates the learner's progress row; calling it again just returns
// the existing row.
func (s *LabService) StartLab(userID, labID uint) (*model.LabProgress, error) {
	lab, err := s.LabRepo.FindByID(labID)
	if err != nil || !lab.IsPublished {
		return nil, util.ErrLabNotFound
	}

	progress, err := s.LabRepo.FindProgress(userID, labID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	progress = &model.LabProgress{
		UserID:    userID,
		LabID:     labID,
		StartedAt: time.Now(),
	}
	if err := s.LabRepo.CreateProgress(progress); err != nil {
		return nil, err
	}
	return progress, nil
}

type SubmissionRequest struct {
	ScreenshotURL string `json:"screenshotUrl"`
	Details       string `json:"details"`
	TimeSpent     int    `json:"timeSpent"`
}

// SubmitSection files a pending submission for one lab section. Every call
// inserts a new row; resubmission after rejection is just another row.
func (s *LabService) SubmitSection(userID, labID, sectionID uint, req SubmissionRequest) (*model.LabSubmission, error) {
	if _, err := s.LabRepo.FindByID(labID); err != nil {
		return nil, util.ErrLabNotFound
	}
	section, err := s.LabRepo.FindSectionByID(sectionID)
	if err != nil || section.LabID != labID {
		return nil, util.ErrSectionNotFound
	}

	sub := &model.LabSubmission{
		UserID:        userID,
		LabID:         labID,
		SectionID:     &sectionID,
		ScreenshotURL: req.ScreenshotURL,
		Details:       req.Details,
		TimeSpent:     req.TimeSpent,
		Status:        util.SubmissionPending,
		SubmittedAt:   time.Now(),
	}
	if err := s.LabRepo.CreateSubmission(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// SubmitLab files a whole-lab submission (no section scope). Under the
// "submission" gate it also flips the learner's progress to completed and
// awards the lab's XP on every call; under the "approval" gate both wait for
// the reviewer.
func (s *LabService) SubmitLab(userID, labID uint, req SubmissionRequest) (*model.LabSubmission, error) {
	lab, err := s.LabRepo.FindByID(labID)
	if err != nil || !lab.IsPublished {
		return nil, util.ErrLabNotFound
	}

	sub := &model.LabSubmission{
		UserID:        userID,
		LabID:         labID,
		ScreenshotURL: req.ScreenshotURL,
		Details:       req.Details,
		TimeSpent:     req.TimeSpent,
		Status:        util.SubmissionPending,
		SubmittedAt:   time.Now(),
	}
	if err := s.LabRepo.CreateSubmission(sub); err != nil {
		return nil, err
	}

	if s.completionGate() == util.LabGateSubmission {
		if err := s.completeLab(userID, lab); err != nil {
			return nil, err
		}
		if lab.XPReward > 0 {
			if err := s.Progression.AwardXP(userID, lab.XPReward); err != nil {
				return nil, err
			}
			monitoring.XPAwardCounter.WithLabelValues("lab").Inc()
		}
	}

	return sub, nil
}

// completeLab upserts the progress row to its terminal state.
func (s *LabService) completeLab(userID uint, lab *model.Lab) error {
	now := time.Now()

	progress, err := s.LabRepo.FindProgress(userID, lab.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		progress = &model.LabProgress{
			UserID:    userID,
			LabID:     lab.ID,
			StartedAt: now,
		}
		if err := s.LabRepo.CreateProgress(progress); err != nil {
			return err
		}
	}

	progress.IsCompleted = true
	progress.Progress = 100
	progress.CompletedAt = &now
	return s.LabRepo.UpdateProgress(progress)
}

// ReviewSubmission sets the review verdict, unconditionally overwriting any
// prior review: an authorized reviewer can flip the status either way any
// number of times. Under the "approval" gate an approval may also complete
// the lab and release its XP (once).
func (s *LabService) ReviewSubmission(submissionID, reviewerID uint, status, notes string) (*model.LabSubmission, error) {
	if status != util.SubmissionApproved && status != util.SubmissionRejected {
		return nil, util.ErrInvalidReviewStatus
	}

	sub, err := s.LabRepo.FindSubmissionByID(submissionID)
	if err != nil {
		return nil, util.ErrSubmissionNotFound
	}

	now := time.Now()
	sub.Status = status
	sub.ReviewedBy = &reviewerID
	sub.ReviewedAt = &now
	sub.ReviewNotes = notes

	if err := s.LabRepo.UpdateSubmission(sub); err != nil {
		return nil, err
	}

	logger.Log.Info("lab submission reviewed",
		zap.Uint("submissionId", sub.ID),
		zap.Uint("reviewerId", reviewerID),
		zap.String("status", status),
	)

	if status == util.SubmissionApproved && s.completionGate() == util.LabGateApproval {
		if err := s.maybeCompleteOnApproval(sub); err != nil {
			return nil, err
		}
	}

	return sub, nil
}

// maybeCompleteOnApproval completes the lab when the approval state warrants
// it: an approved whole-lab submission, or every section's current submission
// approved. The IsCompleted flag guards the XP award against double payout.
func (s *LabService) maybeCompleteOnApproval(sub *model.LabSubmission) error {
	lab, err := s.LabRepo.FindByID(sub.LabID)
	if err != nil {
		return err
	}

	progress, err := s.LabRepo.FindProgress(sub.UserID, sub.LabID)
	if err == nil && progress.IsCompleted {
		return nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	done := false
	if sub.SectionID == nil {
		done = true
	} else if len(lab.Sections) > 0 {
		current, err := s.currentBySection(sub.UserID, sub.LabID)
		if err != nil {
			return err
		}
		done = true
		for _, section := range lab.Sections {
			latest, ok := current[section.ID]
			if !ok || latest.Status != util.SubmissionApproved {
				done = false
				break
			}
		}
	}
	if !done {
		return nil
	}

	if err := s.completeLab(sub.UserID, lab); err != nil {
		return err
	}
	if lab.XPReward > 0 {
		if err := s.Progression.AwardXP(sub.UserID, lab.XPReward); err != nil {
			return err
		}
		monitoring.XPAwardCounter.WithLabelValues("lab").Inc()
	}
	return nil
}

// currentBySection maps each section to the learner's newest submission.
func (s *LabService) currentBySection(userID, labID uint) (map[uint]model.LabSubmission, error) {
	subs, err := s.LabRepo.ListSubmissions(userID, labID)
	if err != nil {
		return nil, err
	}

	current := make(map[uint]model.LabSubmission)
	for _, sub := range subs {
		if sub.SectionID == nil {
			continue
		}
		// subs are ordered newest first; keep the first one seen per section.
		if _, ok := current[*sub.SectionID]; !ok {
			current[*sub.SectionID] = sub
		}
	}
	return current, nil
}

type SectionStatus struct {
	Section    model.LabSection     `json:"section"`
	Submission *model.LabSubmission `json:"submission"` // newest, nil if none
}

type LabDetail struct {
	Lab                  model.Lab          `json:"lab"`
	Progress             *model.LabProgress `json:"progress"`
	Sections             []SectionStatus    `json:"sections"`
	AllSectionsSubmitted bool               `json:"allSectionsSubmitted"`
}

// Detail assembles the learner view: the lab, their progress, and per section
// the current submission. AllSectionsSubmitted requires at least one section
// and a submission of any status for each — approval is not required, which
// mirrors how the completion button has always been gated.
func (s *LabService) Detail(userID, labID uint) (*LabDetail, error) {
	lab, err := s.LabRepo.FindByID(labID)
	if err != nil || !lab.IsPublished {
		return nil, util.ErrLabNotFound
	}

	approved, err := s.Enrollment.IsApproved(userID, lab.CourseID)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, util.ErrEnrollmentRequired
	}

	detail := &LabDetail{Lab: *lab}

	progress, err := s.LabRepo.FindProgress(userID, labID)
	if err == nil {
		detail.Progress = progress
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	current, err := s.currentBySection(userID, labID)
	if err != nil {
		return nil, err
	}

	detail.AllSectionsSubmitted = len(lab.Sections) > 0
	for _, section := range lab.Sections {
		status := SectionStatus{Section: section}
		if sub, ok := current[section.ID]; ok {
			latest := sub
			status.Submission = &latest
		} else {
			detail.AllSectionsSubmitted = false
		}
		detail.Sections = append(detail.Sections, status)
	}

	return detail, nil
}

// CourseID resolves a lab to its owning course, for ownership checks.
func (s *LabService) CourseID(labID uint) (uint, error) {
	lab, err := s.LabRepo.FindByID(labID)
	if err != nil {
		return 0, util.ErrLabNotFound
	}
	return lab.CourseID, nil
}

// CourseIDForSection resolves a section to its owning course via the lab.
func (s *LabService) CourseIDForSection(sectionID uint) (uint, error) {
	section, err := s.LabRepo.FindSectionByID(sectionID)
	if err != nil {
		return 0, util.ErrSectionNotFound
	}
	return s.CourseID(section.LabID)
}

// CourseIDForSubmission resolves a submission to its owning course via the lab.
func (s *LabService) CourseIDForSubmission(submissionID uint) (uint, error) {
	sub, err := s.LabRepo.FindSubmissionByID(submissionID)
	if err != nil {
		return 0, util.ErrSubmissionNotFound
	}
	return s.CourseID(sub.LabID)
}

func (s *LabService) GetSubmission(submissionID uint) (*model.LabSubmission, error) {
	sub, err := s.LabRepo.FindSubmissionByID(submissionID)
	if err != nil {
		return nil, util.ErrSubmissionNotFound
	}
	return sub, nil
}

func (s *LabService) ListPendingSubmissions(page, limit int) ([]model.LabSubmission, int64, error) {
	return s.LabRepo.ListPendingSubmissions(page, limit)
}

func (s *LabService) ListSubmissionsByLab(labID uint, page, limit int) ([]model.LabSubmission, int64, error) {
	if _, err := s.LabRepo.FindByID(labID); err != nil {
		return nil, 0, util.ErrLabNotFound
	}
	return s.LabRepo.ListSubmissionsByLab(labID, page, limit)
}

type LabRequest struct {
	CourseID      uint   `json:"courseId" binding:"required"`
	TitleAr       string `json:"titleAr" binding:"required"`
	TitleEn       string `json:"titleEn"`
	DescriptionAr string `json:"descriptionAr"`
	DescriptionEn string `json:"descriptionEn"`
	XPReward      int    `json:"xpReward"`
	SortOrder     int    `json:"sortOrder"`
	IsPublished   bool   `json:"isPublished"`
}

func (s *LabService) Create(req LabRequest) (*model.Lab, error) {
	lab := &model.Lab{
		CourseID:      req.CourseID,
		TitleAr:       req.TitleAr,
		TitleEn:       req.TitleEn,
		DescriptionAr: req.DescriptionAr,
		DescriptionEn: req.DescriptionEn,
		XPReward:      req.XPReward,
		SortOrder:     req.SortOrder,
		IsPublished:   req.IsPublished,
	}
	if err := s.LabRepo.Create(lab); err != nil {
		return nil, err
	}
	return lab, nil
}

func (s *LabService) Update(labID uint, req LabRequest) (*model.Lab, error) {
	lab, err := s.LabRepo.FindByID(labID)
	if err != nil {
		return nil, util.ErrLabNotFound
	}

	lab.TitleAr = req.TitleAr
	lab.TitleEn = req.TitleEn
	lab.DescriptionAr = req.DescriptionAr
	lab.DescriptionEn = req.DescriptionEn
	lab.XPReward = req.XPReward
	lab.SortOrder = req.SortOrder
	lab.IsPublished = req.IsPublished

	if err := s.LabRepo.Update(lab); err != nil {
		return nil, err
	}
	return lab, nil
}

func (s *LabService) Delete(labID uint) error {
	if _, err := s.LabRepo.FindByID(labID); err != nil {
		return util.ErrLabNotFound
	}
	return s.LabRepo.Delete(labID)
}

type SectionRequest struct {
	TitleAr   string `json:"titleAr" binding:"required"`
	TitleEn   string `json:"titleEn"`
	ContentAr string `json:"contentAr"`
	ContentEn string `json:"contentEn"`
	SortOrder int    `json:"sortOrder"`
}

func (s *LabService) AddSection(labID uint, req SectionRequest) (*model.LabSection, error) {
	if _, err := s.LabRepo.FindByID(labID); err != nil {
		return nil, util.ErrLabNotFound
	}

	section := &model.LabSection{
		LabID:     labID,
		TitleAr:   req.TitleAr,
		TitleEn:   req.TitleEn,
		ContentAr: req.ContentAr,
		ContentEn: req.ContentEn,
		SortOrder: req.SortOrder,
	}
	if err := s.LabRepo.CreateSection(section); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *LabService) UpdateSection(sectionID uint, req SectionRequest) (*model.LabSection, error) {
	section, err := s.LabRepo.FindSectionByID(sectionID)
	if err != nil {
		return nil, util.ErrSectionNotFound
	}

	section.TitleAr = req.TitleAr
	section.TitleEn = req.TitleEn
	section.ContentAr = req.ContentAr
	section.ContentEn = req.ContentEn
	section.SortOrder = req.SortOrder

	if err := s.LabRepo.UpdateSection(section); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *LabService) DeleteSection(sectionID uint) error {
	if _, err := s.LabRepo.FindSectionByID(sectionID); err != nil {
		return util.ErrSectionNotFound
	}
	return s.LabRepo.DeleteSection(sectionID)
}
