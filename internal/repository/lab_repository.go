package repository

import (
	"manara_edu_backend/internal/model"

	"gorm.io/gorm"
)

type LabRepository struct {
	DB *gorm.DB
}

func NewLabRepository(db *gorm.DB) *LabRepository {
	return &LabRepository{DB: db}
}

func (r *LabRepository) Create(lab *model.Lab) error {
	return r.DB.Create(lab).Error
}

func (r *LabRepository) FindByID(id uint) (*model.Lab, error) {
	var lab model.Lab
	err := r.DB.
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, id")
		}).
		First(&lab, id).Error
	return &lab, err
}

func (r *LabRepository) ListByCourse(courseID uint) ([]model.Lab, error) {
	var labs []model.Lab
	err := r.DB.
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, id")
		}).
		Where("course_id = ?", courseID).
		Order("sort_order, id").
		Find(&labs).Error
	return labs, err
}

func (r *LabRepository) Update(lab *model.Lab) error {
	return r.DB.Save(lab).Error
}

func (r *LabRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Lab{}, id).Error
}

func (r *LabRepository) CreateSection(section *model.LabSection) error {
	return r.DB.Create(section).Error
}

func (r *LabRepository) FindSectionByID(id uint) (*model.LabSection, error) {
	var section model.LabSection
	err := r.DB.First(&section, id).Error
	return &section, err
}

func (r *LabRepository) UpdateSection(section *model.LabSection) error {
	return r.DB.Save(section).Error
}

func (r *LabRepository) DeleteSection(id uint) error {
	return r.DB.Delete(&model.LabSection{}, id).Error
}

func (r *LabRepository) CreateSubmission(sub *model.LabSubmission) error {
	return r.DB.Create(sub).Error
}

func (r *LabRepository) FindSubmissionByID(id uint) (*model.LabSubmission, error) {
	var sub model.LabSubmission
	err := r.DB.First(&sub, id).Error
	return &sub, err
}

func (r *LabRepository) UpdateSubmission(sub *model.LabSubmission) error {
	return r.DB.Save(sub).Error
}

// ListSubmissions returns a learner's full submission history for a lab,
// newest first — the head of each section's slice is its current state.
func (r *LabRepository) ListSubmissions(userID, labID uint) ([]model.LabSubmission, error) {
	var subs []model.LabSubmission
	err := r.DB.Where("user_id = ? AND lab_id = ?", userID, labID).
		Order("submitted_at DESC, id DESC").
		Find(&subs).Error
	return subs, err
}

func (r *LabRepository) ListPendingSubmissions(page, limit int) ([]model.LabSubmission, int64, error) {
	var subs []model.LabSubmission
	var total int64

	query := r.DB.Model(&model.LabSubmission{}).Where("status = ?", "pending")
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Offset((page - 1) * limit).Limit(limit).
		Order("submitted_at, id").
		Find(&subs).Error
	return subs, total, err
}

func (r *LabRepository) ListSubmissionsByLab(labID uint, page, limit int) ([]model.LabSubmission, int64, error) {
	var subs []model.LabSubmission
	var total int64

	query := r.DB.Model(&model.LabSubmission{}).Where("lab_id = ?", labID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Offset((page - 1) * limit).Limit(limit).
		Order("submitted_at DESC, id DESC").
		Find(&subs).Error
	return subs, total, err
}

func (r *LabRepository) FindProgress(userID, labID uint) (*model.LabProgress, error) {
	var progress model.LabProgress
	err := r.DB.Where("user_id = ? AND lab_id = ?", userID, labID).First(&progress).Error
	return &progress, err
}

func (r *LabRepository) CreateProgress(progress *model.LabProgress) error {
	return r.DB.Create(progress).Error
}

func (r *LabRepository) UpdateProgress(progress *model.LabProgress) error {
	return r.DB.Save(progress).Error
}
