package model

import "time"

// swagger:model Lab
type Lab struct {
	BaseModel
	CourseID      uint   `gorm:"index;not null" json:"courseId"`
	TitleAr       string `gorm:"size:255;not null" json:"titleAr"`
	TitleEn       string `gorm:"size:255" json:"titleEn"`
	DescriptionAr string `gorm:"type:text" json:"descriptionAr"`
	DescriptionEn string `gorm:"type:text" json:"descriptionEn"`
	XPReward      int    `gorm:"default:0" json:"xpReward"`
	SortOrder     int    `gorm:"default:0" json:"sortOrder"`
	IsPublished   bool   `gorm:"default:false;index" json:"isPublished"`

	Sections []LabSection `gorm:"foreignKey:LabID" json:"sections,omitempty"`
}

func (Lab) TableName() string {
	return "labs"
}

type LabSection struct {
	BaseModel
	LabID     uint   `gorm:"index;not null" json:"labId"`
	TitleAr   string `gorm:"size:255;not null" json:"titleAr"`
	TitleEn   string `gorm:"size:255" json:"titleEn"`
	ContentAr string `gorm:"type:text" json:"contentAr"`
	ContentEn string `gorm:"type:text" json:"contentEn"`
	SortOrder int    `gorm:"default:0" json:"sortOrder"`
}

func (LabSection) TableName() string {
	return "lab_sections"
}

// LabSubmission keeps full history: every submit and resubmit inserts a row.
// The current state of a (user, lab, section) is the newest row by SubmittedAt.
// SectionID nil means a whole-lab submission.
type LabSubmission struct {
	BaseModel
	UserID        uint       `gorm:"index:idx_submission_user_lab;not null" json:"userId"`
	LabID         uint       `gorm:"index:idx_submission_user_lab;not null" json:"labId"`
	SectionID     *uint      `gorm:"index" json:"sectionId"`
	ScreenshotURL string     `gorm:"size:255" json:"screenshotUrl"`
	Details       string     `gorm:"type:text" json:"details"`
	TimeSpent     int        `gorm:"default:0" json:"timeSpent"` // seconds
	Status        string     `gorm:"size:20;default:'pending';index" json:"status"`
	ReviewedBy    *uint      `json:"reviewedBy"`
	ReviewedAt    *time.Time `json:"reviewedAt"`
	ReviewNotes   string     `gorm:"type:text" json:"reviewNotes"`
	SubmittedAt   time.Time  `gorm:"index" json:"submittedAt"`
}

func (LabSubmission) TableName() string {
	return "lab_submissions"
}

type LabProgress struct {
	BaseModel
	UserID      uint       `gorm:"uniqueIndex:idx_lab_progress_user_lab;not null" json:"userId"`
	LabID       uint       `gorm:"uniqueIndex:idx_lab_progress_user_lab;not null" json:"labId"`
	StartedAt   time.Time  `json:"startedAt"`
	IsCompleted bool       `gorm:"default:false" json:"isCompleted"`
	Progress    int        `gorm:"default:0" json:"progress"` // 0-100
	CompletedAt *time.Time `json:"completedAt"`
}

func (LabProgress) TableName() string {
	return "lab_progress"
}
