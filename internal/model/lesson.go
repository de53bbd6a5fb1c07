package model

import "time"

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID      uint    `gorm:"index;not null" json:"courseId"`
	TitleAr       string  `gorm:"size:255;not null" json:"titleAr"`
	TitleEn       string  `gorm:"size:255" json:"titleEn"`
	ContentAr     string  `gorm:"type:text" json:"contentAr"`
	ContentEn     string  `gorm:"type:text" json:"contentEn"`
	VideoURL      string  `gorm:"size:255" json:"videoUrl"`
	VideoDuration float64 `gorm:"default:0" json:"videoDuration"` // seconds, probed at upload
	SortOrder     int     `gorm:"default:0" json:"sortOrder"`
	XPReward      int     `gorm:"default:0" json:"xpReward"`
	IsPublished   bool    `gorm:"default:false;index" json:"isPublished"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// LessonProgress records a learner's first completion of a lesson. The unique
// index makes completion (and its XP award) idempotent.
type LessonProgress struct {
	BaseModel
	UserID      uint      `gorm:"uniqueIndex:idx_lesson_progress_user_lesson;not null" json:"userId"`
	LessonID    uint      `gorm:"uniqueIndex:idx_lesson_progress_user_lesson;not null" json:"lessonId"`
	CompletedAt time.Time `json:"completedAt"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
