package model

import "time"

// swagger:model Quiz
type Quiz struct {
	BaseModel
	LessonID     uint   `gorm:"uniqueIndex;not null" json:"lessonId"` // one quiz per lesson
	TitleAr      string `gorm:"size:255;not null" json:"titleAr"`
	TitleEn      string `gorm:"size:255" json:"titleEn"`
	PassingScore int    `gorm:"default:70" json:"passingScore"` // percentage threshold
	XPReward     int    `gorm:"default:0" json:"xpReward"`
	IsPublished  bool   `gorm:"default:false;index" json:"isPublished"`

	Questions []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Question options are stored as a JSON array of strings. CorrectAnswer is a
// zero-based index into that array and must never reach the learner read path.
type Question struct {
	BaseModel
	QuizID        uint   `gorm:"index;not null" json:"quizId"`
	TextAr        string `gorm:"type:text;not null" json:"textAr"`
	TextEn        string `gorm:"type:text" json:"textEn"`
	Options       string `gorm:"type:text;not null" json:"options"`
	CorrectAnswer int    `gorm:"not null" json:"correctAnswer"`
	SortOrder     int    `gorm:"default:0" json:"sortOrder"`
}

func (Question) TableName() string {
	return "questions"
}

// QuizAttempt is immutable once created; re-attempts insert new rows.
type QuizAttempt struct {
	BaseModel
	UserID      uint      `gorm:"index:idx_attempt_user_quiz;not null" json:"userId"`
	QuizID      uint      `gorm:"index:idx_attempt_user_quiz;not null" json:"quizId"`
	Score       int       `gorm:"not null" json:"score"`            // 0-100
	Answers     string    `gorm:"type:text;not null" json:"answers"` // JSON array of submitted indices
	Passed      bool      `gorm:"not null" json:"passed"`
	CompletedAt time.Time `json:"completedAt"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
