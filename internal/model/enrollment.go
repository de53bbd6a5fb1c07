package model

import "time"

// Enrollment is the offline-payment-confirmation record gating all course
// content: only status "approved" unlocks lessons, quizzes and labs.
//
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID           uint       `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"userId"`
	CourseID         uint       `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"courseId"`
	Status           string     `gorm:"size:20;default:'pending';index" json:"status"`
	PaymentMethod    string     `gorm:"size:50" json:"paymentMethod"`
	PaymentReference string     `gorm:"size:100" json:"paymentReference"`
	ContactName      string     `gorm:"size:100" json:"contactName"`
	ContactPhone     string     `gorm:"size:30" json:"contactPhone"`
	Progress         int        `gorm:"default:0" json:"progress"`
	ReviewedBy       *uint      `json:"reviewedBy"`
	ReviewedAt       *time.Time `json:"reviewedAt"`
	Notes            string     `gorm:"type:text" json:"notes"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
