package model

// Course is a marketplace course. Arabic fields are required, English optional.
//
// swagger:model Course
type Course struct {
	BaseModel
	InstructorID  uint    `gorm:"index;not null" json:"instructorId"`
	TitleAr       string  `gorm:"size:255;not null" json:"titleAr"`
	TitleEn       string  `gorm:"size:255" json:"titleEn"`
	DescriptionAr string  `gorm:"type:text" json:"descriptionAr"`
	DescriptionEn string  `gorm:"type:text" json:"descriptionEn"`
	Category      string  `gorm:"size:100;index" json:"category"`
	Price         float64 `gorm:"default:0" json:"price"`
	Currency      string  `gorm:"size:10;default:'SAR'" json:"currency"`
	Thumbnail     string  `gorm:"size:255" json:"thumbnail"`
	IsPublished   bool    `gorm:"default:false;index" json:"isPublished"`

	Lessons []Lesson `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
	Labs    []Lab    `gorm:"foreignKey:CourseID" json:"labs,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}
