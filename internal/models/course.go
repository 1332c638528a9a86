package models

import (
	"time"
)

// Course categories form a closed set; CourseForm and the storage layer
// reject anything else.
const (
	CategoryWebDev      = "Web Dev"
	CategoryDataScience = "Data Science"
	CategoryDesain      = "Desain Grafis"
	CategoryJaringan    = "Jaringan"
	CategoryOffice      = "Office"
	CategoryUmum        = "Umum"
)

// Categories in display order.
var Categories = []string{
	CategoryWebDev,
	CategoryDataScience,
	CategoryDesain,
	CategoryJaringan,
	CategoryOffice,
	CategoryUmum,
}

func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

type Course struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string `gorm:"size:100;not null" json:"title" validate:"required,max=100"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"size:64;default:'Umum'" json:"category"`

	InstructorName  string  `gorm:"size:100" json:"instructor_name" validate:"max=100"`
	InstructorTitle string  `gorm:"size:100" json:"instructor_title"`
	Rating          float64 `json:"rating" validate:"gte=0,lte=5"`

	// Price is in whole rupiah. DiscountPercent must stay within [0,100];
	// the storage layer rejects writes outside that range.
	Price           int `json:"price" validate:"gte=0"`
	DiscountPercent int `json:"discount_percent" validate:"gte=0,lte=100"`

	DurationHours int `json:"duration_hours"`

	ImageURL           string `gorm:"size:255" json:"image_url"`
	InstructorImageURL string `gorm:"size:255" json:"instructor_image_url"`

	Lessons     []Lesson     `json:"lessons" gorm:"foreignKey:CourseID"`
	Enrollments []Enrollment `json:"-" gorm:"foreignKey:CourseID"`
}

// FinalPrice is the discounted price. Always recomputed, never stored, so a
// price or discount edit takes effect everywhere at once.
func (c *Course) FinalPrice() int {
	p := c.Price - c.Price*c.DiscountPercent/100
	if p < 0 {
		return 0
	}
	return p
}

func (c *Course) IsFree() bool {
	return c.Price == 0
}

type Lesson struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	CourseID uint   `gorm:"index;not null" json:"course_id"`
	Title    string `gorm:"size:100;not null" json:"title" validate:"required,max=100"`

	// Content is an opaque HTML/embed blob rendered as-is in the lesson page.
	Content string `gorm:"type:text" json:"content"`

	// Order drives display and prev/next navigation within the course.
	// Duplicates are tolerated; navigation breaks ties by ID.
	Order int `gorm:"index" json:"order" validate:"gt=0"`

	DurationMinutes int `json:"duration_minutes"`

	Progresses []LessonProgress `json:"-" gorm:"foreignKey:LessonID"`
}
