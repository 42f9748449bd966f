package models

import "time"

type Participant struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	UserID   string  `json:"user_id" gorm:"not null;index;size:255"`
	FullName string  `json:"full_name" gorm:"not null;size:100"`
	Phone    *string `json:"phone" gorm:"size:30"`
	Company  *string `json:"company" gorm:"size:150"`
	Position *string `json:"position" gorm:"size:100"`
	Address  *string `json:"address" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Instructure is an instructor profile. Optional fields stay empty until the
// profile setup flow fills them in.
type Instructure struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	UserID    string  `json:"user_id" gorm:"not null;index;size:255"`
	FullName  string  `json:"full_name" gorm:"not null;size:100"`
	Expertise *string `json:"expertise" gorm:"size:255"`
	Bio       *string `json:"bio" gorm:"type:text"`
	Phone     *string `json:"phone" gorm:"size:30"`
	PhotoURL  *string `json:"photo_url" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Participant) TableName() string {
	return "participants"
}

func (Instructure) TableName() string {
	return "instructures"
}
