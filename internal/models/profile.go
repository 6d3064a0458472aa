package models

import (
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type MaritalStatus string

const (
	MaritalNeverMarried    MaritalStatus = "never_married"
	MaritalDivorced        MaritalStatus = "divorced"
	MaritalWidowed         MaritalStatus = "widowed"
	MaritalAwaitingDivorce MaritalStatus = "awaiting_divorce"
)

type Diet string

const (
	DietVegetarian    Diet = "vegetarian"
	DietNonVegetarian Diet = "non_vegetarian"
	DietEggetarian    Diet = "eggetarian"
	DietVegan         Diet = "vegan"
)

// Habit describes smoking and drinking preferences.
type Habit string

const (
	HabitNo           Habit = "no"
	HabitOccasionally Habit = "occasionally"
	HabitYes          Habit = "yes"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

func (m MaritalStatus) Valid() bool {
	switch m {
	case MaritalNeverMarried, MaritalDivorced, MaritalWidowed, MaritalAwaitingDivorce:
		return true
	}
	return false
}

func (d Diet) Valid() bool {
	switch d {
	case DietVegetarian, DietNonVegetarian, DietEggetarian, DietVegan:
		return true
	}
	return false
}

func (h Habit) Valid() bool {
	switch h {
	case HabitNo, HabitOccasionally, HabitYes:
		return true
	}
	return false
}

// Profile is the matrimonial profile of a user. Its ID is the owning user's ID,
// so likes and conversations can refer to either interchangeably.
type Profile struct {
	UserID        string        `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	FirstName     string        `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName      string        `gorm:"type:varchar(50)" json:"last_name"`
	DateOfBirth   time.Time     `gorm:"not null" json:"date_of_birth"`
	Gender        Gender        `gorm:"type:varchar(10);not null;index" json:"gender"`
	MaritalStatus MaritalStatus `gorm:"type:varchar(20)" json:"marital_status,omitempty"`
	Religion      string        `gorm:"type:varchar(50)" json:"religion,omitempty"`
	Caste         string        `gorm:"type:varchar(50)" json:"caste,omitempty"`
	MotherTongue  string        `gorm:"type:varchar(50)" json:"mother_tongue,omitempty"`
	HeightCm      int           `json:"height_cm,omitempty"`
	Education     string        `gorm:"type:varchar(100)" json:"education,omitempty"`
	Occupation    string        `gorm:"type:varchar(100)" json:"occupation,omitempty"`
	AnnualIncome  string        `gorm:"type:varchar(50)" json:"annual_income,omitempty"`
	City          string        `gorm:"type:varchar(100)" json:"city,omitempty"`
	State         string        `gorm:"type:varchar(100)" json:"state,omitempty"`
	Country       string        `gorm:"type:varchar(100)" json:"country,omitempty"`
	Diet          Diet          `gorm:"type:varchar(20)" json:"diet,omitempty"`
	Smoking       Habit         `gorm:"type:varchar(20)" json:"smoking,omitempty"`
	Drinking      Habit         `gorm:"type:varchar(20)" json:"drinking,omitempty"`
	About         string        `gorm:"type:text" json:"about,omitempty"`
	PhotoURL      string        `gorm:"type:varchar(500)" json:"photo_url,omitempty"`
	CreatedAt     time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// FullName joins first and last name for display.
func (p *Profile) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Age returns completed years as of now.
func (p *Profile) Age(now time.Time) int {
	years := now.Year() - p.DateOfBirth.Year()
	if now.Month() < p.DateOfBirth.Month() ||
		(now.Month() == p.DateOfBirth.Month() && now.Day() < p.DateOfBirth.Day()) {
		years--
	}
	return years
}
