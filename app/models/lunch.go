package models

import "time"

// Difficulty is the optional cooking difficulty of a lunch.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// DefaultLunchTitle is used when a lunch is created without a title.
const DefaultLunchTitle = "Новый обед"

// Lunch is a recipe owned by exactly one user (its chef).
type Lunch struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	UserID      uint         `gorm:"not null;index" json:"userId"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Recipe      *string      `gorm:"type:text" json:"recipe"`
	Calories    *int         `json:"calories"`
	Proteins    *float64     `json:"proteins"`
	Fats        *float64     `json:"fats"`
	Carbs       *float64     `json:"carbs"`
	CookingTime *int         `json:"cookingTime"`
	Difficulty  *Difficulty  `gorm:"size:16" json:"difficulty"`
	Tags        []string     `gorm:"serializer:json;type:text" json:"tags"`
	Images      []LunchImage `gorm:"foreignKey:LunchID" json:"images"`
	CreatedAt   time.Time    `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// LunchImage is one picture of a lunch. Position orders images ascending;
// gaps left by deletions are never renumbered.
type LunchImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LunchID   uint      `gorm:"not null;index" json:"lunchId"`
	URL       string    `gorm:"size:1024;not null" json:"url"`
	Key       string    `gorm:"size:512;not null" json:"key"`
	Width     *int      `json:"width"`
	Height    *int      `json:"height"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}
