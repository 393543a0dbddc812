package models

import (
	"strings"
	"time"
)

// CV is a stored professional profile.
type CV struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Firstname string    `gorm:"size:100;not null" json:"firstname"`
	Lastname  string    `gorm:"size:100;not null" json:"lastname"`
	Skills    string    `gorm:"type:text" json:"skills"`
	Projects  string    `gorm:"type:text" json:"projects"`
	Bio       string    `gorm:"type:text" json:"bio"`
	Contacts  string    `gorm:"type:text" json:"contacts"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CV) TableName() string {
	return "cvs"
}

func (c *CV) FullName() string {
	return c.Firstname + " " + c.Lastname
}

func (c *CV) String() string {
	return c.FullName()
}

// SkillsPreview returns at most max entries of the ", " separated skills list.
func (c *CV) SkillsPreview(max int) []string {
	return SplitSkills(c.Skills, max)
}

func SplitSkills(skills string, max int) []string {
	if strings.TrimSpace(skills) == "" {
		return nil
	}
	parts := strings.Split(skills, ", ")
	if max > 0 && len(parts) > max {
		return parts[:max]
	}
	return parts
}
