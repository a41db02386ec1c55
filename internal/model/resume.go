package model

import (
	"gorm.io/datatypes"
)

type EducationEntry struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Year        string `json:"year"`
	Score       string `json:"score,omitempty"`
}

type ProjectEntry struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tech        []string `json:"tech,omitempty"`
	Link        string   `json:"link,omitempty"`
}

type ExperienceEntry struct {
	Company  string `json:"company"`
	Role     string `json:"role"`
	Duration string `json:"duration"`
	Summary  string `json:"summary,omitempty"`
}

type ResumeLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Resume 每个用户一份简历
type Resume struct {
	BaseModel
	UserID     uint                                  `gorm:"uniqueIndex;not null" json:"userId"`
	Headline   string                                `gorm:"size:150" json:"headline"`
	Phone      string                                `gorm:"size:30" json:"phone"`
	Summary    string                                `gorm:"type:text" json:"summary"`
	Education  datatypes.JSONType[[]EducationEntry]  `json:"education"`
	Skills     datatypes.JSONType[[]string]          `json:"skills"`
	Projects   datatypes.JSONType[[]ProjectEntry]    `json:"projects"`
	Experience datatypes.JSONType[[]ExperienceEntry] `json:"experience"`
	Links      datatypes.JSONType[[]ResumeLink]      `json:"links"`
}

func (Resume) TableName() string {
	return "resumes"
}
