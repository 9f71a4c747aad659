package models

import "time"

type CourseDescription struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	SavedAt             time.Time          `json:"savedAt"`
	Metadata            GenerationMetadata `json:"metadata"`
	Title               string             `json:"title"`
	ShortDescription    string             `json:"shortDescription"`
	DetailedDescription string             `json:"detailedDescription"`
	LearningObjectives  []string           `json:"learningObjectives"`
	Prerequisites       []string           `json:"prerequisites"`
	TargetAudience      string             `json:"targetAudience"`
	DurationEstimate    string             `json:"durationEstimate"`
	DifficultyLevel     string             `json:"difficultyLevel"`
	KeyTopics           []string           `json:"keyTopics"`
	SkillsGained        []string           `json:"skillsGained"`
	Tags                []string           `json:"tags"`
}

func (c CourseDescription) ArtifactID() string { return c.ID }

type DescriptionOptions struct {
	CourseTitle          string   `json:"courseTitle,omitempty"`
	Audience             string   `json:"audience,omitempty"`
	Tone                 string   `json:"tone,omitempty"`   // professional | casual | academic | inspiring
	Length               string   `json:"length,omitempty"` // short | medium | long
	IncludeObjectives    bool     `json:"includeObjectives"`
	IncludePrerequisites bool     `json:"includePrerequisites"`
	FocusKeywords        []string `json:"focusKeywords,omitempty"`
}
