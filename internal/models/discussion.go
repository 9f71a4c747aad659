package models

import "time"

type DiscussionType string

const (
	DiscussionCriticalThinking DiscussionType = "critical_thinking"
	DiscussionApplication      DiscussionType = "application"
	DiscussionDebate           DiscussionType = "debate"
	DiscussionReflection       DiscussionType = "reflection"
	DiscussionCaseStudy        DiscussionType = "case_study"
)

func (t DiscussionType) Valid() bool {
	switch t {
	case DiscussionCriticalThinking, DiscussionApplication, DiscussionDebate,
		DiscussionReflection, DiscussionCaseStudy:
		return true
	}
	return false
}

type DiscussionSeed struct {
	Question  string         `json:"question"`
	Type      DiscussionType `json:"type"`
	Context   string         `json:"context"`
	FollowUps []string       `json:"followUps"`
	Tags      []string       `json:"tags"`
}

type DiscussionSet struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	SavedAt         time.Time          `json:"savedAt"`
	Metadata        GenerationMetadata `json:"metadata"`
	DiscussionSeeds []DiscussionSeed   `json:"discussionSeeds"`
}

func (d DiscussionSet) ArtifactID() string { return d.ID }

type DiscussionOptions struct {
	QuestionCount    int              `json:"questionCount"`
	DiscussionTypes  []DiscussionType `json:"discussionTypes"`
	Audience         string           `json:"audience,omitempty"`
	Depth            string           `json:"depth,omitempty"` // surface | moderate | deep
	IncludeFollowUps bool             `json:"includeFollowUps"`
}
