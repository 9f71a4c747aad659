package models

// VideoBucket is everything the store keeps for one video id.
type VideoBucket struct {
	Transcript       *TranscriptRecord   `json:"transcript,omitempty"`
	TranscriptStatus TranscriptStatus    `json:"transcriptStatus,omitempty"`
	TranscriptError  string              `json:"transcriptError,omitempty"`
	Quizzes          []Quiz              `json:"quizzes"`
	Discussions      []DiscussionSet     `json:"discussions"`
	Descriptions     []CourseDescription `json:"descriptions"`
}

type StoreStats struct {
	Videos          int `json:"videos"`
	Transcripts     int `json:"transcripts"`
	Quizzes         int `json:"quizzes"`
	Questions       int `json:"questions"`
	Discussions     int `json:"discussions"`
	DiscussionSeeds int `json:"discussionSeeds"`
	Descriptions    int `json:"descriptions"`
}

type GenerateQuizRequest struct {
	VideoID string      `json:"video_id"`
	Options QuizOptions `json:"options"`
}

type GenerateDiscussionRequest struct {
	VideoID string            `json:"video_id"`
	Options DiscussionOptions `json:"options"`
}

type GenerateDescriptionRequest struct {
	VideoID string             `json:"video_id"`
	Options DescriptionOptions `json:"options"`
}
