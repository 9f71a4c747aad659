package services

import (
	"fmt"
	"strings"

	"coursegen-backend/internal/models"
)

const quizSystemPrompt = `You are an expert educational assessor who writes quiz questions from lecture transcripts.
Return ONLY a valid JSON object. No preamble, no markdown, no backticks.

The object has exactly one field, "questions", an array. Each element is one of:
{"type": "multiple_choice", "question": "string", "options": ["string","string","string","string"], "correct": 0-3, "difficulty": "easy"|"medium"|"hard", "topic": "string", "explanation": "string"}
{"type": "true_false", "question": "string", "correct": true|false, "difficulty": "easy"|"medium"|"hard", "topic": "string", "explanation": "string"}
{"type": "short_answer", "question": "string", "sampleAnswer": "string", "keyPoints": ["string"], "difficulty": "easy"|"medium"|"hard", "topic": "string", "explanation": "string"}

multiple_choice questions have exactly 4 options and "correct" is the zero-based index of the right one.`

const discussionSystemPrompt = `You are an experienced instructor who designs discussion prompts for online courses.
Return ONLY a valid JSON object. No preamble, no markdown, no backticks.

The object has exactly one field, "discussionSeeds", an array. Each element is:
{"question": "string", "type": "critical_thinking"|"application"|"debate"|"reflection"|"case_study", "context": "string", "followUps": ["string"], "tags": ["string"]}`

const descriptionSystemPrompt = `You are an instructional designer who writes course catalogue copy.
Return ONLY a valid JSON object. No preamble, no markdown, no backticks.

The object has these fields:
{"title": "string", "shortDescription": "string", "detailedDescription": "string", "learningObjectives": ["string"], "prerequisites": ["string"], "targetAudience": "string", "durationEstimate": "string", "difficultyLevel": "string", "keyTopics": ["string"], "skillsGained": ["string"], "tags": ["string"]}`

func writeTranscript(b *strings.Builder, transcript string) {
	b.WriteString("\n---TRANSCRIPT---\n")
	b.WriteString(transcript)
	b.WriteString("\n---END---\n")
}

func buildQuizPrompt(opts models.QuizOptions, transcript string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Generate exactly %d quiz questions from the transcript below.\n", opts.QuestionCount))

	kinds := make([]string, len(opts.QuestionTypes))
	for i, k := range opts.QuestionTypes {
		kinds[i] = string(k)
	}
	b.WriteString(fmt.Sprintf("Allowed question types: %s.\n", strings.Join(kinds, ", ")))

	switch opts.Difficulty {
	case "easy":
		b.WriteString("Difficulty: easy. Direct recall of facts stated in the transcript.\n")
	case "medium":
		b.WriteString("Difficulty: medium. Application of the concepts explained.\n")
	case "hard":
		b.WriteString("Difficulty: hard. Analysis or inference beyond what is explicitly stated.\n")
	default:
		b.WriteString("Difficulty: mixed. Spread questions across easy, medium and hard.\n")
	}

	if opts.FocusArea != "" {
		b.WriteString(fmt.Sprintf("Focus on: %s.\n", opts.FocusArea))
	}
	if opts.IncludeExplanations {
		b.WriteString("Give every question a one or two sentence explanation of the correct answer.\n")
	} else {
		b.WriteString("Leave \"explanation\" as an empty string.\n")
	}

	writeTranscript(&b, transcript)
	return b.String()
}

func buildDiscussionPrompt(opts models.DiscussionOptions, transcript string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Write exactly %d discussion prompts based on the transcript below.\n", opts.QuestionCount))

	types := make([]string, len(opts.DiscussionTypes))
	for i, t := range opts.DiscussionTypes {
		types[i] = string(t)
	}
	b.WriteString(fmt.Sprintf("Use these discussion types: %s.\n", strings.Join(types, ", ")))
	b.WriteString(fmt.Sprintf("Audience: %s.\n", opts.Audience))

	switch opts.Depth {
	case "surface":
		b.WriteString("Depth: surface. Prompts should check understanding and invite personal reactions.\n")
	case "deep":
		b.WriteString("Depth: deep. Prompts should push learners to challenge assumptions and connect ideas across domains.\n")
	default:
		b.WriteString("Depth: moderate. Prompts should ask learners to apply and compare ideas.\n")
	}

	if opts.IncludeFollowUps {
		b.WriteString("Give each prompt 2 or 3 follow-up questions.\n")
	} else {
		b.WriteString("Leave \"followUps\" as an empty array.\n")
	}

	writeTranscript(&b, transcript)
	return b.String()
}

var descriptionLengths = map[string]string{
	"short":  "Keep the detailed description to one paragraph of about 80 words.",
	"medium": "Keep the detailed description to two or three paragraphs of about 200 words in total.",
	"long":   "Write a detailed description of four or five paragraphs, about 400 words in total.",
}

func buildDescriptionPrompt(opts models.DescriptionOptions, transcript string) string {
	var b strings.Builder

	b.WriteString("Write a course description for the course this lecture belongs to.\n")
	if opts.CourseTitle != "" {
		b.WriteString(fmt.Sprintf("Working title: %s.\n", opts.CourseTitle))
	}
	b.WriteString(fmt.Sprintf("Audience: %s.\n", opts.Audience))
	b.WriteString(fmt.Sprintf("Tone: %s.\n", opts.Tone))
	b.WriteString(descriptionLengths[opts.Length] + "\n")

	if opts.IncludeObjectives {
		b.WriteString("List 4 to 6 measurable learning objectives.\n")
	} else {
		b.WriteString("Leave \"learningObjectives\" as an empty array.\n")
	}
	if opts.IncludePrerequisites {
		b.WriteString("List the prerequisites a learner should have.\n")
	} else {
		b.WriteString("Leave \"prerequisites\" as an empty array.\n")
	}
	if len(opts.FocusKeywords) > 0 {
		b.WriteString(fmt.Sprintf("Work these keywords in naturally: %s.\n", strings.Join(opts.FocusKeywords, ", ")))
	}

	writeTranscript(&b, transcript)
	return b.String()
}
