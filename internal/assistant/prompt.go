package assistant

import (
	"fmt"
	"strings"

	"github.com/askcampus/askcampus/internal/record"
)

// maxHistoryTurns bounds how many past exchanges go into the prompt.
// Older context costs tokens without improving answers to campus
// questions, which are mostly self-contained.
const maxHistoryTurns = 10

var modeInstructions = map[string]string{
	record.ModeChat:     "Answer conversationally and keep responses friendly and concise.",
	record.ModeQA:       "Answer factually and directly. Cite the relevant campus information when it is available. Say so plainly when you do not know.",
	record.ModeAnalysis: "Answer with a structured, step-by-step analysis. Break the question down before concluding.",
}

var languageNames = map[string]string{
	"en":    "English",
	"zh-TW": "Traditional Chinese",
	"zh-CN": "Simplified Chinese",
	"ja":    "Japanese",
	"ko":    "Korean",
	"es":    "Spanish",
	"fr":    "French",
	"de":    "German",
	"vi":    "Vietnamese",
	"id":    "Indonesian",
	"th":    "Thai",
}

// buildSystemInstruction assembles the system prompt from the mode
// rules, the target language, and the campus knowledge base.
func buildSystemInstruction(mode, language, knowledgeContext string) string {
	var sb strings.Builder

	sb.WriteString("You are a helpful assistant for college students. ")
	sb.WriteString("You answer questions about campus life, facilities, schedules, and services.\n\n")

	if instruction, ok := modeInstructions[mode]; ok {
		sb.WriteString(instruction)
		sb.WriteString("\n")
	}

	name := languageNames[language]
	if name == "" {
		name = language
	}
	fmt.Fprintf(&sb, "Respond in %s.\n", name)

	if knowledgeContext != "" {
		sb.WriteString("\nCampus information:\n")
		sb.WriteString(knowledgeContext)
		sb.WriteString("\n")
	}

	return sb.String()
}

// buildPrompt renders the recent history followed by the new question.
func buildPrompt(history []record.Record, question string) string {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	var sb strings.Builder
	if len(history) > 0 {
		sb.WriteString("Previous conversation:\n")
		for _, rec := range history {
			fmt.Fprintf(&sb, "Student: %s\nAssistant: %s\n", rec.Prompt, rec.Response)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Student: %s", question)
	return sb.String()
}
