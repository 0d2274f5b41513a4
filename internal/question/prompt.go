package question

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a quiz question generator for AI and Machine Learning topics.
Generate a multiple-choice question with exactly 4 options.
Format the response as a valid JSON object with the following structure:
{
  "text": "question text",
  "options": ["option1", "option2", "option3", "option4"],
  "correctAnswer": "correct option"
}
Make sure the response is ONLY the JSON object, with no additional text.`

// userPrompt renders the per-request instruction, including the recently
// asked questions the backend must not repeat.
func userPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a %s difficulty question.", req.Difficulty)

	if len(req.PriorQuestions) > 0 {
		b.WriteString("\nDo not repeat any of these recently asked questions:")
		for _, q := range req.PriorQuestions {
			b.WriteString("\n- ")
			b.WriteString(q)
		}
	}

	return b.String()
}
