package ollama

import (
	"fmt"
	"strings"
)

const transcriptionPrompt = "Transcribe all text visible in this image. " +
	"Preserve the reading order and layout as well as you can. " +
	"Return only the transcribed text, nothing else."

func buildAnalysisPrompt(question, documentContext string) string {
	var b strings.Builder
	b.WriteString("You are a sales-intelligence assistant. Analyze the documents below and answer strictly as a single JSON object with the string fields ")
	b.WriteString(`"summary", "pain_points", "talking_points", "objections" and "next_steps".`)
	b.WriteString("\n\n")
	if strings.TrimSpace(documentContext) != "" {
		fmt.Fprintf(&b, "Documents:\n%s\n\n", documentContext)
	}
	fmt.Fprintf(&b, "Question: %s\n", question)
	return b.String()
}
