package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/terra-clan/ats-engine/internal/models"
)

// BuildAnalysisPrompt builds the evaluation request for one resume
func BuildAnalysisPrompt(resumeText, jobDescription string, criteria []models.Criterion) string {
	var b strings.Builder

	b.WriteString("You are an expert recruiter evaluating a resume against a job.\n")
	b.WriteString("Score the resume on every criterion below using evidence found in the resume.\n\n")

	b.WriteString("JOB DESCRIPTION:\n")
	b.WriteString(strings.TrimSpace(jobDescription))
	b.WriteString("\n\n")

	b.WriteString("SCORING CRITERIA:\n")
	for _, c := range criteria {
		fmt.Fprintf(&b, "- %s (%d%%)\n", c.Name, c.Weight)
	}
	b.WriteString("\n")

	b.WriteString("RESUME TEXT:\n")
	b.WriteString(resumeText)
	b.WriteString("\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- Ground every criterion score in concrete evidence from the resume and relate it to the job description.\n")
	b.WriteString("- Give every listed criterion a number from 0 to 10. Use the criterion names exactly as written above as the keys of \"scores\". Never omit a criterion.\n")
	b.WriteString("- Do not default scores to a neutral 5 and do not give every criterion the same score. Use low scores when evidence is absent.\n")
	b.WriteString("- For education, judge how relevant the field of study is to the role.\n")
	b.WriteString("- For skills and tools, accept equivalents and synonyms of the requested tools.\n")
	b.WriteString("- For experience, weigh both duration and relevance to the job duties.\n")
	b.WriteString("- Return exactly 5 highlights, each a short, specific strength of the candidate.\n")
	b.WriteString("- Respond with JSON only. No markdown fences, no commentary.\n\n")

	b.WriteString("Respond with JSON in exactly this structure:\n")
	b.WriteString("{\n")
	b.WriteString("  \"score\": 0,\n")
	b.WriteString("  \"scores\": {\n")
	for i, c := range criteria {
		key, _ := json.Marshal(c.Name)
		b.WriteString("    ")
		b.Write(key)
		b.WriteString(": 0")
		if i < len(criteria)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("  },\n")
	b.WriteString("  \"summary\": \"Concise explanation of the candidate's fit against the criteria.\",\n")
	b.WriteString("  \"highlights\": [\"strength 1\", \"strength 2\", \"strength 3\", \"strength 4\", \"strength 5\"]\n")
	b.WriteString("}\n")

	return b.String()
}

// BuildIdentityPrompt builds the contact extraction request
func BuildIdentityPrompt(resumeText string) string {
	var b strings.Builder

	b.WriteString("Extract the candidate's contact information from this resume.\n\n")
	b.WriteString("RESUME:\n")
	b.WriteString(resumeText)
	b.WriteString("\n\n")
	b.WriteString("Respond with JSON only, in this format:\n")
	b.WriteString("{\"name\": \"Full Name\", \"email\": \"email@example.com\", \"phone\": \"+1 234-567-8900\"}\n")
	b.WriteString("Use an empty string for any field that is not present.\n")

	return b.String()
}
