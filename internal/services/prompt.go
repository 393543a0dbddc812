package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/cv-project/internal/models"
)

const translationSystemPrompt = "You are a professional translator. Translate the CV content accurately " +
	"while maintaining the professional tone and structure."

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildTranslationPrompt embeds the five translatable CV fields and asks for a JSON object back.
func (pb *PromptBuilder) BuildTranslationPrompt(cv *models.CV, languageName string) string {
	return fmt.Sprintf(`Please translate the following CV content into %s.
Return the result as a JSON object with the following structure:

{
  "name": "translated name",
  "bio": "translated bio",
  "skills": "translated skills",
  "projects": "translated projects",
  "contacts": "translated contacts"
}

CV Content to translate:
Name: %s
Bio: %s
Skills: %s
Projects: %s
Contacts: %s

Please ensure the translation maintains the professional tone and structure of the original CV.`,
		languageName, cv.FullName(), cv.Bio, cv.Skills, cv.Projects, cv.Contacts)
}

// BuildIndexDocument flattens a CV into the text that is chunked and embedded for search.
func (pb *PromptBuilder) BuildIndexDocument(cv *models.CV) string {
	sections := []string{
		cv.FullName(),
		"Bio: " + strings.TrimSpace(cv.Bio),
		"Skills: " + strings.TrimSpace(cv.Skills),
		"Projects: " + strings.TrimSpace(cv.Projects),
	}
	return strings.Join(sections, "\n\n")
}

// extractJSON strips markdown fences and anything around the outermost JSON value.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	endObj := strings.LastIndex(text, "}")
	if startObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	startArr := strings.Index(text, "[")
	endArr := strings.LastIndex(text, "]")
	if startArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return strings.TrimSpace(text)
}
