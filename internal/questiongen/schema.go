package questiongen

import "github.com/abhisek/mockprep/internal/llm"

// MaxBatch is the most questions one request may ask for.
const MaxBatch = 10

// QuestionSetSchema defines the JSON schema of a generation response.
var QuestionSetSchema = &llm.Schema{
	Name:        "interview-questions",
	Description: "A batch of interview questions with the points a strong answer covers",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"maxItems": MaxBatch,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text": map[string]any{
							"type":        "string",
							"description": "The question as the interviewer would ask it",
						},
						"category": map[string]any{
							"type":        "string",
							"description": "Short topic label, e.g. databases or teamwork",
						},
						"required_skills": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Lower-case skill names the question exercises",
						},
						"must_mention": map[string]any{
							"type":        "array",
							"description": "Terms a complete answer must contain",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"term": map[string]any{"type": "string"},
									"category": map[string]any{
										"type":        "string",
										"description": "technical for domain terms, otherwise a short aspect label such as situation or result",
									},
								},
								"required":             []any{"term", "category"},
								"additionalProperties": false,
							},
						},
						"bonus": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Optional terms that show depth",
						},
						"sample_answer": map[string]any{
							"type":        "string",
							"description": "A concise model answer",
						},
					},
					"required":             []any{"text", "category", "required_skills", "must_mention", "bonus", "sample_answer"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// questionSetOutput is the raw LLM response before validation.
type questionSetOutput struct {
	Questions []questionOutput `json:"questions"`
}

type questionOutput struct {
	Text           string       `json:"text"`
	Category       string       `json:"category"`
	RequiredSkills []string     `json:"required_skills"`
	MustMention    []termOutput `json:"must_mention"`
	Bonus          []string     `json:"bonus"`
	SampleAnswer   string       `json:"sample_answer"`
}

type termOutput struct {
	Term     string `json:"term"`
	Category string `json:"category"`
}
