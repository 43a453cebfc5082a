package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/localnerve/recipe-journal/internal/llm"
)

// Structurer turns free recipe text into a structured Recipe
type Structurer interface {
	Configured() bool
	Structure(ctx context.Context, text string) (*Recipe, error)
}

const systemPrompt = `You convert recipe text (a web page or a video transcript) into structured data.
Return only JSON matching the schema.
- title: the dish name.
- difficulty: EASY, MEDIUM or HARD.
- servings: integer number of servings, 1 when unknown.
- ingredients: every ingredient with name, numeric amount (null when not expressible as a number) and unit (empty string when none).
- steps: the cooking steps in order with 1-based step_order, the instruction, and timer_seconds for any waiting or cooking time the step implies (0 when none).
Write values in the language of the source text.`

var recipeSchema = json.RawMessage(`{
  "type": "object",
  "additionalProperties": false,
  "required": ["title", "difficulty", "servings", "ingredients", "steps"],
  "properties": {
    "title": {"type": "string"},
    "difficulty": {"type": "string", "enum": ["EASY", "MEDIUM", "HARD"]},
    "servings": {"type": "integer"},
    "ingredients": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["name", "amount", "unit"],
        "properties": {
          "name": {"type": "string"},
          "amount": {"type": ["number", "null"]},
          "unit": {"type": "string"}
        }
      }
    },
    "steps": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["step_order", "instruction", "timer_seconds"],
        "properties": {
          "step_order": {"type": "integer"},
          "instruction": {"type": "string"},
          "timer_seconds": {"type": "integer"}
        }
      }
    }
  }
}`)

// LLMStructurer structures text with a chat-completions model
type LLMStructurer struct {
	Client *llm.Client
}

// Configured reports whether the model credential is present
func (s *LLMStructurer) Configured() bool {
	return s.Client != nil && s.Client.Configured()
}

// Structure implements Structurer
func (s *LLMStructurer) Structure(ctx context.Context, text string) (*Recipe, error) {
	if !s.Configured() {
		return nil, configError(MsgNotConfigured, llm.ErrNotConfigured)
	}

	content, err := s.Client.CompleteJSON(ctx, systemPrompt, text, &llm.JSONSchema{
		Name:   "recipe",
		Strict: true,
		Schema: recipeSchema,
	})
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			return nil, upstreamError(MsgModelInvalidOutput, err)
		}
		return nil, upstreamError(MsgModelFailed, err)
	}

	return ParseRecipeJSON(content)
}

// ParseRecipeJSON decodes model output, tolerating a surrounding code fence
func ParseRecipeJSON(content string) (*Recipe, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, upstreamError(MsgModelInvalidOutput, llm.ErrEmptyResponse)
	}

	var r Recipe
	if err := json.Unmarshal([]byte(content), &r); err != nil {
		return nil, upstreamError(MsgModelInvalidOutput, err)
	}
	return &r, nil
}
