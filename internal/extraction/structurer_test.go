package extraction

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/localnerve/recipe-journal/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecipeJSON(t *testing.T) {
	r, err := ParseRecipeJSON("```json\n{\"title\":\"된장찌개\",\"difficulty\":\"EASY\",\"servings\":2,\"ingredients\":[{\"name\":\"된장\",\"amount\":2,\"unit\":\"큰술\"},{\"name\":\"소금\",\"amount\":null,\"unit\":\"\"}],\"steps\":[]}\n```")
	require.NoError(t, err)
	assert.Equal(t, "된장찌개", r.Title)
	require.Len(t, r.Ingredients, 2)
	require.NotNil(t, r.Ingredients[0].Amount)
	assert.Equal(t, 2.0, *r.Ingredients[0].Amount)
	assert.Nil(t, r.Ingredients[1].Amount)

	for _, bad := range []string{"", "```json\n```", "not json", `{"title": 3}`} {
		_, err := ParseRecipeJSON(bad)
		require.Error(t, err, bad)
		assert.Equal(t, KindUpstream, KindOf(err), bad)
	}
}

func TestLLMStructurer(t *testing.T) {
	var req llm.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(llm.ChatCompletionResponse{
			Choices: []llm.Choice{{Message: llm.Message{Role: "assistant", Content: `{"title":"Stew","difficulty":"HARD","servings":4,"ingredients":[],"steps":[{"step_order":1,"instruction":"Boil","timer_seconds":600}]}`}}},
		})
	}))
	defer srv.Close()

	s := &LLMStructurer{Client: llm.NewClient(llm.Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "m"}, srv.Client(), nil)}
	require.True(t, s.Configured())

	r, err := s.Structure(t.Context(), "boil some stew")
	require.NoError(t, err)
	assert.Equal(t, "Stew", r.Title)
	assert.Equal(t, 600, r.Steps[0].TimerSeconds)

	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, "recipe", req.ResponseFormat.JSONSchema.Name)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "boil some stew", req.Messages[1].Content)
}

func TestLLMStructurerFailures(t *testing.T) {
	s := &LLMStructurer{Client: llm.NewClient(llm.Config{}, http.DefaultClient, nil)}
	assert.False(t, s.Configured())
	_, err := s.Structure(t.Context(), "text")
	assert.Equal(t, KindConfig, KindOf(err))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s = &LLMStructurer{Client: llm.NewClient(llm.Config{APIKey: "k", BaseURL: srv.URL, Model: "m"}, srv.Client(), nil)}
	_, err = s.Structure(t.Context(), "text")
	require.Error(t, err)
	assert.Equal(t, KindUpstream, KindOf(err))
	var status *llm.StatusError
	assert.ErrorAs(t, err, &status)
}
