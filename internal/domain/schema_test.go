package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestValidateSubmission_Valid(t *testing.T) {
	raw := decode(t, `{
		"title": "Go memory model",
		"sourceType": "web",
		"description": "notes",
		"keywords": ["go", "memory"],
		"content": {"rawText": "body", "structuredData": {"lang": "en"}}
	}`)

	article, err := ValidateSubmission(raw)

	require.NoError(t, err)
	assert.Equal(t, "Go memory model", article.Title)
	assert.Equal(t, "web", article.SourceType)
	assert.Equal(t, "notes", article.Description)
	assert.Equal(t, "body", article.RawText)
	assert.Equal(t, map[string]any{"lang": "en"}, article.StructuredData)
	assert.Equal(t, []any{"go", "memory"}, article.KeywordList())
}

func TestValidateSubmission_Defaults(t *testing.T) {
	raw := decode(t, `{"title": "t", "sourceType": "pdf", "content": {"rawText": null}}`)

	article, err := ValidateSubmission(raw)

	require.NoError(t, err)
	assert.Equal(t, "", article.Description)
	assert.Equal(t, "", article.RawText)
	assert.Equal(t, map[string]any{}, article.StructuredData)
	assert.Equal(t, []any{}, article.KeywordList())
}

func TestValidateSubmission_NullKeywordsTreatedAsAbsent(t *testing.T) {
	raw := decode(t, `{"title": "t", "sourceType": "pdf", "keywords": null, "content": {"rawText": ""}}`)

	article, err := ValidateSubmission(raw)

	require.NoError(t, err)
	assert.Equal(t, []any{}, article.KeywordList())
}

func TestValidateSubmission_NonSequenceKeywordsAccepted(t *testing.T) {
	raw := decode(t, `{"title": "t", "sourceType": "pdf", "keywords": "go", "content": {"rawText": ""}}`)

	article, err := ValidateSubmission(raw)

	require.NoError(t, err)
	assert.Equal(t, "go", article.Keywords)
	assert.Equal(t, []any{}, article.KeywordList())
}

func TestValidateSubmission_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		field   string
		reason  ValidationReason
		message string
	}{
		{
			name:    "missing title",
			body:    `{"sourceType": "web", "content": {"rawText": ""}}`,
			field:   "title",
			reason:  ReasonMissingField,
			message: "Missing required field: title",
		},
		{
			name:    "missing sourceType",
			body:    `{"title": "t", "content": {"rawText": ""}}`,
			field:   "sourceType",
			reason:  ReasonMissingField,
			message: "Missing required field: sourceType",
		},
		{
			name:    "missing content",
			body:    `{"title": "t", "sourceType": "web"}`,
			field:   "content",
			reason:  ReasonMissingField,
			message: "Missing required field: content",
		},
		{
			name:    "title reported before content",
			body:    `{"sourceType": "web"}`,
			field:   "title",
			reason:  ReasonMissingField,
			message: "Missing required field: title",
		},
		{
			name:    "content is a string",
			body:    `{"title": "t", "sourceType": "web", "content": "text"}`,
			field:   "content",
			reason:  ReasonMalformedContent,
			message: "Field 'content' must be an object with a 'rawText' key",
		},
		{
			name:    "content lacks rawText",
			body:    `{"title": "t", "sourceType": "web", "content": {"structuredData": {}}}`,
			field:   "content",
			reason:  ReasonMalformedContent,
			message: "Field 'content' must be an object with a 'rawText' key",
		},
		{
			name:    "blank title",
			body:    `{"title": "   ", "sourceType": "web", "content": {"rawText": ""}}`,
			field:   "title",
			reason:  ReasonEmptyTitle,
			message: "Field 'title' must not be empty",
		},
		{
			name:    "numeric title",
			body:    `{"title": 42, "sourceType": "web", "content": {"rawText": ""}}`,
			field:   "title",
			reason:  ReasonInvalidType,
			message: "Field 'title' must be a string",
		},
		{
			name:    "structuredData is a list",
			body:    `{"title": "t", "sourceType": "web", "content": {"rawText": "", "structuredData": []}}`,
			field:   "structuredData",
			reason:  ReasonInvalidType,
			message: "Field 'structuredData' must be an object",
		},
		{
			name:   "array body",
			body:   `[1, 2]`,
			reason: ReasonInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			article, err := ValidateSubmission(decode(t, tt.body))

			assert.Nil(t, article)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.reason, verr.Reason)
			if tt.message != "" {
				assert.Equal(t, tt.message, verr.Message)
			}
		})
	}
}

func TestValidateSubmission_Nil(t *testing.T) {
	_, err := ValidateSubmission(nil)
	assert.ErrorIs(t, err, ErrValidation)
}
