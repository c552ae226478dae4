package domain

import "strings"

var requiredFields = []string{"title", "sourceType", "content"}

// ValidateSubmission checks a decoded JSON body against the article schema
// and returns the article with defaults applied. The first violation found
// is returned as a *ValidationError.
func ValidateSubmission(raw any) (*Article, error) {
	data, ok := raw.(map[string]any)
	if !ok {
		return nil, &ValidationError{
			Reason:  ReasonInvalidPayload,
			Message: "Request body must be a JSON object",
		}
	}

	for _, field := range requiredFields {
		if _, present := data[field]; !present {
			return nil, missingField(field)
		}
	}

	content, ok := data["content"].(map[string]any)
	if !ok {
		return nil, malformedContent()
	}
	if _, present := content["rawText"]; !present {
		return nil, malformedContent()
	}

	title, ok := data["title"].(string)
	if !ok {
		return nil, invalidType("title", "a string")
	}
	if strings.TrimSpace(title) == "" {
		return nil, &ValidationError{
			Field:   "title",
			Reason:  ReasonEmptyTitle,
			Message: "Field 'title' must not be empty",
		}
	}

	sourceType, ok := data["sourceType"].(string)
	if !ok {
		return nil, invalidType("sourceType", "a string")
	}

	description, err := optionalString(data, "description")
	if err != nil {
		return nil, err
	}

	rawText, err := optionalString(content, "rawText")
	if err != nil {
		return nil, err
	}

	structured := map[string]any{}
	if v, present := content["structuredData"]; present && v != nil {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, invalidType("structuredData", "an object")
		}
		structured = m
	}

	keywords := data["keywords"]
	if keywords == nil {
		keywords = []any{}
	}

	return &Article{
		Title:          title,
		SourceType:     sourceType,
		Description:    description,
		RawText:        rawText,
		StructuredData: structured,
		Keywords:       keywords,
	}, nil
}

func optionalString(obj map[string]any, field string) (string, error) {
	v, present := obj[field]
	if !present || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", invalidType(field, "a string")
	}
	return s, nil
}

func malformedContent() *ValidationError {
	return &ValidationError{
		Field:   "content",
		Reason:  ReasonMalformedContent,
		Message: "Field 'content' must be an object with a 'rawText' key",
	}
}
