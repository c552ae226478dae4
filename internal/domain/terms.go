package domain

import "strings"

// ExtractTerms turns a raw keywords value into the distinct dictionary
// terms to stage. Entries are trimmed; blanks and non-strings are dropped;
// the first occurrence of each trimmed value wins. Case is kept as given.
func ExtractTerms(keywords any) []string {
	var list []any
	switch v := keywords.(type) {
	case []any:
		list = v
	case []string:
		list = make([]any, len(v))
		for i, s := range v {
			list[i] = s
		}
	default:
		return []string{}
	}

	terms := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			continue
		}
		term := strings.TrimSpace(s)
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms
}
