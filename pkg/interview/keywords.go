package interview

import "strings"

// keywordVocabulary is the fixed tag vocabulary for the fallback path. List
// order defines tag priority when several tags match an answer.
var keywordVocabulary = []string{
	"javascript", "react", "angular", "vue", "node", "express",
	"python", "java", "c#", "go", "ruby", "php",
	"frontend", "backend", "fullstack", "database", "sql", "nosql",
	"testing", "devops", "agile", "scrum", "aws", "azure", "cloud",
	"architecture", "design", "mobile", "web", "api",
}

// ExtractKeywords returns the vocabulary tags found in the answer, in
// vocabulary priority order. Matching is a case-insensitive substring check.
func ExtractKeywords(answer string) []string {
	text := strings.ToLower(answer)

	var tags []string
	for _, keyword := range keywordVocabulary {
		if strings.Contains(text, keyword) {
			tags = append(tags, keyword)
		}
	}
	return tags
}
