package crawler

import "strings"

// AutoSkipReason is the log message recorded when a title is dropped by
// the keyword skip list.
const AutoSkipReason = "Auto-skipped: title contains excluded keyword"

// SkipTitleKeywords lists title substrings for roles the pipeline does
// not collect. Matching is case-insensitive.
var SkipTitleKeywords = []string{
	"manager",
	"director",
	"head of",
	"consultant",
	"trader",
	"auditor",
	"analyst",
	"psychometrician",
	"intern",
	"junior",
	"new graduate",
	"artist",
	"scientist",
	"quantitative",
	"r&d",
	"c++",
	"administrator",
	"concepteur",
}

// ShouldSkipTitle reports whether a job title matches the skip list.
func ShouldSkipTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range SkipTitleKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
