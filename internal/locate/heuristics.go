package locate

import "strings"

// auxiliaryTitlePhrases mark guide, policy, and reference-tab pages that
// never carry a downloadable document.
var auxiliaryTitlePhrases = []string{
	"chính sách mới",
	"hướng dẫn",
	"chính sách",
	"vb liên quan",
	"thuộc tính",
	"vb được hợp nhất",
}

var (
	notFoundTitleMarkers = []string{
		"404",
		"không tìm thấy",
		"page not found",
		"not found",
	}
	notFoundBodyMarkers = []string{
		"không tìm thấy trang",
		"url không tồn tại",
	}
)

// IsAuxiliaryPage reports whether a work item points at an article, guide,
// or reference page where finding no artifact is expected rather than an
// error.
func IsAuxiliaryPage(sourceURL, title string) bool {
	if strings.Contains(strings.ToLower(sourceURL), "-article.html") {
		return true
	}
	lowerTitle := strings.ToLower(title)
	for _, phrase := range auxiliaryTitlePhrases {
		if strings.Contains(lowerTitle, phrase) {
			return true
		}
	}
	return false
}

// IsNotFoundPage reports whether a loaded page is the site's missing-page
// response, checked before any locate attempt.
func IsNotFoundPage(pageTitle, pageSource string) bool {
	lowerTitle := strings.ToLower(pageTitle)
	for _, marker := range notFoundTitleMarkers {
		if strings.Contains(lowerTitle, marker) {
			return true
		}
	}
	lowerSource := strings.ToLower(pageSource)
	for _, marker := range notFoundBodyMarkers {
		if strings.Contains(lowerSource, marker) {
			return true
		}
	}
	return false
}
