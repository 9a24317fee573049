package activity

import (
	"path"

	"github.com/src-d/enry/v2"
)

// OtherLanguage collects vendored files and files enry cannot classify.
const OtherLanguage = "Other"

// DetectLanguages counts files per language using their names only.
func DetectLanguages(files []string) map[string]int {
	counts := make(map[string]int)

	for _, name := range files {
		counts[languageOf(name)]++
	}

	return counts
}

func languageOf(name string) string {
	if enry.IsVendor(name) {
		return OtherLanguage
	}

	lang := enry.GetLanguage(path.Base(name), nil)
	if lang == "" {
		return OtherLanguage
	}

	return lang
}
