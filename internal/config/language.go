package config

import (
	"fmt"

	"github.com/src-d/enry/v2"
)

// CheckLanguage compares name with the linguist language names GitHub reports.
// Matching during a crawl is exact and case-sensitive, so a name that is
// unknown, or only an alias of a canonical name, will match nothing. The
// returned warning is empty when name is canonical.
func CheckLanguage(name string) (canonical string, warning string) {
	lang, ok := enry.GetLanguageByAlias(name)
	if !ok {
		return name, fmt.Sprintf("language %q is not a known linguist language; no repository may match", name)
	}
	if lang != name {
		return lang, fmt.Sprintf("language %q will not match GitHub's %q (matching is case-sensitive)", name, lang)
	}
	return lang, ""
}
