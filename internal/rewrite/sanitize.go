package rewrite

import "strings"

const (
	codeFence   = "```"
	languageTag = "python"
)

// Sanitize removes markdown code-fence artifacts from a model answer.
//
// The answer is trimmed.  If it opens with a fence, backticks are stripped
// from both ends and a leading "python" tag, if any, is removed and the rest
// re-trimmed.  Other language tags are left in place.  A closing fence with no
// opening fence is stripped too, so neither end ever keeps a fence.
func Sanitize(raw string) string {
	text := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(text, codeFence):
		text = strings.Trim(text, "`")
		if strings.HasPrefix(text, languageTag) {
			text = strings.TrimSpace(strings.TrimPrefix(text, languageTag))
		}
	case strings.HasSuffix(text, codeFence):
		text = strings.TrimRight(text, "`")
	}
	return text
}
