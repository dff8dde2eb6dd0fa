package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	descriptionPolicyOnce sync.Once
	descriptionPolicy     *bluemonday.Policy
)

// Text escapes operator-supplied plain-text values (names, codes shown in
// the UI) so stored data never carries markup.
func Text(input string) string {
	return html.EscapeString(strings.TrimSpace(input))
}

func TextPtr(input *string) *string {
	if input == nil {
		return nil
	}
	value := Text(*input)
	if value == "" {
		return nil
	}
	return &value
}

// Markdown strips everything outside a small formatting subset from rich
// description fields.
func Markdown(input string) string {
	value := strings.TrimSpace(input)
	if value == "" {
		return ""
	}
	return getDescriptionPolicy().Sanitize(value)
}

func MarkdownPtr(input *string) *string {
	if input == nil {
		return nil
	}
	value := Markdown(*input)
	if value == "" {
		return nil
	}
	return &value
}

func getDescriptionPolicy() *bluemonday.Policy {
	descriptionPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements("b", "i", "em", "strong", "code", "p", "br", "ul", "ol", "li")
		descriptionPolicy = policy
	})
	return descriptionPolicy
}
