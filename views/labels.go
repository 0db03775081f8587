package views

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleLabels returns labels in title case for the given language.
func TitleLabels(tag language.Tag, labels ...string) []string {
	c := cases.Title(tag)
	out := make([]string, len(labels))
	for i, s := range labels {
		out[i] = c.String(s)
	}
	return out
}
