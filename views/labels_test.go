package views

import (
	"slices"
	"testing"

	"golang.org/x/text/language"
)

func TestTitleLabels(t *testing.T) {
	got := TitleLabels(language.English, "hello world", "ÉCOLE normale", "")
	want := []string{"Hello World", "École Normale", ""}
	if !slices.Equal(got, want) {
		t.Errorf("TitleLabels() = %q, want %q", got, want)
	}
	if got := TitleLabels(language.English); len(got) != 0 {
		t.Errorf("TitleLabels() with no labels = %q", got)
	}
}
