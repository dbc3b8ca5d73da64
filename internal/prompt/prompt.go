// Package prompt renders the shortlist and the reader's preferences into the
// completion prompt sent to the language model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/edgard/bookrec/internal/catalog"
)

// Cue closes every prompt. The model's continuation after it is read back as
// the claimed title.
const Cue = "Recommendation:"

// Build lists the candidates as "N. Title by Author, Author" lines, preceded
// by the preferences and followed by the cue. Text is passed through as-is.
func Build(shortlist []catalog.Entry, preferences string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "User preferences: %s. Recommend a book from the following list:\n", preferences)
	for i, book := range shortlist {
		fmt.Fprintf(&sb, "%d. %s by %s\n", i+1, book.Title, strings.Join(book.Authors, ", "))
	}
	sb.WriteString("\n")
	sb.WriteString(Cue)

	return sb.String()
}
