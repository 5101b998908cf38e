package notifier

import (
	"fmt"
	"strings"
)

// summarySections splits a summary on newlines, drops blank lines, and
// returns the first three non-blank lines. Missing sections are empty
// strings so the composed message always has the same three-section shape.
func summarySections(summary string) [3]string {
	var sections [3]string
	i := 0
	for _, line := range strings.Split(summary, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sections[i] = line
		i++
		if i == len(sections) {
			break
		}
	}
	return sections
}

// FormatSuccessMessage composes the notification for a successfully
// summarized entry:
//
//	title
//	url
//
//	{model}による要約
//
//	section1
//
//	section2
//
//	section3
func FormatSuccessMessage(title, url, model, summary string) string {
	s := summarySections(summary)
	return fmt.Sprintf("%s\n%s\n\n%sによる要約\n\n%s\n\n%s\n\n%s", title, url, model, s[0], s[1], s[2])
}

// FormatFailureMessage composes the notification for an entry whose
// summarization failed. The failure line takes the first section's place
// and two blank sections follow, preserving the success message's shape.
func FormatFailureMessage(title, url, model, errMsg string) string {
	return fmt.Sprintf("%s\n%s\n\n%sによる要約\n\n要約生成に失敗しました: %s\n\n\n\n", title, url, model, errMsg)
}
