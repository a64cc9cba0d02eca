// Package format renders candidate items as Telegram MarkdownV2 messages.
package format

import (
	"fmt"
	"strings"

	"newsbot/internal/model"
)

const (
	// maxMessageLen is Telegram's hard limit for message text.
	maxMessageLen = 4096
	// maxSummaryLen caps the body before any message-size trimming.
	maxSummaryLen = 300

	ellipsis = "..."
)

// reserved are the characters MarkdownV2 requires escaped in plain text.
const reserved = `\_*[]()~` + "`" + `>#+-=|{}.!`

// EscapeText escapes every MarkdownV2-reserved character in s.
// Structural markup (the bold markers and the source link) is added
// around already-escaped text, never escaped itself.
func EscapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EscapeURL escapes the characters MarkdownV2 reserves inside an
// inline-link destination.
func EscapeURL(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == ')' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Message renders an item as a channel-safe MarkdownV2 message:
// a bold "[TAG] title" line, an optional summary, and a source link.
// Output always fits in maxMessageLen; the summary is trimmed first,
// the title only as a last resort, the link always survives.
func Message(item model.CandidateItem, tag string) string {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = item.URL
	}
	if tag == "" {
		tag = "IT"
	}

	tail := "\n\n[source](" + EscapeURL(item.URL) + ")"

	rawHead := fmt.Sprintf("[%s] %s", strings.ToUpper(tag), title)
	head := "*" + EscapeText(rawHead) + "*"
	if maxHead := maxMessageLen - len(tail); len(head) > maxHead {
		head = "*" + EscapeText(trimToEscapedBudget(rawHead, maxHead-2)) + "*"
	}

	summary := strings.TrimSpace(item.Summary)
	if summary != "" && strings.Contains(strings.ToLower(title), strings.ToLower(summary)) {
		summary = ""
	}
	if summary != "" {
		runes := []rune(summary)
		if len(runes) > maxSummaryLen {
			summary = string(runes[:maxSummaryLen-len(ellipsis)]) + ellipsis
		}
		body := EscapeText(summary)
		budget := maxMessageLen - len(head) - len(tail) - 2
		if len(body) > budget {
			summary = trimToEscapedBudget(summary, budget)
			body = EscapeText(summary)
		}
		if summary != "" {
			return head + "\n\n" + body + tail
		}
	}
	return head + tail
}

// trimToEscapedBudget shortens s (rune-safe) so that EscapeText of the
// result, ellipsis included, is at most budget bytes. Returns "" when
// even the ellipsis would not fit.
func trimToEscapedBudget(s string, budget int) string {
	escapedEllipsis := len(EscapeText(ellipsis))
	if budget < escapedEllipsis {
		return ""
	}
	size := 0
	for i, r := range s {
		n := len(string(r))
		if strings.ContainsRune(reserved, r) {
			n++
		}
		if size+n > budget-escapedEllipsis {
			return s[:i] + ellipsis
		}
		size += n
	}
	return s
}
