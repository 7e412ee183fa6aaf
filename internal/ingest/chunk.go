// Package ingest turns source documents into embedded chunks in the index.
package ingest

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize bounds a chunk in characters.
const DefaultChunkSize = 2000

// SplitChunks splits text line-wise into chunks no longer than maxLen.
func SplitChunks(content string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultChunkSize
	}
	content = strings.TrimSpace(content)
	content = SanitizeUTF8(content)
	if content == "" {
		return nil
	}
	if len(content) <= maxLen {
		return []string{content}
	}

	var chunks []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		chunk := strings.TrimSpace(buf.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		buf.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		for len(line) > maxLen {
			part := line[:maxLen]
			line = line[maxLen:]

			if buf.Len() > 0 {
				flush()
			}
			buf.WriteString(part)
			flush()
		}

		if buf.Len()+len(line)+1 > maxLen {
			flush()
		}

		buf.WriteString(line)
		buf.WriteRune('\n')
	}

	flush()
	return chunks
}

// SanitizeUTF8 drops invalid bytes so chunk text is always valid UTF-8
// (Postgres rejects invalid sequences with error 22021).
func SanitizeUTF8(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[1:]
			continue
		}
		b.WriteRune(r)
		s = s[size:]
	}
	return b.String()
}

// DetectTags labels a chunk with coarse legal topics for browsing and
// filtering. Purely lexical.
func DetectTags(chunk string) []string {
	s := strings.ToLower(chunk)
	var tags []string

	add := func(t string) {
		for _, ex := range tags {
			if ex == t {
				return
			}
		}
		tags = append(tags, t)
	}

	if strings.Contains(s, "indian penal code") || strings.Contains(s, "ipc") {
		add("ipc")
	}
	if strings.Contains(s, "bharatiya nyaya sanhita") || strings.Contains(s, "bns") {
		add("bns")
	}
	if strings.Contains(s, "crpc") || strings.Contains(s, "code of criminal procedure") || strings.Contains(s, "bnss") {
		add("procedure")
	}
	if strings.Contains(s, "bail") {
		add("bail")
	}
	if strings.Contains(s, "fir") || strings.Contains(s, "first information report") {
		add("fir")
	}
	if strings.Contains(s, "punish") || strings.Contains(s, "imprisonment") || strings.Contains(s, "fine") {
		add("punishment")
	}
	if strings.Contains(s, "cognizable") || strings.Contains(s, "non-cognizable") {
		add("cognizability")
	}
	if strings.Contains(s, "evidence") {
		add("evidence")
	}

	return tags
}
