package ingest

import (
	"strings"
	"testing"
)

func TestSplitChunksShortContent(t *testing.T) {
	chunks := SplitChunks("Section 420 deals with cheating.", 2000)
	if len(chunks) != 1 {
		t.Fatalf("expected single chunk, got %d", len(chunks))
	}
	if chunks[0] != "Section 420 deals with cheating." {
		t.Errorf("content altered: %q", chunks[0])
	}
}

func TestSplitChunksEmpty(t *testing.T) {
	if got := SplitChunks("", 2000); got != nil {
		t.Errorf("expected nil for empty content, got %v", got)
	}
	if got := SplitChunks("   \n\n  ", 2000); got != nil {
		t.Errorf("expected nil for whitespace content, got %v", got)
	}
}

func TestSplitChunksRespectsBound(t *testing.T) {
	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, strings.Repeat("a", 90))
	}
	content := strings.Join(lines, "\n")

	chunks := SplitChunks(content, 200)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 200 {
			t.Errorf("chunk %d exceeds bound: %d chars", i, len(c))
		}
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
}

func TestSplitChunksHardBreaksLongLine(t *testing.T) {
	// A single line longer than the bound must still be split.
	content := strings.Repeat("x", 450)

	chunks := SplitChunks(content, 200)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for a 450-char line at bound 200, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 200 {
			t.Errorf("chunk %d exceeds bound: %d chars", i, len(c))
		}
	}
}

func TestSplitChunksZeroBoundUsesDefault(t *testing.T) {
	chunks := SplitChunks(strings.Repeat("y", DefaultChunkSize+10), 0)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks with the default bound, got %d", len(chunks))
	}
}

func TestSanitizeUTF8(t *testing.T) {
	in := "valid \xff\xfe text with धारा"
	out := SanitizeUTF8(in)
	if out != "valid  text with धारा" {
		t.Errorf("unexpected sanitized output: %q", out)
	}

	if got := SanitizeUTF8("already clean"); got != "already clean" {
		t.Errorf("clean input must pass through, got %q", got)
	}
}

func TestDetectTags(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Section 420 of the Indian Penal Code prescribes imprisonment", []string{"ipc", "punishment"}},
		{"Bail under the Bharatiya Nyaya Sanhita", []string{"bns", "bail"}},
		{"Lodging a First Information Report under the Code of Criminal Procedure", []string{"procedure", "fir"}},
		{"Cheating is a cognizable offence", []string{"cognizability"}},
		{"Nothing legal here at all", nil},
	}

	for _, tt := range tests {
		got := DetectTags(tt.text)
		if len(got) != len(tt.want) {
			t.Errorf("%q: got %v, want %v", tt.text, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%q: got %v, want %v", tt.text, got, tt.want)
				break
			}
		}
	}
}
