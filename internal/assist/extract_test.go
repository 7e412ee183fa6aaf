package assist

import (
	"reflect"
	"testing"
)

func TestExtractEntities(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		sections []string
		laws     []string
	}{
		{
			name:     "section with act",
			text:     "What is Section 420 of the Indian Penal Code?",
			sections: []string{"420"},
			laws:     []string{"Indian Penal Code"},
		},
		{
			name:     "abbreviated act",
			text:     "Explain IPC 302 please",
			sections: []string{"302"},
			laws:     []string{"Indian Penal Code"},
		},
		{
			name:     "lettered section",
			text:     "Is section 498A bailable?",
			sections: []string{"498A"},
		},
		{
			name:     "multiple acts",
			text:     "Compare BNS 318 with the old IPC provision",
			sections: []string{"318"},
			laws:     []string{"Indian Penal Code", "Bharatiya Nyaya Sanhita"},
		},
		{
			name: "no entities",
			text: "Hello, how are you?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractEntities(tt.text)
			if !reflect.DeepEqual(got.SectionNumbers, tt.sections) {
				t.Errorf("sections: got %v, want %v", got.SectionNumbers, tt.sections)
			}
			if !reflect.DeepEqual(got.LawNames, tt.laws) {
				t.Errorf("laws: got %v, want %v", got.LawNames, tt.laws)
			}
		})
	}
}

func TestExtractedMergeDeduplicates(t *testing.T) {
	a := Extracted{SectionNumbers: []string{"420"}, LawNames: []string{"Indian Penal Code"}}
	b := Extracted{SectionNumbers: []string{"420", "302"}, LawNames: []string{"Indian Penal Code"}}

	merged := a.Merge(b)

	if len(merged.SectionNumbers) != 2 {
		t.Errorf("expected 2 unique sections, got %v", merged.SectionNumbers)
	}
	if len(merged.LawNames) != 1 {
		t.Errorf("expected 1 unique law, got %v", merged.LawNames)
	}
}

func TestDetectLanguageDefaultsToEnglish(t *testing.T) {
	if got := DetectLanguage("Hello, how are you doing today?"); got != "English" {
		t.Errorf("expected English, got %q", got)
	}
}

func TestDetectLanguageHindi(t *testing.T) {
	if got := DetectLanguage("धारा ४२० क्या है? मुझे भारतीय दंड संहिता के बारे में बताइए।"); got != "Hindi" {
		t.Errorf("expected Hindi, got %q", got)
	}
}
