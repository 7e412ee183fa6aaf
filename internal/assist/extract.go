package assist

import (
	"regexp"
	"strings"
)

var sectionNumberRe = regexp.MustCompile(`(?i)(?:section|sec\.?|article|ipc|crpc|bns|bnss)\s*(\d{1,4}[A-Z]?)`)

// lawAliases maps lowercase mentions to canonical act names.
var lawAliases = []struct {
	alias     string
	canonical string
}{
	{"indian penal code", "Indian Penal Code"},
	{"ipc", "Indian Penal Code"},
	{"bharatiya nyaya sanhita", "Bharatiya Nyaya Sanhita"},
	{"bnss", "Bharatiya Nagarik Suraksha Sanhita"},
	{"bns", "Bharatiya Nyaya Sanhita"},
	{"code of criminal procedure", "Code of Criminal Procedure"},
	{"crpc", "Code of Criminal Procedure"},
	{"evidence act", "Indian Evidence Act"},
	{"it act", "Information Technology Act"},
	{"information technology act", "Information Technology Act"},
	{"pocso", "POCSO Act"},
	{"ndps", "NDPS Act"},
	{"motor vehicles act", "Motor Vehicles Act"},
	{"constitution", "Constitution of India"},
}

// ExtractEntities pulls section numbers and law names out of free text.
// It supplements the model's own extraction so a flaky structured response
// still yields usable entities.
func ExtractEntities(text string) Extracted {
	var out Extracted

	for _, m := range sectionNumberRe.FindAllStringSubmatch(text, -1) {
		out.SectionNumbers = appendUnique(out.SectionNumbers, strings.ToUpper(m[1]))
	}

	lower := strings.ToLower(text)
	for _, la := range lawAliases {
		if strings.Contains(lower, la.alias) {
			out.LawNames = appendUnique(out.LawNames, la.canonical)
		}
	}

	return out
}

// Merge folds b into a, deduplicating.
func (a Extracted) Merge(b Extracted) Extracted {
	for _, s := range b.SectionNumbers {
		a.SectionNumbers = appendUnique(a.SectionNumbers, s)
	}
	for _, l := range b.LawNames {
		a.LawNames = appendUnique(a.LawNames, l)
	}
	return a
}

func appendUnique(list []string, v string) []string {
	for _, ex := range list {
		if ex == v {
			return list
		}
	}
	return append(list, v)
}
