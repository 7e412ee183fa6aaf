package assist

import (
	"fmt"
	"strings"
)

const classifierSystem = `You are a query classifier for an Indian legal assistant.
Classify the user's query into exactly one of these categories:
- LAW_QUERY: describes a criminal situation or asks which offenses apply
- SECTION_QUERY: asks about a specific legal section, act or article (IPC, BNS, CrPC, BNSS, etc.)
- LEGAL_ADVICE: asks what the user personally should do about a concrete legal matter
- DOCUMENT_QUERY: asks about the content of a document the user uploaded
- GENERAL: greetings, small talk, or broad questions about the assistant
- OUT_OF_SCOPE: unrelated to law or to this assistant

Respond ONLY with a JSON object of this exact shape:
{"category": "<one of the categories above>", "confidence": <number 0..1>, "section_numbers": ["..."], "law_names": ["..."], "rationale": "<one short sentence>"}`

const sectionExpertSystem = `You are an expert on Indian criminal law sections and acts (IPC/BNS, CrPC/BNSS, Evidence Act and related statutes).
Given a query about a legal section, provide:
1. Section number and act name
2. A clear summary of what the section covers
3. Prescribed punishment, if applicable
4. Key elements that constitute the offense or provision
5. Illustrative examples and related sections

When documentation excerpts are provided, base your answer on them and do not invent sections, punishments or citations. If the excerpts do not cover the question, say so before answering from general knowledge.`

const documentExpertSystem = `You are a legal assistant answering questions about documents the user uploaded.
Base your answer strictly on the provided document excerpts and name the document and page you relied on. If the excerpts do not contain the answer, say that the uploaded documents do not cover it.`

const generalSystem = `You are a courteous general assistant for an Indian legal information service.
Answer briefly and helpfully. You provide legal information, never formal legal advice: if the user describes a concrete personal legal matter, recommend consulting a qualified advocate. For questions unrelated to law, answer politely and mention what this assistant specializes in.`

// buildClassifierPrompt combines the query with a condensed history summary.
func buildClassifierPrompt(q Query, history []Turn) string {
	var b strings.Builder
	b.WriteString("Query:\n")
	b.WriteString(strings.TrimSpace(q.Text))
	if h := formatHistory(history, 6); h != "" {
		b.WriteString("\n\nRecent conversation:\n")
		b.WriteString(h)
	}
	return b.String()
}

// buildAnswerPrompt assembles the user content for a handler call: retrieved
// excerpts (each tagged with its source), entity hints, history and the query.
func buildAnswerPrompt(q Query, language string, extracted Extracted, chunks []RetrievedChunk, history []Turn) string {
	var b strings.Builder

	if len(chunks) > 0 {
		b.WriteString("Relevant excerpts from the legal database:\n")
		for i, c := range chunks {
			b.WriteString(fmt.Sprintf("\n[DOC %d] source=%s", i+1, c.SourceID))
			if doc := c.Metadata["document"]; doc != "" {
				b.WriteString(" document=" + doc)
			}
			if page := c.Metadata["page"]; page != "" {
				b.WriteString(" page=" + page)
			}
			b.WriteString("\n")
			b.WriteString(trimBody(c.Text, 1200))
			b.WriteString("\n----\n")
		}
	} else {
		b.WriteString("No indexed excerpts matched this query. Answer from general knowledge and say so.\n")
	}

	if len(extracted.SectionNumbers) > 0 {
		b.WriteString("\nSections mentioned: " + strings.Join(extracted.SectionNumbers, ", ") + "\n")
	}
	if len(extracted.LawNames) > 0 {
		b.WriteString("Acts mentioned: " + strings.Join(extracted.LawNames, ", ") + "\n")
	}

	if h := formatHistory(history, 6); h != "" {
		b.WriteString("\nRecent conversation:\n")
		b.WriteString(h)
		b.WriteString("\n")
	}

	b.WriteString("\nQuery:\n")
	b.WriteString(strings.TrimSpace(q.Text))
	b.WriteString("\n\nRespond in ")
	b.WriteString(language)
	b.WriteString(".")

	return b.String()
}

// buildGeneralPrompt skips the retrieval scaffolding entirely.
func buildGeneralPrompt(q Query, language string, history []Turn) string {
	var b strings.Builder
	if h := formatHistory(history, 6); h != "" {
		b.WriteString("Recent conversation:\n")
		b.WriteString(h)
		b.WriteString("\n\n")
	}
	b.WriteString("Query:\n")
	b.WriteString(strings.TrimSpace(q.Text))
	b.WriteString("\n\nRespond in ")
	b.WriteString(language)
	b.WriteString(".")
	return b.String()
}

// formatHistory renders the last max turns as "role: text" lines.
func formatHistory(history []Turn, max int) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > max {
		history = history[len(history)-max:]
	}
	lines := make([]string, 0, len(history))
	for _, t := range history {
		lines = append(lines, t.Role+": "+oneLine(t.Text))
	}
	return strings.Join(lines, "\n")
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if len(s) > 240 {
		return s[:240] + "..."
	}
	return s
}

func trimBody(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
