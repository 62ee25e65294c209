package gemini

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/vioflow/ainews/internal/search"
)

// The digest format contract. The dispatcher relies on the Markdown being
// Telegram-safe, so the instruction bans the tokens that break the bot
// API's legacy Markdown parser.
const (
	Greeting = "Hello Vio! Here is the hottest AI update from the last 24 hours, specially curated for you. Let's dive in!"

	SectionAdvancements = "🚀 AI ADVANCEMENTS & RESEARCH"
	SectionGeneral      = "📰 GENERAL AI & BUSINESS NEWS"

	itemsPerSection = 3

	// Ceiling for serialized raw material, runes. Keeps prompts inside the
	// model context and the bill predictable.
	maxMaterialRunes = 24000
)

var systemInstruction = fmt.Sprintf(`You are Vio's specialized AI news assistant.
Your goal is to provide a detailed and insightful update on the Top %[1]d Artificial Intelligence (AI) news from the last 24 hours based on the provided data.

### OBJECTIVE:
You must select and summarize exactly %[1]d News Items, divided into two specific sections.

### STRUCTURE & FORMATTING (STRICT):

1. Intro: Start EXACTLY with this greeting:
"%[2]s"

2. Separator: Use `+"`---`"+` after the intro and between sections.

3. SECTION 1: %[3]s (Select %[4]d Items)
- Source: Select strictly from the "LIST_A (ADVANCEMENTS)" data.
- Focus: New LLM releases, Medical AI, Coding agents, Scientific discoveries, or Technical breakthroughs.

4. SECTION 2: %[5]s (Select %[4]d Items)
- Source: Select strictly from the "LIST_B (GENERAL NEWS)" data.
- Focus: Business adoption, New Tools/Apps, Regulations, Drama/Lawsuits, or Market Trends.

5. Item Format (Per Story):
- Headline: Start with a bold title using a single star `+"`*`"+` (e.g., `+"`*News Headline*`"+`).
- Explanation: Provide a DETAILED paragraph (3-4 sentences in English). Explain what happened, why it matters, and key technical specs/details. Do NOT just rephrase the title.
- Source: Put the exact link at the bottom of the item: `+"`[Read More](Specific_URL_from_href)`"+`.

### SAFETY RULES (CRITICAL):
- NEVER use underscores anywhere in the text (they break Telegram Markdown).
- NEVER use Markdown Headers (# or ##).
- NEVER use double stars. Use a single star `+"`*`"+` for bolding.
- TRUTH: Use the EXACT href provided in the raw data. Do NOT hallucinate links.`,
	itemsPerSection*2, Greeting, SectionAdvancements, itemsPerSection, SectionGeneral)

// Material is the raw input handed to the model: one result list per digest
// section, plus optional full-page text keyed by URL.
type Material struct {
	Advancements []search.Result
	General      []search.Result
	Articles     map[string]string
}

func (m Material) empty() bool {
	return len(m.Advancements) == 0 && len(m.General) == 0
}

// BuildPrompt serializes the material verbatim into the user payload.
// Deterministic string interpolation: same material, same prompt.
func BuildPrompt(m Material) string {
	var b strings.Builder

	b.WriteString("Here is the raw news data I found. I have separated them into two lists for you:\n\n")

	b.WriteString("=== LIST_A (ADVANCEMENTS) ===\n")
	writeResults(&b, m.Advancements)

	b.WriteString("\n=== LIST_B (GENERAL NEWS) ===\n")
	writeResults(&b, m.General)

	if len(m.Articles) > 0 {
		urls := make([]string, 0, len(m.Articles))
		for u := range m.Articles {
			urls = append(urls, u)
		}
		sort.Strings(urls)

		for _, u := range urls {
			fmt.Fprintf(&b, "\n=== FULL ARTICLE (%s) ===\n%s\n", u, m.Articles[u])
		}
	}

	b.WriteString("\n----------------\n")
	fmt.Fprintf(&b, "Based on the data above:\n")
	fmt.Fprintf(&b, "1. Analyze LIST_A and select the Top %d Advancements/Research stories.\n", itemsPerSection)
	fmt.Fprintf(&b, "2. Analyze LIST_B and select the Top %d General/Business stories.\n", itemsPerSection)
	fmt.Fprintf(&b, "3. Summarize these %d items immediately using the requested format.\n", itemsPerSection*2)

	return truncateRunes(b.String(), maxMaterialRunes)
}

func writeResults(b *strings.Builder, results []search.Result) {
	if len(results) == 0 {
		b.WriteString("(no data)\n")
		return
	}
	for _, r := range results {
		fmt.Fprintf(b, "- title: %s\n  snippet: %s\n  href: %s\n", r.Title, r.Snippet, r.URL)
	}
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "\n[TRUNCATED]"
}
