package gemini

import (
	"context"
	"strings"
	"testing"

	"github.com/vioflow/ainews/internal/pipeerr"
	"github.com/vioflow/ainews/internal/search"
)

func sampleMaterial() Material {
	return Material{
		Advancements: []search.Result{
			{Title: "New LLM released", Snippet: "A frontier model shipped.", URL: "https://example.com/llm"},
			{Title: "Protein folding record", Snippet: "Lab reports a breakthrough.", URL: "https://example.org/fold"},
		},
		General: []search.Result{
			{Title: "AI startup funding", Snippet: "A big round closed.", URL: "https://example.net/round"},
		},
		Articles: map[string]string{
			"https://example.com/llm": "Full article text about the model release.",
			"https://example.org/fold": "Full article text about the folding result.",
		},
	}
}

func TestBuildPrompt_EmbedsMaterialVerbatim(t *testing.T) {
	got := BuildPrompt(sampleMaterial())

	for _, want := range []string{
		"=== LIST_A (ADVANCEMENTS) ===",
		"=== LIST_B (GENERAL NEWS) ===",
		"- title: New LLM released",
		"  snippet: A frontier model shipped.",
		"  href: https://example.com/llm",
		"  href: https://example.net/round",
		"=== FULL ARTICLE (https://example.com/llm) ===",
		"Full article text about the folding result.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// LIST_A must precede LIST_B, articles come after both.
	a := strings.Index(got, "LIST_A")
	bIdx := strings.Index(got, "LIST_B")
	art := strings.Index(got, "FULL ARTICLE")
	if !(a < bIdx && bIdx < art) {
		t.Errorf("prompt sections out of order: %d, %d, %d", a, bIdx, art)
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	m := sampleMaterial()
	first := BuildPrompt(m)
	for i := 0; i < 10; i++ {
		if got := BuildPrompt(m); got != first {
			t.Fatal("prompt construction is not deterministic")
		}
	}
}

func TestBuildPrompt_EmptyListMarked(t *testing.T) {
	m := Material{General: []search.Result{{Title: "t", Snippet: "s", URL: "u"}}}
	got := BuildPrompt(m)
	if !strings.Contains(got, "(no data)") {
		t.Error("empty list should be marked explicitly")
	}
}

func TestBuildPrompt_CapsMaterialSize(t *testing.T) {
	huge := strings.Repeat("word ", 20000)
	m := Material{
		Advancements: []search.Result{{Title: "t", Snippet: huge, URL: "u"}},
	}
	got := BuildPrompt(m)
	if !strings.HasSuffix(got, "[TRUNCATED]") {
		t.Error("oversized material should be truncated with a marker")
	}
}

func TestSummarize_EmptyMaterialFailsClosed(t *testing.T) {
	c := &Client{}
	_, err := c.Summarize(context.Background(), Material{})
	if err == nil {
		t.Fatal("expected error for empty material")
	}
	if got := pipeerr.CategoryOf(err); got != pipeerr.EmptyResult {
		t.Errorf("category = %s, want empty_result", got)
	}
	if got := pipeerr.StageOf(err); got != pipeerr.StageGeneration {
		t.Errorf("stage = %q", got)
	}
}

func validDigest() string {
	item := func(headline, url string) string {
		return "*" + headline + "*\nA detailed explanation spanning several sentences. It says what happened and why it matters. Numbers included.\n[Read More](" + url + ")"
	}
	return Greeting + "\n\n---\n\n" +
		SectionAdvancements + "\n\n" +
		item("Model shipped", "https://example.com/a_b") + "\n\n" +
		"---\n\n" +
		SectionGeneral + "\n\n" +
		item("Funding round", "https://example.net/c") + "\n"
}

func TestCheckFormat_ValidDigestPasses(t *testing.T) {
	if problems := CheckFormat(validDigest()); len(problems) != 0 {
		t.Errorf("unexpected problems: %v", problems)
	}
}

func TestCheckFormat_FlagsViolations(t *testing.T) {
	bad := "Hi there!\n\n**Bold** and a head_line\n# Header\nno links"
	problems := CheckFormat(bad)

	wantSome := []string{
		"digest does not start with the fixed greeting",
		"missing section separators",
		"no source links present",
		"double-star bold present",
		"underscore present outside link targets",
		"markdown header present",
	}
	for _, want := range wantSome {
		found := false
		for _, p := range problems {
			if p == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected problem %q, got %v", want, problems)
		}
	}
}

func TestCheckFormat_UnderscoreInsideLinkTargetAllowed(t *testing.T) {
	for _, p := range CheckFormat(validDigest()) {
		if p == "underscore present outside link targets" {
			t.Error("underscore inside a link URL should be allowed")
		}
	}
}
