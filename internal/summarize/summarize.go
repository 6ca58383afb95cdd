// Package summarize turns a ranked article digest into a markdown daily
// brief, with a deterministic fallback when no provider responds.
package summarize

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ai-knowledge-crawler/aikc/internal/article"
	"github.com/ai-knowledge-crawler/aikc/internal/llm"
)

// Summarizer generates the daily brief via a text-generation provider.
type Summarizer struct {
	provider  llm.Provider
	maxTokens int

	now func() time.Time
}

// New creates a Summarizer over the given provider.
func New(provider llm.Provider, maxTokens int) *Summarizer {
	if maxTokens <= 0 {
		maxTokens = 4000
	}
	return &Summarizer{
		provider:  provider,
		maxTokens: maxTokens,
		now:       time.Now,
	}
}

// Brief generates the daily brief for a digest and appends the metadata
// footer. Provider failure or an invalid response falls back to the
// deterministic brief, never an error.
func (s *Summarizer) Brief(ctx context.Context, digest article.Digest) string {
	prompt := Prompt(digest, s.now())

	body, err := s.provider.Generate(ctx, prompt, s.maxTokens)
	if err != nil {
		log.Printf("Error generating brief: %v", err)
		body = FallbackBrief(digest, s.now())
	} else if !Validate(body) {
		log.Printf("Generated brief failed validation, using fallback")
		body = FallbackBrief(digest, s.now())
	}

	return body + MetadataFooter(digest, s.provider.Name())
}

// formatArticles renders the digest entries for analysis. Each entry lists
// the fields the prompt instructs the model to cite.
func formatArticles(entries []article.DigestEntry) string {
	var b strings.Builder
	b.WriteString("AI News Articles for Analysis:\n\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "Article %d:\n", i+1)
		fmt.Fprintf(&b, "Title: %s\n", e.Title)
		fmt.Fprintf(&b, "Source: %s\n", e.Source)
		fmt.Fprintf(&b, "Published: %s\n", e.Published)
		fmt.Fprintf(&b, "Summary: %s\n", e.Summary)
		fmt.Fprintf(&b, "Link: %s\n", e.Link)
		b.WriteString(strings.Repeat("-", 80) + "\n\n")
	}
	return b.String()
}

// Prompt builds the analysis prompt for one digest.
func Prompt(digest article.Digest, now time.Time) string {
	date := now.Format("January 2, 2006")
	articles := formatArticles(digest.Articles)

	return fmt.Sprintf(`You are an AI news analyst tasked with creating a comprehensive daily brief for AI professionals. Today's date is %[1]s.

Please analyze the following AI news articles and create a structured daily brief in markdown format. Follow this exact structure:

## %[1]s - Daily AI Feed Update

### Overview
Write a 2-3 sentence overview of the day's most significant AI developments, highlighting major themes and trends.

### Key Developments by Theme

Organize the news into 4-6 thematic sections such as:
- **Major Funding & Strategic Partnerships**
- **Technical Breakthroughs & Model Releases**
- **AI Safety & Ethics Developments**
- **Enterprise & Government Adoption**
- **Regulatory & Policy Updates**
- **Research & Academic Developments**

For each theme, provide:
- 2-4 key developments with specific details
- Company names, funding amounts, model names, etc.
- Brief explanation of significance

### Regional & Global Developments
Highlight international AI developments, competition between regions, and global initiatives.

### Market Trends & Analysis
Include insights about:
- Investment patterns
- Industry consolidation
- Technology adoption rates
- Performance benchmarks

### Actionable Takeaways for Practitioners
Provide 4-6 concrete recommendations for:
- Technology evaluation and adoption
- Strategic planning considerations
- Risk management
- Competitive positioning

### Looking Ahead
Mention upcoming events, expected releases, or anticipated developments.

*Last Updated: %[1]s*

IMPORTANT GUIDELINES:
1. Focus on factual information from the provided articles
2. Prioritize recent developments (today/yesterday)
3. Include specific numbers, dates, and company names when available
4. Maintain professional, analytical tone
5. Group related news items together thematically
6. Highlight the most significant developments prominently
7. Ensure all claims are supported by the source articles
8. If multiple sources report the same news, consolidate into one entry

Here are the articles to analyze:

%[2]s

Please create the daily brief now:`, date, articles)
}

// FallbackBrief builds a deterministic brief from the top ten digest
// entries, used when no provider output is available.
func FallbackBrief(digest article.Digest, now time.Time) string {
	date := now.Format("January 2, 2006")

	var b strings.Builder
	fmt.Fprintf(&b, "## %s - Daily AI Feed Update\n\n", date)
	b.WriteString("### Overview\n")
	b.WriteString("AI news update temporarily unavailable due to processing issues. Please check individual sources for the latest developments.\n\n")
	b.WriteString("### Recent Articles\n")

	entries := digest.Articles
	if len(entries) > 10 {
		entries = entries[:10]
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "- **%s** (%s)\n", e.Title, e.Source)
		if e.Summary != "" {
			fmt.Fprintf(&b, "  %s...\n", article.Truncate(e.Summary, 100))
		}
		fmt.Fprintf(&b, "  [Read more](%s)\n\n", e.Link)
	}

	fmt.Fprintf(&b, "\n*Last Updated: %s*\n", date)
	b.WriteString("\n*Note: This is a fallback summary. Full analysis will resume when processing is restored.*")
	return b.String()
}

// Validate checks a generated brief for the critical structural sections.
func Validate(brief string) bool {
	required := []string{"## ", "### Overview", "### Key Developments"}
	for _, section := range required {
		if !strings.Contains(brief, section) {
			return false
		}
	}
	return true
}

// MetadataFooter renders the collection statistics appended to every brief.
// generatedBy labels which provider (or fallback path) produced the text.
func MetadataFooter(digest article.Digest, generatedBy string) string {
	var b strings.Builder
	b.WriteString("\n\n---\n\n")
	b.WriteString("**Summary Statistics:**\n")
	fmt.Fprintf(&b, "- Articles analyzed: %d\n", len(digest.Articles))
	fmt.Fprintf(&b, "- Sources: %d\n", digest.TotalSources)
	fmt.Fprintf(&b, "- Collection time: %s\n", digest.CollectionTime)
	fmt.Fprintf(&b, "- Generated by: %s\n", generatedBy)
	return b.String()
}
