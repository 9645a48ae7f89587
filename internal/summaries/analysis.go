package summaries

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/JaimeStill/arbiter/pkg/formatting"
)

const maxKeyPoints = 5

var (
	headingPattern   = regexp.MustCompile(`^\s*(?:[0-9]+\.|[A-Z]+\.|[IVXLC]+\.)?\s*([A-Z][A-Z\s]+)\s*$`)
	sentencePattern  = regexp.MustCompile(`[^.!?]+[.!?]*`)
	paragraphPattern = regexp.MustCompile(`\n\s*\n`)
)

var entityPatterns = []struct {
	kind    string
	pattern *regexp.Regexp
}{
	{"organizations", regexp.MustCompile(`\b(?:[A-Z][\w&-]* +){1,4}(?:Inc|Corp|Corporation|LLC|Ltd|Limited|GmbH|PLC|Co)\b`)},
	{"organizations", regexp.MustCompile(`\bCompany +[A-Z]\w*`)},
	{"dates", regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}\b|\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}/\d{1,2}/\d{4}\b`)},
	{"amounts", regexp.MustCompile(`(?:USD|EUR|GBP|\$|€|£)\s?\d{1,3}(?:,\d{3})*(?:\.\d+)?(?:\s(?:million|billion))?`)},
	{"parties", regexp.MustCompile(`\b(?:Claimant|Respondent|Tribunal|Arbitrator|Counsel)s?\b`)},
}

var legalTerms = []string{
	"arbitration", "arbitral tribunal", "award", "breach", "claimant",
	"consideration", "counterclaim", "damages", "force majeure", "indemnity",
	"injunction", "interest", "jurisdiction", "liability", "liquidated damages",
	"mitigation", "negligence", "respondent", "specific performance",
	"statute of limitations", "termination", "tribunal", "warranty",
}

var legalPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(legalTerms))
	for _, t := range legalTerms {
		m[t] = regexp.MustCompile(`\b` + regexp.QuoteMeta(t) + `\b`)
	}
	return m
}()

var languageMarkers = map[string][]string{
	"en": {"the", "and", "of", "to", "is", "that", "with", "for"},
	"es": {"el", "la", "de", "que", "y", "los", "las", "por"},
	"fr": {"le", "la", "les", "et", "des", "est", "que", "pour"},
	"de": {"der", "die", "das", "und", "ist", "nicht", "mit", "für"},
}

// detectLanguage picks the language whose marker words occur most often.
// Text with no markers, or a tie, is reported as English.
func detectLanguage(text string) string {
	counts := make(map[string]int, len(languageMarkers))
	for _, w := range formatting.Words(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?()[]\"'")
		for lang, markers := range languageMarkers {
			if slices.Contains(markers, w) {
				counts[lang]++
			}
		}
	}

	best, bestCount := "en", counts["en"]
	for _, lang := range []string{"es", "fr", "de"} {
		if counts[lang] > bestCount {
			best, bestCount = lang, counts[lang]
		}
	}
	return best
}

func sentences(text string) []string {
	var out []string
	for _, s := range sentencePattern.FindAllString(text, -1) {
		if s = strings.Join(strings.Fields(s), " "); s != "" && strings.Trim(s, ".!?") != "" {
			out = append(out, s)
		}
	}
	return out
}

func paragraphCount(text string) int {
	n := 0
	for _, p := range paragraphPattern.Split(text, -1) {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

func extractLegalTerms(text string) []string {
	lower := strings.ToLower(text)
	found := []string{}
	for _, t := range legalTerms {
		if legalPatterns[t].MatchString(lower) {
			found = append(found, t)
		}
	}
	slices.Sort(found)
	return found
}

func extractEntities(text string) map[string][]string {
	entities := make(map[string][]string)
	for _, ep := range entityPatterns {
		for _, m := range ep.pattern.FindAllString(text, -1) {
			m = strings.TrimSpace(m)
			if !slices.Contains(entities[ep.kind], m) {
				entities[ep.kind] = append(entities[ep.kind], m)
			}
		}
	}
	return entities
}

// detectSections splits text at heading lines. Text before the first heading
// belongs to no section, and sections without content are dropped.
func detectSections(text string) []Section {
	type raw struct {
		title string
		lines []string
	}

	var found []raw
	for _, line := range strings.Split(text, "\n") {
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			found = append(found, raw{title: strings.TrimSpace(m[1])})
			continue
		}
		if len(found) > 0 {
			last := &found[len(found)-1]
			last.lines = append(last.lines, line)
		}
	}

	total := utf8.RuneCountInString(text)
	sections := make([]Section, 0, len(found))
	for _, r := range found {
		content := strings.TrimSpace(strings.Join(r.lines, "\n"))
		if content == "" {
			continue
		}
		sections = append(sections, Section{
			ID:         fmt.Sprintf("section_%d", len(sections)+1),
			Title:      r.title,
			Content:    content,
			WordCount:  formatting.WordCount(content),
			Importance: importance(utf8.RuneCountInString(content), total),
		})
	}
	return sections
}

func importance(length, total int) float64 {
	if total == 0 {
		return 0
	}
	return min(float64(length)/float64(total)*3, 1)
}

// keyPoints takes the opening sentence of each section, or the leading
// sentences of the document when it has no sections.
func keyPoints(text string, sections []Section) []string {
	points := []string{}
	if len(sections) == 0 {
		for _, s := range sentences(text) {
			if len(points) == maxKeyPoints {
				break
			}
			points = append(points, s)
		}
		return points
	}

	for _, sec := range sections {
		if len(points) == maxKeyPoints {
			break
		}
		if ss := sentences(sec.Content); len(ss) > 0 {
			points = append(points, ss[0])
		}
	}
	return points
}

func confidence(meta Metadata, sections []Section, stats Stats, minLength int) *ConfidenceScores {
	content := 0.5 * ratio(meta.WordCount, 4*max(minLength, 1))
	if len(sections) > 0 {
		content += 0.25
	}
	if meta.SentenceCount >= 3 {
		content += 0.25
	}

	summary := 0.0
	if stats.SummaryWords > 0 {
		summary = ratio(stats.SummaryWords, max(minLength, 1))
		if stats.CompressionRatio > 1 {
			summary /= stats.CompressionRatio
		}
	}

	return &ConfidenceScores{
		ContentQuality: min(content, 1),
		SummaryQuality: min(summary, 1),
	}
}

func ratio(n, d int) float64 {
	return min(float64(n)/float64(d), 1)
}
