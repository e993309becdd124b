// Package scorer implements the 12-layer candidate scoring pipeline:
// tokenize, generate candidates from the EntityIndex, score each against a
// fixed layer order, filter by threshold, and rank.
package scorer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/flywheel-dev/flywheel/internal/cooccurrence"
	"github.com/flywheel-dev/flywheel/internal/entity"
	"github.com/flywheel-dev/flywheel/internal/recency"
	"github.com/flywheel-dev/flywheel/internal/tokenizer"
)

// Strictness selects the base adaptive threshold.
type Strictness string

const (
	Conservative Strictness = "conservative"
	Balanced     Strictness = "balanced"
	Aggressive   Strictness = "aggressive"
)

var baseThresholds = map[Strictness]float64{
	Conservative: 15,
	Balanced:     8,
	Aggressive:   5,
}

// OneStemMatchFloor is the minimum final_score a candidate must clear
// regardless of the adaptive threshold.
const OneStemMatchFloor = 5

// Layer is one of the fixed-order scoring layers; used as a breakdown key
// and for the disabledLayers set.
type Layer string

const (
	LayerExactMatch        Layer = "exact_match"
	LayerAliasMatch        Layer = "alias_match"
	LayerStemMatch         Layer = "stem_match"
	LayerTypeBoost         Layer = "type_boost"
	LayerContextBoost      Layer = "context_boost"
	LayerCrossFolderBoost  Layer = "cross_folder_boost"
	LayerHubBoost          Layer = "hub_boost"
	LayerRecencyBoost      Layer = "recency_boost"
	LayerCooccurrenceBoost Layer = "cooccurrence_boost"
	LayerFeedbackBoost     Layer = "feedback_boost"
)

var allLayers = []Layer{
	LayerExactMatch, LayerAliasMatch, LayerStemMatch, LayerTypeBoost,
	LayerContextBoost, LayerCrossFolderBoost, LayerHubBoost,
	LayerRecencyBoost, LayerCooccurrenceBoost, LayerFeedbackBoost,
}

// Options mirrors the Scorer's input options.
type Options struct {
	Strictness      Strictness
	NotePath        string
	DisabledLayers  map[Layer]bool
	ExcludeLinked   bool
	MaxSuggestions  int
	NowMs           int64
}

// DefaultOptions returns conservative defaults with excludeLinked=true and
// maxSuggestions=3.
func DefaultOptions() Options {
	return Options{
		Strictness:     Conservative,
		ExcludeLinked:  true,
		MaxSuggestions: 3,
	}
}

// Deps bundles the read-only collaborators the Scorer pulls from per the
// component design: EntityIndex, Recency, CoOccurrence, Feedback,
// Suppression.
type Deps struct {
	Index              *entity.Index
	Recency            func(nameLower string) (lastMentionMs int64, ok bool)
	CoOccurrence       func(a, b string) (count int, dfA int, dfB int, total int)
	FeedbackCounts     func(entityName, contextTag string) (positive, negative float64)
	IsSuppressed       func(entityName, contextTag string) bool
	ContextTag         func(notePath string) string
}

// Candidate is a single ranked (or rejected) suggestion with its breakdown.
type Candidate struct {
	Entity     entity.Entity
	FinalScore float64
	Breakdown  map[Layer]float64
	Passed     bool
}

// Result is the Scorer's output.
type Result struct {
	Suggestions []Candidate
	AllScored   []Candidate // includes failed candidates, for SuggestionEvent persistence
	Suffix      string
	Threshold   float64
}

var suffixRe = regexp.MustCompile(`→ (\[\[[^\]]+\]\]\s*)+\s*$`)

var articleTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^guide to\b`),
	regexp.MustCompile(`(?i)^how to\b`),
	regexp.MustCompile(`(?i)^complete\b`),
	regexp.MustCompile(`(?i)^ultimate\b`),
	regexp.MustCompile(`(?i)tutorial$`),
	regexp.MustCompile(`(?i)cheatsheet$`),
	regexp.MustCompile(`(?i)cheat sheet$`),
	regexp.MustCompile(`(?i)worksheet$`),
	regexp.MustCompile(`(?i)checklist$`),
	regexp.MustCompile(`(?i)^best practices$`),
	regexp.MustCompile(`(?i)^introduction to\b`),
}

// Score runs the full pipeline over content and returns ranked suggestions
// plus every scored candidate (for SuggestionEvent persistence).
func Score(content string, opts Options, deps Deps) Result {
	if deps.Index == nil || !deps.Index.Ready() {
		return Result{}
	}

	tok := tokenizer.Tokenize(content)
	alreadyLinked := tokenizer.ExtractLinkedTargets(content)
	contextTag := ""
	if deps.ContextTag != nil {
		contextTag = deps.ContextTag(opts.NotePath)
	}

	var scored []Candidate
	for _, e := range deps.Index.All() {
		if e.NameLower == "" {
			continue // corrupted row, skipped per failure semantics
		}
		if len(e.CanonicalName) > 25 {
			continue
		}
		if e.WordCount() > 3 {
			continue
		}
		if matchesArticleTitle(e.CanonicalName) {
			continue
		}
		if opts.ExcludeLinked && alreadyLinked[e.NameLower] {
			continue
		}
		if opts.NotePath != "" && opts.NotePath == e.Path {
			continue
		}
		if deps.IsSuppressed != nil && deps.IsSuppressed(e.CanonicalName, contextTag) {
			continue
		}

		breakdown := scoreCandidate(e, content, tok, alreadyLinked, opts, deps, contextTag)
		final := sumBreakdown(breakdown)

		if !passesMultiWordThreshold(e, tok) {
			continue
		}
		if zeroContentOverlap(e, tok) {
			continue
		}

		scored = append(scored, Candidate{Entity: e, FinalScore: final, Breakdown: breakdown})
	}

	threshold := adaptiveThreshold(opts.Strictness, len(content))
	var passed []Candidate
	for i := range scored {
		scored[i].Passed = scored[i].FinalScore >= threshold && scored[i].FinalScore >= OneStemMatchFloor
		if scored[i].Passed {
			passed = append(passed, scored[i])
		}
	}

	sort.Slice(passed, func(i, j int) bool {
		if passed[i].FinalScore != passed[j].FinalScore {
			return passed[i].FinalScore > passed[j].FinalScore
		}
		return passed[i].Entity.CanonicalName < passed[j].Entity.CanonicalName
	})

	max := opts.MaxSuggestions
	if max <= 0 {
		max = 3
	}
	if len(passed) > max {
		passed = passed[:max]
	}

	suffix := ""
	if len(passed) > 0 && !suffixRe.MatchString(content) {
		suffix = buildSuffix(passed)
	}

	return Result{Suggestions: passed, AllScored: scored, Suffix: suffix, Threshold: threshold}
}

func (o Options) layerEnabled(l Layer) bool {
	return !o.DisabledLayers[l]
}

func scoreCandidate(e entity.Entity, content string, tok tokenizer.Result, alreadyLinked map[string]bool, opts Options, deps Deps, contextTag string) map[Layer]float64 {
	breakdown := make(map[Layer]float64, len(allLayers))

	nameTokens := strings.Fields(strings.ToLower(e.CanonicalName))
	exactMatchedTokens := make(map[string]bool)

	if opts.layerEnabled(LayerExactMatch) {
		score := 0.0
		for _, t := range nameTokens {
			if tok.TokenSet[t] {
				score += 10
				exactMatchedTokens[t] = true
			}
		}
		breakdown[LayerExactMatch] = score
	}

	if opts.layerEnabled(LayerAliasMatch) {
		score, aliasExactTokens := aliasMatchScore(e, content, tok)
		breakdown[LayerAliasMatch] = score
		for t := range aliasExactTokens {
			exactMatchedTokens[t] = true
		}
	}

	if opts.layerEnabled(LayerStemMatch) {
		score := 0.0
		seen := make(map[string]bool)
		stemCandidates := append([]string{}, nameTokens...)
		for _, alias := range e.Aliases {
			stemCandidates = append(stemCandidates, strings.Fields(strings.ToLower(alias))...)
		}
		for _, t := range stemCandidates {
			if exactMatchedTokens[t] || seen[t] {
				continue
			}
			seen[t] = true
			if tok.Stems[tokenizer.Stem(t)] {
				score += 5
			}
		}
		breakdown[LayerStemMatch] = score
	}

	if opts.layerEnabled(LayerTypeBoost) {
		breakdown[LayerTypeBoost] = typeBoost(e.Category)
	}

	if opts.layerEnabled(LayerContextBoost) {
		breakdown[LayerContextBoost] = contextBoost(opts.NotePath, e.Category)
	}

	if opts.layerEnabled(LayerCrossFolderBoost) {
		breakdown[LayerCrossFolderBoost] = crossFolderBoost(opts.NotePath, e.Path)
	}

	if opts.layerEnabled(LayerHubBoost) && e.HubScore >= 5 {
		breakdown[LayerHubBoost] = 3
	}

	if opts.layerEnabled(LayerRecencyBoost) && deps.Recency != nil {
		if lastMentionMs, ok := deps.Recency(e.NameLower); ok {
			ageHours := float64(opts.NowMs-lastMentionMs) / 3600000.0
			breakdown[LayerRecencyBoost] = float64(recency.Boost(ageHours))
		}
	}

	if opts.layerEnabled(LayerCooccurrenceBoost) && deps.CoOccurrence != nil {
		sum := 0.0
		for linked := range alreadyLinked {
			count, dfA, dfB, total := deps.CoOccurrence(linked, e.NameLower)
			sum += cooccurrence.NPMI(count, dfA, dfB, total) * cooccurrence.DefaultWeight
		}
		if sum > 4 {
			sum = 4
		}
		breakdown[LayerCooccurrenceBoost] = sum
	}

	if opts.layerEnabled(LayerFeedbackBoost) && deps.FeedbackCounts != nil {
		pos, neg := deps.FeedbackCounts(e.CanonicalName, contextTag)
		breakdown[LayerFeedbackBoost] = feedbackBoost(pos, neg)
	}

	return breakdown
}

// aliasMatchScore returns the best-scoring alias's score, plus the set of
// alias tokens that matched exactly (across every alias, not just the
// winner) so stem_match can skip them rather than double-count.
func aliasMatchScore(e entity.Entity, content string, tok tokenizer.Result) (float64, map[string]bool) {
	best := 0.0
	lowerContent := strings.ToLower(content)
	exactTokens := make(map[string]bool)
	for _, alias := range e.Aliases {
		aliasLower := strings.ToLower(alias)
		aliasTokens := strings.Fields(aliasLower)

		score := 0.0
		for _, t := range aliasTokens {
			if tok.TokenSet[t] {
				score += 10
				exactTokens[t] = true
			}
		}

		if strings.Contains(lowerContent, aliasLower) {
			score += 8
		}

		if score > best {
			best = score
		}
	}
	return best, exactTokens
}

func typeBoost(c entity.Category) float64 {
	switch c {
	case entity.CategoryPerson:
		return 5
	case entity.CategoryProject:
		return 3
	case entity.CategoryOrganization:
		return 2
	default:
		return 0
	}
}

func contextBoost(notePath string, c entity.Category) float64 {
	switch {
	case strings.HasPrefix(notePath, "daily-notes/"), strings.HasPrefix(notePath, "journal/"):
		if c == entity.CategoryPerson {
			return 5
		}
	case strings.HasPrefix(notePath, "projects/"):
		if c == entity.CategoryProject {
			return 5
		}
	case strings.HasPrefix(notePath, "tech/"):
		if c == entity.CategoryTechnology {
			return 5
		}
	case strings.HasPrefix(notePath, "concepts/"):
		if c == entity.CategoryConcept {
			return 5
		}
	}
	return 0
}

func crossFolderBoost(notePath, entityPath string) float64 {
	if notePath == "" || entityPath == "" {
		return 0
	}
	if firstComponent(notePath) != firstComponent(entityPath) {
		return 3
	}
	return 0
}

func firstComponent(path string) string {
	if i := strings.Index(path, "/"); i >= 0 {
		return path[:i]
	}
	return path
}

// feedbackBoost implements the accuracy-tiered boost: accuracy =
// (positive - alpha*negative) / (positive + negative + beta), alpha=1, beta=2.
func feedbackBoost(positive, negative float64) float64 {
	const alpha, beta = 1.0, 2.0
	accuracy := (positive - alpha*negative) / (positive + negative + beta)
	switch {
	case accuracy >= 0.95:
		return 5
	case accuracy >= 0.80:
		return 2
	case accuracy >= 0.60:
		return 0
	case accuracy >= 0.40:
		return -2
	default:
		return -4
	}
}

func sumBreakdown(b map[Layer]float64) float64 {
	total := 0.0
	for _, v := range b {
		total += v
	}
	return total
}

// passesMultiWordThreshold implements "a candidate with >= 2 words must have
// >= 40% of its words matched (exact, alias, or stem) to remain."
func passesMultiWordThreshold(e entity.Entity, tok tokenizer.Result) bool {
	words := strings.Fields(strings.ToLower(e.CanonicalName))
	if len(words) < 2 {
		return true
	}
	matched := 0
	for _, w := range words {
		if tok.TokenSet[w] || tok.Stems[tokenizer.Stem(w)] {
			matched++
			continue
		}
		for _, alias := range e.Aliases {
			if strings.Contains(strings.ToLower(alias), w) {
				matched++
				break
			}
		}
	}
	return float64(matched)/float64(len(words)) >= 0.4
}

func zeroContentOverlap(e entity.Entity, tok tokenizer.Result) bool {
	for _, w := range strings.Fields(strings.ToLower(e.CanonicalName)) {
		if tok.TokenSet[w] || tok.Stems[tokenizer.Stem(w)] {
			return false
		}
	}
	for _, alias := range e.Aliases {
		for _, w := range strings.Fields(strings.ToLower(alias)) {
			if tok.TokenSet[w] || tok.Stems[tokenizer.Stem(w)] {
				return false
			}
		}
	}
	return true
}

func adaptiveThreshold(strictness Strictness, contentLen int) float64 {
	base, ok := baseThresholds[strictness]
	if !ok {
		base = baseThresholds[Conservative]
	}
	switch {
	case contentLen < 50:
		return base * 0.6
	case contentLen > 200:
		return base * 1.2
	default:
		return base
	}
}

func matchesArticleTitle(name string) bool {
	for _, re := range articleTitlePatterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func buildSuffix(candidates []Candidate) string {
	var b strings.Builder
	b.WriteString("→ ")
	for i, c := range candidates {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString("[[")
		b.WriteString(c.Entity.CanonicalName)
		b.WriteString("]]")
	}
	return b.String()
}
