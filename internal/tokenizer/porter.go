package tokenizer

import "strings"

// Stem implements the classical Porter stemming algorithm (Porter, 1980).
// No suitable stemming library was found in the example corpus (see
// DESIGN.md) so this is a direct, from-scratch implementation following the
// standard five-step rule ladder with m-count guards.
func Stem(word string) string {
	w := strings.ToLower(word)
	if len(w) <= 2 {
		return w
	}
	w = step1a(w)
	w = step1b(w)
	w = step1c(w)
	w = step2(w)
	w = step3(w)
	w = step4(w)
	w = step5a(w)
	w = step5b(w)
	return w
}

// isVowel reports whether the byte at index i is a vowel, where 'y' counts
// as a vowel only when it does not follow a consonant.
func isVowel(w string, i int) bool {
	switch w[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	case 'y':
		if i == 0 {
			return false
		}
		return !isVowel(w, i-1)
	}
	return false
}

// measure computes the Porter "m" value: the number of VC sequences in the
// stem, per the classical [C](VC){m}[V] decomposition.
func measure(w string) int {
	m := 0
	i := 0
	n := len(w)
	// Skip leading consonants.
	for i < n && !isVowel(w, i) {
		i++
	}
	for i < n {
		// Skip a vowel run.
		for i < n && isVowel(w, i) {
			i++
		}
		if i >= n {
			break
		}
		// Skip a consonant run; each full VC pair increments m.
		for i < n && !isVowel(w, i) {
			i++
		}
		m++
	}
	return m
}

func containsVowel(w string) bool {
	for i := range w {
		if isVowel(w, i) {
			return true
		}
	}
	return false
}

// endsDoubleConsonant reports whether w ends in a double consonant (e.g. "tt", "ss").
func endsDoubleConsonant(w string) bool {
	n := len(w)
	if n < 2 {
		return false
	}
	if w[n-1] != w[n-2] {
		return false
	}
	return !isVowel(w, n-1)
}

// endsCVC reports the consonant-vowel-consonant pattern used by step1b's
// "add e" rule, where the final consonant is not w, x, or y.
func endsCVC(w string) bool {
	n := len(w)
	if n < 3 {
		return false
	}
	if isVowel(w, n-3) || !isVowel(w, n-2) || isVowel(w, n-1) {
		return false
	}
	switch w[n-1] {
	case 'w', 'x', 'y':
		return false
	}
	return true
}

func hasSuffix(w, suf string) bool { return strings.HasSuffix(w, suf) }

func trimSuffix(w, suf string) string { return strings.TrimSuffix(w, suf) }

// step1a handles plurals.
func step1a(w string) string {
	switch {
	case hasSuffix(w, "sses"):
		return trimSuffix(w, "es")
	case hasSuffix(w, "ies"):
		return trimSuffix(w, "ies") + "i"
	case hasSuffix(w, "ss"):
		return w
	case hasSuffix(w, "s"):
		return trimSuffix(w, "s")
	}
	return w
}

// step1b handles -eed/-ed/-ing.
func step1b(w string) string {
	switch {
	case hasSuffix(w, "eed"):
		stem := trimSuffix(w, "eed")
		if measure(stem) > 0 {
			return stem + "ee"
		}
		return w
	case hasSuffix(w, "ed"):
		stem := trimSuffix(w, "ed")
		if containsVowel(stem) {
			return step1bCleanup(stem)
		}
		return w
	case hasSuffix(w, "ing"):
		stem := trimSuffix(w, "ing")
		if containsVowel(stem) {
			return step1bCleanup(stem)
		}
		return w
	}
	return w
}

func step1bCleanup(stem string) string {
	switch {
	case hasSuffix(stem, "at"), hasSuffix(stem, "bl"), hasSuffix(stem, "iz"):
		return stem + "e"
	case endsDoubleConsonant(stem) && !hasSuffix(stem, "l") && !hasSuffix(stem, "s") && !hasSuffix(stem, "z"):
		return stem[:len(stem)-1]
	case measure(stem) == 1 && endsCVC(stem):
		return stem + "e"
	}
	return stem
}

// step1c turns a trailing y preceded by a consonant into i.
func step1c(w string) string {
	if hasSuffix(w, "y") && len(w) > 1 {
		stem := w[:len(w)-1]
		if containsVowel(stem) && !isVowel(w, len(w)-2) {
			return stem + "i"
		}
	}
	return w
}

type suffixRule struct {
	suffix      string
	replacement string
}

// applyRules replaces the first matching suffix whose stem has measure > 0.
func applyRules(w string, rules []suffixRule) string {
	for _, r := range rules {
		if hasSuffix(w, r.suffix) {
			stem := trimSuffix(w, r.suffix)
			if measure(stem) > 0 {
				return stem + r.replacement
			}
			return w
		}
	}
	return w
}

func step2(w string) string {
	return applyRules(w, []suffixRule{
		{"ational", "ate"},
		{"tional", "tion"},
		{"enci", "ence"},
		{"anci", "ance"},
		{"izer", "ize"},
		{"abli", "able"},
		{"alli", "al"},
		{"entli", "ent"},
		{"eli", "e"},
		{"ousli", "ous"},
		{"ization", "ize"},
		{"ation", "ate"},
		{"ator", "ate"},
		{"alism", "al"},
		{"iveness", "ive"},
		{"fulness", "ful"},
		{"ousness", "ous"},
		{"aliti", "al"},
		{"iviti", "ive"},
		{"biliti", "ble"},
	})
}

func step3(w string) string {
	return applyRules(w, []suffixRule{
		{"icate", "ic"},
		{"ative", ""},
		{"alize", "al"},
		{"iciti", "ic"},
		{"ical", "ic"},
		{"ful", ""},
		{"ness", ""},
	})
}

func step4(w string) string {
	suffixes := []string{
		"al", "ance", "ence", "er", "ic", "able", "ible", "ant",
		"ement", "ment", "ent", "ou", "ism", "ate", "iti", "ous",
		"ive", "ize",
	}
	for _, suf := range suffixes {
		if !hasSuffix(w, suf) {
			continue
		}
		stem := trimSuffix(w, suf)
		if suf == "ion" {
			// handled separately below
			continue
		}
		if measure(stem) > 1 {
			return stem
		}
		return w
	}
	// "ion" only strips after "s" or "t".
	if hasSuffix(w, "sion") || hasSuffix(w, "tion") {
		stem := trimSuffix(w, "ion")
		if measure(stem) > 1 {
			return stem
		}
	}
	return w
}

func step5a(w string) string {
	if hasSuffix(w, "e") {
		stem := trimSuffix(w, "e")
		m := measure(stem)
		if m > 1 {
			return stem
		}
		if m == 1 && !endsCVC(stem) {
			return stem
		}
	}
	return w
}

func step5b(w string) string {
	if measure(w) > 1 && endsDoubleConsonant(w) && hasSuffix(w, "l") {
		return w[:len(w)-1]
	}
	return w
}
