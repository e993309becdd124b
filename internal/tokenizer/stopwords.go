package tokenizer

// stopwords is the expanded stopword list: common articles/prepositions plus
// the mandatory categories from the tokenizer spec (common verb tenses, time
// words, generic nouns, qualifiers, adjective fillers).
var stopwords = buildStopwordSet()

func buildStopwordSet() map[string]bool {
	words := []string{
		// Common articles / prepositions / conjunctions.
		"the", "and", "for", "are", "but", "not", "you", "all", "can",
		"her", "was", "one", "our", "out", "has", "had", "his", "how",
		"with", "this", "that", "from", "they", "have", "more", "will",
		"your", "what", "when", "where", "which", "their", "about",
		"into", "than", "then", "them", "these", "those", "there",
		"been", "were", "also", "its", "itself", "over", "under",
		"per", "via", "upon",

		// Common verbs and their -ed/-ing forms.
		"create", "created", "creating",
		"work", "worked", "working",
		"test", "testing", "tested",
		"build", "building", "built",
		"fix", "fixed",
		"start", "started",
		"complete", "completed",
		"update", "updated",
		"release", "released",
		"finish", "finished",

		// Time words.
		"today", "yesterday", "tomorrow", "morning", "weekly", "daily",
		"monthly", "quarterly", "currently", "recently",

		// Generic nouns.
		"thing", "things", "something", "stuff", "message", "file",

		// Qualifiers.
		"really", "actually", "basically", "probably", "simply", "quickly",

		// Adjective fillers.
		"good", "better", "different", "important",
	}

	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// IsStopword reports whether a lowercase token is in the expanded stopword list.
func IsStopword(lower string) bool {
	return stopwords[lower]
}
