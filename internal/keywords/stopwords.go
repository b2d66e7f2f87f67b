package keywords

var englishStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from", "has", "he",
	"in", "is", "it", "its", "of", "on", "that", "the", "to", "was", "were", "will", "with",
}

var arabicStopWords = []string{
	"في", "من", "على", "إلى", "عن", "هو", "هي", "هم", "هن",
	"هذا", "هذه", "ذلك", "تلك", "كان", "يكون", "قد", "تم",
}

// StopWords returns the bundled English and Arabic stop-word set.
func StopWords() map[string]bool {
	words := make(map[string]bool, len(englishStopWords)+len(arabicStopWords))
	for _, w := range englishStopWords {
		words[w] = true
	}
	for _, w := range arabicStopWords {
		words[w] = true
	}
	return words
}
