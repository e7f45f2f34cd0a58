package mapreduce

import (
	"fmt"
	"sort"
)

// Keyword is a word with its occurrence count.
type Keyword struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// String formats the keyword as "word:count".
func (k Keyword) String() string {
	return fmt.Sprintf("%s:%d", k.Word, k.Count)
}

// TopKeywords returns the n most frequent words, ties broken alphabetically.
// A negative n returns all words.
func TopKeywords(wordCounts map[string]int, n int) []Keyword {
	ss := make([]Keyword, 0, len(wordCounts))
	for k, v := range wordCounts {
		ss = append(ss, Keyword{Word: k, Count: v})
	}

	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Count != ss[j].Count {
			return ss[i].Count > ss[j].Count
		}
		return ss[i].Word < ss[j].Word
	})

	if n >= 0 && len(ss) > n {
		ss = ss[:n]
	}
	return ss
}

// TopCounts is TopKeywords as a map, the form stored with run results.
func TopCounts(wordCounts map[string]int, n int) map[string]int {
	top := TopKeywords(wordCounts, n)
	out := make(map[string]int, len(top))
	for _, k := range top {
		out[k.Word] = k.Count
	}
	return out
}
