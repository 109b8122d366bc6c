// Package xmltag pulls loosely formatted XML-style sections out of LLM responses.
// Models do not escape their text, so this is pattern matching rather than XML decoding.
package xmltag

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

var (
	cacheMu sync.Mutex
	cache   = map[string]*regexp.Regexp{}

	stepPattern = regexp.MustCompile(`(?s)<step_(\d+)>(.*?)</step_(\d+)>`)
)

func pattern(name string) *regexp.Regexp {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if re, ok := cache[name]; ok {
		return re
	}
	re := regexp.MustCompile(`(?is)<` + regexp.QuoteMeta(name) + `>(.*?)</` + regexp.QuoteMeta(name) + `>`)
	cache[name] = re
	return re
}

// Extract returns the trimmed content of the first <name>...</name> section.
func Extract(text, name string) (string, bool) {
	m := pattern(name).FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// Steps returns the <step_N> sections ordered by N. Mismatched open/close numbers are ignored.
func Steps(text string) []string {
	type step struct {
		n    int
		body string
	}

	var steps []step
	for _, m := range stepPattern.FindAllStringSubmatch(text, -1) {
		if m[1] != m[3] {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		steps = append(steps, step{n: n, body: strings.TrimSpace(m[2])})
	}

	sort.SliceStable(steps, func(i, j int) bool { return steps[i].n < steps[j].n })

	result := make([]string, 0, len(steps))
	for _, s := range steps {
		result = append(result, s.body)
	}
	return result
}
