package policy

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// compiledRule pairs a PathRule with its compiled matcher and the raw
// pattern length used for precedence ordering.
type compiledRule struct {
	rule    PathRule
	matcher *regexp.Regexp
	length  int
}

var (
	patternCacheMu sync.Mutex
	patternCache   = make(map[string]*regexp.Regexp)
)

// compilePattern turns a robots.txt path pattern into a regexp.
//
// The teacher's compiler always appended ".*" to the translated pattern,
// which silently defeats a trailing "$" (RFC 9309 end-of-path anchor):
// "/foo$.*" matches anything starting with "/foo", not just "/foo" itself.
// This resolves that by anchoring "$" to true end-of-string and only
// appending the implicit-prefix ".*" when the pattern does NOT end in "$".
func compilePattern(pattern string) *regexp.Regexp {
	patternCacheMu.Lock()
	if re, ok := patternCache[pattern]; ok {
		patternCacheMu.Unlock()
		return re
	}
	patternCacheMu.Unlock()

	hasEndAnchor := strings.HasSuffix(pattern, "$")
	body := pattern
	if hasEndAnchor {
		body = body[:len(body)-1]
	}

	var b strings.Builder
	b.WriteByte('^')
	for _, r := range body {
		switch r {
		case '*':
			b.WriteString(".*")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if hasEndAnchor {
		b.WriteByte('$')
	} else {
		b.WriteString(".*")
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		// Malformed pattern: never match, never panic a crawl.
		re = regexp.MustCompile(`^\x00unmatchable\x00$`)
	}

	patternCacheMu.Lock()
	patternCache[pattern] = re
	patternCacheMu.Unlock()
	return re
}

// selectGroup picks the User-agent group that governs agent, preferring an
// exact (case-insensitive) product-token match, then a prefix match, then
// the wildcard "*" group. Returns ok=false if no group applies.
func selectGroup(groups []UserAgentGroup, agent string) (UserAgentGroup, bool) {
	agentLower := strings.ToLower(agent)

	var exact, prefix, wildcard *UserAgentGroup
	for i := range groups {
		g := &groups[i]
		for _, ua := range g.UserAgents {
			uaLower := strings.ToLower(ua)
			switch {
			case uaLower == agentLower:
				exact = g
			case uaLower == "*":
				if wildcard == nil {
					wildcard = g
				}
			case strings.HasPrefix(agentLower, uaLower) || strings.HasPrefix(uaLower, agentLower):
				if prefix == nil {
					prefix = g
				}
			}
		}
	}

	switch {
	case exact != nil:
		return *exact, true
	case prefix != nil:
		return *prefix, true
	case wildcard != nil:
		return *wildcard, true
	default:
		return UserAgentGroup{}, false
	}
}

// evaluate decides whether path is allowed for the given group, per §4.1:
// candidate rules are those whose pattern matches path, sorted by (type
// ascending — Allow before Disallow — then pattern length descending), and
// the first match wins. An empty or non-matching rule set defaults to
// allow.
func evaluate(group UserAgentGroup, path string) Decision {
	if len(group.Rules) == 0 {
		return Decision{Allowed: true, Reason: EmptyRuleSet, CrawlDelay: group.CrawlDelay}
	}

	var candidates []compiledRule
	for _, rule := range group.Rules {
		if rule.Pattern == "" {
			// An empty Disallow value means "allow everything" per RFC 9309.
			if rule.Type == RuleDisallow {
				continue
			}
		}
		re := compilePattern(rule.Pattern)
		if re.MatchString(path) {
			candidates = append(candidates, compiledRule{rule: rule, matcher: re, length: len(rule.Pattern)})
		}
	}

	if len(candidates) == 0 {
		return Decision{Allowed: true, Reason: NoMatchingRules, CrawlDelay: group.CrawlDelay}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].rule.Type != candidates[j].rule.Type {
			return candidates[i].rule.Type < candidates[j].rule.Type
		}
		return candidates[i].length > candidates[j].length
	})

	winner := candidates[0].rule
	if winner.Type == RuleAllow {
		return Decision{Allowed: true, Reason: AllowedByRobots, CrawlDelay: group.CrawlDelay}
	}
	return Decision{Allowed: false, Reason: DisallowedByRobots, CrawlDelay: group.CrawlDelay}
}

// IsAllowed answers whether agent may fetch path under meta.
func IsAllowed(meta RobotsMetadata, agent, path string) Decision {
	group, ok := selectGroup(meta.Groups, agent)
	if !ok {
		return Decision{Allowed: true, Reason: EmptyRuleSet}
	}
	return evaluate(group, path)
}
