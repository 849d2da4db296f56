package policy

import (
	"bufio"
	"strconv"
	"strings"
	"time"
)

/*
ParseRobots is grounded on the teacher repo's internal/robots/fetcher.go
ParseRobotsTxt: line-oriented, "#" strips comments to end of line, blank
lines skipped, fields are case-insensitive, values preserve case (§4.1).

It additionally recognizes Request-rate, Visit-time and Host, which the
teacher's parser did not handle, and it keeps literal Allow/Disallow
pattern strings instead of eagerly normalizing them — pattern compilation
happens later in match.go so the "$" end-anchor handling (see
compilePattern there) lives in one place.
*/
func ParseRobots(content, baseURL string) RobotsMetadata {
	meta := RobotsMetadata{BaseURL: baseURL}

	var groups []UserAgentGroup
	var current *UserAgentGroup

	flush := func() {
		if current != nil {
			groups = append(groups, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx != -1 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon == -1 {
			continue
		}
		field := strings.ToLower(strings.TrimSpace(line[:colon]))
		value := strings.TrimSpace(line[colon+1:])

		switch field {
		case "user-agent":
			if current != nil && len(current.Rules) > 0 {
				// A rule-bearing group followed by another user-agent line
				// starts a new group.
				flush()
			}
			if current == nil {
				current = &UserAgentGroup{}
			}
			current.UserAgents = append(current.UserAgents, value)

		case "allow":
			if current == nil {
				current = &UserAgentGroup{UserAgents: []string{"*"}}
			}
			current.Rules = append(current.Rules, PathRule{Type: RuleAllow, Pattern: value})

		case "disallow":
			if current == nil {
				current = &UserAgentGroup{UserAgents: []string{"*"}}
			}
			current.Rules = append(current.Rules, PathRule{Type: RuleDisallow, Pattern: value})

		case "crawl-delay":
			if seconds, err := strconv.ParseFloat(value, 64); err == nil && seconds >= 0 && current != nil {
				current.CrawlDelay = time.Duration(seconds * float64(time.Second))
				current.HasDelay = true
			}

		case "request-rate":
			if rr, ok := parseRequestRate(value); ok {
				meta.RequestRate = &rr
			}

		case "visit-time":
			if vt, ok := parseVisitTime(value); ok {
				meta.VisitTime = &vt
			}

		case "host":
			if meta.PreferredHost == "" {
				meta.PreferredHost = value
			}

		case "sitemap":
			if value != "" {
				meta.Sitemaps = append(meta.Sitemaps, value)
			}
		}
	}
	flush()

	meta.Groups = groups
	return meta
}

// parseRequestRate parses "N/Ts|m|h" (e.g. "1/10s", "5/1m").
func parseRequestRate(value string) (RequestRate, bool) {
	parts := strings.SplitN(value, "/", 2)
	if len(parts) != 2 {
		return RequestRate{}, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || n <= 0 {
		return RequestRate{}, false
	}
	unitPart := strings.TrimSpace(parts[1])
	if unitPart == "" {
		return RequestRate{}, false
	}
	unit := unitPart[len(unitPart)-1]
	numPart := unitPart[:len(unitPart)-1]
	count := 1
	if numPart != "" {
		if parsed, err := strconv.Atoi(numPart); err == nil {
			count = parsed
		} else {
			return RequestRate{}, false
		}
	}
	var window time.Duration
	switch unit {
	case 's':
		window = time.Duration(count) * time.Second
	case 'm':
		window = time.Duration(count) * time.Minute
	case 'h':
		window = time.Duration(count) * time.Hour
	default:
		return RequestRate{}, false
	}
	return RequestRate{Requests: n, Window: window}, true
}

// parseVisitTime parses "HHMM-HHMM" UTC.
func parseVisitTime(value string) (VisitTimeWindow, bool) {
	parts := strings.SplitN(value, "-", 2)
	if len(parts) != 2 {
		return VisitTimeWindow{}, false
	}
	start, ok1 := parseHHMM(parts[0])
	end, ok2 := parseHHMM(parts[1])
	if !ok1 || !ok2 {
		return VisitTimeWindow{}, false
	}
	return VisitTimeWindow{StartMinute: start, EndMinute: end}, true
}

func parseHHMM(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if len(value) != 4 {
		return 0, false
	}
	hh, err1 := strconv.Atoi(value[:2])
	mm, err2 := strconv.Atoi(value[2:])
	if err1 != nil || err2 != nil || hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, false
	}
	return hh*60 + mm, true
}
