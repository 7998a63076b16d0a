package logging

import (
	"regexp"
	"strings"
)

// LoggerPatternConfig sets Level on every registered logger whose name matches Pattern. Pattern
// is a dotted logger name in which a "*" section matches any run of characters, e.g.
// "mission.*" or "mission.*.frames".
type LoggerPatternConfig struct {
	Pattern string `json:"pattern"`
	Level   string `json:"level"`
}

// loggerSection is one dot separated part of a pattern: a name or a lone wildcard.
const loggerSection = `([a-zA-Z0-9]+([_-]*[a-zA-Z0-9]+)*|\*)`

var loggerPatternRegexp = regexp.MustCompile(`^` + loggerSection + `(\.` + loggerSection + `)*$`)

func validatePattern(pattern string) bool {
	return loggerPatternRegexp.MatchString(pattern)
}

// patternMatcher compiles a validated pattern into a regexp over full logger names.
func patternMatcher(pattern string) (*regexp.Regexp, error) {
	sections := strings.Split(pattern, ".")
	for i, s := range sections {
		if s == "*" {
			sections[i] = ".*"
			continue
		}
		sections[i] = regexp.QuoteMeta(s)
	}
	return regexp.Compile(`^` + strings.Join(sections, `\.`) + `$`)
}
