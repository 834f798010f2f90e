package formula

import (
	"bufio"
	"regexp"
	"strings"
)

const continuationSuffixConstant = ","

var (
	singleLineHeadPattern = regexp.MustCompile(`^(\s*)head\s+"([^"]+)"(.*)$`)
	blockHeadPattern      = regexp.MustCompile(`^(\s*)head\s+do\s*(#.*)?$`)
	blockURLPattern       = regexp.MustCompile(`^\s*url\s+"([^"]+)"(.*)$`)
	blockEndPattern       = regexp.MustCompile(`^(\s*)end\s*(#.*)?$`)
	branchOptionPattern   = regexp.MustCompile(`\bbranch:\s*"([^"]+)"`)
)

// ParseHead extracts the head specification from formula source.
// It returns nil when the formula declares no head.
func ParseHead(source string) *HeadSpecification {
	lines := splitLines(source)
	for lineIndex := 0; lineIndex < len(lines); lineIndex++ {
		line := lines[lineIndex]

		if matches := singleLineHeadPattern.FindStringSubmatch(line); matches != nil {
			options := joinContinuation(matches[3], lines, lineIndex)
			return &HeadSpecification{URL: matches[2], Branch: extractBranch(options)}
		}

		if matches := blockHeadPattern.FindStringSubmatch(line); matches != nil {
			return parseHeadBlock(lines, lineIndex, matches[1])
		}
	}
	return nil
}

func parseHeadBlock(lines []string, headLineIndex int, headIndentation string) *HeadSpecification {
	specification := &HeadSpecification{}
	for lineIndex := headLineIndex + 1; lineIndex < len(lines); lineIndex++ {
		line := lines[lineIndex]
		if endMatches := blockEndPattern.FindStringSubmatch(line); endMatches != nil && endMatches[1] == headIndentation {
			break
		}
		urlMatches := blockURLPattern.FindStringSubmatch(line)
		if urlMatches == nil || len(specification.URL) > 0 {
			continue
		}
		specification.URL = urlMatches[1]
		specification.Branch = extractBranch(joinContinuation(urlMatches[2], lines, lineIndex))
	}
	if len(specification.URL) == 0 {
		return nil
	}
	return specification
}

// joinContinuation appends following lines while the options end with a comma.
func joinContinuation(options string, lines []string, lineIndex int) string {
	joinedOptions := options
	for nextIndex := lineIndex + 1; nextIndex < len(lines); nextIndex++ {
		if !strings.HasSuffix(strings.TrimSpace(stripComment(joinedOptions)), continuationSuffixConstant) {
			break
		}
		joinedOptions += " " + strings.TrimSpace(lines[nextIndex])
	}
	return joinedOptions
}

func extractBranch(options string) string {
	branchMatches := branchOptionPattern.FindStringSubmatch(stripComment(options))
	if branchMatches == nil {
		return ""
	}
	return branchMatches[1]
}

// stripComment drops a trailing Ruby comment that starts outside a string literal.
func stripComment(text string) string {
	insideString := false
	for characterIndex, character := range text {
		switch {
		case character == '"':
			insideString = !insideString
		case character == '#' && !insideString:
			return text[:characterIndex]
		}
	}
	return text
}

func splitLines(source string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(source))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}
