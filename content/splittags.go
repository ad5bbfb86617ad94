package content

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrNoSplitTags = errors.New("no split tags specified")

// SplitTags maps lower case tag name to hierarchy level it opens.
type SplitTags map[string]int

// DefaultSplitTags is used when nothing was configured.
var DefaultSplitTags = []string{"h1", "h2", "h3"}

// ParseSplitTags builds SplitTags from ordered list of tag names. Heading tags
// hN always get level N so levels do not have to be contiguous, any other tag
// gets its 1 based position in the list. Repeated names are ignored.
func ParseSplitTags(names []string) (SplitTags, error) {
	tags := make(SplitTags, len(names))
	for i, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return nil, fmt.Errorf("split tag %d is empty", i+1)
		}
		if _, exists := tags[name]; exists {
			continue
		}
		tags[name] = i + 1
		if level, ok := headingLevel(name); ok {
			tags[name] = level
		}
	}
	if len(tags) == 0 {
		return nil, ErrNoSplitTags
	}
	return tags, nil
}

func headingLevel(name string) (int, bool) {
	if len(name) != 2 || name[0] != 'h' {
		return 0, false
	}
	level, err := strconv.Atoi(name[1:])
	if err != nil || level < 1 || level > 6 {
		return 0, false
	}
	return level, true
}

// Level returns level for tag name and whether it is a split tag at all.
func (t SplitTags) Level(name string) (int, bool) {
	level, ok := t[strings.ToLower(name)]
	return level, ok
}
