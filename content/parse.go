package content

import (
	"errors"
	"fmt"
	"strings"
)

// MaxMarkupDepth is the deepest element nesting golang.org/x/net/html accepts,
// documents nested deeper are rejected with ErrMarkupTooDeep.
const MaxMarkupDepth = 512

var ErrMarkupTooDeep = fmt.Errorf("markup is nested deeper than %d elements", MaxMarkupDepth)

// html parser reports exhausted open element stack with plain error text
const tooDeepMessage = "open stack of elements exceeds"

// parseError wraps markup parsing failure, depth overflow is reported as
// ErrMarkupTooDeep.
func parseError(what string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrMarkupTooDeep) || strings.Contains(err.Error(), tooDeepMessage) {
		return fmt.Errorf("unable to parse %s: %w (%v)", what, ErrMarkupTooDeep, err)
	}
	return fmt.Errorf("unable to parse %s: %w", what, err)
}
