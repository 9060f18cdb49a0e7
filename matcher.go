package provost

import (
	"fmt"
	"path"
	"regexp"
)

// attrMatch applies the attribute whitelist rule: an empty whitelist allows
// any requested attribute including none, a non-empty whitelist requires an
// exact match and therefore denies a request that carries no attribute.
func attrMatch(allowed []string, requested *string) bool {
	if len(allowed) == 0 {
		return true
	}
	if requested == nil {
		return false
	}
	for _, a := range allowed {
		if a == *requested {
			return true
		}
	}
	return false
}

// matchDiskPattern reports whether a target attribute pattern matches the
// disk path. Patterns are regular expressions anchored at the start and
// applied to the final path segment only, so a pattern "stud.*" matches
// /uio/hume/student-u3 via its base name. A malformed pattern is an error,
// never a silent non-match.
func matchDiskPattern(pattern, diskPath string) (bool, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return false, fmt.Errorf("provost: bad disk pattern %q: %w", pattern, err)
	}
	return re.MatchString(path.Base(diskPath)), nil
}
