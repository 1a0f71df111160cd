package prototype

import (
	"fmt"
	"strings"
)

// EnsureInclude reports the include directive to insert at the top of the
// source file so it pulls in its paired header, or ok=false when the literal
// directive is already present. Matching is an exact substring check; an
// equivalent include spelled differently is not recognized.
func EnsureInclude(sourceText, baseName string) (directive string, ok bool) {
	directive = fmt.Sprintf("#include %q", baseName+".h")
	if strings.Contains(sourceText, directive) {
		return "", false
	}
	return directive, true
}
