package prototype

import "strings"

// RewriteSource rewrites a standalone source file: preprocessor directives
// float to the top, every line matching a rendered symbol statement is
// dropped, and the regenerated prototype block is inserted between the
// directives and the function bodies. A forward declaration that duplicates
// a definition therefore collapses into the single block line.
func RewriteSource(symbols []Symbol, sourceText string) string {
	block := Block(symbols)
	known := statementSet(symbols)

	var pre, post strings.Builder
	for _, raw := range strings.Split(sourceText, "\n") {
		line := strings.TrimSuffix(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			if _, ok := known[trimmed]; ok {
				continue
			}
		}
		if strings.HasPrefix(trimmed, "#") {
			pre.WriteString(line + "\n")
		} else {
			post.WriteString(line + "\n")
		}
	}

	return joinRegions(pre.String(), block, post.String()) + "\n"
}
