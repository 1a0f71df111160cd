package prototype

import "strings"

// Block renders the prototype block: one statement line per function, in the
// order given. A declaration-only symbol is skipped when a definition in the
// set produces the identical statement (the definition's line covers it), but
// is emitted when no such definition exists, so a prototype whose function
// lives in another translation unit survives regeneration. Rendered
// duplicates are emitted once, guarding against a function that surfaces in
// both the source and header symbol sets.
func Block(symbols []Symbol) string {
	defined := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		if !sym.DeclarationOnly {
			defined[sym.Statement()] = struct{}{}
		}
	}
	var b strings.Builder
	seen := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		stmt := sym.Statement()
		if sym.DeclarationOnly {
			if _, covered := defined[stmt]; covered {
				continue
			}
		}
		if _, dup := seen[stmt]; dup {
			continue
		}
		seen[stmt] = struct{}{}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(stmt)
	}
	return b.String()
}

// statementSet holds the rendered text of every symbol, declaration or not.
// Membership decides which existing lines are regenerated rather than
// preserved.
func statementSet(symbols []Symbol) map[string]struct{} {
	set := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		set[sym.Statement()] = struct{}{}
	}
	return set
}
