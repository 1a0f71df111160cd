package prototype

import "strings"

// scanState drives the header scan. The three states make the region
// transitions explicit: everything before the guard macro is discarded,
// user content inside the guard lands before or after the regenerated
// prototype block depending on whether a known statement line has been seen.
type scanState int

const (
	beforeGuard scanState = iota
	inPreText
	inPostText
)

// GuardMacro derives the include-guard name for a header base name,
// e.g. "add" -> "ADD_H".
func GuardMacro(baseName string) string {
	return strings.ToUpper(baseName) + "_H"
}

// SynthesizeHeader merges the extracted symbols into headerText, regenerating
// the guard lines and the prototype block while preserving hand-written
// content on either side of the block. Running it on its own output with an
// unchanged symbol set yields byte-identical text.
func SynthesizeHeader(symbols []Symbol, headerText, baseName string) string {
	guard := GuardMacro(baseName)
	block := Block(symbols)
	known := statementSet(symbols)

	var pre, post strings.Builder
	state := beforeGuard
	guardMacro := ""

scan:
	for _, raw := range strings.Split(headerText, "\n") {
		line := strings.TrimSuffix(raw, "\r")
		trimmed := strings.TrimSpace(line)
		switch state {
		case beforeGuard:
			if strings.HasPrefix(trimmed, "#ifndef") {
				if fields := strings.Fields(trimmed); len(fields) > 1 {
					guardMacro = fields[1]
				}
				state = inPreText
			}
		default:
			if strings.HasPrefix(trimmed, "#endif") {
				break scan
			}
			if isGuardDefine(trimmed, guardMacro) {
				continue
			}
			if _, ok := known[trimmed]; ok && trimmed != "" {
				// Known statement lines are regenerated by the block;
				// seeing one marks the boundary between the regions.
				state = inPostText
				continue
			}
			if state == inPreText {
				pre.WriteString(line + "\n")
			} else {
				post.WriteString(line + "\n")
			}
		}
	}

	body := joinRegions(pre.String(), block, post.String())
	if body == "" {
		return "#ifndef " + guard + "\n#define " + guard + "\n\n#endif // " + guard + "\n"
	}
	return "#ifndef " + guard + "\n#define " + guard + "\n\n" +
		body + "\n\n#endif // " + guard + "\n"
}

// joinRegions assembles preText, the prototype block, and postText separated
// by single blank lines. Trimming each region first keeps repeated runs from
// stacking up separator lines, so synthesis is idempotent byte for byte.
func joinRegions(regions ...string) string {
	var parts []string
	for _, region := range regions {
		if trimmed := strings.TrimSpace(region); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "\n\n")
}

// isGuardDefine reports whether the line re-defines the macro opened by the
// guard's #ifndef. That line is regenerated alongside the guard itself.
func isGuardDefine(trimmed, guardMacro string) bool {
	if guardMacro == "" {
		return false
	}
	fields := strings.Fields(trimmed)
	return len(fields) >= 2 && fields[0] == "#define" && fields[1] == guardMacro
}
