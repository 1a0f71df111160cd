package prototype

// LineRange is a half-open run of whole lines [Start, End), zero-based.
// Deleting a range removes each line together with its line break.
type LineRange struct {
	Start int
	End   int
}

// DeclarationRanges computes the line ranges of forward declarations written
// inside the origin document itself. Once a header carries the prototypes,
// these lines are redundant and can be deleted. Each range extends to the
// start of the line after the declaration so no blank-line artifact is left
// behind, clamped to the document length for a declaration on the final line.
func DeclarationRanges(symbols []Symbol, origin string, lineCount int) []LineRange {
	var ranges []LineRange
	for _, sym := range symbols {
		if !sym.DeclarationOnly || sym.Origin != origin {
			continue
		}
		end := sym.EndLine
		if end > lineCount {
			end = lineCount
		}
		if sym.StartLine >= end {
			continue
		}
		ranges = append(ranges, LineRange{Start: sym.StartLine, End: end})
	}
	return ranges
}
