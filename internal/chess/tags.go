package chess

// SevenTagRoster is the standard seven-tag roster, in output order.
var SevenTagRoster = []string{
	"Event", "Site", "Date", "Round", "White", "Black", "Result",
}

// IsSevenTagRosterTag returns true if the tag belongs to the seven-tag roster.
func IsSevenTagRosterTag(tag string) bool {
	for _, t := range SevenTagRoster {
		if t == tag {
			return true
		}
	}
	return false
}

// Tags added or consumed by the puzzle extractor.
const (
	TagFEN       = "FEN"
	TagSetUp     = "SetUp"
	TagObjective = "Objetivo"
	TagPhase     = "Fase"
)
