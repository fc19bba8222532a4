package domain

// Condition is a physical grade for media or sleeve. Lower rank is better.
// The zero value is not a valid grade.
type Condition uint8

const (
	ConditionMint Condition = iota + 1
	ConditionNearMint
	ConditionVeryGoodPlus
	ConditionVeryGood
	ConditionGoodPlus
	ConditionGood
	ConditionFair
	ConditionPoor
	ConditionNotGraded
	ConditionGeneric
	ConditionNotProvided
)

var conditionCodes = [...]string{
	ConditionMint:         "M",
	ConditionNearMint:     "NM",
	ConditionVeryGoodPlus: "VG+",
	ConditionVeryGood:     "VG",
	ConditionGoodPlus:     "G+",
	ConditionGood:         "G",
	ConditionFair:         "F",
	ConditionPoor:         "P",
	ConditionNotGraded:    "not graded",
	ConditionGeneric:      "generic",
	ConditionNotProvided:  "not provided",
}

// conditionMap maps every accepted marketplace spelling to its grade.
var conditionMap = map[string]Condition{
	"Mint (M)":             ConditionMint,
	"M":                    ConditionMint,
	"Near Mint (NM)":       ConditionNearMint,
	"Near Mint (NM or M-)": ConditionNearMint,
	"NM":                   ConditionNearMint,
	"M-":                   ConditionNearMint,
	"Very Good Plus (VG+)": ConditionVeryGoodPlus,
	"VG+":                  ConditionVeryGoodPlus,
	"Very Good (VG)":       ConditionVeryGood,
	"VG":                   ConditionVeryGood,
	"Good Plus (G+)":       ConditionGoodPlus,
	"G+":                   ConditionGoodPlus,
	"Good (G)":             ConditionGood,
	"G":                    ConditionGood,
	"Fair (F)":             ConditionFair,
	"F":                    ConditionFair,
	"Poor (P)":             ConditionPoor,
	"P":                    ConditionPoor,
	"Not Graded":           ConditionNotGraded,
	"not graded":           ConditionNotGraded,
	"Generic":              ConditionGeneric,
	"generic":              ConditionGeneric,
	"No Cover":             ConditionNotProvided,
	"not provided":         ConditionNotProvided,
	"":                     ConditionNotProvided,
}

// ParseCondition maps a grading string to its Condition. Matching is exact
// and case-sensitive; anything else is an *UnknownGradeError.
func ParseCondition(s string) (Condition, error) {
	c, ok := conditionMap[s]
	if !ok {
		return 0, &UnknownGradeError{Input: s}
	}
	return c, nil
}

// AllConditions lists every grade from best to worst.
func AllConditions() []Condition {
	out := make([]Condition, 0, len(conditionCodes)-1)
	for c := ConditionMint; c <= ConditionNotProvided; c++ {
		out = append(out, c)
	}
	return out
}

// IsValid reports whether c is one of the eleven grades.
func (c Condition) IsValid() bool {
	return c >= ConditionMint && c <= ConditionNotProvided
}

// Rank is 0 for Mint through 10 for not provided.
func (c Condition) Rank() int { return int(c) - int(ConditionMint) }

// String returns the canonical short code.
func (c Condition) String() string {
	if !c.IsValid() {
		return "invalid"
	}
	return conditionCodes[c]
}

// Compare returns a positive number when c is a better grade than other,
// zero when equal and negative when worse.
func (c Condition) Compare(other Condition) int {
	return other.Rank() - c.Rank()
}

// Better reports whether c is strictly better than other.
func (c Condition) Better(other Condition) bool { return c.Compare(other) > 0 }

// MeetsMinimum reports whether c is at least as good as min.
func (c Condition) MeetsMinimum(min Condition) bool {
	return c.IsValid() && min.IsValid() && c.Rank() <= min.Rank()
}

// MarshalText implements encoding.TextMarshaler.
func (c Condition) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; every canonical code is
// an accepted input.
func (c *Condition) UnmarshalText(text []byte) error {
	parsed, err := ParseCondition(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
