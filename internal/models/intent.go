package models

import "strings"

// Intent is a coarse label returned by the intent classifier.
type Intent string

const (
	// IntentYes is an affirmative answer.
	IntentYes Intent = "Yes"
	// IntentNo is a negative answer.
	IntentNo Intent = "No"
	// IntentUnrecognized means the text mapped to no known intent. The literal
	// value doubles as the recorded drug category when classification fails.
	IntentUnrecognized Intent = "Error"
)

// DrugCategories is the closed set of substance category labels the classifier
// may return.
var DrugCategories = []Intent{
	"Benzodiazepines",
	"Cannabinoids",
	"Depressants",
	"Hallucinogens",
	"Opioids",
	"Stimulants",
	"Inhalants",
}

// IsDrugCategory reports whether the intent is one of the substance categories.
func (i Intent) IsDrugCategory() bool {
	for _, c := range DrugCategories {
		if i == c {
			return true
		}
	}
	return false
}

// ParseIntent maps a raw classifier label onto the closed intent set,
// case-insensitively. Anything outside the set is IntentUnrecognized.
func ParseIntent(label string) Intent {
	label = strings.TrimSpace(label)
	if strings.EqualFold(label, string(IntentYes)) {
		return IntentYes
	}
	if strings.EqualFold(label, string(IntentNo)) {
		return IntentNo
	}
	for _, c := range DrugCategories {
		if strings.EqualFold(label, string(c)) {
			return c
		}
	}
	return IntentUnrecognized
}
