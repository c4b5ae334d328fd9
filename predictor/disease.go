// Package predictor trains the per-disease models at startup and serves
// predictions from them.
package predictor

// Disease describes one dataset and how its predictions are presented.
type Disease struct {
	Key   string
	Title string

	// FeatureColumns is the fixed input order shared by training and requests.
	FeatureColumns []string
	// ZeroAsMissing lists columns where 0 is an implausible reading.
	ZeroAsMissing []string

	TargetColumn       string
	TargetFallbackLast bool

	PositiveText string
	NegativeText string
}

var Heart = Disease{
	Key:                "heart",
	Title:              "Heart",
	FeatureColumns:     []string{"Age", "Sex", "Chest pain type", "BP", "Cholesterol", "Max HR"},
	TargetColumn:       "Heart Disease",
	TargetFallbackLast: true,
	PositiveText:       "Heart Disease Detected",
	NegativeText:       "Normal",
}

var Diabetes = Disease{
	Key:            "diabetes",
	Title:          "Diabetes",
	FeatureColumns: []string{"Pregnancies", "Glucose", "Blood pressure", "Insulin", "Age", "Body mass index"},
	ZeroAsMissing:  []string{"Glucose", "Blood pressure", "Insulin"},
	TargetColumn:   "Outcome",
	PositiveText:   "Diabetic",
	NegativeText:   "Non-Diabetic",
}

func Diseases() []Disease {
	return []Disease{Heart, Diabetes}
}

func Lookup(key string) (Disease, bool) {
	for _, d := range Diseases() {
		if d.Key == key {
			return d, true
		}
	}
	return Disease{}, false
}

// Text maps a predicted label to its display string.
func (d Disease) Text(label int) string {
	if label == 1 {
		return d.PositiveText
	}
	return d.NegativeText
}
