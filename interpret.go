package reviewsense

const (
	// PositiveIndex is the position of the positive class in a Prediction.
	// The order is fixed by how the pretrained network was trained.
	PositiveIndex = 1

	// Threshold is the positive-class score a Prediction must exceed to be
	// read as Positive.
	Threshold = 0.5
)

// Interpret maps a Prediction to a Verdict: Positive iff p[PositiveIndex] >
// Threshold. A score of exactly Threshold is Negative.
//
// This is a contract with the specific pretrained artifact, not a general
// policy; another model may order or calibrate its classes differently.
func Interpret(p Prediction) Verdict {
	if p[PositiveIndex] > Threshold {
		return Positive
	}
	return Negative
}
