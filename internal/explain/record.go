package explain

// BuildRecord joins an instance's units, its displayed attribution vector,
// the model's prediction, the explainability delta and the optional ground
// truth into one display-ready Record.
//
// The class threshold is strict: a prediction of exactly 0.5 yields class 0.
func BuildRecord(index int, inst Instance, displayed []float64, prediction, delta float64, label *int) (Record, error) {
	if len(inst.Units) != len(inst.Attributions) {
		return Record{}, &ShapeMismatchError{Index: index, Units: len(inst.Units), Attributions: len(inst.Attributions)}
	}
	if len(displayed) != len(inst.Units) {
		return Record{}, &ShapeMismatchError{Index: index, Units: len(inst.Units), Attributions: len(displayed)}
	}

	var total float64
	for _, a := range displayed {
		total += a
	}

	predicted := 0
	if prediction > 0.5 {
		predicted = 1
	}

	return Record{
		Units:          inst.Units,
		Attributions:   displayed,
		Prediction:     prediction,
		PredictedClass: predicted,
		Label:          label,
		Delta:          delta,
		Positive:       total > 0,
		Total:          total,
	}, nil
}
