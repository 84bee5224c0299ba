package wsworker

import "github.com/smilemakc/gardenflow/gardenmodel"

func workToEnvelope(w gardenmodel.Work) envelope {
	inputs := make([]wireInput, len(w.Inputs()))
	for i, in := range w.Inputs() {
		inputs[i] = wireInput{
			Name:    in.Name(),
			Version: in.Version(),
			Lineage: in.Lineage(),
			Value:   in.Value(),
			Hash:    in.Hash(),
		}
	}
	return envelope{
		Kind:    kindDoWork,
		Entity:  w.Entity(),
		Name:    w.Name(),
		Version: w.Version(),
		Lineage: w.Lineage(),
		Inputs:  inputs,
	}
}

func envelopeToWork(e envelope) gardenmodel.Work {
	inputs := make([]gardenmodel.WorkInput, len(e.Inputs))
	for i, in := range e.Inputs {
		inputs[i] = gardenmodel.NewWorkInput(in.Name, in.Version, in.Lineage, in.Value, in.Hash)
	}
	return gardenmodel.NewWork(e.Entity, e.Name, e.Version, e.Lineage, inputs)
}

func resultToEnvelope(r gardenmodel.Result) envelope {
	inputs := make([]wireInput, len(r.Inputs()))
	for i, in := range r.Inputs() {
		inputs[i] = wireInput{Name: in.Name(), Version: in.Version(), Lineage: in.Lineage(), Hash: in.Hash()}
	}
	return envelope{
		Kind:    kindReceiveResult,
		Entity:  r.Entity(),
		Name:    r.Name(),
		Version: r.Version(),
		Lineage: r.Lineage(),
		Value:   r.Value(),
		Inputs:  inputs,
	}
}

func envelopeToResult(e envelope) gardenmodel.Result {
	inputs := make([]gardenmodel.ResultInput, len(e.Inputs))
	for i, in := range e.Inputs {
		inputs[i] = gardenmodel.NewResultInput(in.Name, in.Version, in.Lineage, in.Hash)
	}
	return gardenmodel.NewResult(e.Entity, e.Name, e.Version, e.Lineage, e.Value, inputs)
}

func resultErrorToEnvelope(re gardenmodel.ResultError) envelope {
	inputs := make([]wireInput, len(re.Inputs()))
	for i, in := range re.Inputs() {
		inputs[i] = wireInput{Name: in.Name(), Version: in.Version(), Lineage: in.Lineage(), Hash: in.Hash()}
	}
	return envelope{
		Kind:    kindReceiveError,
		Entity:  re.Entity(),
		Name:    re.Name(),
		Version: re.Version(),
		Lineage: re.Lineage(),
		Error:   re.Error(),
		Inputs:  inputs,
	}
}

func envelopeToResultError(e envelope) gardenmodel.ResultError {
	inputs := make([]gardenmodel.ResultInput, len(e.Inputs))
	for i, in := range e.Inputs {
		inputs[i] = gardenmodel.NewResultInput(in.Name, in.Version, in.Lineage, in.Hash)
	}
	return gardenmodel.NewResultError(e.Entity, e.Name, e.Version, e.Lineage, e.Error, inputs)
}
