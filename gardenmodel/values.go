package gardenmodel

// PathRef identifies a destination or input point in the path graph: a named,
// versioned data point, independent of any particular entity or lineage.
type PathRef struct {
	Name    string
	Version string
}

// Input is an external fact supplied for one entity: a raw, non-derived value.
type Input struct {
	entity  string
	name    string
	version string
	value   string
}

// NewInput constructs a raw Input fact.
func NewInput(entity, name, version, value string) Input {
	return Input{entity: entity, name: name, version: version, value: value}
}

func (i Input) Entity() string  { return i.entity }
func (i Input) Name() string    { return i.name }
func (i Input) Version() string { return i.version }
func (i Input) Value() string   { return i.value }
func (i Input) Ref() PathRef    { return PathRef{Name: i.name, Version: i.version} }

// Data is a stored fact, tagged with the lineage hash of the provenance that
// produced it. Data rows are uniquely keyed by (entity, name, version, lineage).
type Data struct {
	entity  string
	name    string
	version string
	lineage string
	value   string
}

// NewData constructs a Data row directly; callers that derive lineage from
// provenance should go through InputToData or ResultToData instead.
func NewData(entity, name, version, lineage, value string) Data {
	return Data{entity: entity, name: name, version: version, lineage: lineage, value: value}
}

func (d Data) Entity() string  { return d.entity }
func (d Data) Name() string    { return d.name }
func (d Data) Version() string { return d.version }
func (d Data) Lineage() string { return d.lineage }
func (d Data) Value() string   { return d.value }
func (d Data) Ref() PathRef    { return PathRef{Name: d.name, Version: d.version} }

// InputToData converts a raw Input into a Data row. Non-derived data has no
// input lineages to fold in, so its lineage is the bare LinealHash of its own
// name and version.
func InputToData(in Input) Data {
	return Data{
		entity:  in.entity,
		name:    in.name,
		version: in.version,
		lineage: LinealHash(in.name, in.version),
		value:   in.value,
	}
}

// WorkInput is a data point carried into a computation, along with the hash
// of its value so a later freshness check can detect staleness.
type WorkInput struct {
	name    string
	version string
	lineage string
	value   string
	hash    string
}

// NewWorkInput builds a WorkInput, computing hash from value if one wasn't
// already supplied by the caller.
func NewWorkInput(name, version, lineage, value, hash string) WorkInput {
	if hash == "" {
		hash = ValueHash(value)
	}
	return WorkInput{name: name, version: version, lineage: lineage, value: value, hash: hash}
}

// DataToWorkInput converts a stored Data row into a WorkInput for dispatch.
func DataToWorkInput(d Data) WorkInput {
	return WorkInput{
		name:    d.name,
		version: d.version,
		lineage: d.lineage,
		value:   d.value,
		hash:    ValueHash(d.value),
	}
}

func (w WorkInput) Name() string    { return w.name }
func (w WorkInput) Version() string { return w.version }
func (w WorkInput) Lineage() string { return w.lineage }
func (w WorkInput) Value() string   { return w.value }
func (w WorkInput) Hash() string    { return w.hash }
func (w WorkInput) Ref() PathRef    { return PathRef{Name: w.name, Version: w.version} }

// ResultInput is a WorkInput with its value dropped, kept only long enough to
// let the worker echo back what it used without re-transmitting payloads.
type ResultInput struct {
	name    string
	version string
	lineage string
	hash    string
}

// WorkInputToResultInput drops the value, keeping only the provenance and hash.
func WorkInputToResultInput(wi WorkInput) ResultInput {
	return ResultInput{name: wi.name, version: wi.version, lineage: wi.lineage, hash: wi.hash}
}

// NewResultInput constructs a ResultInput directly, used by transports
// reconstructing one from the wire (where only hash, never value, travels).
func NewResultInput(name, version, lineage, hash string) ResultInput {
	return ResultInput{name: name, version: version, lineage: lineage, hash: hash}
}

func (r ResultInput) Name() string    { return r.name }
func (r ResultInput) Version() string { return r.version }
func (r ResultInput) Lineage() string { return r.lineage }
func (r ResultInput) Hash() string    { return r.hash }
func (r ResultInput) Ref() PathRef    { return PathRef{Name: r.name, Version: r.version} }

// Work is a concrete instance of a recipe with input values filled in,
// awaiting execution by a worker.
type Work struct {
	entity  string
	name    string
	version string
	lineage string
	inputs  []WorkInput
}

// NewWork constructs a Work item. inputs must already be in the order
// declared by the destination path's recipe.
func NewWork(entity, name, version, lineage string, inputs []WorkInput) Work {
	cp := make([]WorkInput, len(inputs))
	copy(cp, inputs)
	return Work{entity: entity, name: name, version: version, lineage: lineage, inputs: cp}
}

func (w Work) Entity() string        { return w.entity }
func (w Work) Name() string          { return w.name }
func (w Work) Version() string       { return w.version }
func (w Work) Lineage() string       { return w.lineage }
func (w Work) Inputs() []WorkInput   { return w.inputs }
func (w Work) Ref() PathRef          { return PathRef{Name: w.name, Version: w.version} }

// Args returns the ordered input values, ready to splat into a registered
// function's parameter list.
func (w Work) Args() []string {
	out := make([]string, len(w.inputs))
	for i, in := range w.inputs {
		out[i] = in.Value()
	}
	return out
}

func (w Work) resultInputs() []ResultInput {
	out := make([]ResultInput, len(w.inputs))
	for i, in := range w.inputs {
		out[i] = WorkInputToResultInput(in)
	}
	return out
}

// ToResult builds the Result a worker emits after successfully computing value.
func (w Work) ToResult(value string) Result {
	return Result{
		entity:  w.entity,
		name:    w.name,
		version: w.version,
		lineage: w.lineage,
		value:   value,
		inputs:  w.resultInputs(),
	}
}

// ToResultError builds the ResultError a worker emits after a failed
// computation. errMsg should be a textual representation of the failure.
func (w Work) ToResultError(errMsg string) ResultError {
	return ResultError{
		entity:  w.entity,
		name:    w.name,
		version: w.version,
		lineage: w.lineage,
		err:     errMsg,
		inputs:  w.resultInputs(),
	}
}

// Result is a worker's successful reply to a Work item.
type Result struct {
	entity  string
	name    string
	version string
	lineage string
	value   string
	inputs  []ResultInput
}

// NewResult constructs a Result directly (used by transports reconstructing
// one from the wire).
func NewResult(entity, name, version, lineage, value string, inputs []ResultInput) Result {
	cp := make([]ResultInput, len(inputs))
	copy(cp, inputs)
	return Result{entity: entity, name: name, version: version, lineage: lineage, value: value, inputs: cp}
}

func (r Result) Entity() string         { return r.entity }
func (r Result) Name() string           { return r.name }
func (r Result) Version() string        { return r.version }
func (r Result) Lineage() string        { return r.lineage }
func (r Result) Value() string          { return r.value }
func (r Result) Inputs() []ResultInput  { return r.inputs }
func (r Result) Ref() PathRef           { return PathRef{Name: r.name, Version: r.version} }

// ResultToData converts a validated Result into the Data row it represents.
func ResultToData(r Result) Data {
	return Data{entity: r.entity, name: r.name, version: r.version, lineage: r.lineage, value: r.value}
}

// ResultError is a worker's failed reply to a Work item. It is absorbed and
// logged by ToDataConverter; it never becomes Data.
type ResultError struct {
	entity  string
	name    string
	version string
	lineage string
	err     string
	inputs  []ResultInput
}

// NewResultError constructs a ResultError directly (used by transports
// reconstructing one from the wire).
func NewResultError(entity, name, version, lineage, errMsg string, inputs []ResultInput) ResultError {
	cp := make([]ResultInput, len(inputs))
	copy(cp, inputs)
	return ResultError{entity: entity, name: name, version: version, lineage: lineage, err: errMsg, inputs: cp}
}

func (e ResultError) Entity() string        { return e.entity }
func (e ResultError) Name() string          { return e.name }
func (e ResultError) Version() string       { return e.version }
func (e ResultError) Lineage() string       { return e.lineage }
func (e ResultError) Error() string         { return e.err }
func (e ResultError) Inputs() []ResultInput { return e.inputs }
func (e ResultError) Ref() PathRef          { return PathRef{Name: e.name, Version: e.version} }
