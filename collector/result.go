package collector

// Outcome is the result of one provider call: either Ok with a Result, or FetchFailed with an error.
type Outcome struct {
	Source string      // source name
	Result Result      // fetched data, empty when the fetch failed
	Err    *FetchError // nil when the fetch succeeded
}

// OK reports whether the fetch succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// CollectionResult holds the outcomes of one collection run in registration order.
// Only sources that were registered and enabled at collection time are present.
type CollectionResult struct {
	order    []string
	outcomes map[string]Outcome
}

func newCollectionResult(size int) *CollectionResult {
	return &CollectionResult{
		order:    make([]string, 0, size),
		outcomes: make(map[string]Outcome, size),
	}
}

func (r *CollectionResult) set(o Outcome) {
	if _, ok := r.outcomes[o.Source]; !ok {
		r.order = append(r.order, o.Source)
	}
	r.outcomes[o.Source] = o
}

// Lookup returns the outcome for the source. The bool is false when the source was disabled or not registered.
func (r *CollectionResult) Lookup(name string) (Outcome, bool) {
	o, ok := r.outcomes[name]
	return o, ok
}

// Has reports whether the source took part in the collection.
func (r *CollectionResult) Has(name string) bool {
	_, ok := r.outcomes[name]
	return ok
}

// Line returns the data of the source joined into one string, or "" when absent or failed.
func (r *CollectionResult) Line(name string) string {
	o, ok := r.outcomes[name]
	if !ok || !o.OK() {
		return ""
	}
	return o.Result.String()
}

// Lines returns the data lines of the source, or nil when absent or failed.
func (r *CollectionResult) Lines(name string) []string {
	o, ok := r.outcomes[name]
	if !ok || !o.OK() {
		return nil
	}
	return o.Result.Items()
}

// Names returns the collected source names in registration order.
func (r *CollectionResult) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of collected sources.
func (r *CollectionResult) Len() int {
	return len(r.order)
}

// Succeeded returns the names of the sources that returned data.
func (r *CollectionResult) Succeeded() []string {
	var out []string
	for _, n := range r.order {
		if r.outcomes[n].OK() {
			out = append(out, n)
		}
	}
	return out
}

// Failed returns the outcomes of the sources that failed, in registration order.
func (r *CollectionResult) Failed() []Outcome {
	var out []Outcome
	for _, n := range r.order {
		if o := r.outcomes[n]; !o.OK() {
			out = append(out, o)
		}
	}
	return out
}
