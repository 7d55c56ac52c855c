package reconcile

// TotalUnknown is the Total value of a progress event whose total is
// not yet known; fetch pagination learns it only from the first page.
const TotalUnknown = -1

// Phase names one stage of a run for progress reporting.
type Phase string

const (
	// PhaseFetch covers remote item traversal.
	PhaseFetch Phase = "fetch"
	// PhaseEncode covers row materialization after fetch.
	PhaseEncode Phase = "encode"
	// PhaseClassify covers row decoding and action classification.
	PhaseClassify Phase = "classify"
	// PhaseApply covers remote mutation.
	PhaseApply Phase = "apply"
)

// Event is one progress observation.
type Event struct {
	Phase Phase
	Done  int
	// Total is the expected item count, or TotalUnknown.
	Total int
}

// Reporter receives progress events. Implementations must be cheap;
// the engine calls them from its processing loop.
type Reporter interface {
	Report(ev Event)
}

// NopReporter discards all events.
type NopReporter struct{}

// Report implements Reporter.
func (NopReporter) Report(Event) {}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Event)

// Report implements Reporter.
func (f ReporterFunc) Report(ev Event) { f(ev) }
