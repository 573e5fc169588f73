package ports

import (
	"oracle/domain/simulation"
)

// ResultSink receives finished category batches as the run progresses.
// Implementations persist them; the runner itself never touches storage.
type ResultSink interface {
	WriteCategory(domain, category string, results []simulation.Result) error
}
