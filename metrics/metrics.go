package metrics

// Counter counts monotonically increasing runtime events.
type Counter interface {
	Inc()
	Add(delta float64)
}

// Factory creates the runtime's counters and owns the export surface.
type Factory interface {
	CreateCounter(name string, description string) (Counter, error)

	Start() error

	Stop() error
}

// Server holds the counters incremented by the execution runtime. All fields
// are non-nil after NewServer returns.
type Server struct {
	MorselsProcessed       Counter
	RowsProduced           Counter
	IndexSeeks             Counter
	ContinuationsSuspended Counter
	ContinuationsResumed   Counter
	ContinuationsAbandoned Counter
}

func NewServer(factory Factory) (*Server, error) {
	s := &Server{}
	var err error
	if s.MorselsProcessed, err = factory.CreateCounter("velograph_morsels_processed",
		"Total number of morsels fully processed by workers"); err != nil {
		return nil, err
	}
	if s.RowsProduced, err = factory.CreateCounter("velograph_rows_produced",
		"Total number of rows written into morsels by leaf operators"); err != nil {
		return nil, err
	}
	if s.IndexSeeks, err = factory.CreateCounter("velograph_index_seeks",
		"Total number of exact-match index seeks issued"); err != nil {
		return nil, err
	}
	if s.ContinuationsSuspended, err = factory.CreateCounter("velograph_continuations_suspended",
		"Total number of operator invocations that suspended with an open cursor"); err != nil {
		return nil, err
	}
	if s.ContinuationsResumed, err = factory.CreateCounter("velograph_continuations_resumed",
		"Total number of suspended continuations resumed by workers"); err != nil {
		return nil, err
	}
	if s.ContinuationsAbandoned, err = factory.CreateCounter("velograph_continuations_abandoned",
		"Total number of continuations disposed without being drained"); err != nil {
		return nil, err
	}
	return s, nil
}
