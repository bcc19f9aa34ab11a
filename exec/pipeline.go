package exec

import (
	"github.com/velograph/velograph/errors"
)

// DependencyKind says whether a pipeline must wait on another pipeline's
// complete output before it may run.
type DependencyKind int

const (
	// DependencyNone - the stage is a pure producer and may run standalone.
	DependencyNone DependencyKind = iota
	// DependencyFull - the stage must not start before the upstream pipeline
	// has fully drained.
	DependencyFull
)

// Dependency is created at pipeline build time and immutable thereafter.
type Dependency struct {
	Kind     DependencyKind
	Upstream *Pipeline
}

func NoDependency() Dependency {
	return Dependency{Kind: DependencyNone}
}

func FullDependency(upstream *Pipeline) Dependency {
	return Dependency{Kind: DependencyFull, Upstream: upstream}
}

// Pipeline is an ordered sequence of operator stages over morsels of one
// fixed layout: a leaf source followed by zero or more non-leaf stages.
// Stage dependencies are evaluated once at construction.
type Pipeline struct {
	id          int
	capacity    int
	longsPerRow int
	refsPerRow  int
	leaf        Operator
	downstream  []Operator
	deps        []Dependency
}

func NewPipeline(id int, capacity int, longsPerRow int, refsPerRow int, leaf Operator, downstream ...Operator) *Pipeline {
	p := &Pipeline{
		id:          id,
		capacity:    capacity,
		longsPerRow: longsPerRow,
		refsPerRow:  refsPerRow,
		leaf:        leaf,
		downstream:  downstream,
	}
	p.deps = append(p.deps, leaf.Dependency(p))
	for _, op := range downstream {
		p.deps = append(p.deps, op.Dependency(p))
	}
	return p
}

func (p *Pipeline) ID() int {
	return p.id
}

func (p *Pipeline) Leaf() Operator {
	return p.leaf
}

// NewMorsel allocates a morsel with the pipeline's layout.
func (p *Pipeline) NewMorsel() *Morsel {
	return NewMorsel(p.capacity, p.longsPerRow, p.refsPerRow)
}

// Upstreams returns the pipelines this pipeline must wait for, deduplicated.
func (p *Pipeline) Upstreams() []*Pipeline {
	var ups []*Pipeline
	for _, d := range p.deps {
		if d.Kind == DependencyNone || d.Upstream == nil {
			continue
		}
		found := false
		for _, u := range ups {
			if u == d.Upstream {
				found = true
				break
			}
		}
		if !found {
			ups = append(ups, d.Upstream)
		}
	}
	return ups
}

// RunDownstream pushes a populated morsel through the pipeline's non-leaf
// stages in order.
func (p *Pipeline) RunDownstream(morsel *Morsel, queryContext *QueryContext, queryState *QueryState) error {
	for _, op := range p.downstream {
		cont, err := op.Operate(StartLoop{}, morsel, queryContext, queryState)
		if err != nil {
			return err
		}
		if cont.HasMore() {
			panic(errors.NewProtocolViolationError("non-leaf stage returned a suspending continuation"))
		}
	}
	return nil
}

// Plan is the set of pipelines of one query together with their dependency
// DAG.
type Plan struct {
	pipelines []*Pipeline
}

func NewPlan(pipelines ...*Pipeline) (*Plan, error) {
	plan := &Plan{pipelines: pipelines}
	if err := plan.validateAcyclic(); err != nil {
		return nil, err
	}
	return plan, nil
}

func (p *Plan) Pipelines() []*Pipeline {
	return p.pipelines
}

func (p *Plan) validateAcyclic() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[*Pipeline]int)
	var visit func(pl *Pipeline) error
	visit = func(pl *Pipeline) error {
		switch state[pl] {
		case visiting:
			return errors.Errorf("pipeline dependency cycle involving pipeline %d", pl.id)
		case done:
			return nil
		}
		state[pl] = visiting
		for _, up := range pl.Upstreams() {
			if err := visit(up); err != nil {
				return err
			}
		}
		state[pl] = done
		return nil
	}
	for _, pl := range p.pipelines {
		if err := visit(pl); err != nil {
			return err
		}
	}
	return nil
}
