package scaffold

import (
	"fmt"
	"strings"
	"time"

	"github.com/ion-tools/ion/internal/blueprint"
	"github.com/ion-tools/ion/internal/template"
)

// Phase is the state of a Run.
type Phase int

const (
	Prompting Phase = iota
	Rendering
	Done
	Failed
)

func (p Phase) String() string {
	switch p {
	case Prompting:
		return "prompting"
	case Rendering:
		return "rendering"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Failure reports the blueprint that stopped a run. Written lists the files
// left in place by earlier blueprints; they are not rolled back.
type Failure struct {
	Phase     Phase
	Blueprint string
	Written   []string
	Err       error
}

func (f *Failure) Error() string {
	var b strings.Builder
	if f.Blueprint == "" {
		fmt.Fprintf(&b, "%s failed: %v", f.Phase, f.Err)
	} else {
		fmt.Fprintf(&b, "blueprint %q failed while %s: %v", f.Blueprint, f.Phase, f.Err)
	}
	if len(f.Written) > 0 {
		fmt.Fprintf(&b, " (files already written: %s)", strings.Join(f.Written, ", "))
	}
	return b.String()
}

func (f *Failure) Unwrap() error { return f.Err }

// Result holds the outcome of a successful run.
type Result struct {
	Template string
	Root     string
	Files    []string
}

// Run is one scaffold invocation of a template. Its Context lives as long
// as the Run.
type Run struct {
	Template *template.Template
	Session  *blueprint.Session
	Context  *blueprint.Context

	blueprints []blueprint.Blueprint
	phase      Phase
}

// New decodes the template's blueprints and seeds a Context from its static
// project and values. now sets the "year" key unless the template's values
// override it.
func New(t *template.Template, s *blueprint.Session, now time.Time) (*Run, error) {
	bps, err := t.Blueprints()
	if err != nil {
		return nil, err
	}
	c := blueprint.NewContext(now)
	c.Seed(t.Project, t.Values)
	return &Run{
		Template:   t,
		Session:    s,
		Context:    c,
		blueprints: bps,
		phase:      Prompting,
	}, nil
}

// Phase returns the current state.
func (r *Run) Phase() Phase { return r.phase }

// Blueprints returns the decoded blueprints in run order.
func (r *Run) Blueprints() []blueprint.Blueprint {
	return append([]blueprint.Blueprint(nil), r.blueprints...)
}

// Prompt asks every blueprint for its input, then freezes the Context.
// Nothing is written to disk in this phase.
func (r *Run) Prompt() error {
	if r.phase != Prompting {
		return fmt.Errorf("cannot prompt while %s", r.phase)
	}
	for _, b := range r.blueprints {
		r.log(b, Prompting)
		if err := b.Prompt(r.Session, r.Context); err != nil {
			return r.fail(Prompting, b, err)
		}
	}
	r.Context.Freeze()
	r.transition(Rendering)
	return nil
}

// Render writes every blueprint's output. It stops at the first failure
// and leaves earlier output in place.
func (r *Run) Render() error {
	if r.phase != Rendering {
		return fmt.Errorf("cannot render while %s", r.phase)
	}
	for _, b := range r.blueprints {
		r.log(b, Rendering)
		if err := b.Render(r.Session, r.Context); err != nil {
			return r.fail(Rendering, b, err)
		}
	}
	r.transition(Done)
	return nil
}

// Execute runs both phases.
func (r *Run) Execute() (*Result, error) {
	if err := r.Prompt(); err != nil {
		return nil, err
	}
	if err := r.Render(); err != nil {
		return nil, err
	}
	return &Result{
		Template: r.Template.Name,
		Root:     r.Session.Root,
		Files:    r.Session.Written(),
	}, nil
}

// Scaffold is New followed by Execute.
func Scaffold(t *template.Template, s *blueprint.Session, now time.Time) (*Result, error) {
	r, err := New(t, s, now)
	if err != nil {
		return nil, &Failure{Phase: Prompting, Err: err}
	}
	return r.Execute()
}

func (r *Run) fail(phase Phase, b blueprint.Blueprint, err error) error {
	r.transition(Failed)
	return &Failure{
		Phase:     phase,
		Blueprint: b.Name(),
		Written:   r.Session.Written(),
		Err:       err,
	}
}

func (r *Run) transition(to Phase) {
	r.Session.Logger.Debug("scaffold phase", "template", r.Template.Name, "from", r.phase.String(), "to", to.String())
	r.phase = to
}

func (r *Run) log(b blueprint.Blueprint, phase Phase) {
	r.Session.Logger.Debug("blueprint", "template", r.Template.Name, "blueprint", b.Name(), "kind", b.Kind(), "phase", phase.String())
}
