package invoker

import "github.com/aretw0/pageflow/pkg/domain"

// State is a node of the invocation graph.
type State int

const (
	StateInvokeBegin State = iota
	StateExceptionBegin
	StateExceptionNext
	StateExceptionAsyncBegin
	StateExceptionAsyncResume
	StateExceptionAsyncEnd
	StateExceptionSyncBegin
	StateExceptionSyncEnd
	StateExceptionInside
	StateExceptionShortCircuit
	StateExceptionEnd
	StatePageBegin
	StatePageEnd
	StateInvokeEnd
)

var stateNames = [...]string{
	StateInvokeBegin:           "InvokeBegin",
	StateExceptionBegin:        "ExceptionBegin",
	StateExceptionNext:         "ExceptionNext",
	StateExceptionAsyncBegin:   "ExceptionAsyncBegin",
	StateExceptionAsyncResume:  "ExceptionAsyncResume",
	StateExceptionAsyncEnd:     "ExceptionAsyncEnd",
	StateExceptionSyncBegin:    "ExceptionSyncBegin",
	StateExceptionSyncEnd:      "ExceptionSyncEnd",
	StateExceptionInside:       "ExceptionInside",
	StateExceptionShortCircuit: "ExceptionShortCircuit",
	StateExceptionEnd:          "ExceptionEnd",
	StatePageBegin:             "PageBegin",
	StatePageEnd:               "PageEnd",
	StateInvokeEnd:             "InvokeEnd",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Scope tells whether the machine runs at the top level or inside an exception filter.
type Scope int

const (
	ScopeInvoker Scope = iota
	ScopeException
)

func (s Scope) String() string {
	if s == ScopeException {
		return "Exception"
	}
	return "Invoker"
}

// frame is an entered exception filter waiting for the inner pipeline to unwind.
type frame struct {
	filter domain.Filter
	resume State
}

// machine is the resumable state of one invocation.
type machine struct {
	next      State
	scope     Scope
	current   domain.Filter
	frames    []frame
	completed bool
}

// enter pushes the current filter; the inner pipeline runs next.
func (m *machine) enter(resume State) {
	m.frames = append(m.frames, frame{filter: m.current, resume: resume})
	m.scope = ScopeException
	m.next = StateExceptionNext
}

// leave pops the innermost entered filter and resumes it.
func (m *machine) leave() {
	top := m.frames[len(m.frames)-1]
	m.frames = m.frames[:len(m.frames)-1]
	m.current = top.filter
	m.next = top.resume
	if len(m.frames) == 0 {
		m.scope = ScopeInvoker
	} else {
		m.scope = ScopeException
	}
}
