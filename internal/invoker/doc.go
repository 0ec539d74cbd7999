// Package invoker drives a single page invocation through the exception-filter
// pipeline.
//
// The driver is an explicit, non-recursive loop. Entering an exception filter
// pushes a frame onto the machine and unwinding pops it, so the Go call stack
// stays flat no matter how many filters wrap the page. Every blocking call (an
// async filter, the handler, the result) returns to the loop, which resumes at
// the next stored state exactly once.
//
// An error or a panic raised while at least one filter is entered is captured
// into a fresh domain.ExceptionContext and handed to the innermost entered
// filter. Outside any filter it propagates untouched.
package invoker
