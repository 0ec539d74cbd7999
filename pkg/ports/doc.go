/*
Package ports defines the driven ports (interfaces) of the pageflow invocation pipeline.

These interfaces decouple the invoker from the pluggable pieces around it, so hosts
can supply their own handler selection, handler execution and error journaling.

# Key Interfaces

  - HandlerSelector: Picks zero or one handler method for an invocation.
  - ExecutorFactory: Turns a handler method into a callable executor.
  - ErrorJournal: Persists reports of unhandled errors (e.g., Memory or Redis).
*/
package ports
