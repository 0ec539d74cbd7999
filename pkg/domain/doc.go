/*
Package domain contains the core types of the pageflow invocation pipeline.

It defines what a page invocation is made of: the compiled page descriptor, the
per-request context, the filter capabilities, the exception record seen by filters
and the Result contract. The package has no dependencies on hosts, storage or
logging, following Hexagonal Architecture principles.

# Key Entities

  - ActionDescriptor: The compiled description of a routable page (types, handlers, filters).
  - PageContext: The per-request bundle (descriptor, request/response, route data, filters).
  - Filter: A cross-cutting hook. Capabilities are ExceptionFilter and AsyncExceptionFilter.
  - ExceptionContext: The mutable record filters observe while an error is unwinding.
  - Result: What a handler produces and the pipeline executes, at most once per invocation.
*/
package domain
