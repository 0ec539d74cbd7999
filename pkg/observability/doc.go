/*
Package observability provides tools for monitoring the pageflow invocation pipeline.

It includes Prometheus metrics fed by the diagnostics hooks, and helpers to
combine several hook sets into one.
*/
package observability
