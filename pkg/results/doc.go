/*
Package results provides the Result implementations handlers and filters return.

  - PageViewResult: Renders the page through its View (the default when a handler returns nothing).
  - ContentResult: Writes a string body.
  - JSONResult: Encodes a value as JSON.
  - ProblemResult: Writes an RFC 7807 problem document.
  - StatusCodeResult: Writes a bare status code.
  - RedirectResult: Redirects to another location.
*/
package results
