// Package memory provides in-memory adapters, suited to tests and single-process hosts.
package memory
