// Package filters provides ready-made exception filters.
package filters
