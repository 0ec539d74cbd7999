// Package redis provides Redis-backed adapters.
package redis
