// Package store defines the persistence interfaces for the study tracker
// together with the shared error vocabulary and transaction helper that
// every implementation uses. Every lookup takes the owning user's ID so
// that a row belonging to someone else is indistinguishable from a missing
// one.
package store
