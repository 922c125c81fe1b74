// Package domain contains the core entities of the study tracker: the
// category/subject/topic catalog, study sessions and their pauses, goals,
// notes, and the elapsed-time and reporting-period arithmetic built on them.
// It has no knowledge of storage or transport.
package domain
