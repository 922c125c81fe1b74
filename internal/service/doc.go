// Package service contains the application use cases: the study session
// lifecycle, calendar and dashboard reports, the category/subject/topic
// catalog, goals, notes and user accounts.
//
// Services orchestrate domain entities and the repository interfaces from
// internal/store, never a concrete database. Operations that touch several
// rows run inside store.RunInTransaction, with each store bound to the
// transaction through WithTx.
//
// Error handling:
//   - Expected conditions (not found, validation failures, invalid session
//     transitions, ErrRelationshipInvalid, duplicates) pass through unwrapped
//     so the API layer can map them with errors.Is.
//   - Anything else is wrapped in a ServiceError naming the operation.
//
// Session lifecycle changes are published through an events.EventEmitter
// after the transaction commits. Emit failures are logged only.
package service
