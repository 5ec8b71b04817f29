// Package service contains the application use cases. It orchestrates the
// domain entities, the validators and the store interfaces (defined in
// internal/store) to register and manage users and their tasks.
//
// Services receive every dependency through their constructor and never see
// a concrete database. Operations that touch more than one store run inside a
// store.Transactor so they commit or roll back as a unit.
//
// Errors from lower layers are wrapped with %w so the API layer can classify
// them with errors.Is: domain.ErrValidation, store.ErrNotFound,
// store.ErrEmailExists and the auth package's errors all pass through intact.
package service
