// Package domain contains the core business entities, value objects, and
// domain logic of the application. It represents the heart of the system,
// independent of any specific infrastructure or delivery mechanism.
//
// Subpackages hold the pure decision logic used by the mutation path:
// occ implements the version check and assign implements least-loaded
// assignee selection.
package domain
