// Package models defines the core domain models for Matchday.
//
// # Model Overview
//
//   - Match: a scheduled pickup game with a player capacity, owned by its organizer
//   - AdmissionRecord: per-(match, user) entry state (requested/approved/declined/waitlist)
//   - Profile: a player's position and skill rating, input to team balancing
//   - Team / TeamMembership: the current two-team split of the approved roster
//   - Expense: the organizer-declared total cost of a match (one row per match)
//   - PaymentRecord: one player's share of the expense and whether it was paid
//
// # Design Principles
//
//  1. **Closed enums**: admission and payment states are typed string constants
//     with explicit transition rules, so illegal states are unrepresentable.
//  2. **Integer money**: all amounts are cents (int64) to avoid float drift.
//  3. **Avoid circular references**: models reference each other by ID string.
//
// Teams and payment records are derived data: teams are fully replaced on every
// generation and payment records are reconciled against the approved roster, so
// neither is ever edited piecemeal outside its owning service.
package models
