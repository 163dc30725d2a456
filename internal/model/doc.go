package model

// Package model defines domain data structures used across the app: work
// items and located artifacts, session and verification status enums, ledger
// entries, and the closed error-kind taxonomy. Structures are designed for
// direct persistence and explicit state transitions.
