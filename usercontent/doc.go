// Package usercontent manages what caseworkers create on top of the answer
// catalog: reply templates and private memos on answer records.
//
// Store validates and normalizes input, persists it through the storage
// repositories and publishes an Event after every successful change.
// Line endings are normalized to LF on the way in.
package usercontent
