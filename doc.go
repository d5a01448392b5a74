// Package answerdesk retrieves pre-authored answer text for caseworkers.
//
// A Desk opens the answer catalog, the local embedding engine and the user
// content store. Its Retriever offers three query modes over the same record
// set: category browse, literal keyword search and semantic search. Every
// query returns a fresh Result; semantic search reports StatusUnavailable
// rather than an empty hit list when the model cannot be used.
package answerdesk
