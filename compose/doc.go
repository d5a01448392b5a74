// Package compose builds reply text from answer records.
//
// Preview renders one record the way a caseworker reads it: an optional
// conjunction, the body, and a contact line per referenced agency. A
// Selection holds up to three chosen answers in slots S1 to S3, and Assemble
// joins an intro, the filled slots and a closing into the final reply.
package compose
