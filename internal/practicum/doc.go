// Package practicum talks to the Yandex Practicum homework-status API.
//
// It covers the whole request path: the authorized HTTP query, structural
// validation of the payload, and translation of a homework's review status
// into the user-facing verdict message. Failures are reported through a
// small set of typed errors so the poller can classify them without string
// matching.
package practicum
