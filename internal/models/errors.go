package models

import "errors"

// ErrStorageCapacityExceeded is returned when the backing key-value
// collaborator rejects a write for exceeding its per-record limit. The
// triggering write is rolled back; the caller may retry after freeing
// space, the engine never retries on its own.
var ErrStorageCapacityExceeded = errors.New("storage capacity exceeded: delete cards or raise the topic size limit")

// ErrInvalidTransition is returned when a session operation is invoked in
// a state that does not permit it, e.g. scoring before revealing.
var ErrInvalidTransition = errors.New("invalid session transition")

// ErrNoSession is returned when a session operation targets a topic with
// no active session.
var ErrNoSession = errors.New("no active session for topic")

// ErrEmptyDeck is returned when a session start selects zero cards.
var ErrEmptyDeck = errors.New("no cards selected for session")
