package badger

import "fmt"

// Key prefixes for different data types
const (
	documentPrefix = "revdoc"
	sessionPrefix  = "sessmem"
)

// makeDocumentKey generates a key for a review document by ID.
func makeDocumentKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeSessionKey generates a key for a session's memory snapshot.
func makeSessionKey(sessionID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", sessionPrefix, sessionID))
}
