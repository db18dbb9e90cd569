package graphql

import (
	"github.com/tidwall/gjson"
)

const (
	persistedNotFoundMessage = "PersistedQueryNotFound"
	persistedNotFoundCode    = "PERSISTED_QUERY_NOT_FOUND"
)

// IsPersistedQueryNotFound is the default PersistedQueryNotFoundFunc. It
// matches an error with message PersistedQueryNotFound or extension code
// PERSISTED_QUERY_NOT_FOUND.
func IsPersistedQueryNotFound(body []byte) bool {
	if len(body) == 0 {
		return false
	}
	found := false
	gjson.GetBytes(body, "errors").ForEach(func(_, e gjson.Result) bool {
		if e.Get("message").String() == persistedNotFoundMessage ||
			e.Get("extensions.code").String() == persistedNotFoundCode {
			found = true
			return false
		}
		return true
	})
	return found
}
