// Package store defines the persistence contract the API is built on.
// The interfaces here abstract the underlying datastore from the HTTP layer,
// so any backend satisfying Repository can serve a resource.
package store
