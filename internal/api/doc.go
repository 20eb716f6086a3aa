// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting.
//
// The central piece is ResourceHandler, which binds the four operations of a
// store.Repository (list, get, upsert, delete) to REST endpoints for any
// entity and identifier type. Each entity gets its own instantiation with
// its repository passed in explicitly.
package api
