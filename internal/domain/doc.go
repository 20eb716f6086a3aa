// Package domain defines the core business entities of the service and the
// validation errors they produce.
//
// Entities are plain records. A zero ID means the entity has never been saved;
// the persistence layer assigns the ID on the first save and never changes it
// afterwards.
package domain
