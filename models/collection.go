// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "slices"

// Collection names known to the local store and the remote API.
const (
	CollectionClients       = "clients"
	CollectionProperties    = "properties"
	CollectionPlots         = "plots"
	CollectionPlantings     = "plantings"
	CollectionVisits        = "visits"
	CollectionOpportunities = "opportunities"
	CollectionPhotos        = "photos"
	CollectionVarieties     = "varieties"
	CollectionCultures      = "cultures"
)

// CollectionDescriptor describes how a named collection is addressed on the
// remote API, which fields a write must carry and whether the collection is
// warmed into the local store.
type CollectionDescriptor struct {
	// Name is the collection name used in store rows and API paths.
	Name string

	// EntityKey is the wrapper key of a single entity in API responses
	// ({"client": {...}}).
	EntityKey string

	// Required lists payload fields that must be present and non-empty on
	// create.
	Required []string

	// Reference marks collections fetched by the cache warmer and refreshed
	// after every sync cycle.
	Reference bool

	// Writable reports whether the client may create, update or delete
	// records of this collection.
	Writable bool

	// Parent names the collection whose id is a path parameter on create
	// (photos are posted to /visits/{id}/photos).
	Parent string

	// ParentField is the payload field that carries the parent id.
	ParentField string
}

var collections = []CollectionDescriptor{
	{Name: CollectionClients, EntityKey: "client", Required: []string{"name"}, Reference: true, Writable: true},
	{Name: CollectionProperties, EntityKey: "property", Required: []string{"name", "client_id"}, Reference: true, Writable: true},
	{Name: CollectionPlots, EntityKey: "plot", Required: []string{"name", "property_id"}, Reference: true, Writable: true},
	{Name: CollectionPlantings, EntityKey: "planting", Required: []string{"plot_id", "culture_id"}, Reference: true, Writable: true},
	{Name: CollectionVisits, EntityKey: "visit", Required: []string{"date", "client_id", "property_id", "plot_id"}, Reference: true, Writable: true},
	{Name: CollectionOpportunities, EntityKey: "opportunity", Required: []string{"title", "client_id"}, Reference: true, Writable: true},
	{Name: CollectionPhotos, EntityKey: "photo", Required: []string{"visit_id"}, Writable: true, Parent: CollectionVisits, ParentField: "visit_id"},
	{Name: CollectionVarieties, EntityKey: "variety", Reference: true},
	{Name: CollectionCultures, EntityKey: "culture", Reference: true},
}

// LookupCollection returns the descriptor registered for name.
func LookupCollection(name string) (CollectionDescriptor, bool) {
	for _, c := range collections {
		if c.Name == name {
			return c, true
		}
	}
	return CollectionDescriptor{}, false
}

// Collections returns every registered collection descriptor in declaration
// order.
func Collections() []CollectionDescriptor {
	return slices.Clone(collections)
}

// ReferenceCollections returns the names of collections warmed at start-up
// and refreshed after each sync cycle.
func ReferenceCollections() []string {
	names := make([]string, 0, len(collections))
	for _, c := range collections {
		if c.Reference {
			names = append(names, c.Name)
		}
	}
	return names
}
