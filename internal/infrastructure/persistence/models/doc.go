// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of ORM tags; each model converts to and from its
// domain counterpart with ToDomain and FromDomain.
//
// Structure:
//   - base.go: shared ID, timestamp and version columns
//   - catalog.go: products and variants
//   - order.go: orders, order items and fulfillments
//   - identity.go: users
//   - settings.go: the store settings singleton
package models
