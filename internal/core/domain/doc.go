// Package domain contains the core types of the retrieval engine.
// These types have no dependencies on adapters or infrastructure.
package domain
