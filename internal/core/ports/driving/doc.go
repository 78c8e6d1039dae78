// Package driving provides interfaces for inbound use cases (primary ports).
package driving
