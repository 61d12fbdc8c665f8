// Package core contains the canonical messaging domain contracts, entities,
// and configuration. Lower-level adapters (stores, the gateway client, the
// webhook surface) depend on this package; core must not depend on them.
package core
