// Package staging persists discovered listing candidates in SQLite while
// they await review. Candidates are keyed by the provider's external id, so
// repeated discovery runs refresh rows instead of duplicating them, and the
// review lifecycle (pending or auto_pending, then approved or rejected) is
// enforced at the store level: terminal rows never transition again.
package staging
