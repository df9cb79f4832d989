// Package directory persists the published side of the listing pipeline:
// live listings, the category taxonomy, provider-token category mappings,
// and areas. Published listings keep the provider external id as
// provenance, which is what lets discovery runs skip places that were
// already imported.
package directory
