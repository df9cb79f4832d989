// Package places implements the provider adapter against a Places-style text
// search API: search, detail lookup by place id, and shortened-map-URL
// resolution. Provider JSON stays in tagged DTOs and crosses into the
// canonical candidate shape through a single normalize function.
package places
