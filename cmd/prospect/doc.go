// Command prospect is the listing discovery CLI. It discovers businesses
// through a place-search provider, stages candidates with confidence
// scores for review, and publishes approved entries to the directory
// database.
package main
