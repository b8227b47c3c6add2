// Package domain holds the marketplace entities, their closed status sets
// and the repository contracts implemented by the storage packages.
package domain
