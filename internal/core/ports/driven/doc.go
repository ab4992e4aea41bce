// Package driven defines the outbound ports of the analysis core.
// Adapters for external tools and services implement these interfaces.
package driven
