// Package services holds the read side of the dashboard server: listing and
// reading the documents the processor wrote, and reporting health.
package services
