// Package server hosts the dedicated metrics endpoint. Application
// functionality lives in the CLI; this package only exposes Prometheus
// scraping and a health check on their own port.
package server
