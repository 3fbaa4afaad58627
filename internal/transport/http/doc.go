// Package http implements the dashboard's JSON API handlers.
//
// Handlers stay thin: they parse the request, call the services layer and
// render the result with go-chi/render. Errors are mapped to APIError
// responses through errors.FromError, so a missing or unknown document
// answers 404 and anything unexpected 500.
//
//	GET /api/documents         every dashboard document and whether it exists
//	GET /api/documents/{name}  the stored JSON of one document, unchanged
//	GET /api/health            server and data health
package http
