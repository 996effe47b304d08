// Package http contains the chi handlers for the price API. Handlers
// translate HTTP requests into service calls and render JSON envelopes
// of the form {"success": true, "data": ...} on success; failures go
// through the shared error handler.
package http
