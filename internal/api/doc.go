// Package api handles incoming HTTP requests, request validation and
// response formatting for the study tracker. Handlers translate HTTP
// concerns to service calls and map service errors to status codes
// through HandleAPIError; they never expose internal error text.
package api
