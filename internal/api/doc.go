// Package api handles incoming HTTP requests, request decoding and response
// formatting. It acts as an adapter between HTTP clients and the services:
// handlers read the authenticated user from the request context, call one
// service method and translate the result, or the error, into JSON.
//
// Errors are classified by MapErrorToStatusCode and described to clients only
// through GetSafeErrorMessage; raw error strings never reach a response body.
package api
