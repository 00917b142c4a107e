// Package http implements the local HTTP API of the field CRM client.
//
// The API fronts the service layer for the browser shell and scripts running
// next to the client: collection reads and writes, photo uploads, queue and
// sync control, client status and a websocket event stream. Request tracing,
// access logging and response compression are applied here before requests
// reach the services.
package http
