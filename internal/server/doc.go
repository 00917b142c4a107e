// Package server runs the local listeners of the field CRM client: the HTTP
// API with the offline shell, and the gRPC health endpoint.
//
// Listeners are bound before serving starts so address errors surface to the
// caller, and all of them are shut down together when the run context ends.
package server
