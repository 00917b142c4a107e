// Package network watches whether the remote API is reachable.
//
// A [Monitor] holds the single current [models.ConnectivityState] of the
// process and a list of subscribers. It starts optimistic (connected), runs
// a corrective check shortly after start and then polls its sources on a
// fixed interval. Sources are tried in order; a source answering
// adapter.ErrSourceUnavailable hands over to the next one. The usual chain
// is the HTTP health probe of the remote adapter followed by a TCP dial of
// the API host.
//
// Every transition is delivered exactly once to each subscriber registered
// at the time of the transition, in subscription order. There is no
// debouncing.
package network
