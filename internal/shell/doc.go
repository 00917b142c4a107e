// Package shell serves the offline application shell: the static assets a
// browser needs to start the field CRM UI without a network, the web app
// manifest that makes it installable and the list of assets a service worker
// should pre-cache.
//
// Assets are embedded in the binary. A directory on disk can replace them
// during development; with watching enabled the shell reloads whenever a
// file in that directory changes.
package shell
