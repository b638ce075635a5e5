// Package poller provides the HTTP fetching used by the bridge monitor.
//
// This package is internal to bridgewatch. It wraps [net/http] with
// per-request timeouts, a response size limit and connection reuse, and
// reports every outcome as a [Response] value so the polling loop never has
// to branch on a separate error return.
package poller
