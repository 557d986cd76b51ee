// Package poller fetches raw metrics payloads over HTTP for the normalize
// engine to interpret.
//
// Two pollers exist behind the New(config.Source) factory: a text poller for
// exposition endpoints (jmx and text modes) that returns the response body
// verbatim, and a query poller that evaluates a PromQL expression against
// /api/v1/query and hands back the raw data.result array.
//
// Authentication (API key, bearer token, basic auth) is handled by the
// shared authRoundTripper in base.go; individual pollers receive a
// pre-configured *http.Client from New().
package poller
