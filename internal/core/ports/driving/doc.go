// Package driving defines the ports the CLI and the HTTP status endpoint call
// into: Crawler starts a run, ResultQuery reads back what runs have stored and
// QuotaReporter exposes the forge's remaining API budget.
//
// CrawlService and ResultService in internal/core/services implement them.
package driving
