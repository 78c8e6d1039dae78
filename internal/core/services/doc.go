// Package services contains the core engine logic: the Engine owning
// the active index snapshot, the IngestOrchestrator running corpus
// scans, the RouterService answering queries, and the Rescanner
// driving periodic re-ingestion.
//
// Services depend only on ports; adapters are wired in at startup.
package services
