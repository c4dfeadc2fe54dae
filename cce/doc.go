// Package cce implements the client side of the JNET Court Case Event
// request/reply service.
//
// JNET answers lookups asynchronously. A request for a docket number, an
// offense tracking number (OTN) or a case participant is accepted and queued,
// and the answer later shows up as a record in a shared status queue. Records
// carry no machine-readable status; the only signal is free text in the
// ActivityTypeText header, which this package classifies.
//
// # Architecture
//
//   - Transport: the authenticated exchange (see packages soap and loopback)
//   - Classify: one queue record to a typed RequestStatus
//   - Client.Poll: lists and filters the queue without consuming anything
//   - Client.Fetch / Client.Retrieve: retrieves one file, consuming it
//   - Client.Reconcile: decides which records to fetch, drain or leave alone
//   - Client.FetchDocuments: submit, then poll and reconcile until resolved
//
// # Usage
//
//	transport, err := soap.NewClient(soap.EndpointURL(soap.BetaEndpoint), "USERID", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, err := cce.NewClient(transport, logger, cce.WithPollInterval(10*time.Second))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	docs, err := client.FetchDocuments(ctx, cce.DocketKey("CP-51-CR-0000003-2021"), 2*time.Minute)
//
// # Consumption
//
// Fetching a file removes it from the remote queue. Every Fetch claims the
// file id in a Ledger first and a second claim fails with KindAlreadyConsumed.
// Use archive.Store as the ledger to keep that guarantee across processes.
//
// # Errors
//
// All failures are *Error values with a Kind. They match the package
// sentinels with errors.Is:
//
//	if errors.Is(err, cce.ErrNotFound) {
//		// JNET resolved the lookup and has no data
//	}
package cce
