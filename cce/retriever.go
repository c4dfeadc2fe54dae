package cce

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	noRecordFoundText = "No Record Found."
	// InvalidRequestText is the backend text for a key JNET refuses to look up
	InvalidRequestText = "Invalid Request Object! Docket Number not supported!"
)

// Retrieval is the tagged result of fetching one file. Err is set for
// outcomes that carry no usable case data; the Document is still populated
// so nothing consumed is lost.
type Retrieval struct {
	Document RetrievedDocument
	Err      *Error
}

// Outcome returns the tag of the fetched document
func (r Retrieval) Outcome() Outcome {
	return r.Document.Outcome
}

// OK reports whether the fetch produced a document without a failure
func (r Retrieval) OK() bool {
	return r.Err == nil
}

// RetrieveOptions controls which outcomes Retrieve turns into errors
type RetrieveOptions struct {
	// Check returns failures as errors instead of tagged documents
	Check bool
	// AllowQueued accepts partial documents still marked as queued
	AllowQueued bool
}

// DefaultRetrieveOptions returns options that check results and accept queued documents.
func DefaultRetrieveOptions() RetrieveOptions {
	return RetrieveOptions{Check: true, AllowQueued: true}
}

// Fetch retrieves the file and classifies the reply. The file id is claimed in
// the ledger before the request is sent, so a second Fetch of the same id
// fails with KindAlreadyConsumed. The returned error is set only for failures
// that make the reply unusable.
func (c *Client) Fetch(ctx context.Context, id FileID) (Retrieval, error) {
	if id == "" {
		return Retrieval{}, errors.New("file id is required")
	}
	if err := c.ledger.Claim(ctx, id); err != nil {
		return Retrieval{}, err
	}

	reply, err := c.transport.FetchByFileID(ctx, id)
	if err != nil {
		return Retrieval{}, fmt.Errorf("failed to fetch file %s: %w", id, err)
	}

	r, err := classifyRetrieval(id, reply)
	if err != nil {
		return Retrieval{}, err
	}
	c.logger.Debug().
		Str("file_id", string(id)).
		Str("tracking_id", r.Document.CorrelationID).
		Str("outcome", string(r.Document.Outcome)).
		Msg("Fetched file")
	return r, nil
}

// Retrieve fetches one file and, with Check set, returns every non-success
// outcome as an error.
func (c *Client) Retrieve(ctx context.Context, id FileID, opts RetrieveOptions) (RetrievedDocument, error) {
	r, err := c.Fetch(ctx, id)
	if err != nil {
		return RetrievedDocument{}, err
	}
	if !opts.Check {
		return r.Document, nil
	}
	if r.Err != nil {
		return RetrievedDocument{}, r.Err
	}
	if r.Document.Outcome == OutcomeQueued && !opts.AllowQueued {
		return RetrievedDocument{}, newError(KindQueued, r.Document, "file %s is still queued: %s", id, r.Document.BackendReturnText)
	}
	return r.Document, nil
}

func classifyRetrieval(id FileID, reply Node) (Retrieval, error) {
	root, ok := reply.Child("ReceiveCourtCaseEventReply")
	if !ok {
		return Retrieval{}, newError(KindProtocol, reply, "reply for file %s has no ReceiveCourtCaseEventReply", id)
	}

	doc := RetrievedDocument{FileID: id, Raw: reply}

	if code, _ := root.Text("ResponseStatusCode"); code == "ERROR" {
		action, _ := root.Text("ResponseActionText")
		if action == noRecordFoundText {
			doc.Outcome = OutcomeNoResults
			return Retrieval{
				Document: doc,
				Err:      newError(KindNoResults, reply, "JNET has no record for file %s", id),
			}, nil
		}
		return Retrieval{}, newError(KindUnknown, reply, "fetching file %s returned ERROR: %s", id, action)
	}

	meta, _ := root.Child("ResponseMetadata")
	backend, ok := meta.Child("BackendSystemReturn")
	if !ok {
		return Retrieval{}, newError(KindProtocol, reply, "reply for file %s has no BackendSystemReturn", id)
	}

	doc.Metadata = meta
	doc.CorrelationID, _ = meta.Text("UserDefinedTrackingID")
	doc.BackendReturnCode, _ = backend.Text("BackendSystemReturnCode")
	doc.BackendReturnText, _ = backend.Text("BackendSystemReturnText")
	doc.CaseEvent, _ = root.Child("CourtCaseEvent")
	if fault, ok := root.Child("AOPCFault"); ok {
		doc.FaultReason, _ = fault.Text("Reason")
	}

	text := doc.BackendReturnText
	switch doc.BackendReturnCode {
	case "FAILURE":
		var kind Kind
		switch {
		case strings.Contains(text, "DOCKET NOT FOUND"), strings.Contains(text, "OTN NOT FOUND"), strings.Contains(text, "PARTICIPANT NOT FOUND"):
			doc.Outcome, kind = OutcomeNotFound, KindNotFound
		case strings.Contains(text, InvalidRequestText):
			doc.Outcome, kind = OutcomeInvalidRequest, KindInvalidRequest
		default:
			doc.Outcome, kind = OutcomeFailure, KindUnknown
		}
		msg := doc.FaultReason
		if msg == "" {
			msg = text
		}
		return Retrieval{Document: doc, Err: newError(kind, reply, "file %s: %s", id, msg)}, nil
	case "SUCCESS":
		if strings.Contains(text, "Queued DOCKET NUMBER") || strings.Contains(text, "Queued OTN") {
			doc.Outcome = OutcomeQueued
		} else {
			doc.Outcome = OutcomeSuccess
		}
		return Retrieval{Document: doc}, nil
	default:
		return Retrieval{}, newError(KindProtocol, reply, "file %s has unknown backend return code %q", id, doc.BackendReturnCode)
	}
}
