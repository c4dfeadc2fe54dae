package loopback

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/s0up4200/jnetcce/cce"
)

// Resolver decides whether the simulated backend has data for key. The
// returned node becomes the CourtCaseEvent of the finished file.
type Resolver func(key cce.BusinessKey) (cce.Node, bool)

// entry is one simulated queue record
type entry struct {
	fileID        cce.FileID
	correlationID string
	text          string
	backendCode   string
	backendText   string
	faultReason   string
	caseEvent     cce.Node
	visibleAt     time.Time
	consumed      bool
}

// Queue is an in-memory cce.Transport that behaves like the JNET loopback
// queue. Submissions become visible after a processing delay and fetching a
// file removes it.
type Queue struct {
	mu          sync.Mutex
	clock       cce.Clock
	delay       time.Duration
	queuedPhase time.Duration
	resolver    Resolver
	entries     []*entry
	nextID      int
	fetched     []cce.FileID
}

var _ cce.Transport = (*Queue)(nil)

// Option configures a Queue
type Option func(*Queue)

// WithClock sets the clock used to decide when entries become visible
func WithClock(clock cce.Clock) Option {
	return func(q *Queue) {
		q.clock = clock
	}
}

// WithProcessingDelay sets how long after submission the first entry appears
func WithProcessingDelay(d time.Duration) Option {
	return func(q *Queue) {
		q.delay = d
	}
}

// WithQueuedPhase makes a queued placeholder visible for d before the final entry
func WithQueuedPhase(d time.Duration) Option {
	return func(q *Queue) {
		q.queuedPhase = d
	}
}

// WithResolver sets which keys resolve to found
func WithResolver(r Resolver) Option {
	return func(q *Queue) {
		q.resolver = r
	}
}

// Known returns a Resolver that finds only the given keys.
func Known(events map[string]cce.Node) Resolver {
	return func(key cce.BusinessKey) (cce.Node, bool) {
		for k, event := range events {
			if strings.EqualFold(k, key.Value) {
				return event, true
			}
		}
		return nil, false
	}
}

// FindAll resolves every key with a minimal case event
func FindAll(key cce.BusinessKey) (cce.Node, bool) {
	return cce.Node{"CaseDocketID": key.Value, "KeyType": string(key.Kind)}, true
}

// NewQueue creates an empty loopback queue
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		clock:    cce.SystemClock,
		resolver: FindAll,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Submit enqueues the simulated answer for req
func (q *Queue) Submit(ctx context.Context, req cce.SubmittedRequest) (cce.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.clock.Now()
	key := req.Key
	readyAt := now.Add(q.delay)

	if q.queuedPhase > 0 && key.Kind != cce.KeyKindParticipant {
		text := queuedText(key)
		q.add(&entry{
			correlationID: req.CorrelationID,
			text:          text,
			backendCode:   "SUCCESS",
			backendText:   text,
			visibleAt:     readyAt,
		})
		readyAt = readyAt.Add(q.queuedPhase)
	}

	final := &entry{correlationID: req.CorrelationID, visibleAt: readyAt}
	if event, ok := q.resolver(key); ok {
		final.text = foundText(key)
		final.backendCode = "SUCCESS"
		final.backendText = final.text
		final.caseEvent = event
	} else {
		final.text = notFoundText(key) + " aopc:error"
		final.backendCode = "FAILURE"
		final.backendText = notFoundText(key)
		final.faultReason = fmt.Sprintf("%s %s was not found", key.Kind, key.Value)
	}
	q.add(final)

	return cce.Node{"RequestCourtCaseEventResponse": cce.Node{
		"ResponseStatusCode":            "SUCCESS",
		"ResponseStatusDescriptionText": cce.LoopbackDescription,
	}}, nil
}

func (q *Queue) add(e *entry) {
	q.nextID++
	e.fileID = cce.FileID(fmt.Sprintf("LB%06d", q.nextID))
	q.entries = append(q.entries, e)
}

// QueryQueue lists visible records. Pending queries skip consumed ones.
func (q *Queue) QueryQueue(ctx context.Context, query cce.QueueQuery) (cce.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.clock.Now()
	var records []any
	for _, e := range q.entries {
		if e.visibleAt.After(now) {
			continue
		}
		if query.PendingOnly && e.consumed {
			continue
		}
		if query.CorrelationID != "" && e.correlationID != query.CorrelationID {
			continue
		}
		if query.RecordLimit > 0 && len(records) >= query.RecordLimit {
			break
		}
		records = append(records, cce.Node{
			"FileTrackingID":        string(e.fileID),
			"UserDefinedTrackingID": e.correlationID,
			"HeaderField": []any{
				cce.Node{"HeaderName": cce.ActivityHeader, "HeaderValueText": e.text},
				cce.Node{"HeaderName": "ActivityDate", "HeaderValueText": e.visibleAt.Format("2006-01-02")},
			},
		})
	}

	resp := cce.Node{"RecordCount": strconv.Itoa(len(records))}
	switch len(records) {
	case 0:
	case 1:
		resp["RequestCourtCaseEventInfoMetadata"] = records[0]
	default:
		resp["RequestCourtCaseEventInfoMetadata"] = records
	}
	return cce.Node{"RequestCourtCaseEventInfoResponse": resp}, nil
}

// FetchByFileID returns and consumes a visible record
func (q *Queue) FetchByFileID(ctx context.Context, id cce.FileID) (cce.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	q.fetched = append(q.fetched, id)
	now := q.clock.Now()
	for _, e := range q.entries {
		if e.fileID != id || e.consumed || e.visibleAt.After(now) {
			continue
		}
		e.consumed = true

		reply := cce.Node{
			"ResponseMetadata": cce.Node{
				"UserDefinedTrackingID": e.correlationID,
				"BackendSystemReturn": cce.Node{
					"BackendSystemReturnCode": e.backendCode,
					"BackendSystemReturnText": e.backendText,
				},
			},
		}
		if e.caseEvent != nil {
			reply["CourtCaseEvent"] = e.caseEvent
		}
		if e.faultReason != "" {
			reply["AOPCFault"] = cce.Node{"Reason": e.faultReason}
		}
		return cce.Node{"ReceiveCourtCaseEventReply": reply}, nil
	}

	return cce.Node{"ReceiveCourtCaseEventReply": cce.Node{
		"ResponseStatusCode": "ERROR",
		"ResponseActionText": "No Record Found.",
	}}, nil
}

// Fetched returns every file id requested so far, in order
func (q *Queue) Fetched() []cce.FileID {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]cce.FileID(nil), q.fetched...)
}

// Pending counts records not yet consumed, visible or not
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, e := range q.entries {
		if !e.consumed {
			n++
		}
	}
	return n
}

func queuedText(key cce.BusinessKey) string {
	if key.Kind == cce.KeyKindOTN {
		return "Queued OTN " + key.Value
	}
	return "Queued DOCKET NUMBER " + key.Value
}

func foundText(key cce.BusinessKey) string {
	switch key.Kind {
	case cce.KeyKindOTN:
		return "OTN " + key.Value
	case cce.KeyKindParticipant:
		return "CASE PARTICIPANT " + key.Value
	default:
		return "DOCKET NUMBER " + key.Value
	}
}

func notFoundText(key cce.BusinessKey) string {
	switch key.Kind {
	case cce.KeyKindOTN:
		return "OTN NOT FOUND: " + key.Value
	case cce.KeyKindParticipant:
		return "PARTICIPANT NOT FOUND: " + key.Value
	default:
		return "DOCKET NOT FOUND: " + key.Value
	}
}
