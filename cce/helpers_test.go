package cce

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// mockTransport implements Transport for testing
type mockTransport struct {
	mu sync.Mutex

	submitReply Node
	submitErr   error
	queue       func(q QueueQuery) Node
	queueErr    error
	files       map[FileID]Node
	fetchErr    map[FileID]error

	// Track calls for verification
	submitted []SubmittedRequest
	queries   []QueueQuery
	fetched   []FileID
}

func (m *mockTransport) Submit(ctx context.Context, req SubmittedRequest) (Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted = append(m.submitted, req)
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	if m.submitReply != nil {
		return m.submitReply, nil
	}
	return submitReply("CCE request queued to AOPC."), nil
}

func (m *mockTransport) QueryQueue(ctx context.Context, q QueueQuery) (Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if m.queueErr != nil {
		return nil, m.queueErr
	}
	if m.queue == nil {
		return queueReply(), nil
	}
	return m.queue(q), nil
}

func (m *mockTransport) FetchByFileID(ctx context.Context, id FileID) (Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, id)
	if err, ok := m.fetchErr[id]; ok {
		return nil, err
	}
	if reply, ok := m.files[id]; ok {
		return reply, nil
	}
	return noRecordReply(), nil
}

// fakeClock advances only when Sleep is called
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2021, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func queueRecord(fileID, trackingID, text string) Node {
	return Node{
		"FileTrackingID":        fileID,
		"UserDefinedTrackingID": trackingID,
		"HeaderField": []any{
			Node{"HeaderName": "ActivityDate", "HeaderValueText": "2021-06-01"},
			Node{"HeaderName": ActivityHeader, "HeaderValueText": text},
		},
	}
}

// queueReply mimics the XML conversion: one record is a bare object.
func queueReply(records ...Node) Node {
	resp := Node{"RecordCount": strconv.Itoa(len(records))}
	switch len(records) {
	case 0:
	case 1:
		resp["RequestCourtCaseEventInfoMetadata"] = records[0]
	default:
		list := make([]any, 0, len(records))
		for _, r := range records {
			list = append(list, r)
		}
		resp["RequestCourtCaseEventInfoMetadata"] = list
	}
	return Node{"RequestCourtCaseEventInfoResponse": resp}
}

func fileReply(trackingID, code, text string, event Node) Node {
	reply := Node{
		"ResponseMetadata": Node{
			"UserDefinedTrackingID": trackingID,
			"BackendSystemReturn": Node{
				"BackendSystemReturnCode": code,
				"BackendSystemReturnText": text,
			},
		},
	}
	if event != nil {
		reply["CourtCaseEvent"] = event
	}
	return Node{"ReceiveCourtCaseEventReply": reply}
}

func notFoundFileReply(trackingID, docket string) Node {
	reply := fileReply(trackingID, "FAILURE", "DOCKET NOT FOUND: "+docket, nil)
	root, _ := reply.Child("ReceiveCourtCaseEventReply")
	root["AOPCFault"] = Node{"Reason": "Docket " + docket + " was not found"}
	return reply
}

func noRecordReply() Node {
	return Node{"ReceiveCourtCaseEventReply": Node{
		"ResponseStatusCode": "ERROR",
		"ResponseActionText": "No Record Found.",
	}}
}

func submitReply(description string) Node {
	return Node{"RequestCourtCaseEventResponse": Node{
		"ResponseStatusCode":            "SUCCESS",
		"ResponseStatusDescriptionText": description,
	}}
}
