package cce

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, transport Transport, opts ...Option) *Client {
	t.Helper()
	client, err := NewClient(transport, zerolog.Nop(), opts...)
	require.NoError(t, err)
	return client
}

func staticQueue(reply Node) func(QueueQuery) Node {
	return func(QueueQuery) Node { return reply }
}

func TestPoll(t *testing.T) {
	reply := queueReply(
		queueRecord("F1", "t1", "Queued DOCKET NUMBER CP-51-CR-0000003-2021"),
		queueRecord("F2", "t1", "DOCKET NUMBER CP-51-CR-0000003-2021"),
		queueRecord("F3", "t2", "DOCKET NOT FOUND: CP-51-CR-0000004-2021"),
	)

	tests := []struct {
		name    string
		opts    PollOptions
		wantIDs []FileID
		wantErr error
	}{
		{
			name:    "no filter",
			opts:    DefaultPollOptions(),
			wantIDs: []FileID{"F1", "F2", "F3"},
		},
		{
			name:    "tracking id",
			opts:    PollOptions{CorrelationID: "t2"},
			wantIDs: []FileID{"F3"},
		},
		{
			name:    "docket is case insensitive",
			opts:    PollOptions{Key: DocketKey("cp-51-cr-0000003-2021")},
			wantIDs: []FileID{"F1", "F2"},
		},
		{
			name:    "kind must agree",
			opts:    PollOptions{Key: OTNKey("CP-51-CR-0000003-2021"), Check: false},
			wantIDs: nil,
		},
		{
			name:    "filter miss with check",
			opts:    PollOptions{CorrelationID: "t9", Check: true},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, &mockTransport{queue: staticQueue(reply)})
			statuses, err := client.Poll(context.Background(), tt.opts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			var ids []FileID
			for _, s := range statuses {
				ids = append(ids, s.FileID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestPollEmptyQueue(t *testing.T) {
	client := newTestClient(t, &mockTransport{})

	statuses, err := client.Poll(context.Background(), PollOptions{CorrelationID: "t1"})
	require.NoError(t, err)
	assert.Empty(t, statuses)

	_, err = client.Poll(context.Background(), PollOptions{CorrelationID: "t1", Check: true})
	assert.ErrorIs(t, err, ErrNoResults)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestPollSingleRecord(t *testing.T) {
	reply := queueReply(queueRecord("F1", "t1", "DOCKET NUMBER A-1"))
	client := newTestClient(t, &mockTransport{queue: staticQueue(reply)})

	statuses, err := client.Poll(context.Background(), DefaultPollOptions())
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].IsFound())
}

func TestPollIsIdempotent(t *testing.T) {
	reply := queueReply(
		queueRecord("F1", "t1", "Queued DOCKET NUMBER A-1"),
		queueRecord("F2", "t1", "DOCKET NUMBER A-1"),
	)
	transport := &mockTransport{queue: staticQueue(reply)}
	client := newTestClient(t, transport)

	first, err := client.Poll(context.Background(), DefaultPollOptions())
	require.NoError(t, err)
	second, err := client.Poll(context.Background(), DefaultPollOptions())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Empty(t, transport.fetched)
}

func TestPollPassesQuery(t *testing.T) {
	transport := &mockTransport{}
	client := newTestClient(t, transport, WithRecordLimit(25))

	_, err := client.Poll(context.Background(), PollOptions{CorrelationID: "t1", PendingOnly: true})
	require.NoError(t, err)
	_, err = client.Poll(context.Background(), PollOptions{Limit: 3})
	require.NoError(t, err)

	require.Len(t, transport.queries, 2)
	assert.Equal(t, QueueQuery{CorrelationID: "t1", PendingOnly: true, RecordLimit: 25}, transport.queries[0])
	assert.Equal(t, QueueQuery{RecordLimit: 3}, transport.queries[1])
}

func TestPollUnclassifiableFailsWholePoll(t *testing.T) {
	reply := queueReply(
		queueRecord("F1", "t1", "DOCKET NUMBER A-1"),
		queueRecord("F2", "t1", "DOCKET SEALED A-2"),
	)
	client := newTestClient(t, &mockTransport{queue: staticQueue(reply)})

	statuses, err := client.Poll(context.Background(), DefaultPollOptions())
	assert.ErrorIs(t, err, ErrUnclassifiable)
	assert.Nil(t, statuses)
}

func TestPollProtocolError(t *testing.T) {
	client := newTestClient(t, &mockTransport{queue: staticQueue(Node{"Unexpected": "x"})})

	_, err := client.Poll(context.Background(), DefaultPollOptions())
	assert.ErrorIs(t, err, ErrProtocol)
	assert.Equal(t, KindProtocol, KindOf(err))
}

// trackingQueue filters by tracking id the way the service does.
func trackingQueue(records ...Node) func(QueueQuery) Node {
	return func(q QueueQuery) Node {
		var matched []Node
		for _, r := range records {
			if id, _ := r.Text("UserDefinedTrackingID"); q.CorrelationID == "" || id == q.CorrelationID {
				matched = append(matched, r)
			}
		}
		return queueReply(matched...)
	}
}

func TestPollCheckTrackingIDMissFromOtherwiseBusyQueue(t *testing.T) {
	transport := &mockTransport{queue: trackingQueue(
		queueRecord("F1", "t1", "DOCKET NUMBER A-1"),
	)}
	client := newTestClient(t, transport)

	_, err := client.Poll(context.Background(), PollOptions{CorrelationID: "t9", PendingOnly: true, Check: true})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrNoResults)

	require.Len(t, transport.queries, 2)
	assert.Equal(t, "t9", transport.queries[0].CorrelationID)
	assert.Empty(t, transport.queries[1].CorrelationID)
	assert.True(t, transport.queries[1].PendingOnly)
}

func TestPollWithoutCheckQueriesOnce(t *testing.T) {
	transport := &mockTransport{queue: trackingQueue(queueRecord("F1", "t1", "DOCKET NUMBER A-1"))}
	client := newTestClient(t, transport)

	statuses, err := client.Poll(context.Background(), PollOptions{CorrelationID: "t9"})
	require.NoError(t, err)
	assert.Empty(t, statuses)
	assert.Len(t, transport.queries, 1)
}

func TestPollKeylessNotFound(t *testing.T) {
	reply := queueReply(
		queueRecord("N1", "t1", "OTN NOT FOUND aopc:error"),
		queueRecord("N2", "t2", "OTN NOT FOUND aopc:error"),
	)

	tests := []struct {
		name    string
		opts    PollOptions
		wantIDs []FileID
	}{
		{
			name:    "scoped by tracking id",
			opts:    PollOptions{CorrelationID: "t1", Key: OTNKey("T1234567")},
			wantIDs: []FileID{"N1"},
		},
		{
			name:    "key only cannot be attributed",
			opts:    PollOptions{Key: OTNKey("T1234567")},
			wantIDs: nil,
		},
		{
			name:    "kind must agree",
			opts:    PollOptions{CorrelationID: "t1", Key: DocketKey("A-1")},
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, &mockTransport{queue: staticQueue(reply)})
			statuses, err := client.Poll(context.Background(), tt.opts)
			require.NoError(t, err)

			var ids []FileID
			for _, s := range statuses {
				ids = append(ids, s.FileID)
				assert.True(t, s.IsNotFound())
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
