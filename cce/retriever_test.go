package cce

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchOutcomes(t *testing.T) {
	event := Node{"CaseDocketID": "A-1"}

	tests := []struct {
		name      string
		reply     Node
		outcome   Outcome
		errKind   Kind
		wantErr   bool
		fatalKind Kind
		fatal     bool
	}{
		{
			name:    "no record",
			reply:   noRecordReply(),
			outcome: OutcomeNoResults,
			wantErr: true,
			errKind: KindNoResults,
		},
		{
			name: "envelope error",
			reply: Node{"ReceiveCourtCaseEventReply": Node{
				"ResponseStatusCode": "ERROR",
				"ResponseActionText": "Service unavailable",
			}},
			fatal:     true,
			fatalKind: KindUnknown,
		},
		{
			name:      "missing backend block",
			reply:     Node{"ReceiveCourtCaseEventReply": Node{"ResponseMetadata": Node{}}},
			fatal:     true,
			fatalKind: KindProtocol,
		},
		{
			name:    "not found",
			reply:   notFoundFileReply("t1", "A-1"),
			outcome: OutcomeNotFound,
			wantErr: true,
			errKind: KindNotFound,
		},
		{
			name:    "participant not found",
			reply:   fileReply("t1", "FAILURE", "PARTICIPANT NOT FOUND: FirstName:joel LastName:polk BirthDate:1971-05-23", nil),
			outcome: OutcomeNotFound,
			wantErr: true,
			errKind: KindNotFound,
		},
		{
			name:    "invalid request",
			reply:   fileReply("t1", "FAILURE", InvalidRequestText, nil),
			outcome: OutcomeInvalidRequest,
			wantErr: true,
			errKind: KindInvalidRequest,
		},
		{
			name:    "other failure",
			reply:   fileReply("t1", "FAILURE", "Backend exploded", nil),
			outcome: OutcomeFailure,
			wantErr: true,
			errKind: KindUnknown,
		},
		{
			name:      "unknown backend code",
			reply:     fileReply("t1", "MAYBE", "", nil),
			fatal:     true,
			fatalKind: KindProtocol,
		},
		{
			name:    "queued",
			reply:   fileReply("t1", "SUCCESS", "Queued DOCKET NUMBER A-1", event),
			outcome: OutcomeQueued,
		},
		{
			name:    "success",
			reply:   fileReply("t1", "SUCCESS", "DOCKET NUMBER A-1", event),
			outcome: OutcomeSuccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &mockTransport{files: map[FileID]Node{"F1": tt.reply}}
			client := newTestClient(t, transport)

			r, err := client.Fetch(context.Background(), "F1")
			if tt.fatal {
				require.Error(t, err)
				assert.Equal(t, tt.fatalKind, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, r.Outcome())
			if tt.wantErr {
				require.NotNil(t, r.Err)
				assert.Equal(t, tt.errKind, r.Err.Kind)
			} else {
				assert.True(t, r.OK())
				assert.Equal(t, "t1", r.Document.CorrelationID)
				assert.Equal(t, event, r.Document.CaseEvent)
			}
		})
	}
}

func TestFetchNotFoundCarriesFaultReason(t *testing.T) {
	transport := &mockTransport{files: map[FileID]Node{"F1": notFoundFileReply("t1", "A-1")}}
	client := newTestClient(t, transport)

	r, err := client.Fetch(context.Background(), "F1")
	require.NoError(t, err)
	assert.Equal(t, "Docket A-1 was not found", r.Document.FaultReason)
	assert.Contains(t, r.Err.Error(), "Docket A-1 was not found")
	assert.True(t, r.Err.IsNotFound())
}

func TestRetrieveQueued(t *testing.T) {
	reply := fileReply("t1", "SUCCESS", "Queued DOCKET NUMBER CP-51-CR-0000003-2021", Node{"Partial": "yes"})

	t.Run("queued not allowed", func(t *testing.T) {
		client := newTestClient(t, &mockTransport{files: map[FileID]Node{"F1": reply}})
		_, err := client.Retrieve(context.Background(), "F1", RetrieveOptions{Check: true, AllowQueued: false})
		assert.ErrorIs(t, err, ErrQueued)

		var cceErr *Error
		require.True(t, errors.As(err, &cceErr))
		assert.True(t, cceErr.IsRetryable())
		doc, ok := cceErr.RawData.(RetrievedDocument)
		require.True(t, ok)
		assert.Equal(t, OutcomeQueued, doc.Outcome)
	})

	t.Run("queued allowed", func(t *testing.T) {
		client := newTestClient(t, &mockTransport{files: map[FileID]Node{"F1": reply}})
		doc, err := client.Retrieve(context.Background(), "F1", DefaultRetrieveOptions())
		require.NoError(t, err)
		assert.Equal(t, OutcomeQueued, doc.Outcome)
		assert.True(t, doc.HasCaseData())
	})
}

func TestRetrieveCheck(t *testing.T) {
	t.Run("check raises not found", func(t *testing.T) {
		client := newTestClient(t, &mockTransport{files: map[FileID]Node{"F1": notFoundFileReply("t1", "A-1")}})
		_, err := client.Retrieve(context.Background(), "F1", DefaultRetrieveOptions())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("no check returns tagged document", func(t *testing.T) {
		client := newTestClient(t, &mockTransport{files: map[FileID]Node{"F1": notFoundFileReply("t1", "A-1")}})
		doc, err := client.Retrieve(context.Background(), "F1", RetrieveOptions{})
		require.NoError(t, err)
		assert.Equal(t, OutcomeNotFound, doc.Outcome)
	})

	t.Run("no check still surfaces protocol errors", func(t *testing.T) {
		client := newTestClient(t, &mockTransport{files: map[FileID]Node{"F1": fileReply("t1", "MAYBE", "", nil)}})
		_, err := client.Retrieve(context.Background(), "F1", RetrieveOptions{})
		assert.ErrorIs(t, err, ErrProtocol)
	})
}

func TestFetchConsumesOnce(t *testing.T) {
	transport := &mockTransport{files: map[FileID]Node{"F1": fileReply("t1", "SUCCESS", "DOCKET NUMBER A-1", nil)}}
	client := newTestClient(t, transport)

	_, err := client.Fetch(context.Background(), "F1")
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), "F1")
	assert.ErrorIs(t, err, ErrAlreadyConsumed)
	assert.Equal(t, []FileID{"F1"}, transport.fetched)
}

func TestFetchTransportFailureKeepsClaim(t *testing.T) {
	boom := errors.New("connection reset")
	ledger := NewMemoryLedger(nil)
	transport := &mockTransport{fetchErr: map[FileID]error{"F1": boom}}
	client := newTestClient(t, transport, WithLedger(ledger))

	_, err := client.Fetch(context.Background(), "F1")
	assert.ErrorIs(t, err, boom)
	assert.True(t, ledger.Claimed("F1"))
}

func TestFetchRequiresFileID(t *testing.T) {
	transport := &mockTransport{}
	client := newTestClient(t, transport)

	_, err := client.Fetch(context.Background(), "")
	assert.Error(t, err)
	assert.Empty(t, transport.fetched)
}
