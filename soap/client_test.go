package soap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/jnetcce/cce"
)

func wrapEnvelope(body string) string {
	return `<?xml version="1.0" encoding="utf-8"?><soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope"><soap:Body>` +
		body + `</soap:Body></soap:Envelope>`
}

type recordedRequest struct {
	contentType string
	body        string
}

func newTestServer(t *testing.T, status int, reply string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{contentType: r.Header.Get("Content-Type"), body: string(body)})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func newTestClient(t *testing.T, url string, opts ...Option) *Client {
	t.Helper()
	client, err := NewClient(url+"/"+ServicePath, "USER1", zerolog.Nop(), opts...)
	require.NoError(t, err)
	return client
}

func TestSubmitDocket(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, wrapEnvelope(
		`<RequestCourtCaseEventResponse><ResponseStatusCode>SUCCESS</ResponseStatusCode>`+
			`<ResponseStatusDescriptionText>CCE request queued to AOPC.</ResponseStatusDescriptionText></RequestCourtCaseEventResponse>`))
	client := newTestClient(t, server.URL)

	reply, err := client.Submit(context.Background(), cce.SubmittedRequest{
		CorrelationID: "t1",
		Key:           cce.DocketKey("CP-51-CR-0000003-2021"),
	})
	require.NoError(t, err)

	resp, ok := reply.Child("RequestCourtCaseEventResponse")
	require.True(t, ok)
	code, _ := resp.Text("ResponseStatusCode")
	assert.Equal(t, "SUCCESS", code)

	require.Len(t, *requests, 1)
	sent := (*requests)[0]
	assert.Equal(t, contentType, sent.contentType)
	assert.Contains(t, sent.body, "RequestCourtCaseEvent")
	assert.Contains(t, sent.body, ">CP-51-CR-0000003-2021</CaseDocketID>")
	assert.Contains(t, sent.body, ">t1</UserDefinedTrackingID>")
	assert.Contains(t, sent.body, ">USER1</RequestAuthenticatedUserID>")
	assert.NotContains(t, sent.body, "ChargeTrackingIdentificationCriteria")
}

func TestSubmitOTNAndParticipant(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, wrapEnvelope(`<RequestCourtCaseEventResponse/>`))
	client := newTestClient(t, server.URL)

	_, err := client.Submit(context.Background(), cce.SubmittedRequest{CorrelationID: "t1", Key: cce.OTNKey("T1234567")})
	require.NoError(t, err)
	_, err = client.Submit(context.Background(), cce.SubmittedRequest{
		CorrelationID: "t2",
		Key:           cce.ParticipantKey("joel", "polk", time.Date(1971, 5, 23, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	require.Len(t, *requests, 2)
	assert.Contains(t, (*requests)[0].body, ">T1234567</IdentificationID>")
	assert.Contains(t, (*requests)[1].body, ">joel</PersonGivenName>")
	assert.Contains(t, (*requests)[1].body, ">1971-05-23</Date>")
}

func TestQueryQueue(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, queueReplyXML)
	client := newTestClient(t, server.URL)

	reply, err := client.QueryQueue(context.Background(), cce.QueueQuery{CorrelationID: "t1", PendingOnly: true, RecordLimit: 500})
	require.NoError(t, err)
	assert.True(t, reply.Has("RequestCourtCaseEventInfoResponse"))

	body := (*requests)[0].body
	assert.Contains(t, body, ">500</RecordLimit>")
	assert.Contains(t, body, ">true</PendingOnly>")
}

func TestQueryQueueFeedsPoller(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, queueReplyXML)
	client, err := cce.NewClient(newTestClient(t, server.URL), zerolog.Nop())
	require.NoError(t, err)

	statuses, err := client.Poll(context.Background(), cce.PollOptions{CorrelationID: "t1", PendingOnly: true})
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Queued)
	assert.True(t, statuses[1].IsFound())
}

func TestFetchByFileID(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, wrapEnvelope(
		`<ReceiveCourtCaseEventReply><ResponseStatusCode>ERROR</ResponseStatusCode>`+
			`<ResponseActionText>No Record Found.</ResponseActionText></ReceiveCourtCaseEventReply>`))
	client := newTestClient(t, server.URL)

	reply, err := client.FetchByFileID(context.Background(), "F9")
	require.NoError(t, err)
	root, ok := reply.Child("ReceiveCourtCaseEventReply")
	require.True(t, ok)
	action, _ := root.Text("ResponseActionText")
	assert.Equal(t, "No Record Found.", action)
	assert.Contains(t, (*requests)[0].body, ">F9</FileTrackingID>")
}

func TestHTTPErrors(t *testing.T) {
	fault := func(s string) string {
		return wrapEnvelope(`<soap:Fault><faultcode>soap:Server</faultcode><faultstring>` + s +
			`</faultstring><detail><JNETFaultDetail><ErrorModuleText>cert expired</ErrorModuleText></JNETFaultDetail></detail></soap:Fault>`)
	}

	tests := []struct {
		name     string
		status   int
		reply    string
		kind     cce.Kind
		contains string
	}{
		{
			name:     "authentication",
			status:   http.StatusInternalServerError,
			reply:    fault("Authentication_Error"),
			kind:     cce.KindAuthentication,
			contains: "client certificate or key",
		},
		{
			name:     "validation",
			status:   http.StatusInternalServerError,
			reply:    fault("Validation_Error"),
			kind:     cce.KindAuthentication,
			contains: "user id",
		},
		{
			name:     "other fault",
			status:   http.StatusInternalServerError,
			reply:    fault("Server_Busy"),
			kind:     cce.KindTransport,
			contains: "Server_Busy",
		},
		{
			name:     "not xml",
			status:   http.StatusBadGateway,
			reply:    "bad gateway",
			kind:     cce.KindTransport,
			contains: "502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestServer(t, tt.status, tt.reply)
			client := newTestClient(t, server.URL)

			_, err := client.QueryQueue(context.Background(), cce.QueueQuery{RecordLimit: 1})
			require.Error(t, err)

			var cceErr *cce.Error
			require.True(t, errors.As(err, &cceErr))
			assert.Equal(t, tt.kind, cceErr.Kind)
			assert.Equal(t, tt.status, cceErr.StatusCode())
			assert.Contains(t, cceErr.Error(), tt.contains)
		})
	}
}

func TestMalformedReply(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, "<html>maintenance</html>")
	client := newTestClient(t, server.URL)

	_, err := client.QueryQueue(context.Background(), cce.QueueQuery{RecordLimit: 1})
	assert.ErrorIs(t, err, cce.ErrProtocol)
}

func TestSigner(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, wrapEnvelope(`<RequestCourtCaseEventInfoResponse/>`))
	client := newTestClient(t, server.URL, WithSigner(SignerFunc(func(b []byte) ([]byte, error) {
		return []byte(strings.Replace(string(b), "<Envelope", "<!-- signed --><Envelope", 1)), nil
	})))

	_, err := client.QueryQueue(context.Background(), cce.QueueQuery{RecordLimit: 1})
	require.NoError(t, err)
	assert.Contains(t, (*requests)[0].body, "<!-- signed -->")
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("https://ws.jnet.beta.pa.gov/AOPC/CCERequest", "", zerolog.Nop())
	assert.Error(t, err)

	_, err = NewClient("ws.jnet.pa.gov", "USER1", zerolog.Nop())
	assert.Error(t, err)

	_, err = NewClient(EndpointURL(BetaEndpoint), "USER1", zerolog.Nop(), WithClientCertificate("missing.crt", "missing.key"))
	assert.Error(t, err)
}

func TestResolveBase(t *testing.T) {
	assert.Equal(t, ProductionEndpoint, ResolveBase("jnet"))
	assert.Equal(t, BetaEndpoint, ResolveBase("beta"))
	assert.Equal(t, "https://example.test/", ResolveBase("https://example.test/"))
	assert.Equal(t, "https://ws.jnet.beta.pa.gov/AOPC/CCERequest", EndpointURL(BetaEndpoint))
}
