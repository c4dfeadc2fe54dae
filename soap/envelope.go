package soap

import (
	"encoding/xml"
	"fmt"

	"github.com/s0up4200/jnetcce/cce"
)

// replyToAddress fills a field JNET still requires but no longer uses
const replyToAddress = "deprecated but required field"

type envelope struct {
	XMLName xml.Name     `xml:"http://www.w3.org/2003/05/soap-envelope Envelope"`
	Body    envelopeBody `xml:"http://www.w3.org/2003/05/soap-envelope Body"`
}

type envelopeBody struct {
	Submit  *courtCaseEventRequest `xml:",omitempty"`
	Info    *courtCaseEventInfo    `xml:",omitempty"`
	Receive *receiveCourtCaseEvent `xml:",omitempty"`
}

type requestMetadata struct {
	TrackingID string `xml:"http://www.jnet.state.pa.us/niem/jnet/metadata/1 UserDefinedTrackingID,omitempty"`
	ReplyTo    string `xml:"http://www.jnet.state.pa.us/niem/jnet/metadata/1 ReplyToAddressURI,omitempty"`
	UserID     string `xml:"http://www.jnet.state.pa.us/niem/jnet/metadata/1 RequestAuthenticatedUserID"`
}

type courtCaseEventRequest struct {
	XMLName  xml.Name         `xml:"http://jnet.state.pa.us/message/aopc/CCERequestReply/1 RequestCourtCaseEvent"`
	Metadata requestMetadata  `xml:"http://www.jnet.state.pa.us/niem/jnet/metadata/1 RequestMetadata"`
	Request  courtCaseRequest `xml:"http://www.jnet.state.pa.us/niem/aopc/CourtCaseRequest/1 CourtCaseRequest"`
}

type courtCaseRequest struct {
	Docket      *docketCriteria      `xml:"http://us.pacourts.us/niem/aopc/Extension/2 CaseDocketIDCriteria,omitempty"`
	OTN         *otnCriteria         `xml:"http://us.pacourts.us/niem/aopc/Extension/2 ChargeTrackingIdentificationCriteria,omitempty"`
	Participant *participantCriteria `xml:"http://us.pacourts.us/niem/aopc/Extension/2 CaseParticipantCriteria,omitempty"`
}

type docketCriteria struct {
	DocketID string `xml:"http://niem.gov/niem/niem-core/2.0 CaseDocketID"`
}

type otnCriteria struct {
	Tracking identification `xml:"http://niem.gov/niem/domains/jxdm/4.0 ChargeTrackingIdentification"`
}

type identification struct {
	ID string `xml:"http://niem.gov/niem/niem-core/2.0 IdentificationID"`
}

type participantCriteria struct {
	Name      personName `xml:"http://niem.gov/niem/niem-core/2.0 PersonName"`
	BirthDate personDate `xml:"http://niem.gov/niem/niem-core/2.0 PersonBirthDate"`
}

type personName struct {
	Given   string `xml:"http://niem.gov/niem/niem-core/2.0 PersonGivenName"`
	Surname string `xml:"http://niem.gov/niem/niem-core/2.0 PersonSurName"`
}

type personDate struct {
	Date string `xml:"http://niem.gov/niem/niem-core/2.0 Date"`
}

type courtCaseEventInfo struct {
	XMLName     xml.Name        `xml:"http://jnet.state.pa.us/message/aopc/CCERequestReply/1 RequestCourtCaseEventInfo"`
	Metadata    requestMetadata `xml:"http://www.jnet.state.pa.us/niem/jnet/metadata/1 RequestMetadata"`
	RecordLimit int             `xml:"http://jnet.state.pa.us/message/aopc/CCERequestReply/1 RecordLimit"`
	TrackingID  string          `xml:"http://jnet.state.pa.us/message/aopc/CCERequestReply/1 UserDefinedTrackingID,omitempty"`
	PendingOnly bool            `xml:"http://jnet.state.pa.us/message/aopc/CCERequestReply/1 PendingOnly"`
}

type receiveCourtCaseEvent struct {
	XMLName  xml.Name        `xml:"http://jnet.state.pa.us/message/aopc/CCERequestReply/1 ReceiveCourtCaseEventReply"`
	Metadata requestMetadata `xml:"http://www.jnet.state.pa.us/niem/jnet/metadata/1 RequestMetadata"`
	FileID   string          `xml:"http://jnet.state.pa.us/message/aopc/CCERequestReply/1 FileTrackingID"`
}

func newSubmitBody(userID string, req cce.SubmittedRequest) (envelopeBody, error) {
	msg := &courtCaseEventRequest{
		Metadata: requestMetadata{
			TrackingID: req.CorrelationID,
			ReplyTo:    replyToAddress,
			UserID:     userID,
		},
	}

	key := req.Key
	switch key.Kind {
	case cce.KeyKindDocket:
		msg.Request.Docket = &docketCriteria{DocketID: key.Value}
	case cce.KeyKindOTN:
		msg.Request.OTN = &otnCriteria{Tracking: identification{ID: key.Value}}
	case cce.KeyKindParticipant:
		if key.Participant == nil {
			return envelopeBody{}, fmt.Errorf("participant key %q has no participant details", key.Value)
		}
		p := key.Participant
		msg.Request.Participant = &participantCriteria{
			Name:      personName{Given: p.FirstName, Surname: p.LastName},
			BirthDate: personDate{Date: p.BirthDate.Format("2006-01-02")},
		}
	default:
		return envelopeBody{}, fmt.Errorf("unsupported key kind %q", key.Kind)
	}
	return envelopeBody{Submit: msg}, nil
}

func newInfoBody(userID string, q cce.QueueQuery) envelopeBody {
	return envelopeBody{Info: &courtCaseEventInfo{
		Metadata:    requestMetadata{UserID: userID},
		RecordLimit: q.RecordLimit,
		TrackingID:  q.CorrelationID,
		PendingOnly: q.PendingOnly,
	}}
}

func newReceiveBody(userID string, id cce.FileID) envelopeBody {
	return envelopeBody{Receive: &receiveCourtCaseEvent{
		Metadata: requestMetadata{UserID: userID},
		FileID:   string(id),
	}}
}

func marshalEnvelope(body envelopeBody) ([]byte, error) {
	out, err := xml.Marshal(envelope{Body: body})
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
