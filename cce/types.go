package cce

import (
	"fmt"
	"strings"
	"time"
)

// KeyKind identifies which business key a request was made with
type KeyKind string

const (
	// KeyKindUnknown is used when the key type cannot be determined
	KeyKindUnknown KeyKind = "unknown"
	// KeyKindDocket is a court case docket number, e.g. CP-51-CR-0000003-2021
	KeyKindDocket KeyKind = "docket"
	// KeyKindOTN is an offense tracking number
	KeyKindOTN KeyKind = "otn"
	// KeyKindParticipant is a case participant search by name and birth date
	KeyKindParticipant KeyKind = "participant"
)

// participantDateLayout is the birth date format JNET echoes back
const participantDateLayout = "2006-01-02"

// Participant identifies a person for a case participant search
type Participant struct {
	FirstName string    `json:"first_name" yaml:"first_name"`
	LastName  string    `json:"last_name" yaml:"last_name"`
	BirthDate time.Time `json:"birth_date" yaml:"birth_date"`
}

// String renders the participant the way the queue status text does.
func (p Participant) String() string {
	return fmt.Sprintf("FirstName:%s LastName:%s BirthDate:%s",
		p.FirstName, p.LastName, p.BirthDate.Format(participantDateLayout))
}

// BusinessKey is the caller-meaningful identifier of a lookup
type BusinessKey struct {
	Kind        KeyKind      `json:"kind" yaml:"kind"`
	Value       string       `json:"value" yaml:"value"`
	Participant *Participant `json:"participant,omitempty" yaml:"participant,omitempty"`
}

// DocketKey returns the key for a docket number lookup
func DocketKey(docket string) BusinessKey {
	return BusinessKey{Kind: KeyKindDocket, Value: strings.TrimSpace(docket)}
}

// OTNKey returns the key for an offense tracking number lookup
func OTNKey(otn string) BusinessKey {
	return BusinessKey{Kind: KeyKindOTN, Value: strings.TrimSpace(otn)}
}

// ParticipantKey returns the key for a participant search
func ParticipantKey(firstName, lastName string, birthDate time.Time) BusinessKey {
	p := &Participant{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		BirthDate: birthDate,
	}
	return BusinessKey{Kind: KeyKindParticipant, Value: p.String(), Participant: p}
}

// IsZero reports whether no key was set
func (k BusinessKey) IsZero() bool {
	return k.Value == ""
}

func (k BusinessKey) String() string {
	if k.Kind == "" || k.Kind == KeyKindUnknown {
		return k.Value
	}
	return string(k.Kind) + " " + k.Value
}

// Matches compares two keys case-insensitively. Kinds must agree unless one
// of them is unknown.
func (k BusinessKey) Matches(other BusinessKey) bool {
	if k.IsZero() || other.IsZero() {
		return false
	}
	if k.Kind != KeyKindUnknown && other.Kind != KeyKindUnknown && k.Kind != "" && other.Kind != "" && k.Kind != other.Kind {
		return false
	}
	return strings.EqualFold(k.Value, other.Value)
}

// Validate rejects keys the remote service would refuse outright.
func (k BusinessKey) Validate() error {
	switch k.Kind {
	case KeyKindDocket, KeyKindOTN:
		if k.Value == "" {
			return newError(KindInvalidRequest, k, "%s must not be empty", k.Kind)
		}
		if strings.ContainsAny(k.Value, " \t\r\n") {
			return newError(KindInvalidRequest, k, "%s %q must not contain whitespace", k.Kind, k.Value)
		}
	case KeyKindParticipant:
		p := k.Participant
		if p == nil || p.FirstName == "" || p.LastName == "" {
			return newError(KindInvalidRequest, k, "participant search requires a first and last name")
		}
		if p.BirthDate.IsZero() {
			return newError(KindInvalidRequest, k, "participant search requires a birth date")
		}
	default:
		return newError(KindInvalidRequest, k, "unsupported key kind %q", k.Kind)
	}
	return nil
}

// FileID is the server-issued handle of one retrievable document. Fetching it
// removes the document from the queue.
type FileID string

// SubmittedRequest is a lookup that has been accepted by the transport
type SubmittedRequest struct {
	CorrelationID string      `json:"tracking_id" yaml:"tracking_id"`
	Key           BusinessKey `json:"key" yaml:"key"`
	SubmittedAt   time.Time   `json:"submitted_at" yaml:"submitted_at"`
	Status        string      `json:"status,omitempty" yaml:"status,omitempty"`
	Description   string      `json:"description,omitempty" yaml:"description,omitempty"`
	Loopback      bool        `json:"loopback,omitempty" yaml:"loopback,omitempty"`
}

// Header is one HeaderField of a queue record
type Header struct {
	Name string
	Text string
}

// QueueEntry is one record reported by the status queue
type QueueEntry struct {
	FileID        FileID
	CorrelationID string
	Headers       []Header
	Position      int
	Raw           Node
}

// HeaderTexts returns the text of every header with the given name.
func (e QueueEntry) HeaderTexts(name string) []string {
	var texts []string
	for _, h := range e.Headers {
		if h.Name == name {
			texts = append(texts, h.Text)
		}
	}
	return texts
}

// QueueQuery selects the records returned by Transport.QueryQueue
type QueueQuery struct {
	CorrelationID string
	PendingOnly   bool
	RecordLimit   int
}

// RequestStatus is the classified state of one queue entry
type RequestStatus struct {
	CorrelationID string  `json:"tracking_id" yaml:"tracking_id"`
	FileID        FileID  `json:"file_id" yaml:"file_id"`
	Queued        bool    `json:"queued" yaml:"queued"`
	Found         *bool   `json:"found" yaml:"found"`
	KeyKind       KeyKind `json:"type" yaml:"type"`
	Key           string  `json:"key,omitempty" yaml:"key,omitempty"`
	Message       string  `json:"message,omitempty" yaml:"message,omitempty"`
	Text          string  `json:"text" yaml:"text"`
}

// BusinessKey returns the key extracted from the status text
func (s RequestStatus) BusinessKey() BusinessKey {
	return BusinessKey{Kind: s.KeyKind, Value: s.Key}
}

// IsResolved reports whether the backend has decided found or not found
func (s RequestStatus) IsResolved() bool {
	return s.Found != nil
}

// IsFound reports whether the backend found data for the request
func (s RequestStatus) IsFound() bool {
	return s.Found != nil && *s.Found
}

// IsNotFound reports whether the backend resolved the request as absent
func (s RequestStatus) IsNotFound() bool {
	return s.Found != nil && !*s.Found
}

// State summarises the status as one of queued, found, not_found or unresolved.
func (s RequestStatus) State() string {
	switch {
	case s.Queued:
		return "queued"
	case s.IsFound():
		return "found"
	case s.IsNotFound():
		return "not_found"
	default:
		return "unresolved"
	}
}

// Outcome tags the result of fetching one file
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeQueued         Outcome = "queued"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeInvalidRequest Outcome = "invalid_request"
	OutcomeNoResults      Outcome = "no_results"
	OutcomeFailure        Outcome = "failure"
)

// RetrievedDocument is the payload of one fetched file
type RetrievedDocument struct {
	FileID            FileID  `json:"file_id" yaml:"file_id"`
	CorrelationID     string  `json:"tracking_id" yaml:"tracking_id"`
	Outcome           Outcome `json:"outcome" yaml:"outcome"`
	BackendReturnCode string  `json:"backend_return_code,omitempty" yaml:"backend_return_code,omitempty"`
	BackendReturnText string  `json:"backend_return_text,omitempty" yaml:"backend_return_text,omitempty"`
	FaultReason       string  `json:"fault_reason,omitempty" yaml:"fault_reason,omitempty"`
	CaseEvent         Node    `json:"case_event,omitempty" yaml:"case_event,omitempty"`
	Metadata          Node    `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Raw               Node    `json:"-" yaml:"-"`
}

// HasCaseData reports whether the document carries case event data
func (d RetrievedDocument) HasCaseData() bool {
	return len(d.CaseEvent) > 0
}

func boolPtr(b bool) *bool {
	return &b
}
