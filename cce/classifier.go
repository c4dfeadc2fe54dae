package cce

import (
	"regexp"
	"strings"
	"time"
)

// ActivityHeader names the header carrying the free-text status of a queue record
const ActivityHeader = "ActivityTypeText"

// classifyRule pairs a predicate with the constructor applied when it matches.
// Rules are evaluated in order and the first match wins. Invalid request
// messages are checked before the OTN rules since their prose may name an OTN.
type classifyRule struct {
	name    string
	pattern *regexp.Regexp
	apply   func(m []string, s *RequestStatus) error
}

var (
	invalidRequestPattern = regexp.MustCompile(`(?is)Invalid Request Object!\s*([^!]+!)\s*(.*?)\s*(?:aopc:error|$)`)
	firstNamePattern      = regexp.MustCompile(`FirstName:\s*(\S*)`)
	lastNamePattern       = regexp.MustCompile(`LastName:\s*(\S*)`)
	birthDatePattern      = regexp.MustCompile(`BirthDate:\s*(\S*)`)
)

var classifyRules = []classifyRule{
	{
		name:    "queued docket",
		pattern: regexp.MustCompile(`Queued DOCKET NUMBER\s+(\S+)`),
		apply: func(m []string, s *RequestStatus) error {
			s.Queued, s.KeyKind, s.Key = true, KeyKindDocket, m[1]
			return nil
		},
	},
	{
		name:    "docket not found",
		pattern: regexp.MustCompile(`DOCKET NOT FOUND:\s*(\S+?)(?:\s*aopc:|\s|$)`),
		apply: func(m []string, s *RequestStatus) error {
			s.Found, s.KeyKind, s.Key = boolPtr(false), KeyKindDocket, m[1]
			return nil
		},
	},
	{
		name:    "docket",
		pattern: regexp.MustCompile(`DOCKET NUMBER\s+(\S+)`),
		apply: func(m []string, s *RequestStatus) error {
			s.Found, s.KeyKind, s.Key = boolPtr(true), KeyKindDocket, m[1]
			return nil
		},
	},
	{
		name:    "invalid request",
		pattern: regexp.MustCompile(`(?i)Invalid Request Object!`),
		apply: func(_ []string, s *RequestStatus) error {
			m := invalidRequestPattern.FindStringSubmatch(s.Text)
			if m == nil {
				return newError(KindUnclassifiable, s.Text, "invalid request record %s is not in the expected format: %q", s.FileID, s.Text)
			}
			s.Found = boolPtr(false)
			s.Message = strings.TrimSpace(m[1])
			if fields := strings.Fields(m[2]); len(fields) > 0 {
				s.Key = fields[0]
			}
			s.KeyKind = inferKeyKind(s.Message)
			return nil
		},
	},
	{
		name:    "queued otn",
		pattern: regexp.MustCompile(`Queued OTN\s+(\S+)`),
		apply: func(m []string, s *RequestStatus) error {
			s.Queued, s.KeyKind, s.Key = true, KeyKindOTN, m[1]
			return nil
		},
	},
	{
		name:    "otn not found",
		pattern: regexp.MustCompile(`OTN NOT FOUND(?::\s*(\S+?)(?:\s*aopc:|\s|$))?`),
		apply: func(m []string, s *RequestStatus) error {
			s.Found, s.KeyKind, s.Key = boolPtr(false), KeyKindOTN, m[1]
			return nil
		},
	},
	{
		name:    "otn",
		pattern: regexp.MustCompile(`\bOTN\s+(\S+)`),
		apply: func(m []string, s *RequestStatus) error {
			s.Found, s.KeyKind, s.Key = boolPtr(true), KeyKindOTN, m[1]
			return nil
		},
	},
	{
		name:    "participant not found",
		pattern: regexp.MustCompile(`PARTICIPANT NOT FOUND`),
		apply: func(_ []string, s *RequestStatus) error {
			key, err := participantFromText(s)
			if err != nil {
				return err
			}
			s.Found, s.KeyKind, s.Key = boolPtr(false), KeyKindParticipant, key.Value
			return nil
		},
	},
	{
		name:    "case participant",
		pattern: regexp.MustCompile(`CASE PARTICIPANT`),
		apply: func(_ []string, s *RequestStatus) error {
			key, err := participantFromText(s)
			if err != nil {
				return err
			}
			s.Found, s.KeyKind, s.Key = boolPtr(true), KeyKindParticipant, key.Value
			return nil
		},
	},
}

// participantFromText rebuilds the canonical participant key echoed in s.Text.
func participantFromText(s *RequestStatus) (BusinessKey, error) {
	first := firstNamePattern.FindStringSubmatch(s.Text)
	last := lastNamePattern.FindStringSubmatch(s.Text)
	birth := birthDatePattern.FindStringSubmatch(s.Text)
	if first == nil || last == nil || birth == nil {
		return BusinessKey{}, newError(KindUnclassifiable, s.Text, "participant record %s is missing name or birth date: %q", s.FileID, s.Text)
	}
	date, err := time.Parse(participantDateLayout, birth[1])
	if err != nil {
		return BusinessKey{}, newError(KindUnclassifiable, s.Text, "participant record %s has birth date %q", s.FileID, birth[1])
	}
	return ParticipantKey(first[1], last[1], date), nil
}

// inferKeyKind guesses which key an invalid request message complains about.
func inferKeyKind(message string) KeyKind {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "docket"):
		return KeyKindDocket
	case strings.Contains(lower, "otn"), strings.Contains(lower, "offense tracking"):
		return KeyKindOTN
	default:
		return KeyKindUnknown
	}
}

// Classify derives the typed status of one queue record from its
// ActivityTypeText header. Text that no rule positively identifies is an
// Unclassifiable error carrying the raw text.
func Classify(entry QueueEntry) (RequestStatus, error) {
	texts := entry.HeaderTexts(ActivityHeader)
	switch len(texts) {
	case 0:
		return RequestStatus{}, newError(KindUnclassifiable, entry.Raw, "queue record %s has no %s header", entry.FileID, ActivityHeader)
	case 1:
	default:
		return RequestStatus{}, newError(KindUnclassifiable, entry.Raw, "queue record %s has %d %s headers", entry.FileID, len(texts), ActivityHeader)
	}

	status := RequestStatus{
		CorrelationID: entry.CorrelationID,
		FileID:        entry.FileID,
		KeyKind:       KeyKindUnknown,
		Text:          texts[0],
	}

	for _, rule := range classifyRules {
		m := rule.pattern.FindStringSubmatch(status.Text)
		if m == nil {
			continue
		}
		if err := rule.apply(m, &status); err != nil {
			return RequestStatus{}, err
		}
		return status, nil
	}

	return RequestStatus{}, newError(KindUnclassifiable, status.Text, "not sure what queue record %s is: %q", entry.FileID, status.Text)
}

// ClassifyAll classifies entries in order and stops at the first failure.
func ClassifyAll(entries []QueueEntry) ([]RequestStatus, error) {
	statuses := make([]RequestStatus, 0, len(entries))
	for _, entry := range entries {
		status, err := Classify(entry)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
