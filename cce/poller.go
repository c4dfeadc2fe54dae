package cce

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// PollOptions selects and checks the records returned by Poll
type PollOptions struct {
	// CorrelationID keeps only records with this tracking id
	CorrelationID string
	// Key keeps only records whose extracted key matches
	Key BusinessKey
	// PendingOnly asks for outstanding records only instead of recent history
	PendingOnly bool
	// Limit caps the records requested, defaulting to the client's record limit
	Limit int
	// Check turns empty results into NoResults or NotFound errors
	Check bool
}

// DefaultPollOptions returns options that list only pending records.
func DefaultPollOptions() PollOptions {
	return PollOptions{PendingOnly: true}
}

// Poll lists the queue and classifies every record that survives the
// correlation id filter. Poll never consumes anything.
func (c *Client) Poll(ctx context.Context, opts PollOptions) ([]RequestStatus, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = c.recordLimit
	}

	reply, err := c.transport.QueryQueue(ctx, QueueQuery{
		CorrelationID: opts.CorrelationID,
		PendingOnly:   opts.PendingOnly,
		RecordLimit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query queue: %w", err)
	}

	entries, count, err := parseQueueReply(reply)
	if err != nil {
		return nil, err
	}
	if count >= limit {
		c.logger.Warn().
			Int("record_count", count).
			Int("record_limit", limit).
			Msg("Queue returned as many records as requested, more may exist")
	}
	c.logger.Debug().Msgf("Retrieved %d queue records", len(entries))

	if opts.Check && len(entries) == 0 {
		return nil, c.emptyPollError(ctx, opts, limit, reply)
	}

	var candidates []QueueEntry
	for _, entry := range entries {
		if opts.CorrelationID != "" && entry.CorrelationID != opts.CorrelationID {
			continue
		}
		candidates = append(candidates, entry)
	}

	statuses, err := ClassifyAll(candidates)
	if err != nil {
		return nil, err
	}

	if !opts.Key.IsZero() {
		matched := statuses[:0]
		for _, s := range statuses {
			if matchesKey(opts, s) {
				matched = append(matched, s)
			}
		}
		statuses = matched
	}

	if opts.Check && len(statuses) == 0 {
		return nil, newError(KindNotFound, reply, "no queue records match %s", describeFilter(opts))
	}
	return statuses, nil
}

// parseQueueReply extracts the queue records and the reported record count.
func parseQueueReply(reply Node) ([]QueueEntry, int, error) {
	resp, ok := reply.Child("RequestCourtCaseEventInfoResponse")
	if !ok {
		if _, empty := reply.Text("RequestCourtCaseEventInfoResponse"); empty {
			return nil, 0, nil
		}
		return nil, 0, newError(KindProtocol, reply, "queue reply has no RequestCourtCaseEventInfoResponse")
	}

	records := resp.List("RequestCourtCaseEventInfoMetadata")
	count := len(records)
	if text, ok := resp.Text("RecordCount"); ok && text != "" {
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return nil, 0, newError(KindProtocol, reply, "queue reply has non-numeric RecordCount %q", text)
		}
		count = n
	}
	if count == 0 {
		return nil, 0, nil
	}

	entries := make([]QueueEntry, 0, len(records))
	for i, record := range records {
		entries = append(entries, queueEntryFromNode(record, i))
	}
	return entries, count, nil
}

func queueEntryFromNode(n Node, position int) QueueEntry {
	fileID, _ := n.Text("FileTrackingID")
	correlationID, _ := n.Text("UserDefinedTrackingID")
	entry := QueueEntry{
		FileID:        FileID(fileID),
		CorrelationID: correlationID,
		Position:      position,
		Raw:           n,
	}
	for _, field := range n.List("HeaderField") {
		name, _ := field.Text("HeaderName")
		text, _ := field.Text("HeaderValueText")
		entry.Headers = append(entry.Headers, Header{Name: name, Text: text})
	}
	return entry
}

// emptyPollError tells an empty queue (NoResults) apart from a queue that
// only holds other tracking ids (NotFound). The tracking id is filtered on
// the server, so the unfiltered queue needs a second look.
func (c *Client) emptyPollError(ctx context.Context, opts PollOptions, limit int, reply Node) error {
	if opts.CorrelationID == "" {
		return newError(KindNoResults, reply, "no requests are waiting in the queue")
	}

	all, err := c.transport.QueryQueue(ctx, QueueQuery{
		PendingOnly: opts.PendingOnly,
		RecordLimit: limit,
	})
	if err != nil {
		return fmt.Errorf("failed to query queue: %w", err)
	}
	entries, _, err := parseQueueReply(all)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return newError(KindNoResults, all, "no requests are waiting in the queue")
	}
	return newError(KindNotFound, reply, "no queue records match %s", describeFilter(opts))
}

// matchesKey applies the business key filter. Not found prose may omit the
// key (e.g. a bare "OTN NOT FOUND"); such a record still answers the request
// when the poll is scoped to its tracking id and the key kinds agree.
func matchesKey(opts PollOptions, s RequestStatus) bool {
	if opts.Key.Matches(s.BusinessKey()) {
		return true
	}
	if opts.CorrelationID == "" || s.Key != "" || !s.IsNotFound() {
		return false
	}
	return s.KeyKind == KeyKindUnknown || s.KeyKind == opts.Key.Kind
}

func describeFilter(opts PollOptions) string {
	var parts []string
	if opts.CorrelationID != "" {
		parts = append(parts, "tracking id "+opts.CorrelationID)
	}
	if !opts.Key.IsZero() {
		parts = append(parts, opts.Key.String())
	}
	if len(parts) == 0 {
		return "the filter"
	}
	return strings.Join(parts, " and ")
}
