// Package stream provides a DynamoDB Streams handler that publishes record
// lifecycle events from the account table.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/tweetstore/tweet"
)

// EventKind is the lifecycle transition an Event reports.
type EventKind string

const (
	// EventCreated reports a record moving from absent to present.
	EventCreated EventKind = "created"

	// EventDeleted reports a record moving from present to absent.
	EventDeleted EventKind = "deleted"
)

// Event is one record lifecycle transition.
type Event struct {
	Kind    EventKind
	EventID string

	// Address is where the record lived.
	Address tweet.Address

	// Lamports is the deposit charged on create or refunded on delete.
	Lamports uint64

	// Record is the decoded record image.
	Record tweet.Record
}

// Sink receives decoded events.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev Event) error

// Publish calls f(ctx, ev).
func (f SinkFunc) Publish(ctx context.Context, ev Event) error { return f(ctx, ev) }

// LogSink writes events to a logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink. A nil logger uses slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Publish implements Sink.
func (s *LogSink) Publish(ctx context.Context, ev Event) error {
	s.logger.InfoContext(ctx, "record "+string(ev.Kind),
		"eventID", ev.EventID,
		"address", ev.Address,
		"author", ev.Record.Author,
		"createdAt", ev.Record.CreatedAt,
		"lamports", ev.Lamports,
		"contentBytes", len(ev.Record.Content),
	)
	return nil
}

// Handler processes DynamoDB stream events for the account table.
type Handler struct {
	sink   Sink
	logger *slog.Logger
}

// NewHandler creates a new stream handler. A nil sink logs events.
func NewHandler(sink Sink, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = NewLogSink(logger)
	}
	return &Handler{
		sink:   sink,
		logger: logger,
	}
}

// HandleRecordEvents publishes an Event for every inserted or removed record.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) HandleRecordEvents(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord processes a single DynamoDB stream record.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	var (
		kind  EventKind
		image map[string]events.DynamoDBAttributeValue
	)
	switch record.EventName {
	case "INSERT":
		kind, image = EventCreated, record.Change.NewImage
	case "REMOVE":
		kind, image = EventDeleted, record.Change.OldImage
	default:
		// Records are never modified in place.
		return nil
	}

	ev, err := decodeImage(image)
	if err != nil {
		return fmt.Errorf("decode %s image: %w", record.EventName, err)
	}
	ev.Kind = kind
	ev.EventID = record.EventID

	if err := h.sink.Publish(ctx, ev); err != nil {
		return fmt.Errorf("publish %s event: %w", kind, err)
	}
	return nil
}

// decodeImage converts an account table image into an Event.
func decodeImage(image map[string]events.DynamoDBAttributeValue) (Event, error) {
	addr, err := tweet.ParseAddress(getStringAttr(image, "address"))
	if err != nil {
		return Event{}, fmt.Errorf("address: %w", err)
	}

	var rec tweet.Record
	if err := rec.UnmarshalBinary(getBinaryAttr(image, "data")); err != nil {
		return Event{}, err
	}

	return Event{
		Address:  addr,
		Lamports: uint64(getNumberAttr(image, "lamports")),
		Record:   rec,
	}, nil
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}

// getNumberAttr extracts a number attribute from a DynamoDB stream image.
func getNumberAttr(image map[string]events.DynamoDBAttributeValue, key string) int64 {
	if v, ok := image[key]; ok {
		if v.DataType() == events.DataTypeNumber {
			n, _ := strconv.ParseInt(v.Number(), 10, 64)
			return n
		}
	}
	return 0
}

// getBinaryAttr extracts a binary attribute from a DynamoDB stream image.
func getBinaryAttr(image map[string]events.DynamoDBAttributeValue, key string) []byte {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeBinary {
		return v.Binary()
	}
	return nil
}
