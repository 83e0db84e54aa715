package store

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Mutation operation names recorded on spans and log events.
const (
	opMoveCard       = "move-card"
	opAddCard        = "add-card"
	opUpdateCard     = "update-card"
	opAddCardNote    = "add-card-note"
	opDeleteCard     = "delete-card"
	opAddColumn      = "add-column"
	opRenameColumn   = "rename-column"
	opSetColumnLimit = "set-column-limit"
	opRemoveColumn   = "remove-column"
	opMoveColumn     = "move-column"
)

const (
	tracerName          = "agwakwagan/store"
	mutationSpanName    = "board.mutate"
	mutationEventName   = "board.mutation"
	mutationEventDomain = "agwakwagan"
)

// mutationMetrics captures one mutation's span and its observability event.
type mutationMetrics struct {
	logger  *log.Logger
	span    trace.Span
	start   time.Time
	op      string
	boardID string

	cardID   string
	columnID string
	index    int
	hasIndex bool
	revision uint64
	noop     bool
}

func newMutationMetrics(ctx context.Context, logger *log.Logger, op, boardID string) *mutationMetrics {
	_, span := otel.Tracer(tracerName).Start(ctx, mutationSpanName, trace.WithAttributes(
		attribute.String("board.id", boardID),
		attribute.String("board.op", op),
	))
	return &mutationMetrics{
		logger:  logger,
		span:    span,
		start:   time.Now(),
		op:      op,
		boardID: boardID,
	}
}

func (m *mutationMetrics) SetCard(id string)      { m.cardID = id }
func (m *mutationMetrics) SetColumn(id string)    { m.columnID = id }
func (m *mutationMetrics) SetIndex(idx int)       { m.index = idx; m.hasIndex = true }
func (m *mutationMetrics) SetRevision(rev uint64) { m.revision = rev }
func (m *mutationMetrics) SetNoOp()               { m.noop = true }

// Finish closes the span and emits the observability event.
func (m *mutationMetrics) Finish(err error) {
	if m == nil {
		return
	}
	defer m.span.End()

	totalMs := durationToMillis(time.Since(m.start))
	attrs := []attribute.KeyValue{
		attribute.String("board.id", m.boardID),
		attribute.String("board.op", m.op),
		attribute.Float64("board.total_ms", totalMs),
		attribute.Bool("board.noop", m.noop),
	}
	if m.cardID != "" {
		attrs = append(attrs, attribute.String("board.card_id", m.cardID))
	}
	if m.columnID != "" {
		attrs = append(attrs, attribute.String("board.column_id", m.columnID))
	}
	if m.hasIndex {
		attrs = append(attrs, attribute.Int("board.target_index", m.index))
	}
	if m.revision > 0 {
		attrs = append(attrs, attribute.Int64("board.revision", int64(m.revision)))
	}

	severityText, severityNumber := severityForError(err)
	eventAttrs := append([]attribute.KeyValue{
		attribute.String("event.name", mutationEventName),
		attribute.String("event.domain", mutationEventDomain),
		attribute.String("severity_text", severityText),
	}, attrs...)
	if err != nil {
		eventAttrs = append(eventAttrs, attribute.String("error.message", err.Error()))
	}

	m.span.SetAttributes(attrs...)
	m.span.AddEvent("observability.event", trace.WithAttributes(eventAttrs...))
	if err != nil {
		m.span.SetStatus(codes.Error, err.Error())
	} else {
		m.span.SetStatus(codes.Ok, "")
	}

	if m.logger == nil {
		return
	}
	attrMap := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		attrMap[string(kv.Key)] = kv.Value.AsInterface()
	}
	fields := log.Fields{
		"event.name":      mutationEventName,
		"event.domain":    mutationEventDomain,
		"attributes":      attrMap,
		"severity_text":   severityText,
		"severity_number": severityNumber,
	}
	if sc := m.span.SpanContext(); sc.IsValid() {
		fields["trace_id"] = sc.TraceID().String()
		fields["span_id"] = sc.SpanID().String()
	}
	if err != nil {
		fields["error"] = err.Error()
		m.logger.WithFields(fields).Error("observability.event")
		return
	}
	m.logger.WithFields(fields).Info("observability.event")
}

func severityForError(err error) (string, int) {
	if err != nil {
		return "ERROR", 17
	}
	return "INFO", 9
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
