// Package record implements the operations the UI invokes on employee records.
// Reads go through a domain.Reader (normally the session cache); writes go
// straight to the remote client and, on success, are reconciled into the
// view-model store. No operation returns an error: failures are reported and
// the displayed snapshot is left as it was.
package record

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmcdole/roster/internal/domain"
	"github.com/mmcdole/roster/internal/remote"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Op tags passed to the reporter
const (
	OpListAll = "listAll"
	OpUpdate  = "update"
	OpCreate  = "create"
	OpDelete  = "delete"
)

// Prompt texts
const (
	PromptNewTitle = "Enter the new Title"
	PromptNewName  = "Enter the name of the new employee"
)

// DefaultCollection is the list the client works against unless configured otherwise
const DefaultCollection = "EmployeeDetails"

var tracer = otel.Tracer("github.com/mmcdole/roster/internal/record")

// snapshot is the part of the view-model store the service mutates
type snapshot interface {
	Replace(records []domain.Record)
	Append(rec domain.Record)
	SetTitle(id int, title string) bool
	Remove(id int) int
}

// invalidator drops cached reads of a collection after a write
type invalidator interface {
	Invalidate(collection string)
}

// Config holds the service dependencies
type Config struct {
	Collection string
	Reader     domain.Reader
	Writer     domain.CollectionClient
	Store      snapshot
	Prompter   domain.Prompter
	Reporter   domain.Reporter
	Logger     *slog.Logger

	// Invalidator is only used when InvalidateOnWrite is set
	Invalidator       invalidator
	InvalidateOnWrite bool
}

// Service orchestrates reader + writer + view-model store
type Service struct {
	collection        string
	reader            domain.Reader
	writer            domain.CollectionClient
	store             snapshot
	prompter          domain.Prompter
	reporter          domain.Reporter
	invalidator       invalidator
	invalidateOnWrite bool
	logger            *slog.Logger
}

// NewService creates a new record service
func NewService(cfg Config) (*Service, error) {
	if cfg.Reader == nil || cfg.Writer == nil || cfg.Store == nil || cfg.Prompter == nil {
		return nil, errors.New("record service requires a reader, writer, store and prompter")
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		collection:        cfg.Collection,
		reader:            cfg.Reader,
		writer:            cfg.Writer,
		store:             cfg.Store,
		prompter:          cfg.Prompter,
		reporter:          cfg.Reporter,
		invalidator:       cfg.Invalidator,
		invalidateOnWrite: cfg.InvalidateOnWrite,
		logger:            cfg.Logger,
	}, nil
}

// Collection returns the list this service operates on
func (s *Service) Collection() string {
	return s.collection
}

// listQuery is the projection used for every read
func (s *Service) listQuery() domain.Query {
	return domain.Query{
		Collection: s.collection,
		Select:     []string{domain.FieldID, domain.FieldTitle, domain.FieldFileLeafRef, domain.FieldFileLength},
		Expand:     []string{domain.ExpandFile},
	}
}

// ListAll replaces the snapshot with every record of the collection
func (s *Service) ListAll(ctx context.Context) {
	ctx, span := s.start(ctx, OpListAll)
	defer span.End()

	payload, err := s.reader.Fetch(ctx, s.listQuery())
	if err != nil {
		s.fail(ctx, span, OpListAll, err)
		return
	}
	items, err := remote.DecodeItems(payload, true)
	if err != nil {
		s.fail(ctx, span, OpListAll, err)
		return
	}

	records := make([]domain.Record, 0, len(items))
	for _, it := range items {
		records = append(records, it.ToRecord())
	}
	s.store.Replace(records)

	span.SetAttributes(attribute.Int("record.count", len(records)))
	s.logger.Info("listed records", "collection", s.collection, "count", len(records))
}

// Update asks for a new title and writes it to the record with id
func (s *Service) Update(ctx context.Context, id int) {
	if id <= 0 {
		return
	}

	ctx, span := s.start(ctx, OpUpdate, attribute.Int("record.id", id))
	defer span.End()

	payload, err := s.reader.Fetch(ctx, s.listQuery().ByID(id))
	if err != nil {
		s.fail(ctx, span, OpUpdate, err)
		return
	}
	items, err := remote.DecodeItems(payload, false)
	if err != nil {
		s.fail(ctx, span, OpUpdate, err)
		return
	}
	if len(items) > 0 {
		s.logger.Debug("current record", "id", id, "title", items[0].ToRecord().Title)
	}

	title, ok := s.prompter.Ask(ctx, PromptNewTitle)
	if !ok {
		span.AddEvent("cancelled")
		return
	}

	if err := s.writer.Update(ctx, s.collection, id, domain.Fields{domain.FieldTitle: title}); err != nil {
		s.fail(ctx, span, OpUpdate, err)
		return
	}
	s.afterWrite()

	s.store.SetTitle(id, title)
	s.logger.Info("updated record", "id", id, "title", title)
}

// Create asks for a name and adds a record carrying it as title
func (s *Service) Create(ctx context.Context) {
	ctx, span := s.start(ctx, OpCreate)
	defer span.End()

	name, ok := s.prompter.Ask(ctx, PromptNewName)
	if !ok {
		span.AddEvent("cancelled")
		return
	}

	item, err := s.writer.Create(ctx, s.collection, domain.Fields{domain.FieldTitle: name})
	if err != nil {
		s.fail(ctx, span, OpCreate, err)
		return
	}
	s.afterWrite()

	s.store.Append(domain.Record{ID: item.ID, Title: name})
	span.SetAttributes(attribute.Int("record.id", item.ID))
	s.logger.Info("created record", "id", item.ID, "title", name)
}

// Delete removes the record with id
func (s *Service) Delete(ctx context.Context, id int) {
	if id <= 0 {
		return
	}

	ctx, span := s.start(ctx, OpDelete, attribute.Int("record.id", id))
	defer span.End()

	if err := s.writer.Delete(ctx, s.collection, id); err != nil {
		s.fail(ctx, span, OpDelete, err)
		return
	}
	s.afterWrite()

	removed := s.store.Remove(id)
	s.logger.Info("deleted record", "id", id, "removed", removed)
}

func (s *Service) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("record.collection", s.collection))
	return tracer.Start(ctx, "record."+op, trace.WithAttributes(attrs...))
}

// fail records the error on the span and hands it to the reporter
func (s *Service) fail(ctx context.Context, span trace.Span, op string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.reporter != nil {
		s.reporter.Report(ctx, op, err, domain.SeverityError)
		return
	}
	s.logger.Error("operation failed", "op", op, "error", err)
}

func (s *Service) afterWrite() {
	if s.invalidateOnWrite && s.invalidator != nil {
		s.invalidator.Invalidate(s.collection)
	}
}
