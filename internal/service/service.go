package service

import (
	"context"
	"iter"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"peopleapi/internal/model"
	"peopleapi/internal/repository"
)

const tracerName = "peopleapi/internal/service"

// DataService is the use-case layer between HTTP handlers and a repository.
// It forwards every call unchanged; its only contract beyond the repository's is
// that each call is observable (entering/exiting/error log lines and a span) and
// that errors are returned as-is, never swallowed or translated.
type DataService[T model.Model] interface {
	Add(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, entity T) (T, error)
	// Delete removes the entity with the given id; false means there was nothing to delete.
	Delete(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (T, error)
	GetAll(ctx context.Context) repository.Query[T]
}

// CustomerService serves customers.
type CustomerService = DataService[*model.Customer]

// PeopleService serves people.
type PeopleService = DataService[*model.Person]

// dataService is the concrete implementation of DataService.
type dataService[T model.Model] struct {
	name   string
	repo   repository.Repository[T]
	log    zerolog.Logger
	tracer trace.Tracer
}

// NewDataService constructs a DataService named name on top of repo.
func NewDataService[T model.Model](name string, repo repository.Repository[T], log zerolog.Logger) DataService[T] {
	s := &dataService[T]{
		name:   name,
		repo:   repo,
		log:    log.With().Str("component", "data_service").Str("service", name).Logger(),
		tracer: otel.Tracer(tracerName),
	}
	s.log.Debug().Msg("creating data service")
	return s
}

// NewCustomerService constructs the customer DataService.
func NewCustomerService(repo repository.Repository[*model.Customer], log zerolog.Logger) CustomerService {
	return NewDataService("customer", repo, log)
}

// NewPeopleService constructs the people DataService.
func NewPeopleService(repo repository.Repository[*model.Person], log zerolog.Logger) PeopleService {
	return NewDataService("people", repo, log)
}

// observe logs entry and starts a span. The returned func must be deferred:
// it logs the failure (if any) and the exit, then ends the span.
func (s *dataService[T]) observe(ctx context.Context, op string, id int64) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, s.name+"."+op, trace.WithAttributes(
		attribute.String("service", s.name),
		attribute.String("op", op),
	))

	lc := s.log.With().Str("op", op)
	if id != 0 {
		lc = lc.Int64("id", id)
		span.SetAttributes(attribute.Int64("entity.id", id))
	}
	log := lc.Logger()

	log.Info().Msg("entering")
	return ctx, func(err error) {
		switch {
		case err == nil:
		case repository.IsNotFound(err):
			log.Info().Msg("entity not found")
		default:
			log.Error().Err(err).Str("kind", repository.KindOf(err).String()).Msg("operation failed")
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		log.Info().Msg("exiting")
		span.End()
	}
}

func (s *dataService[T]) Add(ctx context.Context, entity T) (out T, err error) {
	ctx, done := s.observe(ctx, "add", 0)
	defer func() { done(err) }()
	return s.repo.Add(ctx, entity)
}

func (s *dataService[T]) Update(ctx context.Context, entity T) (out T, err error) {
	var id int64
	var zero T
	if entity != zero {
		id = entity.Meta().ID
	}
	ctx, done := s.observe(ctx, "update", id)
	defer func() { done(err) }()
	return s.repo.Update(ctx, entity)
}

func (s *dataService[T]) Delete(ctx context.Context, id int64) (ok bool, err error) {
	ctx, done := s.observe(ctx, "delete", id)
	defer func() { done(err) }()
	return s.repo.DeleteByID(ctx, id)
}

func (s *dataService[T]) GetByID(ctx context.Context, id int64) (out T, err error) {
	ctx, done := s.observe(ctx, "get_by_id", id)
	defer func() { done(err) }()
	return s.repo.GetByID(ctx, id)
}

// GetAll returns the repository's lazy query. Nothing touches the store until
// a terminal call (All, Iter, Count), and each terminal call is observed as
// "get_all" with the context it is given.
func (s *dataService[T]) GetAll(_ context.Context) repository.Query[T] {
	return observedQuery[T]{svc: s, q: s.repo.GetAll()}
}

// observedQuery runs the terminal calls of q under svc.observe.
type observedQuery[T model.Model] struct {
	svc *dataService[T]
	q   repository.Query[T]
}

func (o observedQuery[T]) Where(f repository.Filter) repository.Query[T] {
	return observedQuery[T]{svc: o.svc, q: o.q.Where(f)}
}

func (o observedQuery[T]) OrderBy(column string, desc bool) repository.Query[T] {
	return observedQuery[T]{svc: o.svc, q: o.q.OrderBy(column, desc)}
}

func (o observedQuery[T]) Limit(n int) repository.Query[T] {
	return observedQuery[T]{svc: o.svc, q: o.q.Limit(n)}
}

func (o observedQuery[T]) Offset(n int) repository.Query[T] {
	return observedQuery[T]{svc: o.svc, q: o.q.Offset(n)}
}

func (o observedQuery[T]) All(ctx context.Context) (items []T, err error) {
	ctx, done := o.svc.observe(ctx, "get_all", 0)
	defer func() { done(err) }()
	return o.q.All(ctx)
}

func (o observedQuery[T]) Count(ctx context.Context) (n int, err error) {
	ctx, done := o.svc.observe(ctx, "get_all", 0)
	defer func() { done(err) }()
	return o.q.Count(ctx)
}

func (o observedQuery[T]) Iter(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		ctx, done := o.svc.observe(ctx, "get_all", 0)
		var err error
		defer func() { done(err) }()
		for e, iterErr := range o.q.Iter(ctx) {
			if iterErr != nil {
				err = iterErr
			}
			if !yield(e, iterErr) {
				return
			}
		}
	}
}
