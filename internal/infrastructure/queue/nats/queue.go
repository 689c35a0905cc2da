// Package nats carries the document-uploaded events that hand uploads from
// the API to the extraction worker.
package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dealsense/sales-intel/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

// extractorGroup is the queue group shared by worker instances, so each
// uploaded document is extracted exactly once even with several workers
// running.
const extractorGroup = "extractors"

type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func (o Options) withDefaults() Options {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 2 * time.Second
	}
	if o.ReconnectWait <= 0 {
		o.ReconnectWait = 2 * time.Second
	}
	if o.MaxReconnects <= 0 {
		o.MaxReconnects = 60
	}
	return o
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	options = options.withDefaults()
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("sales-intel"),
		nats.Timeout(options.ConnectTimeout),
		nats.ReconnectWait(options.ReconnectWait),
		nats.MaxReconnects(options.MaxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// PublishDocumentUploaded tells the workers a document is waiting in object
// storage. The payload is just the document ID; workers load everything
// else from the repository.
func (q *Queue) PublishDocumentUploaded(ctx context.Context, documentID string) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, []byte(documentID)); err != nil {
			return fmt.Errorf("publish document %s: %w", documentID, err)
		}
		return nil
	}

	if q.executor == nil {
		return markTemporary(call(ctx))
	}
	return markTemporary(q.executor.Execute(ctx, "queue.publish_uploaded", call, classifyQueueError))
}

// SubscribeDocumentUploaded consumes uploaded-document events until ctx is
// cancelled, then drains the subscription so in-flight extractions finish.
func (q *Queue) SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, extractorGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		documentID := string(msg.Data)
		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, documentID); err != nil {
			slog.Error("document_handler_failed", "document_id", documentID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", q.subject, err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("flush after drain: %w", err)
	}
	return nil
}
