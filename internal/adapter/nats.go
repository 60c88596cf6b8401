package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NatsConn is the connection held by a ledger change publisher
//
//go:generate mockgen -source=nats.go -destination=../mocks/nats.go -package=mocks -mock_names=NatsConn=MockNatsConn
type NatsConn interface {
	Drain() error
	Close()
	ConnectedUrl() string
}

// JetStream publishes ledger changes and provisions the stream that stores them
//
//go:generate mockgen -source=nats.go -destination=../mocks/nats.go -package=mocks -mock_names=JetStream=MockJetStream
type JetStream interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
	// EnsureStream creates the stream or updates its subjects and duplicate window
	EnsureStream(ctx context.Context, name string, subjects []string, duplicates time.Duration) (*jetstream.StreamInfo, error)
}

// NatsDialer opens a NATS connection with JetStream enabled
//
//go:generate mockgen -source=nats.go -destination=../mocks/nats.go -package=mocks -mock_names=NatsDialer=MockNatsDialer
type NatsDialer interface {
	Dial(url string, options ...nats.Option) (NatsConn, JetStream, error)
}

type natsDialer struct{}

// NewNatsDialer returns a dialer backed by the nats client
func NewNatsDialer() NatsDialer {
	return &natsDialer{}
}

func (d *natsDialer) Dial(url string, options ...nats.Option) (NatsConn, JetStream, error) {
	nc, err := nats.Connect(url, options...)
	if err != nil {
		return nil, nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	return nc, &ledgerJetStream{js: js}, nil
}

type ledgerJetStream struct {
	js jetstream.JetStream
}

func (l *ledgerJetStream) Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	return l.js.Publish(ctx, subject, data, opts...)
}

func (l *ledgerJetStream) EnsureStream(ctx context.Context, name string, subjects []string, duplicates time.Duration) (*jetstream.StreamInfo, error) {
	stream, err := l.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       name,
		Subjects:   subjects,
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		Duplicates: duplicates,
	})
	if err != nil {
		return nil, err
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, errors.New("stream info is empty")
	}

	return info, nil
}
