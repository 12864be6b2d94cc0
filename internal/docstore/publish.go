package docstore

import (
	"context"
	"io"
	"log"
)

// Publisher is told which paths a successful commit touched.
type Publisher interface {
	Publish(ctx context.Context, paths []string) error
}

type publishingStore struct {
	Store
	pub    Publisher
	logger *log.Logger
}

// WithPublisher wraps store so every successful Commit announces its paths.
// A failed publish is logged; the commit itself has already landed.
func WithPublisher(store Store, pub Publisher, logger *log.Logger) Store {
	if pub == nil {
		return store
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &publishingStore{Store: store, pub: pub, logger: logger}
}

func (s *publishingStore) Commit(ctx context.Context, writes ...Write) error {
	if err := s.Store.Commit(ctx, writes...); err != nil {
		return err
	}
	paths := Paths(writes)
	if err := s.pub.Publish(ctx, paths); err != nil {
		s.logger.Printf("docstore: publish paths=%v error=%v", paths, err)
	}
	return nil
}
