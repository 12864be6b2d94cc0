package contact

import (
	"context"
	"io"
	"log"
	"time"

	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
)

type docRepo struct {
	store  docstore.Store
	logger *log.Logger
	now    func() time.Time
}

func New(store docstore.Store, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &docRepo{store: store, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func (r *docRepo) AddSubscriber(ctx context.Context, s domain.Subscriber) (*domain.Subscriber, error) {
	s.ID = docstore.NewKey()
	s.CreatedAt = r.now()
	err := r.store.Commit(ctx, docstore.Replace(docstore.SubscriberPath(s.ID), map[string]interface{}{
		"email":     s.Email,
		"createdAt": domain.FormatTimestamp(s.CreatedAt),
	}).Expect(0))
	if err != nil {
		r.logger.Printf("contact repo: add subscriber error=%v", err)
		return nil, err
	}
	return &s, nil
}

func (r *docRepo) ListSubscribers(ctx context.Context) ([]domain.Subscriber, error) {
	docs, err := r.store.List(ctx, docstore.Subscribers)
	if err != nil {
		r.logger.Printf("contact repo: list subscribers error=%v", err)
		return nil, err
	}
	out := make([]domain.Subscriber, 0, len(docs))
	for _, d := range docs {
		if _, ok := docstore.ParseChild(docstore.Subscribers, d.Path); !ok {
			continue
		}
		s := domain.Subscriber{ID: d.ID(), Email: docstore.String(d.Data, "email")}
		s.CreatedAt, _ = domain.ParseTimestamp(d.Data["createdAt"])
		out = append(out, s)
	}
	return out, nil
}

func (r *docRepo) AddFeedback(ctx context.Context, f domain.Feedback) (*domain.Feedback, error) {
	f.ID = docstore.NewKey()
	f.CreatedAt = r.now()
	err := r.store.Commit(ctx, docstore.Replace(docstore.FeedbackPath(f.ID), map[string]interface{}{
		"name":      f.Name,
		"email":     f.Email,
		"message":   f.Message,
		"rating":    f.Rating,
		"createdAt": domain.FormatTimestamp(f.CreatedAt),
	}).Expect(0))
	if err != nil {
		r.logger.Printf("contact repo: add feedback error=%v", err)
		return nil, err
	}
	return &f, nil
}

func (r *docRepo) ListFeedback(ctx context.Context) ([]domain.Feedback, error) {
	docs, err := r.store.List(ctx, docstore.FeedbackColl)
	if err != nil {
		r.logger.Printf("contact repo: list feedback error=%v", err)
		return nil, err
	}
	out := make([]domain.Feedback, 0, len(docs))
	for _, d := range docs {
		if _, ok := docstore.ParseChild(docstore.FeedbackColl, d.Path); !ok {
			continue
		}
		f := domain.Feedback{
			ID:      d.ID(),
			Name:    docstore.String(d.Data, "name"),
			Email:   docstore.String(d.Data, "email"),
			Message: docstore.String(d.Data, "message"),
		}
		f.Rating, _ = docstore.Int(d.Data, "rating")
		f.CreatedAt, _ = domain.ParseTimestamp(d.Data["createdAt"])
		out = append(out, f)
	}
	return out, nil
}
