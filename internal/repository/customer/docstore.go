package customer

import (
	"context"
	"io"
	"log"
	"sort"
	"time"

	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
)

type docRepo struct {
	store  docstore.Store
	logger *log.Logger
	now    func() time.Time
}

// New returns a Repository backed by the document store.
func New(store docstore.Store, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &docRepo{store: store, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func (r *docRepo) GetProfile(ctx context.Context, uid string) (*domain.Profile, error) {
	d, err := r.store.Get(ctx, docstore.UserPath(uid))
	if err != nil {
		return nil, err
	}
	p := domain.Profile{
		UserID: uid,
		Email:  docstore.String(d.Data, "email"),
		Name:   docstore.String(d.Data, "name"),
	}
	p.UpdatedAt, _ = domain.ParseTimestamp(d.Data["updatedAt"])
	return &p, nil
}

func (r *docRepo) SaveProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	p.UpdatedAt = r.now()
	fields := map[string]interface{}{
		"email":     p.Email,
		"updatedAt": domain.FormatTimestamp(p.UpdatedAt),
	}
	if p.Name != "" {
		fields["name"] = p.Name
	}
	if err := r.store.Commit(ctx, docstore.Patch(docstore.UserPath(p.UserID), fields)); err != nil {
		r.logger.Printf("customer repo: save profile uid=%s error=%v", p.UserID, err)
		return nil, err
	}
	return &p, nil
}

func (r *docRepo) ListAddresses(ctx context.Context, uid string) ([]domain.Address, error) {
	parent := docstore.AddressesPath(uid)
	docs, err := r.store.List(ctx, parent)
	if err != nil {
		r.logger.Printf("customer repo: list addresses uid=%s error=%v", uid, err)
		return nil, err
	}
	out := make([]domain.Address, 0, len(docs))
	for _, d := range docs {
		id, ok := docstore.ParseChild(parent, d.Path)
		if !ok {
			continue
		}
		out = append(out, DecodeAddress(id, d.Data))
	}
	return out, nil
}

func (r *docRepo) AddAddress(ctx context.Context, uid string, a domain.Address) (*domain.Address, error) {
	a.ID = docstore.NewKey()
	if err := r.store.Commit(ctx, docstore.Replace(docstore.AddressPath(uid, a.ID), EncodeAddress(a)).Expect(0)); err != nil {
		r.logger.Printf("customer repo: add address uid=%s error=%v", uid, err)
		return nil, err
	}
	return &a, nil
}

func (r *docRepo) DeleteAddress(ctx context.Context, uid, id string) error {
	path := docstore.AddressPath(uid, id)
	if _, err := r.store.Get(ctx, path); err != nil {
		return err
	}
	return r.store.Commit(ctx, docstore.Remove(path))
}

func (r *docRepo) ListNotifications(ctx context.Context, uid string) ([]domain.Notification, error) {
	parent := docstore.NotificationsPath(uid)
	docs, err := r.store.List(ctx, parent)
	if err != nil {
		r.logger.Printf("customer repo: list notifications uid=%s error=%v", uid, err)
		return nil, err
	}
	out := make([]domain.Notification, 0, len(docs))
	for _, d := range docs {
		if _, ok := docstore.ParseChild(parent, d.Path); !ok {
			continue
		}
		out = append(out, decodeNotification(d))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *docRepo) MarkNotificationRead(ctx context.Context, uid, id string) error {
	path := docstore.NotificationPath(uid, id)
	d, err := r.store.Get(ctx, path)
	if err != nil {
		return err
	}
	if docstore.Bool(d.Data, "read") {
		return nil
	}
	return r.store.Commit(ctx, docstore.Patch(path, map[string]interface{}{"read": true}).Expect(d.Version))
}
