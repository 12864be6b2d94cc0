package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
	customerrepo "latthi-storefront/internal/repository/customer"
)

type docRepo struct {
	store  docstore.Store
	logger *log.Logger
}

func New(store docstore.Store, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &docRepo{store: store, logger: logger}
}

func (r *docRepo) Fragments(ctx context.Context) (Fragments, error) {
	var f Fragments
	var err error

	if f.AllOrders, err = r.children(ctx, docstore.AllOrders); err != nil {
		return Fragments{}, err
	}
	if f.Orders, err = r.children(ctx, docstore.Orders); err != nil {
		return Fragments{}, err
	}

	users, err := r.store.List(ctx, docstore.Users)
	if err != nil {
		r.logger.Printf("order repo: list users error=%v", err)
		return Fragments{}, err
	}
	f.Emails = make(map[string]string)
	for _, d := range users {
		if loc, ok := docstore.ParseOrderPath(d.Path); ok && loc.Kind == docstore.KindUserOrders {
			f.UserOrders = append(f.UserOrders, d)
			continue
		}
		if uid, ok := docstore.ParseChild(docstore.Users, d.Path); ok {
			if email := docstore.String(d.Data, "email"); email != "" {
				f.Emails[uid] = email
			}
		}
	}
	r.logger.Printf("order repo: fragments allOrders=%d orders=%d user=%d", len(f.AllOrders), len(f.Orders), len(f.UserOrders))
	return f, nil
}

func (r *docRepo) UserFragments(ctx context.Context, uid string) (Fragments, error) {
	nested, err := r.children(ctx, docstore.UserOrdersPath(uid))
	if err != nil {
		return Fragments{}, err
	}
	f := Fragments{UserOrders: nested, Emails: map[string]string{}}
	for _, d := range nested {
		if err := r.flatFragments(ctx, d.ID(), &f); err != nil {
			return Fragments{}, err
		}
	}
	if err := r.profileEmail(ctx, uid, f.Emails); err != nil {
		return Fragments{}, err
	}
	return f, nil
}

func (r *docRepo) OrderFragments(ctx context.Context, uid, id string) (Fragments, error) {
	if uid == "" {
		all, err := r.Fragments(ctx)
		if err != nil {
			return Fragments{}, err
		}
		return all.only(id), nil
	}

	f := Fragments{Emails: map[string]string{}}
	if err := r.flatFragments(ctx, id, &f); err != nil {
		return Fragments{}, err
	}
	d, err := r.store.Get(ctx, docstore.UserOrderPath(uid, id))
	switch {
	case err == nil:
		f.UserOrders = append(f.UserOrders, *d)
	case !errors.Is(err, domain.ErrNotFound):
		return Fragments{}, err
	}
	if err := r.profileEmail(ctx, uid, f.Emails); err != nil {
		return Fragments{}, err
	}
	return f, nil
}

func (r *docRepo) Place(ctx context.Context, in PlaceInput) error {
	if len(in.Paths) == 0 {
		return fmt.Errorf("%w: order has no storage location", domain.ErrInvalid)
	}
	body := EncodeOrder(in.Order)
	writes := make([]docstore.Write, 0, len(in.Paths)+1)
	for _, p := range in.Paths {
		writes = append(writes, docstore.Replace(p, body).Expect(0))
	}
	if in.SaveAddress != nil && in.Order.UserID != "" {
		addr := *in.SaveAddress
		if addr.ID == "" {
			addr.ID = docstore.NewKey()
		}
		writes = append(writes, docstore.Replace(docstore.AddressPath(in.Order.UserID, addr.ID), customerrepo.EncodeAddress(addr)).Expect(0))
	}
	if err := r.store.Commit(ctx, writes...); err != nil {
		r.logger.Printf("order repo: place id=%s paths=%s error=%v", in.Order.ID, strings.Join(in.Paths, ","), err)
		return err
	}
	r.logger.Printf("order repo: place id=%s paths=%s", in.Order.ID, strings.Join(in.Paths, ","))
	return nil
}

func (r *docRepo) SetStatus(ctx context.Context, path, status string, at time.Time, version *int64) error {
	w := docstore.Patch(path, map[string]interface{}{
		"status":    status,
		"updatedAt": domain.FormatTimestamp(at),
	})
	// A status write never creates an order, whatever the precondition.
	if _, err := r.store.Get(ctx, path); err != nil {
		return err
	}
	if version != nil {
		w = w.Expect(*version)
	}
	if err := r.store.Commit(ctx, w); err != nil {
		r.logger.Printf("order repo: set status path=%s status=%s error=%v", path, status, err)
		return err
	}
	r.logger.Printf("order repo: set status path=%s status=%s", path, status)
	return nil
}

func (r *docRepo) RequestRefund(ctx context.Context, uid, id string, userVersion int64, req domain.RefundRequest) error {
	body := encodeRefund(req)
	err := r.store.Commit(ctx,
		docstore.Patch(docstore.UserOrderPath(uid, id), map[string]interface{}{"refundRequest": body}).Expect(userVersion),
		docstore.Patch(docstore.AllOrderPath(id), map[string]interface{}{"refundRequest": body}),
	)
	if err != nil {
		r.logger.Printf("order repo: refund request uid=%s id=%s error=%v", uid, id, err)
		return err
	}
	return nil
}

func (r *docRepo) DecideRefund(ctx context.Context, d RefundDecision) error {
	fields := map[string]interface{}{
		"refundRequest/status":      d.Status,
		"refundRequest/adminNote":   d.Note,
		"refundRequest/processedAt": domain.FormatTimestamp(d.At),
	}
	userCopy := docstore.Patch(docstore.UserOrderPath(d.UserID, d.OrderID), fields)
	if d.UserVersion != nil {
		userCopy = userCopy.Expect(*d.UserVersion)
	}
	n := d.Notification
	if n.ID == "" {
		n.ID = docstore.NewKey()
	}
	err := r.store.Commit(ctx,
		userCopy,
		docstore.Patch(docstore.AllOrderPath(d.OrderID), fields),
		docstore.Replace(docstore.NotificationPath(d.UserID, n.ID), customerrepo.EncodeNotification(n)).Expect(0),
	)
	if err != nil {
		r.logger.Printf("order repo: refund decision uid=%s id=%s status=%s error=%v", d.UserID, d.OrderID, d.Status, err)
		return err
	}
	r.logger.Printf("order repo: refund decision uid=%s id=%s status=%s", d.UserID, d.OrderID, d.Status)
	return nil
}

// children lists the documents directly under parent.
func (r *docRepo) children(ctx context.Context, parent string) ([]docstore.Document, error) {
	docs, err := r.store.List(ctx, parent)
	if err != nil {
		r.logger.Printf("order repo: list %s error=%v", parent, err)
		return nil, err
	}
	out := docs[:0]
	for _, d := range docs {
		if _, ok := docstore.ParseChild(parent, d.Path); ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *docRepo) flatFragments(ctx context.Context, id string, f *Fragments) error {
	for _, p := range []string{docstore.AllOrderPath(id), docstore.OrderPath(id)} {
		d, err := r.store.Get(ctx, p)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return err
		}
		if strings.HasPrefix(p, docstore.AllOrders+"/") {
			f.AllOrders = append(f.AllOrders, *d)
		} else {
			f.Orders = append(f.Orders, *d)
		}
	}
	return nil
}

func (r *docRepo) profileEmail(ctx context.Context, uid string, emails map[string]string) error {
	d, err := r.store.Get(ctx, docstore.UserPath(uid))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if email := docstore.String(d.Data, "email"); email != "" {
		emails[uid] = email
	}
	return nil
}

// only narrows f to the fragments of one order id.
func (f Fragments) only(id string) Fragments {
	out := Fragments{Emails: f.Emails}
	for _, d := range f.AllOrders {
		if d.ID() == id {
			out.AllOrders = append(out.AllOrders, d)
		}
	}
	for _, d := range f.Orders {
		if d.ID() == id {
			out.Orders = append(out.Orders, d)
		}
	}
	for _, d := range f.UserOrders {
		if d.ID() == id {
			out.UserOrders = append(out.UserOrders, d)
		}
	}
	return out
}

// EncodeOrder is the stored form of a newly placed order.
func EncodeOrder(o domain.Order) map[string]interface{} {
	items := make([]interface{}, 0, len(o.Items))
	for _, it := range o.Items {
		item := map[string]interface{}{
			"productId": it.ProductID,
			"name":      it.Name,
			"quantity":  it.Quantity,
			"price":     it.PriceText,
		}
		if it.Size != "" {
			item["size"] = it.Size
		}
		if it.Image != "" {
			item["image"] = it.Image
		}
		items = append(items, item)
	}
	m := map[string]interface{}{
		"items":         items,
		"paymentMethod": o.PaymentMethod,
		"paymentStatus": o.PaymentStatus,
		"total":         int64(o.Total),
		"createdAt":     domain.FormatTimestamp(o.CreatedAt),
	}
	// New orders carry no status; readers show pending until an admin sets one.
	if domain.ValidStatus(o.Status) {
		m["status"] = o.Status
	}
	if o.UserID != "" {
		m["userId"] = o.UserID
	}
	if o.Email != "" {
		m["email"] = o.Email
	}
	if o.PaymentID != "" {
		m["paymentId"] = o.PaymentID
	}
	if o.Address != nil {
		m["address"] = customerrepo.EncodeAddress(*o.Address)
	}
	return m
}

func encodeRefund(req domain.RefundRequest) map[string]interface{} {
	m := map[string]interface{}{
		"reason":      req.Reason,
		"requestedAt": domain.FormatTimestamp(req.RequestedAt),
		"status":      req.Status,
		"amount":      int64(req.Amount),
	}
	if req.AdminNote != "" {
		m["adminNote"] = req.AdminNote
	}
	return m
}
