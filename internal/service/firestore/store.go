// Package firestore backs list screens with Firestore collections, one per resource kind.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/janisto/enseada-console/internal/listpage"
	applog "github.com/janisto/enseada-console/internal/platform/logging"
	"github.com/janisto/enseada-console/internal/platform/pagination"
)

const totalAlias = "total"

// ErrNotFound is returned when removing a document that does not exist.
var ErrNotFound = errors.New("resource not found")

// categorizeError converts errors to audit-safe categories.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case status.Code(err) == codes.PermissionDenied:
		return "permission_denied"
	default:
		return "internal_error"
	}
}

// Store implements listpage.Service over a single collection. Documents are keyed by
// the escaped resource identifier and listed in document ID order.
type Store[T any] struct {
	client     *firestore.Client
	collection string
	mapID      listpage.IDFunc[T]
}

// NewStore creates a Firestore-backed store for collection.
func NewStore[T any](client *firestore.Client, collection string, mapID listpage.IDFunc[T]) *Store[T] {
	return &Store[T]{client: client, collection: collection, mapID: mapID}
}

// DocID maps a resource identifier to a document ID. Identifiers may contain '/', which
// Firestore reserves as a path separator.
func DocID(id string) string {
	return url.PathEscape(id)
}

// List returns the window of the collection described by q along with the collection size.
func (s *Store[T]) List(ctx context.Context, q pagination.Query) (pagination.Page[T], error) {
	q = q.Normalize()
	col := s.client.Collection(s.collection)

	total, err := s.count(ctx, col)
	if err != nil {
		return pagination.Page[T]{}, err
	}

	docs, err := col.OrderBy(firestore.DocumentID, firestore.Asc).
		Offset(q.Offset).
		Limit(q.Limit).
		Documents(ctx).
		GetAll()
	if err != nil {
		return pagination.Page[T]{}, fmt.Errorf("query %s: %w", s.collection, err)
	}

	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := doc.DataTo(&item); err != nil {
			return pagination.Page[T]{}, fmt.Errorf("decode %s/%s: %w", s.collection, doc.Ref.ID, err)
		}
		items = append(items, item)
	}

	return pagination.Page[T]{
		Count:  len(items),
		Total:  total,
		Offset: q.Offset,
		Limit:  q.Limit,
		Items:  items,
	}, nil
}

func (s *Store[T]) count(ctx context.Context, col *firestore.CollectionRef) (int, error) {
	res, err := col.NewAggregationQuery().WithCount(totalAlias).Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", s.collection, err)
	}
	v, ok := res[totalAlias].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("count %s: unexpected aggregation result %T", s.collection, res[totalAlias])
	}
	return int(v.GetIntegerValue()), nil
}

// Remove deletes the document for id using a transaction to ensure it exists.
func (s *Store[T]) Remove(ctx context.Context, id string) error {
	docRef := s.client.Collection(s.collection).Doc(DocID(id))

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}

		return tx.Delete(docRef)
	})
	if err != nil {
		applog.LogAuditEvent(ctx, "delete", s.collection, id, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return err
	}

	applog.LogAuditEvent(ctx, "delete", s.collection, id, applog.AuditSuccess, nil)

	return nil
}

// Put writes item under its identifier, replacing any existing document.
func (s *Store[T]) Put(ctx context.Context, item T) error {
	docRef := s.client.Collection(s.collection).Doc(DocID(s.mapID(item)))
	if _, err := docRef.Set(ctx, item); err != nil {
		return fmt.Errorf("put %s: %w", s.collection, err)
	}
	return nil
}
