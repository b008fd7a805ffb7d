package firebase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"catering-backend/catalog"
)

const resubscribeDelay = 5 * time.Second

// FirestoreCatalog keeps menu items as documents in one collection. It is
// both the admin write path and the live snapshot source.
type FirestoreCatalog struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreCatalog opens a Firestore client from the initialized App.
func NewFirestoreCatalog(ctx context.Context, collection string) (*FirestoreCatalog, error) {
	if App == nil {
		return nil, fmt.Errorf("firebase app not initialized")
	}
	client, err := App.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open firestore: %w", err)
	}
	return &FirestoreCatalog{client: client, collection: collection}, nil
}

func (f *FirestoreCatalog) Close() error {
	return f.client.Close()
}

func (f *FirestoreCatalog) query() firestore.Query {
	return f.client.Collection(f.collection).OrderBy("name", firestore.Asc)
}

func (f *FirestoreCatalog) List(ctx context.Context) ([]catalog.Item, error) {
	docs, err := f.query().Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}
	return decodeItems(docs), nil
}

func (f *FirestoreCatalog) Get(ctx context.Context, id string) (catalog.Item, error) {
	doc, err := f.client.Collection(f.collection).Doc(id).Get(ctx)
	if err != nil {
		return catalog.Item{}, mapFirestoreError(err)
	}
	return decodeItem(doc)
}

func (f *FirestoreCatalog) Create(ctx context.Context, item catalog.Item) (catalog.Item, error) {
	ref := f.client.Collection(f.collection).NewDoc()
	if _, err := ref.Create(ctx, item); err != nil {
		return catalog.Item{}, fmt.Errorf("failed to create menu item: %w", err)
	}
	item.ID = ref.ID
	return item, nil
}

// Update replaces the stored document. The document must already exist.
func (f *FirestoreCatalog) Update(ctx context.Context, item catalog.Item) error {
	ref := f.client.Collection(f.collection).Doc(item.ID)
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, item)
	})
	return mapFirestoreError(err)
}

func (f *FirestoreCatalog) Delete(ctx context.Context, id string) error {
	_, err := f.client.Collection(f.collection).Doc(id).Delete(ctx, firestore.Exists)
	return mapFirestoreError(err)
}

// Subscribe streams the whole collection every time it changes. A broken
// listener is reported on the channel and re-established after a pause.
func (f *FirestoreCatalog) Subscribe(ctx context.Context) <-chan catalog.Snapshot {
	out := make(chan catalog.Snapshot, 1)
	go func() {
		defer close(out)
		for {
			err := f.listen(ctx, out)
			if ctx.Err() != nil {
				return
			}
			log.Printf("Warning: menu listener stopped: %v", err)
			select {
			case out <- catalog.Snapshot{Err: err}:
			case <-ctx.Done():
				return
			}
			select {
			case <-time.After(resubscribeDelay):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (f *FirestoreCatalog) listen(ctx context.Context, out chan<- catalog.Snapshot) error {
	it := f.query().Snapshots(ctx)
	defer it.Stop()

	for {
		qs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return errors.New("snapshot iterator finished")
		}
		if err != nil {
			return err
		}

		docs, err := qs.Documents.GetAll()
		if err != nil {
			return err
		}
		select {
		case out <- catalog.Snapshot{Items: decodeItems(docs)}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func decodeItems(docs []*firestore.DocumentSnapshot) []catalog.Item {
	items := make([]catalog.Item, 0, len(docs))
	for _, doc := range docs {
		item, err := decodeItem(doc)
		if err != nil {
			log.Printf("Warning: skipping menu document %s: %v", doc.Ref.ID, err)
			continue
		}
		items = append(items, item)
	}
	return items
}

func decodeItem(doc *firestore.DocumentSnapshot) (catalog.Item, error) {
	var item catalog.Item
	if err := doc.DataTo(&item); err != nil {
		return catalog.Item{}, err
	}
	item.ID = doc.Ref.ID
	return item, nil
}

func mapFirestoreError(err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return catalog.ErrNotFound
	}
	return err
}
