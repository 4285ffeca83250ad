package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"peopleapi/internal/model"
	"peopleapi/internal/storage"
)

// ExportResult describes an uploaded snapshot.
type ExportResult struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
	URL   string `json:"url"`
}

// ExportService snapshots a resource to object storage.
type ExportService interface {
	Export(ctx context.Context) (*ExportResult, error)
}

// Exporter writes every entity served by a DataService as one JSON array object.
type Exporter[T model.Model] struct {
	resource string
	svc      DataService[T]
	store    storage.Storage
	expiry   time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewExporter constructs an Exporter; objects land under exports/<resource>/.
func NewExporter[T model.Model](resource string, svc DataService[T], store storage.Storage, expiry time.Duration, log zerolog.Logger) *Exporter[T] {
	return &Exporter[T]{
		resource: resource,
		svc:      svc,
		store:    store,
		expiry:   expiry,
		log:      log.With().Str("component", "exporter").Str("resource", resource).Logger(),
		now:      time.Now,
	}
}

var _ ExportService = (*Exporter[*model.Customer])(nil)

// Export uploads the snapshot and returns a presigned download URL.
// The object is removed again if the URL cannot be issued.
func (x *Exporter[T]) Export(ctx context.Context) (*ExportResult, error) {
	items, err := x.svc.GetAll(ctx).OrderBy("id", false).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", x.resource, err)
	}

	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", x.resource, err)
	}

	key := path.Join("exports", x.resource,
		fmt.Sprintf("%s-%s.json", x.now().UTC().Format("20060102T150405Z"), uuid.NewString()))

	info, err := x.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata: map[string]string{
			"resource": x.resource,
			"count":    strconv.Itoa(len(items)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	u, err := x.store.PresignGet(ctx, info.Key, x.expiry)
	if err != nil {
		if delErr := x.store.Delete(ctx, info.Key); delErr != nil {
			return nil, fmt.Errorf("presign failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("presign export: %w", err)
	}

	x.log.Info().Str("key", info.Key).Int("count", len(items)).Msg("export uploaded")
	return &ExportResult{Key: info.Key, Count: len(items), URL: u}, nil
}
