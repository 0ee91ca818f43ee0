package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// vectorNamespace scopes point ids derived from (model, text).
var vectorNamespace = uuid.MustParse("5f0c6d1e-3b7a-4a51-9a8e-2f7c1d9b6e40")

// VectorCache stores embeddings by model and preprocessed text.
type VectorCache interface {
	Get(ctx context.Context, model, text string) ([]float32, bool, error)
	Put(ctx context.Context, model, text string, vector []float32) error
}

type QdrantService interface {
	VectorCache
	InitCollection(ctx context.Context) error
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	log            *zap.Logger
}

func NewQdrantService(urlStr, apiKey, collectionName string, vectorSize int, log *zap.Logger) (QdrantService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     uint64(vectorSize),
		log:            log,
	}, nil
}

// InitCollection implements QdrantService.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.log.Info("qdrant collection already exists", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.log.Info("qdrant collection created",
		zap.String("collection", q.collectionName),
		zap.Uint64("size", q.vectorSize))
	return nil
}

// Get implements VectorCache.
func (q *qdrantService) Get(ctx context.Context, model, text string) ([]float32, bool, error) {
	points, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.collectionName,
		Ids:            []*qdrant.PointId{vectorPointID(model, text)},
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get vector: %w", err)
	}

	for _, point := range points {
		data := point.GetVectors().GetVector().GetData()
		if len(data) > 0 {
			return data, true, nil
		}
	}

	return nil, false, nil
}

// Put implements VectorCache.
func (q *qdrantService) Put(ctx context.Context, model, text string, vector []float32) error {
	if uint64(len(vector)) != q.vectorSize {
		return fmt.Errorf("vector size %d does not match collection size %d", len(vector), q.vectorSize)
	}

	point := &qdrant.PointStruct{
		Id:      vectorPointID(model, text),
		Vectors: qdrant.NewVectors(vector...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"model": model,
			"text":  text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert vector: %w", err)
	}

	return nil
}

func vectorPointID(model, text string) *qdrant.PointId {
	return qdrant.NewID(uuid.NewSHA1(vectorNamespace, []byte(model+"\x00"+text)).String())
}
