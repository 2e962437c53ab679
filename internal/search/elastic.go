// Package search mirrors todos into Elasticsearch for title/description
// full-text lookup. The mirror is advisory: writes are retried a few times
// and then dropped with a log line, never failing the primary store path.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/olivere/elastic/v7"
	"github.com/todoplanner/apigateway/internal/domain"
	"github.com/todoplanner/apigateway/internal/logger"
	"github.com/todoplanner/apigateway/pkg/dataflow"
)

const searchSize = 50

type todoDoc struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Important   bool   `json:"important"`
	Status      string `json:"status"`
}

// ElasticIndexer implements the service.SearchIndexer contract on top of an
// Elasticsearch v7 index.
type ElasticIndexer struct {
	client *elastic.Client
	index  string
}

// NewElasticIndexer connects to the cluster at url and ensures the index exists.
func NewElasticIndexer(ctx context.Context, url, index string) (*ElasticIndexer, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create elastic client: %w", err)
	}

	exists, err := client.IndexExists(index).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check elastic index %s: %w", index, err)
	}
	if !exists {
		if _, err := client.CreateIndex(index).Do(ctx); err != nil {
			return nil, fmt.Errorf("failed to create elastic index %s: %w", index, err)
		}
	}

	return &ElasticIndexer{client: client, index: index}, nil
}

// Index upserts the todo document, best effort.
func (e *ElasticIndexer) Index(ctx context.Context, todo domain.Todo) {
	doc := todoDoc{
		Title:       todo.Title,
		Description: todo.Description,
		Important:   todo.Important,
		Status:      string(todo.Status),
	}

	err := dataflow.Do(ctx, func() error {
		_, err := e.client.Index().Index(e.index).Id(todo.ID).BodyJson(doc).Do(ctx)
		return err
	}, dataflow.WithRetry(2, dataflow.ExponentialBackoff(100*time.Millisecond)))
	if err != nil {
		logger.WarnLog(ctx, "elastic index of todo %s failed: %v", todo.ID, err)
	}
}

// Remove drops the todo document, best effort. A missing document is fine.
func (e *ElasticIndexer) Remove(ctx context.Context, id string) {
	err := dataflow.Do(ctx, func() error {
		_, err := e.client.Delete().Index(e.index).Id(id).Do(ctx)
		if elastic.IsNotFound(err) {
			return nil
		}
		return err
	}, dataflow.WithRetry(2, dataflow.ExponentialBackoff(100*time.Millisecond)))
	if err != nil {
		logger.WarnLog(ctx, "elastic remove of todo %s failed: %v", id, err)
	}
}

// Search returns ids of todos whose title or description match the query.
func (e *ElasticIndexer) Search(ctx context.Context, query string) ([]string, error) {
	res, err := e.client.Search().
		Index(e.index).
		Query(elastic.NewMultiMatchQuery(query, "title", "description")).
		Size(searchSize).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("elastic search failed: %w", err)
	}

	ids := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		ids = append(ids, hit.Id)
	}
	return ids, nil
}
