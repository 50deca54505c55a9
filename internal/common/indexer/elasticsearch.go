package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog"

	"github.com/project-tktt/letterboxd-export/internal/domain"
)

// ElasticsearchIndexer indexes list entries to Elasticsearch
type ElasticsearchIndexer struct {
	client    *elasticsearch.Client
	indexName string
	logger    zerolog.Logger
}

// NewElasticsearchIndexer creates a client and checks the cluster is reachable
func NewElasticsearchIndexer(ctx context.Context, addresses []string, indexName string, logger zerolog.Logger) (*ElasticsearchIndexer, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
	})
	if err != nil {
		return nil, fmt.Errorf("create es client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("es error: %s", res.Status())
	}

	return &ElasticsearchIndexer{
		client:    client,
		indexName: indexName,
		logger:    logger,
	}, nil
}

func (i *ElasticsearchIndexer) Name() string {
	return "elasticsearch"
}

// BulkIndex indexes multiple entries at once
func (i *ElasticsearchIndexer) BulkIndex(ctx context.Context, entries []*domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	var buf bytes.Buffer

	for _, e := range entries {
		docBytes, err := json.Marshal(e)
		if err != nil {
			i.logger.Warn().Err(err).Str("id", e.ID).Msg("marshal entry failed")
			continue
		}

		// Meta line
		meta := map[string]any{
			"index": map[string]any{
				"_index": i.indexName,
				"_id":    e.ID,
			},
		}
		metaBytes, _ := json.Marshal(meta)
		buf.Write(metaBytes)
		buf.WriteByte('\n')

		buf.Write(docBytes)
		buf.WriteByte('\n')
	}

	res, err := i.client.Bulk(bytes.NewReader(buf.Bytes()), i.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk error: %s", res.Status())
	}

	var bulkRes struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string `json:"_id"`
				Status int    `json:"status"`
				Error  struct {
					Type   string `json:"type"`
					Reason string `json:"reason"`
				} `json:"error"`
			} `json:"index"`
		} `json:"items"`
	}

	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return fmt.Errorf("parse bulk response: %w", err)
	}

	if bulkRes.Errors {
		for _, item := range bulkRes.Items {
			if item.Index.Status >= 400 {
				i.logger.Warn().
					Str("id", item.Index.ID).
					Str("type", item.Index.Error.Type).
					Str("reason", item.Index.Error.Reason).
					Msg("bulk index error")
			}
		}
	}

	return nil
}

// entryMapping keeps identifiers as keywords and titles searchable with accent folding
const entryMapping = `{
	"settings": {
		"analysis": {
			"analyzer": {
				"title_analyzer": {
					"type": "custom",
					"tokenizer": "standard",
					"filter": ["lowercase", "asciifolding"]
				}
			}
		}
	},
	"mappings": {
		"properties": {
			"id": {"type": "keyword"},
			"list_url": {"type": "keyword"},
			"position": {"type": "integer"},
			"source_url": {"type": "keyword"},
			"slug": {"type": "keyword"},
			"title": {
				"type": "text",
				"analyzer": "title_analyzer",
				"fields": {"keyword": {"type": "keyword"}}
			},
			"tmdb_id": {"type": "keyword"},
			"media_type": {"type": "keyword"},
			"tmdb_url": {"type": "keyword"},
			"resolved": {"type": "boolean"},
			"exported_at": {"type": "date"},
			"indexed_at": {"type": "date"}
		}
	}
}`

// EnsureIndex creates the index with the entry mapping if it doesn't exist
func (i *ElasticsearchIndexer) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.indexName}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	res, err = i.client.Indices.Create(
		i.indexName,
		i.client.Indices.Create.WithBody(strings.NewReader(entryMapping)),
		i.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index error: %s", res.Status())
	}

	return nil
}
