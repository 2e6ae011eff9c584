package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/Skotchmaster/storefront/internal/models"
)

func docID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (c *Client) IndexProduct(ctx context.Context, p *models.Product) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	res, err := c.es.Index(c.index, bytes.NewReader(data),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(docID(p.ID)),
	)
	if err != nil {
		return fmt.Errorf("index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index product", res.Status(), res.Body)
	}
	return nil
}

func (c *Client) DeleteProduct(ctx context.Context, id uint) error {
	if !c.Enabled() {
		return nil
	}
	res, err := c.es.Delete(c.index, docID(id), c.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return responseError("delete product", res.Status(), res.Body)
	}
	return nil
}

// Search runs a fuzzy multi_match over name and description, name weighted
// twice, and returns the total hit count with the requested page.
func (c *Client) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res.Status(), res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}

func responseError(op, status string, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, 1024))
	return fmt.Errorf("%s: elasticsearch %s: %s", op, status, bytes.TrimSpace(b))
}
