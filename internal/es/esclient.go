package es

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/storefront/internal/config"
)

// Client wraps the Elasticsearch client together with the product index name.
// A nil *Client means search is served from SQL.
type Client struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(cfg config.Config, l *slog.Logger) (*Client, error) {
	if cfg.ESURL == "" {
		return nil, nil
	}
	l = l.With("svc", "elasticsearch", "url", cfg.ESURL)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ESURL},
		Username:  cfg.ESUser,
		Password:  cfg.ESPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		l.Error("elasticsearch_info_failed", "status", res.Status(), "body", string(body))
		return nil, fmt.Errorf("elasticsearch error: %s", res.Status())
	}

	l.Info("elasticsearch_connected", "index", cfg.ESIndex)
	return &Client{es: client, index: cfg.ESIndex}, nil
}

// Wrap is used when the caller already owns an *elasticsearch.Client.
func Wrap(client *elasticsearch.Client, index string) *Client {
	return &Client{es: client, index: index}
}

func (c *Client) Enabled() bool {
	return c != nil && c.es != nil
}
