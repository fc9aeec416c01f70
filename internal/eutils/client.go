package eutils

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/nishad/srake-eutils/internal/config"
	"github.com/nishad/srake-eutils/internal/errors"
)

// Client issues E-utility requests. Requests are made strictly in
// sequence, are never retried, and each one uses a fresh connection.
type Client struct {
	http *resty.Client
	cfg  config.EutilsConfig
	diag *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDiagnostics sets the logger that receives "nothing found",
// "more than one ID" and "unexpected output" messages. The default writes
// to stderr.
func WithDiagnostics(l *log.Logger) Option {
	return func(c *Client) {
		c.diag = l
	}
}

// NewClient creates a client for the service described by cfg.
func NewClient(cfg config.EutilsConfig, opts ...Option) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RequestTimeout()).
		SetHeader("User-Agent", cfg.UserAgent).
		SetCloseConnection(true)

	c := &Client{
		http: httpClient,
		cfg:  cfg,
		diag: log.New(os.Stderr, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs esearch against db and returns the identifiers found. A
// response without an esearchresult.idlist is a KindMalformed error.
func (c *Client) Search(ctx context.Context, db, term string) ([]string, error) {
	const op errors.Op = "eutils.Search"

	var body struct {
		Result *struct {
			IDList *[]string `json:"idlist"`
		} `json:"esearchresult"`
	}
	params := map[string]string{"db": db, "retmode": "json", "term": term}
	if err := c.getJSON(ctx, FuncSearch, params, &body); err != nil {
		return nil, errors.Wrap(op, err)
	}
	if body.Result == nil || body.Result.IDList == nil {
		return nil, errors.E(op, errors.KindMalformed, "response has no esearchresult.idlist")
	}
	return *body.Result.IDList, nil
}

// getJSON performs a GET and decodes the JSON body into out. An error
// status is treated like an undecodable body: KindMalformed.
func (c *Client) getJSON(ctx context.Context, function string, params map[string]string, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(Query(function, params, c.cfg.SequenceDB))
	if err != nil {
		return errors.E(errors.KindNetwork, err, fmt.Sprintf("%s request failed", function))
	}
	if resp.IsError() {
		return errors.E(errors.KindMalformed, fmt.Sprintf("%s returned HTTP %s", function, resp.Status()))
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return errors.E(errors.KindMalformed, err, fmt.Sprintf("failed to decode %s response", function))
	}
	return nil
}

// getStream performs a GET and returns the unread body as lines. The body
// of an error status is returned too; callers judge it by its content.
func (c *Client) getStream(ctx context.Context, function string, params map[string]string) (*LineReader, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(Query(function, params, c.cfg.SequenceDB))
	if err != nil {
		return nil, errors.E(errors.KindNetwork, err, fmt.Sprintf("%s request failed", function))
	}
	return NewLineReader(resp.RawBody(), c.cfg.ChunkSize), nil
}

func (c *Client) diagnose(format string, args ...interface{}) {
	if c.diag != nil {
		c.diag.Printf(format, args...)
	}
}
