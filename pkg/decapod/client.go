/*
Copyright 2025 Mirantis IT.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package decapod

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	whaleconfig "github.com/Mirantis/whale/pkg/config"
)

const (
	apiPrefix      = "/v1"
	authPath       = apiPrefix + "/auth/"
	defaultPerPage = 100
)

// noRetryKey marks request context of methods which must be sent once.
type noRetryKey struct{}

// idempotentRetryPolicy applies default policy to GET, PUT and DELETE only,
// POST response or transport error is returned as is.
func idempotentRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if noRetry, _ := ctx.Value(noRetryKey{}).(bool); noRetry {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

type ClientOptions struct {
	URL            string
	Login          string
	Password       string
	RetryMax       int
	RetryWaitMin   time.Duration
	RetryWaitMax   time.Duration
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

// Client is Decapod v1 REST client. Token is obtained on first request and
// refreshed once when API answers 401.
type Client struct {
	baseURL  string
	login    string
	password string
	http     *retryablehttp.Client
	log      zerolog.Logger

	mu    sync.Mutex
	token string
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseURL := whaleconfig.NormalizeURL(opts.URL)
	if baseURL == "" {
		return nil, errors.New("decapod url is not specified")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrapf(err, "invalid decapod url '%s'", opts.URL)
	}
	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = opts.RequestTimeout

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		retryClient.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		retryClient.RetryWaitMax = opts.RetryWaitMax
	}
	retryClient.CheckRetry = idempotentRetryPolicy
	// keep last response, its body carries api error
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = leveledLogger{log: opts.Logger}

	return &Client{
		baseURL:  baseURL,
		login:    opts.Login,
		password: opts.Password,
		http:     retryClient,
		log:      opts.Logger,
	}, nil
}

func NewClientFromConfig(cfg *whaleconfig.Config, log zerolog.Logger) (*Client, error) {
	return NewClient(ClientOptions{
		URL:            cfg.DecapodURL,
		Login:          cfg.Login,
		Password:       cfg.Password,
		RetryMax:       cfg.HTTP.RetryMax,
		RetryWaitMin:   cfg.HTTP.RetryWaitMin,
		RetryWaitMax:   cfg.HTTP.RetryWaitMax,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Logger:         log,
	})
}

func (c *Client) URL() string {
	return c.baseURL
}

// Login obtains new auth token.
func (c *Client) Login(ctx context.Context) error {
	resp := authResponse{}
	err := c.send(ctx, http.MethodPost, authPath, nil, authRequest{Username: c.login, Password: c.password}, &resp, "")
	if err != nil {
		return errors.Wrapf(err, "failed to login to decapod as '%s'", c.login)
	}
	if resp.ID == "" {
		return errors.New("decapod returned empty auth token")
	}
	c.mu.Lock()
	c.token = resp.ID
	c.mu.Unlock()
	c.log.Debug().Msgf("logged in to decapod '%s' as '%s'", c.baseURL, c.login)
	return nil
}

// Logout drops current token, no-op when client has not logged in.
func (c *Client) Logout(ctx context.Context) error {
	token := c.currentToken()
	if token == "" {
		return nil
	}
	if err := c.send(ctx, http.MethodDelete, authPath, nil, nil, nil, token); err != nil {
		return errors.Wrap(err, "failed to logout from decapod")
	}
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	return nil
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	if token := c.currentToken(); token != "" {
		return token, nil
	}
	if err := c.Login(ctx); err != nil {
		return "", err
	}
	return c.currentToken(), nil
}

// do performs authorized request and decodes response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}
	err = c.send(ctx, method, path, query, in, out, token)
	if IsUnauthorized(err) {
		c.log.Debug().Msgf("token rejected for %s %s, logging in again", method, path)
		c.mu.Lock()
		if c.token == token {
			c.token = ""
		}
		c.mu.Unlock()
		if token, err = c.ensureToken(ctx); err != nil {
			return err
		}
		err = c.send(ctx, method, path, query, in, out, token)
	}
	return err
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, in, out interface{}, token string) error {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}
	var body interface{}
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "failed to encode %s %s request", method, path)
		}
		body = raw
	}
	if method == http.MethodPost {
		ctx = context.WithValue(ctx, noRetryKey{}, true)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return errors.Wrapf(err, "failed to build %s %s request", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	c.log.Trace().Msgf("%s %s", method, requestURL)
	// with passthrough handler exhausted retries return both last response
	// and error, response is preferred
	resp, err := c.http.Do(req)
	if resp == nil {
		return errors.Wrapf(err, "%s %s failed", method, path)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "could not read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(method, path, resp.StatusCode, respBody)
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrapf(err, "failed to decode %s %s response", method, path)
	}
	return nil
}

func collectionPath(kind string) string {
	return fmt.Sprintf("%s/%s/", apiPrefix, kind)
}

func itemPath(kind, id string) string {
	return fmt.Sprintf("%s/%s/%s/", apiPrefix, kind, url.PathEscape(id))
}

func getItem[T any](ctx context.Context, c *Client, kind, id string) (*T, error) {
	if id == "" {
		return nil, errors.Errorf("empty %s id", kind)
	}
	item := new(T)
	if err := c.do(ctx, http.MethodGet, itemPath(kind, id), nil, nil, item); err != nil {
		return nil, err
	}
	return item, nil
}

// listItems walks all pages of collection.
func listItems[T any](ctx context.Context, c *Client, kind string) ([]T, error) {
	items := []T{}
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("per_page", strconv.Itoa(defaultPerPage))
		list := List[T]{}
		if err := c.do(ctx, http.MethodGet, collectionPath(kind), query, nil, &list); err != nil {
			return nil, err
		}
		items = append(items, list.Items...)
		if len(list.Items) == 0 || len(items) >= list.Total || list.PerPage == 0 {
			return items, nil
		}
	}
}

func createItem[T any](ctx context.Context, c *Client, kind string, in interface{}) (*T, error) {
	item := new(T)
	if err := c.do(ctx, http.MethodPost, collectionPath(kind), nil, in, item); err != nil {
		return nil, err
	}
	return item, nil
}

func updateItem[T any](ctx context.Context, c *Client, kind string, model *Model[T]) (*Model[T], error) {
	if model == nil || model.ID == "" {
		return nil, errors.Errorf("%s model to update has no id", kind)
	}
	updated := new(Model[T])
	if err := c.do(ctx, http.MethodPut, itemPath(kind, model.ID), nil, model, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func deleteItem[T any](ctx context.Context, c *Client, kind, id string) (*T, error) {
	if id == "" {
		return nil, errors.Errorf("empty %s id", kind)
	}
	item := new(T)
	if err := c.do(ctx, http.MethodDelete, itemPath(kind, id), nil, nil, item); err != nil {
		return nil, err
	}
	return item, nil
}

// leveledLogger routes retryablehttp messages to zerolog.
type leveledLogger struct {
	log zerolog.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Trace().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}
