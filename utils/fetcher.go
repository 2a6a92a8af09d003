package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	notifier "github.com/IRT-SystemX/bcm-notifier/notifier"
)

// Fetcher is a plain JSON-RPC client over HTTP, for nodes that are only
// reachable through a gateway that ethclient cannot dial.
type Fetcher struct {
	host   string
	client *http.Client
}

func NewFetcher(host string) *Fetcher {
	return &Fetcher{host: host, client: &http.Client{Timeout: 10 * time.Second}}
}

func (fetcher *Fetcher) request(ctx context.Context, params map[string]interface{}) (gjson.Result, error) {
	buf, err := json.Marshal(params)
	if err != nil {
		return gjson.Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fetcher.host, bytes.NewBuffer(buf))
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := fetcher.client.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return gjson.Result{}, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return gjson.Result{}, fmt.Errorf("json-rpc status %d", res.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errors.New("json-rpc: malformed response")
	}
	doc := gjson.ParseBytes(body)
	if rpcErr := doc.Get("error"); rpcErr.Exists() {
		return gjson.Result{}, fmt.Errorf("json-rpc error %d: %s", rpcErr.Get("code").Int(), rpcErr.Get("message").String())
	}
	result := doc.Get("result")
	if !result.Exists() {
		return gjson.Result{}, errors.New("json-rpc: missing result")
	}
	return result, nil
}

func (fetcher *Fetcher) Get(ctx context.Context, method string, params ...interface{}) (gjson.Result, error) {
	if params == nil {
		params = make([]interface{}, 0)
	}
	return fetcher.request(ctx, map[string]interface{}{
		"method":  method,
		"params":  params,
		"id":      1,
		"jsonrpc": "2.0",
	})
}

func (fetcher *Fetcher) BlockNumber(ctx context.Context) (*big.Int, error) {
	result, err := fetcher.Get(ctx, "eth_blockNumber")
	if err != nil {
		return nil, err
	}
	return Decode(result.String())
}

func (fetcher *Fetcher) Fetch(ctx context.Context) (notifier.Value, error) {
	number, err := fetcher.BlockNumber(ctx)
	if err != nil {
		return "", err
	}
	return notifier.Value(number.String()), nil
}
