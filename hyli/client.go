package hyli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a minimal REST client for the Hyli node. Only contract lookup
// and registration are interpreted; transaction submission returns the node's
// tx hash verbatim. Persistence and ordering of submitted transactions are
// the node's responsibility.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// InitClient initializes a node client against the given base URL
func InitClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
	}
}

// GetContract fetches the named contract; a 404 response maps to
// NotFoundError, every other non-2xx response is surfaced unchanged
func (c *Client) GetContract(ctx context.Context, name string) (*Contract, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/contract/%s", c.baseURL, name), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{Resource: fmt.Sprintf("contract %s", name)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch contract %s; node responded with status %d", name, resp.StatusCode)
	}

	contract := &Contract{}
	if err := json.NewDecoder(resp.Body).Decode(contract); err != nil {
		return nil, fmt.Errorf("failed to parse contract %s; %s", name, err.Error())
	}

	return contract, nil
}

// RegisterContract registers the given contract descriptor with the node
func (c *Client) RegisterContract(ctx context.Context, contract *Contract) error {
	_, err := c.post(ctx, "/v1/contract/register", contract)
	return err
}

// SendBlobTx submits a blob transaction on behalf of the given identity and
// returns the node-assigned transaction hash
func (c *Client) SendBlobTx(ctx context.Context, identity string, blobs []*Blob) (string, error) {
	body, err := c.post(ctx, "/v1/tx/send/blob", map[string]interface{}{
		"identity": identity,
		"blobs":    blobs,
	})
	if err != nil {
		return "", err
	}
	return txHashFromResponse(body)
}

// SendProofTx submits a proof transaction and returns the node-assigned
// transaction hash
func (c *Client) SendProofTx(ctx context.Context, tx *ProofTransaction) (string, error) {
	body, err := c.post(ctx, "/v1/tx/send/proof", tx)
	if err != nil {
		return "", err
	}
	return txHashFromResponse(body)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("node rejected %s request; status %d: %s", path, resp.StatusCode, string(body))
	}

	return body, nil
}

func txHashFromResponse(body []byte) (string, error) {
	// the node responds with either a bare JSON string or {"tx_hash": "..."}
	var hash string
	if err := json.Unmarshal(body, &hash); err == nil {
		return hash, nil
	}

	var wrapped struct {
		TxHash string `json:"tx_hash"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return "", fmt.Errorf("failed to parse tx hash from node response; %s", err.Error())
	}
	return wrapped.TxHash, nil
}
