package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rocketscienceinc/tictactoe-attest/internal/entity"
)

const defaultQueryTimeout = 30 * time.Second

var ErrMissingData = errors.New("graphql response has no data")

const attestationsQuery = `query Attestations($schemaId: String!) {
  attestations(where: { schemaId: { equals: $schemaId } }) {
    id
    recipient
    data
    timeCreated
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type attestationsResponse struct {
	Data *struct {
		Attestations []entity.Attestation `json:"attestations"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// EASScanClient - reads attestations from the EAS GraphQL indexer.
type EASScanClient struct {
	logger     *slog.Logger
	endpoint   string
	httpClient *http.Client
}

func NewEASScanClient(logger *slog.Logger, endpoint string, httpClient *http.Client) *EASScanClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultQueryTimeout}
	}

	return &EASScanClient{
		logger:     logger.With("component", "easscan"),
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

// FetchAttestations - every attestation made under the schema, in the order the indexer returns them.
func (that *EASScanClient) FetchAttestations(ctx context.Context, schemaUID common.Hash) ([]entity.Attestation, error) {
	log := that.logger.With("method", "FetchAttestations", "schema", schemaUID.Hex())

	body, err := json.Marshal(graphQLRequest{
		Query:     attestationsQuery,
		Variables: map[string]any{"schemaId": schemaUID.Hex()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, that.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := that.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send graphql request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read graphql response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graphql endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var response attestationsResponse
	if err = json.Unmarshal(payload, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graphql response: %w", err)
	}

	if len(response.Errors) > 0 {
		messages := make([]string, 0, len(response.Errors))
		for _, graphQLErr := range response.Errors {
			messages = append(messages, graphQLErr.Message)
		}
		return nil, fmt.Errorf("graphql errors: %s", strings.Join(messages, "; "))
	}

	if response.Data == nil {
		return nil, ErrMissingData
	}

	attestations := response.Data.Attestations
	if attestations == nil {
		attestations = []entity.Attestation{}
	}

	log.Debug("attestations loaded", "count", len(attestations))

	return attestations, nil
}
