package googleapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"populartimes-crawler/internal/apperr"

	"github.com/goccy/go-json"
)

// envelopePrefix is the length of the anti-JSON-hijacking prefix in front of the "d" payload.
const envelopePrefix = 4

type searchEnvelope struct {
	D *string `json:"d"`
}

// MapSearch runs a map-search query and returns the decoded positional payload.
func (c *Client) MapSearch(ctx context.Context, query string) (Node, error) {
	rawURL := c.searchBaseURL + "?tbm=map&hl=de&tch=1&q=" + url.QueryEscape(query)

	header := http.Header{}
	header.Set("User-Agent", MobileUserAgent)

	body, err := c.get(ctx, rawURL, header)
	if err != nil {
		return Node{}, err
	}

	return ParseSearchResponse(body)
}

// ParseSearchResponse unwraps the JSON envelope embedded in a map-search
// response. Everything after the last closing brace is discarded, the "d"
// field is stripped of its prefix and decoded as an array.
func ParseSearchResponse(body []byte) (Node, error) {
	if end := bytes.LastIndexByte(body, '}'); end >= 0 {
		body = body[:end+1]
	}

	var env searchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Node{}, fmt.Errorf("%w: googleapi: failed to parse search envelope: %v", apperr.ErrPayloadShape, err)
	}
	if env.D == nil {
		return Node{}, fmt.Errorf("%w: googleapi: search envelope has no d field", apperr.ErrPayloadShape)
	}
	if len(*env.D) < envelopePrefix {
		return Node{}, fmt.Errorf("%w: googleapi: search payload too short", apperr.ErrPayloadShape)
	}

	dec := json.NewDecoder(strings.NewReader((*env.D)[envelopePrefix:]))
	dec.UseNumber()

	var data []any
	if err := dec.Decode(&data); err != nil {
		return Node{}, fmt.Errorf("%w: googleapi: failed to parse search payload: %v", apperr.ErrPayloadShape, err)
	}

	return NewNode(data), nil
}
