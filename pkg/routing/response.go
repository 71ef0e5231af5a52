// Package routing holds the host side of the network routing agent: the tools
// offered to the model and the parser for its final answer.
package routing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var ErrInvalidRouteReply = errors.New("invalid route reply")

// RouteResponse is returned to the caller unmodified; the path is not checked
// against the topology.
type RouteResponse struct {
	Motivation   string   `json:"motivation"`
	SelectedPath []string `json:"selectedPath"`
}

const routeReplySchema = `{
  "type": "object",
  "required": ["motivation", "selectedPath"],
  "properties": {
    "motivation": {"type": "string"},
    "selectedPath": {"type": "array", "items": {"type": "string"}}
  }
}`

var routeSchema = mustSchema(routeReplySchema)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("routing: bad schema: %v", err))
	}
	return schema
}

// ParseRouteResponse extracts the first JSON object from the model reply and
// checks it against the route reply schema. Markdown fences and surrounding
// commentary are ignored.
func ParseRouteResponse(reply string) (*RouteResponse, error) {
	raw := strings.TrimSpace(reply)
	if idx := strings.Index(raw, "{"); idx >= 0 {
		raw = raw[idx:]
	}

	var doc interface{}
	if err := json.NewDecoder(strings.NewReader(raw)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRouteReply, err)
	}

	result, err := routeSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRouteReply, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidRouteReply, strings.Join(msgs, "; "))
	}

	// Re-encode the validated document into the typed struct.
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRouteReply, err)
	}
	var out RouteResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRouteReply, err)
	}
	if out.SelectedPath == nil {
		out.SelectedPath = []string{}
	}
	return &out, nil
}
