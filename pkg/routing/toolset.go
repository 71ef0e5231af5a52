package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"ai-llm-demos-be/internal/constant"
	"ai-llm-demos-be/pkg/inventory"
	"ai-llm-demos-be/pkg/llm"
)

// ErrToolAlreadyCalled is reported to the model when it repeats a tool call.
var ErrToolAlreadyCalled = errors.New("tool already called for this request; reuse the earlier result")

// Tool call outcomes passed to the observer.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// Toolset exposes the inventory service to the model for a single request.
// Every tool runs at most once; later calls are rejected without reaching the
// inventory service.
type Toolset struct {
	client  inventory.IClient
	observe func(tool, outcome string)

	mu    sync.Mutex
	calls map[string]int
}

func NewToolset(client inventory.IClient, observe func(tool, outcome string)) *Toolset {
	if observe == nil {
		observe = func(string, string) {}
	}
	return &Toolset{
		client:  client,
		observe: observe,
		calls:   make(map[string]int),
	}
}

type routeArgs struct {
	DeviceIDs []string `json:"device_ids"`
}

func (t *Toolset) Tools() []llm.Tool {
	return []llm.Tool{
		{
			Name:        constant.ToolFetchDevicesName,
			Description: constant.ToolFetchDevicesDescription,
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
			Handler: t.fetchDevices,
		},
		{
			Name:        constant.ToolRouteName,
			Description: constant.ToolRouteDescription,
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"device_ids": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Ids of every qualified device",
					},
				},
				"required": []string{"device_ids"},
			},
			Handler: t.route,
		},
	}
}

func (t *Toolset) fetchDevices(ctx context.Context, _ string) (string, error) {
	if err := t.claim(constant.ToolFetchDevicesName); err != nil {
		return "", err
	}
	out, err := t.client.FetchDevices(ctx)
	t.report(constant.ToolFetchDevicesName, err)
	return out, err
}

func (t *Toolset) route(ctx context.Context, arguments string) (string, error) {
	var args routeArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		t.observe(constant.ToolRouteName, OutcomeError)
		return "", fmt.Errorf("invalid route arguments: %w", err)
	}
	if err := t.claim(constant.ToolRouteName); err != nil {
		return "", err
	}
	out, err := t.client.Route(ctx, args.DeviceIDs)
	t.report(constant.ToolRouteName, err)
	return out, err
}

func (t *Toolset) claim(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.calls[name]++
	if t.calls[name] > 1 {
		t.observe(name, OutcomeRejected)
		return ErrToolAlreadyCalled
	}
	return nil
}

func (t *Toolset) report(name string, err error) {
	if err != nil {
		t.observe(name, OutcomeError)
		return
	}
	t.observe(name, OutcomeOK)
}

// Calls returns how many times the model asked for the named tool, rejected calls included.
func (t *Toolset) Calls(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[name]
}

// Unused lists the tools the model never called, sorted by name.
func (t *Toolset) Unused() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var unused []string
	for _, name := range []string{constant.ToolFetchDevicesName, constant.ToolRouteName} {
		if t.calls[name] == 0 {
			unused = append(unused, name)
		}
	}
	sort.Strings(unused)
	return unused
}
