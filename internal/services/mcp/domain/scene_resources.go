package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/sceneforge/internal/services/control/client"
)

// ObjectsResourceHandler serves the scene object listing resource.
func ObjectsResourceHandler(c *client.Client) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if c == nil {
			return nil, fmt.Errorf("control client is not configured")
		}

		scene, err := c.SceneInfo(ctx)
		if err != nil {
			return nil, fmt.Errorf("scene info failed: %w", err)
		}

		payload := SceneInfoResult{
			Name:        scene.Name,
			ObjectCount: scene.ObjectCount,
		}
		for _, obj := range scene.Objects {
			payload.Objects = append(payload.Objects, objectResult(obj))
		}
		return readResourceJSON(ObjectsResource().URI, payload)
	}
}

// RenderSettingsResourceHandler serves the render settings resource.
func RenderSettingsResourceHandler(c *client.Client) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if c == nil {
			return nil, fmt.Errorf("control client is not configured")
		}

		settings, err := c.RenderSettings(ctx)
		if err != nil {
			return nil, fmt.Errorf("render settings failed: %w", err)
		}
		return readResourceJSON(RenderSettingsResource().URI, renderSettingsResult(settings))
	}
}

func readResourceJSON(uri string, payload any) (*mcp.ReadResourceResult, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode resource payload: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(encoded),
			},
		},
	}, nil
}
