package domain

import "github.com/modelcontextprotocol/go-sdk/mcp"

// CreateObjectInput represents the MCP tool input for object creation.
type CreateObjectInput struct {
	Type     string    `json:"type" jsonschema:"primitive type (cube, sphere, cylinder, plane, cone, torus)"`
	Name     string    `json:"name" jsonschema:"object name"`
	Location []float64 `json:"location,omitempty" jsonschema:"optional [x, y, z] location"`
}

// TransformInput represents the MCP tool input for move/rotate/scale.
type TransformInput struct {
	Name  string    `json:"name" jsonschema:"object name"`
	Value []float64 `json:"value" jsonschema:"[x, y, z] target value"`
}

// SetMaterialInput represents the MCP tool input for material updates.
type SetMaterialInput struct {
	Name      string   `json:"name" jsonschema:"object name"`
	Color     string   `json:"color,omitempty" jsonschema:"optional hex color (#RRGGBB)"`
	Metallic  *float64 `json:"metallic,omitempty" jsonschema:"optional metallic factor (0-1)"`
	Roughness *float64 `json:"roughness,omitempty" jsonschema:"optional roughness factor (0-1)"`
}

// ObjectResult represents one scene object in tool outputs.
type ObjectResult struct {
	Name     string    `json:"name" jsonschema:"object name as stored in the scene"`
	Type     string    `json:"type" jsonschema:"object type"`
	Location []float64 `json:"location" jsonschema:"[x, y, z] location"`
	Rotation []float64 `json:"rotation" jsonschema:"[x, y, z] rotation in degrees"`
	Scale    []float64 `json:"scale" jsonschema:"[x, y, z] scale factors"`
}

// SceneInfoInput represents the MCP tool input for scene inspection.
type SceneInfoInput struct{}

// SceneInfoResult represents the MCP tool output for scene inspection.
type SceneInfoResult struct {
	Name           string               `json:"name" jsonschema:"scene name"`
	ObjectCount    int                  `json:"object_count" jsonschema:"number of objects in the scene"`
	Objects        []ObjectResult       `json:"objects" jsonschema:"scene objects"`
	Camera         *CameraResult        `json:"camera" jsonschema:"scene camera"`
	RenderSettings RenderSettingsResult `json:"render_settings" jsonschema:"current render configuration"`
	ActiveObject   string               `json:"active_object,omitempty" jsonschema:"most recently created object"`
}

// CameraResult represents the scene camera in tool outputs.
type CameraResult struct {
	Name     string    `json:"name" jsonschema:"camera name"`
	Location []float64 `json:"location" jsonschema:"[x, y, z] location"`
	Rotation []float64 `json:"rotation" jsonschema:"[x, y, z] rotation in degrees"`
}

// ClearSceneInput represents the MCP tool input for clearing the scene.
type ClearSceneInput struct{}

// ClearSceneResult represents the MCP tool output for clearing the scene.
type ClearSceneResult struct {
	Deleted   int      `json:"deleted_count" jsonschema:"number of objects removed"`
	Preserved []string `json:"preserved" jsonschema:"protected objects left in place"`
}

// RenderInput represents the MCP tool input for rendering.
type RenderInput struct {
	OutputPath string `json:"output_path,omitempty" jsonschema:"optional output file path"`
	Width      int    `json:"width,omitempty" jsonschema:"optional render width in pixels"`
	Height     int    `json:"height,omitempty" jsonschema:"optional render height in pixels"`
	Engine     string `json:"engine,omitempty" jsonschema:"optional render engine (CYCLES, BLENDER_EEVEE, BLENDER_WORKBENCH)"`
}

// RenderResult represents the MCP tool output for rendering.
type RenderResult struct {
	OutputPath string  `json:"output_path" jsonschema:"rendered image path"`
	Width      int     `json:"width" jsonschema:"render width in pixels"`
	Height     int     `json:"height" jsonschema:"render height in pixels"`
	Engine     string  `json:"engine" jsonschema:"render engine used"`
	Seconds    float64 `json:"render_time_seconds" jsonschema:"render duration in seconds"`
}

// RenderSettingsInput represents the MCP tool input for render settings.
// All fields are optional; only provided fields are applied.
type RenderSettingsInput struct {
	Width   int    `json:"width,omitempty" jsonschema:"optional render width in pixels"`
	Height  int    `json:"height,omitempty" jsonschema:"optional render height in pixels"`
	Engine  string `json:"engine,omitempty" jsonschema:"optional render engine"`
	Samples *int   `json:"samples,omitempty" jsonschema:"optional sample count"`
	Format  string `json:"format,omitempty" jsonschema:"optional image format (PNG, JPEG, TIFF, OPEN_EXR, HDR)"`
	Quality *int   `json:"quality,omitempty" jsonschema:"optional quality (0-100)"`
}

// RenderSettingsResult represents the MCP tool output for render settings.
type RenderSettingsResult struct {
	Width   int    `json:"width" jsonschema:"render width in pixels"`
	Height  int    `json:"height" jsonschema:"render height in pixels"`
	Engine  string `json:"engine" jsonschema:"render engine"`
	Samples int    `json:"samples" jsonschema:"sample count"`
	Format  string `json:"format" jsonschema:"image format"`
	Quality int    `json:"quality" jsonschema:"quality (0-100)"`
}

// CreateObjectTool defines the MCP tool schema for object creation.
func CreateObjectTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_create_object",
		Description: "Adds a primitive object to the scene",
	}
}

// MoveObjectTool defines the MCP tool schema for moving an object.
func MoveObjectTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_move_object",
		Description: "Moves an object to a new location",
	}
}

// RotateObjectTool defines the MCP tool schema for rotating an object.
func RotateObjectTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_rotate_object",
		Description: "Sets an object's rotation in degrees",
	}
}

// ScaleObjectTool defines the MCP tool schema for scaling an object.
func ScaleObjectTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_scale_object",
		Description: "Sets an object's scale factors",
	}
}

// SetMaterialTool defines the MCP tool schema for material updates.
func SetMaterialTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_set_material",
		Description: "Applies color and surface properties to an object",
	}
}

// SceneInfoTool defines the MCP tool schema for scene inspection.
func SceneInfoTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_info",
		Description: "Returns the current scene and its objects",
	}
}

// ClearSceneTool defines the MCP tool schema for clearing the scene.
func ClearSceneTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_clear",
		Description: "Removes user-created objects, keeping the camera and light",
	}
}

// RenderTool defines the MCP tool schema for rendering.
func RenderTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_render",
		Description: "Renders the current scene to an image file",
	}
}

// RenderSettingsTool defines the MCP tool schema for render settings.
func RenderSettingsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_render_settings",
		Description: "Updates render settings; omitted fields keep their current values",
	}
}

// ObjectsResource defines the MCP resource for the scene object listing.
func ObjectsResource() *mcp.Resource {
	return &mcp.Resource{
		URI:         "scene://objects",
		Name:        "scene-objects",
		Description: "All objects in the current scene",
		MIMEType:    "application/json",
	}
}

// RenderSettingsResource defines the MCP resource for render settings.
func RenderSettingsResource() *mcp.Resource {
	return &mcp.Resource{
		URI:         "scene://render-settings",
		Name:        "scene-render-settings",
		Description: "Current render configuration",
		MIMEType:    "application/json",
	}
}
