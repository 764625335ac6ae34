package protocol

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/louisbranch/sceneforge/internal/platform/errors"
)

// Limits carried over from the host protocol. Coordinates beyond
// MaxCoordinate and resolutions beyond MaxResolution are rejected before
// they reach the engine.
const (
	MaxCoordinate = 1_000_000
	MaxResolution = 8192
	MaxSamples    = 10_000
)

// ObjectTypes lists the primitive types create_object accepts.
var ObjectTypes = []string{"cube", "sphere", "cylinder", "plane", "cone", "torus"}

// RenderEngines lists the render engines the protocol accepts.
var RenderEngines = []string{"CYCLES", "BLENDER_EEVEE", "BLENDER_WORKBENCH"}

// ImageFormats lists the output formats the protocol accepts.
var ImageFormats = []string{"PNG", "JPEG", "TIFF", "OPEN_EXR", "HDR"}

var objectNameRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\s]+$`)

// ValidObjectName reports whether name is acceptable for scene objects:
// alphanumerics, underscore, dash, dot, and space.
func ValidObjectName(name string) bool {
	return name != "" && objectNameRe.MatchString(name)
}

// Validator is implemented by typed command params.
type Validator interface {
	Validate() *errors.Error
}

// Vec3 is a 3-component vector decoded from a JSON array.
type Vec3 [3]float64

// UnmarshalJSON requires exactly three numeric elements.
func (v *Vec3) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("must be a list of numbers")
	}
	if len(raw) != 3 {
		return fmt.Errorf("must have exactly 3 elements")
	}
	copy(v[:], raw)
	return nil
}

func (v Vec3) inRange() bool {
	for _, c := range v {
		if c > MaxCoordinate || c < -MaxCoordinate {
			return false
		}
	}
	return true
}

// Color is an RGBA color decoded from either a "#RRGGBB" hex string or a
// 3- or 4-element list of components in [0, 1].
type Color struct {
	R, G, B, A float64
}

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// UnmarshalJSON accepts hex strings and RGB/RGBA lists.
func (c *Color) UnmarshalJSON(data []byte) error {
	var hex string
	if err := json.Unmarshal(data, &hex); err == nil {
		if !hexColorRe.MatchString(hex) {
			return fmt.Errorf("color string must be hex format (#RRGGBB)")
		}
		var rgb [3]uint8
		if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &rgb[0], &rgb[1], &rgb[2]); err != nil {
			return fmt.Errorf("color string must be hex format (#RRGGBB)")
		}
		c.R = float64(rgb[0]) / 255
		c.G = float64(rgb[1]) / 255
		c.B = float64(rgb[2]) / 255
		c.A = 1
		return nil
	}

	var list []float64
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("color must be hex string (#RRGGBB) or RGB/RGBA list")
	}
	if len(list) != 3 && len(list) != 4 {
		return fmt.Errorf("color list must have 3 (RGB) or 4 (RGBA) elements")
	}
	for i, v := range list {
		if v < 0 || v > 1 {
			return fmt.Errorf("color[%d] must be between 0 and 1", i)
		}
	}
	c.R, c.G, c.B = list[0], list[1], list[2]
	c.A = 1
	if len(list) == 4 {
		c.A = list[3]
	}
	return nil
}

// MarshalJSON renders the color as an RGBA list.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{c.R, c.G, c.B, c.A})
}

// PingParams are the parameters for ping.
type PingParams struct {
	Echo string `json:"echo,omitempty"`
}

// Validate implements Validator.
func (p PingParams) Validate() *errors.Error { return nil }

// CreateObjectParams are the parameters for create_object.
type CreateObjectParams struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Location *Vec3  `json:"location,omitempty"`
}

// Validate implements Validator.
func (p CreateObjectParams) Validate() *errors.Error {
	if p.Type == "" {
		return errors.New(errors.CodeInvalidParams, "missing required parameter: type")
	}
	if p.Name == "" {
		return errors.New(errors.CodeInvalidParams, "missing required parameter: name")
	}
	if !ValidObjectName(p.Name) {
		return errors.New(errors.CodeInvalidParams, "invalid object name; use alphanumeric characters, underscore, dash, dot, or space")
	}
	if p.Location != nil && !p.Location.inRange() {
		return errors.Newf(errors.CodeInvalidParams, "location values too large (max ±%d)", MaxCoordinate)
	}
	return nil
}

// MoveObjectParams are the parameters for move_object.
type MoveObjectParams struct {
	Name     string `json:"name"`
	Location *Vec3  `json:"location"`
}

// Validate implements Validator.
func (p MoveObjectParams) Validate() *errors.Error {
	if err := requireNamedVector(p.Name, p.Location, "location"); err != nil {
		return err
	}
	return nil
}

// RotateObjectParams are the parameters for rotate_object. Angles are in
// degrees.
type RotateObjectParams struct {
	Name     string `json:"name"`
	Rotation *Vec3  `json:"rotation"`
}

// Validate implements Validator.
func (p RotateObjectParams) Validate() *errors.Error {
	return requireNamedVector(p.Name, p.Rotation, "rotation")
}

// ScaleObjectParams are the parameters for scale_object.
type ScaleObjectParams struct {
	Name  string `json:"name"`
	Scale *Vec3  `json:"scale"`
}

// Validate implements Validator.
func (p ScaleObjectParams) Validate() *errors.Error {
	if err := requireNamedVector(p.Name, p.Scale, "scale"); err != nil {
		return err
	}
	for i, v := range p.Scale {
		if v <= 0 {
			return errors.Newf(errors.CodeInvalidParams, "scale[%d] must be positive (got %v)", i, v)
		}
	}
	return nil
}

// MaterialParams describe the material properties set_material accepts.
type MaterialParams struct {
	Color     *Color   `json:"color,omitempty"`
	Metallic  *float64 `json:"metallic,omitempty"`
	Roughness *float64 `json:"roughness,omitempty"`
}

// SetMaterialParams are the parameters for set_material.
type SetMaterialParams struct {
	Name     string          `json:"name"`
	Material *MaterialParams `json:"material"`
}

// Validate implements Validator.
func (p SetMaterialParams) Validate() *errors.Error {
	if p.Name == "" {
		return errors.New(errors.CodeInvalidParams, "missing required parameter: name")
	}
	if !ValidObjectName(p.Name) {
		return errors.New(errors.CodeInvalidParams, "invalid object name")
	}
	if p.Material == nil {
		return errors.New(errors.CodeInvalidParams, "missing required parameter: material")
	}
	if err := unitRange(p.Material.Metallic, "metallic"); err != nil {
		return err
	}
	if err := unitRange(p.Material.Roughness, "roughness"); err != nil {
		return err
	}
	return nil
}

// Resolution is a [width, height] pair.
type Resolution [2]int

// UnmarshalJSON requires exactly two elements.
func (r *Resolution) UnmarshalJSON(data []byte) error {
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("must be a list with 2 elements [width, height]")
	}
	if len(raw) != 2 {
		return fmt.Errorf("must have exactly 2 elements [width, height]")
	}
	r[0], r[1] = raw[0], raw[1]
	return nil
}

func (r Resolution) validate() *errors.Error {
	for i, v := range r {
		if v <= 0 {
			return errors.Newf(errors.CodeInvalidParams, "resolution[%d] must be a positive integer", i)
		}
		if v > MaxResolution {
			return errors.Newf(errors.CodeInvalidParams, "resolution[%d] too large (max %d)", i, MaxResolution)
		}
	}
	return nil
}

// RenderSceneParams are the parameters for render_scene.
type RenderSceneParams struct {
	OutputPath string      `json:"output_path,omitempty"`
	Resolution *Resolution `json:"resolution,omitempty"`
	Engine     string      `json:"engine,omitempty"`
}

// Validate implements Validator.
func (p RenderSceneParams) Validate() *errors.Error {
	if p.Resolution != nil {
		if err := p.Resolution.validate(); err != nil {
			return err
		}
	}
	if p.Engine != "" && !containsFold(RenderEngines, p.Engine) {
		return errors.Newf(errors.CodeInvalidParams, "invalid render engine %q; valid engines: %v", p.Engine, RenderEngines)
	}
	return nil
}

// RenderSettingsParams are the parameters for set_render_settings. All
// fields are optional; only provided fields are applied.
type RenderSettingsParams struct {
	Resolution *Resolution `json:"resolution,omitempty"`
	Engine     string      `json:"engine,omitempty"`
	Samples    *int        `json:"samples,omitempty"`
	Format     string      `json:"format,omitempty"`
	Quality    *int        `json:"quality,omitempty"`
}

// Validate implements Validator.
func (p RenderSettingsParams) Validate() *errors.Error {
	if p.Resolution != nil {
		if err := p.Resolution.validate(); err != nil {
			return err
		}
	}
	if p.Engine != "" && !containsFold(RenderEngines, p.Engine) {
		return errors.Newf(errors.CodeInvalidParams, "invalid render engine; valid engines: %v", RenderEngines)
	}
	if p.Samples != nil {
		if *p.Samples <= 0 {
			return errors.New(errors.CodeInvalidParams, "parameter 'samples' must be a positive integer")
		}
		if *p.Samples > MaxSamples {
			return errors.Newf(errors.CodeInvalidParams, "parameter 'samples' too large (max %d)", MaxSamples)
		}
	}
	if p.Format != "" && !containsFold(ImageFormats, p.Format) {
		return errors.Newf(errors.CodeInvalidParams, "invalid format; valid formats: %v", ImageFormats)
	}
	if p.Quality != nil && (*p.Quality < 0 || *p.Quality > 100) {
		return errors.New(errors.CodeInvalidParams, "parameter 'quality' must be an integer between 0 and 100")
	}
	return nil
}

// EmptyParams is used by commands that take no parameters.
type EmptyParams struct{}

// Validate implements Validator.
func (EmptyParams) Validate() *errors.Error { return nil }

func requireNamedVector(name string, vec *Vec3, field string) *errors.Error {
	if name == "" {
		return errors.New(errors.CodeInvalidParams, "missing required parameter: name")
	}
	if !ValidObjectName(name) {
		return errors.New(errors.CodeInvalidParams, "invalid object name")
	}
	if vec == nil {
		return errors.Newf(errors.CodeInvalidParams, "missing required parameter: %s", field)
	}
	if !vec.inRange() {
		return errors.Newf(errors.CodeInvalidParams, "%s values too large (max ±%d)", field, MaxCoordinate)
	}
	return nil
}

func unitRange(v *float64, field string) *errors.Error {
	if v == nil {
		return nil
	}
	if *v < 0 || *v > 1 {
		return errors.Newf(errors.CodeInvalidParams, "material %q must be a number between 0 and 1", field)
	}
	return nil
}

func containsFold(haystack []string, needle string) bool {
	for _, v := range haystack {
		if strings.EqualFold(v, needle) {
			return true
		}
	}
	return false
}
