package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/sceneforge/internal/engine"
	"github.com/louisbranch/sceneforge/internal/services/control/protocol"
	"github.com/louisbranch/sceneforge/internal/services/control/storage"
)

// registerHandlers binds every protocol command. Status commands answer
// inline; scene commands go through the executor so the engine only ever
// sees one mutation at a time.
func (s *Server) registerHandlers() {
	r := s.router

	r.Register(protocol.CmdPing, Typed(s.handlePing))
	r.Register(protocol.CmdGetServerStatus, Typed(s.handleServerStatus))
	r.Register(protocol.CmdGetErrorStats, Typed(s.handleErrorStats))

	r.Register(protocol.CmdCreateObject, Typed(s.handleCreateObject))
	r.Register(protocol.CmdMoveObject, Typed(s.handleMoveObject))
	r.Register(protocol.CmdRotateObject, Typed(s.handleRotateObject))
	r.Register(protocol.CmdScaleObject, Typed(s.handleScaleObject))
	r.Register(protocol.CmdSetMaterial, Typed(s.handleSetMaterial))
	r.Register(protocol.CmdGetSceneInfo, Typed(s.handleSceneInfo))
	r.Register(protocol.CmdClearScene, Typed(s.handleClearScene))
	r.Register(protocol.CmdRenderScene, Typed(s.handleRenderScene))
	r.Register(protocol.CmdSetRenderSettings, Typed(s.handleSetRenderSettings))
	r.Register(protocol.CmdGetRenderSettings, Typed(s.handleGetRenderSettings))
}

func (s *Server) handlePing(ctx context.Context, in protocol.PingParams) protocol.Response {
	data := map[string]any{"pong": true}
	if in.Echo != "" {
		data["echo"] = in.Echo
	}
	return protocol.OK(data, "pong")
}

func (s *Server) handleServerStatus(ctx context.Context, _ protocol.EmptyParams) protocol.Response {
	return protocol.OK(s.Status(), "server status")
}

func (s *Server) handleErrorStats(ctx context.Context, _ protocol.EmptyParams) protocol.Response {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return protocol.FailErr(err)
	}
	return protocol.OK(stats, "error statistics")
}

func (s *Server) handleCreateObject(ctx context.Context, in protocol.CreateObjectParams) protocol.Response {
	return s.executor.Submit(ctx, func(ctx context.Context) protocol.Response {
		req := engine.CreateRequest{
			Type: strings.ToLower(in.Type),
			Name: in.Name,
		}
		if in.Location != nil {
			req.Location = [3]float64(*in.Location)
		}
		obj, err := s.engine.CreateObject(ctx, req)
		if err != nil {
			return protocol.FailErr(err)
		}
		return protocol.OK(obj, fmt.Sprintf("created %s %q", obj.Type, obj.Name))
	})
}

func (s *Server) handleMoveObject(ctx context.Context, in protocol.MoveObjectParams) protocol.Response {
	return s.executor.Submit(ctx, func(ctx context.Context) protocol.Response {
		obj, err := s.engine.MoveObject(ctx, in.Name, [3]float64(*in.Location))
		if err != nil {
			return protocol.FailErr(err)
		}
		return protocol.OK(obj, fmt.Sprintf("moved %q", obj.Name))
	})
}

func (s *Server) handleRotateObject(ctx context.Context, in protocol.RotateObjectParams) protocol.Response {
	return s.executor.Submit(ctx, func(ctx context.Context) protocol.Response {
		obj, err := s.engine.RotateObject(ctx, in.Name, [3]float64(*in.Rotation))
		if err != nil {
			return protocol.FailErr(err)
		}
		return protocol.OK(obj, fmt.Sprintf("rotated %q", obj.Name))
	})
}

func (s *Server) handleScaleObject(ctx context.Context, in protocol.ScaleObjectParams) protocol.Response {
	return s.executor.Submit(ctx, func(ctx context.Context) protocol.Response {
		obj, err := s.engine.ScaleObject(ctx, in.Name, [3]float64(*in.Scale))
		if err != nil {
			return protocol.FailErr(err)
		}
		return protocol.OK(obj, fmt.Sprintf("scaled %q", obj.Name))
	})
}

func (s *Server) handleSetMaterial(ctx context.Context, in protocol.SetMaterialParams) protocol.Response {
	return s.executor.Submit(ctx, func(ctx context.Context) protocol.Response {
		mat := engine.Material{
			Metallic:  in.Material.Metallic,
			Roughness: in.Material.Roughness,
		}
		if in.Material.Color != nil {
			color := [4]float64{in.Material.Color.R, in.Material.Color.G, in.Material.Color.B, in.Material.Color.A}
			mat.Color = &color
		}
		obj, err := s.engine.SetMaterial(ctx, in.Name, mat)
		if err != nil {
			return protocol.FailErr(err)
		}
		return protocol.OK(obj, fmt.Sprintf("updated material on %q", obj.Name))
	})
}

func (s *Server) handleSceneInfo(ctx context.Context, _ protocol.EmptyParams) protocol.Response {
	return s.executor.Submit(ctx, func(ctx context.Context) protocol.Response {
		scene, err := s.engine.SceneInfo(ctx)
		if err != nil {
			return protocol.FailErr(err)
		}
		return protocol.OK(scene, fmt.Sprintf("scene %q with %d objects", scene.Name, scene.ObjectCount))
	})
}

func (s *Server) handleClearScene(ctx context.Context, _ protocol.EmptyParams) protocol.Response {
	return s.executor.Submit(ctx, func(ctx context.Context) protocol.Response {
		result, err := s.engine.ClearScene(ctx)
		if err != nil {
			return protocol.FailErr(err)
		}
		return protocol.OK(result, fmt.Sprintf("cleared %d objects", result.Deleted))
	})
}

func (s *Server) handleRenderScene(ctx context.Context, in protocol.RenderSceneParams) protocol.Response {
	clientID := clientIDFrom(ctx)
	return s.executor.Submit(ctx, func(ctx context.Context) protocol.Response {
		req := engine.RenderRequest{
			OutputPath: in.OutputPath,
			Engine:     strings.ToUpper(in.Engine),
		}
		if in.Resolution != nil {
			req.Resolution = [2]int(*in.Resolution)
		}
		result, err := s.engine.Render(ctx, req)
		if err != nil {
			return protocol.FailErr(err)
		}
		s.recordRender(ctx, clientID, result)
		return protocol.OK(result, fmt.Sprintf("rendered to %s", result.OutputPath))
	})
}

func (s *Server) handleSetRenderSettings(ctx context.Context, in protocol.RenderSettingsParams) protocol.Response {
	return s.executor.Submit(ctx, func(ctx context.Context) protocol.Response {
		patch := engine.RenderSettingsPatch{
			Samples: in.Samples,
			Quality: in.Quality,
		}
		if in.Resolution != nil {
			res := [2]int(*in.Resolution)
			patch.Resolution = &res
		}
		if in.Engine != "" {
			eng := strings.ToUpper(in.Engine)
			patch.Engine = &eng
		}
		if in.Format != "" {
			format := strings.ToUpper(in.Format)
			patch.Format = &format
		}
		settings, err := s.engine.SetRenderSettings(ctx, patch)
		if err != nil {
			return protocol.FailErr(err)
		}
		return protocol.OK(settings, "render settings updated")
	})
}

func (s *Server) handleGetRenderSettings(ctx context.Context, _ protocol.EmptyParams) protocol.Response {
	return s.executor.Submit(ctx, func(ctx context.Context) protocol.Response {
		settings, err := s.engine.RenderSettings(ctx)
		if err != nil {
			return protocol.FailErr(err)
		}
		return protocol.OK(settings, "render settings")
	})
}

// recordRender appends a render to the history. Storage failures are logged
// by the store path and never fail the render itself.
func (s *Server) recordRender(ctx context.Context, clientID string, result engine.RenderResult) {
	rec := storage.RenderRecord{
		ID:         storage.NewRecordID(),
		ClientID:   clientID,
		OutputPath: result.OutputPath,
		Width:      result.Resolution[0],
		Height:     result.Resolution[1],
		Engine:     result.Engine,
		Seconds:    result.Seconds,
		CreatedAt:  time.Now(),
	}
	if err := s.store.RecordRender(ctx, rec); err != nil {
		s.logf("record render: %v", err)
	}
}
