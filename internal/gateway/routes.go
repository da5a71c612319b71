package gateway

import (
	"context"
	"net/http"

	"github.com/soyeahso/adlad/internal/ad"
	"github.com/soyeahso/adlad/internal/coordinator"
	"github.com/soyeahso/adlad/internal/plugin"
	"github.com/soyeahso/adlad/internal/store"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// registerHTTPRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("/", handleNotFound)
}

// registerRPCHandlers sets up all RPC method handlers.
func (s *Server) registerRPCHandlers() {
	s.Handle("health", s.rpcHealth)
	s.Handle("ads.show", s.rpcShow)
	s.Handle("ads.showFullScreen", s.showKind(ad.KindFullScreen))
	s.Handle("ads.showRewarded", s.showKind(ad.KindRewarded))
	s.Handle("ads.status", s.rpcStatus)
	s.Handle("ads.history", s.rpcHistory)
	s.Handle("gameplay.start", s.lifecycle((*coordinator.Coordinator).GameplayStart))
	s.Handle("gameplay.stop", s.lifecycle((*coordinator.Coordinator).GameplayStop))
	s.Handle("load.start", s.lifecycle((*coordinator.Coordinator).LoadStart))
	s.Handle("load.stop", s.lifecycle((*coordinator.Coordinator).LoadStop))
	s.Handle("plugins.list", s.rpcPluginsList)
}

func (s *Server) rpcHealth(rc *RequestContext) {
	rc.Respond(HealthResponse{
		Status:       "ok",
		Version:      s.version,
		Clients:      s.clients.Count(),
		ActivePlugin: s.coord.ActivePlugin(),
		UptimeMs:     s.Uptime().Milliseconds(),
	})
}

type showParams struct {
	Kind string `json:"kind"`
}

func (s *Server) rpcShow(rc *RequestContext) {
	var p showParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError("invalid_params", err.Error())
		return
	}
	kind, err := ad.ParseKind(p.Kind)
	if err != nil {
		rc.RespondError("invalid_params", err.Error())
		return
	}
	s.show(rc, kind)
}

func (s *Server) showKind(kind ad.Kind) RequestHandler {
	return func(rc *RequestContext) {
		s.show(rc, kind)
	}
}

// show claims the playing flag on the read goroutine and answers from a
// separate goroutine once the ad has finished, so the connection keeps
// serving requests while the ad is on screen.
func (s *Server) show(rc *RequestContext, kind ad.Kind) {
	result := s.coord.ShowAdAsync(rc.Client.Context(), kind)
	go func() {
		rc.Respond(<-result)
	}()
}

func (s *Server) rpcStatus(rc *RequestContext) {
	rc.Respond(s.coord.Status())
}

type historyParams struct {
	Limit int `json:"limit"`
}

// HistoryResponse is the payload of ads.history.
type HistoryResponse struct {
	Records []store.AdRecord `json:"records"`
	Stats   store.Stats      `json:"stats"`
}

func (s *Server) rpcHistory(rc *RequestContext) {
	if s.history == nil {
		rc.RespondError("unavailable", "ad history is not enabled")
		return
	}

	p := historyParams{Limit: defaultHistoryLimit}
	if err := rc.Params(&p); err != nil {
		rc.RespondError("invalid_params", err.Error())
		return
	}
	if p.Limit <= 0 {
		p.Limit = defaultHistoryLimit
	}
	p.Limit = min(p.Limit, maxHistoryLimit)

	ctx := rc.Client.Context()
	records, err := s.history.Recent(ctx, p.Limit)
	if err != nil {
		rc.RespondError("internal_error", err.Error())
		return
	}
	stats, err := s.history.Stats(ctx)
	if err != nil {
		rc.RespondError("internal_error", err.Error())
		return
	}
	if records == nil {
		records = []store.AdRecord{}
	}
	rc.Respond(HistoryResponse{Records: records, Stats: stats})
}

// lifecycle adapts a coordinator notification into an RPC handler that
// answers with the resulting status.
func (s *Server) lifecycle(notify func(*coordinator.Coordinator, context.Context)) RequestHandler {
	return func(rc *RequestContext) {
		notify(s.coord, rc.Client.Context())
		rc.Respond(s.coord.Status())
	}
}

// PluginsResponse is the payload of plugins.list.
type PluginsResponse struct {
	Active  string        `json:"active"`
	Plugins []plugin.Info `json:"plugins"`
}

func (s *Server) rpcPluginsList(rc *RequestContext) {
	resp := PluginsResponse{Active: s.coord.ActivePlugin(), Plugins: []plugin.Info{}}
	if s.plugins != nil {
		resp.Plugins = s.plugins.Info()
	}
	rc.Respond(resp)
}
