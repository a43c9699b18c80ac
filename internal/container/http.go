package container

import (
	"context"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyjia/asset-console/internal/application/port"
	"github.com/garyjia/asset-console/internal/infrastructure/persistence/collection"
	httpapi "github.com/garyjia/asset-console/internal/interfaces/http"
)

// HTTPServer builds the API server on top of a started container
func (c *Container) HTTPServer() *httpapi.Server {
	cfg := c.config.Server
	return httpapi.NewServer(httpapi.ServerConfig{
		Host:         cfg.Host,
		Port:         cfg.Port,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, httpapi.Dependencies{
		Workflow:   c.services.Workflow,
		Records:    c.services.Records,
		Configs:    c.services.Configs,
		Router:     c.router,
		Translator: c.catalog,
		MasterData: map[string]port.RecordRepository{
			"buildings": collection.Erase(c.registry.Buildings),
			"vendors":   collection.Erase(c.registry.Vendors),
		},
		Health: func(ctx context.Context) (interface{}, bool) {
			h := c.Health(ctx)
			return h, h.Overall
		},
		Metrics: promhttp.HandlerFor(c.promReg, promhttp.HandlerOpts{}),
		Clock:   c.opts.clock,
	}, c.ServiceLogger())
}
