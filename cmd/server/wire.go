//go:build wireinject

package main

import (
	"jan-server/services/proposal-api/internal/domain"
	"jan-server/services/proposal-api/internal/infrastructure"
	"jan-server/services/proposal-api/internal/interfaces"
	"jan-server/services/proposal-api/internal/interfaces/httpserver/routes"

	"github.com/google/wire"
)

func CreateApplication() (*Application, error) {
	wire.Build(
		domain.ServiceProvider,
		infrastructure.InfrastructureProvider,
		routes.RouteProvider,
		interfaces.InterfacesProvider,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
