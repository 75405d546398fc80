//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/Isaac-1-lang/Ecommerce/internal/config"
)

func InitializeApplication(cfg *config.Config) (*Application, func(), error) {
	wire.Build(AppSet)
	return nil, nil, nil
}
