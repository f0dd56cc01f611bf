package server

import (
	"app/internal/handler"
	"app/internal/realtime"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Depsはルーティングに必要な部品一式
type Deps struct {
	Auth       *handler.AuthHandler
	Activities *handler.ActivityHandler
	Profiles   *handler.ProfileHandler
	Gateway    *realtime.Gateway
	Tokens     *usecase.TokenService

	ClientOrigin string
}

// Newはechoを組み立てて返す（起動はmain側）
func New(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{deps.ClientOrigin},
		AllowCredentials: true,
	}))

	RegisterRoutes(e, deps)
	return e
}
