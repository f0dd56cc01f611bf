package server

import (
	"app/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(e *echo.Echo, deps Deps) {
	authRequired := middleware.AuthJWT(deps.Tokens)

	account := e.Group("/api/account")
	account.POST("/login", deps.Auth.Login)
	account.POST("/register", deps.Auth.Register)
	account.POST("/verifyEmail", deps.Auth.VerifyEmail)
	account.GET("/resendEmailConfirmationLink", deps.Auth.ResendEmailConfirmationLink)
	account.POST("/fbLogin", deps.Auth.FacebookLogin)
	// 期限切れのaccess tokenではrefreshさせない（authRequiredが弾く）
	account.POST("/refreshToken", deps.Auth.Refresh, authRequired)
	account.POST("/logout", deps.Auth.Logout, authRequired)
	account.GET("", deps.Auth.CurrentUser, authRequired)

	activities := e.Group("/api/activities", authRequired)
	activities.GET("", deps.Activities.List)
	activities.POST("", deps.Activities.Create)
	activities.GET("/:id", deps.Activities.Get)
	activities.PUT("/:id", deps.Activities.Update)
	activities.DELETE("/:id", deps.Activities.Delete)
	activities.POST("/:id/attend", deps.Activities.Attend)
	activities.GET("/:id/comments", deps.Activities.ListComments)

	profiles := e.Group("/api/profiles", authRequired)
	profiles.GET("/:username", deps.Profiles.Get)
	profiles.PUT("", deps.Profiles.Update)
	profiles.POST("/:username/follow", deps.Profiles.FollowToggle)
	profiles.GET("/:username/follow", deps.Profiles.ListFollowings)

	// websocketはヘッダでtokenを運べないのでquery parameter認証（gateway側で検証）
	e.GET("/chat", echo.WrapHandler(deps.Gateway))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
