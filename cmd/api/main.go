package main

import (
	"log/slog"
	"net/url"
	"os"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	"app/internal/infra/email"
	"app/internal/infra/facebook"
	infraRepo "app/internal/infra/repository"
	"app/internal/realtime"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/joho/godotenv"
)

func main() {
	// .envはあれば読む（本番は環境変数のみ）
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	// 署名キー不備はここで落とす（リクエスト毎に失敗させない）
	tokens, err := usecase.NewTokenService(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		log.Error("token service init failed", "err", err)
		os.Exit(1)
	}

	// DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Photo{},
		&model.RefreshToken{},
		&model.Activity{},
		&model.ActivityAttendee{},
		&model.Comment{},
		&model.UserFollowing{},
	); err != nil {
		log.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	// Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	activityRepo := infraRepo.NewActivityGormRepository(gormDB)
	commentRepo := infraRepo.NewCommentGormRepository(gormDB)
	followingRepo := infraRepo.NewFollowingGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	// 外部コラボレータ
	fbVerifier := facebook.NewClient(cfg.FacebookAppID, cfg.FacebookAppSecret)
	mailer := email.NewLogSender(log)

	// Usecase生成
	authUC := usecase.NewAuthUsecase(
		userRepo, rtRepo, tokens,
		validator.NewAuthValidator(),
		fbVerifier, mailer, log,
		cfg.ClientOrigin,
	)
	activityUC := usecase.NewActivityUsecase(activityRepo, txManager)
	commentUC := usecase.NewCommentUsecase(commentRepo, activityRepo, userRepo)
	profileUC := usecase.NewProfileUsecase(userRepo, followingRepo)

	// realtime
	hub := realtime.NewHub(log)
	gateway := realtime.NewGateway(log, hub, tokens, commentUC, originPatterns(cfg.ClientOrigin))

	// Handler生成
	authH := handler.NewAuthHandler(authUC, cfg.RefreshTTL, cfg.CookieSecure)
	activityH := handler.NewActivityHandler(activityUC, commentUC)
	profileH := handler.NewProfileHandler(profileUC)

	e := server.New(server.Deps{
		Auth:         authH,
		Activities:   activityH,
		Profiles:     profileH,
		Gateway:      gateway,
		Tokens:       tokens,
		ClientOrigin: cfg.ClientOrigin,
	})

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// websocket.Acceptのorigin検査に使うhostパターンを作る
func originPatterns(clientOrigin string) []string {
	u, err := url.Parse(clientOrigin)
	if err != nil || u.Host == "" {
		return []string{"localhost:*"}
	}
	return []string{u.Host}
}
