package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resonate/cache"
	"resonate/config"
	"resonate/core/auth"
	"resonate/core/music"
	"resonate/core/social"
	"resonate/db"
	"resonate/logger"
	"resonate/repository"
	"resonate/storage"

	"github.com/gorilla/mux"
)

// Start initializes dependencies and runs the HTTP server until SIGINT
// or SIGTERM.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
	})

	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("failed to initialize MinIO", logger.ErrorField(err))
	}

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.InitDB(); err != nil {
		logger.Fatal("failed to initialize database schema", logger.ErrorField(err))
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("failed to connect gorm", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	userRepo := repository.NewMySQLUserRepository(db.DB)
	trackRepo := repository.NewMySQLTrackRepository(db.DB)
	commentRepo := repository.NewMySQLCommentRepository(db.DB)
	repostRepo := repository.NewMySQLRepostRepository(db.DB)
	friendRepo := repository.NewMySQLFriendRepository(db.DB)
	messageRepo := repository.NewGormMessageRepository(db.GormDB)
	notificationRepo := repository.NewGormNotificationRepository(db.GormDB)

	objectStore := storage.NewMinioStore(storage.GetMinioClient(), cfg.MinioBucket, cfg.MinioPublicURL)
	feedCache := cache.NewFeedCache(db.RedisClient, cfg.FeedCacheTTL)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	notificationService := social.NewNotificationService(notificationRepo, db.RedisClient)
	userService := auth.NewUserService(userRepo, tokens, objectStore, cfg.UserSearchLimit)
	trackService := music.NewTrackService(
		trackRepo, commentRepo, objectStore, feedCache, notificationService,
		cfg.PublicFeedLimit, cfg.CommentRateLimit, cfg.CommentRateWindow)
	repostService := music.NewRepostService(repostRepo, trackRepo)
	friendService := social.NewFriendService(friendRepo, userRepo, notificationService)
	messageService := social.NewMessageService(messageRepo, userRepo, notificationService)

	h := NewAPIHandler(
		userService, trackService, repostService,
		friendService, messageService, notificationService,
		tokens, cfg)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// Auth
	router.HandleFunc("/api/auth/register", h.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/me", h.AuthMiddleware(h.MeHandler)).Methods(http.MethodGet)

	// Users
	router.HandleFunc("/api/users/search", h.SearchUsersHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{username}", h.GetUserHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{id:[0-9]+}/tracks", h.OptionalAuthMiddleware(h.UserTracksHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/users/{id:[0-9]+}/reposts", h.UserRepostsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/profile", h.AuthMiddleware(h.UpdateProfileHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/profile/avatar", h.AuthMiddleware(h.UploadAvatarHandler)).Methods(http.MethodPost)

	// Tracks
	router.HandleFunc("/api/tracks", h.PublicFeedHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks", h.AuthMiddleware(h.UploadTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/search", h.SearchTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/slug/{slug}", h.GetTrackBySlugHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{id}", h.GetTrackHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{id}", h.AuthMiddleware(h.UpdateTrackHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/tracks/{id}", h.AuthMiddleware(h.DeleteTrackHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/tracks/{id}/like", h.AuthMiddleware(h.ToggleLikeHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{id}/play", h.PlayHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{id}/comments", h.GetCommentsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{id}/comments", h.AuthMiddleware(h.AddCommentHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{id}/repost", h.AuthMiddleware(h.CreateRepostHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{id}/repost", h.AuthMiddleware(h.DeleteRepostHandler)).Methods(http.MethodDelete)

	// Friends
	router.HandleFunc("/api/friends", h.AuthMiddleware(h.FriendsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/friends/requests", h.AuthMiddleware(h.PendingFriendRequestsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/friends/requests", h.AuthMiddleware(h.SendFriendRequestHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/friends/requests/{id}/accept", h.AuthMiddleware(h.AcceptFriendRequestHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/friends/requests/{id}/decline", h.AuthMiddleware(h.DeclineFriendRequestHandler)).Methods(http.MethodPost)

	// Messages
	router.HandleFunc("/api/messages", h.AuthMiddleware(h.SendMessageHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/messages/conversations", h.AuthMiddleware(h.ConversationsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/messages/conversations/{id}", h.AuthMiddleware(h.ConversationHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/messages/conversations/{id}/read", h.AuthMiddleware(h.MarkConversationReadHandler)).Methods(http.MethodPost)

	// Notifications
	router.HandleFunc("/api/notifications", h.AuthMiddleware(h.NotificationsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/notifications/unread", h.AuthMiddleware(h.UnreadNotificationCountHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/notifications/read-all", h.AuthMiddleware(h.MarkAllNotificationsReadHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/notifications/{id}/read", h.AuthMiddleware(h.MarkNotificationReadHandler)).Methods(http.MethodPost)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}
	logger.Info("server stopped")
}

// corsMiddleware allows browser clients from any origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
