package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"FriendCall/config"
	"FriendCall/internal/auth"
	"FriendCall/internal/game/engine"
	"FriendCall/internal/game/manager"
	"FriendCall/internal/middleware"
	"FriendCall/internal/session"
	"FriendCall/internal/storage"
	"FriendCall/internal/utils"
	"FriendCall/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	config.Load("config/config.yaml")
	utils.Init(config.C.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//-------------------------------------------------------
	// 1. 座位绑定：Redis 或内存
	//-------------------------------------------------------
	var seats session.Repo
	if config.C.Redis.Enabled {
		rdb, err := storage.InitRedis(ctx, config.C.Redis.Addr, config.C.Redis.Password, config.C.Redis.DB)
		if err != nil {
			utils.Log.Fatal("redis init failed", "err", err)
		}
		defer rdb.Close()
		seats = session.NewRedisRepo(rdb)
		utils.Log.Info("seat bindings in redis", "addr", config.C.Redis.Addr)
	} else {
		seats = session.NewMemoryRepo()
		utils.Log.Warn("redis disabled, seat bindings kept in memory")
	}

	tokens, err := auth.NewIssuer(config.C.Seat.Secret, config.C.Seat.TTL)
	if err != nil {
		utils.Log.Fatal("seat token issuer", "err", err)
	}

	//-------------------------------------------------------
	// 2. 初始化 Gin + CORS
	//-------------------------------------------------------
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	//-------------------------------------------------------
	// 3. 初始化 Hub（必须最先启动）
	//-------------------------------------------------------
	hub := websocket.NewHub()

	//-------------------------------------------------------
	// 4. 初始化 GameManager
	//-------------------------------------------------------
	gameMgr := manager.NewGameManager(hub, seats, tokens, manager.Options{
		Rules: engine.Rules{
			RedealOnAllPass:     config.C.Rules.RedealOnAllPass,
			ForbidTopCardFriend: config.C.Rules.ForbidTopCardFriend,
		},
		Seed:         config.C.Game.Seed,
		ActionBuffer: config.C.Game.ActionBuffer,
		Retention:    config.C.Game.Retention,
		SeatTTL:      config.C.Seat.TTL,
	})
	hub.OnIncoming = gameMgr.HandlePlayerMessage
	hub.OnPresence = gameMgr.HandlePresence
	go hub.Run()
	go gameMgr.RunJanitor(ctx, config.C.Game.CleanupInterval)

	//-------------------------------------------------------
	// 5. 路由
	//-------------------------------------------------------
	seat := middleware.SeatAuth(tokens, seats)
	manager.NewHandler(gameMgr).Register(r, seat)
	r.GET("/ws", seat, websocket.ServeWS(hub))

	//-------------------------------------------------------
	// 6. 启动服务器
	//-------------------------------------------------------
	srv := &http.Server{Addr: config.C.Server.Port, Handler: r}
	go func() {
		utils.Log.Info("server running", "addr", config.C.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Log.Fatal("listen", "err", err)
		}
	}()

	<-ctx.Done()
	utils.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Log.Error("server shutdown", "err", err)
	}
	gameMgr.Close()
	hub.Close()
}
