package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"friendship-service/internal/api/handlers"
	"friendship-service/internal/api/middleware"
)

type Router struct {
	engine            *gin.Engine
	friendshipHandler *handlers.FriendshipHandler
	messageHandler    *handlers.MessageHandler
	streamHandler     *handlers.StreamHandler
	wsHandler         *handlers.WSHandler
	presenceHandler   *handlers.PresenceHandler
	authMW            *middleware.AuthMiddleware
}

func NewRouter(
	friendshipHandler *handlers.FriendshipHandler,
	messageHandler *handlers.MessageHandler,
	streamHandler *handlers.StreamHandler,
	wsHandler *handlers.WSHandler,
	presenceHandler *handlers.PresenceHandler,
	jwtSecret string,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogAPI())

	return &Router{
		engine:            engine,
		friendshipHandler: friendshipHandler,
		messageHandler:    messageHandler,
		streamHandler:     streamHandler,
		wsHandler:         wsHandler,
		presenceHandler:   presenceHandler,
		authMW:            middleware.NewAuthMiddleware(jwtSecret),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.engine.Group("/api/v1")

	// Live channels authenticate upstream (gateway); identity rides in the
	// path/query, matching the streaming boundary contract.
	api.GET("/stream/:email", r.streamHandler.Stream)
	api.GET("/ws", r.wsHandler.HandleWebSocket)

	auth := api.Group("/")
	auth.Use(r.authMW.RequireAuth())
	{
		friendships := auth.Group("/friendships")
		{
			friendships.GET("", r.friendshipHandler.GetFriends)
			friendships.DELETE("", r.friendshipHandler.Unfriend)
			friendships.GET("/status", r.friendshipHandler.GetFriendship)
			friendships.POST("/requests", r.friendshipHandler.SendRequest)
			friendships.GET("/requests", r.friendshipHandler.GetRequests)
			friendships.POST("/requests/accept", r.friendshipHandler.AcceptRequest)
			friendships.POST("/requests/reject", r.friendshipHandler.RejectRequest)
		}

		messages := auth.Group("/messages")
		{
			messages.POST("", r.messageHandler.Send)
			messages.GET("", r.messageHandler.Conversation)
			messages.POST("/ack", r.messageHandler.Acknowledge)
			messages.POST("/attachments", r.messageHandler.UploadAttachment)
			messages.GET("/:id", r.messageHandler.Get)
			messages.DELETE("/:id", r.messageHandler.Delete)
		}

		presence := auth.Group("/presence")
		{
			presence.GET("/online", r.presenceHandler.Online)
			presence.GET("/:email", r.presenceHandler.Status)
		}
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
