package routes

import (
	"net/http"

	"KinderTube/controllers"
	"KinderTube/jwt"
	"KinderTube/middlewares"
	"KinderTube/observability"
	"KinderTube/repositories"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, tokens *jwt.Manager, parents repositories.ParentRepository) {
	auth := middlewares.AuthMiddleware(tokens, parents)
	parentOnly := middlewares.RequireParent()
	childOnly := middlewares.RequireChild()
	adminOnly := middlewares.RequireAdmin()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", observability.Handler())
	// WebSocket только для родителя
	r.GET("/ws", auth, parentOnly, controllers.ServeWs)

	api := r.Group("/api")

	// Public routes
	api.POST("/auth/register", controllers.RegisterParent)
	api.POST("/auth/login/parent", controllers.LoginParent)
	api.POST("/auth/login/child", controllers.LoginChild)

	authed := api.Group("/auth", auth)
	{
		authed.GET("/me", controllers.Me)
		authed.GET("/session", controllers.SessionInfo)
		authed.PUT("/change-password", parentOnly, controllers.ChangePassword)
	}

	users := api.Group("/users", auth, parentOnly)
	{
		users.GET("/profile", controllers.Me)
		users.PUT("/profile", controllers.UpdateParent)
		users.PUT("/device-token", controllers.UpdateDeviceToken)
		users.GET("/stats", controllers.ParentStats)

		users.GET("", adminOnly, controllers.ListUsers)
		users.PUT("/:id/role", adminOnly, controllers.UpdateUserRole)
		users.DELETE("/:id", adminOnly, controllers.DeactivateUser)
		users.POST("/:id/test-notification", adminOnly, controllers.SendTestNotification)
	}

	children := api.Group("/children", auth)
	{
		// Детский режим
		children.POST("/request-video", childOnly, controllers.RequestVideo)
		children.GET("/approved-videos", childOnly, controllers.ApprovedVideos)
		children.GET("/my-requests", childOnly, controllers.MyRequests)
		children.POST("/search-history", childOnly, controllers.RecordSearch)
		children.POST("/watch-history", childOnly, controllers.RecordWatch)

		// Родитель
		children.GET("/pending-requests", parentOnly, controllers.PendingRequests)
		children.GET("", parentOnly, controllers.ListChildren)
		children.POST("", parentOnly, controllers.CreateChild)
		children.GET("/:id", parentOnly, controllers.ReadChild)
		children.PUT("/:id", parentOnly, controllers.UpdateChild)
		children.DELETE("/:id", parentOnly, controllers.DeleteChild)
		children.POST("/:id/request-video", parentOnly, controllers.RequestVideo)
		children.PUT("/:id/approve-video/:videoId", parentOnly, controllers.ResolveVideoRequest)
		children.DELETE("/:id/approved-video/:videoId", parentOnly, controllers.RevokeVideoApproval)
		children.GET("/:id/history", parentOnly, controllers.GetHistory)
		children.DELETE("/:id/search-history", parentOnly, controllers.ClearSearchHistory)
		children.DELETE("/:id/watch-history", parentOnly, controllers.ClearWatchHistory)
	}

	videos := api.Group("/videos", auth)
	{
		videos.GET("", parentOnly, controllers.ListVideos)
		videos.GET("/my-videos", parentOnly, controllers.MyVideos)
		videos.POST("", parentOnly, controllers.UploadVideo)
		videos.GET("/:id", parentOnly, controllers.GetVideo)
		videos.PUT("/:id", parentOnly, controllers.UpdateVideo)
		videos.DELETE("/:id", parentOnly, controllers.DeleteVideo)
		videos.POST("/:id/like", parentOnly, controllers.LikeVideo)
		videos.GET("/:id/comments", parentOnly, controllers.ListComments)
		videos.POST("/:id/comments", parentOnly, controllers.AddComment)
		// ребенку ссылка выдается только на одобренные видео
		videos.GET("/:id/stream", controllers.StreamVideo)
		videos.PUT("/:id/moderation", adminOnly, controllers.ModerateVideo)
	}
}
