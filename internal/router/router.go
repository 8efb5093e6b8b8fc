package router

import (
	"github.com/gin-gonic/gin"

	"clipforge/internal/handler"
)

func SetupRouter(r *gin.Engine, hdl *handler.Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", hdl.Health)

		api.POST("/video", hdl.UploadVideo)
		api.GET("/video/:videoId/transcript", hdl.GetTranscript)
		api.POST("/video/:videoId/transcript", hdl.ImportTranscript)

		api.POST("/clip", hdl.CreateClip)
		api.GET("/clip/:jobId", hdl.GetJob)
		api.GET("/clips", hdl.ListJobs)
		api.POST("/clip/:jobId/cancel", hdl.CancelJob)
		api.GET("/clip/:jobId/download", hdl.DownloadClip)
		api.GET("/clip/:jobId/progress", hdl.ProgressSocket)

		api.POST("/moments/suggest", hdl.SuggestMoments)
	}
}
