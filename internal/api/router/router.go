package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mmarau-music/backend/config"
	"mmarau-music/backend/internal/api/handler"
	"mmarau-music/backend/internal/api/middleware"
	"mmarau-music/backend/pkg/redis"
)

// 写接口限流参数：同一 IP 每分钟最多 60 次写操作
const (
	writeRateLimit  = 60
	writeRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	limited := middleware.RateLimit(rdb, writeRateLimit, writeRateWindow)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 牧者模块
		ministers := v1.Group("/ministers")
		{
			ministers.GET("", h.Minister.ListMinisters)
			ministers.GET("/availability", h.Minister.ListAvailability)
			ministers.GET("/:id", h.Minister.GetMinister)
			ministers.POST("", limited, h.Minister.CreateMinister)
			ministers.PUT("/:id", limited, h.Minister.UpdateMinister)
			ministers.PUT("/:id/deactivate", limited, h.Minister.DeactivateMinister)
			ministers.DELETE("/:id", limited, h.Minister.DeleteMinister)
		}

		// 学期模块
		semesters := v1.Group("/semesters")
		{
			semesters.GET("", h.Semester.ListSemesters)
			semesters.GET("/current", h.Semester.GetCurrentSemester)
			semesters.GET("/:id", h.Semester.GetSemester)
			semesters.POST("", limited, h.Semester.CreateSemester)
			semesters.PUT("/:id", limited, h.Semester.UpdateSemester)
			semesters.PUT("/:id/activate", limited, h.Semester.ActivateSemester)
			semesters.PUT("/:id/deactivate", limited, h.Semester.DeactivateSemester)
			semesters.DELETE("/:id", limited, h.Semester.DeleteSemester)
		}

		// 礼拜场次模块
		services := v1.Group("/services")
		{
			services.GET("", h.Service.ListServices)
			services.GET("/:id", h.Service.GetService)
			services.POST("", limited, h.Service.CreateService)
			services.PUT("/:id", limited, h.Service.UpdateService)
			services.DELETE("/:id", limited, h.Service.DeleteService)
		}

		// 分析模块（只读）
		analytics := v1.Group("/analytics")
		{
			analytics.GET("/ministers/total", h.Analytics.TotalMinisters)
			analytics.GET("/ministers/gender", h.Analytics.GroupByGender)
			analytics.GET("/ministers/rank", h.Analytics.RankAll)
			analytics.GET("/ministers/rank/gender", h.Analytics.RankByGender)
			analytics.GET("/semesters/:id/ministers", h.Analytics.MinisterStats)
			analytics.GET("/semesters/:id/services/count", h.Analytics.SemesterServiceCount)
		}

		// 导出与日历订阅模块
		export := v1.Group("/export")
		{
			export.GET("/roster", h.Export.ExportRoster)
			export.GET("/calendar/:id", h.Export.CalendarFeed)
		}
	}

	return r
}
