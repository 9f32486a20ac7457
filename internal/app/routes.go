package app

import (
	"github.com/gin-gonic/gin"
	"github.com/inkwell-cms/core/internal/middleware"
	"github.com/inkwell-cms/core/internal/models"
	"github.com/inkwell-cms/core/internal/modules/auth"
	"github.com/inkwell-cms/core/internal/modules/content/category"
	"github.com/inkwell-cms/core/internal/modules/content/hydrate"
	"github.com/inkwell-cms/core/internal/modules/content/post"
	"github.com/inkwell-cms/core/internal/modules/content/search"
	"github.com/inkwell-cms/core/internal/modules/content/tag"
	"github.com/inkwell-cms/core/internal/modules/user"
	pkgredis "github.com/inkwell-cms/core/internal/pkg/redis"
	"github.com/inkwell-cms/core/internal/pkg/response"
	"github.com/inkwell-cms/core/internal/repository"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "")
	})
	r.NoMethod(func(c *gin.Context) {
		response.BadRequest(c, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	posts := repository.NewPostRepository(a.db)
	users := repository.NewUserRepository(a.db)
	categories := repository.NewCategoryRepository(a.db)
	tags := repository.NewTagRepository(a.db)

	hydrator := hydrate.New(users, categories, tags)

	authMW := middleware.Auth(users)
	optionalAuthMW := middleware.OptionalAuth(users)
	writerMW := middleware.RequireRole(models.RoleAuthor, models.RoleAdmin)
	adminMW := middleware.RequireRole(models.RoleAdmin)

	api := r.Group("/api")

	authSvc := auth.NewService(users, rc, a.cfg, a.logger)
	auth.NewHandler(authSvc).RegisterRoutes(api)

	userSvc := user.NewService(users)
	user.NewHandler(userSvc).RegisterRoutes(api, authMW)

	postSvc := post.NewService(posts, categories, tags, hydrator, a.logger)
	post.NewHandler(postSvc).RegisterRoutes(api, authMW, writerMW, optionalAuthMW)

	searchSvc := search.NewService(posts, hydrator)
	search.NewHandler(searchSvc).RegisterRoutes(api)

	categorySvc := category.NewService(categories, posts)
	category.NewHandler(categorySvc).RegisterRoutes(api, authMW, adminMW)

	tagSvc := tag.NewService(tags)
	tag.NewHandler(tagSvc).RegisterRoutes(api, authMW, writerMW, adminMW)
}
