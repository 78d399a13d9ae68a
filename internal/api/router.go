package api

import (
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"nearmex/internal/auth"
	"nearmex/internal/config"
	"nearmex/internal/destination"
	"nearmex/internal/favorite"
	"nearmex/internal/mail"
	"nearmex/internal/metrics"
	redisdb "nearmex/internal/redis"
	"nearmex/internal/reset"
	"nearmex/internal/review"
	"nearmex/internal/user"
)

// Deps is everything the HTTP layer needs, built once at startup.
type Deps struct {
	Config       *config.Config
	Logger       *logrus.Logger
	Metrics      *metrics.Metrics
	Notifier     mail.Notifier
	Users        *user.Store
	Hasher       *user.Hasher
	Issuer       *auth.TokenIssuer
	Resets       *reset.Manager
	Destinations *destination.Store
	Reviews      *review.Store
	Favorites    *favorite.Store
}

// NewDeps wires the stores and the auth core. rdb may be nil, which disables
// the forgot-password throttle. m may be nil.
func NewDeps(cfg *config.Config, logger *logrus.Logger, conn *gorm.DB, rdb *redis.Client,
	notifier mail.Notifier, m *metrics.Metrics) *Deps {
	users := user.NewStore(conn)
	hasher := user.NewHasher(cfg.Auth.BcryptCost)
	throttle := redisdb.NewThrottle(rdb, "forgot-password", cfg.Auth.ResetRequestsPerHour, time.Hour)
	return &Deps{
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Notifier: notifier,
		Users:    users,
		Hasher:   hasher,
		Issuer:   auth.NewTokenIssuer(cfg.Server.JWTSecret, cfg.Auth.TokenTTL),
		Resets: reset.NewManager(users, hasher, notifier, logger, cfg.Auth.ResetTTL, cfg.Server.FrontendURL,
			reset.WithThrottle(throttle), reset.WithMetrics(m)),
		Destinations: destination.NewStore(conn),
		Reviews:      review.NewStore(conn),
		Favorites:    favorite.NewStore(conn),
	}
}

func frontendOrigin(frontendURL string) string {
	u, err := url.Parse(frontendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func SetupRouter(d *Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(d.Logger), CORS(frontendOrigin(d.Config.Server.FrontendURL)))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}
	subpath := d.Config.Server.Subpath // always starts with '/'

	session := auth.AuthMiddleware(d.Issuer)
	admin := auth.RequireAdmin()

	r.GET("/", rootHandler)

	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		if d.Metrics != nil {
			group.GET("/metrics", d.Metrics.Handler())
		}

		// Setup: only if no users
		group.POST("/setup", SetupHandler(d.Users, d.Hasher))

		// Auth
		group.POST("/auth/register", RegisterHandler(d.Users, d.Hasher, d.Metrics))
		group.POST("/auth/login", LoginHandler(d.Users, d.Hasher, d.Issuer, d.Metrics))
		group.GET("/auth/profile", session, GetProfileHandler(d.Users))
		group.PUT("/auth/profile", session, UpdateProfileHandler(d.Users))
		group.POST("/auth/forgot-password", ForgotPasswordHandler(d.Resets))
		group.POST("/auth/reset-password", ResetPasswordHandler(d.Resets))

		// Admin: users
		group.GET("/admin/users", session, admin, ListUsersHandler(d.Users))
		group.PUT("/admin/users/:id/role", session, admin, SetUserRoleHandler(d.Users))

		// Destinations
		group.GET("/destinations", ListDestinationsHandler(d.Destinations))
		group.GET("/destinations/:id", GetDestinationHandler(d.Destinations))
		group.POST("/destinations", session, admin, CreateDestinationHandler(d.Destinations))
		group.PUT("/destinations/:id", session, admin, UpdateDestinationHandler(d.Destinations))
		group.DELETE("/destinations/:id", session, admin, DeleteDestinationHandler(d.Destinations))

		// Reviews
		group.GET("/reviews/user", session, ListMyReviewsHandler(d.Reviews))
		group.GET("/reviews/:destinationId", ListReviewsHandler(d.Reviews))
		group.POST("/reviews", session, CreateReviewHandler(d.Reviews))
		group.PUT("/reviews/:id", session, UpdateReviewHandler(d.Reviews))
		group.DELETE("/reviews/:id", session, DeleteReviewHandler(d.Reviews))
		group.DELETE("/reviews/admin/:id", session, admin, AdminDeleteReviewHandler(d.Reviews, d.Notifier, d.Metrics))

		// Favorites
		group.GET("/favorites", session, ListFavoritesHandler(d.Favorites))
		group.GET("/favorites/ids", session, FavoriteIDsHandler(d.Favorites))
		group.POST("/favorites", session, AddFavoriteHandler(d.Favorites))
		group.DELETE("/favorites/:destinationId", session, RemoveFavoriteHandler(d.Favorites))
	}
	return r
}
