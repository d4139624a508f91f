package kernel

import (
	"net/http"
	"time"

	"github.com/reflaxess123/obedi/app/controllers"
	"github.com/reflaxess123/obedi/app/routes"
	"github.com/reflaxess123/obedi/config"
	"github.com/reflaxess123/obedi/pkg/metrics"
	"github.com/reflaxess123/obedi/pkg/middleware"
	"github.com/reflaxess123/obedi/pkg/reqid"
	"github.com/reflaxess123/obedi/pkg/response"
	"github.com/reflaxess123/obedi/pkg/router"
	"github.com/reflaxess123/obedi/pkg/storage"
)

// Router builds the route table with the global middleware stack.
func (k *Kernel) Router() *router.Router {
	r := router.New()

	// outermost first: metrics see total latency, recovery guards the
	// rest, request ids exist before anything logs
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(config.FrontendOrigins())))
	r.Use(middleware.RateLimit(300, time.Minute))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]bool{"alive": true})
	})
	r.Get("/metrics", "metrics", metrics.Handler())

	if local, ok := k.Disk.(*storage.LocalDisk); ok {
		r.Mount("/static", "static", http.StripPrefix("/static", http.FileServer(http.Dir(local.Root()))))
	}

	routes.RegisterAPI(r, routes.Controllers{
		Auth:    controllers.NewAuthController(k.Auth, config.IsProduction(), int(k.Tokens.RefreshTTL().Seconds())),
		Users:   controllers.NewUserController(k.Users),
		Lunches: controllers.NewLunchController(k.Lunches, config.MaxUploadBytes()),
		Orders:  controllers.NewOrderController(k.Orders),
	}, k.Tokens)

	return r
}

// Handler is Router as an http.Handler.
func (k *Kernel) Handler() http.Handler {
	return k.Router().Handler()
}
