package routes

import (
	"net/http"

	"inkpost/app/controllers"
	"inkpost/app/middleware"
	"inkpost/app/notify"
	"inkpost/app/services"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Auth       *services.AuthService
	Categories *services.CategoryService
	Posts      *services.PostService
	Tokens     middleware.TokenVerifier
	Hub        *notify.Hub
	// AllowedOrigins restricts websocket upgrades. Empty allows any origin.
	AllowedOrigins []string
	Log            logrus.FieldLogger
}

// New defines the application's routes and returns a router.
func New(deps Dependencies) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(controllers.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(controllers.MethodNotAllowed)

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(deps.Log))
	router.Use(middleware.Recoverer(deps.Log))
	router.Use(middleware.ContentTypeJSON)

	protected := middleware.RequireAuth(deps.Tokens)

	authController := controllers.NewAuthController(deps.Auth, deps.Log)
	categoryController := controllers.NewCategoryController(deps.Categories, deps.Log)
	postController := controllers.NewPostController(deps.Posts, deps.Log)

	router.HandleFunc("/healthz", controllers.Health).Methods("GET")
	router.Handle("/ws", notify.NewHandler(deps.Hub, deps.AllowedOrigins, deps.Log)).Methods("GET")

	// API routes are registered on the root router so a method mismatch
	// reaches MethodNotAllowedHandler instead of a subrouter's 404.

	// Auth API endpoints
	router.HandleFunc("/api/auth/register", authController.Register).Methods("POST")
	router.HandleFunc("/api/auth/login", authController.Login).Methods("POST")
	router.Handle("/api/auth/me", protected(http.HandlerFunc(authController.Me))).Methods("GET")

	// Categories API endpoints
	router.HandleFunc("/api/categories", categoryController.Index).Methods("GET")
	router.Handle("/api/categories", protected(http.HandlerFunc(categoryController.Create))).Methods("POST")

	// Posts API endpoints
	router.Handle("/api/posts/mine/count", protected(http.HandlerFunc(postController.CountMine))).Methods("GET")
	router.HandleFunc("/api/posts", postController.Index).Methods("GET")
	router.HandleFunc("/api/posts/{id:[0-9]+}", postController.Show).Methods("GET")
	router.Handle("/api/posts", protected(http.HandlerFunc(postController.Create))).Methods("POST")
	router.Handle("/api/posts/{id:[0-9]+}", protected(http.HandlerFunc(postController.Update))).Methods("PUT")
	router.Handle("/api/posts/{id:[0-9]+}", protected(http.HandlerFunc(postController.Delete))).Methods("DELETE")

	return router
}
