package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-fuego/fuego"
	"github.com/go-fuego/fuego/option"
)

// Server represents the Fuego API server.
type Server struct {
	fuego     *fuego.Server
	resources []Resource
	port      int
}

// Config holds API server configuration.
type Config struct {
	Port        int
	Title       string
	Description string
	Version     string
	CORSOrigins []string
	StaticDir   string
}

// NewServer creates a new Fuego API server with a route group per
// managed entity type.
func NewServer(cfg *Config, resources []Resource) *Server {
	s := fuego.NewServer(
		fuego.WithAddr(fmt.Sprintf(":%d", cfg.Port)),
		fuego.WithEngineOptions(
			fuego.WithOpenAPIConfig(fuego.OpenAPIConfig{
				PrettyFormatJSON: true,
				JSONFilePath:     "openapi.json",
				SwaggerURL:       "/docs",
				SpecURL:          "/openapi.json",
				UIHandler: func(specURL string) http.Handler {
					return ScalarHandler(specURL, cfg.Title, cfg.Description)
				},
			}),
		),
	)

	// Set OpenAPI info
	s.OpenAPI.Description().Info.Title = cfg.Title
	s.OpenAPI.Description().Info.Description = cfg.Description
	s.OpenAPI.Description().Info.Version = cfg.Version

	// Add Chi middleware (Fuego is net/http compatible)
	fuego.Use(s, middleware.RequestID)
	fuego.Use(s, middleware.RealIP)
	fuego.Use(s, middleware.Logger)
	fuego.Use(s, middleware.Recoverer)

	if len(cfg.CORSOrigins) > 0 {
		fuego.Use(s, cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	srv := &Server{
		fuego:     s,
		resources: resources,
		port:      cfg.Port,
	}

	srv.registerRoutes()

	if cfg.StaticDir != "" {
		s.Mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return srv
}

func (s *Server) registerRoutes() {
	// Health check
	fuego.Get(s.fuego, "/health", s.healthCheck,
		option.Summary("Health Check"),
		option.Description("Returns the health status of the API"),
		option.Tags("System"),
	)

	// Entity type registry
	fuego.Get(s.fuego, "/api/v1/entities", s.listSchemas,
		option.Summary("List Entity Types"),
		option.Description("Returns field specifications for every managed entity type"),
		option.Tags("System"),
	)

	for _, res := range s.resources {
		s.registerResource(res)
	}
}

// registerResource mounts the CRUD and dialog routes for one entity type.
func (s *Server) registerResource(res Resource) {
	sch := res.Schema()
	group := fuego.Group(s.fuego, "/api/v1/"+sch.Entity,
		option.Tags(sch.Title),
	)

	fuego.Get(group, "/", s.listRecords(res),
		option.Summary("List "+sch.Title),
		option.Description("Returns the cached collection snapshot, newest records first"),
	)

	fuego.Post(group, "/", s.createRecord(res),
		option.Summary("Create "+sch.Title),
		option.Description("Validates the draft and inserts a new record"),
	)

	fuego.Get(group, "/{id}", s.getRecord(res),
		option.Summary("Get "+sch.Title),
		option.Description("Returns a single record by ID"),
	)

	fuego.Put(group, "/{id}", s.updateRecord(res),
		option.Summary("Update "+sch.Title),
		option.Description("Validates the draft and updates the record; identity and creation time are preserved"),
	)

	fuego.Delete(group, "/{id}", s.deleteRecord(res),
		option.Summary("Delete "+sch.Title),
		option.Description("Deletes a record"),
	)

	fuego.Post(group, "/refresh", s.refreshCollection(res),
		option.Summary("Refresh "+sch.Title),
		option.Description("Requests a background refetch of the collection"),
	)

	// Dialog controller
	fuego.Get(group, "/dialog", s.getDialog(res),
		option.Summary("Get Dialog State"),
		option.Description("Returns the create/edit dialog state for this entity type"),
	)

	fuego.Post(group, "/dialog/create", s.openCreateDialog(res),
		option.Summary("Open Create Dialog"),
		option.Description("Opens the create dialog with schema defaults; fails if a dialog is already open"),
	)

	fuego.Post(group, "/dialog/edit/{id}", s.openEditDialog(res),
		option.Summary("Open Edit Dialog"),
		option.Description("Opens the edit dialog pre-filled from the stored record; fails if a dialog is already open"),
	)

	fuego.Post(group, "/dialog/cancel", s.cancelDialog(res),
		option.Summary("Cancel Dialog"),
		option.Description("Closes the dialog and discards the draft"),
	)

	fuego.Post(group, "/dialog/submit", s.submitDialog(res),
		option.Summary("Submit Dialog"),
		option.Description("Runs the mutation for the open dialog; the dialog closes only on success"),
	)
}

// Start starts the API server.
func (s *Server) Start() error {
	return s.fuego.Run()
}

// Mux returns the underlying ServeMux for mounting additional routes.
func (s *Server) Mux() *http.ServeMux {
	return s.fuego.Mux
}
