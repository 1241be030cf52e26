package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	Auth        *AuthHandler
	Users       *UserHandler
	Events      *EventHandler
	Attendances *AttendanceHandler
	Equipments  *EquipmentHandler
	Meals       *MealHandler
	MealChoices *MealChoiceHandler

	// Middleware wraps every route; Authenticator wraps everything except
	// login and signup.
	Middleware    []func(http.Handler) http.Handler
	Authenticator func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	router := chi.NewRouter()
	for _, middleware := range cfg.Middleware {
		if middleware != nil {
			router.Use(middleware)
		}
	}

	if cfg.Auth != nil {
		router.Post("/login/access-token", cfg.Auth.Login)
	}
	if cfg.Users != nil {
		router.Post("/users/signup", cfg.Users.Signup)
	}

	router.Group(func(protected chi.Router) {
		if cfg.Authenticator != nil {
			protected.Use(cfg.Authenticator)
		}

		if cfg.Users != nil {
			protected.Route("/users", func(r chi.Router) {
				r.Get("/", cfg.Users.List)
				r.Post("/", cfg.Users.Create)
				r.Get("/me", cfg.Users.Me)
				r.Patch("/me", cfg.Users.UpdateMe)
				r.Get("/{id}", cfg.Users.Get)
				r.Put("/{id}", cfg.Users.Update)
				r.Delete("/{id}", cfg.Users.Delete)
			})
		}

		if cfg.Events != nil {
			protected.Route("/events", func(r chi.Router) {
				r.Get("/", cfg.Events.List)
				r.Post("/", cfg.Events.Create)
				r.Get("/{id}", cfg.Events.Get)
				r.Put("/{id}", cfg.Events.Update)
				r.Delete("/{id}", cfg.Events.Delete)
			})
		}

		if cfg.Attendances != nil {
			protected.Route("/attendance", func(r chi.Router) {
				r.Get("/my-events", cfg.Attendances.MyEvents)
				r.Get("/my-packing-lists", cfg.Attendances.MyPackingLists)
				r.Post("/{event_id}/join", cfg.Attendances.Join)
				r.Post("/{event_id}/leave", cfg.Attendances.Leave)
				r.Get("/{event_id}/packing-list", cfg.Attendances.PackingList)
			})
		}

		if cfg.Equipments != nil {
			protected.Route("/equipments", func(r chi.Router) {
				r.Get("/", cfg.Equipments.List)
				r.Post("/", cfg.Equipments.Create)
				r.Get("/events/{event_id}/packing", cfg.Equipments.ListPacking)
				r.Post("/events/{event_id}/packing", cfg.Equipments.AddPacking)
				r.Get("/{id}", cfg.Equipments.Get)
				r.Put("/{id}", cfg.Equipments.Update)
				r.Delete("/{id}", cfg.Equipments.Delete)
			})
		}

		if cfg.Meals != nil {
			protected.Route("/meals", func(r chi.Router) {
				r.Get("/", cfg.Meals.List)
				r.Post("/", cfg.Meals.Create)
				r.Get("/{id}", cfg.Meals.Get)
				r.Put("/{id}", cfg.Meals.Update)
				r.Delete("/{id}", cfg.Meals.Delete)
			})
		}

		if cfg.MealChoices != nil {
			protected.Route("/meal-choices", func(r chi.Router) {
				r.Get("/", cfg.MealChoices.List)
				r.Post("/", cfg.MealChoices.Create)
				r.Get("/{id}", cfg.MealChoices.Get)
				r.Put("/{id}", cfg.MealChoices.Update)
				r.Delete("/{id}", cfg.MealChoices.Delete)
			})
		}
	})

	return router
}
