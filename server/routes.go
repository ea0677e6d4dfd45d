package server

import (
	"context"
	"net/http"
	"time"

	"recipe-service/handlers"
	"recipe-service/images"
	"recipe-service/models"
	"recipe-service/routing"
	"recipe-service/store"
	"recipe-service/validation"

	"github.com/umakantv/go-utils/cache"
)

// Deps are the long-lived services the routes share
type Deps struct {
	Store    *store.Store
	Images   *images.Storage
	Cache    cache.Cache // optional token cache
	TokenTTL time.Duration
}

// NewRouter registers every endpoint of the service
func NewRouter(deps Deps) *routing.Router {
	tokens := newTokenAuth(deps.Store, deps.Cache, deps.TokenTTL)
	router := routing.New(tokens.checkAuth)

	validate := validation.New()
	userHandler := handlers.NewUserHandler(deps.Store, validate)
	tagHandler := handlers.NewTagHandler(deps.Store, validate)
	ingredientHandler := handlers.NewIngredientHandler(deps.Store, validate)
	recipeHandler := handlers.NewRecipeHandler(deps.Store, deps.Images, validate)

	router.Register(routing.Route{
		Name:     "HealthCheck",
		Method:   "GET",
		Path:     "/health",
		AuthType: routing.AuthNone,
	}, func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "recipe-service"}`))
	})

	// User
	router.Register(routing.Route{
		Name:     "CreateUser",
		Method:   "POST",
		Path:     "/api/user/create/",
		AuthType: routing.AuthNone,
	}, userHandler.CreateUser)

	router.Register(routing.Route{
		Name:     "CreateToken",
		Method:   "POST",
		Path:     "/api/user/token/",
		AuthType: routing.AuthNone,
	}, userHandler.CreateToken)

	router.Register(routing.Route{
		Name:     "GetMe",
		Method:   "GET",
		Path:     "/api/user/me/",
		AuthType: routing.AuthToken,
	}, userHandler.GetMe)

	router.Register(routing.Route{
		Name:     "UpdateMe",
		Method:   "PUT",
		Path:     "/api/user/me/",
		AuthType: routing.AuthToken,
	}, userHandler.UpdateMe)

	router.Register(routing.Route{
		Name:     "PatchMe",
		Method:   "PATCH",
		Path:     "/api/user/me/",
		AuthType: routing.AuthToken,
	}, userHandler.PatchMe)

	// Tags and ingredients share one shape
	registerTaxonomy(router, "Tag", "/api/recipe/tags/", tagHandler)
	registerTaxonomy(router, "Ingredient", "/api/recipe/ingredients/", ingredientHandler)

	// Recipes
	router.Register(routing.Route{
		Name:     "ListRecipes",
		Method:   "GET",
		Path:     "/api/recipe/recipes/",
		AuthType: routing.AuthToken,
	}, recipeHandler.ListRecipes)

	router.Register(routing.Route{
		Name:     "CreateRecipe",
		Method:   "POST",
		Path:     "/api/recipe/recipes/",
		AuthType: routing.AuthToken,
	}, recipeHandler.CreateRecipe)

	router.Register(routing.Route{
		Name:     "GetRecipe",
		Method:   "GET",
		Path:     "/api/recipe/recipes/{id:[0-9]+}/",
		AuthType: routing.AuthToken,
	}, recipeHandler.GetRecipe)

	router.Register(routing.Route{
		Name:     "UpdateRecipe",
		Method:   "PUT",
		Path:     "/api/recipe/recipes/{id:[0-9]+}/",
		AuthType: routing.AuthToken,
	}, recipeHandler.UpdateRecipe)

	router.Register(routing.Route{
		Name:     "PatchRecipe",
		Method:   "PATCH",
		Path:     "/api/recipe/recipes/{id:[0-9]+}/",
		AuthType: routing.AuthToken,
	}, recipeHandler.PatchRecipe)

	router.Register(routing.Route{
		Name:     "DeleteRecipe",
		Method:   "DELETE",
		Path:     "/api/recipe/recipes/{id:[0-9]+}/",
		AuthType: routing.AuthToken,
	}, recipeHandler.DeleteRecipe)

	router.Register(routing.Route{
		Name:     "UploadRecipeImage",
		Method:   "POST",
		Path:     "/api/recipe/recipes/{id:[0-9]+}/upload-image/",
		AuthType: routing.AuthToken,
	}, recipeHandler.UploadImage)

	// Uploaded files
	router.Mount(models.MediaURL, noSniff(http.StripPrefix(models.MediaURL, http.FileServer(http.Dir(deps.Images.Root())))))

	return router
}

// noSniff makes browsers trust the served Content-Type
func noSniff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}

func registerTaxonomy[T any](router *routing.Router, kind, path string, h *handlers.TaxonomyHandler[T]) {
	item := path + "{id:[0-9]+}/"

	router.Register(routing.Route{Name: "List" + kind + "s", Method: "GET", Path: path, AuthType: routing.AuthToken}, h.List)
	router.Register(routing.Route{Name: "Create" + kind, Method: "POST", Path: path, AuthType: routing.AuthToken}, h.Create)
	router.Register(routing.Route{Name: "Update" + kind, Method: "PUT", Path: item, AuthType: routing.AuthToken}, h.Update)
	router.Register(routing.Route{Name: "Patch" + kind, Method: "PATCH", Path: item, AuthType: routing.AuthToken}, h.Patch)
	router.Register(routing.Route{Name: "Delete" + kind, Method: "DELETE", Path: item, AuthType: routing.AuthToken}, h.Delete)
}
