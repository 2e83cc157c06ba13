package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// SetupCatalogRoutes injects the catalog and login endpoints. Mutating
// endpoints ride the protected chain which enforces the bearer token.
func (api *APIHandler) SetupCatalogRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.GET("/", m.public(api.Index))
	router.GET("/status", m.public(api.Status))
	router.POST("/token", m.public(api.Login))
	router.POST("/books/new", m.protected(api.CreateBook))
	router.PUT("/books/update", m.protected(api.UpdateBook))
	router.DELETE("/books/delete", m.protected(api.DeleteBook))
	router.GET("/books/:author", m.public(api.GetAuthorBooks))
	router.ServeFiles("/static/*filepath", http.Dir(api.config.Server.StaticDir))
	return router
}
