// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/yarnswap/internal/platform/request"
	"github.com/taibuivan/yarnswap/internal/platform/respond"
	"github.com/taibuivan/yarnswap/internal/platform/validate"
)

// # Handler Implementation

// Handler exposes product creation and lookup over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a new product [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// pathKinds maps URL segments to variants. Singular discriminators are accepted too.
var pathKinds = map[string]Kind{
	"yarn":             KindYarn,
	"notions":          KindNotion,
	"notion":           KindNotion,
	"finished-objects": KindFinishedObject,
	"finished_object":  KindFinishedObject,
}

// Routes returns a [chi.Router] configured with the product endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/yarn", handler.createYarn)
	router.Post("/notions", handler.createNotion)
	router.Post("/finished-objects", handler.createFinishedObject)

	router.Put("/yarn/{id}", handler.updateYarn)
	router.Post("/yarn/filters", handler.filterYarn)

	router.Get("/finished-objects", handler.listFinishedObjects)
	router.Get("/finished-objects/by-size/{size}", handler.listBySize)
	router.Get("/{type}", handler.listByOwner)
	router.Get("/{type}/{id}", handler.getProduct)

	return router
}

func (handler *Handler) createYarn(writer http.ResponseWriter, request *http.Request) {
	var yarn Yarn
	if err := requestutil.DecodeJSON(request, &yarn); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateYarn(request.Context(), &yarn); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, &yarn)
}

func (handler *Handler) createNotion(writer http.ResponseWriter, request *http.Request) {
	var notion Notion
	if err := requestutil.DecodeJSON(request, &notion); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateNotion(request.Context(), &notion); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, &notion)
}

func (handler *Handler) createFinishedObject(writer http.ResponseWriter, request *http.Request) {
	var object FinishedObject
	if err := requestutil.DecodeJSON(request, &object); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateFinishedObject(request.Context(), &object); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, &object)
}

func (handler *Handler) updateYarn(writer http.ResponseWriter, request *http.Request) {
	productID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var yarn Yarn
	if err := requestutil.DecodeJSON(request, &yarn); err != nil {
		respond.Error(writer, request, err)
		return
	}
	yarn.ID = productID

	if err := handler.service.UpdateYarn(request.Context(), &yarn); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, &yarn)
}

func (handler *Handler) filterYarn(writer http.ResponseWriter, request *http.Request) {
	var filter YarnFilter
	if err := requestutil.DecodeJSON(request, &filter); err != nil {
		respond.Error(writer, request, err)
		return
	}

	items, err := handler.service.FilterYarn(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, items)
}

// listFinishedObjects lists the whole table unless owner_id narrows it.
func (handler *Handler) listFinishedObjects(writer http.ResponseWriter, request *http.Request) {
	if requestutil.Query(request, "owner_id") != "" {
		handler.listOwned(writer, request, KindFinishedObject)
		return
	}

	items, err := handler.service.ListFinishedObjects(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, items)
}

func (handler *Handler) getProduct(writer http.ResponseWriter, request *http.Request) {
	kind, err := kindFromPath(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	productID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.service.ResolveProduct(request.Context(), kind, productID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, item)
}

func (handler *Handler) listByOwner(writer http.ResponseWriter, request *http.Request) {
	kind, err := kindFromPath(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.listOwned(writer, request, kind)
}

func (handler *Handler) listOwned(writer http.ResponseWriter, request *http.Request, kind Kind) {
	ownerID, present, err := requestutil.IntQuery(request, "owner_id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !present {
		respond.Error(writer, request, validate.RequiredError("owner_id", "This field is required"))
		return
	}

	items, err := handler.service.ListByOwner(request.Context(), kind, ownerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, items)
}

func (handler *Handler) listBySize(writer http.ResponseWriter, request *http.Request) {
	items, err := handler.service.ListFinishedObjectsBySize(request.Context(), requestutil.Param(request, "size"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, items)
}

func kindFromPath(request *http.Request) (Kind, error) {
	segment := requestutil.Param(request, "type")
	if kind, ok := pathKinds[segment]; ok {
		return kind, nil
	}
	return ParseKind(segment)
}
