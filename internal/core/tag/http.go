// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/yarnswap/internal/platform/request"
	"github.com/taibuivan/yarnswap/internal/platform/respond"
	"github.com/taibuivan/yarnswap/pkg/convert"
)

// Handler exposes tag management and analytics over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a new tag [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the tag endpoints on a router already scoped to /tags.
//
// Tags are addressed by id under /by-id so that /{tagName} stays free for
// name lookups.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listTags)
	router.Post("/", handler.ensureTags)

	// ## Analytics
	router.Get("/top", handler.topTags)
	router.Get("/usage-percentages", handler.usagePercentages)

	// ## Single tag
	router.Get("/by-id/{tagID}", handler.getTag)
	router.Get("/by-id/{tagID}/usage", handler.usageCount)
	router.Patch("/by-id/{tagID}", handler.renameTag)
	router.Delete("/by-id/{tagID}", handler.deleteTag)
}

type ensureTagsRequest struct {
	Names []string `json:"names"`
}

type renameTagRequest struct {
	Name string `json:"name"`
}

type usageResponse struct {
	TagID int `json:"tag_id"`
	Count int `json:"count"`
}

func (handler *Handler) listTags(writer http.ResponseWriter, request *http.Request) {
	tags, err := handler.service.ListTags(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tags)
}

func (handler *Handler) ensureTags(writer http.ResponseWriter, request *http.Request) {
	var body ensureTagsRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tags, err := handler.service.EnsureTagsExist(request.Context(), body.Names)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, tags)
}

func (handler *Handler) topTags(writer http.ResponseWriter, request *http.Request) {
	limit := convert.ToIntD(requestutil.Query(request, FieldLimit), 0)

	usage, err := handler.service.TopTags(request.Context(), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, usage)
}

func (handler *Handler) usagePercentages(writer http.ResponseWriter, request *http.Request) {
	shares, err := handler.service.UsagePercentages(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, shares)
}

func (handler *Handler) getTag(writer http.ResponseWriter, request *http.Request) {
	tagID, err := requestutil.IntParam(request, "tagID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tag, err := handler.service.GetTag(request.Context(), tagID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tag)
}

func (handler *Handler) usageCount(writer http.ResponseWriter, request *http.Request) {
	tagID, err := requestutil.IntParam(request, "tagID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	count, err := handler.service.UsageCount(request.Context(), tagID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, usageResponse{TagID: tagID, Count: count})
}

func (handler *Handler) renameTag(writer http.ResponseWriter, request *http.Request) {
	tagID, err := requestutil.IntParam(request, "tagID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body renameTagRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tag, err := handler.service.RenameTag(request.Context(), tagID, body.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tag)
}

func (handler *Handler) deleteTag(writer http.ResponseWriter, request *http.Request) {
	tagID, err := requestutil.IntParam(request, "tagID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tag, err := handler.service.DeleteTagCompletely(request.Context(), tagID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tag)
}
