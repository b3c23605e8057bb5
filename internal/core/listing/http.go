// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listing

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/yarnswap/internal/platform/request"
	"github.com/taibuivan/yarnswap/internal/platform/respond"
	"github.com/taibuivan/yarnswap/pkg/pointer"
)

// # Handler Implementation

// Handler exposes the listing aggregate over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a new listing [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the listing endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listListings)
	router.Post("/", handler.createListing)

	// ## Analytics and filtering
	router.Get("/filter", handler.filterListings)
	router.Get("/type-percentages", handler.typePercentages)

	// ## Single listing
	router.Route("/{id}", func(r chi.Router) {
		r.Get("/", handler.getListing)
		r.Patch("/", handler.updateStatus)
		r.Delete("/", handler.deleteListing)
		r.Get("/product", handler.getListingWithProduct)

		r.Get("/tags", handler.listTags)
		r.Post("/tags", handler.addTag)
		r.Delete("/tags", handler.clearTags)
		r.Delete("/tags/{tagID}", handler.removeTag)
	})

	return router
}

// RegisterTagRoutes mounts the tag-to-listing lookups on a router scoped to /tags.
func (handler *Handler) RegisterTagRoutes(router chi.Router) {
	router.Get("/search/listings", handler.searchByTagName)
	router.Get("/by-id/{tagID}/listings", handler.listingsForTagID)
	router.Get("/{tagName}/listings", handler.listingsForTagName)
}

type statusRequest struct {
	Status Status `json:"status"`
}

type addTagRequest struct {
	TagID int `json:"tagId"`
}

type removedResponse struct {
	Removed any `json:"removed"`
}

// # Listing Collection

// listListings answers GET /listings. The first query parameter present
// selects the view: status, archived_by, seller_id, type, then q.
func (handler *Handler) listListings(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	query := request.URL.Query()

	var (
		listings []*Listing
		err      error
	)

	switch {
	case query.Has(FieldStatus):
		listings, err = handler.service.ListByStatus(ctx, Status(requestutil.Query(request, FieldStatus)))
	case query.Has("archived_by"):
		var userID int
		if userID, _, err = requestutil.IntQuery(request, "archived_by"); err == nil {
			listings, err = handler.service.ListArchivedByUser(ctx, userID)
		}
	case query.Has(FieldSellerID):
		var userID int
		if userID, _, err = requestutil.IntQuery(request, FieldSellerID); err == nil {
			listings, err = handler.service.ListBySeller(ctx, userID)
		}
	case query.Has("type"):
		listings, err = handler.service.ListByType(ctx, requestutil.Query(request, "type"))
	case query.Has(FieldQuery):
		listings, err = handler.service.Search(ctx, requestutil.Query(request, FieldQuery))
	default:
		listings, err = handler.service.ListListings(ctx)
	}

	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, listings)
}

func (handler *Handler) createListing(writer http.ResponseWriter, request *http.Request) {
	var draft Draft
	if err := requestutil.DecodeJSON(request, &draft); err != nil {
		respond.Error(writer, request, err)
		return
	}

	listing, err := handler.service.CreateListing(request.Context(), draft)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, listing)
}

func (handler *Handler) filterListings(writer http.ResponseWriter, request *http.Request) {
	var (
		filter Filter
		err    error
	)

	if filter.PriceMin, err = requestutil.FloatQuery(request, "price_min"); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if filter.PriceMax, err = requestutil.FloatQuery(request, "price_max"); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if quality := requestutil.Query(request, "quality"); quality != "" {
		filter.Quality = pointer.To(quality)
	}
	if location := requestutil.Query(request, "location"); location != "" {
		filter.Location = pointer.To(location)
	}

	listings, err := handler.service.FilterListings(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, listings)
}

func (handler *Handler) typePercentages(writer http.ResponseWriter, request *http.Request) {
	shares, err := handler.service.ListingTypePercentages(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, shares)
}

// # Single Listing

func (handler *Handler) getListing(writer http.ResponseWriter, request *http.Request) {
	listingID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	listing, err := handler.service.GetListing(request.Context(), listingID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, listing)
}

func (handler *Handler) getListingWithProduct(writer http.ResponseWriter, request *http.Request) {
	listingID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	listing, err := handler.service.GetListingWithProduct(request.Context(), listingID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, listing)
}

func (handler *Handler) updateStatus(writer http.ResponseWriter, request *http.Request) {
	listingID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body statusRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	listing, err := handler.service.UpdateStatus(request.Context(), listingID, body.Status)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, listing)
}

func (handler *Handler) deleteListing(writer http.ResponseWriter, request *http.Request) {
	listingID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	listing, err := handler.service.DeleteListing(request.Context(), listingID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, listing)
}

// # Listing Tags

func (handler *Handler) listTags(writer http.ResponseWriter, request *http.Request) {
	listingID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tags, err := handler.service.TagsForListing(request.Context(), listingID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tags)
}

func (handler *Handler) addTag(writer http.ResponseWriter, request *http.Request) {
	listingID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body addTagRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tags, err := handler.service.AddTag(request.Context(), listingID, body.TagID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, tags)
}

func (handler *Handler) removeTag(writer http.ResponseWriter, request *http.Request) {
	listingID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tagID, err := requestutil.IntParam(request, "tagID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	removed, err := handler.service.RemoveTag(request.Context(), listingID, tagID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, removedResponse{Removed: removed})
}

func (handler *Handler) clearTags(writer http.ResponseWriter, request *http.Request) {
	listingID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	removed, err := handler.service.ClearTags(request.Context(), listingID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, removedResponse{Removed: removed})
}

// # Tag Lookups

func (handler *Handler) listingsForTagName(writer http.ResponseWriter, request *http.Request) {
	listings, err := handler.service.ListingsForTagName(request.Context(), rawTagName(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, listings)
}

// rawTagName returns the tagName segment still percent-encoded, so the tag
// service decodes it exactly once. The router matches on URL.Path, which is
// already decoded, whenever URL.RawPath is empty.
func rawTagName(request *http.Request) string {
	name := requestutil.Param(request, "tagName")
	if request.URL.RawPath == "" {
		return url.PathEscape(name)
	}
	return name
}

func (handler *Handler) listingsForTagID(writer http.ResponseWriter, request *http.Request) {
	tagID, err := requestutil.IntParam(request, "tagID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	listings, err := handler.service.ListingsForTagID(request.Context(), tagID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, listings)
}

func (handler *Handler) searchByTagName(writer http.ResponseWriter, request *http.Request) {
	listings, err := handler.service.SearchByTagName(request.Context(), requestutil.Query(request, FieldQuery))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, listings)
}
