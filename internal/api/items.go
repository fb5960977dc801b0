package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/handoff-labs/handoff/internal/server"
	"github.com/handoff-labs/handoff/internal/store"
	"github.com/handoff-labs/handoff/pkg/models"
)

// NewItemResponse is returned when an item is added to the inventory.
type NewItemResponse struct {
	Message string `json:"message"`
	ItemID  string `json:"item_id"`
	Item    string `json:"item"`
}

// ItemListResponse is returned by the item listing endpoint.
type ItemListResponse struct {
	Login string               `json:"login"`
	Items []models.ItemSummary `json:"items"`
}

// NewItemHandler appends a new item owned by the token's user.
func NewItemHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondFallback(srv, w)
			return
		}

		params, ok := requiredParams(srv, w, r, "item", "token")
		if !ok {
			return
		}
		user, ok := resolveUser(srv, w, r, params["token"])
		if !ok {
			return
		}

		item := models.Item{User: user.ID, Item: params["item"]}
		key, err := item.Create(r.Context(), srv.Store)
		if err != nil {
			srv.Logger.Error("error creating item", "error", err, "login", user.ID)
			respondInternal(srv, w)
			return
		}

		srv.Logger.Info("item added", "login", user.ID, "item_id", key)
		respondJSON(srv, w, http.StatusOK, NewItemResponse{
			Message: "Item added.",
			ItemID:  key,
			Item:    params["item"],
		})
	})
}

// ItemsHandler lists the items owned by the token's user.
func ItemsHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondFallback(srv, w)
			return
		}

		params, ok := requiredParams(srv, w, r, "token")
		if !ok {
			return
		}
		user, ok := resolveUser(srv, w, r, params["token"])
		if !ok {
			return
		}

		items, err := models.ItemsByOwner(r.Context(), srv.Store, user.ID)
		if err != nil {
			srv.Logger.Error("error listing items", "error", err, "login", user.ID)
			respondInternal(srv, w)
			return
		}

		respondJSON(srv, w, http.StatusOK, ItemListResponse{
			Login: user.ID,
			Items: items,
		})
	})
}

// ItemResourceHandler handles DELETE /items/{item_id}: only the owner may
// delete, and deletion removes the item's nested transfers with it.
func ItemResourceHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			respondFallback(srv, w)
			return
		}

		itemID, err := parseItemIDFromURL(r.URL.Path)
		if err != nil {
			respondFallback(srv, w)
			return
		}

		params, ok := requiredParams(srv, w, r, "token")
		if !ok {
			return
		}
		user, ok := resolveUser(srv, w, r, params["token"])
		if !ok {
			return
		}

		var item models.Item
		err = item.Get(r.Context(), srv.Store, itemID)
		if errors.Is(err, store.ErrNotFound) {
			respondError(srv, w, http.StatusNotFound, codeItemNotFound,
				"No such item exists.")
			return
		}
		if err != nil {
			srv.Logger.Error("error reading item", "error", err, "item_id", itemID)
			respondInternal(srv, w)
			return
		}

		if item.User != user.ID {
			respondError(srv, w, http.StatusBadRequest, codeNotOwner,
				"Failed. Not the item owner.")
			return
		}

		if err := models.DeleteItem(r.Context(), srv.Store, itemID); err != nil {
			srv.Logger.Error("error deleting item", "error", err, "item_id", itemID)
			respondInternal(srv, w)
			return
		}

		srv.Logger.Info("item deleted", "login", user.ID, "item_id", itemID)
		respondMessage(srv, w, http.StatusOK, "Item deleted.")
	})
}

// parseItemIDFromURL parses a URL path with the format "/items/{item_id}" and
// returns the item ID.
func parseItemIDFromURL(path string) (string, error) {
	path = strings.TrimPrefix(path, "/items/")
	if path == "" || strings.Contains(path, "/") {
		return "", errors.New("invalid URL path")
	}
	return path, nil
}
