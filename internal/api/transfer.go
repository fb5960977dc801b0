package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/handoff-labs/handoff/internal/server"
	"github.com/handoff-labs/handoff/internal/store"
	"github.com/handoff-labs/handoff/pkg/models"
)

// SendResponse is returned when a transfer is created. URL is the capability
// link the receiver follows to pick up the item.
type SendResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// SendHandler creates a transfer of one of the sender's items to another
// user, keyed by a fresh single-use send token. An item can carry several
// outstanding transfers at once, one per token.
func SendHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondFallback(srv, w)
			return
		}

		params, ok := requiredParams(srv, w, r, "item_id", "receiver", "token")
		if !ok {
			return
		}
		sender, ok := resolveUser(srv, w, r, params["token"])
		if !ok {
			return
		}
		itemID := params["item_id"]

		var receiver models.User
		err := receiver.Get(r.Context(), srv.Store, params["receiver"])
		if errors.Is(err, store.ErrNotFound) {
			respondError(srv, w, http.StatusBadRequest, codeReceiverNotFound,
				"Fail. Receiver doesn't exist.")
			return
		}
		if err != nil {
			srv.Logger.Error("error reading receiver", "error", err)
			respondInternal(srv, w)
			return
		}

		var item models.Item
		err = item.Get(r.Context(), srv.Store, itemID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && item.User != sender.ID) {
			respondError(srv, w, http.StatusBadRequest, codeItemNotFound,
				"Fail. No such item exists.")
			return
		}
		if err != nil {
			srv.Logger.Error("error reading item", "error", err, "item_id", itemID)
			respondInternal(srv, w)
			return
		}

		sendToken, err := models.GenerateToken()
		if err != nil {
			srv.Logger.Error("error generating send token", "error", err)
			respondInternal(srv, w)
			return
		}

		err = models.CreateTransfer(
			r.Context(), srv.Store,
			itemID, sendToken, receiver.ID, time.Now(), srv.Config.SendTokenTTL())
		if err != nil {
			srv.Logger.Error("error creating transfer", "error", err, "item_id", itemID)
			respondInternal(srv, w)
			return
		}

		srv.Logger.Info("item sent",
			"login", sender.ID, "item_id", itemID, "receiver", receiver.ID)
		respondJSON(srv, w, http.StatusOK, SendResponse{
			Message: "Item sent.",
			URL:     receiveURL(srv, r, itemID, sendToken),
		})
	})
}

// errTransferGone signals that the transfer vanished between the item read
// and the transactional status update.
var errTransferGone = errors.New("transfer gone")

// ReceiveHandler picks up a sent item. There is no caller authentication
// beyond possession of the send token. The status update runs inside a store
// transaction so concurrent pickups can't race the expiry check. Receiving an
// already-received transfer re-asserts the terminal status and succeeds
// again; it is not rejected.
func ReceiveHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondFallback(srv, w)
			return
		}

		params, ok := requiredParams(srv, w, r, "item_id", "token")
		if !ok {
			return
		}
		itemID, sendToken := params["item_id"], params["token"]

		var item models.Item
		err := item.Get(r.Context(), srv.Store, itemID)
		if errors.Is(err, store.ErrNotFound) {
			respondError(srv, w, http.StatusNotFound, codeItemNotFound,
				"Fail. Item not found.")
			return
		}
		if err != nil {
			srv.Logger.Error("error reading item", "error", err, "item_id", itemID)
			respondInternal(srv, w)
			return
		}

		if _, ok := item.Send[sendToken]; !ok {
			respondError(srv, w, http.StatusUnauthorized, codeBadSendToken,
				"Fail. Unauthorised.")
			return
		}

		now := time.Now()
		var late bool
		err = srv.Store.Transact(r.Context(), models.TransferPath(itemID, sendToken),
			func(current json.RawMessage) (interface{}, error) {
				if store.IsNull(current) {
					return nil, errTransferGone
				}
				var transfer models.Transfer
				if err := json.Unmarshal(current, &transfer); err != nil {
					return nil, err
				}
				if late = transfer.Expired(now); late {
					transfer.Status = models.TransferLate
				} else {
					transfer.Status = models.TransferReceived
				}
				return transfer, nil
			})
		if errors.Is(err, errTransferGone) {
			respondError(srv, w, http.StatusUnauthorized, codeBadSendToken,
				"Fail. Unauthorised.")
			return
		}
		if err != nil {
			srv.Logger.Error("error updating transfer",
				"error", err, "item_id", itemID)
			respondInternal(srv, w)
			return
		}

		if late {
			respondError(srv, w, http.StatusUnauthorized, codeTransferExpired,
				"Fail. You're late for delivery.")
			return
		}

		srv.Logger.Info("item received", "item_id", itemID)
		respondMessage(srv, w, http.StatusOK, "Success. Item received.")
	})
}

// receiveURL builds the capability link for a transfer. The configured base
// URL wins; otherwise the link is derived from the incoming request.
func receiveURL(srv server.Server, r *http.Request, itemID, sendToken string) string {
	base := srv.Config.BaseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}

	query := url.Values{}
	query.Set("item_id", itemID)
	query.Set("token", sendToken)
	return strings.TrimSuffix(base, "/") + "/receive?" + query.Encode()
}
