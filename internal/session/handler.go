package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/annotate/internal/typeid"
)

// ServeWS upgrades requests for /ws/documents/{documentId} to an editing
// session on that document.
func (h *Hub) ServeWS(originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		documentID := mux.Vars(r)["documentId"]
		if err := typeid.Validate(documentID, typeid.PrefixDocument); err != nil {
			http.Error(w, "invalid document id", http.StatusBadRequest)
			return
		}

		// server read/write timeouts must not apply to the upgraded connection
		rc := http.NewResponseController(w)
		rc.SetReadDeadline(time.Time{})
		rc.SetWriteDeadline(time.Time{})

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			slog.Error("websocket accept", "error", err)
			return
		}

		clientID := uuid.New().String()
		client := NewClient(h, conn, documentID, clientID)

		h.Register(client)
		client.Serve(r.Context())
	}
}
