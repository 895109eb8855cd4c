package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/ndewijer/testnet-portfolio-panel/internal/apperrors"
	"github.com/ndewijer/testnet-portfolio-panel/internal/service"
)

const streamWriteTimeout = 5 * time.Second

// StreamHandler pushes recorded snapshots to websocket clients.
type StreamHandler struct {
	broadcaster      *service.Broadcaster
	valuationService *service.ValuationService
	originPatterns   []string
	log              zerolog.Logger
}

// NewStreamHandler creates a new StreamHandler. originPatterns are host
// patterns allowed to open cross-origin connections.
func NewStreamHandler(
	broadcaster *service.Broadcaster,
	valuationService *service.ValuationService,
	originPatterns []string,
	log zerolog.Logger,
) *StreamHandler {
	return &StreamHandler{
		broadcaster:      broadcaster,
		valuationService: valuationService,
		originPatterns:   originPatterns,
		log:              log,
	}
}

// Stream upgrades the connection and writes every recorded snapshot as JSON,
// starting with the latest stored one. The client is write-only from our side;
// anything it sends is discarded.
//
// Endpoint: GET /api/portfolio/stream
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	updates, unsubscribe := h.broadcaster.Subscribe()
	defer unsubscribe()

	ctx := conn.CloseRead(r.Context())

	latest, err := h.valuationService.Latest(ctx)
	switch {
	case err == nil:
		if err := h.write(ctx, conn, latest); err != nil {
			return
		}
	case !errors.Is(err, apperrors.ErrSnapshotNotFound):
		h.log.Error().Err(err).Msg("Failed to load latest snapshot for stream")
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case record, ok := <-updates:
			if !ok {
				return
			}
			if err := h.write(ctx, conn, record); err != nil {
				h.log.Debug().Err(err).Msg("Stream client went away")
				return
			}
		}
	}
}

func (h *StreamHandler) write(ctx context.Context, conn *websocket.Conn, v any) error {
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, v)
}
