package market

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/m3rciful/lotbot/core/logger"
)

// Mini-app protocol commands.
const (
	MiniAppGetLots   = "get_lots"
	MiniAppCreateLot = "create_lot"
	MiniAppLotsList  = "lots_list"
)

type miniAppRequest struct {
	Command string `json:"command"`
}

// MiniAppLot is one lot as rendered by the mini-app.
type MiniAppLot struct {
	LotID       int64  `json:"lot_id"`
	UserID      int64  `json:"user_id"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Photo       string `json:"photo,omitempty"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
}

// MiniAppLotsReply answers get_lots.
type MiniAppLotsReply struct {
	Command string       `json:"command"`
	Lots    []MiniAppLot `json:"lots"`
}

func (r *Router) handleMiniApp(ctx context.Context, ev Event) error {
	var req miniAppRequest
	if err := json.Unmarshal([]byte(ev.Data), &req); err != nil {
		logger.Warn(ctx, routerComponent, "miniapp.malformed",
			slog.Int64("user_id", ev.UserID),
			slog.String("payload", logger.SanitizeLimit(ev.Data, 128)),
			slog.String("err", err.Error()),
		)
		return nil
	}

	switch req.Command {
	case MiniAppGetLots:
		return r.miniAppLots(ctx, ev)
	case MiniAppCreateLot:
		r.engine.reply(ctx, ev.ChatID, textMiniAppCreate)
		return r.cmdStart(ctx, ev)
	default:
		logger.Debug(ctx, routerComponent, "miniapp.unknown",
			slog.Int64("user_id", ev.UserID),
			slog.String("command", logger.SanitizeLimit(req.Command, 64)),
		)
		return nil
	}
}

func (r *Router) miniAppLots(ctx context.Context, ev Event) error {
	lots, err := r.engine.lots.ListByOwner(ctx, ev.UserID)
	if err != nil {
		return r.engine.fail(ctx, ev, "list own lots", err)
	}
	reply := MiniAppLotsReply{Command: MiniAppLotsList, Lots: make([]MiniAppLot, 0, len(lots))}
	for _, l := range lots {
		reply.Lots = append(reply.Lots, MiniAppLot{
			LotID:       l.ID,
			UserID:      l.UserID,
			Description: l.Description,
			Price:       l.Price,
			Photo:       l.Photo,
			Status:      LotStatusText(l.Status),
			Reason:      l.Reason,
		})
	}
	data, err := json.Marshal(reply)
	if err != nil {
		return r.engine.fail(ctx, ev, "encode lots list", err)
	}
	r.engine.reply(ctx, ev.ChatID, string(data), r.miniAppButton())
	return nil
}
