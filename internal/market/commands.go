package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/lotbot/core/logger"
	"github.com/m3rciful/lotbot/core/metrics"
	"github.com/m3rciful/lotbot/internal/domain"
)

func (r *Router) registerCommands() {
	user := func(name, desc string, h handlerFunc, aliases ...string) *command {
		return &command{CommandInfo: CommandInfo{Name: name, Description: desc, Aliases: aliases}, handle: h}
	}
	admin := func(name, desc string, h handlerFunc) *command {
		return &command{CommandInfo: CommandInfo{Name: name, Description: desc, AdminOnly: true}, handle: h}
	}
	withUsage := func(c *command, usage string) *command {
		c.usage = usage
		return c
	}

	r.add(user("start", "Начать работу с ботом", r.cmdStart))
	r.add(user("seller", "Подать заявку на статус «Продавец»", r.cmdSeller))
	r.add(user("app", "Открыть мини-приложение", r.cmdApp, "menu"))
	r.add(user("lots", "Показать ваши лоты", r.cmdLots))
	r.add(withUsage(user("dltlot", "Удалить ваш лот", r.cmdDeleteOwnLot), usageDeleteOwn))
	r.add(user("info", "Информация о командах", r.cmdInfo))
	r.add(withUsage(user("buylot", "Купить лот", r.cmdBuyLot), usageBuyLot))
	r.add(withUsage(user("feedback", "Отправить отзыв", r.cmdFeedback), usageFeedback))
	r.add(user("cancel", "Отменить текущее действие", r.cmdCancel))

	r.add(admin("checknewseller", "Заявки на статус «Продавец»", r.cmdPendingSellers))
	r.add(withUsage(admin("checkseller", "Рассмотреть заявку", r.cmdCheckSeller), usageCheckSeller))
	r.add(admin("allsellers", "Все продавцы", r.cmdApprovedSellers))
	r.add(withUsage(admin("dltseller", "Удалить статус «Продавец»", r.cmdDeleteSeller), usageDeleteSeller))
	r.add(admin("adminslots", "Все лоты", r.cmdAllLots))
	r.add(withUsage(admin("checklot", "Проверить лот", r.cmdCheckLot), usageCheckLot))
	r.add(withUsage(admin("admindlt", "Удалить любой лот", r.cmdAdminDeleteLot), usageAdminDelete))
	r.add(admin("dltall", "Удалить все лоты", r.cmdDeleteAllLots))
}

// parseID reads the first argument as an integer id.
func parseID(args string) (int64, bool) {
	field, _, _ := strings.Cut(strings.TrimSpace(args), " ")
	field = strings.Trim(field, `"№#`)
	id, err := strconv.ParseInt(field, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (r *Router) cmdStart(ctx context.Context, ev Event) error {
	app, err := r.engine.sellers.Get(ctx, ev.UserID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		r.engine.reply(ctx, ev.ChatID, textStartNotSeller)
		return nil
	case err != nil:
		return r.engine.fail(ctx, ev, "check seller status", err)
	}
	if app.Status != domain.SellerApproved {
		r.engine.reply(ctx, ev.ChatID, textStartNotSeller)
		return nil
	}
	return r.engine.BeginLot(ctx, ev)
}

func (r *Router) cmdSeller(ctx context.Context, ev Event) error {
	app, err := r.engine.sellers.Get(ctx, ev.UserID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return r.engine.BeginSeller(ctx, ev, textSellerStart)
	case err != nil:
		return r.engine.fail(ctx, ev, "check seller application", err)
	}

	switch app.Status {
	case domain.SellerPendingReview:
		r.engine.reply(ctx, ev.ChatID, textSellerPending)
		return nil
	case domain.SellerApproved:
		r.engine.reply(ctx, ev.ChatID, textSellerApproved)
		return nil
	}
	// Rejected: the old record makes room for a new application.
	if err := r.engine.sellers.Delete(ctx, ev.UserID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return r.engine.fail(ctx, ev, "delete rejected application", err)
	}
	return r.engine.BeginSeller(ctx, ev, textSellerRestart)
}

func (r *Router) cmdApp(ctx context.Context, ev Event) error {
	r.engine.reply(ctx, ev.ChatID, textMiniAppOpening, r.miniAppButton())
	return nil
}

func (r *Router) miniAppButton() SendOption {
	return WithWebApp(textMiniAppButton, r.miniAppURL)
}

func (r *Router) cmdLots(ctx context.Context, ev Event) error {
	lots, err := r.engine.lots.ListByOwner(ctx, ev.UserID)
	if err != nil {
		return r.engine.fail(ctx, ev, "list own lots", err)
	}
	if len(lots) == 0 {
		r.engine.reply(ctx, ev.ChatID, textNoOwnLots)
		return nil
	}
	r.engine.reply(ctx, ev.ChatID, ownLotsText(lots))
	return nil
}

func (r *Router) cmdDeleteOwnLot(ctx context.Context, ev Event) error {
	id, ok := parseID(ev.Args)
	if !ok {
		r.engine.reply(ctx, ev.ChatID, usageDeleteOwn)
		return nil
	}
	lot, err := r.engine.lots.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && lot.UserID != ev.UserID) {
		r.engine.reply(ctx, ev.ChatID, textLotNotOwned)
		return nil
	}
	if err != nil {
		return r.engine.fail(ctx, ev, "load lot", err)
	}
	if err := r.engine.lots.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.engine.reply(ctx, ev.ChatID, textLotNotOwned)
			return nil
		}
		return r.engine.fail(ctx, ev, "delete lot", err)
	}
	logger.Info(ctx, routerComponent, "lot.deleted",
		slog.Int64("lot_id", id),
		slog.Int64("user_id", ev.UserID),
	)
	r.engine.reply(ctx, ev.ChatID, fmt.Sprintf("Лот №%d успешно удален.", id))
	r.engine.notifyAdmins(ctx, fmt.Sprintf("Пользователь %d удалил лот №%d.", ev.UserID, id))
	return nil
}

func (r *Router) cmdInfo(ctx context.Context, ev Event) error {
	text := textHelpUser
	if r.engine.admins.Contains(ev.UserID) {
		text += textHelpAdmin
	}
	r.engine.reply(ctx, ev.ChatID, text)
	return nil
}

func (r *Router) cmdBuyLot(ctx context.Context, ev Event) error {
	id, ok := parseID(ev.Args)
	if !ok {
		r.engine.reply(ctx, ev.ChatID, usageBuyLot)
		return nil
	}
	lot, err := r.engine.lots.Get(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		r.engine.reply(ctx, ev.ChatID, textLotNotFound)
		return nil
	case err != nil:
		return r.engine.fail(ctx, ev, "load lot", err)
	}
	if lot.Status != domain.LotActive {
		r.engine.reply(ctx, ev.ChatID, textLotUnavailable)
		return nil
	}
	r.engine.reply(ctx, ev.ChatID,
		fmt.Sprintf("Лот №%d активен. Для покупки свяжитесь с продавцом: @%s", lot.ID, r.contactUsername))
	return nil
}

func (r *Router) cmdFeedback(ctx context.Context, ev Event) error {
	r.engine.notifyAdmins(ctx, fmt.Sprintf("Новый отзыв от пользователя %d:\n\n%s", ev.UserID, ev.Args))
	r.engine.reply(ctx, ev.ChatID, textFeedbackThanks)
	return nil
}

// cmdCancel runs only when the user is idle; active phases handle /cancel in the engine.
func (r *Router) cmdCancel(ctx context.Context, ev Event) error {
	return r.engine.Cancel(ctx, ev, nil)
}

func (r *Router) cmdPendingSellers(ctx context.Context, ev Event) error {
	apps, err := r.engine.sellers.ListByStatus(ctx, domain.SellerPendingReview)
	if err != nil {
		return r.engine.fail(ctx, ev, "list pending sellers", err)
	}
	if len(apps) == 0 {
		r.engine.reply(ctx, ev.ChatID, textNoPending)
		return nil
	}
	r.engine.reply(ctx, ev.ChatID, sellersText("Список заявок на статус 'Продавец':", apps, true))
	return nil
}

func (r *Router) cmdApprovedSellers(ctx context.Context, ev Event) error {
	apps, err := r.engine.sellers.ListByStatus(ctx, domain.SellerApproved)
	if err != nil {
		return r.engine.fail(ctx, ev, "list sellers", err)
	}
	if len(apps) == 0 {
		r.engine.reply(ctx, ev.ChatID, textNoSellers)
		return nil
	}
	r.engine.reply(ctx, ev.ChatID, sellersText("Список всех продавцов:", apps, false))
	return nil
}

func (r *Router) cmdCheckSeller(ctx context.Context, ev Event) error {
	id, ok := parseID(ev.Args)
	if !ok {
		r.engine.reply(ctx, ev.ChatID, usageCheckSeller)
		return nil
	}
	app, err := r.engine.sellers.Get(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		r.engine.reply(ctx, ev.ChatID, textSellerNotFound)
		return nil
	case err != nil:
		return r.engine.fail(ctx, ev, "load seller application", err)
	}
	if app.Status != domain.SellerPendingReview {
		r.engine.reply(ctx, ev.ChatID, alreadyDecidedHint(sellerCard(app)))
		return nil
	}
	return r.engine.BeginSellerReview(ctx, ev, app)
}

func (r *Router) cmdDeleteSeller(ctx context.Context, ev Event) error {
	id, ok := parseID(ev.Args)
	if !ok {
		r.engine.reply(ctx, ev.ChatID, usageDeleteSeller)
		return nil
	}
	err := r.engine.sellers.Delete(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		r.engine.reply(ctx, ev.ChatID, fmt.Sprintf("Пользователь с ID %d не имеет статуса \"Продавец\".", id))
		return nil
	case err != nil:
		return r.engine.fail(ctx, ev, "delete seller", err)
	}
	logger.Info(ctx, routerComponent, "seller.deleted",
		slog.Int64("applicant_id", id),
		slog.Int64("admin_id", ev.UserID),
	)
	r.engine.reply(ctx, ev.ChatID, fmt.Sprintf("Статус \"Продавец\" у пользователя %d успешно удален.", id))
	return nil
}

func (r *Router) cmdAllLots(ctx context.Context, ev Event) error {
	lots, err := r.engine.lots.List(ctx)
	if err != nil {
		return r.engine.fail(ctx, ev, "list lots", err)
	}
	if len(lots) == 0 {
		r.engine.reply(ctx, ev.ChatID, textNoLots)
		return nil
	}
	r.engine.reply(ctx, ev.ChatID, allLotsText(lots))
	return nil
}

func (r *Router) cmdCheckLot(ctx context.Context, ev Event) error {
	id, ok := parseID(ev.Args)
	if !ok {
		r.engine.reply(ctx, ev.ChatID, usageCheckLot)
		return nil
	}
	lot, err := r.engine.lots.Get(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		r.engine.reply(ctx, ev.ChatID, textLotNotFound)
		return nil
	case err != nil:
		return r.engine.fail(ctx, ev, "load lot", err)
	}
	if lot.Status != domain.LotPendingReview {
		card := alreadyDecidedHint(lotCard(lot))
		if lot.HasPhoto() {
			r.engine.replyPhoto(ctx, ev.ChatID, lot.Photo, card)
		} else {
			r.engine.reply(ctx, ev.ChatID, card)
		}
		return nil
	}
	return r.engine.BeginLotReview(ctx, ev, lot)
}

func (r *Router) cmdAdminDeleteLot(ctx context.Context, ev Event) error {
	id, ok := parseID(ev.Args)
	if !ok {
		r.engine.reply(ctx, ev.ChatID, usageAdminDelete)
		return nil
	}
	err := r.engine.lots.Delete(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		r.engine.reply(ctx, ev.ChatID, textLotNotFound)
		return nil
	case err != nil:
		return r.engine.fail(ctx, ev, "delete lot", err)
	}
	logger.Info(ctx, routerComponent, "lot.deleted",
		slog.Int64("lot_id", id),
		slog.Int64("admin_id", ev.UserID),
	)
	r.engine.reply(ctx, ev.ChatID, fmt.Sprintf("Лот №%d успешно удален администратором.", id))
	return nil
}

func (r *Router) cmdDeleteAllLots(ctx context.Context, ev Event) error {
	n, err := r.engine.lots.DeleteAll(ctx)
	if err != nil {
		return r.engine.fail(ctx, ev, "delete all lots", err)
	}
	metrics.RecordModeration("lot", "purged")
	logger.Warn(ctx, routerComponent, "lots.purged",
		slog.Int64("admin_id", ev.UserID),
		slog.Int64("count", n),
	)
	r.engine.reply(ctx, ev.ChatID, fmt.Sprintf("Все лоты успешно удалены. Удалено: %d.", n))
	return nil
}
