package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/lotbot/core/logger"
	"github.com/m3rciful/lotbot/core/metrics"
	"github.com/m3rciful/lotbot/core/telegram/state"
	"github.com/m3rciful/lotbot/internal/domain"
)

const engineComponent = "market.engine"

// Engine interprets inbound events against a user's conversation phase.
// Callers serialise events per user; the Router does so with state.UserLocks.
type Engine struct {
	lots        domain.LotRepository
	sellers     domain.SellerRepository
	states      state.Store[Phase]
	notify      Notifier
	admins      AdminList
	nextID      IDSource
	channelID   int64
	botUsername string
}

// SetBotUsername sets the bot mention used in channel posts. It must be
// called before events are dispatched.
func (e *Engine) SetBotUsername(name string) {
	e.botUsername = strings.TrimPrefix(strings.TrimSpace(name), "@")
}

// BotUsername returns the mention used in channel posts.
func (e *Engine) BotUsername() string { return e.botUsername }

// Phase returns the user's active phase, or nil when idle.
func (e *Engine) Phase(ctx context.Context, userID int64) (Phase, error) {
	p, ok, err := e.states.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load phase: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return p, nil
}

// move persists the transition from -> to; a nil to ends the conversation.
func (e *Engine) move(ctx context.Context, userID int64, from, to Phase) error {
	var err error
	if to == nil {
		err = e.states.Clear(ctx, userID)
	} else {
		err = e.states.Set(ctx, userID, to)
	}
	if err != nil {
		return fmt.Errorf("save phase: %w", err)
	}
	fromLabel, toLabel := phaseLabel(from), phaseLabel(to)
	metrics.RecordTransition(fromLabel, toLabel)
	logger.Debug(ctx, engineComponent, "fsm.transition",
		slog.Int64("user_id", userID),
		slog.String("from", fromLabel),
		slog.String("to", toLabel),
	)
	return nil
}

// finish clears the phase after a completed step. The step's effects are
// already stored, so a failing clear is logged rather than reported.
func (e *Engine) finish(ctx context.Context, userID int64, from Phase) {
	if err := e.move(ctx, userID, from, nil); err != nil {
		logger.Error(ctx, engineComponent, "fsm.clear.fail",
			slog.Int64("user_id", userID),
			slog.String("phase", phaseLabel(from)),
			slog.String("err", err.Error()),
		)
	}
}

func (e *Engine) reply(ctx context.Context, to int64, text string, opts ...SendOption) {
	if err := e.notify.SendText(ctx, to, text, opts...); err != nil {
		logger.Warn(ctx, engineComponent, "notify.fail",
			slog.Int64("chat_id", to),
			slog.String("err", err.Error()),
		)
	}
}

func (e *Engine) replyPhoto(ctx context.Context, to int64, photoID, caption string, opts ...SendOption) {
	if err := e.notify.SendPhoto(ctx, to, photoID, caption, opts...); err != nil {
		logger.Warn(ctx, engineComponent, "notify.fail",
			slog.Int64("chat_id", to),
			slog.String("kind", "photo"),
			slog.String("err", err.Error()),
		)
	}
}

func (e *Engine) notifyAdmins(ctx context.Context, text string) {
	for _, id := range e.admins.IDs() {
		e.reply(ctx, id, text)
	}
}

// fail reports an unexpected error to the user and returns it for the handler summary.
// Conversation state is left as it was so the user can retry.
func (e *Engine) fail(ctx context.Context, ev Event, op string, err error) error {
	logger.Error(ctx, engineComponent, "step.fail",
		slog.Int64("user_id", ev.UserID),
		slog.String("op", op),
		slog.String("err", err.Error()),
	)
	e.reply(ctx, ev.ChatID, textGenericError)
	return fmt.Errorf("%s: %w", op, err)
}

// BeginSeller starts the application flow at the phone step.
func (e *Engine) BeginSeller(ctx context.Context, ev Event, prompt string) error {
	if err := e.move(ctx, ev.UserID, nil, SellerPhone{}); err != nil {
		return e.fail(ctx, ev, "begin seller", err)
	}
	e.reply(ctx, ev.ChatID, prompt)
	return nil
}

// BeginLot starts lot creation at the description step.
func (e *Engine) BeginLot(ctx context.Context, ev Event) error {
	if err := e.move(ctx, ev.UserID, nil, LotDescription{}); err != nil {
		return e.fail(ctx, ev, "begin lot", err)
	}
	e.reply(ctx, ev.ChatID, textLotDescription)
	return nil
}

// BeginSellerReview shows a pending application to the admin and waits for a decision.
func (e *Engine) BeginSellerReview(ctx context.Context, ev Event, app domain.SellerApplication) error {
	if err := e.move(ctx, ev.UserID, nil, SellerReview{ApplicantID: app.UserID}); err != nil {
		return e.fail(ctx, ev, "begin seller review", err)
	}
	e.reply(ctx, ev.ChatID, withDecisionHint(sellerCard(app)), decisionKeyboard())
	return nil
}

// BeginLotReview shows a pending lot to the admin and waits for a decision.
func (e *Engine) BeginLotReview(ctx context.Context, ev Event, lot domain.Lot) error {
	if err := e.move(ctx, ev.UserID, nil, LotReview{LotID: lot.ID}); err != nil {
		return e.fail(ctx, ev, "begin lot review", err)
	}
	card := withDecisionHint(lotCard(lot))
	if lot.HasPhoto() {
		e.replyPhoto(ctx, ev.ChatID, lot.Photo, card, decisionKeyboard())
	} else {
		e.reply(ctx, ev.ChatID, card, decisionKeyboard())
	}
	return nil
}

// Cancel drops any active phase. It confirms even when nothing was active.
func (e *Engine) Cancel(ctx context.Context, ev Event, current Phase) error {
	if current != nil {
		if err := e.move(ctx, ev.UserID, current, nil); err != nil {
			return e.fail(ctx, ev, "cancel", err)
		}
	}
	e.reply(ctx, ev.ChatID, textCancelled, WithoutKeyboard())
	return nil
}

// Step handles ev for a user whose active phase is p.
func (e *Engine) Step(ctx context.Context, ev Event, p Phase) error {
	switch ev.Kind {
	case KindCommand:
		if ev.Command == "cancel" {
			return e.Cancel(ctx, ev, p)
		}
		e.reply(ctx, ev.ChatID, busyText(p, ev))
		return nil
	case KindWebApp:
		e.reply(ctx, ev.ChatID, busyText(p, ev))
		return nil
	}

	switch cur := p.(type) {
	case SellerPhone:
		return e.collect(ctx, ev, cur, func(text string) (Phase, string) {
			return SellerEmail{Phone: text}, textSellerEmail
		})
	case SellerEmail:
		return e.collect(ctx, ev, cur, func(text string) (Phase, string) {
			return SellerName{Phone: cur.Phone, Email: text}, textSellerName
		})
	case SellerName:
		text, ok := e.expectText(ctx, ev)
		if !ok {
			return nil
		}
		return e.submitSeller(ctx, ev, cur, text)
	case LotDescription:
		return e.collect(ctx, ev, cur, func(text string) (Phase, string) {
			return LotPrice{Description: text}, textLotPrice
		})
	case LotPrice:
		return e.collect(ctx, ev, cur, func(text string) (Phase, string) {
			return LotPhoto{Description: cur.Description, Price: text}, textLotPhoto
		})
	case LotPhoto:
		if ev.Kind != KindPhoto || ev.PhotoID == "" {
			e.reply(ctx, ev.ChatID, textPhotoNeeded)
			return nil
		}
		return e.submitLot(ctx, ev, cur)
	case SellerReview:
		return e.reviewSeller(ctx, ev, cur)
	case LotReview:
		return e.reviewLot(ctx, ev, cur)
	default:
		logger.Warn(ctx, engineComponent, "fsm.unknown_phase",
			slog.Int64("user_id", ev.UserID),
			slog.String("phase", fmt.Sprintf("%T", p)),
		)
		return e.move(ctx, ev.UserID, p, nil)
	}
}

// expectText returns the trimmed message text, re-prompting when the event carries none.
func (e *Engine) expectText(ctx context.Context, ev Event) (string, bool) {
	text := strings.TrimSpace(ev.Text)
	if ev.Kind != KindText || text == "" {
		e.reply(ctx, ev.ChatID, textTextExpected)
		return "", false
	}
	return text, true
}

// collect stores one text field and advances to the next prompt.
func (e *Engine) collect(ctx context.Context, ev Event, from Phase, next func(string) (Phase, string)) error {
	text, ok := e.expectText(ctx, ev)
	if !ok {
		return nil
	}
	to, prompt := next(text)
	if err := e.move(ctx, ev.UserID, from, to); err != nil {
		return e.fail(ctx, ev, "advance "+from.Name(), err)
	}
	e.reply(ctx, ev.ChatID, prompt)
	return nil
}

func (e *Engine) submitSeller(ctx context.Context, ev Event, cur SellerName, name string) error {
	app := domain.SellerApplication{
		UserID: ev.UserID,
		Phone:  cur.Phone,
		Email:  cur.Email,
		Name:   name,
		Status: domain.SellerPendingReview,
	}
	err := e.sellers.Insert(ctx, app)
	metrics.RecordSubmission("seller", err)
	switch {
	case errors.Is(err, domain.ErrConflict):
		// Another application appeared meanwhile; the user cannot submit twice.
		e.finish(ctx, ev.UserID, cur)
		e.reply(ctx, ev.ChatID, textSellerPending)
		return nil
	case err != nil:
		return e.fail(ctx, ev, "submit seller application", err)
	}

	e.finish(ctx, ev.UserID, cur)
	logger.Info(ctx, engineComponent, "seller.submitted",
		slog.Int64("applicant_id", ev.UserID),
		slog.String("phone", app.Phone),
		slog.String("email", app.Email),
	)
	e.reply(ctx, ev.ChatID, textSellerSubmitted)
	e.notifyAdmins(ctx, newSellerAdminText(ev.UserID))
	return nil
}

func (e *Engine) submitLot(ctx context.Context, ev Event, cur LotPhoto) error {
	lot, err := e.insertLot(ctx, domain.Lot{
		UserID:      ev.UserID,
		Description: cur.Description,
		Price:       cur.Price,
		Photo:       ev.PhotoID,
		Status:      domain.LotPendingReview,
	})
	metrics.RecordSubmission("lot", err)
	if err != nil {
		return e.fail(ctx, ev, "submit lot", err)
	}

	e.finish(ctx, ev.UserID, cur)
	logger.Info(ctx, engineComponent, "lot.submitted",
		slog.Int64("lot_id", lot.ID),
		slog.Int64("user_id", ev.UserID),
	)
	e.reply(ctx, ev.ChatID, textLotSubmitted)
	e.notifyAdmins(ctx, newLotAdminText(lot.ID, ev.UserID))
	return nil
}

type decision int

const (
	decisionNone decision = iota
	decisionApprove
	decisionReject
)

func parseDecision(text string) decision {
	text = strings.TrimSpace(text)
	switch {
	case strings.EqualFold(text, TokenApprove):
		return decisionApprove
	case strings.EqualFold(text, TokenReject):
		return decisionReject
	}
	return decisionNone
}

func (e *Engine) reviewSeller(ctx context.Context, ev Event, cur SellerReview) error {
	text, ok := e.expectText(ctx, ev)
	if !ok {
		return nil
	}
	if cur.AwaitingReason {
		return e.decideSeller(ctx, ev, cur, domain.SellerRejected, text)
	}
	switch parseDecision(text) {
	case decisionApprove:
		return e.decideSeller(ctx, ev, cur, domain.SellerApproved, "")
	case decisionReject:
		next := SellerReview{ApplicantID: cur.ApplicantID, AwaitingReason: true}
		if err := e.move(ctx, ev.UserID, cur, next); err != nil {
			return e.fail(ctx, ev, "await seller reason", err)
		}
		e.reply(ctx, ev.ChatID, textReasonSellerPrompt, WithoutKeyboard())
	default:
		e.reply(ctx, ev.ChatID, textDecisionPrompt, decisionKeyboard())
	}
	return nil
}

func (e *Engine) decideSeller(ctx context.Context, ev Event, cur SellerReview, status domain.SellerStatus, reason string) error {
	app, err := e.sellers.Get(ctx, cur.ApplicantID)
	if errors.Is(err, domain.ErrNotFound) {
		e.finish(ctx, ev.UserID, cur)
		e.reply(ctx, ev.ChatID, textSellerNotFound, WithoutKeyboard())
		return nil
	}
	if err != nil {
		return e.fail(ctx, ev, "load seller application", err)
	}
	if app.Status != domain.SellerPendingReview {
		e.finish(ctx, ev.UserID, cur)
		e.reply(ctx, ev.ChatID, alreadyDecidedHint(sellerCard(app)), WithoutKeyboard())
		return nil
	}

	err = e.sellers.UpdateStatus(ctx, cur.ApplicantID, status, reason)
	if errors.Is(err, domain.ErrNotFound) {
		e.finish(ctx, ev.UserID, cur)
		e.reply(ctx, ev.ChatID, textSellerNotFound, WithoutKeyboard())
		return nil
	}
	if err != nil {
		return e.fail(ctx, ev, "update seller status", err)
	}
	metrics.RecordModeration("seller", string(status))
	e.finish(ctx, ev.UserID, cur)
	logger.Info(ctx, engineComponent, "seller.decided",
		slog.Int64("applicant_id", cur.ApplicantID),
		slog.Int64("admin_id", ev.UserID),
		slog.String("status", string(status)),
	)

	if status == domain.SellerApproved {
		e.reply(ctx, cur.ApplicantID, textSellerApprovedUser)
		e.reply(ctx, ev.ChatID, fmt.Sprintf("Заявка пользователя %d одобрена.", cur.ApplicantID), WithoutKeyboard())
		return nil
	}
	e.reply(ctx, cur.ApplicantID, fmt.Sprintf("Ваша заявка на статус 'Продавец' отклонена. Причина: %s", reason))
	e.reply(ctx, ev.ChatID, textReasonSent, WithoutKeyboard())
	return nil
}

func (e *Engine) reviewLot(ctx context.Context, ev Event, cur LotReview) error {
	text, ok := e.expectText(ctx, ev)
	if !ok {
		return nil
	}
	if cur.AwaitingReason {
		return e.decideLot(ctx, ev, cur, domain.LotRejected, text)
	}
	switch parseDecision(text) {
	case decisionApprove:
		return e.decideLot(ctx, ev, cur, domain.LotActive, "")
	case decisionReject:
		next := LotReview{LotID: cur.LotID, AwaitingReason: true}
		if err := e.move(ctx, ev.UserID, cur, next); err != nil {
			return e.fail(ctx, ev, "await lot reason", err)
		}
		e.reply(ctx, ev.ChatID, textReasonLotPrompt, WithoutKeyboard())
	default:
		e.reply(ctx, ev.ChatID, textDecisionPrompt, decisionKeyboard())
	}
	return nil
}

func (e *Engine) decideLot(ctx context.Context, ev Event, cur LotReview, status domain.LotStatus, reason string) error {
	lot, err := e.lots.Get(ctx, cur.LotID)
	if errors.Is(err, domain.ErrNotFound) {
		e.finish(ctx, ev.UserID, cur)
		e.reply(ctx, ev.ChatID, textLotNotFound, WithoutKeyboard())
		return nil
	}
	if err != nil {
		return e.fail(ctx, ev, "load lot", err)
	}
	if lot.Status != domain.LotPendingReview {
		e.finish(ctx, ev.UserID, cur)
		e.reply(ctx, ev.ChatID, alreadyDecidedHint(lotCard(lot)), WithoutKeyboard())
		return nil
	}

	err = e.lots.UpdateStatus(ctx, cur.LotID, status, reason)
	if errors.Is(err, domain.ErrNotFound) {
		e.finish(ctx, ev.UserID, cur)
		e.reply(ctx, ev.ChatID, textLotNotFound, WithoutKeyboard())
		return nil
	}
	if err != nil {
		return e.fail(ctx, ev, "update lot status", err)
	}
	lot.Status, lot.Reason = status, reason
	metrics.RecordModeration("lot", string(status))
	e.finish(ctx, ev.UserID, cur)
	logger.Info(ctx, engineComponent, "lot.decided",
		slog.Int64("lot_id", lot.ID),
		slog.Int64("admin_id", ev.UserID),
		slog.String("status", string(status)),
	)

	if status == domain.LotActive {
		e.reply(ctx, lot.UserID, fmt.Sprintf("Ваш лот №%d был одобрен и опубликован в канале.", lot.ID))
		e.publish(ctx, lot)
		e.reply(ctx, ev.ChatID, fmt.Sprintf("Лот №%d одобрен и опубликован в канале.", lot.ID), WithoutKeyboard())
		return nil
	}
	e.reply(ctx, lot.UserID, fmt.Sprintf("Ваш лот №%d был отклонен. Причина: %s", lot.ID, reason))
	e.reply(ctx, ev.ChatID, textReasonSent, WithoutKeyboard())
	return nil
}

// publish announces an active lot in the channel, with its photo when present.
func (e *Engine) publish(ctx context.Context, lot domain.Lot) {
	post := channelPost(lot, e.botUsername)
	if lot.HasPhoto() {
		e.replyPhoto(ctx, e.channelID, lot.Photo, post)
		return
	}
	e.reply(ctx, e.channelID, post)
}

func busyText(p Phase, ev Event) string {
	switch p.(type) {
	case LotDescription, LotPrice, LotPhoto:
		if ev.Kind == KindCommand && ev.Command == "start" {
			return textBusyLotStart
		}
		return textBusyLot
	case SellerPhone, SellerEmail, SellerName:
		return textBusySeller
	default:
		return textBusyReview
	}
}
