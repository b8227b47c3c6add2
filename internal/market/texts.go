package market

import (
	"fmt"
	"strings"

	"github.com/m3rciful/lotbot/internal/domain"
)

// Decision tokens an admin types while reviewing.
const (
	TokenApprove = "Одобрить"
	TokenReject  = "Отклонить"
)

const (
	textGenericError   = "Произошла ошибка. Попробуйте ещё раз позже."
	textAccessDenied   = "Вы не админ."
	textCancelled      = "Текущее действие отменено."
	textBusyLot        = "Вы в процессе создания лота. Используйте /cancel для отмены."
	textBusyLotStart   = "Вы уже в процессе создания лота. Продолжайте вводить данные."
	textBusySeller     = "Вы в процессе заполнения заявки. Используйте /cancel для отмены."
	textBusyReview     = "Сначала завершите рассмотрение или используйте /cancel для отмены."
	textDecisionPrompt = "Пожалуйста, напишите 'Одобрить' или 'Отклонить'."
	textTextExpected   = "Пожалуйста, отправьте текстовое сообщение."

	textStartNotSeller = "Привет! Я бот для продажи лотов. Чтобы начать продавать, вам нужно получить статус 'Продавец'. Используйте команду /seller для подачи заявки."
	textLotDescription = "Привет! Сейчас тебе надо написать описание для твоего лота. " +
		"(Не пишите нецензурные слова, цену (ее вы укажете позже), " +
		"не прикрепляйте фото (их вы прикрепите позже). " +
		"Напишите ваши контактные данные для связи."
	textLotPrice     = "Теперь отправь цену лота."
	textLotPhoto     = "Теперь отправь фото лота."
	textPhotoNeeded  = "Пожалуйста, отправьте фото."
	textLotSubmitted = "Лот отправлен на проверку админу."

	textSellerStart     = "Чтобы стать продавцом, заполните заявку. Введите ваш номер телефона:"
	textSellerRestart   = "Ваша предыдущая заявка была отклонена. Давайте начнем новую заявку. Введите ваш номер телефона:"
	textSellerPending   = "Ваша заявка уже находится на рассмотрении."
	textSellerApproved  = "Вы уже являетесь продавцом."
	textSellerEmail     = "Теперь введите вашу электронную почту:"
	textSellerName      = "Теперь введите ваше имя:"
	textSellerSubmitted = "Ваша заявка успешно отправлена на рассмотрение."

	textReasonSellerPrompt = "Укажите причину отклонения заявки."
	textReasonLotPrompt    = "Укажите причину отклонения лота."
	textReasonSent         = "Причина отклонения отправлена пользователю."
	textSellerApprovedUser = "Ваша заявка на статус 'Продавец' одобрена. Теперь вы можете создавать лоты."

	textSellerNotFound = "Заявка с таким ID не найдена."
	textLotNotFound    = "Лот с таким номером не найден."
	textLotNotOwned    = "Лот не найден или вы не являетесь его владельцем."
	textLotUnavailable = "Этот лот не доступен для покупки."
	textNoOwnLots      = "У вас пока нет лотов."
	textNoLots         = "Лотов пока нет."
	textNoPending      = "Заявок на рассмотрении нет."
	textNoSellers      = "Нет пользователей с активным статусом 'Продавец'."
	textFeedbackThanks = "Спасибо за ваш отзыв! Мы обязательно его рассмотрим."

	textMiniAppOpening = "Открываю мини-приложение..."
	textMiniAppButton  = "Открыть мини-приложение"
	textMiniAppCreate  = "Создание нового лота..."

	usageCheckSeller  = "Используйте команду /checkseller <ID пользователя> для проверки заявки на статус 'Продавец'. Пример: /checkseller 123456789"
	usageCheckLot     = "Используйте команду /checklot <номер лота> для проверки лота. Пример: /checklot 12345"
	usageDeleteOwn    = "Используйте команду /dltlot <номер лота> для удаления вашего лота. Пример: /dltlot 12345"
	usageAdminDelete  = "Используйте команду /admindlt <номер лота> для удаления любого лота. Пример: /admindlt 12345"
	usageBuyLot       = "Используйте команду /buylot <номер лота> для покупки лота. Пример: /buylot 12345"
	usageFeedback     = "Используйте команду /feedback <сообщение> для отправки отзыва или предложения. Пример: /feedback Ваш бот отличный!"
	usageDeleteSeller = "Используйте команду /dltseller <ID пользователя> для удаления статуса 'Продавец'. Пример: /dltseller 123456789"

	textHelpUser = `Доступные команды:
/start — Начать работу с ботом.
/seller — Подать заявку на статус "Продавец".
/app — Открыть мини-приложение.
/lots — Показать ваши лоты.
/dltlot <номер лота> — Удалить ваш лот (пример: /dltlot 12345).
/info — Показать информацию о командах.
/buylot <номер лота> — Купить лот (пример: /buylot 12345).
/feedback <сообщение> — Отправить отзыв или предложение.
/cancel — Отменить текущее действие.`

	textHelpAdmin = `

Команды для администраторов:
/adminslots — Показать все лоты.
/checklot <номер лота> — Проверить лот (пример: /checklot 12345).
/admindlt <номер лота> — Удалить любой лот (пример: /admindlt 12345).
/dltall — Удалить все лоты.
/checknewseller — Показать список заявок на статус "Продавец".
/checkseller <id пользователя> — Рассмотреть заявку на статус "Продавец".
/dltseller <id пользователя> — Удалить статус "Продавец" у пользователя.
/allsellers — Показать всех пользователей с активным статусом "Продавец".`
)

// LotStatusText is the user-facing label of a lot status.
func LotStatusText(s domain.LotStatus) string {
	switch s {
	case domain.LotPendingReview:
		return "На проверке"
	case domain.LotActive:
		return "Активен"
	case domain.LotRejected:
		return "Отклонен"
	}
	return string(s)
}

// SellerStatusText is the user-facing label of an application status.
func SellerStatusText(s domain.SellerStatus) string {
	switch s {
	case domain.SellerPendingReview:
		return "На проверке"
	case domain.SellerApproved:
		return "Одобрено"
	case domain.SellerRejected:
		return "Отказано"
	}
	return string(s)
}

func decisionKeyboard() SendOption {
	return WithKeyboard([]string{TokenApprove, TokenReject})
}

func newSellerAdminText(userID int64) string {
	return fmt.Sprintf("Новая заявка на статус \"Продавец\" от пользователя %d. Используйте /checknewseller для просмотра заявок.", userID)
}

func newLotAdminText(lotID, userID int64) string {
	return fmt.Sprintf("Поступил новый лот №%d от пользователя %d. Используйте /checklot %d для просмотра.", lotID, userID, lotID)
}

func sellerCard(app domain.SellerApplication) string {
	return fmt.Sprintf("Заявка от пользователя %d:\n\nТелефон: %s\nПочта: %s\nИмя: %s\nСтатус: %s",
		app.UserID, app.Phone, app.Email, app.Name, SellerStatusText(app.Status))
}

func lotCard(lot domain.Lot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Лот №%d\n\nID пользователя: %d\nОписание: %s\nЦена: %s\nСтатус: %s",
		lot.ID, lot.UserID, lot.Description, lot.Price, LotStatusText(lot.Status))
	if lot.Status == domain.LotRejected && lot.Reason != "" {
		fmt.Fprintf(&b, "\nПричина: %s", lot.Reason)
	}
	return b.String()
}

func withDecisionHint(card string) string {
	return card + "\n\nНапишите 'Одобрить' или 'Отклонить'."
}

func alreadyDecidedHint(card string) string {
	return card + "\n\nРешение по этой записи уже принято."
}

func channelPost(lot domain.Lot, botUsername string) string {
	return fmt.Sprintf("Новый лот!\n\nОписание: %s\nЦена: %s\n\nНомер лота: %d\n\nДля покупки лота, напишите в нашего бота @%s команду - /buylot %d",
		lot.Description, lot.Price, lot.ID, botUsername, lot.ID)
}

func ownLotsText(lots []domain.Lot) string {
	var b strings.Builder
	b.WriteString("Ваши лоты:\n")
	for _, l := range lots {
		fmt.Fprintf(&b, "\nНомер лота: %d\nОписание: %s\nЦена: %s\nСтатус: %s\n",
			l.ID, l.Description, l.Price, LotStatusText(l.Status))
		if l.Status == domain.LotRejected {
			fmt.Fprintf(&b, "Причина: %s\n", l.Reason)
		}
	}
	return b.String()
}

func allLotsText(lots []domain.Lot) string {
	var b strings.Builder
	b.WriteString("Все лоты:\n")
	for _, l := range lots {
		fmt.Fprintf(&b, "\nНомер лота: %d\nID пользователя: %d\nОписание: %s\nЦена: %s\nСтатус: %s\n",
			l.ID, l.UserID, l.Description, l.Price, LotStatusText(l.Status))
	}
	return b.String()
}

func sellersText(header string, apps []domain.SellerApplication, withStatus bool) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, a := range apps {
		fmt.Fprintf(&b, "\nID пользователя: %d\nТелефон: %s\nПочта: %s\nИмя: %s\n", a.UserID, a.Phone, a.Email, a.Name)
		if withStatus {
			fmt.Fprintf(&b, "Статус: %s\n", SellerStatusText(a.Status))
		}
	}
	return b.String()
}
