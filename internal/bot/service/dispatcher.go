package service

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/r1kuza/schoolbot/internal/bot/constant"
	"github.com/r1kuza/schoolbot/internal/bot/state"
)

// Dispatch routes one inbound update. A redelivered update id is a no-op;
// a panic in any handler is logged and never reaches the polling loop.
func (b *BotService) Dispatch(update *tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Recovered from panic while processing update %d: %v", update.UpdateID, r)
		}
	}()

	if !b.window.Observe(update.UpdateID) {
		logrus.Infof("Skipping already processed update %d", update.UpdateID)
		return
	}

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(update.Message)
	}
}

func (b *BotService) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	userID := msg.From.ID
	username := msg.From.UserName

	if b.limiter != nil && b.limiter.Limited(userID) {
		logrus.Warnf("SECURITY: rate_limit_exceeded - User: %d - Username: %s", userID, username)
		b.transport.SendText(chatID, "⚠️ Слишком много запросов. Пожалуйста, подождите.", nil)
		return
	}

	if msg.Document != nil {
		if f, ok := b.states.Get(username); ok {
			if imp, ok := f.(*state.ImportSchedule); ok && imp.AwaitingFile {
				b.handleImportDocument(chatID, username, imp, msg.Document)
			}
		}
		// Documents outside an awaiting import flow are ignored.
		return
	}

	text := msg.Text
	if text == "" {
		return
	}

	if f, ok := b.states.Get(username); ok {
		if text == constant.BUTTON_TEXT_CANCEL {
			b.states.Clear(username)
			b.transport.SendText(chatID, "Действие отменено", cancelReturnKeyboard(f))
			return
		}
		b.handleFlowText(chatID, username, f, text)
		return
	}

	switch {
	case strings.HasPrefix(text, "/start"):
		logrus.Infof("Message [%s] from %s (chat %d)", text, username, chatID)
		b.handleStart(chatID, userID, msg.From.FirstName)
	case strings.HasPrefix(text, "/help"):
		b.handleHelp(chatID, username)
	case strings.HasPrefix(text, "/admin_panel"):
		b.handleAdminPanel(chatID, username)
	case isMainMenuButton(text):
		b.handleMainMenu(chatID, userID, username, text)
	case isAdminMenuButton(text):
		b.handleAdminMenu(chatID, username, text)
	default:
		b.handleRegistration(chatID, userID, text)
	}
}

func (b *BotService) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.From == nil || cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	username := cb.From.UserName

	if b.limiter != nil && b.limiter.Limited(cb.From.ID) {
		logrus.Warnf("SECURITY: rate_limit_exceeded - Callback from: %s", username)
		return
	}
	b.transport.AnswerCallback(cb.ID)

	switch {
	case strings.HasPrefix(cb.Data, constant.CALLBACK_PREFIX_CLASS):
		class := strings.TrimPrefix(cb.Data, constant.CALLBACK_PREFIX_CLASS)
		if f, ok := b.states.Get(username); ok {
			if edit, ok := f.(*state.EditSchedule); ok && edit.Step == state.SchedulePickClass {
				b.handleSchedulePickClass(chatID, username, class)
				return
			}
		}
		b.showClassSchedule(chatID, class, "monday")

	case strings.HasPrefix(cb.Data, constant.CALLBACK_PREFIX_DAY):
		day := strings.TrimPrefix(cb.Data, constant.CALLBACK_PREFIX_DAY)
		if f, ok := b.states.Get(username); ok {
			if edit, ok := f.(*state.EditSchedule); ok && edit.Step == state.SchedulePickDay {
				b.handleSchedulePickDay(chatID, username, edit, day)
				return
			}
		}
		b.showOwnSchedule(chatID, cb.From.ID, day)

	case strings.HasPrefix(cb.Data, constant.CALLBACK_PREFIX_SHIFT):
		shift := strings.TrimPrefix(cb.Data, constant.CALLBACK_PREFIX_SHIFT)
		if f, ok := b.states.Get(username); ok {
			if imp, ok := f.(*state.ImportSchedule); ok && !imp.AwaitingFile {
				b.handleImportPickShift(chatID, username, shift)
			}
		}
	}
}

// handleFlowText forwards a text message to the active flow's next step.
// A flow waiting for a button press treats text as invalid input and
// aborts, like any other validation failure.
func (b *BotService) handleFlowText(chatID int64, username string, f state.Flow, text string) {
	switch flow := f.(type) {
	case *state.AddClass, *state.DeleteClass:
		b.handleClassInput(chatID, username, f, text)
	case *state.DeleteUser:
		b.handleDeleteUserInput(chatID, username, text)
	case *state.EditBell:
		b.handleBellInput(chatID, username, flow, text)
	case *state.EditSchedule:
		if flow.Step == state.ScheduleEnterText {
			b.handleScheduleTextInput(chatID, username, flow, text)
			return
		}
		b.abortFlow(chatID, username, f, "❌ Ожидался выбор кнопкой. Действие прервано")
	case *state.ImportSchedule:
		b.abortFlow(chatID, username, f, "❌ Ожидался файл с расписанием. Действие прервано")
	}
}

// abortFlow terminates the active flow after invalid input. There is no
// retry in place: the operator restarts the command.
func (b *BotService) abortFlow(chatID int64, username string, f state.Flow, text string) {
	b.states.Clear(username)
	b.transport.SendText(chatID, text, cancelReturnKeyboard(f))
}

func isMainMenuButton(text string) bool {
	switch text {
	case constant.BUTTON_TEXT_MY_SCHEDULE,
		constant.BUTTON_TEXT_ALL_SCHEDULES,
		constant.BUTTON_TEXT_BELLS,
		constant.BUTTON_TEXT_HELP:
		return true
	}
	return false
}

func isAdminMenuButton(text string) bool {
	switch text {
	case constant.BUTTON_TEXT_USERS_LIST,
		constant.BUTTON_TEXT_DELETE_USER,
		constant.BUTTON_TEXT_EDIT_SCHEDULE,
		constant.BUTTON_TEXT_IMPORT_SCHEDULE,
		constant.BUTTON_TEXT_CLASSES_MENU,
		constant.BUTTON_TEXT_BELLS_MENU,
		constant.BUTTON_TEXT_STATISTICS,
		constant.BUTTON_TEXT_BACK,
		constant.BUTTON_TEXT_BACK_TO_ADMIN,
		constant.BUTTON_TEXT_ADD_CLASS,
		constant.BUTTON_TEXT_DELETE_CLASS,
		constant.BUTTON_TEXT_EDIT_BELL,
		constant.BUTTON_TEXT_SHOW_BELLS:
		return true
	}
	return false
}
