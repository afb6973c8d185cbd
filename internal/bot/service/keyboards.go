package service

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/r1kuza/schoolbot/internal/bot/constant"
	"github.com/r1kuza/schoolbot/internal/bot/models"
	"github.com/r1kuza/schoolbot/internal/bot/state"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	markup := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_MY_SCHEDULE),
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_ALL_SCHEDULES),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_BELLS),
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_HELP),
		),
	)
	markup.ResizeKeyboard = true
	return markup
}

func adminMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	markup := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_USERS_LIST),
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_DELETE_USER),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_EDIT_SCHEDULE),
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_IMPORT_SCHEDULE),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_CLASSES_MENU),
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_BELLS_MENU),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_STATISTICS),
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_BACK),
		),
	)
	markup.ResizeKeyboard = true
	return markup
}

func classesMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	markup := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_ADD_CLASS),
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_DELETE_CLASS),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_BACK_TO_ADMIN),
		),
	)
	markup.ResizeKeyboard = true
	return markup
}

func bellsMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	markup := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_EDIT_BELL),
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_SHOW_BELLS),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_BACK_TO_ADMIN),
		),
	)
	markup.ResizeKeyboard = true
	return markup
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	markup := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(constant.BUTTON_TEXT_CANCEL),
		),
	)
	markup.ResizeKeyboard = true
	return markup
}

// allClasses lists every class of the school grammar for selection
// keyboards, in grade order.
func allClasses() []string {
	var classes []string
	for grade := 5; grade <= 9; grade++ {
		for _, letter := range []string{"А", "Б", "В"} {
			classes = append(classes, string(rune('0'+grade))+letter)
		}
	}
	return append(classes, "10П", "10Р", "11Р")
}

func classSelectionKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, class := range allClasses() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(class, constant.CALLBACK_PREFIX_CLASS+class))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func daySelectionKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, code := range models.DayCodes {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(models.DayName(code), constant.CALLBACK_PREFIX_DAY+code),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func shiftSelectionKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("1 смена", constant.CALLBACK_PREFIX_SHIFT+"1"),
			tgbotapi.NewInlineKeyboardButtonData("2 смена", constant.CALLBACK_PREFIX_SHIFT+"2"),
		),
	)
}

// cancelReturnKeyboard picks the menu a cancelled or aborted flow
// returns to.
func cancelReturnKeyboard(f state.Flow) interface{} {
	switch f.(type) {
	case *state.AddClass, *state.DeleteClass:
		return classesMenuKeyboard()
	case *state.EditBell:
		return bellsMenuKeyboard()
	default:
		return adminMenuKeyboard()
	}
}
