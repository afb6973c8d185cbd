package service

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/r1kuza/schoolbot/internal/bot/extract"
	"github.com/r1kuza/schoolbot/internal/bot/models"
	"github.com/r1kuza/schoolbot/internal/bot/state"
	"github.com/r1kuza/schoolbot/internal/bot/timetable"
	"github.com/r1kuza/schoolbot/internal/bot/validation"
)

// handleClassInput completes the AddClass and DeleteClass flows.
func (b *BotService) handleClassInput(chatID int64, username string, f state.Flow, text string) {
	b.states.Clear(username)

	class := strings.ToUpper(strings.TrimSpace(text))
	if !validation.IsValidClass(class) {
		b.transport.SendText(chatID, "❌ Неверный формат класса", classesMenuKeyboard())
		return
	}

	switch f.(type) {
	case *state.AddClass:
		// A class "exists" only once a user registers into it; a grammar
		// pass is all adding takes.
		b.transport.SendText(chatID,
			fmt.Sprintf("✅ Класс %s доступен для регистрации", class), classesMenuKeyboard())
	case *state.DeleteClass:
		removed, err := b.storage.DeleteClass(class)
		if err != nil {
			logrus.WithError(err).Error("Failed to delete class")
			b.transport.SendText(chatID, "❌ Произошла ошибка, попробуйте позже", classesMenuKeyboard())
			return
		}
		if removed > 0 {
			b.transport.SendText(chatID,
				fmt.Sprintf("✅ Класс %s и все связанные пользователи удалены", class), classesMenuKeyboard())
		} else {
			b.transport.SendText(chatID,
				fmt.Sprintf("❌ Класс %s не найден или в нем нет пользователей", class), classesMenuKeyboard())
		}
	}
}

// handleDeleteUserInput completes the DeleteUser flow.
func (b *BotService) handleDeleteUserInput(chatID int64, username, text string) {
	b.states.Clear(username)

	userID, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		b.transport.SendText(chatID, "❌ Неверный формат ID. ID должен быть числом", adminMenuKeyboard())
		return
	}
	if userID <= 0 {
		b.transport.SendText(chatID, "❌ Неверный формат ID пользователя", adminMenuKeyboard())
		return
	}

	removed, err := b.storage.DeleteUser(userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to delete user")
		b.transport.SendText(chatID, "❌ Произошла ошибка, попробуйте позже", adminMenuKeyboard())
		return
	}
	if removed {
		logrus.Warnf("SECURITY: user_deleted - Admin: %s - Deleted user: %d", username, userID)
		b.transport.SendText(chatID, fmt.Sprintf("✅ Пользователь с ID %d удален", userID), adminMenuKeyboard())
	} else {
		b.transport.SendText(chatID, fmt.Sprintf("❌ Пользователь с ID %d не найден", userID), adminMenuKeyboard())
	}
}

// handleBellInput advances the three-step bell editing flow. Invalid input
// at any step aborts the flow.
func (b *BotService) handleBellInput(chatID int64, username string, flow *state.EditBell, text string) {
	text = strings.TrimSpace(text)

	switch flow.Step {
	case state.BellNumber:
		number, err := strconv.Atoi(text)
		if err != nil {
			b.states.Clear(username)
			b.transport.SendText(chatID, "❌ Введите число от 1 до 7", bellsMenuKeyboard())
			return
		}
		if number < 1 || number > 7 {
			b.states.Clear(username)
			b.transport.SendText(chatID, "❌ Номер урока должен быть от 1 до 7", bellsMenuKeyboard())
			return
		}
		b.states.Set(username, &state.EditBell{Step: state.BellStart, Number: number})
		b.transport.SendText(chatID,
			fmt.Sprintf("Урок %d. Введите время начала (формат ЧЧ:ММ):", number), cancelKeyboard())

	case state.BellStart:
		if !validation.IsValidTime(text) {
			b.states.Clear(username)
			b.transport.SendText(chatID, "❌ Неверный формат времени. Используйте ЧЧ:ММ", bellsMenuKeyboard())
			return
		}
		b.states.Set(username, &state.EditBell{Step: state.BellEnd, Number: flow.Number, Start: text})
		b.transport.SendText(chatID, "Введите время окончания (формат ЧЧ:ММ):", cancelKeyboard())

	case state.BellEnd:
		b.states.Clear(username)
		if !validation.IsValidTime(text) {
			b.transport.SendText(chatID, "❌ Неверный формат времени. Используйте ЧЧ:ММ", bellsMenuKeyboard())
			return
		}
		updated, err := b.storage.UpdateBellSlot(flow.Number, flow.Start, text)
		if err != nil {
			logrus.WithError(err).Error("Failed to update bell slot")
			b.transport.SendText(chatID, "❌ Ошибка обновления звонка", bellsMenuKeyboard())
			return
		}
		if !updated {
			b.transport.SendText(chatID, "❌ Ошибка обновления звонка", bellsMenuKeyboard())
			return
		}
		b.transport.SendText(chatID,
			fmt.Sprintf("✅ Звонок для урока %d обновлен: %s - %s", flow.Number, flow.Start, text),
			bellsMenuKeyboard())
	}
}

// handleSchedulePickClass advances the manual editing flow after the
// class_ callback.
func (b *BotService) handleSchedulePickClass(chatID int64, username, class string) {
	b.states.Set(username, &state.EditSchedule{Step: state.SchedulePickDay, Class: class})
	b.transport.SendText(chatID,
		fmt.Sprintf("Выбран класс: %s\nТеперь выберите день недели:", class), daySelectionKeyboard())
}

// handleSchedulePickDay shows the current lessons and asks for the new
// schedule block.
func (b *BotService) handleSchedulePickDay(chatID int64, username string, flow *state.EditSchedule, day string) {
	if !models.IsDayCode(day) {
		b.abortFlow(chatID, username, flow, "❌ Неизвестный день недели. Действие прервано")
		return
	}
	current, err := b.storage.GetSchedule(flow.Class, day)
	if err != nil {
		logrus.WithError(err).Error("Failed to load current schedule")
		b.abortFlow(chatID, username, flow, "❌ Произошла ошибка, попробуйте позже")
		return
	}

	b.states.Set(username, &state.EditSchedule{Step: state.ScheduleEnterText, Class: flow.Class, Day: day})
	b.transport.SendText(chatID,
		fmt.Sprintf("Редактирование расписания:\nКласс: %s\nДень: %s\n\n", flow.Class, models.DayNameAccusative(day))+
			timetable.FormatCurrentSchedule(current)+
			"Введите новое расписание в формате:\n\n"+
			"<code>1. Математика\n2. Физика (Иванов) - 201\n3. Химия - 301</code>\n\n"+
			"Или отправьте '-' для очистки расписания.",
		cancelKeyboard())
}

// handleScheduleTextInput completes the manual editing flow with a
// full-replace write for the picked class and day.
func (b *BotService) handleScheduleTextInput(chatID int64, username string, flow *state.EditSchedule, text string) {
	b.states.Clear(username)

	if timetable.IsClearMarker(text) {
		if err := b.storage.ReplaceSchedule(flow.Class, flow.Day, nil); err != nil {
			logrus.WithError(err).Error("Failed to clear schedule")
			b.transport.SendText(chatID, "❌ Произошла ошибка, попробуйте позже", adminMenuKeyboard())
			return
		}
		b.transport.SendText(chatID, "✅ Расписание очищено!", adminMenuKeyboard())
		return
	}

	var lessons []models.LessonRecord
	for _, parsed := range timetable.ParseText(text) {
		lessons = append(lessons, models.LessonRecord{
			Class:   flow.Class,
			Day:     flow.Day,
			Number:  parsed.Number,
			Subject: parsed.Subject,
			Teacher: parsed.Teacher,
			Room:    parsed.Room,
		})
	}
	if err := b.storage.ReplaceSchedule(flow.Class, flow.Day, lessons); err != nil {
		logrus.WithError(err).Error("Failed to save schedule")
		b.transport.SendText(chatID, "❌ Произошла ошибка, попробуйте позже", adminMenuKeyboard())
		return
	}
	b.transport.SendText(chatID,
		fmt.Sprintf("✅ Расписание для %s класса обновлено!", flow.Class), adminMenuKeyboard())
}

// handleImportPickShift advances the import flow to awaiting a document.
func (b *BotService) handleImportPickShift(chatID int64, username, shift string) {
	if shift != "1" && shift != "2" {
		f, _ := b.states.Get(username)
		b.abortFlow(chatID, username, f, "❌ Неизвестная смена. Действие прервано")
		return
	}
	b.states.Set(username, &state.ImportSchedule{Shift: shift, AwaitingFile: true})
	b.transport.SendText(chatID,
		fmt.Sprintf("Смена %s. Отправьте файл .xlsx с расписанием.", shift), cancelKeyboard())
}

// handleImportDocument completes the import flow: download, extract and
// full-replace every (class, day) present in the workbook.
func (b *BotService) handleImportDocument(chatID int64, username string, flow *state.ImportSchedule, doc *tgbotapi.Document) {
	b.states.Clear(username)

	data, err := b.transport.FetchFile(doc.FileID)
	if err != nil {
		logrus.WithError(err).Error("Failed to download schedule workbook")
		b.transport.SendText(chatID, "❌ Не удалось загрузить файл, попробуйте ещё раз", adminMenuKeyboard())
		return
	}

	res, err := b.extract(data, flow.Shift)
	if err != nil {
		b.transport.SendText(chatID, extractionFailureText(err), adminMenuKeyboard())
		return
	}

	grouped := make(map[string]map[string][]models.LessonRecord)
	for _, lesson := range res.Lessons {
		if grouped[lesson.Class] == nil {
			grouped[lesson.Class] = make(map[string][]models.LessonRecord)
		}
		grouped[lesson.Class][lesson.Day] = append(grouped[lesson.Class][lesson.Day], lesson)
	}

	classes := make([]string, 0, len(grouped))
	for class := range grouped {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	for _, class := range classes {
		days := make([]string, 0, len(grouped[class]))
		for day := range grouped[class] {
			days = append(days, day)
		}
		sort.Strings(days)
		for _, day := range days {
			lessons := grouped[class][day]
			if err = b.storage.ReplaceSchedule(class, day, lessons); err != nil {
				logrus.WithError(err).Errorf("Failed to save imported schedule for %s/%s", class, day)
				b.transport.SendText(chatID, "❌ Произошла ошибка при сохранении, импорт прерван", adminMenuKeyboard())
				return
			}
		}
	}

	text := fmt.Sprintf("✅ Импорт завершён: %d уроков для %d классов (лист «%s»)",
		len(res.Lessons), len(classes), res.Sheet)
	if res.SheetFallback {
		text += "\n⚠️ Лист для смены не найден по названию, взят первый лист книги"
	}
	if res.DefaultedDays > 0 {
		text += fmt.Sprintf("\n⚠️ День недели не определён для %d уроков, назначен понедельник", res.DefaultedDays)
	}
	b.transport.SendText(chatID, text, adminMenuKeyboard())
}

// extractionFailureText maps the extractor failure taxonomy to the
// operator-facing message.
func extractionFailureText(err error) string {
	switch {
	case errors.Is(err, extract.ErrNoSheets):
		return "❌ В файле нет ни одного листа"
	case errors.Is(err, extract.ErrNoClasses):
		return "❌ Не найдена строка с названиями классов"
	case errors.Is(err, extract.ErrNoLessonRows):
		return "❌ Не найдены строки с номерами уроков"
	case errors.Is(err, extract.ErrNoLessons):
		return "❌ Таблица разобрана, но уроков в ней не найдено"
	default:
		return "❌ Не удалось разобрать файл. Убедитесь, что это корректный .xlsx"
	}
}
