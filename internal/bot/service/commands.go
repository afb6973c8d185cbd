package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/r1kuza/schoolbot/internal/bot/constant"
	"github.com/r1kuza/schoolbot/internal/bot/models"
	"github.com/r1kuza/schoolbot/internal/bot/state"
	"github.com/r1kuza/schoolbot/internal/bot/timetable"
	"github.com/r1kuza/schoolbot/internal/bot/validation"
)

const classListHint = "<b>Доступные классы:</b>\n" +
	"5-9 классы: А, Б, В\n" +
	"10 класс: П, Р\n" +
	"11 класс: Р"

func (b *BotService) handleStart(chatID, userID int64, firstName string) {
	if firstName == "" {
		firstName = "друг"
	}
	user, err := b.storage.GetUser(userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to load user on /start")
		b.transport.SendText(chatID, "❌ Произошла ошибка, попробуйте позже", nil)
		return
	}

	if user != nil {
		text := fmt.Sprintf("Привет, %s!\nТы уже зарегистрирован в системе.\nТвой класс: %s",
			firstName, user.Class)
		b.transport.SendText(chatID, text, mainMenuKeyboard())
		return
	}

	text := fmt.Sprintf("Привет, %s!\n", firstName) +
		"Я бот для просмотра расписания школы.\n\n" +
		"Для начала работы необходимо зарегистрироваться.\n" +
		"Пожалуйста, введите своё ФИО и класс в формате:\n" +
		"<b>Фамилия Имя Отчество, Класс</b>\n\n" +
		"Например: <i>Иванов Иван Иванович, 10П</i>\n\n" +
		classListHint
	b.transport.SendText(chatID, text, nil)
}

func (b *BotService) handleHelp(chatID int64, username string) {
	text := "📚 <b>Школьный бот - помощь</b>\n\n" +
		"Я помогу тебе узнать расписание уроков.\n\n" +
		"<b>Основные команды:</b>\n" +
		"• /start - начать работу\n" +
		"• /help - показать эту справку\n\n" +
		"<b>Возможности:</b>\n" +
		"• <b>Моё расписание</b> - расписание для твоего класса\n" +
		"• <b>Общее расписание</b> - расписание для любого класса\n" +
		"• <b>Звонки</b> - расписание звонков\n\n" +
		"Для регистрации введи своё ФИО и класс в формате:\n" +
		"<i>Фамилия Имя Отчество, Класс</i>\n\n" +
		classListHint
	if b.isAdmin(username) {
		text += "\n\n🔐 <b>Секретная команда для админа:</b>\n/admin_panel"
	}
	b.transport.SendText(chatID, text, nil)
}

func (b *BotService) handleAdminPanel(chatID int64, username string) {
	if !b.isAdmin(username) {
		logrus.Warnf("SECURITY: unauthorized_admin_access - User: %d - Username: %s", chatID, username)
		b.transport.SendText(chatID, "❌ У вас нет доступа к админ-панели", nil)
		return
	}
	b.transport.SendText(chatID, "👨‍💼 <b>Панель администратора</b>\n\nВыберите действие:", adminMenuKeyboard())
}

func (b *BotService) handleMainMenu(chatID, userID int64, username, text string) {
	user, err := b.storage.GetUser(userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to load user for main menu")
		b.transport.SendText(chatID, "❌ Произошла ошибка, попробуйте позже", nil)
		return
	}
	if user == nil {
		b.transport.SendText(chatID,
			"❌ Вы не зарегистрированы. Пожалуйста, введите своё ФИО и класс для регистрации.", nil)
		return
	}

	switch text {
	case constant.BUTTON_TEXT_MY_SCHEDULE:
		prompt := fmt.Sprintf("Выберите день недели для расписания %s класса:", user.Class)
		b.transport.SendText(chatID, prompt, daySelectionKeyboard())
	case constant.BUTTON_TEXT_ALL_SCHEDULES:
		b.transport.SendText(chatID, "Выберите класс:", classSelectionKeyboard())
	case constant.BUTTON_TEXT_BELLS:
		slots, err := b.storage.GetBellSlots()
		if err != nil {
			logrus.WithError(err).Error("Failed to load bell schedule")
			b.transport.SendText(chatID, "❌ Произошла ошибка, попробуйте позже", nil)
			return
		}
		b.transport.SendText(chatID, timetable.FormatBellsWithBreaks(slots), nil)
	case constant.BUTTON_TEXT_HELP:
		b.handleHelp(chatID, username)
	}
}

func (b *BotService) handleAdminMenu(chatID int64, username, text string) {
	if !b.isAdmin(username) {
		logrus.Warnf("SECURITY: unauthorized_admin_action - User: %d - Action: %s", chatID, text)
		b.transport.SendText(chatID, "❌ У вас нет доступа к этой функции", nil)
		return
	}

	switch text {
	case constant.BUTTON_TEXT_USERS_LIST:
		b.showUsersList(chatID)
	case constant.BUTTON_TEXT_DELETE_USER:
		b.states.Set(username, &state.DeleteUser{})
		b.transport.SendText(chatID,
			"Введите ID пользователя для удаления:\n\n"+
				"ID можно узнать через команду '👥 Список пользователей'",
			cancelKeyboard())
	case constant.BUTTON_TEXT_EDIT_SCHEDULE:
		b.states.Set(username, &state.EditSchedule{Step: state.SchedulePickClass})
		b.transport.SendText(chatID, "Выберите класс для редактирования расписания:", classSelectionKeyboard())
	case constant.BUTTON_TEXT_IMPORT_SCHEDULE:
		b.states.Set(username, &state.ImportSchedule{})
		b.transport.SendText(chatID,
			"Импорт расписания из Excel.\nВыберите смену:", shiftSelectionKeyboard())
	case constant.BUTTON_TEXT_CLASSES_MENU:
		b.transport.SendText(chatID, "🏫 Управление классами", classesMenuKeyboard())
	case constant.BUTTON_TEXT_BELLS_MENU:
		b.transport.SendText(chatID, "🕧 Управление расписанием звонков", bellsMenuKeyboard())
	case constant.BUTTON_TEXT_STATISTICS:
		b.showStatistics(chatID)
	case constant.BUTTON_TEXT_BACK:
		b.transport.SendText(chatID, "Главное меню", mainMenuKeyboard())
	case constant.BUTTON_TEXT_BACK_TO_ADMIN:
		b.handleAdminPanel(chatID, username)
	case constant.BUTTON_TEXT_ADD_CLASS:
		b.states.Set(username, &state.AddClass{})
		b.transport.SendText(chatID,
			"Введите название класса для добавления:\n\n"+
				"Формат: 5А, 10П, 11Р и т.д.\n"+
				"Доступные классы: 5-9 классы (А, Б, В), 10-11 классы (П, Р)",
			cancelKeyboard())
	case constant.BUTTON_TEXT_DELETE_CLASS:
		b.states.Set(username, &state.DeleteClass{})
		classes, err := b.storage.ListDistinctClasses()
		if err != nil {
			logrus.WithError(err).Error("Failed to list classes")
		}
		classesText := "❌ Нет зарегистрированных классов"
		if len(classes) > 0 {
			classesText = "Существующие классы:\n" + strings.Join(classes, "\n")
		}
		b.transport.SendText(chatID,
			classesText+"\n\nВведите название класса для удаления:", cancelKeyboard())
	case constant.BUTTON_TEXT_EDIT_BELL:
		b.states.Set(username, &state.EditBell{Step: state.BellNumber})
		b.transport.SendText(chatID, "Введите номер урока для изменения (1-7):", cancelKeyboard())
	case constant.BUTTON_TEXT_SHOW_BELLS:
		slots, err := b.storage.GetBellSlots()
		if err != nil {
			logrus.WithError(err).Error("Failed to load bell schedule")
			b.transport.SendText(chatID, "❌ Произошла ошибка, попробуйте позже", nil)
			return
		}
		b.transport.SendText(chatID, timetable.FormatBells(slots), nil)
	}
}

func (b *BotService) showUsersList(chatID int64) {
	users, err := b.storage.ListUsers()
	if err != nil {
		logrus.WithError(err).Error("Failed to list users")
		b.transport.SendText(chatID, "❌ Произошла ошибка, попробуйте позже", nil)
		return
	}
	if len(users) == 0 {
		b.transport.SendText(chatID, "❌ Нет зарегистрированных пользователей", nil)
		return
	}

	var text strings.Builder
	text.WriteString("👥 <b>Список пользователей</b>\n\n")
	for _, user := range users {
		fmt.Fprintf(&text, "👤 %s - %s (ID: %d)\n", user.FullName, user.Class, user.ID)
		fmt.Fprintf(&text, "   📅 Зарегистрирован: %s\n\n", user.RegisteredAt.Format("2006-01-02"))
	}
	b.transport.SendText(chatID, text.String(), nil)
}

func (b *BotService) showStatistics(chatID int64) {
	counts, err := b.storage.CountByClass()
	if err != nil {
		logrus.WithError(err).Error("Failed to load statistics")
		b.transport.SendText(chatID, "❌ Произошла ошибка, попробуйте позже", nil)
		return
	}

	total := 0
	classes := make([]string, 0, len(counts))
	for class, n := range counts {
		total += n
		classes = append(classes, class)
	}
	sort.Strings(classes)

	var text strings.Builder
	text.WriteString("📊 <b>Статистика бота</b>\n\n")
	fmt.Fprintf(&text, "👥 Всего пользователей: %d\n\n", total)
	if len(classes) > 0 {
		text.WriteString("<b>Распределение по классам:</b>\n")
		for _, class := range classes {
			fmt.Fprintf(&text, "• %s: %d чел.\n", class, counts[class])
		}
	}
	b.transport.SendText(chatID, text.String(), nil)
}

// showClassSchedule is the stateless schedule view behind class_ callbacks.
func (b *BotService) showClassSchedule(chatID int64, class, day string) {
	lessons, err := b.storage.GetSchedule(class, day)
	if err != nil {
		logrus.WithError(err).Error("Failed to load schedule")
		b.transport.SendText(chatID, "❌ Произошла ошибка, попробуйте позже", nil)
		return
	}
	b.transport.SendText(chatID, timetable.FormatSchedule(class, day, lessons), nil)
}

// showOwnSchedule resolves the pressing user's class and shows their day.
func (b *BotService) showOwnSchedule(chatID, userID int64, day string) {
	if !models.IsDayCode(day) {
		return
	}
	user, err := b.storage.GetUser(userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to load user for schedule view")
		return
	}
	if user == nil {
		return
	}
	b.showClassSchedule(chatID, user.Class, day)
}

func (b *BotService) handleRegistration(chatID, userID int64, text string) {
	existing, err := b.storage.GetUser(userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to load user for registration")
		b.transport.SendText(chatID, "❌ Произошла ошибка, попробуйте позже", nil)
		return
	}
	if existing != nil {
		b.transport.SendText(chatID, "Вы уже зарегистрированы!", mainMenuKeyboard())
		return
	}

	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		b.transport.SendText(chatID,
			"❌ Неверный формат. Пожалуйста, введите данные в формате:\n"+
				"<b>Фамилия Имя Отчество, Класс</b>\n\n"+
				"Например: <i>Иванов Иван Иванович, 10П</i>\n\n"+
				classListHint, nil)
		return
	}

	fullName := strings.TrimSpace(parts[0])
	class := strings.TrimSpace(parts[1])

	if !validation.IsValidFullName(fullName) {
		b.transport.SendText(chatID,
			"❌ Неверный формат ФИО. ФИО должно содержать как минимум 2 слова, "+
				"состоять только из букв и каждое слово должно быть от 2 до 20 символов.", nil)
		return
	}
	if !validation.IsValidClass(class) {
		b.transport.SendText(chatID,
			"❌ Неверный формат класса.\n\n"+classListHint+"\n\nПример: 5А, 10П, 11Р", nil)
		return
	}

	class = strings.ToUpper(class)
	created, err := b.storage.CreateUser(userID, fullName, class)
	if err != nil {
		logrus.WithError(err).Error("Failed to create user")
		b.transport.SendText(chatID, "❌ Произошла ошибка, попробуйте позже", nil)
		return
	}
	if created {
		b.transport.SendText(chatID,
			fmt.Sprintf("✅ Регистрация прошла успешно!\nФИО: %s\nКласс: %s", fullName, class),
			mainMenuKeyboard())
		return
	}
	b.transport.SendText(chatID,
		fmt.Sprintf("❌ Не удалось зарегистрироваться. Возможно, достигнут лимит пользователей в классе %s.", class),
		mainMenuKeyboard())
}
