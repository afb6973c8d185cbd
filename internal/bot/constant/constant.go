package constant

// Button labels of the reply keyboards. The label text doubles as the
// routing key for incoming messages.
const (
	BUTTON_TEXT_MY_SCHEDULE     = "📚 Моё расписание"
	BUTTON_TEXT_ALL_SCHEDULES   = "🏫 Общее расписание"
	BUTTON_TEXT_BELLS           = "🔔 Звонки"
	BUTTON_TEXT_HELP            = "ℹ️ Помощь"
	BUTTON_TEXT_USERS_LIST      = "👥 Список пользователей"
	BUTTON_TEXT_DELETE_USER     = "❌ Удалить пользователя"
	BUTTON_TEXT_EDIT_SCHEDULE   = "📝 Редактировать расписание"
	BUTTON_TEXT_IMPORT_SCHEDULE = "📥 Импорт из Excel"
	BUTTON_TEXT_CLASSES_MENU    = "🏫 Управление классами"
	BUTTON_TEXT_BELLS_MENU      = "🕧 Управление звонками"
	BUTTON_TEXT_STATISTICS      = "📊 Статистика"
	BUTTON_TEXT_BACK            = "⬅️ Назад"
	BUTTON_TEXT_BACK_TO_ADMIN   = "⬅️ Назад в админку"
	BUTTON_TEXT_ADD_CLASS       = "➕ Добавить класс"
	BUTTON_TEXT_DELETE_CLASS    = "➖ Удалить класс"
	BUTTON_TEXT_EDIT_BELL       = "✏️ Изменить звонок"
	BUTTON_TEXT_SHOW_BELLS      = "👀 Посмотреть все звонки"
	BUTTON_TEXT_CANCEL          = "❌ Отменить"
)

// Callback data prefixes of the inline keyboards.
const (
	CALLBACK_PREFIX_CLASS = "class_"
	CALLBACK_PREFIX_DAY   = "day_"
	CALLBACK_PREFIX_SHIFT = "shift_"
)
