package service

import (
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r1kuza/schoolbot/internal/bot/dedup"
	"github.com/r1kuza/schoolbot/internal/bot/extract"
	"github.com/r1kuza/schoolbot/internal/bot/models"
	"github.com/r1kuza/schoolbot/internal/bot/state"
)

type sentMessage struct {
	chatID int64
	text   string
	markup interface{}
}

type fakeTransport struct {
	sent     []sentMessage
	answered []string
	fileData []byte
	fileErr  error
	fetched  []string
}

func (t *fakeTransport) SendText(chatID int64, text string, markup interface{}) error {
	t.sent = append(t.sent, sentMessage{chatID: chatID, text: text, markup: markup})
	return nil
}

func (t *fakeTransport) AnswerCallback(id string) error {
	t.answered = append(t.answered, id)
	return nil
}

func (t *fakeTransport) FetchFile(fileID string) ([]byte, error) {
	t.fetched = append(t.fetched, fileID)
	return t.fileData, t.fileErr
}

func (t *fakeTransport) lastText() string {
	if len(t.sent) == 0 {
		return ""
	}
	return t.sent[len(t.sent)-1].text
}

type scheduleKey struct{ class, day string }

type fakeStorage struct {
	users     map[int64]models.User
	schedules map[scheduleKey][]models.LessonRecord
	bells     map[int]models.BellSlot

	replaceCalls []scheduleKey
	deleteCalls  int
	bellUpdates  int
}

func newFakeStorage() *fakeStorage {
	bells := make(map[int]models.BellSlot)
	for i := 1; i <= 7; i++ {
		bells[i] = models.BellSlot{Number: i, Start: "8:00", End: "8:40"}
	}
	return &fakeStorage{
		users:     make(map[int64]models.User),
		schedules: make(map[scheduleKey][]models.LessonRecord),
		bells:     bells,
	}
}

func (s *fakeStorage) GetUser(id int64) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *fakeStorage) CreateUser(id int64, fullName, class string) (bool, error) {
	count := 0
	for _, u := range s.users {
		if u.Class == class {
			count++
		}
	}
	if count >= 30 {
		return false, nil
	}
	s.users[id] = models.User{ID: id, FullName: fullName, Class: class, RegisteredAt: time.Now()}
	return true, nil
}

func (s *fakeStorage) DeleteUser(id int64) (bool, error) {
	s.deleteCalls++
	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	return true, nil
}

func (s *fakeStorage) DeleteClass(class string) (int64, error) {
	var n int64
	for id, u := range s.users {
		if u.Class == class {
			delete(s.users, id)
			n++
		}
	}
	return n, nil
}

func (s *fakeStorage) ListUsers() ([]models.User, error) {
	var users []models.User
	for _, u := range s.users {
		users = append(users, u)
	}
	return users, nil
}

func (s *fakeStorage) ListDistinctClasses() ([]string, error) {
	set := make(map[string]struct{})
	for _, u := range s.users {
		set[u.Class] = struct{}{}
	}
	var classes []string
	for c := range set {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return classes, nil
}

func (s *fakeStorage) CountByClass() (map[string]int, error) {
	counts := make(map[string]int)
	for _, u := range s.users {
		counts[u.Class]++
	}
	return counts, nil
}

func (s *fakeStorage) GetSchedule(class, day string) ([]models.LessonRecord, error) {
	return s.schedules[scheduleKey{class, day}], nil
}

func (s *fakeStorage) ReplaceSchedule(class, day string, lessons []models.LessonRecord) error {
	s.replaceCalls = append(s.replaceCalls, scheduleKey{class, day})
	if len(lessons) == 0 {
		delete(s.schedules, scheduleKey{class, day})
		return nil
	}
	s.schedules[scheduleKey{class, day}] = lessons
	return nil
}

func (s *fakeStorage) GetBellSlots() ([]models.BellSlot, error) {
	var slots []models.BellSlot
	for i := 1; i <= 7; i++ {
		slots = append(slots, s.bells[i])
	}
	return slots, nil
}

func (s *fakeStorage) UpdateBellSlot(number int, start, end string) (bool, error) {
	s.bellUpdates++
	if _, ok := s.bells[number]; !ok {
		return false, nil
	}
	s.bells[number] = models.BellSlot{Number: number, Start: start, End: end}
	return true, nil
}

type fixture struct {
	bot       *BotService
	transport *fakeTransport
	storage   *fakeStorage
	states    state.Store
	nextID    int
}

func newFixture(t *testing.T, extractor Extractor) *fixture {
	t.Helper()
	transport := &fakeTransport{}
	storage := newFakeStorage()
	states := state.NewMemoryStore(0)
	bot := New(transport, storage, states, dedup.NewWindow(), nil, extractor, []string{"admin"})
	return &fixture{bot: bot, transport: transport, storage: storage, states: states}
}

func (f *fixture) dispatchText(userID int64, username, text string) {
	f.nextID++
	f.bot.Dispatch(&tgbotapi.Update{
		UpdateID: f.nextID,
		Message: &tgbotapi.Message{
			MessageID: f.nextID,
			From:      &tgbotapi.User{ID: userID, UserName: username, FirstName: "Тест"},
			Chat:      &tgbotapi.Chat{ID: userID},
			Text:      text,
		},
	})
}

func (f *fixture) dispatchCallback(userID int64, username, data string) {
	f.nextID++
	f.bot.Dispatch(&tgbotapi.Update{
		UpdateID: f.nextID,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   fmt.Sprintf("cb-%d", f.nextID),
			From: &tgbotapi.User{ID: userID, UserName: username},
			Message: &tgbotapi.Message{
				MessageID: f.nextID,
				Chat:      &tgbotapi.Chat{ID: userID},
			},
			Data: data,
		},
	})
}

func (f *fixture) dispatchDocument(userID int64, username, fileID string) {
	f.nextID++
	f.bot.Dispatch(&tgbotapi.Update{
		UpdateID: f.nextID,
		Message: &tgbotapi.Message{
			MessageID: f.nextID,
			From:      &tgbotapi.User{ID: userID, UserName: username},
			Chat:      &tgbotapi.Chat{ID: userID},
			Document:  &tgbotapi.Document{FileID: fileID, FileName: "schedule.xlsx"},
		},
	})
}

func TestDuplicateUpdateHasSideEffectsOnce(t *testing.T) {
	f := newFixture(t, nil)

	update := &tgbotapi.Update{
		UpdateID: 777,
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 1, UserName: "pupil"},
			Chat: &tgbotapi.Chat{ID: 1},
			Text: "Иванов Иван Иванович, 5А",
		},
	}
	f.bot.Dispatch(update)
	f.bot.Dispatch(update)

	assert.Len(t, f.transport.sent, 1)
	assert.Len(t, f.storage.users, 1)
}

func TestRegistration(t *testing.T) {
	f := newFixture(t, nil)

	f.dispatchText(1, "pupil", "Иванов Иван Иванович, 5А")
	require.Contains(t, f.transport.lastText(), "Регистрация прошла успешно")
	u, _ := f.storage.GetUser(1)
	require.NotNil(t, u)
	assert.Equal(t, "5А", u.Class)

	// Bad class aborts without creating anyone.
	f.dispatchText(2, "other", "Петров Пётр Петрович, 12А")
	assert.Contains(t, f.transport.lastText(), "Неверный формат класса")
	u, _ = f.storage.GetUser(2)
	assert.Nil(t, u)
}

func TestCancellationClearsFlowWithoutPersistence(t *testing.T) {
	f := newFixture(t, nil)

	f.dispatchText(10, "admin", "❌ Удалить пользователя")
	_, active := f.states.Get("admin")
	require.True(t, active)

	f.dispatchText(10, "admin", "❌ Отменить")
	_, active = f.states.Get("admin")
	assert.False(t, active)
	assert.Equal(t, 0, f.storage.deleteCalls)
	assert.Contains(t, f.transport.lastText(), "Действие отменено")
}

func TestBellEditFlow(t *testing.T) {
	f := newFixture(t, nil)

	f.dispatchText(10, "admin", "✏️ Изменить звонок")
	f.dispatchText(10, "admin", "3")
	f.dispatchText(10, "admin", "9:00")
	f.dispatchText(10, "admin", "9:40")

	assert.Contains(t, f.transport.lastText(), "Звонок для урока 3 обновлен")
	slots, _ := f.storage.GetBellSlots()
	assert.Equal(t, "9:00", slots[2].Start)
	assert.Equal(t, "9:40", slots[2].End)

	_, active := f.states.Get("admin")
	assert.False(t, active)
}

func TestBellEditAbortsOnInvalidNumber(t *testing.T) {
	f := newFixture(t, nil)

	f.dispatchText(10, "admin", "✏️ Изменить звонок")
	f.dispatchText(10, "admin", "9")

	assert.Contains(t, f.transport.lastText(), "от 1 до 7")
	_, active := f.states.Get("admin")
	assert.False(t, active)
	assert.Equal(t, 0, f.storage.bellUpdates)

	// The wrong answer did not re-prompt: the next message is treated as
	// a fresh command, not a retry.
	f.dispatchText(10, "admin", "5")
	assert.Equal(t, 0, f.storage.bellUpdates)
}

func TestManualScheduleEditFlow(t *testing.T) {
	f := newFixture(t, nil)

	f.dispatchText(10, "admin", "📝 Редактировать расписание")
	f.dispatchCallback(10, "admin", "class_5А")
	assert.Contains(t, f.transport.lastText(), "Выбран класс: 5А")

	f.dispatchCallback(10, "admin", "day_monday")
	assert.Contains(t, f.transport.lastText(), "Введите новое расписание")

	f.dispatchText(10, "admin", "1. Математика\n2. Физика (Иванов) - 201")
	assert.Contains(t, f.transport.lastText(), "обновлено")

	lessons, _ := f.storage.GetSchedule("5А", "monday")
	require.Len(t, lessons, 2)
	assert.Equal(t, "Физика", lessons[1].Subject)
	assert.Equal(t, "Иванов", lessons[1].Teacher)
	assert.Equal(t, "201", lessons[1].Room)
}

func TestManualScheduleClear(t *testing.T) {
	f := newFixture(t, nil)
	f.storage.schedules[scheduleKey{"5А", "monday"}] = []models.LessonRecord{
		{Class: "5А", Day: "monday", Number: 1, Subject: "Математика"},
	}

	f.dispatchText(10, "admin", "📝 Редактировать расписание")
	f.dispatchCallback(10, "admin", "class_5А")
	f.dispatchCallback(10, "admin", "day_monday")
	f.dispatchText(10, "admin", "-")

	assert.Contains(t, f.transport.lastText(), "Расписание очищено")
	lessons, _ := f.storage.GetSchedule("5А", "monday")
	assert.Empty(t, lessons)
}

func TestImportFlow(t *testing.T) {
	extractor := func(data []byte, shift string) (*extract.Result, error) {
		return &extract.Result{
			Sheet: "1 смена",
			Lessons: []models.LessonRecord{
				{Class: "5А", Day: "monday", Number: 1, Subject: "Математика"},
				{Class: "5А", Day: "tuesday", Number: 1, Subject: "Физика"},
				{Class: "5Б", Day: "monday", Number: 1, Subject: "Химия"},
			},
			DefaultedDays: 1,
		}, nil
	}
	f := newFixture(t, extractor)
	f.transport.fileData = []byte("workbook")

	f.dispatchText(10, "admin", "📥 Импорт из Excel")
	f.dispatchCallback(10, "admin", "shift_1")
	assert.Contains(t, f.transport.lastText(), "Отправьте файл")

	f.dispatchDocument(10, "admin", "file-1")

	last := f.transport.lastText()
	assert.Contains(t, last, "Импорт завершён: 3 уроков")
	assert.Contains(t, last, "понедельник") // defaulted-day warning
	assert.ElementsMatch(t, []scheduleKey{
		{"5А", "monday"}, {"5А", "tuesday"}, {"5Б", "monday"},
	}, f.storage.replaceCalls)

	_, active := f.states.Get("admin")
	assert.False(t, active)
}

func TestImportStructuralFailure(t *testing.T) {
	extractor := func(data []byte, shift string) (*extract.Result, error) {
		return nil, extract.ErrNoClasses
	}
	f := newFixture(t, extractor)
	f.transport.fileData = []byte("workbook")

	f.dispatchText(10, "admin", "📥 Импорт из Excel")
	f.dispatchCallback(10, "admin", "shift_2")
	f.dispatchDocument(10, "admin", "file-1")

	assert.Contains(t, f.transport.lastText(), "Не найдена строка с названиями классов")
	assert.Empty(t, f.storage.replaceCalls)
	_, active := f.states.Get("admin")
	assert.False(t, active)
}

func TestDocumentWithoutFlowIsIgnored(t *testing.T) {
	f := newFixture(t, nil)
	before := len(f.transport.sent)

	f.dispatchDocument(10, "admin", "file-1")

	assert.Len(t, f.transport.sent, before)
	assert.Empty(t, f.transport.fetched)
}

func TestAdminMenuDeniedForNonAdmin(t *testing.T) {
	f := newFixture(t, nil)

	f.dispatchText(5, "pupil", "/admin_panel")
	assert.Contains(t, f.transport.lastText(), "нет доступа")

	f.dispatchText(5, "pupil", "❌ Удалить пользователя")
	assert.Contains(t, f.transport.lastText(), "нет доступа")
	_, active := f.states.Get("pupil")
	assert.False(t, active)
}

func TestDayCallbackShowsOwnSchedule(t *testing.T) {
	f := newFixture(t, nil)
	f.storage.users[5] = models.User{ID: 5, FullName: "Иванов Иван", Class: "5А"}
	f.storage.schedules[scheduleKey{"5А", "friday"}] = []models.LessonRecord{
		{Class: "5А", Day: "friday", Number: 1, Subject: "Математика"},
	}

	f.dispatchCallback(5, "pupil", "day_friday")

	last := f.transport.lastText()
	assert.Contains(t, last, "Расписание 5А класса")
	assert.Contains(t, last, "Пятница")
	assert.True(t, strings.Contains(last, "Математика"))
}

func TestTextDuringButtonStepAbortsFlow(t *testing.T) {
	f := newFixture(t, nil)

	f.dispatchText(10, "admin", "📝 Редактировать расписание")
	f.dispatchText(10, "admin", "просто текст")

	assert.Contains(t, f.transport.lastText(), "Действие прервано")
	_, active := f.states.Get("admin")
	assert.False(t, active)
}
